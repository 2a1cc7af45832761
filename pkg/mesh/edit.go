package mesh

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrInvalidHandle  = errors.New("mesh: invalid handle")
	ErrDegenerateFace = errors.New("mesh: degenerate face")
	ErrComplexEdge    = errors.New("mesh: complex edge")
)

// AddVertex appends a vertex at p. Properties other than the position start
// at their zero value.
func (m *Mesh) AddVertex(p r3.Vec) VertexHandle {
	v := VertexHandle(len(m.outgoing))
	m.outgoing = append(m.outgoing, nil)
	m.vertexDeleted = append(m.vertexDeleted, false)
	m.vprops.grow()
	m.points.Set(v, p)
	return v
}

// AddFace inserts the triangle (a, b, c) in counter-clockwise order.
// Existing edges are reused when the matching half-edge is free. The mesh is
// left unchanged when an error is returned.
func (m *Mesh) AddFace(a, b, c VertexHandle) (FaceHandle, error) {
	vs := [3]VertexHandle{a, b, c}
	for _, v := range vs {
		if !m.hasVertex(v) {
			return InvalidFace, errors.Wrapf(ErrInvalidHandle, "add face: vertex %d", v)
		}
	}
	if a == b || b == c || a == c {
		return InvalidFace, errors.Wrapf(ErrDegenerateFace, "add face: (%d, %d, %d)", a, b, c)
	}

	var hs [3]HalfedgeHandle
	for i := range vs {
		from, to := vs[i], vs[(i+1)%3]
		h := m.FindHalfedge(from, to)
		if h.IsValid() && m.halfedges[h].face.IsValid() {
			return InvalidFace, errors.Wrapf(ErrComplexEdge, "add face: half-edge %d->%d already has a face", from, to)
		}
		hs[i] = h
	}
	for i := range hs {
		if !hs[i].IsValid() {
			hs[i] = m.newEdge(vs[i], vs[(i+1)%3])
		}
	}

	f := FaceHandle(len(m.faceHE))
	m.faceHE = append(m.faceHE, hs[0])
	m.faceDeleted = append(m.faceDeleted, false)
	m.fprops.grow()
	for i, h := range hs {
		m.halfedges[h].face = f
		m.halfedges[h].next = hs[(i+1)%3]
	}
	return f, nil
}

// newEdge appends a face-less edge and returns its half-edge from a to b.
func (m *Mesh) newEdge(a, b VertexHandle) HalfedgeHandle {
	h := HalfedgeHandle(len(m.halfedges))
	m.halfedges = append(m.halfedges,
		halfedge{to: b, face: InvalidFace, next: InvalidHalfedge},
		halfedge{to: a, face: InvalidFace, next: InvalidHalfedge},
	)
	m.edgeDeleted = append(m.edgeDeleted, false)
	m.eprops.grow()
	m.outgoing[a] = append(m.outgoing[a], h)
	m.outgoing[b] = append(m.outgoing[b], h^1)
	return h
}

// DeleteVertex marks v deleted. Its edges and faces are released by the next
// GarbageCollect.
func (m *Mesh) DeleteVertex(v VertexHandle) {
	if m.hasVertex(v) {
		m.vertexDeleted[v] = true
	}
}

// DeleteFace marks f deleted and frees its half-edges. Edges left without a
// face on either side are deleted too. When deleteIsolated is set, corners
// left without edges are deleted as well.
func (m *Mesh) DeleteFace(f FaceHandle, deleteIsolated bool) {
	if !m.hasFace(f) {
		return
	}
	hs := m.FaceHalfedges(f)
	vs := m.FaceVertices(f)
	m.faceDeleted[f] = true
	for _, h := range hs {
		m.halfedges[h].face = InvalidFace
		m.halfedges[h].next = InvalidHalfedge
	}
	for _, h := range hs {
		if !m.halfedges[h^1].face.IsValid() {
			m.deleteEdge(m.EdgeOf(h))
		}
	}
	if deleteIsolated {
		for _, v := range vs {
			if m.IsIsolated(v) {
				m.vertexDeleted[v] = true
			}
		}
	}
}

func (m *Mesh) deleteEdge(e EdgeHandle) {
	if m.edgeDeleted[e] {
		return
	}
	m.edgeDeleted[e] = true
	h := m.Halfedge(e, 0)
	m.outgoing[m.FromVertex(h)] = without(m.outgoing[m.FromVertex(h)], h)
	m.outgoing[m.ToVertex(h)] = without(m.outgoing[m.ToVertex(h)], h^1)
}

func without(hs []HalfedgeHandle, h HalfedgeHandle) []HalfedgeHandle {
	for i, cur := range hs {
		if cur == h {
			return append(hs[:i], hs[i+1:]...)
		}
	}
	return hs
}

// GarbageCollect removes every deleted element and renumbers the survivors,
// keeping relative order. Faces and edges that still reference a deleted
// vertex are removed with it. All handles held by callers are invalid
// afterwards; property values move with their elements.
func (m *Mesh) GarbageCollect() {
	for _, f := range m.Faces() {
		for _, v := range m.FaceVertices(f) {
			if m.vertexDeleted[v] {
				m.DeleteFace(f, false)
				break
			}
		}
	}
	for _, e := range m.Edges() {
		a, b := m.EdgeVertices(e)
		if m.vertexDeleted[a] || m.vertexDeleted[b] {
			m.deleteEdge(e)
		}
	}

	vmap, nv := remap(m.vertexDeleted)
	fmap, nf := remap(m.faceDeleted)
	emap, ne := remap(m.edgeDeleted)

	heMap := func(h HalfedgeHandle) HalfedgeHandle {
		if !h.IsValid() {
			return InvalidHalfedge
		}
		return HalfedgeHandle(emap[h>>1]<<1 | int(h&1))
	}
	faceMap := func(f FaceHandle) FaceHandle {
		if !f.IsValid() {
			return InvalidFace
		}
		return FaceHandle(fmap[f])
	}

	halfedges := make([]halfedge, 2*ne)
	for e, idx := range emap {
		if idx < 0 {
			continue
		}
		for i := 0; i < 2; i++ {
			old := m.halfedges[e<<1|i]
			halfedges[idx<<1|i] = halfedge{
				to:   VertexHandle(vmap[old.to]),
				face: faceMap(old.face),
				next: heMap(old.next),
			}
		}
	}

	faceHE := make([]HalfedgeHandle, nf)
	for f, idx := range fmap {
		if idx >= 0 {
			faceHE[idx] = heMap(m.faceHE[f])
		}
	}

	outgoing := make([][]HalfedgeHandle, nv)
	for h := range halfedges {
		from := halfedges[h^1].to
		outgoing[from] = append(outgoing[from], HalfedgeHandle(h))
	}

	m.vprops.compact(vmap, nv)
	m.fprops.compact(fmap, nf)
	m.eprops.compact(emap, ne)

	m.halfedges = halfedges
	m.faceHE = faceHE
	m.outgoing = outgoing
	m.vertexDeleted = make([]bool, nv)
	m.faceDeleted = make([]bool, nf)
	m.edgeDeleted = make([]bool, ne)
}

// remap assigns consecutive new indices to the entries not marked deleted.
// Deleted entries map to -1.
func remap(deleted []bool) ([]int, int) {
	out := make([]int, len(deleted))
	n := 0
	for i, del := range deleted {
		if del {
			out[i] = -1
			continue
		}
		out[i] = n
		n++
	}
	return out, n
}

package mesh

import "gonum.org/v1/gonum/spatial/r3"

// OppositeHalfedge returns the other half of h's edge.
func (m *Mesh) OppositeHalfedge(h HalfedgeHandle) HalfedgeHandle { return h ^ 1 }

// EdgeOf returns the edge h belongs to.
func (m *Mesh) EdgeOf(h HalfedgeHandle) EdgeHandle { return EdgeHandle(h >> 1) }

// Halfedge returns half-edge i (0 or 1) of e.
func (m *Mesh) Halfedge(e EdgeHandle, i int) HalfedgeHandle {
	return HalfedgeHandle(int(e)<<1 | i&1)
}

// ToVertex returns the vertex h points at.
func (m *Mesh) ToVertex(h HalfedgeHandle) VertexHandle { return m.halfedges[h].to }

// FromVertex returns the vertex h leaves.
func (m *Mesh) FromVertex(h HalfedgeHandle) VertexHandle { return m.halfedges[h^1].to }

// NextHalfedge returns the next half-edge around h's face, or
// InvalidHalfedge if h is a boundary half-edge.
func (m *Mesh) NextHalfedge(h HalfedgeHandle) HalfedgeHandle { return m.halfedges[h].next }

// FaceOf returns the face h borders, or InvalidFace on a boundary.
func (m *Mesh) FaceOf(h HalfedgeHandle) FaceHandle { return m.halfedges[h].face }

// OppositeFace returns the face on the other side of h.
func (m *Mesh) OppositeFace(h HalfedgeHandle) FaceHandle { return m.halfedges[h^1].face }

// IsBoundaryHalfedge reports whether h has no face.
func (m *Mesh) IsBoundaryHalfedge(h HalfedgeHandle) bool {
	return !m.halfedges[h].face.IsValid()
}

// IsBoundaryEdge reports whether e has a face on at most one side.
func (m *Mesh) IsBoundaryEdge(e EdgeHandle) bool {
	return m.IsBoundaryHalfedge(m.Halfedge(e, 0)) || m.IsBoundaryHalfedge(m.Halfedge(e, 1))
}

// EdgeVertices returns the two endpoints of e.
func (m *Mesh) EdgeVertices(e EdgeHandle) (VertexHandle, VertexHandle) {
	h := m.Halfedge(e, 0)
	return m.FromVertex(h), m.ToVertex(h)
}

// EdgeFaces returns the faces on both sides of e. Either may be InvalidFace.
func (m *Mesh) EdgeFaces(e EdgeHandle) (FaceHandle, FaceHandle) {
	return m.FaceOf(m.Halfedge(e, 0)), m.FaceOf(m.Halfedge(e, 1))
}

// FaceHalfedges returns the half-edge loop of f in counter-clockwise order.
func (m *Mesh) FaceHalfedges(f FaceHandle) [3]HalfedgeHandle {
	h0 := m.faceHE[f]
	h1 := m.halfedges[h0].next
	h2 := m.halfedges[h1].next
	return [3]HalfedgeHandle{h0, h1, h2}
}

// FaceVertices returns the corners of f in counter-clockwise order, starting
// with the first vertex passed to AddFace.
func (m *Mesh) FaceVertices(f FaceHandle) [3]VertexHandle {
	var out [3]VertexHandle
	for i, h := range m.FaceHalfedges(f) {
		out[i] = m.FromVertex(h)
	}
	return out
}

// FaceEdges returns the three edges of f.
func (m *Mesh) FaceEdges(f FaceHandle) [3]EdgeHandle {
	var out [3]EdgeHandle
	for i, h := range m.FaceHalfedges(f) {
		out[i] = m.EdgeOf(h)
	}
	return out
}

// FaceFaces returns the faces sharing an edge with f. Boundary sides are
// skipped.
func (m *Mesh) FaceFaces(f FaceHandle) []FaceHandle {
	out := make([]FaceHandle, 0, 3)
	for _, h := range m.FaceHalfedges(f) {
		if opp := m.OppositeFace(h); opp.IsValid() {
			out = append(out, opp)
		}
	}
	return out
}

// VertexOutgoing returns the live half-edges leaving v.
func (m *Mesh) VertexOutgoing(v VertexHandle) []HalfedgeHandle {
	return m.outgoing[v]
}

// VertexEdges returns the live edges incident to v.
func (m *Mesh) VertexEdges(v VertexHandle) []EdgeHandle {
	out := make([]EdgeHandle, len(m.outgoing[v]))
	for i, h := range m.outgoing[v] {
		out[i] = m.EdgeOf(h)
	}
	return out
}

// VertexFaces returns the faces incident to v. Every triangle around v has
// exactly one half-edge leaving v, so no face is reported twice.
func (m *Mesh) VertexFaces(v VertexHandle) []FaceHandle {
	out := make([]FaceHandle, 0, len(m.outgoing[v]))
	for _, h := range m.outgoing[v] {
		if f := m.FaceOf(h); f.IsValid() {
			out = append(out, f)
		}
	}
	return out
}

// IsIsolated reports whether v has no incident edges.
func (m *Mesh) IsIsolated(v VertexHandle) bool { return len(m.outgoing[v]) == 0 }

// FindHalfedge returns the half-edge from a to b, or InvalidHalfedge.
func (m *Mesh) FindHalfedge(a, b VertexHandle) HalfedgeHandle {
	if !m.hasVertex(a) || !m.hasVertex(b) {
		return InvalidHalfedge
	}
	for _, h := range m.outgoing[a] {
		if m.halfedges[h].to == b {
			return h
		}
	}
	return InvalidHalfedge
}

// FaceNormal returns the unit normal of f, or the zero vector for a
// degenerate triangle.
func (m *Mesh) FaceNormal(f FaceHandle) r3.Vec {
	vs := m.FaceVertices(f)
	a, b, c := m.Point(vs[0]), m.Point(vs[1]), m.Point(vs[2])
	n := r3.Cross(r3.Sub(b, a), r3.Sub(c, a))
	if r3.Norm(n) == 0 {
		return r3.Vec{}
	}
	return r3.Unit(n)
}

// UpdateNormals sets every live vertex normal to the normalized sum of its
// incident face normals.
func (m *Mesh) UpdateNormals() {
	for _, v := range m.Vertices() {
		var sum r3.Vec
		for _, f := range m.VertexFaces(v) {
			sum = r3.Add(sum, m.FaceNormal(f))
		}
		if r3.Norm(sum) > 0 {
			sum = r3.Unit(sum)
		}
		m.SetNormal(v, sum)
	}
}

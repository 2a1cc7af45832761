package features

import (
	"cmp"
	"math"

	"github.com/chazu/uvatlas/pkg/mesh"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// DihedralAngle returns the angle in degrees between the normals of the two
// faces of e. Boundary edges and edges next to degenerate faces score 0.
func DihedralAngle(m *mesh.Mesh, e mesh.EdgeHandle) float64 {
	f0, f1 := m.EdgeFaces(e)
	if !f0.IsValid() || !f1.IsValid() {
		return 0
	}
	n0, n1 := m.FaceNormal(f0), m.FaceNormal(f1)
	if r3.Norm(n0) == 0 || r3.Norm(n1) == 0 {
		return 0
	}
	cos := math.Max(-1, math.Min(1, r3.Dot(n0, n1)))
	return math.Acos(cos) * 180 / math.Pi
}

// DetectCreases finds the edges whose dihedral angle reaches threshold and
// strings them into curves. A curve stops at any vertex where the number of
// crease edges is not two; closed loops become one curve each. Curves with
// fewer than minLength edges are dropped. The result is ordered by
// decreasing total sharpness and numbered from firstID.
func DetectCreases(m *mesh.Mesh, threshold float64, minLength, firstID int) []*Set {
	d := &creaseDetector{
		m:      m,
		angle:  make([]float64, m.NumEdges()),
		crease: make([]bool, m.NumEdges()),
		used:   make([]bool, m.NumEdges()),
		degree: make([]int, m.NumVertices()),
	}
	for _, e := range m.Edges() {
		a := DihedralAngle(m, e)
		if a < threshold {
			continue
		}
		d.angle[e] = a
		d.crease[e] = true
		v0, v1 := m.EdgeVertices(e)
		d.degree[v0]++
		d.degree[v1]++
	}

	var curves []*Set
	// Open curves run between endpoints and junctions.
	for _, v := range m.Vertices() {
		if d.degree[v] == 2 {
			continue
		}
		for e := d.nextEdge(v); e.IsValid(); e = d.nextEdge(v) {
			curves = append(curves, d.walk(v, e))
		}
	}
	// Whatever is left is closed loops.
	for _, e := range m.Edges() {
		if d.crease[e] && !d.used[e] {
			v, _ := m.EdgeVertices(e)
			curves = append(curves, d.walk(v, e))
		}
	}

	kept := curves[:0]
	for _, c := range curves {
		if c.Size() >= minLength {
			kept = append(kept, c)
		}
	}
	slices.SortStableFunc(kept, func(a, b *Set) int { return cmp.Compare(b.TotalValue(), a.TotalValue()) })
	for i, c := range kept {
		c.id = firstID + i
	}
	return kept
}

type creaseDetector struct {
	m      *mesh.Mesh
	angle  []float64
	crease []bool
	used   []bool
	degree []int
}

// nextEdge returns an unused crease edge at v, or InvalidEdge.
func (d *creaseDetector) nextEdge(v mesh.VertexHandle) mesh.EdgeHandle {
	for _, e := range d.m.VertexEdges(v) {
		if d.crease[e] && !d.used[e] {
			return e
		}
	}
	return mesh.InvalidEdge
}

// walk follows crease edges from v through e until it reaches a vertex that
// does not continue the curve.
func (d *creaseDetector) walk(v mesh.VertexHandle, e mesh.EdgeHandle) *Set {
	s := NewSet(0)
	for e.IsValid() {
		d.used[e] = true
		a, b := d.m.EdgeVertices(e)
		next := b
		if a != v {
			next = a
		}
		s.Add(d.m.FindHalfedge(v, next), d.angle[e])
		v = next
		if d.degree[v] != 2 {
			break
		}
		e = d.nextEdge(v)
	}
	return s
}

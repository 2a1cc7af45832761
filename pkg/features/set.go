// Package features holds feature curves: ordered half-edge sequences on a
// mesh along which charts are expected to split.
package features

import (
	"fmt"

	"github.com/chazu/uvatlas/pkg/mesh"
	"github.com/samber/lo"
)

// Set is one feature curve.
type Set struct {
	id         int
	halfedges  []mesh.HalfedgeHandle
	totalValue float64
}

// NewSet returns an empty feature set with the given id.
func NewSet(id int) *Set {
	return &Set{id: id}
}

func (s *Set) ID() int { return s.id }

// Add appends h to the curve and accumulates its sharpness value.
func (s *Set) Add(h mesh.HalfedgeHandle, value float64) {
	s.halfedges = append(s.halfedges, h)
	s.totalValue += value
}

// Halfedges returns the curve's half-edges in order.
func (s *Set) Halfedges() []mesh.HalfedgeHandle { return s.halfedges }

// TotalValue is the sum of the values passed to Add.
func (s *Set) TotalValue() float64 { return s.totalValue }

func (s *Set) Size() int { return len(s.halfedges) }
func (s *Set) IsEmpty() bool { return len(s.halfedges) == 0 }

// Contains reports whether h is part of the curve.
func (s *Set) Contains(h mesh.HalfedgeHandle) bool {
	return lo.Contains(s.halfedges, h)
}

// Clear empties the curve.
func (s *Set) Clear() {
	s.halfedges = nil
	s.totalValue = 0
}

// Vertices returns the distinct vertices the curve touches, in order of
// first appearance.
func (s *Set) Vertices(m *mesh.Mesh) []mesh.VertexHandle {
	out := make([]mesh.VertexHandle, 0, len(s.halfedges)+1)
	for _, h := range s.halfedges {
		out = append(out, m.FromVertex(h), m.ToVertex(h))
	}
	return lo.Uniq(out)
}

// FromPath builds a feature set from consecutive mesh vertices. Every pair of
// neighbours in path must be joined by an edge. Each half-edge is added with
// a value of 1.
func FromPath(m *mesh.Mesh, id int, path []mesh.VertexHandle) (*Set, error) {
	if len(path) < 2 {
		return nil, fmt.Errorf("features: path %d needs at least two vertices, got %d", id, len(path))
	}
	s := NewSet(id)
	for i := 0; i+1 < len(path); i++ {
		h := m.FindHalfedge(path[i], path[i+1])
		if !h.IsValid() {
			return nil, fmt.Errorf("features: path %d: no edge between vertices %d and %d", id, path[i], path[i+1])
		}
		s.Add(h, 1)
	}
	return s, nil
}

// EdgeSet returns the edges covered by any of the sets.
func EdgeSet(m *mesh.Mesh, sets []*Set) map[mesh.EdgeHandle]bool {
	out := make(map[mesh.EdgeHandle]bool)
	for _, s := range sets {
		for _, h := range s.halfedges {
			out[m.EdgeOf(h)] = true
		}
	}
	return out
}

package kernel

import "gonum.org/v1/gonum/spatial/r3"

// Soup is an unwelded triangle list. Every triangle owns its three corners:
// Vertices holds 3 floats per corner and Normals the matching face normal
// per corner, so corner i of triangle t is at index 3*t+i.
type Soup struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
}

// VertexCount returns the number of corners.
func (s *Soup) VertexCount() int {
	return len(s.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (s *Soup) TriangleCount() int {
	return len(s.Vertices) / 9
}

func (s *Soup) IsEmpty() bool {
	return len(s.Vertices) == 0
}

// Positions returns the corners as vectors, in order, ready for mesh.FromSoup.
func (s *Soup) Positions() []r3.Vec {
	out := make([]r3.Vec, 0, s.VertexCount())
	for i := 0; i+2 < len(s.Vertices); i += 3 {
		out = append(out, r3.Vec{
			X: float64(s.Vertices[i]),
			Y: float64(s.Vertices[i+1]),
			Z: float64(s.Vertices[i+2]),
		})
	}
	return out
}

// Append adds one triangle with a shared face normal.
func (s *Soup) Append(a, b, c, n r3.Vec) {
	for _, p := range [3]r3.Vec{a, b, c} {
		s.Vertices = append(s.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
		s.Normals = append(s.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
}

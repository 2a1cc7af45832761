package kernel

import (
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSoupCounts(t *testing.T) {
	tests := []struct {
		name      string
		vertices  []float32
		wantVerts int
		wantTris  int
	}{
		{"empty", nil, 0, 0},
		{"one corner", []float32{1, 2, 3}, 1, 0},
		{"one triangle", []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, 3, 1},
		{"two triangles", make([]float32, 18), 6, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Soup{Vertices: tt.vertices}
			if got := s.VertexCount(); got != tt.wantVerts {
				t.Errorf("VertexCount() = %d, want %d", got, tt.wantVerts)
			}
			if got := s.TriangleCount(); got != tt.wantTris {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.wantTris)
			}
			if got := s.IsEmpty(); got != (len(tt.vertices) == 0) {
				t.Errorf("IsEmpty() = %v", got)
			}
		})
	}
}

func TestSoupAppendAndPositions(t *testing.T) {
	var s Soup
	a, b, c := r3.Vec{X: 0}, r3.Vec{X: 1}, r3.Vec{Y: 1}
	s.Append(a, b, c, r3.Vec{Z: 1})

	if s.TriangleCount() != 1 {
		t.Fatalf("TriangleCount() = %d, want 1", s.TriangleCount())
	}
	if len(s.Normals) != len(s.Vertices) {
		t.Fatalf("normals length %d != vertices length %d", len(s.Normals), len(s.Vertices))
	}
	for i := 2; i < len(s.Normals); i += 3 {
		if s.Normals[i] != 1 {
			t.Errorf("normal z at %d = %v, want 1", i, s.Normals[i])
		}
	}

	got := s.Positions()
	want := []r3.Vec{a, b, c}
	if len(got) != len(want) {
		t.Fatalf("Positions() returned %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Positions()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

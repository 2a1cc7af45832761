package mesh

import (
	"github.com/dhconnelly/rtreego"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r3"
)

// minWeldTolerance keeps rtreego rectangles from collapsing to zero size.
const minWeldTolerance = 1e-9

// weldPoint is a welded position stored in the spatial index.
type weldPoint struct {
	index int
	rect  rtreego.Rect
}

func (p *weldPoint) Bounds() rtreego.Rect { return p.rect }

// Weld merges positions that lie within tol of an already kept position.
// It returns the kept positions and, for every input position, the index of
// the kept position it was merged into.
func Weld(positions []r3.Vec, tol float64) ([]r3.Vec, []int, error) {
	if tol < minWeldTolerance {
		tol = minWeldTolerance
	}
	tree := rtreego.NewTree(3, 25, 50)
	unique := make([]r3.Vec, 0, len(positions))
	index := make([]int, len(positions))

	for i, p := range positions {
		probe, err := rtreego.NewRect(rtreego.Point{p.X - tol, p.Y - tol, p.Z - tol}, []float64{2 * tol, 2 * tol, 2 * tol})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "weld: position %d", i)
		}
		best, bestDist := -1, tol
		for _, hit := range tree.SearchIntersect(probe) {
			wp := hit.(*weldPoint)
			if d := r3.Norm(r3.Sub(unique[wp.index], p)); d <= bestDist {
				best, bestDist = wp.index, d
			}
		}
		if best >= 0 {
			index[i] = best
			continue
		}

		rect, err := rtreego.NewRect(rtreego.Point{p.X, p.Y, p.Z}, []float64{minWeldTolerance, minWeldTolerance, minWeldTolerance})
		if err != nil {
			return nil, nil, errors.Wrapf(err, "weld: position %d", i)
		}
		index[i] = len(unique)
		tree.Insert(&weldPoint{index: len(unique), rect: rect})
		unique = append(unique, p)
	}
	return unique, index, nil
}

// FromTriangles builds a mesh from indexed triangles. Degenerate triangles
// and triangles that would create a complex edge are skipped and counted in
// skipped; an index out of range is an error.
func FromTriangles(points []r3.Vec, triangles [][3]int) (m *Mesh, skipped int, err error) {
	m = New()
	for _, p := range points {
		m.AddVertex(p)
	}
	for i, t := range triangles {
		for _, idx := range t {
			if idx < 0 || idx >= len(points) {
				return nil, 0, errors.Wrapf(ErrInvalidHandle, "triangle %d: index %d out of range", i, idx)
			}
		}
		if _, err := m.AddFace(VertexHandle(t[0]), VertexHandle(t[1]), VertexHandle(t[2])); err != nil {
			if errors.Is(err, ErrDegenerateFace) || errors.Is(err, ErrComplexEdge) {
				skipped++
				continue
			}
			return nil, 0, errors.Wrapf(err, "triangle %d", i)
		}
	}
	return m, skipped, nil
}

// FromSoup welds an unindexed triangle soup (three positions per triangle)
// and builds a mesh from it. Vertices no triangle survived on are dropped.
func FromSoup(positions []r3.Vec, tol float64) (*Mesh, int, error) {
	if len(positions)%3 != 0 {
		return nil, 0, errors.Errorf("soup has %d positions, want a multiple of 3", len(positions))
	}
	unique, index, err := Weld(positions, tol)
	if err != nil {
		return nil, 0, err
	}
	triangles := make([][3]int, 0, len(positions)/3)
	for i := 0; i < len(positions); i += 3 {
		triangles = append(triangles, [3]int{index[i], index[i+1], index[i+2]})
	}
	m, skipped, err := FromTriangles(unique, triangles)
	if err != nil {
		return nil, 0, err
	}
	for _, v := range m.Vertices() {
		if m.IsIsolated(v) {
			m.DeleteVertex(v)
		}
	}
	m.GarbageCollect()
	return m, skipped, nil
}

// Grid builds a flat cols x rows grid of square cells in the z=0 plane,
// each cell split into two triangles along the diagonal from (i, j) to
// (i+1, j+1). Vertex (i, j) has handle GridVertex(cols, i, j); cell (i, j)
// owns faces 2*(j*cols+i) and 2*(j*cols+i)+1.
func Grid(cols, rows int, cell float64) *Mesh {
	m := New()
	for j := 0; j <= rows; j++ {
		for i := 0; i <= cols; i++ {
			m.AddVertex(r3.Vec{X: float64(i) * cell, Y: float64(j) * cell})
		}
	}
	for j := 0; j < rows; j++ {
		for i := 0; i < cols; i++ {
			v00 := GridVertex(cols, i, j)
			v10 := GridVertex(cols, i+1, j)
			v11 := GridVertex(cols, i+1, j+1)
			v01 := GridVertex(cols, i, j+1)
			// Counter-clockwise seen from +z; a fresh grid never fails.
			_, _ = m.AddFace(v00, v10, v11)
			_, _ = m.AddFace(v00, v11, v01)
		}
	}
	return m
}

// GridVertex returns the handle of grid vertex (i, j) in a mesh built by
// Grid with the given column count.
func GridVertex(cols, i, j int) VertexHandle {
	return VertexHandle(j*(cols+1) + i)
}

// Unique sorts s and removes duplicates in place.
func Unique[T constraints.Ordered](s []T) []T {
	slices.Sort(s)
	return slices.Compact(s)
}

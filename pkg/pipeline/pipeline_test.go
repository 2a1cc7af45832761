package pipeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/chazu/uvatlas/pkg/job"
	"github.com/chazu/uvatlas/pkg/kernel"
	"github.com/chazu/uvatlas/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// A kernel that records the expression it was asked to build and always
// tessellates to a unit cube.
// ---------------------------------------------------------------------------

type fakeSolid string

func (s fakeSolid) BoundingBox() (min, max [3]float64) { return [3]float64{}, [3]float64{1, 1, 1} }

type fakeKernel struct {
	built string
	cells int
}

var _ kernel.Kernel = (*fakeKernel)(nil)

func (k *fakeKernel) Box(x, y, z float64) (kernel.Solid, error) {
	return fakeSolid(fmt.Sprintf("box(%g,%g,%g)", x, y, z)), nil
}
func (k *fakeKernel) Cylinder(h, r float64) (kernel.Solid, error) {
	return fakeSolid(fmt.Sprintf("cylinder(%g,%g)", h, r)), nil
}
func (k *fakeKernel) Sphere(r float64) (kernel.Solid, error) {
	return fakeSolid(fmt.Sprintf("sphere(%g)", r)), nil
}
func (k *fakeKernel) Union(a, b kernel.Solid) kernel.Solid {
	return fakeSolid(fmt.Sprintf("union(%s,%s)", a, b))
}
func (k *fakeKernel) Difference(a, b kernel.Solid) kernel.Solid {
	return fakeSolid(fmt.Sprintf("difference(%s,%s)", a, b))
}
func (k *fakeKernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return fakeSolid(fmt.Sprintf("intersection(%s,%s)", a, b))
}
func (k *fakeKernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return fakeSolid(fmt.Sprintf("translate(%s,%g,%g,%g)", s, x, y, z))
}
func (k *fakeKernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	return fakeSolid(fmt.Sprintf("rotate(%s,%g,%g,%g)", s, x, y, z))
}

func (k *fakeKernel) ToSoup(s kernel.Solid, cells int) (*kernel.Soup, error) {
	k.built = string(s.(fakeSolid))
	k.cells = cells
	c := [8]r3.Vec{
		{X: 0, Y: 0, Z: 0}, {X: 1, Y: 0, Z: 0}, {X: 1, Y: 1, Z: 0}, {X: 0, Y: 1, Z: 0},
		{X: 0, Y: 0, Z: 1}, {X: 1, Y: 0, Z: 1}, {X: 1, Y: 1, Z: 1}, {X: 0, Y: 1, Z: 1},
	}
	tris := [][3]int{
		{0, 2, 1}, {0, 3, 2}, {4, 5, 6}, {4, 6, 7},
		{0, 1, 5}, {0, 5, 4}, {3, 7, 6}, {3, 6, 2},
		{0, 4, 7}, {0, 7, 3}, {1, 2, 6}, {1, 6, 5},
	}
	soup := &kernel.Soup{}
	for _, t := range tris {
		a, b, cc := c[t[0]], c[t[1]], c[t[2]]
		soup.Append(a, b, cc, r3.Unit(r3.Cross(r3.Sub(b, a), r3.Sub(cc, a))))
	}
	return soup, nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func quietRunner(k kernel.Kernel) (*Runner, *bytes.Buffer) {
	var buf bytes.Buffer
	return &Runner{Kernel: k, Output: &buf}, &buf
}

func gridJob(features ...job.Feature) *job.Job {
	j := job.New()
	j.Name = "grid"
	j.Grid = &job.Grid{Cols: 4, Rows: 4, Cell: 1}
	j.Features = features
	return j
}

func line(axis job.Axis, index int) job.Feature {
	return job.Feature{Kind: job.FeatureGridLine, Axis: axis, Index: index}
}

func totalFaces(r *Result) int {
	n := 0
	for _, c := range r.Charts {
		n += len(c.Faces())
	}
	return n
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRunGridSplitByLine(t *testing.T) {
	r, logs := quietRunner(nil)
	res, err := r.Run(gridJob(line(job.AxisX, 2)))
	require.NoError(t, err)

	require.Len(t, res.Charts, 2)
	assert.Equal(t, 32, totalFaces(res))
	assert.Len(t, res.Mesh.Vertices(), 30)
	assert.True(t, res.Valid())
	assert.Empty(t, res.Validation)
	assert.Contains(t, logs.String(), res.RunID.String()[:8])
	assert.Contains(t, logs.String(), "done: 2 charts")

	for _, c := range res.Charts {
		for _, v := range c.Vertices() {
			assert.Equal(t, c.Color(), res.Mesh.Color(v), "vertices are painted with their chart color")
		}
	}
}

func TestRunGridQuadrants(t *testing.T) {
	r, _ := quietRunner(nil)
	res, err := r.Run(gridJob(line(job.AxisX, 2), line(job.AxisY, 2)))
	require.NoError(t, err)
	require.Len(t, res.Charts, 4)
	assert.Len(t, res.Features, 2)
	assert.True(t, res.Valid())
}

func TestRunFeaturePath(t *testing.T) {
	path := job.Feature{Kind: job.FeaturePath, Path: []int{
		int(mesh.GridVertex(4, 2, 0)), int(mesh.GridVertex(4, 2, 1)), int(mesh.GridVertex(4, 2, 2)),
		int(mesh.GridVertex(4, 2, 3)), int(mesh.GridVertex(4, 2, 4)),
	}}
	r, _ := quietRunner(nil)
	res, err := r.Run(gridJob(path))
	require.NoError(t, err)
	assert.Len(t, res.Charts, 2)
}

func TestRunOptionOverrides(t *testing.T) {
	j := gridJob(line(job.AxisX, 2))
	respect := false
	j.Options.RespectFeatures = &respect
	j.Options.Validate = false

	r, _ := quietRunner(nil)
	res, err := r.Run(j)
	require.NoError(t, err)
	assert.Len(t, res.Charts, 1)
	assert.Nil(t, res.Validation)
	assert.False(t, res.Valid(), "an unvalidated run is never reported valid")
}

func TestRunSolid(t *testing.T) {
	k := &fakeKernel{}
	j := job.New()
	j.Cells = 9
	j.Solid = &job.Shape{Kind: job.ShapeRotate, Size: r3.Vec{Z: 90}, Children: []*job.Shape{{
		Kind: job.ShapeDifference,
		Children: []*job.Shape{
			{Kind: job.ShapeBox, Size: r3.Vec{X: 1, Y: 2, Z: 3}},
			{Kind: job.ShapeTranslate, Size: r3.Vec{X: 1}, Children: []*job.Shape{
				{Kind: job.ShapeSphere, Radius: 0.5},
			}},
			{Kind: job.ShapeCylinder, Height: 4, Radius: 0.25},
		},
	}}}
	j.Features = []job.Feature{{Kind: job.FeatureCreases, Angle: 45, MinLength: 1}}

	r, _ := quietRunner(k)
	res, err := r.Run(j)
	require.NoError(t, err)

	assert.Equal(t,
		"rotate(difference(difference(box(1,2,3),translate(sphere(0.5),1,0,0)),cylinder(4,0.25)),0,0,90)",
		k.built)
	assert.Equal(t, 9, k.cells)
	assert.Len(t, res.Features, 12, "every cube edge is a crease")
	assert.Equal(t, 12, totalFaces(res))

	// Creases seal the cube sides, so no chart spans two sides.
	for _, c := range res.Charts {
		n := res.Mesh.FaceNormal(c.Faces()[0])
		for _, f := range c.Faces() {
			assert.InDelta(t, 1, r3.Dot(n, res.Mesh.FaceNormal(f)), 1e-9, "chart %d", c.ID())
		}
	}
	assert.True(t, res.Valid(), "%v", res.Validation)
}

func TestRunErrors(t *testing.T) {
	r, _ := quietRunner(nil)

	_, err := r.Run(job.New())
	assert.ErrorContains(t, err, "invalid job")

	solid := job.New()
	solid.Solid = &job.Shape{Kind: job.ShapeSphere, Radius: 1}
	_, err = r.Run(solid)
	assert.ErrorIs(t, err, ErrNoKernel)

	outside := gridJob(job.Feature{Kind: job.FeaturePath, Path: []int{0, 99}})
	_, err = r.Run(outside)
	assert.ErrorContains(t, err, "out of range")

	notAnEdge := gridJob(job.Feature{Kind: job.FeaturePath, Path: []int{0, 12}})
	_, err = r.Run(notAnEdge)
	assert.ErrorContains(t, err, "no edge")
}

func TestSummaryJSON(t *testing.T) {
	r, _ := quietRunner(nil)
	res, err := r.Run(gridJob(line(job.AxisX, 2)))
	require.NoError(t, err)

	s := res.Summary()
	assert.Equal(t, "grid", s.Name)
	assert.Equal(t, res.RunID.String(), s.RunID)
	assert.Equal(t, 32, s.Faces)
	require.Len(t, s.Charts, 2)
	assert.Equal(t, 16, s.Charts[0].Faces)
	assert.Equal(t, 12, s.Charts[0].Perimeter)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, s.Charts[0].Color)
	assert.True(t, s.Valid)

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"runId"`)
	assert.Contains(t, string(raw), `"perimeter":12`)
}

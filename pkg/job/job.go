// Package job describes one segmentation run: where the mesh comes from,
// which feature curves cut it and how the chart builder is tuned. Jobs are
// produced by evaluating a script (pkg/engine) and consumed by pkg/pipeline.
package job

import "gonum.org/v1/gonum/spatial/r3"

// DefaultWeld is the distance under which tessellated corners are merged
// into one vertex.
const DefaultWeld = 1e-4

// Job is the data produced by evaluating a job script. Exactly one of Grid
// and Solid is set on a runnable job.
type Job struct {
	Name     string    `json:"name"`
	Grid     *Grid     `json:"grid,omitempty"`
	Solid    *Shape    `json:"solid,omitempty"`
	Cells    int       `json:"cells,omitempty"` // marching cubes resolution, 0 for the kernel default
	Weld     float64   `json:"weld"`
	Features []Feature `json:"features"`
	Options  Options   `json:"options"`
}

// New returns an empty job with default settings.
func New() *Job {
	return &Job{
		Weld:    DefaultWeld,
		Options: Options{Validate: true},
	}
}

// Grid is a flat cols x rows grid of square cells, two triangles per cell.
type Grid struct {
	Cols int     `json:"cols"`
	Rows int     `json:"rows"`
	Cell float64 `json:"cell"`
}

// Options overrides the chart builder defaults. Nil fields keep the
// builder's own default.
type Options struct {
	MergeFraction   *float64 `json:"mergeFraction,omitempty"`
	RespectFeatures *bool    `json:"respectFeatures,omitempty"`
	SeedUncovered   *bool    `json:"seedUncovered,omitempty"`
	Validate        bool     `json:"validate"`
}

// ShapeKind identifies a node of a solid expression.
type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCylinder
	ShapeSphere
	ShapeUnion
	ShapeDifference
	ShapeIntersection
	ShapeTranslate
	ShapeRotate
)

var shapeKindNames = [...]string{
	ShapeBox:          "box",
	ShapeCylinder:     "cylinder",
	ShapeSphere:       "sphere",
	ShapeUnion:        "union",
	ShapeDifference:   "difference",
	ShapeIntersection: "intersection",
	ShapeTranslate:    "translate",
	ShapeRotate:       "rotate",
}

func (k ShapeKind) String() string {
	if int(k) < len(shapeKindNames) && k >= 0 {
		return shapeKindNames[k]
	}
	return "unknown"
}

// Shape is a node of a solid expression tree. Size holds the box extents,
// the translation or the rotation in degrees depending on Kind.
type Shape struct {
	Kind     ShapeKind `json:"kind"`
	Size     r3.Vec    `json:"size"`
	Height   float64   `json:"height,omitempty"`
	Radius   float64   `json:"radius,omitempty"`
	Children []*Shape  `json:"children,omitempty"`
}

// Count returns the number of nodes in the tree rooted at s.
func (s *Shape) Count() int {
	if s == nil {
		return 0
	}
	n := 1
	for _, c := range s.Children {
		n += c.Count()
	}
	return n
}

// Axis names a grid direction.
type Axis int

const (
	AxisX Axis = iota // a line of constant x, running along y
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// FeatureKind selects how a feature curve is located on the mesh.
type FeatureKind int

const (
	FeaturePath     FeatureKind = iota // explicit vertex indices
	FeatureGridLine                    // a full line of a Grid source
	FeatureCreases                     // sharp edges found by dihedral angle
)

func (k FeatureKind) String() string {
	switch k {
	case FeaturePath:
		return "path"
	case FeatureGridLine:
		return "grid-line"
	case FeatureCreases:
		return "creases"
	}
	return "unknown"
}

// Feature describes one feature curve, or for FeatureCreases a family of
// curves detected on the mesh.
type Feature struct {
	Kind FeatureKind `json:"kind"`
	Name string      `json:"name,omitempty"`

	Path []int `json:"path,omitempty"`

	Axis  Axis `json:"axis,omitempty"`
	Index int  `json:"index,omitempty"`

	Angle     float64 `json:"angle,omitempty"` // degrees
	MinLength int     `json:"minLength,omitempty"`
}

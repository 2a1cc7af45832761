// Package sdfx implements kernel.Kernel with the github.com/deadsy/sdfx
// signed distance function library and marching cubes tessellation.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/uvatlas/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"gonum.org/v1/gonum/spatial/r3"
)

var _ kernel.Kernel = (*Kernel)(nil)

// DefaultCells is the marching cubes resolution used when ToSoup is given
// no cell count. Segmentation cost grows with the face count, so this is
// far coarser than a render-quality tessellation.
const DefaultCells = 24

type solid struct {
	s sdf.SDF3
}

func (s *solid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	return [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}, [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
}

// Kernel tessellates sdfx solids into triangle soups.
type Kernel struct{}

func New() *Kernel {
	return &Kernel{}
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*solid).s
}

func wrap(s sdf.SDF3) kernel.Solid {
	return &solid{s: s}
}

// Box creates a box with its minimum corner at the origin.
func (k *Kernel) Box(x, y, z float64) (kernel.Solid, error) {
	s, err := sdf.Box3D(v3.Vec{X: x, Y: y, Z: z}, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: box %gx%gx%g: %w", x, y, z, err)
	}
	// sdf.Box3D is centered on the origin.
	m := sdf.Translate3d(v3.Vec{X: x / 2, Y: y / 2, Z: z / 2})
	return wrap(sdf.Transform3D(s, m)), nil
}

// Cylinder creates a cylinder centered on the origin along Z.
func (k *Kernel) Cylinder(height, radius float64) (kernel.Solid, error) {
	s, err := sdf.Cylinder3D(height, radius, 0)
	if err != nil {
		return nil, fmt.Errorf("sdfx: cylinder h=%g r=%g: %w", height, radius, err)
	}
	return wrap(s), nil
}

// Sphere creates a sphere centered on the origin.
func (k *Kernel) Sphere(radius float64) (kernel.Solid, error) {
	s, err := sdf.Sphere3D(radius)
	if err != nil {
		return nil, fmt.Errorf("sdfx: sphere r=%g: %w", radius, err)
	}
	return wrap(s), nil
}

func (k *Kernel) Union(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Union3D(unwrap(a), unwrap(b)))
}

// Difference returns a - b.
func (k *Kernel) Difference(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Difference3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Intersection(a, b kernel.Solid) kernel.Solid {
	return wrap(sdf.Intersect3D(unwrap(a), unwrap(b)))
}

func (k *Kernel) Translate(s kernel.Solid, x, y, z float64) kernel.Solid {
	m := sdf.Translate3d(v3.Vec{X: x, Y: y, Z: z})
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// Rotate applies X, then Y, then Z rotations given in degrees.
func (k *Kernel) Rotate(s kernel.Solid, x, y, z float64) kernel.Solid {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	m := sdf.RotateZ(rad(z)).Mul(sdf.RotateY(rad(y))).Mul(sdf.RotateX(rad(x)))
	return wrap(sdf.Transform3D(unwrap(s), m))
}

// ToSoup runs uniform marching cubes over s. Corners are not shared between
// triangles; callers weld them.
func (k *Kernel) ToSoup(s kernel.Solid, cells int) (*kernel.Soup, error) {
	if cells <= 0 {
		cells = DefaultCells
	}
	triangles := render.ToTriangles(unwrap(s), render.NewMarchingCubesUniform(cells))
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfx: tessellation at %d cells produced no triangles", cells)
	}

	soup := &kernel.Soup{
		Vertices: make([]float32, 0, len(triangles)*9),
		Normals:  make([]float32, 0, len(triangles)*9),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		soup.Append(vec(tri[0]), vec(tri[1]), vec(tri[2]), vec(n))
	}
	return soup, nil
}

func vec(v v3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Y: v.Y, Z: v.Z}
}

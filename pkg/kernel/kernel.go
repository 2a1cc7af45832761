// Package kernel defines the solid-modelling interface used to produce
// source geometry for chart segmentation. Implementations tessellate a
// solid into a triangle soup, which pkg/mesh welds into a half-edge mesh.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids and tessellates them.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) (Solid, error)
	Cylinder(height, radius float64) (Solid, error)
	Sphere(radius float64) (Solid, error)

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees

	// ToSoup tessellates s on a uniform grid with the given number of cells
	// along the longest bounding box axis. cells <= 0 selects the kernel's
	// default resolution.
	ToSoup(s Solid, cells int) (*Soup, error)
}

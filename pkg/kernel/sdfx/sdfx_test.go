package sdfx

import (
	"testing"

	"github.com/chazu/uvatlas/pkg/kernel"
)

func mustSoup(t *testing.T, k *Kernel, s kernel.Solid, cells int) *kernel.Soup {
	t.Helper()
	soup, err := k.ToSoup(s, cells)
	if err != nil {
		t.Fatalf("ToSoup failed: %v", err)
	}
	if soup.IsEmpty() {
		t.Fatal("soup is empty")
	}
	if len(soup.Vertices) != len(soup.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(soup.Vertices), len(soup.Normals))
	}
	if soup.VertexCount() != soup.TriangleCount()*3 {
		t.Fatalf("%d corners for %d triangles", soup.VertexCount(), soup.TriangleCount())
	}
	return soup
}

func TestBox(t *testing.T) {
	k := New()
	box, err := k.Box(10, 5, 2)
	if err != nil {
		t.Fatalf("Box failed: %v", err)
	}
	min, max := box.BoundingBox()
	for i, want := range [3]float64{10, 5, 2} {
		if min[i] > 1e-9 || max[i] < want-1e-9 {
			t.Errorf("axis %d: bounding box [%v, %v] does not cover [0, %v]", i, min[i], max[i], want)
		}
	}
	soup := mustSoup(t, k, box, 16)
	t.Logf("box triangle count: %d", soup.TriangleCount())
}

func TestPrimitiveErrors(t *testing.T) {
	k := New()
	if _, err := k.Cylinder(1, -2); err == nil {
		t.Error("Cylinder with a negative radius should fail")
	}
	if _, err := k.Sphere(-1); err == nil {
		t.Error("Sphere with a negative radius should fail")
	}
}

func TestSphereAndCylinder(t *testing.T) {
	k := New()
	sphere, err := k.Sphere(5)
	if err != nil {
		t.Fatalf("Sphere failed: %v", err)
	}
	mustSoup(t, k, sphere, 0)

	cyl, err := k.Cylinder(10, 3)
	if err != nil {
		t.Fatalf("Cylinder failed: %v", err)
	}
	mustSoup(t, k, cyl, 12)
}

func TestDifferenceAddsTriangles(t *testing.T) {
	k := New()
	box, err := k.Box(10, 10, 10)
	if err != nil {
		t.Fatal(err)
	}
	cyl, err := k.Cylinder(12, 2)
	if err != nil {
		t.Fatal(err)
	}
	cyl = k.Translate(cyl, 5, 5, 5)

	plain := mustSoup(t, k, box, 16)
	holed := mustSoup(t, k, k.Difference(box, cyl), 16)
	if holed.TriangleCount() <= plain.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			holed.TriangleCount(), plain.TriangleCount())
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New()
	a, err := k.Box(4, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	b := k.Translate(a, 2, 0, 0)

	_, unionMax := k.Union(a, b).BoundingBox()
	if unionMax[0] < 6-1e-9 {
		t.Errorf("union max x = %v, want >= 6", unionMax[0])
	}
	mustSoup(t, k, k.Intersection(a, b), 12)
}

func TestRotate(t *testing.T) {
	k := New()
	box, err := k.Box(10, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	min, max := k.Rotate(box, 0, 0, 90).BoundingBox()
	if width := max[1] - min[1]; width < 10-1e-6 {
		t.Errorf("rotated box spans %v along y, want about 10", width)
	}
}

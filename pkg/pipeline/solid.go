package pipeline

import (
	"fmt"

	"github.com/chazu/uvatlas/pkg/job"
	"github.com/chazu/uvatlas/pkg/kernel"
)

// buildSolid walks a shape tree bottom-up and evaluates it with k.
func buildSolid(k kernel.Kernel, s *job.Shape) (kernel.Solid, error) {
	switch s.Kind {
	case job.ShapeBox, job.ShapeCylinder, job.ShapeSphere:
		return handlePrimitive(k, s)
	case job.ShapeUnion, job.ShapeDifference, job.ShapeIntersection:
		return handleBoolean(k, s)
	case job.ShapeTranslate, job.ShapeRotate:
		return handleTransform(k, s)
	default:
		return nil, fmt.Errorf("unknown shape kind %v", s.Kind)
	}
}

func handlePrimitive(k kernel.Kernel, s *job.Shape) (kernel.Solid, error) {
	switch s.Kind {
	case job.ShapeBox:
		return k.Box(s.Size.X, s.Size.Y, s.Size.Z)
	case job.ShapeCylinder:
		return k.Cylinder(s.Height, s.Radius)
	default:
		return k.Sphere(s.Radius)
	}
}

// handleBoolean folds the operands left to right.
func handleBoolean(k kernel.Kernel, s *job.Shape) (kernel.Solid, error) {
	if len(s.Children) == 0 {
		return nil, fmt.Errorf("%s without operands", s.Kind)
	}
	acc, err := buildSolid(k, s.Children[0])
	if err != nil {
		return nil, err
	}
	for _, c := range s.Children[1:] {
		next, err := buildSolid(k, c)
		if err != nil {
			return nil, err
		}
		switch s.Kind {
		case job.ShapeUnion:
			acc = k.Union(acc, next)
		case job.ShapeDifference:
			acc = k.Difference(acc, next)
		default:
			acc = k.Intersection(acc, next)
		}
	}
	return acc, nil
}

func handleTransform(k kernel.Kernel, s *job.Shape) (kernel.Solid, error) {
	if len(s.Children) != 1 {
		return nil, fmt.Errorf("%s needs one operand, got %d", s.Kind, len(s.Children))
	}
	child, err := buildSolid(k, s.Children[0])
	if err != nil {
		return nil, err
	}
	v := s.Size
	if v.X == 0 && v.Y == 0 && v.Z == 0 {
		return child, nil
	}
	if s.Kind == job.ShapeRotate {
		return k.Rotate(child, v.X, v.Y, v.Z), nil
	}
	return k.Translate(child, v.X, v.Y, v.Z), nil
}

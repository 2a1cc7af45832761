package job

import (
	"errors"
	"fmt"
)

// Validate reports every problem that would stop the job from running.
// The returned error joins one error per problem.
func (j *Job) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	switch {
	case j.Grid == nil && j.Solid == nil:
		add("job has no mesh source; use grid or solid")
	case j.Grid != nil && j.Solid != nil:
		add("job has both a grid and a solid source")
	}
	if g := j.Grid; g != nil {
		if g.Cols < 1 || g.Rows < 1 {
			add("grid: %dx%d has no cells", g.Cols, g.Rows)
		}
		if g.Cell <= 0 {
			add("grid: cell size %g must be positive", g.Cell)
		}
	}
	if j.Solid != nil {
		if err := j.Solid.validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if j.Cells < 0 {
		add("cells %d must not be negative", j.Cells)
	}
	if j.Weld < 0 {
		add("weld tolerance %g must not be negative", j.Weld)
	}
	if f := j.Options.MergeFraction; f != nil && *f < 0 {
		add("options: merge-fraction %g must not be negative", *f)
	}

	for i, f := range j.Features {
		if err := j.validateFeature(f); err != nil {
			errs = append(errs, fmt.Errorf("feature %d (%s): %w", i, f.Kind, err))
		}
	}
	return errors.Join(errs...)
}

func (j *Job) validateFeature(f Feature) error {
	switch f.Kind {
	case FeaturePath:
		if len(f.Path) < 2 {
			return fmt.Errorf("path needs at least 2 vertices, got %d", len(f.Path))
		}
		for _, v := range f.Path {
			if v < 0 {
				return fmt.Errorf("negative vertex index %d", v)
			}
		}
	case FeatureGridLine:
		if j.Grid == nil {
			return errors.New("grid-line needs a grid source")
		}
		limit := j.Grid.Cols
		if f.Axis == AxisY {
			limit = j.Grid.Rows
		}
		if f.Index < 0 || f.Index > limit {
			return fmt.Errorf("%s=%d is outside the grid [0, %d]", f.Axis, f.Index, limit)
		}
	case FeatureCreases:
		if f.Angle <= 0 || f.Angle >= 180 {
			return fmt.Errorf("angle %g must be in (0, 180)", f.Angle)
		}
		if f.MinLength < 0 {
			return fmt.Errorf("min-length %d must not be negative", f.MinLength)
		}
	default:
		return fmt.Errorf("unknown feature kind %d", int(f.Kind))
	}
	return nil
}

func (s *Shape) validate() error {
	switch s.Kind {
	case ShapeBox:
		if s.Size.X <= 0 || s.Size.Y <= 0 || s.Size.Z <= 0 {
			return fmt.Errorf("box: dimensions %gx%gx%g must be positive", s.Size.X, s.Size.Y, s.Size.Z)
		}
	case ShapeCylinder:
		if s.Height <= 0 || s.Radius <= 0 {
			return fmt.Errorf("cylinder: height %g and radius %g must be positive", s.Height, s.Radius)
		}
	case ShapeSphere:
		if s.Radius <= 0 {
			return fmt.Errorf("sphere: radius %g must be positive", s.Radius)
		}
	case ShapeUnion, ShapeDifference, ShapeIntersection:
		if len(s.Children) < 2 {
			return fmt.Errorf("%s: needs at least 2 operands, got %d", s.Kind, len(s.Children))
		}
	case ShapeTranslate, ShapeRotate:
		if len(s.Children) != 1 {
			return fmt.Errorf("%s: needs exactly 1 operand, got %d", s.Kind, len(s.Children))
		}
	default:
		return fmt.Errorf("unknown shape kind %d", int(s.Kind))
	}
	for _, c := range s.Children {
		if err := c.validate(); err != nil {
			return err
		}
	}
	return nil
}

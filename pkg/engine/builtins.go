package engine

import (
	"fmt"
	"strings"

	"github.com/chazu/uvatlas/pkg/job"
	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites script syntax that zygomys does not accept:
//
//   - :keyword becomes the string "__kw_keyword", so keywords need no
//     global symbols.
//   - kebab-case identifiers become snake_case (feature-path ->
//     feature_path); zygomys reads the hyphen as subtraction.
//   - ; line comments become // comments.
//
// String literals are copied untouched.
func preprocessSource(source string) string {
	var out strings.Builder
	out.Grow(len(source) + len(source)/4)
	b := []byte(source)

	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c == '"':
			i = copyQuoted(&out, b, i, true)
		case c == '`':
			i = copyQuoted(&out, b, i, false)
		case c == ';':
			out.WriteString("//")
			for i < len(b) && b[i] == ';' {
				i++
			}
			for ; i < len(b) && b[i] != '\n'; i++ {
				out.WriteByte(b[i])
			}
		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out.WriteString(":=")
			i += 2
		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out.WriteByte('"')
			out.WriteString(kwPrefix)
			out.Write(b[i+1 : j])
			out.WriteByte('"')
			i = j
		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// copyQuoted copies the literal opened at b[start] and returns the index
// after its closing quote.
func copyQuoted(out *strings.Builder, b []byte, start int, escapes bool) int {
	quote := b[start]
	out.WriteByte(quote)
	i := start + 1
	for i < len(b) && b[i] != quote {
		if escapes && b[i] == '\\' && i+1 < len(b) {
			out.Write(b[i : i+2])
			i += 2
			continue
		}
		out.WriteByte(b[i])
		i++
	}
	if i < len(b) {
		out.WriteByte(b[i])
		i++
	}
	return i
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Script values
// ---------------------------------------------------------------------------

// sexpShape carries a solid expression between builtins.
type sexpShape struct {
	shape *job.Shape
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s #%d)", s.shape.Kind, s.shape.Count())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs is an argument list split into keyword and positional arguments.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// A trailing keyword acts as a flag.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// float reads keyword name into dst when present.
func (a kwArgs) float(name string, dst *float64) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = f
	return nil
}

func (a kwArgs) int(name string, dst *int) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	n, err := toInt(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = n
	return nil
}

func (a kwArgs) vec(name string, dst *r3.Vec) error {
	v, ok := a.kw[name]
	if !ok {
		return nil
	}
	vec, err := toVec3(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = vec
	return nil
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toShape(s zygo.Sexp) (*job.Shape, error) {
	if v, ok := s.(*sexpShape); ok {
		return v.shape, nil
	}
	return nil, fmt.Errorf("expected shape, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a list or array to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toIndices flattens integers and lists of integers into vertex indices.
func toIndices(args []zygo.Sexp) ([]int, error) {
	var out []int
	for _, a := range args {
		if n, err := toInt(a); err == nil {
			out = append(out, n)
			continue
		}
		items, err := sexpListToSlice(a)
		if err != nil {
			return nil, fmt.Errorf("expected vertex index or list, got %T (%s)", a, a.SexpString(nil))
		}
		nested, err := toIndices(items)
		if err != nil {
			return nil, err
		}
		out = append(out, nested...)
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtin = zygo.ZlispUserFunction

// named prefixes errors from fn with the script-facing builtin name.
func named(script string, fn builtin) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		res, err := fn(env, name, args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", script, err)
		}
		return res, nil
	}
}

// registerBuiltins installs the job script builtins; they record what the
// script declares into j. Source must go through preprocessSource first.
func registerBuiltins(env *zygo.Zlisp, j *job.Job) {
	add := func(script string, fn builtin) {
		env.AddFunction(strings.ReplaceAll(script, "-", "_"), named(script, fn))
	}

	// -----------------------------------------------------------------------
	// (job "name")
	// -----------------------------------------------------------------------
	add("job", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("requires a name")
		}
		s, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		j.Name = s
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (grid :cols 4 :rows 4 :cell 1)
	// -----------------------------------------------------------------------
	add("grid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		g := &job.Grid{Cols: 1, Rows: 1, Cell: 1}
		if err := pa.int("cols", &g.Cols); err != nil {
			return nil, err
		}
		if err := pa.int("rows", &g.Rows); err != nil {
			return nil, err
		}
		if err := pa.float("cell", &g.Cell); err != nil {
			return nil, err
		}
		j.Grid = g
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	add("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("requires exactly 3 arguments, got %d", len(args))
		}
		var xyz [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
			}
			xyz[i] = f
		}
		return &sexpVec3{vec: r3.Vec{X: xyz[0], Y: xyz[1], Z: xyz[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// Primitives: (box :x 10 :y 10 :z 10) (cylinder :height 10 :radius 2)
	// (sphere :radius 5)
	// -----------------------------------------------------------------------
	add("box", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		s := &job.Shape{Kind: job.ShapeBox}
		for _, dim := range []struct {
			kw  string
			dst *float64
		}{{"x", &s.Size.X}, {"y", &s.Size.Y}, {"z", &s.Size.Z}} {
			if err := pa.float(dim.kw, dim.dst); err != nil {
				return nil, err
			}
		}
		if err := pa.vec("size", &s.Size); err != nil {
			return nil, err
		}
		return &sexpShape{shape: s}, nil
	})

	add("cylinder", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		s := &job.Shape{Kind: job.ShapeCylinder}
		if err := pa.float("height", &s.Height); err != nil {
			return nil, err
		}
		if err := pa.float("radius", &s.Radius); err != nil {
			return nil, err
		}
		return &sexpShape{shape: s}, nil
	})

	add("sphere", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		s := &job.Shape{Kind: job.ShapeSphere}
		if err := pa.float("radius", &s.Radius); err != nil {
			return nil, err
		}
		return &sexpShape{shape: s}, nil
	})

	// -----------------------------------------------------------------------
	// Booleans: (union a b ...) (difference a b ...) (intersection a b ...)
	// -----------------------------------------------------------------------
	for script, kind := range map[string]job.ShapeKind{
		"union":        job.ShapeUnion,
		"difference":   job.ShapeDifference,
		"intersection": job.ShapeIntersection,
	} {
		add(script, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			s := &job.Shape{Kind: kind}
			for i, a := range args {
				child, err := toShape(a)
				if err != nil {
					return nil, fmt.Errorf("operand %d: %w", i, err)
				}
				s.Children = append(s.Children, child)
			}
			return &sexpShape{shape: s}, nil
		})
	}

	// -----------------------------------------------------------------------
	// Transforms: (translate shape :by (vec3 ...)) (rotate shape :by (vec3 ...))
	// -----------------------------------------------------------------------
	for script, kind := range map[string]job.ShapeKind{
		"translate": job.ShapeTranslate,
		"rotate":    job.ShapeRotate,
	} {
		add(script, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			if len(pa.positional) != 1 {
				return nil, fmt.Errorf("requires one shape, got %d arguments", len(pa.positional))
			}
			child, err := toShape(pa.positional[0])
			if err != nil {
				return nil, err
			}
			s := &job.Shape{Kind: kind, Children: []*job.Shape{child}}
			if err := pa.vec("by", &s.Size); err != nil {
				return nil, err
			}
			return &sexpShape{shape: s}, nil
		})
	}

	// -----------------------------------------------------------------------
	// (solid shape :cells 24 :weld 0.0001)
	// -----------------------------------------------------------------------
	add("solid", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 1 {
			return nil, fmt.Errorf("requires one shape, got %d arguments", len(pa.positional))
		}
		s, err := toShape(pa.positional[0])
		if err != nil {
			return nil, err
		}
		if err := pa.int("cells", &j.Cells); err != nil {
			return nil, err
		}
		if err := pa.float("weld", &j.Weld); err != nil {
			return nil, err
		}
		j.Solid = s
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (feature-path "name" 0 1 2 3) or (feature-path "name" (list 0 1 2 3))
	// -----------------------------------------------------------------------
	add("feature-path", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("requires a name and vertex indices")
		}
		featureName, err := toString(args[0])
		if err != nil {
			return nil, fmt.Errorf("name: %w", err)
		}
		path, err := toIndices(args[1:])
		if err != nil {
			return nil, err
		}
		j.Features = append(j.Features, job.Feature{Kind: job.FeaturePath, Name: featureName, Path: path})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (grid-line :x 2 :name "seam")
	// -----------------------------------------------------------------------
	add("grid-line", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f := job.Feature{Kind: job.FeatureGridLine}
		_, hasX := pa.kw["x"]
		_, hasY := pa.kw["y"]
		switch {
		case hasX == hasY:
			return nil, fmt.Errorf("requires exactly one of :x or :y")
		case hasX:
			f.Axis = job.AxisX
			if err := pa.int("x", &f.Index); err != nil {
				return nil, err
			}
		default:
			f.Axis = job.AxisY
			if err := pa.int("y", &f.Index); err != nil {
				return nil, err
			}
		}
		if v, ok := pa.kw["name"]; ok {
			s, err := toString(v)
			if err != nil {
				return nil, fmt.Errorf("name: %w", err)
			}
			f.Name = s
		}
		j.Features = append(j.Features, f)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (creases :angle 40 :min-length 2)
	// -----------------------------------------------------------------------
	add("creases", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		f := job.Feature{Kind: job.FeatureCreases, Angle: 40, MinLength: 1}
		if err := pa.float("angle", &f.Angle); err != nil {
			return nil, err
		}
		if err := pa.int("min-length", &f.MinLength); err != nil {
			return nil, err
		}
		j.Features = append(j.Features, f)
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (options :merge-fraction 0.25 :respect-features true
	//          :seed-uncovered true :validate true)
	// -----------------------------------------------------------------------
	add("options", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if v, ok := pa.kw["merge-fraction"]; ok {
			f, err := toFloat64(v)
			if err != nil {
				return nil, fmt.Errorf("merge-fraction: %w", err)
			}
			j.Options.MergeFraction = &f
		}
		flags := []struct {
			kw  string
			dst **bool
		}{
			{"respect-features", &j.Options.RespectFeatures},
			{"seed-uncovered", &j.Options.SeedUncovered},
		}
		for _, flag := range flags {
			v, ok := pa.kw[flag.kw]
			if !ok {
				continue
			}
			b, err := toBool(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", flag.kw, err)
			}
			*flag.dst = &b
		}
		if v, ok := pa.kw["validate"]; ok {
			b, err := toBool(v)
			if err != nil {
				return nil, fmt.Errorf("validate: %w", err)
			}
			j.Options.Validate = b
		}
		for kw := range pa.kw {
			switch kw {
			case "merge-fraction", "respect-features", "seed-uncovered", "validate":
			default:
				return nil, fmt.Errorf("unknown option :%s", kw)
			}
		}
		return zygo.SexpNull, nil
	})
}

// Package preview draws a chart segmentation as SVG: every face is filled
// with the color of the chart that owns it.
package preview

import (
	"cmp"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/chazu/uvatlas/pkg/charts"
	"github.com/chazu/uvatlas/pkg/mesh"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Projection maps mesh points onto the drawing plane.
type Projection int

const (
	Top   Projection = iota // looking down -z
	Front                   // looking along +y
	Side                    // looking along -x
	Iso                     // isometric
)

var projectionNames = map[string]Projection{"top": Top, "front": Front, "side": Side, "iso": Iso}

// ParseProjection reads a projection name: top, front, side or iso.
func ParseProjection(name string) (Projection, error) {
	p, ok := projectionNames[name]
	if !ok {
		return 0, fmt.Errorf("preview: unknown projection %q", name)
	}
	return p, nil
}

// project returns the 2D position of p and its depth; larger depth is
// farther from the viewer.
func (pr Projection) project(p r3.Vec) (r2.Vec, float64) {
	switch pr {
	case Front:
		return r2.Vec{X: p.X, Y: p.Z}, p.Y
	case Side:
		return r2.Vec{X: p.Y, Y: p.Z}, -p.X
	case Iso:
		c, s := math.Cos(math.Pi/6), math.Sin(math.Pi/6)
		return r2.Vec{X: (p.X - p.Y) * c, Y: p.Z + (p.X+p.Y)*s}, p.X + p.Y - p.Z
	default:
		return r2.Vec{X: p.X, Y: p.Y}, -p.Z
	}
}

// Options controls the drawing.
type Options struct {
	Size       int // longest canvas side in pixels
	Margin     int
	Projection Projection
	Edges      bool // outline every face
	Title      string
}

func DefaultOptions() Options {
	return Options{Size: 512, Margin: 16, Projection: Top, Edges: true}
}

// unowned fills faces outside every chart.
var unowned = color.NRGBA{R: 0xDD, G: 0xDD, B: 0xDD, A: 0xFF}

type polygon struct {
	xs, ys []int
	depth  float64
	fill   color.NRGBA
}

// Render writes an SVG document of m to w.
func Render(w io.Writer, m *mesh.Mesh, cs []*charts.Chart, opts Options) error {
	faces := m.Faces()
	if len(faces) == 0 {
		return errors.New("preview: mesh has no faces")
	}
	if opts.Size <= 0 {
		opts.Size = DefaultOptions().Size
	}

	fills := make(map[mesh.FaceHandle]color.NRGBA, len(faces))
	for _, c := range cs {
		for _, f := range c.Faces() {
			fills[f] = c.Color()
		}
	}

	min := r2.Vec{X: math.Inf(1), Y: math.Inf(1)}
	max := r2.Vec{X: math.Inf(-1), Y: math.Inf(-1)}
	projected := make([][3]r2.Vec, len(faces))
	depths := make([]float64, len(faces))
	for i, f := range faces {
		for j, v := range m.FaceVertices(f) {
			q, d := opts.Projection.project(m.Point(v))
			projected[i][j] = q
			depths[i] += d / 3
			min = r2.Vec{X: math.Min(min.X, q.X), Y: math.Min(min.Y, q.Y)}
			max = r2.Vec{X: math.Max(max.X, q.X), Y: math.Max(max.Y, q.Y)}
		}
	}

	extent := math.Max(max.X-min.X, max.Y-min.Y)
	if extent == 0 {
		return errors.New("preview: mesh projects to a single point")
	}
	scale := float64(opts.Size) / extent
	width := int(math.Ceil((max.X-min.X)*scale)) + 2*opts.Margin
	height := int(math.Ceil((max.Y-min.Y)*scale)) + 2*opts.Margin

	polys := make([]polygon, len(faces))
	for i, f := range faces {
		p := polygon{xs: make([]int, 3), ys: make([]int, 3), depth: depths[i], fill: unowned}
		if c, ok := fills[f]; ok {
			p.fill = c
		}
		for j, q := range projected[i] {
			p.xs[j] = opts.Margin + int(math.Round((q.X-min.X)*scale))
			// SVG y grows downwards.
			p.ys[j] = height - opts.Margin - int(math.Round((q.Y-min.Y)*scale))
		}
		polys[i] = p
	}
	// Painter's algorithm: far faces first.
	slices.SortStableFunc(polys, func(a, b polygon) int { return cmp.Compare(b.depth, a.depth) })

	canvas := svg.New(w)
	canvas.Start(width, height)
	if opts.Title != "" {
		canvas.Title(opts.Title)
	}
	canvas.Rect(0, 0, width, height, "fill:white")
	stroke := "stroke:none"
	if opts.Edges {
		stroke = "stroke:#333333;stroke-width:0.5;stroke-linejoin:round"
	}
	canvas.Gstyle(stroke)
	for _, p := range polys {
		canvas.Polygon(p.xs, p.ys, "fill:"+charts.Hex(p.fill))
	}
	canvas.Gend()
	canvas.End()
	return nil
}

// Package pipeline runs a job end to end: it builds the mesh, locates the
// feature curves, segments the mesh into charts, checks the result and
// paints each chart's vertices with its color.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/chazu/uvatlas/pkg/charts"
	"github.com/chazu/uvatlas/pkg/features"
	"github.com/chazu/uvatlas/pkg/job"
	"github.com/chazu/uvatlas/pkg/kernel"
	"github.com/chazu/uvatlas/pkg/mesh"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// ErrNoKernel is returned for solid jobs when the runner has no kernel.
var ErrNoKernel = errors.New("pipeline: solid job needs a kernel")

// Result is the outcome of one run. Mesh and Charts are live objects; the
// mesh has been split along the chart perimeters.
type Result struct {
	RunID      uuid.UUID
	Job        *job.Job
	Mesh       *mesh.Mesh
	Features   []*features.Set
	Charts     []*charts.Chart
	Stats      charts.Stats
	Validation []charts.ValidationError
	Skipped    int // soup triangles dropped while building the mesh
	Elapsed    time.Duration
}

// Valid reports whether validation ran and found no error.
func (r *Result) Valid() bool {
	return r.Job.Options.Validate && charts.Valid(r.Validation)
}

// Runner executes jobs. The zero value runs grid jobs and logs to the
// standard logger.
type Runner struct {
	Kernel kernel.Kernel
	// Output receives the log of every run, prefixed with its run id.
	// Nil means the standard logger's output.
	Output io.Writer
}

// Run executes j.
func (r *Runner) Run(j *job.Job) (*Result, error) {
	if err := j.Validate(); err != nil {
		return nil, fmt.Errorf("pipeline: invalid job: %w", err)
	}

	start := time.Now()
	res := &Result{RunID: uuid.New(), Job: j}
	logger := r.logger(res.RunID)

	m, skipped, err := r.buildMesh(j)
	if err != nil {
		return nil, fmt.Errorf("pipeline: build mesh: %w", err)
	}
	res.Mesh, res.Skipped = m, skipped
	logger.Printf("mesh: %d vertices, %d faces, %d edges (%d triangles skipped)",
		len(m.Vertices()), len(m.Faces()), len(m.Edges()), skipped)

	res.Features, err = featureSets(m, j)
	if err != nil {
		return nil, fmt.Errorf("pipeline: features: %w", err)
	}
	logger.Printf("features: %d curves, %d half-edges", len(res.Features),
		lo.SumBy(res.Features, func(s *features.Set) int { return s.Size() }))

	b := charts.NewBuilder(m, res.Features, builderOptions(j, logger))
	if err := b.Build(); err != nil {
		return nil, fmt.Errorf("pipeline: build charts: %w", err)
	}
	res.Charts = b.Charts()
	res.Stats = b.Stats()
	if j.Options.Validate {
		res.Validation = b.Validate()
	}
	charts.Paint(m, res.Charts)

	res.Elapsed = time.Since(start)
	logger.Printf("done: %d charts in %s", len(res.Charts), res.Elapsed.Round(time.Millisecond))
	return res, nil
}

func (r *Runner) logger(id uuid.UUID) *log.Logger {
	out := r.Output
	if out == nil {
		out = log.Writer()
	}
	return log.New(out, fmt.Sprintf("[%s] ", id.String()[:8]), log.Flags())
}

func (r *Runner) buildMesh(j *job.Job) (*mesh.Mesh, int, error) {
	if g := j.Grid; g != nil {
		return mesh.Grid(g.Cols, g.Rows, g.Cell), 0, nil
	}
	if r.Kernel == nil {
		return nil, 0, ErrNoKernel
	}
	solid, err := buildSolid(r.Kernel, j.Solid)
	if err != nil {
		return nil, 0, err
	}
	soup, err := r.Kernel.ToSoup(solid, j.Cells)
	if err != nil {
		return nil, 0, err
	}
	m, skipped, err := mesh.FromSoup(soup.Positions(), j.Weld)
	if err != nil {
		return nil, 0, err
	}
	m.UpdateNormals()
	return m, skipped, nil
}

// featureSets turns the job's feature descriptions into sets numbered in
// declaration order.
func featureSets(m *mesh.Mesh, j *job.Job) ([]*features.Set, error) {
	var sets []*features.Set
	for i, f := range j.Features {
		id := len(sets)
		switch f.Kind {
		case job.FeaturePath:
			path := lo.Map(f.Path, func(v int, _ int) mesh.VertexHandle { return mesh.VertexHandle(v) })
			for _, v := range path {
				if int(v) >= m.NumVertices() {
					return nil, fmt.Errorf("feature %d: vertex %d out of range, mesh has %d", i, v, m.NumVertices())
				}
			}
			s, err := features.FromPath(m, id, path)
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			sets = append(sets, s)

		case job.FeatureGridLine:
			s, err := features.FromPath(m, id, gridLine(j.Grid, f))
			if err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
			sets = append(sets, s)

		case job.FeatureCreases:
			sets = append(sets, features.DetectCreases(m, f.Angle, f.MinLength, id)...)
		}
	}
	return sets, nil
}

func gridLine(g *job.Grid, f job.Feature) []mesh.VertexHandle {
	var path []mesh.VertexHandle
	if f.Axis == job.AxisX {
		for row := 0; row <= g.Rows; row++ {
			path = append(path, mesh.GridVertex(g.Cols, f.Index, row))
		}
		return path
	}
	for col := 0; col <= g.Cols; col++ {
		path = append(path, mesh.GridVertex(g.Cols, col, f.Index))
	}
	return path
}

func builderOptions(j *job.Job, logger *log.Logger) charts.Options {
	opts := charts.DefaultOptions()
	opts.Logger = logger
	if v := j.Options.MergeFraction; v != nil {
		opts.MergeFraction = *v
	}
	if v := j.Options.RespectFeatures; v != nil {
		opts.RespectFeatureEdges = *v
	}
	if v := j.Options.SeedUncovered; v != nil {
		opts.SeedUncovered = *v
	}
	return opts
}

// ChartSummary is the JSON form of one chart.
type ChartSummary struct {
	ID          int     `json:"id"`
	Color       string  `json:"color"`
	Faces       int     `json:"faces"`
	Vertices    int     `json:"vertices"`
	Perimeter   int     `json:"perimeter"`
	MaxDistance float64 `json:"maxDistance"`
}

// Summary is the JSON form of a Result.
type Summary struct {
	RunID     string         `json:"runId"`
	Name      string         `json:"name"`
	Vertices  int            `json:"vertices"`
	Faces     int            `json:"faces"`
	Features  int            `json:"features"`
	Charts    []ChartSummary `json:"charts"`
	Stats     charts.Stats   `json:"stats"`
	Validated bool           `json:"validated"`
	Valid     bool           `json:"valid"`
	Problems  []string       `json:"problems"`
	ElapsedMS int64          `json:"elapsedMs"`
}

func (r *Result) Summary() Summary {
	return Summary{
		RunID:    r.RunID.String(),
		Name:     r.Job.Name,
		Vertices: len(r.Mesh.Vertices()),
		Faces:    len(r.Mesh.Faces()),
		Features: len(r.Features),
		Charts: lo.Map(r.Charts, func(c *charts.Chart, _ int) ChartSummary {
			return ChartSummary{
				ID:          c.ID(),
				Color:       charts.Hex(c.Color()),
				Faces:       len(c.Faces()),
				Vertices:    len(c.Vertices()),
				Perimeter:   len(c.Perimeter()),
				MaxDistance: c.MaxDistance(),
			}
		}),
		Stats:     r.Stats,
		Validated: r.Job.Options.Validate,
		Valid:     r.Valid(),
		Problems: lo.Map(r.Validation, func(e charts.ValidationError, _ int) string {
			return e.Error()
		}),
		ElapsedMS: r.Elapsed.Milliseconds(),
	}
}

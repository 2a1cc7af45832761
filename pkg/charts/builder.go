// Package charts partitions a triangle mesh into charts whose seams follow
// feature curves, and separates the charts topologically so each can be
// flattened on its own.
//
// A Builder runs in three phases:
//
//  1. FindBoundaries propagates a distance field from every feature set.
//  2. BuildCharts seeds charts on the faces farthest from the features and
//     grows them in order of decreasing distance, merging charts that meet
//     where both have stopped gaining distance.
//  3. SplitCharts duplicates the vertices on every chart perimeter so that
//     charts no longer share geometry.
//
// Validate checks the result. The Builder mutates the mesh it is given and
// must have exclusive access to it for the whole run.
package charts

import (
	"errors"
	"fmt"
	"log"

	"github.com/chazu/uvatlas/pkg/features"
	"github.com/chazu/uvatlas/pkg/mesh"
)

// ErrAlreadyBuilt is returned when Build is called a second time; the mesh
// has been split by then.
var ErrAlreadyBuilt = errors.New("charts: builder already ran")

// Options tunes a Builder. Start from DefaultOptions.
type Options struct {
	// MergeFraction times the global maximum distance is the headroom below
	// which two touching charts are merged.
	MergeFraction float64

	// RespectFeatureEdges stops growth across edges that lie on a feature
	// curve.
	RespectFeatureEdges bool

	// SeedUncovered keeps seeding new charts at the farthest unowned face
	// while growth leaves faces unowned, such as the regions around a single
	// curve that no border face touches.
	SeedUncovered bool

	Logger *log.Logger
	IDs    *Sequence
	Colors *Palette
}

// DefaultOptions returns the standard settings.
func DefaultOptions() Options {
	return Options{
		MergeFraction:       0.25,
		RespectFeatureEdges: true,
		SeedUncovered:       true,
	}
}

// Stats summarizes a run.
type Stats struct {
	Rounds     int // distance propagation rounds
	Seeds      int // charts spawned, reseeds included
	Reseeds    int
	Merges     int
	Charts     int
	Unassigned int // faces no chart reached
}

// Builder segments one mesh into charts.
type Builder struct {
	mesh *mesh.Mesh
	sets []*features.Set
	opts Options
	log  *log.Logger

	states       []FaceState         // indexed by face handle
	frontiers    [][]mesh.FaceHandle // per feature set
	tracked      []bool              // chart-boundary edges, indexed by edge handle
	featureEdges map[mesh.EdgeHandle]bool

	charts      []*Chart
	maxDistance float64
	built       bool
	stats       Stats
}

// NewBuilder returns a builder for m and the given feature sets. Nil
// generators and logger in opts are replaced by fresh defaults.
func NewBuilder(m *mesh.Mesh, sets []*features.Set, opts Options) *Builder {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.IDs == nil {
		opts.IDs = NewSequence(1)
	}
	if opts.Colors == nil {
		opts.Colors = NewPalette()
	}
	return &Builder{
		mesh: m,
		sets: sets,
		opts: opts,
		log:  opts.Logger,
	}
}

// Build runs FindBoundaries, BuildCharts and SplitCharts.
func (b *Builder) Build() error {
	if b.built {
		return ErrAlreadyBuilt
	}
	if err := b.checkInput(); err != nil {
		return err
	}
	b.built = true

	b.FindBoundaries()
	b.BuildCharts()
	b.SplitCharts()
	return nil
}

func (b *Builder) checkInput() error {
	if b.mesh == nil {
		return errors.New("charts: nil mesh")
	}
	for k, s := range b.sets {
		for _, h := range s.Halfedges() {
			if !h.IsValid() || int(h) >= b.mesh.NumHalfedges() || b.mesh.EdgeDeleted(b.mesh.EdgeOf(h)) {
				return fmt.Errorf("charts: feature set %d: invalid half-edge %d", k, h)
			}
		}
	}
	return nil
}

// Charts returns the live charts.
func (b *Builder) Charts() []*Chart { return b.charts }

// MaxDistance is the largest aggregate face distance found by
// FindBoundaries.
func (b *Builder) MaxDistance() float64 { return b.maxDistance }

func (b *Builder) Stats() Stats { return b.stats }

// FaceState returns the state of f. States are dropped by SplitCharts,
// after which face handles from before the split are meaningless.
func (b *Builder) FaceState(f mesh.FaceHandle) *FaceState {
	if int(f) >= len(b.states) || f < 0 {
		return nil
	}
	return &b.states[f]
}

// FindBoundaries computes, for every face, its distance in face steps to
// each feature set and the aggregate distance over all sets.
func (b *Builder) FindBoundaries() {
	m := b.mesh
	b.states = make([]FaceState, m.NumFaces())
	for i := range b.states {
		b.states[i] = NewFaceState(mesh.FaceHandle(i), len(b.sets))
	}

	b.initializeBoundaries()
	depth := 2
	for b.expandBoundaries(depth) {
		depth++
	}
	b.stats.Rounds = depth - 1

	b.maxDistance = 0
	for _, f := range m.Faces() {
		st := &b.states[f]
		st.CalcDistance()
		b.maxDistance = max(b.maxDistance, st.Distance())
	}
	b.log.Printf("charts: distance field over %d sets converged after %d rounds, max distance %.3f",
		len(b.sets), b.stats.Rounds, b.maxDistance)
}

// initializeBoundaries gives distance 1 to every face touching a vertex of
// a feature set.
func (b *Builder) initializeBoundaries() {
	m := b.mesh
	b.frontiers = make([][]mesh.FaceHandle, len(b.sets))
	for k, s := range b.sets {
		for _, v := range s.Vertices(m) {
			for _, f := range m.VertexFaces(v) {
				st := &b.states[f]
				if st.HasDistanceTo(k) {
					continue
				}
				st.SetDistanceTo(k, 1)
				b.frontiers[k] = append(b.frontiers[k], f)
			}
		}
	}
}

// expandBoundaries advances every front by one face step, stamping newly
// reached faces with depth. Border faces stop the front. It reports whether
// any front moved.
func (b *Builder) expandBoundaries(depth int) bool {
	m := b.mesh
	grew := false
	for k, frontier := range b.frontiers {
		var next []mesh.FaceHandle
		for _, f := range frontier {
			if b.states[f].IsBorder() {
				continue
			}
			for _, g := range m.FaceFaces(f) {
				st := &b.states[g]
				if st.HasDistanceTo(k) {
					continue
				}
				st.SetDistanceTo(k, depth)
				next = append(next, g)
			}
		}
		b.frontiers[k] = next
		grew = grew || len(next) > 0
	}
	return grew
}

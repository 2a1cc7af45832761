package charts

import (
	"github.com/chazu/uvatlas/pkg/features"
	"github.com/chazu/uvatlas/pkg/mesh"
	"github.com/samber/lo"
)

// BuildCharts seeds charts and grows them over the mesh. It must run after
// FindBoundaries.
func (b *Builder) BuildCharts() {
	m := b.mesh
	b.featureEdges = features.EdgeSet(m, b.sets)
	b.tracked = make([]bool, m.NumEdges())
	for _, e := range m.Edges() {
		b.tracked[e] = true
	}

	b.initializeCharts()

	var q maxQueue[mesh.HalfedgeHandle]
	for _, c := range b.charts {
		b.pushSeed(&q, c)
	}
	b.grow(&q)

	if b.opts.SeedUncovered {
		for {
			f := b.farthestUnassigned()
			if !f.IsValid() {
				break
			}
			b.spawnChart(f)
			b.stats.Reseeds++
			b.pushSeed(&q, b.charts[len(b.charts)-1])
			b.grow(&q)
		}
	}

	b.dropDeadCharts()
	b.log.Printf("charts: %d seeds (%d reseeds) grew into %d charts (%d merges), %d faces unassigned",
		b.stats.Seeds, b.stats.Reseeds, b.stats.Charts, b.stats.Merges, b.stats.Unassigned)
}

func (b *Builder) pushSeed(q *maxQueue[mesh.HalfedgeHandle], c *Chart) {
	for _, h := range b.mesh.FaceHalfedges(c.Faces()[0]) {
		q.push(h, b.faceDistance(b.mesh.FaceOf(h)))
	}
}

// grow drains q. Each popped half-edge either hands the face behind it to
// the chart in front of it, or, when both sides are owned by different
// charts that have nearly stopped gaining distance, merges the two charts.
func (b *Builder) grow(q *maxQueue[mesh.HalfedgeHandle]) {
	m := b.mesh
	eps := b.maxDistance * b.opts.MergeFraction

	for q.Len() > 0 {
		h := q.pop()
		face, faceOpp := m.FaceOf(h), m.OppositeFace(h)
		if !face.IsValid() || !faceOpp.IsValid() {
			continue
		}
		if b.opts.RespectFeatureEdges && b.featureEdges[m.EdgeOf(h)] {
			continue
		}

		st, stOpp := &b.states[face], &b.states[faceOpp]
		if !st.HasChart() {
			faceOpp = face
			st, stOpp = stOpp, st
		}
		if !st.HasChart() {
			continue
		}
		chart := b.charts[st.Chart()]

		if !stOpp.HasChart() {
			chart.Add(faceOpp, stOpp.Distance())
			stOpp.SetChart(st.Chart())
			b.retire(m.EdgeOf(h))
			for _, e := range m.FaceEdges(faceOpp) {
				if !b.tracked[e] {
					continue
				}
				for i := 0; i < 2; i++ {
					he := m.Halfedge(e, i)
					q.push(he, b.faceDistance(m.FaceOf(he)))
				}
			}
			continue
		}

		if st.Chart() == stOpp.Chart() {
			continue
		}
		chartOpp := b.charts[stOpp.Chart()]
		if chart.MaxDistance()-st.Distance() < eps && chartOpp.MaxDistance()-st.Distance() < eps {
			b.mergeCharts(st.Chart(), stOpp.Chart())
		}
	}
}

// farthestUnassigned returns the unowned face with the largest aggregate
// distance, lowest handle first on ties, or InvalidFace.
func (b *Builder) farthestUnassigned() mesh.FaceHandle {
	best := mesh.InvalidFace
	for _, f := range b.mesh.Faces() {
		if b.states[f].HasChart() {
			continue
		}
		if !best.IsValid() || b.farther(f, best) {
			best = f
		}
	}
	return best
}

// faceDistance is the queue priority of a face; boundary sides count as 0.
func (b *Builder) faceDistance(f mesh.FaceHandle) float64 {
	if !f.IsValid() {
		return 0
	}
	return b.states[f].Distance()
}

// initializeCharts picks seed faces. Border faces are visited from the
// farthest inward; a face seeds a chart when it touches a feature set that
// no earlier seed touched.
func (b *Builder) initializeCharts() {
	m := b.mesh
	var q maxQueue[mesh.FaceHandle]
	for _, f := range m.Faces() {
		if st := &b.states[f]; st.IsBorder() {
			q.push(f, st.Distance())
		}
	}

	used := make([]bool, len(b.sets))
	for q.Len() > 0 {
		f := q.pop()
		sets := b.states[f].Sets()
		if !lo.SomeBy(sets, func(k int) bool { return !used[k] }) {
			continue
		}
		for _, k := range sets {
			used[k] = true
		}
		b.spawnChart(f)
	}
}

// farther orders faces by aggregate distance, lower handle first on ties.
func (b *Builder) farther(f, than mesh.FaceHandle) bool {
	df, dt := b.states[f].Distance(), b.states[than].Distance()
	if df != dt {
		return df > dt
	}
	return f < than
}

func (b *Builder) spawnChart(seed mesh.FaceHandle) {
	st := &b.states[seed]
	c := NewChart(b.mesh, b.opts.IDs.Next(), b.opts.Colors.Next())
	c.Add(seed, st.Distance())
	st.SetChart(len(b.charts))
	b.charts = append(b.charts, c)
	b.stats.Seeds++
}

// mergeCharts moves every face of chart from into chart to.
func (b *Builder) mergeCharts(to, from int) {
	dst, src := b.charts[to], b.charts[from]
	for _, f := range src.Faces() {
		b.states[f].SetChart(to)
	}
	dst.Merge(src)
	src.Clear()
	b.stats.Merges++
}

// dropDeadCharts removes cleared and empty charts, releases their texture
// coordinate storage and renumbers face ownership.
func (b *Builder) dropDeadCharts() {
	live := b.charts[:0]
	for _, c := range b.charts {
		if c.IsCleared() || c.IsEmpty() {
			if c.uv.IsValid() {
				b.mesh.RemoveProperty(c.uv)
			}
			continue
		}
		live = append(live, c)
	}
	b.charts = live

	for i, c := range b.charts {
		for _, f := range c.Faces() {
			b.states[f].SetChart(i)
		}
	}
	b.stats.Charts = len(b.charts)
	b.stats.Unassigned = lo.CountBy(b.mesh.Faces(), func(f mesh.FaceHandle) bool {
		return !b.states[f].HasChart()
	})
}

// retire removes e from the chart-boundary edge set. Removal can leave
// neighbouring tracked edges with an endpoint that reaches no other tracked
// edge; those are retired as well, until no such edge is left.
func (b *Builder) retire(e mesh.EdgeHandle) {
	if !b.tracked[e] {
		return
	}
	b.tracked[e] = false
	work := []mesh.EdgeHandle{e}
	for len(work) > 0 {
		cur := work[len(work)-1]
		work = work[:len(work)-1]
		v0, v1 := b.mesh.EdgeVertices(cur)
		for _, v := range [2]mesh.VertexHandle{v0, v1} {
			for _, n := range b.mesh.VertexEdges(v) {
				if b.tracked[n] && !b.linked(n) {
					b.tracked[n] = false
					work = append(work, n)
				}
			}
		}
	}
}

// linked reports whether both endpoints of e touch another tracked edge.
func (b *Builder) linked(e mesh.EdgeHandle) bool {
	v0, v1 := b.mesh.EdgeVertices(e)
	return b.touchesTracked(v0, e) && b.touchesTracked(v1, e)
}

func (b *Builder) touchesTracked(v mesh.VertexHandle, except mesh.EdgeHandle) bool {
	for _, n := range b.mesh.VertexEdges(v) {
		if n != except && b.tracked[n] {
			return true
		}
	}
	return false
}

package charts

import "github.com/chazu/uvatlas/pkg/mesh"

const (
	vertexIDProp = "charts:vertex-id"
	ownerProp    = "charts:owner"
)

// SplitCharts separates the charts topologically. Every vertex gets a
// stable id, each chart queues its perimeter for duplication, the mesh is
// garbage collected once, and the charts rebuild themselves from the ids.
// All face and vertex handles from before the call are invalid afterwards.
func (b *Builder) SplitCharts() {
	m := b.mesh
	ids := mesh.AddVertexProp[int](m, vertexIDProp)
	owner := mesh.AddFaceProp[int](m, ownerProp)
	defer m.RemoveProperty(ids)
	defer m.RemoveProperty(owner)

	plan := &SplitPlan{}
	for _, v := range m.Vertices() {
		ids.Set(v, plan.NextID)
		plan.NextID++
	}
	for _, c := range b.charts {
		for _, f := range c.Faces() {
			owner.Set(f, c.ID())
		}
	}

	for _, c := range b.charts {
		c.SetupReconstruction(m, owner, ids, plan)
	}

	plan.DeleteVertices = mesh.Unique(plan.DeleteVertices)
	plan.DeleteFaces = mesh.Unique(plan.DeleteFaces)
	b.log.Printf("charts: reconstructing %d vertices and %d faces", len(plan.DeleteVertices), len(plan.DeleteFaces))

	for _, v := range plan.DeleteVertices {
		m.DeleteVertex(v)
	}
	for _, f := range plan.DeleteFaces {
		m.DeleteFace(f, false)
	}
	m.GarbageCollect()
	b.states = nil

	byID := make(map[int]mesh.VertexHandle, m.NumVertices())
	for _, v := range m.Vertices() {
		byID[ids.Get(v)] = v
	}
	for _, c := range b.charts {
		c.Reconstruct(m, owner, byID, b.log)
	}
}

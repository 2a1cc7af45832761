package charts

import (
	"fmt"
	"image/color"
	"log"

	"github.com/chazu/uvatlas/pkg/mesh"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/spatial/r2"
)

// Chart is a connected set of faces that will be flattened as one piece.
//
// During growth a chart only tracks its faces. Surgery (SetupReconstruction
// followed by Reconstruct) gives it its own copies of the vertices on its
// perimeter so that no vertex is shared with another chart.
type Chart struct {
	id          int
	color       color.NRGBA
	maxDistance float64
	cleared     bool

	faces             []mesh.FaceHandle
	vertices          []mesh.VertexHandle
	perimeterVertices []mesh.VertexHandle
	perimeterEdges    []mesh.EdgeHandle
	perimeterFaces    []mesh.FaceHandle

	// rebuild holds the stable vertex ids of every face replaced during
	// surgery, in corner order.
	rebuild [][3]int

	uv mesh.VertexProp[r2.Vec]
}

// NewChart returns an empty chart. When m is not nil the chart registers its
// own per-vertex texture coordinate property on it.
func NewChart(m *mesh.Mesh, id int, c color.NRGBA) *Chart {
	ch := &Chart{id: id, color: c}
	if m != nil {
		ch.uv = mesh.AddVertexProp[r2.Vec](m, fmt.Sprintf("chart:%d:uv", id))
	}
	return ch
}

func (c *Chart) ID() int { return c.id }
func (c *Chart) Color() color.NRGBA { return c.color }
func (c *Chart) MaxDistance() float64 { return c.maxDistance }
func (c *Chart) IsCleared() bool { return c.cleared }
func (c *Chart) IsEmpty() bool { return len(c.faces) == 0 }
func (c *Chart) Faces() []mesh.FaceHandle { return c.faces }

// Vertices is valid after Reconstruct.
func (c *Chart) Vertices() []mesh.VertexHandle { return c.vertices }

// Perimeter returns the perimeter vertices.
func (c *Chart) Perimeter() []mesh.VertexHandle { return c.perimeterVertices }
func (c *Chart) PerimeterEdges() []mesh.EdgeHandle { return c.perimeterEdges }
func (c *Chart) PerimeterFaces() []mesh.FaceHandle { return c.perimeterFaces }
func (c *Chart) TexCoords() mesh.VertexProp[r2.Vec] { return c.uv }

// Add appends face unless it is already a member.
func (c *Chart) Add(face mesh.FaceHandle, distance float64) bool {
	if c.Contains(face) {
		return false
	}
	c.faces = append(c.faces, face)
	c.maxDistance = max(c.maxDistance, distance)
	return true
}

// Merge appends other's faces. Face ownership is the caller's business.
func (c *Chart) Merge(other *Chart) {
	c.faces = append(c.faces, other.faces...)
	c.maxDistance = max(c.maxDistance, other.maxDistance)
}

// Clear empties the chart and marks it as absorbed.
func (c *Chart) Clear() {
	c.faces = nil
	c.maxDistance = 0
	c.cleared = true
}

func (c *Chart) Contains(face mesh.FaceHandle) bool {
	return lo.Contains(c.faces, face)
}

// SplitPlan carries the state shared by every chart during surgery.
type SplitPlan struct {
	NextID         int
	DeleteVertices []mesh.VertexHandle
	DeleteFaces    []mesh.FaceHandle
}

// SetupReconstruction is the first half of surgery. It duplicates every
// perimeter vertex, records the faces that must be rebuilt on the
// duplicates as stable ids, and queues the originals in plan for deletion.
// The mesh is only grown here; nothing is deleted.
func (c *Chart) SetupReconstruction(m *mesh.Mesh, owner mesh.FaceProp[int], ids mesh.VertexProp[int], plan *SplitPlan) {
	for _, f := range c.faces {
		owner.Set(f, c.id)
	}

	c.perimeterFaces = c.perimeterFaces[:0]
	c.perimeterEdges = c.perimeterEdges[:0]
	c.perimeterVertices = c.perimeterVertices[:0]
	for _, f := range c.faces {
		for _, h := range m.FaceHalfedges(f) {
			opp := m.OppositeFace(h)
			if opp.IsValid() && owner.Get(opp) == c.id {
				continue
			}
			c.perimeterFaces = append(c.perimeterFaces, f)
			c.perimeterEdges = append(c.perimeterEdges, m.EdgeOf(h))
			c.perimeterVertices = append(c.perimeterVertices, m.FromVertex(h), m.ToVertex(h))
		}
	}
	c.perimeterFaces = mesh.Unique(c.perimeterFaces)
	c.perimeterEdges = mesh.Unique(c.perimeterEdges)
	c.perimeterVertices = mesh.Unique(c.perimeterVertices)

	copies := make(map[mesh.VertexHandle]mesh.VertexHandle, len(c.perimeterVertices))
	var replace []mesh.FaceHandle
	for _, v := range c.perimeterVertices {
		dup := m.AddVertex(m.Point(v))
		m.CopyAllProperties(v, dup)
		ids.Set(dup, plan.NextID)
		plan.NextID++
		copies[v] = dup

		for _, f := range m.VertexFaces(v) {
			if owner.Get(f) == c.id {
				replace = append(replace, f)
			}
		}
		plan.DeleteVertices = append(plan.DeleteVertices, v)
	}

	c.rebuild = c.rebuild[:0]
	for _, f := range mesh.Unique(replace) {
		var desc [3]int
		for i, v := range m.FaceVertices(f) {
			if dup, ok := copies[v]; ok {
				desc[i] = ids.Get(dup)
			} else {
				desc[i] = ids.Get(v)
			}
		}
		c.rebuild = append(c.rebuild, desc)
		plan.DeleteFaces = append(plan.DeleteFaces, f)
	}
}

// Reconstruct is the second half of surgery, run after the mesh has been
// garbage collected. byID maps stable vertex ids to current handles. An id
// that cannot be resolved is logged and leaves an invalid vertex in its slot;
// AddFace then rejects the triangle, so the whole face is dropped from the
// chart and the mesh.
func (c *Chart) Reconstruct(m *mesh.Mesh, owner mesh.FaceProp[int], byID map[int]mesh.VertexHandle, logger *log.Logger) {
	c.faces = nil
	for _, f := range m.Faces() {
		if owner.Get(f) == c.id {
			c.faces = append(c.faces, f)
		}
	}

	created := make([]mesh.FaceHandle, 0, len(c.rebuild))
	for _, desc := range c.rebuild {
		var vs [3]mesh.VertexHandle
		for i, id := range desc {
			v, ok := byID[id]
			if !ok {
				logger.Printf("chart %d: failed to find vertex id %d", c.id, id)
				v = mesh.InvalidVertex
			}
			vs[i] = v
		}
		// Fails for an unresolved slot; the face is dropped.
		f, err := m.AddFace(vs[0], vs[1], vs[2])
		if err != nil {
			logger.Printf("chart %d: recreate face %v: %v", c.id, desc, err)
			continue
		}
		owner.Set(f, c.id)
		c.faces = append(c.faces, f)
		created = append(created, f)
	}
	c.rebuild = nil

	c.perimeterFaces = lo.Filter(created, func(f mesh.FaceHandle, _ int) bool {
		edges := m.FaceEdges(f)
		return lo.SomeBy(edges[:], m.IsBoundaryEdge)
	})

	c.vertices = c.vertices[:0]
	for _, f := range c.faces {
		vs := m.FaceVertices(f)
		c.vertices = append(c.vertices, vs[:]...)
	}
	c.vertices = mesh.Unique(c.vertices)

	c.perimeterEdges = c.perimeterEdges[:0]
	c.perimeterVertices = c.perimeterVertices[:0]
	for _, f := range c.perimeterFaces {
		for _, e := range m.FaceEdges(f) {
			if !m.IsBoundaryEdge(e) {
				continue
			}
			a, b := m.EdgeVertices(e)
			c.perimeterEdges = append(c.perimeterEdges, e)
			c.perimeterVertices = append(c.perimeterVertices, a, b)
		}
	}
	c.perimeterEdges = mesh.Unique(c.perimeterEdges)
	c.perimeterVertices = mesh.Unique(c.perimeterVertices)
}

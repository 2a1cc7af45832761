// Package mesh implements a half-edge triangle mesh with typed per-element
// property side-tables.
//
// Elements are addressed by integer handles. Deleting an element only marks
// it; GarbageCollect compacts storage and renumbers every handle, so handles
// obtained before a collection must not be used after it. Anything that has
// to survive a collection should be stored in a property and looked up again.
//
// Edges are stored as half-edge pairs: edge e owns half-edges 2e and 2e+1.
package mesh

import (
	"image/color"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// VertexHandle identifies a vertex.
type VertexHandle int

// FaceHandle identifies a triangular face.
type FaceHandle int

// EdgeHandle identifies an undirected edge.
type EdgeHandle int

// HalfedgeHandle identifies one direction of an edge.
type HalfedgeHandle int

const (
	InvalidVertex   VertexHandle   = -1
	InvalidFace     FaceHandle     = -1
	InvalidEdge     EdgeHandle     = -1
	InvalidHalfedge HalfedgeHandle = -1
)

func (v VertexHandle) IsValid() bool { return v >= 0 }
func (f FaceHandle) IsValid() bool { return f >= 0 }
func (e EdgeHandle) IsValid() bool { return e >= 0 }
func (h HalfedgeHandle) IsValid() bool { return h >= 0 }

// halfedge points at the vertex it ends in. next is only set while the
// half-edge belongs to a face.
type halfedge struct {
	to   VertexHandle
	face FaceHandle
	next HalfedgeHandle
}

// Mesh is a triangle mesh with half-edge connectivity.
// It is not safe for concurrent use.
type Mesh struct {
	halfedges []halfedge
	outgoing  [][]HalfedgeHandle // per vertex, live half-edges leaving it
	faceHE    []HalfedgeHandle   // per face, first half-edge of its loop

	vertexDeleted []bool
	faceDeleted   []bool
	edgeDeleted   []bool

	vprops registry
	fprops registry
	eprops registry

	points    VertexProp[r3.Vec]
	normals   VertexProp[r3.Vec]
	colors    VertexProp[color.NRGBA]
	texcoords VertexProp[r2.Vec]
}

// New returns an empty mesh with the standard vertex attributes
// (position, normal, color, texture coordinate) registered.
func New() *Mesh {
	m := &Mesh{}
	m.points = AddVertexProp[r3.Vec](m, "v:points")
	m.normals = AddVertexProp[r3.Vec](m, "v:normals")
	m.colors = AddVertexProp[color.NRGBA](m, "v:colors")
	m.texcoords = AddVertexProp[r2.Vec](m, "v:texcoords2D")
	return m
}

// NumVertices returns the number of vertex slots, deleted ones included.
func (m *Mesh) NumVertices() int { return len(m.outgoing) }

// NumFaces returns the number of face slots, deleted ones included.
func (m *Mesh) NumFaces() int { return len(m.faceHE) }

// NumEdges returns the number of edge slots, deleted ones included.
func (m *Mesh) NumEdges() int { return len(m.edgeDeleted) }

// NumHalfedges returns the number of half-edge slots, deleted ones included.
func (m *Mesh) NumHalfedges() int { return len(m.halfedges) }

// Vertices returns the handles of all live vertices in index order.
func (m *Mesh) Vertices() []VertexHandle {
	out := make([]VertexHandle, 0, len(m.outgoing))
	for i, del := range m.vertexDeleted {
		if !del {
			out = append(out, VertexHandle(i))
		}
	}
	return out
}

// Faces returns the handles of all live faces in index order.
func (m *Mesh) Faces() []FaceHandle {
	out := make([]FaceHandle, 0, len(m.faceHE))
	for i, del := range m.faceDeleted {
		if !del {
			out = append(out, FaceHandle(i))
		}
	}
	return out
}

// Edges returns the handles of all live edges in index order.
func (m *Mesh) Edges() []EdgeHandle {
	out := make([]EdgeHandle, 0, len(m.edgeDeleted))
	for i, del := range m.edgeDeleted {
		if !del {
			out = append(out, EdgeHandle(i))
		}
	}
	return out
}

func (m *Mesh) VertexDeleted(v VertexHandle) bool { return m.vertexDeleted[v] }
func (m *Mesh) FaceDeleted(f FaceHandle) bool { return m.faceDeleted[f] }
func (m *Mesh) EdgeDeleted(e EdgeHandle) bool { return m.edgeDeleted[e] }

func (m *Mesh) hasVertex(v VertexHandle) bool {
	return v >= 0 && int(v) < len(m.outgoing) && !m.vertexDeleted[v]
}

func (m *Mesh) hasFace(f FaceHandle) bool {
	return f >= 0 && int(f) < len(m.faceHE) && !m.faceDeleted[f]
}

// Point returns the position of v.
func (m *Mesh) Point(v VertexHandle) r3.Vec { return m.points.Get(v) }
func (m *Mesh) SetPoint(v VertexHandle, p r3.Vec) { m.points.Set(v, p) }
func (m *Mesh) Normal(v VertexHandle) r3.Vec { return m.normals.Get(v) }
func (m *Mesh) SetNormal(v VertexHandle, n r3.Vec) { m.normals.Set(v, n) }
func (m *Mesh) Color(v VertexHandle) color.NRGBA { return m.colors.Get(v) }
func (m *Mesh) SetColor(v VertexHandle, c color.NRGBA) {
	m.colors.Set(v, c)
}
func (m *Mesh) TexCoord(v VertexHandle) r2.Vec { return m.texcoords.Get(v) }
func (m *Mesh) SetTexCoord(v VertexHandle, uv r2.Vec) { m.texcoords.Set(v, uv) }

package mesh

// store is the type-erased view of a property column that the mesh uses to
// keep columns in step with element storage.
type store interface {
	label() string
	grow()
	copyValue(dst, src int)
	compact(remap []int, n int)
}

type column[T any] struct {
	name   string
	values []T
}

func (c *column[T]) label() string { return c.name }

func (c *column[T]) grow() {
	var zero T
	c.values = append(c.values, zero)
}

func (c *column[T]) copyValue(dst, src int) { c.values[dst] = c.values[src] }

// compact keeps the values whose remap entry is not negative, moving each to
// its new index.
func (c *column[T]) compact(remap []int, n int) {
	out := make([]T, n)
	for old, idx := range remap {
		if idx >= 0 {
			out[idx] = c.values[old]
		}
	}
	c.values = out
}

type registry struct {
	stores []store
}

func (r *registry) grow() {
	for _, s := range r.stores {
		s.grow()
	}
}

func (r *registry) copyValue(dst, src int) {
	for _, s := range r.stores {
		s.copyValue(dst, src)
	}
}

func (r *registry) compact(remap []int, n int) {
	for _, s := range r.stores {
		s.compact(remap, n)
	}
}

func (r *registry) remove(s store) bool {
	for i, cur := range r.stores {
		if cur == s {
			r.stores = append(r.stores[:i], r.stores[i+1:]...)
			return true
		}
	}
	return false
}

// Property is implemented by VertexProp, FaceProp and EdgeProp.
type Property interface {
	Name() string
	IsValid() bool
	storage() store
}

// VertexProp is a typed side-table with one value per vertex slot.
// The zero value is not attached to any mesh.
type VertexProp[T any] struct{ c *column[T] }

// AddVertexProp registers a new vertex property on m. Every existing vertex
// starts with the zero value of T.
func AddVertexProp[T any](m *Mesh, name string) VertexProp[T] {
	c := &column[T]{name: name, values: make([]T, m.NumVertices())}
	m.vprops.stores = append(m.vprops.stores, c)
	return VertexProp[T]{c: c}
}

func (p VertexProp[T]) Get(v VertexHandle) T { return p.c.values[v] }
func (p VertexProp[T]) Set(v VertexHandle, value T) { p.c.values[v] = value }
func (p VertexProp[T]) Name() string { return p.c.name }
func (p VertexProp[T]) IsValid() bool { return p.c != nil }
func (p VertexProp[T]) storage() store { return p.c }

// FaceProp is a typed side-table with one value per face slot.
type FaceProp[T any] struct{ c *column[T] }

// AddFaceProp registers a new face property on m.
func AddFaceProp[T any](m *Mesh, name string) FaceProp[T] {
	c := &column[T]{name: name, values: make([]T, m.NumFaces())}
	m.fprops.stores = append(m.fprops.stores, c)
	return FaceProp[T]{c: c}
}

func (p FaceProp[T]) Get(f FaceHandle) T { return p.c.values[f] }
func (p FaceProp[T]) Set(f FaceHandle, value T) { p.c.values[f] = value }
func (p FaceProp[T]) Name() string { return p.c.name }
func (p FaceProp[T]) IsValid() bool { return p.c != nil }
func (p FaceProp[T]) storage() store { return p.c }

// EdgeProp is a typed side-table with one value per edge slot.
type EdgeProp[T any] struct{ c *column[T] }

// AddEdgeProp registers a new edge property on m.
func AddEdgeProp[T any](m *Mesh, name string) EdgeProp[T] {
	c := &column[T]{name: name, values: make([]T, m.NumEdges())}
	m.eprops.stores = append(m.eprops.stores, c)
	return EdgeProp[T]{c: c}
}

func (p EdgeProp[T]) Get(e EdgeHandle) T { return p.c.values[e] }
func (p EdgeProp[T]) Set(e EdgeHandle, value T) { p.c.values[e] = value }
func (p EdgeProp[T]) Name() string { return p.c.name }
func (p EdgeProp[T]) IsValid() bool { return p.c != nil }
func (p EdgeProp[T]) storage() store { return p.c }

// RemoveProperty detaches p from the mesh. The mesh no longer resizes or
// compacts it; p must not be used afterwards. It reports whether p was
// registered.
func (m *Mesh) RemoveProperty(p Property) bool {
	if !p.IsValid() {
		return false
	}
	s := p.storage()
	return m.vprops.remove(s) || m.fprops.remove(s) || m.eprops.remove(s)
}

// HasProperty reports whether a property with the given name is registered
// on any element kind.
func (m *Mesh) HasProperty(name string) bool {
	for _, r := range []*registry{&m.vprops, &m.fprops, &m.eprops} {
		for _, s := range r.stores {
			if s.label() == name {
				return true
			}
		}
	}
	return false
}

// CopyAllProperties copies every vertex property value, standard attributes
// included, from src to dst.
func (m *Mesh) CopyAllProperties(src, dst VertexHandle) {
	m.vprops.copyValue(int(dst), int(src))
}

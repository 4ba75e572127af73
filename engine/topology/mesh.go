package topology

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/spaghettifunk/hedra/engine/containers"
)

// directedKey identifies a directed edge by its endpoint vertex handles.
// Vertex handles are stable while the vertex lives, so keys never alias
// across slot reuse.
type directedKey struct {
	from VertexHandle
	to   VertexHandle
}

// Mesh is an indexed half-edge mesh. V and F are the opaque payload types
// attached to vertices and faces; the topology core stores and returns them
// unmodified. A Mesh is a single owned aggregate: multiple meshes coexist
// independently, and a single mesh must not be mutated concurrently.
type Mesh[V, F any] struct {
	name string

	vertices  *containers.Arena[Vertex[V]]
	halfEdges *containers.Arena[HalfEdge]
	faces     *containers.Arena[Face[F]]

	// directed indexes every live half-edge by (origin, destination). It
	// backs twin pairing in MakeFace and the duplicate-edge guards.
	directed map[directedKey]HalfEdgeHandle
}

// New creates an empty mesh.
func New[V, F any]() *Mesh[V, F] {
	return NewWithCapacity[V, F](0, 0, 0)
}

// NewWithCapacity creates an empty mesh with pre-sized element storage.
func NewWithCapacity[V, F any](vertices, halfEdges, faces int) *Mesh[V, F] {
	return &Mesh[V, F]{
		name:      uuid.New().String(),
		vertices:  containers.NewArena[Vertex[V]](vertices),
		halfEdges: containers.NewArena[HalfEdge](halfEdges),
		faces:     containers.NewArena[Face[F]](faces),
		directed:  make(map[directedKey]HalfEdgeHandle),
	}
}

// Name is a unique identifier for this mesh instance, used in logs and
// error messages when several meshes are alive at once.
func (m *Mesh[V, F]) Name() string {
	return m.name
}

func (m *Mesh[V, F]) String() string {
	return fmt.Sprintf("Mesh(%s){ %d vertices, %d half-edges, %d faces }",
		m.name, m.VertexCount(), m.HalfEdgeCount(), m.FaceCount())
}

func (m *Mesh[V, F]) VertexCount() int {
	return m.vertices.Len()
}

func (m *Mesh[V, F]) HalfEdgeCount() int {
	return m.halfEdges.Len()
}

func (m *Mesh[V, F]) FaceCount() int {
	return m.faces.Len()
}

// Vertex returns a copy of the vertex record. Fails with ErrStaleHandle
// when the handle no longer resolves.
func (m *Mesh[V, F]) Vertex(h VertexHandle) (Vertex[V], error) {
	v, ok := m.vertices.Get(h.Handle)
	if !ok {
		return Vertex[V]{}, fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
	}
	return *v, nil
}

// VertexData exposes the vertex payload for in-place editing by attribute
// layers. The topology core never touches it.
func (m *Mesh[V, F]) VertexData(h VertexHandle) (*V, error) {
	v, ok := m.vertices.Get(h.Handle)
	if !ok {
		return nil, fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
	}
	return &v.Data, nil
}

// Edge returns a copy of the half-edge record.
func (m *Mesh[V, F]) Edge(h HalfEdgeHandle) (HalfEdge, error) {
	e, ok := m.halfEdges.Get(h.Handle)
	if !ok {
		return HalfEdge{}, fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
	}
	return *e, nil
}

// Face returns a copy of the face record.
func (m *Mesh[V, F]) Face(h FaceHandle) (Face[F], error) {
	f, ok := m.faces.Get(h.Handle)
	if !ok {
		return Face[F]{}, fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
	}
	return *f, nil
}

// FaceData exposes the face payload for in-place editing.
func (m *Mesh[V, F]) FaceData(h FaceHandle) (*F, error) {
	f, ok := m.faces.Get(h.Handle)
	if !ok {
		return nil, fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
	}
	return &f.Data, nil
}

// EdgeEndpoints resolves the origin and destination vertices of a
// half-edge. The destination is defined as the origin of Next.
func (m *Mesh[V, F]) EdgeEndpoints(h HalfEdgeHandle) (VertexHandle, VertexHandle, error) {
	e, ok := m.halfEdges.Get(h.Handle)
	if !ok {
		return InvalidVertex, InvalidVertex, fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
	}
	next, ok := m.halfEdges.Get(e.Next.Handle)
	if !ok {
		return InvalidVertex, InvalidVertex, fmt.Errorf("%w: %s has dangling next %s", ErrBrokenLink, h, e.Next)
	}
	return e.Origin, next.Origin, nil
}

// ContainsVertex reports whether the handle still resolves.
func (m *Mesh[V, F]) ContainsVertex(h VertexHandle) bool {
	return m.vertices.Contains(h.Handle)
}

// ContainsEdge reports whether the handle still resolves.
func (m *Mesh[V, F]) ContainsEdge(h HalfEdgeHandle) bool {
	return m.halfEdges.Contains(h.Handle)
}

// ContainsFace reports whether the handle still resolves.
func (m *Mesh[V, F]) ContainsFace(h FaceHandle) bool {
	return m.faces.Contains(h.Handle)
}

// Vertices walks every live vertex in storage order.
func (m *Mesh[V, F]) Vertices() *VertexIter[V, F] {
	return &VertexIter[V, F]{inner: m.vertices.Iter()}
}

// Edges walks every live half-edge in storage order.
func (m *Mesh[V, F]) Edges() *HalfEdgeIter[V, F] {
	return &HalfEdgeIter[V, F]{inner: m.halfEdges.Iter()}
}

// Faces walks every live face in storage order.
func (m *Mesh[V, F]) Faces() *FaceIter[V, F] {
	return &FaceIter[V, F]{inner: m.faces.Iter()}
}

type VertexIter[V, F any] struct {
	inner *containers.Iter[Vertex[V]]
}

func (it *VertexIter[V, F]) Next() (VertexHandle, bool) {
	h, ok := it.inner.Next()
	return VertexHandle{h}, ok
}

type HalfEdgeIter[V, F any] struct {
	inner *containers.Iter[HalfEdge]
}

func (it *HalfEdgeIter[V, F]) Next() (HalfEdgeHandle, bool) {
	h, ok := it.inner.Next()
	return HalfEdgeHandle{h}, ok
}

type FaceIter[V, F any] struct {
	inner *containers.Iter[Face[F]]
}

func (it *FaceIter[V, F]) Next() (FaceHandle, bool) {
	h, ok := it.inner.Next()
	return FaceHandle{h}, ok
}

// ---------------------------------------------------------------------------
// Low-level wiring. Single-field writes with no invariant checking, used
// exclusively by the mutation operations, which are responsible for leaving
// the web of references consistent before they return.

func (m *Mesh[V, F]) edge(h HalfEdgeHandle) *HalfEdge {
	e, ok := m.halfEdges.Get(h.Handle)
	if !ok {
		return nil
	}
	return e
}

func (m *Mesh[V, F]) vertex(h VertexHandle) *Vertex[V] {
	v, ok := m.vertices.Get(h.Handle)
	if !ok {
		return nil
	}
	return v
}

func (m *Mesh[V, F]) face(h FaceHandle) *Face[F] {
	f, ok := m.faces.Get(h.Handle)
	if !ok {
		return nil
	}
	return f
}

func (m *Mesh[V, F]) setNext(h, next HalfEdgeHandle) {
	if e := m.edge(h); e != nil {
		e.Next = next
	}
}

func (m *Mesh[V, F]) setPrev(h, prev HalfEdgeHandle) {
	if e := m.edge(h); e != nil {
		e.Prev = prev
	}
}

func (m *Mesh[V, F]) setTwin(h, twin HalfEdgeHandle) {
	if e := m.edge(h); e != nil {
		e.Twin = twin
	}
}

func (m *Mesh[V, F]) setOrigin(h HalfEdgeHandle, origin VertexHandle) {
	if e := m.edge(h); e != nil {
		e.Origin = origin
	}
}

func (m *Mesh[V, F]) setFace(h HalfEdgeHandle, face FaceHandle) {
	if e := m.edge(h); e != nil {
		e.Face = face
	}
}

func (m *Mesh[V, F]) setRepresentative(h VertexHandle, edge HalfEdgeHandle) {
	if v := m.vertex(h); v != nil {
		v.Edge = edge
	}
}

func (m *Mesh[V, F]) setFaceEdge(h FaceHandle, edge HalfEdgeHandle) {
	if f := m.face(h); f != nil {
		f.Edge = edge
	}
}

// dest resolves the destination vertex of a live half-edge, or invalid if
// any link on the way is dangling.
func (m *Mesh[V, F]) dest(h HalfEdgeHandle) VertexHandle {
	e := m.edge(h)
	if e == nil {
		return InvalidVertex
	}
	next := m.edge(e.Next)
	if next == nil {
		return InvalidVertex
	}
	return next.Origin
}

// findDirected looks up the live half-edge running from one vertex to
// another, if any.
func (m *Mesh[V, F]) findDirected(from, to VertexHandle) (HalfEdgeHandle, bool) {
	h, ok := m.directed[directedKey{from: from, to: to}]
	return h, ok
}

func (m *Mesh[V, F]) indexDirected(from, to VertexHandle, h HalfEdgeHandle) {
	m.directed[directedKey{from: from, to: to}] = h
}

func (m *Mesh[V, F]) unindexDirected(from, to VertexHandle) {
	delete(m.directed, directedKey{from: from, to: to})
}

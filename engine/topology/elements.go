package topology

// The three element records. They hold handles only, never pointers;
// wiring between them is owned entirely by the mutation operations.

// Vertex carries an opaque payload and a reference to one outgoing
// ("representative") half-edge. The representative is invalid while the
// vertex is isolated; otherwise its origin is this vertex.
type Vertex[V any] struct {
	Edge HalfEdgeHandle
	Data V
}

// HalfEdge is one directed side of an edge. Next and Prev link the loop it
// belongs to (a face boundary, or a detached boundary chain), Twin is the
// oppositely-directed half-edge once paired, Face is the owning face or
// invalid for a boundary half-edge. The destination vertex is not stored;
// it is always the origin of Next.
type HalfEdge struct {
	Origin VertexHandle
	Twin   HalfEdgeHandle
	Next   HalfEdgeHandle
	Prev   HalfEdgeHandle
	Face   FaceHandle
}

// Face points at one half-edge of its boundary loop and carries an opaque
// payload.
type Face[F any] struct {
	Edge HalfEdgeHandle
	Data F
}

// IsBoundary reports whether the half-edge has no owning face or no twin
// yet; either way it lies on the open side of the mesh.
func (e HalfEdge) IsBoundary() bool {
	return !e.Face.IsValid() || !e.Twin.IsValid()
}

// IsConnected reports whether the half-edge belongs to a loop.
func (e HalfEdge) IsConnected() bool {
	return e.Next.IsValid() && e.Prev.IsValid()
}

package topology

import (
	"fmt"
)

// Traversal never allocates per step and never mutates the mesh. Iterators
// follow a pull model: call Next until it reports false, then check Err to
// distinguish a finished walk from one that hit a structural problem.
// Iterators read the live mesh, so mutating it mid-walk is undefined.

// LoopIter walks the Next chain of one loop of half-edges.
type LoopIter[V, F any] struct {
	m          *Mesh[V, F]
	start, cur HalfEdgeHandle
	steps      int
	limit      int
	boundary   bool
	done       bool
	err        error
}

// FaceLoop iterates the half-edges bounding a face in loop order, starting
// from the face's representative edge.
func (m *Mesh[V, F]) FaceLoop(h FaceHandle) *LoopIter[V, F] {
	f := m.face(h)
	if f == nil {
		return &LoopIter[V, F]{err: fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)}
	}
	return &LoopIter[V, F]{m: m, start: f.Edge, cur: f.Edge, limit: m.halfEdges.Len()}
}

// BoundaryLoop iterates a detached boundary loop starting at the given
// faceless half-edge. Starting from a half-edge that is owned by a face
// fails with ErrNotBoundary.
func (m *Mesh[V, F]) BoundaryLoop(h HalfEdgeHandle) *LoopIter[V, F] {
	e := m.edge(h)
	if e == nil {
		return &LoopIter[V, F]{err: fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)}
	}
	if e.Face.IsValid() {
		return &LoopIter[V, F]{err: fmt.Errorf("%w: %s is owned by %s", ErrNotBoundary, h, e.Face)}
	}
	return &LoopIter[V, F]{m: m, start: h, cur: h, limit: m.halfEdges.Len(), boundary: true}
}

func (it *LoopIter[V, F]) Next() (HalfEdgeHandle, bool) {
	if it.done || it.err != nil {
		return InvalidHalfEdge, false
	}
	if it.steps > it.limit {
		it.err = fmt.Errorf("%w: loop from %s never closes", ErrBrokenLink, it.start)
		return InvalidHalfEdge, false
	}
	e := it.m.edge(it.cur)
	if e == nil {
		it.err = fmt.Errorf("%w: dangling link at %s", ErrBrokenLink, it.cur)
		return InvalidHalfEdge, false
	}
	if it.boundary && e.Face.IsValid() {
		it.err = fmt.Errorf("%w: boundary walk entered %s owned by %s", ErrBrokenLink, it.cur, e.Face)
		return InvalidHalfEdge, false
	}
	ret := it.cur
	it.steps++
	it.cur = e.Next
	switch {
	case it.cur == it.start:
		it.done = true
	case !it.cur.IsValid():
		it.err = fmt.Errorf("%w: %s has no next", ErrBrokenLink, ret)
	}
	return ret, true
}

func (it *LoopIter[V, F]) Err() error {
	return it.err
}

// Collect drains the iterator into a slice.
func (it *LoopIter[V, F]) Collect() ([]HalfEdgeHandle, error) {
	var out []HalfEdgeHandle
	for {
		h, ok := it.Next()
		if !ok {
			return out, it.Err()
		}
		out = append(out, h)
	}
}

// FaceSides reports how many half-edges bound the face.
func (m *Mesh[V, F]) FaceSides(h FaceHandle) (int, error) {
	n := 0
	it := m.FaceLoop(h)
	for {
		if _, ok := it.Next(); !ok {
			return n, it.Err()
		}
		n++
	}
}

// FanIter walks the half-edges leaving one vertex.
//
// Stepping to the neighboring outgoing edge crosses the twin of the
// current one, so an open fan (a vertex on the mesh boundary) can only be
// covered completely by first rewinding to the edge whose predecessor has
// no twin. The constructor does that rewind; Next then sweeps forward
// until it either closes the cycle or falls off the open end.
type FanIter[V, F any] struct {
	m          *Mesh[V, F]
	origin     VertexHandle
	start, cur HalfEdgeHandle
	steps      int
	limit      int
	incoming   bool
	done       bool
	err        error
}

// VertexOutgoing iterates every half-edge whose origin is the given
// vertex. An isolated vertex yields an empty walk with a nil error.
func (m *Mesh[V, F]) VertexOutgoing(h VertexHandle) *FanIter[V, F] {
	return m.fanFrom(h, false)
}

// VertexIncoming iterates every half-edge pointing at the given vertex. It
// visits the predecessor of each outgoing edge, which covers boundary
// vertices without relying on twins being present.
func (m *Mesh[V, F]) VertexIncoming(h VertexHandle) *FanIter[V, F] {
	return m.fanFrom(h, true)
}

func (m *Mesh[V, F]) fanFrom(h VertexHandle, incoming bool) *FanIter[V, F] {
	v := m.vertex(h)
	if v == nil {
		return &FanIter[V, F]{err: fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)}
	}
	it := &FanIter[V, F]{m: m, origin: h, incoming: incoming, limit: m.halfEdges.Len()}
	if !v.Edge.IsValid() {
		it.done = true
		return it
	}
	// Rewind across twins to the open end of the fan, or all the way
	// around when the vertex is interior.
	rep := v.Edge
	start := rep
	for steps := 0; ; steps++ {
		if steps > it.limit {
			it.err = fmt.Errorf("%w: fan around %s never closes", ErrBrokenLink, h)
			return it
		}
		e := m.edge(start)
		if e == nil {
			it.err = fmt.Errorf("%w: dangling representative at %s for %s", ErrBrokenLink, start, h)
			return it
		}
		if !e.Prev.IsValid() {
			break
		}
		p := m.edge(e.Prev)
		if p == nil {
			it.err = fmt.Errorf("%w: %s has dangling prev %s", ErrBrokenLink, start, e.Prev)
			return it
		}
		if !p.Twin.IsValid() {
			break
		}
		if p.Twin == rep {
			start = rep
			break
		}
		start = p.Twin
	}
	it.start, it.cur = start, start
	return it
}

func (it *FanIter[V, F]) Next() (HalfEdgeHandle, bool) {
	if it.done || it.err != nil {
		return InvalidHalfEdge, false
	}
	if it.steps > it.limit {
		it.err = fmt.Errorf("%w: fan around %s never closes", ErrBrokenLink, it.origin)
		return InvalidHalfEdge, false
	}
	e := it.m.edge(it.cur)
	if e == nil {
		it.err = fmt.Errorf("%w: dangling link at %s", ErrBrokenLink, it.cur)
		return InvalidHalfEdge, false
	}
	if e.Origin != it.origin {
		it.err = fmt.Errorf("%w: %s does not leave %s", ErrBrokenLink, it.cur, it.origin)
		return InvalidHalfEdge, false
	}
	ret := it.cur
	if it.incoming {
		ret = e.Prev
		if !ret.IsValid() {
			it.err = fmt.Errorf("%w: %s has no prev", ErrBrokenLink, it.cur)
			return InvalidHalfEdge, false
		}
	}
	it.steps++
	it.advance(e)
	return ret, true
}

// advance steps to the next outgoing edge counterclockwise, closing the
// walk at the open end or when the cycle comes back around.
func (it *FanIter[V, F]) advance(e *HalfEdge) {
	if !e.Twin.IsValid() {
		it.done = true
		return
	}
	t := it.m.edge(e.Twin)
	if t == nil {
		it.err = fmt.Errorf("%w: %s has dangling twin %s", ErrBrokenLink, it.cur, e.Twin)
		return
	}
	nxt := t.Next
	switch {
	case !nxt.IsValid():
		it.err = fmt.Errorf("%w: %s has no next", ErrBrokenLink, e.Twin)
	case nxt == it.start:
		it.done = true
	default:
		it.cur = nxt
	}
}

func (it *FanIter[V, F]) Err() error {
	return it.err
}

// Collect drains the iterator into a slice.
func (it *FanIter[V, F]) Collect() ([]HalfEdgeHandle, error) {
	var out []HalfEdgeHandle
	for {
		h, ok := it.Next()
		if !ok {
			return out, it.Err()
		}
		out = append(out, h)
	}
}

// VertexDegree counts the half-edges leaving the vertex.
func (m *Mesh[V, F]) VertexDegree(h VertexHandle) (int, error) {
	n := 0
	it := m.VertexOutgoing(h)
	for {
		if _, ok := it.Next(); !ok {
			return n, it.Err()
		}
		n++
	}
}

package topology

import (
	"fmt"

	"github.com/spaghettifunk/hedra/engine/core"
)

// Validate sweeps every element and checks the structural invariants the
// mutation operations promise to preserve: twin symmetry, next/prev being
// inverses, face loops closing over edges that claim the face, vertex
// representatives leaving their vertex, at most one directed edge per
// ordered vertex pair, and the directed index agreeing with storage. The
// first violation found is returned; a nil result means the mesh is
// sound.
//
// The sweep is linear in the number of elements and is meant for tests
// and debug builds, not for per-mutation use.
func (m *Mesh[V, F]) Validate() error {
	if err := m.validateEdges(); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := m.validateFaces(); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := m.validateVertices(); err != nil {
		core.LogError(err.Error())
		return err
	}
	if err := m.validateDirectedIndex(); err != nil {
		core.LogError(err.Error())
		return err
	}
	core.LogDebug("mesh %s: validated %d vertices, %d half-edges, %d faces",
		m.name, m.VertexCount(), m.HalfEdgeCount(), m.FaceCount())
	return nil
}

func (m *Mesh[V, F]) validateEdges() error {
	it := m.Edges()
	for {
		h, ok := it.Next()
		if !ok {
			return nil
		}
		e := m.edge(h)
		if !m.vertices.Contains(e.Origin.Handle) {
			return fmt.Errorf("%w: %s originates at dead %s", ErrBrokenLink, h, e.Origin)
		}
		if !e.Next.IsValid() {
			return fmt.Errorf("%w: %s has no next", ErrBrokenLink, h)
		}
		n := m.edge(e.Next)
		if n == nil {
			return fmt.Errorf("%w: %s has dangling next %s", ErrBrokenLink, h, e.Next)
		}
		if n.Prev != h {
			return fmt.Errorf("%w: prev of %s is %s, want %s", ErrBrokenLink, e.Next, n.Prev, h)
		}
		if !e.Prev.IsValid() {
			return fmt.Errorf("%w: %s has no prev", ErrBrokenLink, h)
		}
		p := m.edge(e.Prev)
		if p == nil {
			return fmt.Errorf("%w: %s has dangling prev %s", ErrBrokenLink, h, e.Prev)
		}
		if p.Next != h {
			return fmt.Errorf("%w: next of %s is %s, want %s", ErrBrokenLink, e.Prev, p.Next, h)
		}
		if e.Twin.IsValid() {
			t := m.edge(e.Twin)
			if t == nil {
				return fmt.Errorf("%w: %s has dangling twin %s", ErrBrokenLink, h, e.Twin)
			}
			if t.Twin != h {
				return fmt.Errorf("%w: twin of %s is %s, want %s", ErrBrokenLink, e.Twin, t.Twin, h)
			}
			if m.dest(h) != t.Origin {
				return fmt.Errorf("%w: %s and twin %s disagree on endpoints", ErrBrokenLink, h, e.Twin)
			}
		}
		if e.Face.IsValid() && m.face(e.Face) == nil {
			return fmt.Errorf("%w: %s claims dead %s", ErrBrokenLink, h, e.Face)
		}
	}
}

func (m *Mesh[V, F]) validateFaces() error {
	it := m.Faces()
	for {
		h, ok := it.Next()
		if !ok {
			return nil
		}
		f := m.face(h)
		if !f.Edge.IsValid() {
			return fmt.Errorf("%w: %s has no representative edge", ErrBrokenLink, h)
		}
		loop, err := m.loopFrom(f.Edge)
		if err != nil {
			return err
		}
		if len(loop) < 3 {
			return fmt.Errorf("%w: %s has %d sides", ErrDegenerateFace, h, len(loop))
		}
		for _, eh := range loop {
			if got := m.edge(eh).Face; got != h {
				return fmt.Errorf("%w: %s in the loop of %s claims %s", ErrBrokenLink, eh, h, got)
			}
		}
	}
}

func (m *Mesh[V, F]) validateVertices() error {
	it := m.Vertices()
	for {
		h, ok := it.Next()
		if !ok {
			return nil
		}
		v := m.vertex(h)
		if !v.Edge.IsValid() {
			continue
		}
		e := m.edge(v.Edge)
		if e == nil {
			return fmt.Errorf("%w: %s has dangling representative %s", ErrBrokenLink, h, v.Edge)
		}
		if e.Origin != h {
			return fmt.Errorf("%w: representative %s of %s leaves %s", ErrBrokenLink, v.Edge, h, e.Origin)
		}
	}
}

func (m *Mesh[V, F]) validateDirectedIndex() error {
	seen := make(map[directedKey]HalfEdgeHandle, m.HalfEdgeCount())
	it := m.Edges()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		key := directedKey{from: m.edge(h).Origin, to: m.dest(h)}
		if !key.to.IsValid() {
			return fmt.Errorf("%w: %s has no resolvable destination", ErrBrokenLink, h)
		}
		if other, dup := seen[key]; dup {
			return fmt.Errorf("%w: %s and %s both run %s -> %s",
				ErrNonManifoldEdge, other, h, key.from, key.to)
		}
		seen[key] = h
		if idx, ok := m.directed[key]; !ok || idx != h {
			return fmt.Errorf("%w: directed index maps %s -> %s to %s, want %s",
				ErrBrokenLink, key.from, key.to, idx, h)
		}
	}
	if len(m.directed) != len(seen) {
		return fmt.Errorf("%w: directed index holds %d entries for %d half-edges",
			ErrBrokenLink, len(m.directed), len(seen))
	}
	return nil
}

package topology

import (
	"fmt"

	"github.com/spaghettifunk/hedra/engine/core"
)

// The mutation operations below are the only code that creates, rewires or
// destroys elements. Each operation runs all of its guards on the untouched
// mesh first and only then performs its writes, none of which can fail; a
// returned error therefore always means the mesh was left exactly as it
// was.

// AddVertex inserts an isolated vertex carrying the given payload. It has
// no representative edge until a face connects it. Always succeeds.
func (m *Mesh[V, F]) AddVertex(data V) VertexHandle {
	h := VertexHandle{m.vertices.Insert(Vertex[V]{Edge: InvalidHalfEdge, Data: data})}
	core.LogDebug("mesh %s: added %s", m.name, h)
	return h
}

// MakeFace connects an ordered loop of at least 3 distinct live vertices
// into a new face, creating one half-edge per consecutive pair. Each new
// half-edge is paired against the oppositely-directed half-edge between the
// same two vertices when one already exists; otherwise it stays boundary
// until a later face supplies the match.
//
// When every directed edge of the requested loop already exists as a
// detached boundary chain (left behind by RemoveFace), the loop is adopted
// and re-faced instead of duplicated.
func (m *Mesh[V, F]) MakeFace(verts ...VertexHandle) (FaceHandle, error) {
	k := len(verts)
	if k < 3 {
		err := fmt.Errorf("%w: got %d vertices, need at least 3", ErrDegenerateFace, k)
		core.LogError(err.Error())
		return InvalidFace, err
	}
	seen := make(map[VertexHandle]struct{}, k)
	for _, vh := range verts {
		if _, dup := seen[vh]; dup {
			err := fmt.Errorf("%w: %s appears twice in the loop", ErrDegenerateFace, vh)
			core.LogError(err.Error())
			return InvalidFace, err
		}
		seen[vh] = struct{}{}
		if !m.vertices.Contains(vh.Handle) {
			err := fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, vh, m.name)
			core.LogError(err.Error())
			return InvalidFace, err
		}
	}

	// A directed edge may carry at most one owning face. Existing edges in
	// the requested direction are legal only when the whole loop already
	// exists as a faceless chain, which we adopt wholesale.
	existing := make([]HalfEdgeHandle, k)
	existCount := 0
	for i := 0; i < k; i++ {
		u, w := verts[i], verts[(i+1)%k]
		if h, ok := m.findDirected(u, w); ok {
			existing[i] = h
			existCount++
		} else {
			existing[i] = InvalidHalfEdge
		}
	}
	if existCount == k {
		return m.adoptLoop(verts, existing)
	}
	if existCount > 0 {
		err := fmt.Errorf("%w: directed edge %s -> %s already exists in mesh %s",
			ErrNonManifoldEdge, verts[firstExisting(existing)], verts[(firstExisting(existing)+1)%k], m.name)
		core.LogError(err.Error())
		return InvalidFace, err
	}

	// Locate twins among oppositely-directed edges. An opposite that is
	// already paired would imply a same-direction edge, caught above; keep
	// the check anyway so index drift cannot corrupt wiring silently.
	twins := make([]HalfEdgeHandle, k)
	facedOpposites := 0
	for i := 0; i < k; i++ {
		u, w := verts[i], verts[(i+1)%k]
		twins[i] = InvalidHalfEdge
		opp, ok := m.findDirected(w, u)
		if !ok {
			continue
		}
		oe := m.edge(opp)
		if oe == nil {
			err := fmt.Errorf("%w: edge index references dead %s", ErrBrokenLink, opp)
			core.LogError(err.Error())
			return InvalidFace, err
		}
		if oe.Twin.IsValid() {
			err := fmt.Errorf("%w: edge %s -> %s already has both half-edges",
				ErrNonManifoldEdge, w, u)
			core.LogError(err.Error())
			return InvalidFace, err
		}
		twins[i] = opp
		if oe.Face.IsValid() {
			facedOpposites++
		}
	}
	// Refuse the mirror of an existing face: pairing a new loop against
	// the reversed loop of one face would seal those edges into a closed
	// pillow with no boundary, which this open-mesh core does not
	// represent. The mirror is the case where the opposites themselves
	// chain into one Next-cycle. Opposites spread across several faces
	// form no such cycle; that is how an interior hole gets filled, and
	// the fill leaves the outer rim as boundary.
	if facedOpposites == k {
		mirror := true
		for i := 0; i < k; i++ {
			if m.edge(twins[i]).Next != twins[(i-1+k)%k] {
				mirror = false
				break
			}
		}
		if mirror {
			err := fmt.Errorf("%w: the loop is the reverse of an existing face", ErrNonManifoldEdge)
			core.LogError(err.Error())
			return InvalidFace, err
		}
	}

	// All guards passed; wire everything up.
	fh := FaceHandle{m.faces.Insert(Face[F]{Edge: InvalidHalfEdge})}
	loop := make([]HalfEdgeHandle, k)
	for i := 0; i < k; i++ {
		loop[i] = HalfEdgeHandle{m.halfEdges.Insert(HalfEdge{
			Origin: verts[i],
			Twin:   InvalidHalfEdge,
			Next:   InvalidHalfEdge,
			Prev:   InvalidHalfEdge,
			Face:   fh,
		})}
	}
	for i := 0; i < k; i++ {
		m.setNext(loop[i], loop[(i+1)%k])
		m.setPrev(loop[i], loop[(i-1+k)%k])
		if twins[i].IsValid() {
			m.setTwin(loop[i], twins[i])
			m.setTwin(twins[i], loop[i])
		}
		if v := m.vertex(verts[i]); v != nil && !v.Edge.IsValid() {
			v.Edge = loop[i]
		}
		m.indexDirected(verts[i], verts[(i+1)%k], loop[i])
	}
	m.setFaceEdge(fh, loop[0])

	core.LogDebug("mesh %s: made %s with %d sides", m.name, fh, k)
	return fh, nil
}

func firstExisting(existing []HalfEdgeHandle) int {
	for i, h := range existing {
		if h.IsValid() {
			return i
		}
	}
	return 0
}

// adoptLoop re-faces a fully detached boundary chain whose edges match the
// requested loop exactly.
func (m *Mesh[V, F]) adoptLoop(verts []VertexHandle, loop []HalfEdgeHandle) (FaceHandle, error) {
	k := len(loop)
	for i := 0; i < k; i++ {
		e := m.edge(loop[i])
		if e == nil {
			err := fmt.Errorf("%w: edge index references dead %s", ErrBrokenLink, loop[i])
			core.LogError(err.Error())
			return InvalidFace, err
		}
		if e.Face.IsValid() {
			err := fmt.Errorf("%w: directed edge %s -> %s already owned by %s",
				ErrNonManifoldEdge, verts[i], verts[(i+1)%k], e.Face)
			core.LogError(err.Error())
			return InvalidFace, err
		}
		if e.Next != loop[(i+1)%k] {
			err := fmt.Errorf("%w: detached edges between the requested vertices do not form this loop",
				ErrNonManifoldEdge)
			core.LogError(err.Error())
			return InvalidFace, err
		}
	}
	fh := FaceHandle{m.faces.Insert(Face[F]{Edge: loop[0]})}
	for _, eh := range loop {
		m.setFace(eh, fh)
	}
	core.LogDebug("mesh %s: adopted detached loop as %s", m.name, fh)
	return fh, nil
}

// SplitEdge inserts a new vertex in the middle of the given half-edge and
// its twin, producing two half-edges in place of one on each side. The
// adjacent face records are untouched; their loops simply gain one side.
func (m *Mesh[V, F]) SplitEdge(h HalfEdgeHandle, data V) (VertexHandle, error) {
	e := m.edge(h)
	if e == nil {
		err := fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
		core.LogError(err.Error())
		return InvalidVertex, err
	}
	u := e.Origin
	v := m.dest(h)
	if !v.IsValid() {
		err := fmt.Errorf("%w: %s has no resolvable destination", ErrBrokenLink, h)
		core.LogError(err.Error())
		return InvalidVertex, err
	}
	th := e.Twin
	var t *HalfEdge
	if th.IsValid() {
		if t = m.edge(th); t == nil {
			err := fmt.Errorf("%w: %s has dangling twin %s", ErrBrokenLink, h, th)
			core.LogError(err.Error())
			return InvalidVertex, err
		}
	}

	mid := VertexHandle{m.vertices.Insert(Vertex[V]{Edge: InvalidHalfEdge, Data: data})}

	// New half-edge mid -> v continues e's loop; e now runs u -> mid.
	oldNext := e.Next
	e2 := HalfEdgeHandle{m.halfEdges.Insert(HalfEdge{
		Origin: mid,
		Twin:   InvalidHalfEdge,
		Next:   oldNext,
		Prev:   h,
		Face:   e.Face,
	})}
	m.setPrev(oldNext, e2)
	m.setNext(h, e2)
	m.setRepresentative(mid, e2)

	m.unindexDirected(u, v)
	m.indexDirected(u, mid, h)
	m.indexDirected(mid, v, e2)

	if t != nil {
		// Mirror on the twin side: t keeps running from v, now to mid, and
		// the new half-edge mid -> u pairs with e.
		oldTwinNext := t.Next
		t2 := HalfEdgeHandle{m.halfEdges.Insert(HalfEdge{
			Origin: mid,
			Twin:   h,
			Next:   oldTwinNext,
			Prev:   th,
			Face:   t.Face,
		})}
		m.setPrev(oldTwinNext, t2)
		m.setNext(th, t2)

		m.setTwin(h, t2)
		m.setTwin(e2, th)
		m.setTwin(th, e2)

		m.unindexDirected(v, u)
		m.indexDirected(v, mid, th)
		m.indexDirected(mid, u, t2)
	}

	core.LogDebug("mesh %s: split %s at %s", m.name, h, mid)
	return mid, nil
}

// CollapseEdge merges the edge's destination vertex into its origin,
// removing the edge and its twin. Adjacent triangles degenerate to two
// sides and are removed along with their excess edges; larger faces just
// lose a side. The destination vertex's payload is discarded.
func (m *Mesh[V, F]) CollapseEdge(h HalfEdgeHandle) error {
	e := m.edge(h)
	if e == nil {
		err := fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
		core.LogError(err.Error())
		return err
	}
	u := e.Origin
	v := m.dest(h)
	if !v.IsValid() || u == v {
		err := fmt.Errorf("%w: %s endpoints do not resolve to two vertices", ErrBrokenLink, h)
		core.LogError(err.Error())
		return err
	}
	th := e.Twin
	var t *HalfEdge
	if th.IsValid() {
		if t = m.edge(th); t == nil {
			err := fmt.Errorf("%w: %s has dangling twin %s", ErrBrokenLink, h, th)
			core.LogError(err.Error())
			return err
		}
	}

	loop1, err := m.loopFrom(h)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	var loop2 []HalfEdgeHandle
	if t != nil {
		if loop2, err = m.loopFrom(th); err != nil {
			core.LogError(err.Error())
			return err
		}
	}

	// The apex of an adjacent triangle is the one vertex the endpoints are
	// allowed to share; any other common neighbor means the collapse would
	// leave two distinct edges between the same pair of vertices.
	apex1, apex2 := InvalidVertex, InvalidVertex
	if e.Face.IsValid() && len(loop1) == 3 {
		apex1 = m.edge(e.Prev).Origin
	}
	if t != nil && t.Face.IsValid() && len(loop2) == 3 {
		apex2 = m.edge(t.Prev).Origin
	}
	for key := range m.directed {
		var w VertexHandle
		switch {
		case key.from == u && key.to != v:
			w = key.to
		case key.to == u && key.from != v:
			w = key.from
		default:
			continue
		}
		if w == apex1 || w == apex2 {
			continue
		}
		if _, ok := m.findDirected(v, w); !ok {
			if _, ok = m.findDirected(w, v); !ok {
				continue
			}
		}
		err := fmt.Errorf("%w: %s and %s both neighbor %s in mesh %s",
			ErrCollapseWouldDisconnect, u, v, w, m.name)
		core.LogError(err.Error())
		return err
	}

	// Guards done; stage the plan, then write.
	kill := map[HalfEdgeHandle]struct{}{h: {}}
	if t != nil {
		kill[th] = struct{}{}
	}
	var killFaces []FaceHandle
	type stitch struct{ a, b HalfEdgeHandle }
	var stitches []stitch
	var unlink []HalfEdgeHandle

	planSide := func(eh HalfEdgeHandle, side *HalfEdge, loop []HalfEdgeHandle) {
		if side.Face.IsValid() && len(loop) == 3 {
			a, b := side.Next, side.Prev
			kill[a] = struct{}{}
			kill[b] = struct{}{}
			killFaces = append(killFaces, side.Face)
			stitches = append(stitches, stitch{a: m.edge(a).Twin, b: m.edge(b).Twin})
			return
		}
		if !side.Face.IsValid() && len(loop) == 2 {
			// A detached two-edge chain: the partner would degenerate into
			// a self-edge, so it goes down with the collapsing edge.
			other := side.Next
			kill[other] = struct{}{}
			stitches = append(stitches, stitch{a: m.edge(other).Twin, b: InvalidHalfEdge})
			return
		}
		unlink = append(unlink, eh)
	}
	planSide(h, e, loop1)
	if t != nil {
		planSide(th, t, loop2)
	}

	// 1. Detach the collapsing half-edges from surviving loops.
	for _, eh := range unlink {
		de := m.edge(eh)
		m.setNext(de.Prev, de.Next)
		m.setPrev(de.Next, de.Prev)
		if de.Face.IsValid() {
			if f := m.face(de.Face); f != nil && f.Edge == eh {
				f.Edge = de.Next
			}
		}
	}

	// 2. Marry the outer twins of removed triangle sides.
	for _, s := range stitches {
		a, b := s.a, s.b
		if _, dying := kill[a]; dying {
			a = InvalidHalfEdge
		}
		if _, dying := kill[b]; dying {
			b = InvalidHalfEdge
		}
		switch {
		case a.IsValid() && b.IsValid():
			m.setTwin(a, b)
			m.setTwin(b, a)
		case a.IsValid():
			m.setTwin(a, InvalidHalfEdge)
		case b.IsValid():
			m.setTwin(b, InvalidHalfEdge)
		}
	}

	// 3. Rebuild the directed index around the merge. Every live
	// half-edge is indexed under exactly one key, so the same pass
	// repoints the surviving edges that leave v and picks fresh
	// representatives for the vertices whose edges are dying. A fan walk
	// cannot stand in here: fans at boundary vertices split into
	// disconnected components around the gaps, and a walk from one
	// representative misses the rest.
	type rekey struct {
		key  directedKey
		edge HalfEdgeHandle
	}
	var drop []directedKey
	var readd []rekey
	var repoint []HalfEdgeHandle
	repFor := make(map[VertexHandle]HalfEdgeHandle)
	for key, eh := range m.directed {
		if _, dying := kill[eh]; dying {
			drop = append(drop, key)
			continue
		}
		from := key.from
		if from == v {
			from = u
			repoint = append(repoint, eh)
		}
		if _, have := repFor[from]; !have {
			repFor[from] = eh
		}
		if key.from != v && key.to != v {
			continue
		}
		nk := key
		if nk.from == v {
			nk.from = u
		}
		if nk.to == v {
			nk.to = u
		}
		drop = append(drop, key)
		readd = append(readd, rekey{key: nk, edge: eh})
	}
	for _, key := range drop {
		delete(m.directed, key)
	}
	for _, r := range readd {
		m.directed[r.key] = r.edge
	}
	for _, eh := range repoint {
		m.edge(eh).Origin = u
	}

	// 4. Tear down the dead elements.
	for eh := range kill {
		m.halfEdges.Remove(eh.Handle)
	}
	for _, fh := range killFaces {
		m.faces.Remove(fh.Handle)
		core.LogDebug("mesh %s: removed degenerate %s during collapse", m.name, fh)
	}
	m.vertices.Remove(v.Handle)

	// 5. Repair representative edges around the hole.
	for _, vh := range []VertexHandle{u, apex1, apex2} {
		if !vh.IsValid() {
			continue
		}
		vtx := m.vertex(vh)
		if vtx == nil {
			continue
		}
		if e := m.edge(vtx.Edge); e != nil && e.Origin == vh {
			continue
		}
		if eh, ok := repFor[vh]; ok {
			vtx.Edge = eh
		} else {
			vtx.Edge = InvalidHalfEdge
		}
	}

	core.LogDebug("mesh %s: collapsed %s, merged %s into %s", m.name, h, v, u)
	return nil
}

// RemoveFace removes the face. When every half-edge of its loop is still
// paired with a faced twin, the loop survives as a detached boundary loop
// that BoundaryLoop can walk and a later MakeFace can adopt. Otherwise the
// whole loop is deleted and any surviving twins become unpaired boundary
// edges, the same state MakeFace leaves fresh edges in. Removing edges one
// by one is not an option: a faceless edge left without its loop neighbors
// could no longer resolve its destination. Vertices are never removed.
func (m *Mesh[V, F]) RemoveFace(h FaceHandle) error {
	f := m.face(h)
	if f == nil {
		err := fmt.Errorf("%w: %s in mesh %s", ErrStaleHandle, h, m.name)
		core.LogError(err.Error())
		return err
	}
	loop, err := m.loopFrom(f.Edge)
	if err != nil {
		core.LogError(err.Error())
		return err
	}
	keep := true
	for _, eh := range loop {
		e := m.edge(eh)
		if !e.Twin.IsValid() {
			keep = false
			break
		}
		t := m.edge(e.Twin)
		if t == nil {
			err := fmt.Errorf("%w: %s has dangling twin %s", ErrBrokenLink, eh, e.Twin)
			core.LogError(err.Error())
			return err
		}
		if !t.Face.IsValid() {
			keep = false
			break
		}
	}
	if keep {
		for _, eh := range loop {
			m.setFace(eh, InvalidFace)
		}
		m.faces.Remove(h.Handle)
		core.LogDebug("mesh %s: removed %s, loop left as boundary", m.name, h)
		return nil
	}
	// Endpoints must be captured up front: once the loop starts shrinking
	// the implicit destinations of its remaining edges no longer resolve.
	origins := make([]VertexHandle, len(loop))
	for i, eh := range loop {
		origins[i] = m.edge(eh).Origin
	}
	for i, eh := range loop {
		m.deleteEdge(eh, origins[i], origins[(i+1)%len(loop)])
	}
	m.faces.Remove(h.Handle)
	core.LogDebug("mesh %s: removed %s and its %d half-edges", m.name, h, len(loop))
	return nil
}

// deleteEdge unlinks one half-edge from its loop, unpairs its twin, drops
// it from the directed index and the arena, and repairs its origin's
// representative. Endpoints come from the caller, which captured them
// while the surrounding loop was still intact. Callers are responsible
// for face bookkeeping.
func (m *Mesh[V, F]) deleteEdge(h HalfEdgeHandle, from, to VertexHandle) {
	e := m.edge(h)
	if e == nil {
		return
	}
	m.setNext(e.Prev, e.Next)
	m.setPrev(e.Next, e.Prev)
	if e.Twin.IsValid() {
		m.setTwin(e.Twin, InvalidHalfEdge)
	}
	m.unindexDirected(from, to)
	m.halfEdges.Remove(h.Handle)
	if v := m.vertex(from); v != nil && v.Edge == h {
		m.recomputeRepresentative(from)
	}
}

// recomputeRepresentative rescans storage for any half-edge leaving the
// vertex; the vertex becomes isolated when none remains.
func (m *Mesh[V, F]) recomputeRepresentative(vh VertexHandle) {
	v := m.vertex(vh)
	if v == nil {
		return
	}
	if e := m.edge(v.Edge); e != nil && e.Origin == vh {
		return
	}
	v.Edge = InvalidHalfEdge
	it := m.halfEdges.Iter()
	for {
		hh, ok := it.Next()
		if !ok {
			return
		}
		eh := HalfEdgeHandle{hh}
		if m.edge(eh).Origin == vh {
			v.Edge = eh
			return
		}
	}
}

// loopFrom walks Next from start until it closes, failing instead of
// spinning when the chain dangles or never returns.
func (m *Mesh[V, F]) loopFrom(start HalfEdgeHandle) ([]HalfEdgeHandle, error) {
	limit := m.halfEdges.Len()
	loop := make([]HalfEdgeHandle, 0, 4)
	cur := start
	for steps := 0; ; steps++ {
		if steps > limit {
			return nil, fmt.Errorf("%w: loop from %s never closes", ErrBrokenLink, start)
		}
		e := m.edge(cur)
		if e == nil {
			return nil, fmt.Errorf("%w: dangling link at %s walking from %s", ErrBrokenLink, cur, start)
		}
		loop = append(loop, cur)
		cur = e.Next
		if cur == start {
			return loop, nil
		}
		if !cur.IsValid() {
			return nil, fmt.Errorf("%w: %s has no next", ErrBrokenLink, loop[len(loop)-1])
		}
	}
}

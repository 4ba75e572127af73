package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddVertexIsIsolated(t *testing.T) {
	m := newTestMesh()
	vh := m.AddVertex("lonely")

	assert.Equal(t, 1, m.VertexCount())
	assert.True(t, m.ContainsVertex(vh))

	out, err := m.VertexOutgoing(vh).Collect()
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, m.Validate())
}

func TestMakeFaceTriangle(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c")

	fh, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)
	require.True(t, fh.IsValid())

	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 3, m.HalfEdgeCount())
	assert.Equal(t, 1, m.FaceCount())

	loop, err := m.FaceLoop(fh).Collect()
	require.NoError(t, err)
	require.Len(t, loop, 3)
	for i, eh := range loop {
		from, to := endpoints(t, m, eh)
		assert.Equal(t, vs[i%3], from)
		assert.Equal(t, vs[(i+1)%3], to)

		e, err := m.Edge(eh)
		require.NoError(t, err)
		assert.Equal(t, fh, e.Face)
		assert.False(t, e.Twin.IsValid(), "fresh triangle edges have no twin")
	}

	// Every vertex got a representative that leaves it.
	for _, vh := range vs {
		v, err := m.Vertex(vh)
		require.NoError(t, err)
		require.True(t, v.Edge.IsValid())
		e, err := m.Edge(v.Edge)
		require.NoError(t, err)
		assert.Equal(t, vh, e.Origin)
	}
	assert.NoError(t, m.Validate())
}

func TestMakeFaceDegenerate(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c")

	_, err := m.MakeFace(vs[0], vs[1])
	assert.ErrorIs(t, err, ErrDegenerateFace)

	_, err = m.MakeFace(vs[0], vs[1], vs[0])
	assert.ErrorIs(t, err, ErrDegenerateFace)

	assert.Equal(t, 0, m.HalfEdgeCount())
	assert.Equal(t, 0, m.FaceCount())
	assert.NoError(t, m.Validate())
}

func TestMakeFaceStaleVertex(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b")

	_, err := m.MakeFace(vs[0], vs[1], VertexHandle{})
	assert.ErrorIs(t, err, ErrStaleHandle)
	assert.Equal(t, 0, m.FaceCount())
}

func TestMakeFacePairsSharedEdge(t *testing.T) {
	m, vs, f1, f2 := makeQuad(t)

	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 6, m.HalfEdgeCount())
	assert.Equal(t, 2, m.FaceCount())

	// The diagonal's two halves are twins of each other and nothing else
	// is paired.
	diag, ok := findEdge(m, vs[2], vs[0])
	require.True(t, ok)
	gaid, ok := findEdge(m, vs[0], vs[2])
	require.True(t, ok)

	de, err := m.Edge(diag)
	require.NoError(t, err)
	ge, err := m.Edge(gaid)
	require.NoError(t, err)
	assert.Equal(t, gaid, de.Twin)
	assert.Equal(t, diag, ge.Twin)
	assert.Equal(t, f1, de.Face)
	assert.Equal(t, f2, ge.Face)

	assert.NoError(t, m.Validate())
}

func TestMakeFaceRejectsDuplicateDirectedEdge(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c", "d")

	_, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)

	// A second face running a -> b in the same direction would give the
	// ordered pair two half-edges.
	_, err = m.MakeFace(vs[0], vs[1], vs[3])
	assert.ErrorIs(t, err, ErrNonManifoldEdge)

	assert.Equal(t, 3, m.HalfEdgeCount())
	assert.Equal(t, 1, m.FaceCount())
	assert.NoError(t, m.Validate())
}

func TestMakeFaceRejectsSealingTriangle(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c")

	_, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)

	// The reversed triangle would close the surface into a two-faced
	// pillow with no boundary left.
	_, err = m.MakeFace(vs[2], vs[1], vs[0])
	assert.ErrorIs(t, err, ErrNonManifoldEdge)

	assert.Equal(t, 3, m.HalfEdgeCount())
	assert.Equal(t, 1, m.FaceCount())
	assert.NoError(t, m.Validate())
}

func TestMakeFaceFillsRingedHole(t *testing.T) {
	// Three triangles ring an empty center whose edges are all faced on
	// the outside. Filling the hole is still legal: each directed edge of
	// the fill is fresh, and the outer rim stays boundary.
	m := newTestMesh()
	a, b, c := m.AddVertex("a"), m.AddVertex("b"), m.AddVertex("c")
	ab, bc, ca := m.AddVertex("ab"), m.AddVertex("bc"), m.AddVertex("ca")

	_, err := m.MakeFace(a, ab, ca)
	require.NoError(t, err)
	_, err = m.MakeFace(b, bc, ab)
	require.NoError(t, err)
	_, err = m.MakeFace(c, ca, bc)
	require.NoError(t, err)

	center, err := m.MakeFace(ab, bc, ca)
	require.NoError(t, err)

	assert.Equal(t, 12, m.HalfEdgeCount())
	assert.Equal(t, 4, m.FaceCount())

	// The fill paired against all three ring triangles.
	loop, err := m.FaceLoop(center).Collect()
	require.NoError(t, err)
	require.Len(t, loop, 3)
	for _, eh := range loop {
		e, err := m.Edge(eh)
		require.NoError(t, err)
		assert.True(t, e.Twin.IsValid())
		assert.False(t, e.IsBoundary())
	}
	assert.NoError(t, m.Validate())
}

func TestSplitEdgeInterior(t *testing.T) {
	m, vs, f1, f2 := makeQuad(t)
	diag, ok := findEdge(m, vs[0], vs[2])
	require.True(t, ok)

	mid, err := m.SplitEdge(diag, "mid")
	require.NoError(t, err)
	require.True(t, mid.IsValid())

	assert.Equal(t, 5, m.VertexCount())
	assert.Equal(t, 8, m.HalfEdgeCount())
	assert.Equal(t, 2, m.FaceCount())

	// The split edge now runs to the new vertex.
	from, to := endpoints(t, m, diag)
	assert.Equal(t, vs[0], from)
	assert.Equal(t, mid, to)

	// Both faces gained a side.
	s1, err := m.FaceSides(f1)
	require.NoError(t, err)
	s2, err := m.FaceSides(f2)
	require.NoError(t, err)
	assert.Equal(t, 4, s1)
	assert.Equal(t, 4, s2)

	// The new vertex sits on two outgoing edges, one per direction.
	deg, err := m.VertexDegree(mid)
	require.NoError(t, err)
	assert.Equal(t, 2, deg)

	assert.NoError(t, m.Validate())
}

func TestSplitEdgeBoundary(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c")
	fh, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)

	eh, ok := findEdge(m, vs[0], vs[1])
	require.True(t, ok)

	mid, err := m.SplitEdge(eh, "mid")
	require.NoError(t, err)

	// No twin side, so only one new half-edge appears.
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 4, m.HalfEdgeCount())

	sides, err := m.FaceSides(fh)
	require.NoError(t, err)
	assert.Equal(t, 4, sides)

	second, ok := findEdge(m, mid, vs[1])
	require.True(t, ok)
	e, err := m.Edge(second)
	require.NoError(t, err)
	assert.Equal(t, fh, e.Face)

	assert.NoError(t, m.Validate())
}

func TestSplitEdgeStale(t *testing.T) {
	m := newTestMesh()
	_, err := m.SplitEdge(InvalidHalfEdge, "mid")
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestCollapseEdgeMergesIntoOrigin(t *testing.T) {
	// A strip of three triangles; collapsing the edge between the first
	// two removes both of them and rewires the third onto the surviving
	// origin.
	m := newTestMesh()
	vs := addVertices(t, m, "v0", "v1", "v2", "v3", "v4")
	_, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)
	_, err = m.MakeFace(vs[1], vs[3], vs[2])
	require.NoError(t, err)
	fc, err := m.MakeFace(vs[2], vs[3], vs[4])
	require.NoError(t, err)

	eh, ok := findEdge(m, vs[1], vs[2])
	require.True(t, ok)
	require.NoError(t, m.CollapseEdge(eh))

	// v2 merged into v1; the triangles on both sides of the edge are gone.
	assert.False(t, m.ContainsVertex(vs[2]))
	assert.True(t, m.ContainsVertex(vs[1]))
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 3, m.HalfEdgeCount())
	assert.Equal(t, 1, m.FaceCount())
	assert.True(t, m.ContainsFace(fc))

	// The surviving triangle now runs through v1 where v2 used to be.
	loop, err := m.FaceLoop(fc).Collect()
	require.NoError(t, err)
	var origins []VertexHandle
	for _, le := range loop {
		from, _ := endpoints(t, m, le)
		origins = append(origins, from)
	}
	assert.ElementsMatch(t, []VertexHandle{vs[1], vs[3], vs[4]}, origins)

	assert.NoError(t, m.Validate())
}

func TestCollapseLoneTriangle(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c")
	_, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)

	eh, ok := findEdge(m, vs[0], vs[1])
	require.True(t, ok)
	require.NoError(t, m.CollapseEdge(eh))

	// The triangle degenerates away entirely; the survivors are isolated.
	assert.Equal(t, 2, m.VertexCount())
	assert.Equal(t, 0, m.HalfEdgeCount())
	assert.Equal(t, 0, m.FaceCount())
	for _, vh := range []VertexHandle{vs[0], vs[2]} {
		out, err := m.VertexOutgoing(vh).Collect()
		require.NoError(t, err)
		assert.Empty(t, out)
	}
	assert.NoError(t, m.Validate())
}

func TestCollapseWouldDisconnect(t *testing.T) {
	// v0 and v1 share neighbor v3 through faces that do not flank the
	// collapsing edge, so merging them would create a doubled edge.
	m := newTestMesh()
	vs := addVertices(t, m, "v0", "v1", "v2", "v3", "v4", "v5")
	_, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)
	_, err = m.MakeFace(vs[1], vs[0], vs[3], vs[4])
	require.NoError(t, err)
	_, err = m.MakeFace(vs[1], vs[3], vs[5])
	require.NoError(t, err)

	before := [3]int{m.VertexCount(), m.HalfEdgeCount(), m.FaceCount()}

	eh, ok := findEdge(m, vs[0], vs[1])
	require.True(t, ok)
	err = m.CollapseEdge(eh)
	assert.ErrorIs(t, err, ErrCollapseWouldDisconnect)

	// Failure left everything untouched.
	assert.Equal(t, before, [3]int{m.VertexCount(), m.HalfEdgeCount(), m.FaceCount()})
	assert.NoError(t, m.Validate())
}

func TestCollapseRepointsSplitFan(t *testing.T) {
	// Two triangles meet only at the shared vertex v, so v's fan has two
	// disconnected components. Collapsing into v must repoint edges in
	// both components, including the one its representative cannot reach.
	m := newTestMesh()
	v := m.AddVertex("v")
	vs := addVertices(t, m, "a", "b", "c", "d")
	_, err := m.MakeFace(v, vs[0], vs[1])
	require.NoError(t, err)
	far, err := m.MakeFace(v, vs[2], vs[3])
	require.NoError(t, err)

	eh, ok := findEdge(m, vs[1], v)
	require.True(t, ok)
	require.NoError(t, m.CollapseEdge(eh))

	// v merged into b; the near triangle is gone, the far one survives
	// and runs through b now.
	assert.False(t, m.ContainsVertex(v))
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 3, m.HalfEdgeCount())
	assert.Equal(t, 1, m.FaceCount())

	loop, err := m.FaceLoop(far).Collect()
	require.NoError(t, err)
	var origins []VertexHandle
	for _, le := range loop {
		from, _ := endpoints(t, m, le)
		origins = append(origins, from)
	}
	assert.ElementsMatch(t, []VertexHandle{vs[1], vs[2], vs[3]}, origins)

	assert.NoError(t, m.Validate())
}

func TestCollapsedHandleGoesStale(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c")
	_, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)

	eh, ok := findEdge(m, vs[0], vs[1])
	require.True(t, ok)
	require.NoError(t, m.CollapseEdge(eh))

	_, err = m.Vertex(vs[1])
	assert.ErrorIs(t, err, ErrStaleHandle)

	// The freed slot is recycled with a new generation; the old handle
	// must keep failing while the new one resolves.
	fresh := m.AddVertex("fresh")
	assert.Equal(t, vs[1].Offset(), fresh.Offset())
	assert.NotEqual(t, vs[1].Generation(), fresh.Generation())

	_, err = m.Vertex(vs[1])
	assert.ErrorIs(t, err, ErrStaleHandle)
	_, err = m.Vertex(fresh)
	assert.NoError(t, err)
}

func TestRemoveFaceUnpairsSharedEdge(t *testing.T) {
	m, vs, f1, f2 := makeQuad(t)

	require.NoError(t, m.RemoveFace(f1))

	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 3, m.HalfEdgeCount())
	assert.Equal(t, 1, m.FaceCount())
	assert.True(t, m.ContainsFace(f2))

	// The whole loop of f1 is gone, including its half of the shared
	// diagonal; f2's half is unpaired now and back on the boundary.
	_, ok := findEdge(m, vs[2], vs[0])
	assert.False(t, ok)
	_, ok = findEdge(m, vs[0], vs[1])
	assert.False(t, ok)

	diag, ok := findEdge(m, vs[0], vs[2])
	require.True(t, ok)
	e, err := m.Edge(diag)
	require.NoError(t, err)
	assert.Equal(t, f2, e.Face)
	assert.False(t, e.Twin.IsValid())
	assert.True(t, e.IsBoundary())

	assert.NoError(t, m.Validate())

	// v1 sat only on f1 and is isolated now, but never removed.
	out, err := m.VertexOutgoing(vs[1]).Collect()
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRemoveLoneTriangleDeletesAllEdges(t *testing.T) {
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c")
	fh, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)

	require.NoError(t, m.RemoveFace(fh))

	assert.Equal(t, 3, m.VertexCount())
	assert.Equal(t, 0, m.HalfEdgeCount())
	assert.Equal(t, 0, m.FaceCount())
	assert.NoError(t, m.Validate())

	err = m.RemoveFace(fh)
	assert.ErrorIs(t, err, ErrStaleHandle)
}

func TestRemoveFaceLeavesAdoptableLoop(t *testing.T) {
	// A triangle ringed by three neighbors: removing the center leaves its
	// loop detached, and re-making the same face adopts it back.
	m := newTestMesh()
	a, b, c := m.AddVertex("a"), m.AddVertex("b"), m.AddVertex("c")
	ab, bc, ca := m.AddVertex("ab"), m.AddVertex("bc"), m.AddVertex("ca")

	_, err := m.MakeFace(a, ab, ca)
	require.NoError(t, err)
	_, err = m.MakeFace(b, bc, ab)
	require.NoError(t, err)
	_, err = m.MakeFace(c, ca, bc)
	require.NoError(t, err)
	center, err := m.MakeFace(ab, bc, ca)
	require.NoError(t, err)

	edges := m.HalfEdgeCount()
	require.NoError(t, m.RemoveFace(center))

	// All three center edges survive because their twins still carry
	// faces.
	assert.Equal(t, edges, m.HalfEdgeCount())
	assert.Equal(t, 3, m.FaceCount())
	assert.NoError(t, m.Validate())

	loopEdge, ok := findEdge(m, ab, bc)
	require.True(t, ok)
	ring, err := m.BoundaryLoop(loopEdge).Collect()
	require.NoError(t, err)
	assert.Len(t, ring, 3)

	refaced, err := m.MakeFace(ab, bc, ca)
	require.NoError(t, err)
	assert.Equal(t, edges, m.HalfEdgeCount())
	assert.Equal(t, 4, m.FaceCount())

	sides, err := m.FaceSides(refaced)
	require.NoError(t, err)
	assert.Equal(t, 3, sides)
	assert.NoError(t, m.Validate())
}

// findEdge resolves the half-edge between two vertices through the public
// traversal surface.
func findEdge(m *Mesh[string, string], from, to VertexHandle) (HalfEdgeHandle, bool) {
	it := m.Edges()
	for {
		h, ok := it.Next()
		if !ok {
			return InvalidHalfEdge, false
		}
		f, tt, err := m.EdgeEndpoints(h)
		if err == nil && f == from && tt == to {
			return h, true
		}
	}
}

package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHealthyMeshes(t *testing.T) {
	m := newTestMesh()
	assert.NoError(t, m.Validate())

	m.AddVertex("alone")
	assert.NoError(t, m.Validate())

	q, _, _, _ := makeQuad(t)
	assert.NoError(t, q.Validate())

	f, _, _ := makeFan(t)
	assert.NoError(t, f.Validate())
}

func TestValidateCatchesAsymmetricTwin(t *testing.T) {
	m, vs, _, _ := makeQuad(t)
	diag, ok := findEdge(m, vs[0], vs[2])
	require.True(t, ok)

	m.setTwin(diag, InvalidHalfEdge)

	assert.ErrorIs(t, m.Validate(), ErrBrokenLink)
}

func TestValidateCatchesBrokenLoop(t *testing.T) {
	m, vs, _, _ := makeQuad(t)
	eh, ok := findEdge(m, vs[0], vs[1])
	require.True(t, ok)

	// Point the edge's next back at itself; its old successor now has a
	// prev nobody agrees with.
	m.setNext(eh, eh)
	m.setPrev(eh, eh)

	assert.ErrorIs(t, m.Validate(), ErrBrokenLink)
}

func TestValidateCatchesBadRepresentative(t *testing.T) {
	m, vs, _, _ := makeQuad(t)
	eh, ok := findEdge(m, vs[1], vs[2])
	require.True(t, ok)

	// v0's representative must leave v0.
	m.setRepresentative(vs[0], eh)

	assert.ErrorIs(t, m.Validate(), ErrBrokenLink)
}

func TestValidateCatchesIndexDrift(t *testing.T) {
	m, vs, _, _ := makeQuad(t)

	m.unindexDirected(vs[0], vs[1])

	assert.ErrorIs(t, m.Validate(), ErrBrokenLink)
}

func TestValidateCatchesDuplicateDirectedEdge(t *testing.T) {
	// Two disjoint triangles, then rewrite one of the second triangle's
	// edges so it runs between the first triangle's vertices.
	m := newTestMesh()
	vs := addVertices(t, m, "a", "b", "c", "d", "e", "f")
	_, err := m.MakeFace(vs[0], vs[1], vs[2])
	require.NoError(t, err)
	_, err = m.MakeFace(vs[3], vs[4], vs[5])
	require.NoError(t, err)

	de, ok := findEdge(m, vs[3], vs[4])
	require.True(t, ok)
	ef, ok := findEdge(m, vs[4], vs[5])
	require.True(t, ok)
	m.setOrigin(de, vs[0])
	m.setOrigin(ef, vs[1])

	err = m.Validate()
	require.Error(t, err)
	assert.True(t,
		errors.Is(err, ErrNonManifoldEdge) || errors.Is(err, ErrBrokenLink),
		"got %v", err)
}

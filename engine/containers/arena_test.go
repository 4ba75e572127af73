package containers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroHandleIsInvalid(t *testing.T) {
	var h Handle
	assert.False(t, h.IsValid())
	assert.False(t, InvalidHandle.IsValid())

	a := NewArena[int](0)
	_, ok := a.Get(h)
	assert.False(t, ok)
}

func TestInsertAndGet(t *testing.T) {
	a := NewArena[string](4)

	h0 := a.Insert("alpha")
	h1 := a.Insert("beta")
	require.True(t, h0.IsValid())
	require.True(t, h1.IsValid())
	assert.NotEqual(t, h0, h1)
	assert.Equal(t, 2, a.Len())

	v, ok := a.Get(h0)
	require.True(t, ok)
	assert.Equal(t, "alpha", *v)

	v, ok = a.Get(h1)
	require.True(t, ok)
	assert.Equal(t, "beta", *v)
}

func TestGetReturnsMutableValue(t *testing.T) {
	a := NewArena[int](1)
	h := a.Insert(10)

	v, ok := a.Get(h)
	require.True(t, ok)
	*v = 42

	v, ok = a.Get(h)
	require.True(t, ok)
	assert.Equal(t, 42, *v)
}

func TestRemoveReturnsValueAndInvalidatesHandle(t *testing.T) {
	a := NewArena[string](2)
	h := a.Insert("doomed")

	v, ok := a.Remove(h)
	require.True(t, ok)
	assert.Equal(t, "doomed", v)
	assert.Equal(t, 0, a.Len())

	_, ok = a.Get(h)
	assert.False(t, ok)
	assert.False(t, a.Contains(h))

	// A second removal through the same handle is a no-op.
	_, ok = a.Remove(h)
	assert.False(t, ok)
	assert.Equal(t, 0, a.Len())
}

func TestSlotReuseBumpsGeneration(t *testing.T) {
	a := NewArena[string](2)
	old := a.Insert("first occupant")
	_, ok := a.Remove(old)
	require.True(t, ok)

	fresh := a.Insert("second occupant")
	// Most recently freed slot is reused first.
	assert.Equal(t, old.Offset(), fresh.Offset())
	assert.NotEqual(t, old.Generation(), fresh.Generation())

	// The stale handle must never see the recycled slot's new occupant.
	_, ok = a.Get(old)
	assert.False(t, ok)

	v, ok := a.Get(fresh)
	require.True(t, ok)
	assert.Equal(t, "second occupant", *v)
}

func TestFreeListIsLIFO(t *testing.T) {
	a := NewArena[int](4)
	h0 := a.Insert(0)
	h1 := a.Insert(1)
	h2 := a.Insert(2)

	a.Remove(h0)
	a.Remove(h2)

	reused := a.Insert(99)
	assert.Equal(t, h2.Offset(), reused.Offset())
	reused = a.Insert(100)
	assert.Equal(t, h0.Offset(), reused.Offset())

	// No free slots left; the next insert grows the store.
	grown := a.Insert(101)
	assert.Equal(t, uint32(3), grown.Offset())
	assert.Equal(t, 4, a.Len())

	_, ok := a.Get(h1)
	assert.True(t, ok)
}

func TestIterSkipsTombstones(t *testing.T) {
	a := NewArena[int](8)
	var handles []Handle
	for i := 0; i < 5; i++ {
		handles = append(handles, a.Insert(i))
	}
	a.Remove(handles[1])
	a.Remove(handles[3])

	var seen []int
	it := a.Iter()
	for {
		h, ok := it.Next()
		if !ok {
			break
		}
		v, ok := a.Get(h)
		require.True(t, ok)
		seen = append(seen, *v)
	}
	assert.Equal(t, []int{0, 2, 4}, seen)
	assert.Equal(t, 3, a.Len())
	assert.Equal(t, 5, a.Cap())
}

func TestChurnDoesNotGrowUnbounded(t *testing.T) {
	a := NewArena[int](1)
	h := a.Insert(0)
	for i := 1; i < 1000; i++ {
		_, ok := a.Remove(h)
		require.True(t, ok)
		h = a.Insert(i)
	}
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, a.Cap())

	v, ok := a.Get(h)
	require.True(t, ok)
	assert.Equal(t, 999, *v)
}

package containers

// InvalidOffset marks a handle that does not reference any slot.
const InvalidOffset = ^uint32(0)

// Handle is a stable, generation-tagged reference into an Arena slot.
// Handles stay comparable and copyable after the referenced element is
// removed; they simply stop resolving. Generations start at 1, so the
// zero value is invalid.
type Handle struct {
	offset     uint32
	generation uint32
}

// InvalidHandle never resolves against any arena.
var InvalidHandle = Handle{offset: InvalidOffset}

func NewHandle(offset, generation uint32) Handle {
	return Handle{offset: offset, generation: generation}
}

func (h Handle) Offset() uint32 {
	return h.offset
}

func (h Handle) Generation() uint32 {
	return h.generation
}

// IsValid reports whether the handle references a slot at all. It says
// nothing about staleness; only the owning arena can.
func (h Handle) IsValid() bool {
	return h.offset != InvalidOffset && h.generation != 0
}

type cell[T any] struct {
	value      T
	generation uint32
	active     bool
}

// Arena is growable storage for one kind of element. Removal tombstones
// the slot and bumps its generation so stale handles can never alias a
// future occupant; tombstoned slots are reused on later insertions,
// most recently freed first.
//
// The arena knows nothing about what it stores; all lifecycle rules
// live here, all domain rules live with the caller.
type Arena[T any] struct {
	cells []cell[T]
	free  []uint32
}

func NewArena[T any](capacity int) *Arena[T] {
	return &Arena[T]{
		cells: make([]cell[T], 0, capacity),
		free:  make([]uint32, 0),
	}
}

// Insert stores value in a recycled slot when one is available, otherwise
// grows the backing store. The returned handle is the only sanctioned way
// to reach the value again.
func (a *Arena[T]) Insert(value T) Handle {
	if n := len(a.free); n > 0 {
		offset := a.free[n-1]
		a.free = a.free[:n-1]
		c := &a.cells[offset]
		c.value = value
		c.active = true
		return Handle{offset: offset, generation: c.generation}
	}
	offset := uint32(len(a.cells))
	a.cells = append(a.cells, cell[T]{value: value, generation: 1, active: true})
	return Handle{offset: offset, generation: 1}
}

// Get resolves a handle to the stored value. It reports false for the
// invalid handle, an out-of-range offset, a tombstoned slot, or a slot
// whose generation has moved on since the handle was issued.
func (a *Arena[T]) Get(h Handle) (*T, bool) {
	c, ok := a.resolve(h)
	if !ok {
		return nil, false
	}
	return &c.value, true
}

// Contains reports whether the handle still resolves.
func (a *Arena[T]) Contains(h Handle) bool {
	_, ok := a.resolve(h)
	return ok
}

// Remove tombstones the slot, bumps its generation and hands the removed
// value back to the caller for any cleanup. Reports false when the handle
// was already stale; the arena is left untouched in that case.
func (a *Arena[T]) Remove(h Handle) (T, bool) {
	c, ok := a.resolve(h)
	if !ok {
		var zero T
		return zero, false
	}
	value := c.value
	var zero T
	c.value = zero
	c.active = false
	c.generation++
	a.free = append(a.free, h.offset)
	return value, true
}

// Len counts live slots only.
func (a *Arena[T]) Len() int {
	return len(a.cells) - len(a.free)
}

// Cap is the number of slots allocated, live or tombstoned.
func (a *Arena[T]) Cap() int {
	return len(a.cells)
}

func (a *Arena[T]) resolve(h Handle) (*cell[T], bool) {
	if !h.IsValid() || h.offset >= uint32(len(a.cells)) {
		return nil, false
	}
	c := &a.cells[h.offset]
	if !c.active || c.generation != h.generation {
		return nil, false
	}
	return c, true
}

// Iter walks the live slots in offset order, skipping tombstones.
type Iter[T any] struct {
	arena  *Arena[T]
	offset uint32
}

func (a *Arena[T]) Iter() *Iter[T] {
	return &Iter[T]{arena: a}
}

// Next yields the next live element's handle, or false when the arena is
// exhausted. Elements inserted behind the cursor during iteration are not
// revisited.
func (it *Iter[T]) Next() (Handle, bool) {
	for it.offset < uint32(len(it.arena.cells)) {
		offset := it.offset
		it.offset++
		c := &it.arena.cells[offset]
		if c.active {
			return Handle{offset: offset, generation: c.generation}, true
		}
	}
	return InvalidHandle, false
}

package topology

import (
	"errors"
)

// Error kinds reported by the mutation engine, the traversal iterators and
// the validator. All are matched with errors.Is; the wrapped message carries
// the offending handles.
var (
	// ErrStaleHandle means the handle's generation no longer matches its
	// slot: the referenced element was removed.
	ErrStaleHandle = errors.New("stale handle")
	// ErrDegenerateFace means fewer than 3 distinct vertices were supplied
	// for a face.
	ErrDegenerateFace = errors.New("degenerate face")
	// ErrNonManifoldEdge means an operation would give a directed edge more
	// than one owning face.
	ErrNonManifoldEdge = errors.New("non-manifold edge")
	// ErrCollapseWouldDisconnect means collapsing an edge would merge two
	// vertices that already share another edge, creating a duplicate.
	ErrCollapseWouldDisconnect = errors.New("collapse would create a duplicate edge")
	// ErrNotBoundary means a boundary-only traversal was started from a
	// half-edge that has an owning face.
	ErrNotBoundary = errors.New("not a boundary edge")
	// ErrBrokenLink means an internal consistency check found a dangling or
	// inconsistent reference. It signals a prior bug rather than bad caller
	// input; a mesh reporting it should not be mutated further.
	ErrBrokenLink = errors.New("broken topology link")
)

package topology

import (
	"fmt"

	"github.com/spaghettifunk/hedra/engine/containers"
)

// Typed handles over the arena's generation-tagged references. Each element
// kind gets its own type so a face handle can never be passed where an edge
// handle is expected.

type VertexHandle struct {
	containers.Handle
}

type HalfEdgeHandle struct {
	containers.Handle
}

type FaceHandle struct {
	containers.Handle
}

// InvalidVertex, InvalidHalfEdge and InvalidFace are the "no element"
// values used for unwired references (e.g. the twin of an unpaired
// half-edge). The zero value of each handle type is equivalent.
var (
	InvalidVertex   = VertexHandle{containers.InvalidHandle}
	InvalidHalfEdge = HalfEdgeHandle{containers.InvalidHandle}
	InvalidFace     = FaceHandle{containers.InvalidHandle}
)

func (h VertexHandle) String() string {
	if !h.IsValid() {
		return "vertex(invalid)"
	}
	return fmt.Sprintf("vertex(%d:%d)", h.Offset(), h.Generation())
}

func (h HalfEdgeHandle) String() string {
	if !h.IsValid() {
		return "halfedge(invalid)"
	}
	return fmt.Sprintf("halfedge(%d:%d)", h.Offset(), h.Generation())
}

func (h FaceHandle) String() string {
	if !h.IsValid() {
		return "face(invalid)"
	}
	return fmt.Sprintf("face(%d:%d)", h.Offset(), h.Generation())
}

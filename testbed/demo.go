/*
Testbed scenario that exercises the topology engine the way a tool
built on it would: build a quad grid, refine part of it, decimate part
of it, cut a hole and patch it again, validating after every stage.
*/
package testbed

import (
	"errors"
	"fmt"

	"github.com/spaghettifunk/hedra/engine/core"
	"github.com/spaghettifunk/hedra/engine/math"
	"github.com/spaghettifunk/hedra/engine/topology"
)

type Demo struct {
	config *Config
	clock  *core.Clock
	mesh   *topology.Mesh[math.Vertex3D, string]

	grid  [][]topology.VertexHandle
	faces []topology.FaceHandle
}

func NewDemo(cfg *Config) *Demo {
	core.SetLogLevel(cfg.logLevel())

	verts := (cfg.Rows + 1) * (cfg.Cols + 1)
	return &Demo{
		config: cfg,
		clock:  core.NewClock(),
		mesh:   topology.NewWithCapacity[math.Vertex3D, string](verts, cfg.Rows*cfg.Cols*4, cfg.Rows*cfg.Cols),
	}
}

func (d *Demo) Run() error {
	core.LogInfo("%s: running on a %dx%d grid", d.config.Name, d.config.Rows, d.config.Cols)

	stages := []struct {
		name string
		fn   func() error
	}{
		{"build grid", d.buildGrid},
		{"split interior edge", d.splitInterior},
		{"collapse interior edge", d.collapseInterior},
		{"punch and patch hole", d.punchHole},
	}
	d.clock.Start()
	for _, stage := range stages {
		if err := stage.fn(); err != nil {
			core.LogError("stage %q failed: %s", stage.name, err.Error())
			return err
		}
		d.clock.Update()
		core.LogInfo("stage %q done at %s: %s", stage.name, d.clock.Elapsed(), d.mesh)

		if d.config.ValidateEachStage {
			if err := d.mesh.Validate(); err != nil {
				return err
			}
		}
	}
	d.clock.Stop()
	d.report()
	return nil
}

// buildGrid lays out (rows+1)x(cols+1) vertices on the XZ plane and
// connects them into rows*cols quad faces. Faces are wound consistently
// so every shared edge pairs with its reverse in the neighboring face.
func (d *Demo) buildGrid() error {
	rows, cols := d.config.Rows, d.config.Cols

	d.grid = make([][]topology.VertexHandle, rows+1)
	for r := 0; r <= rows; r++ {
		d.grid[r] = make([]topology.VertexHandle, cols+1)
		for c := 0; c <= cols; c++ {
			d.grid[r][c] = d.mesh.AddVertex(math.Vertex3D{
				Position: math.NewVec3(float32(c), 0, float32(r)),
				Normal:   math.NewVec3(0, 1, 0),
				Texcoord: math.NewVec2(float32(c)/float32(cols), float32(r)/float32(rows)),
			})
		}
	}

	d.faces = make([]topology.FaceHandle, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			fh, err := d.mesh.MakeFace(d.grid[r][c], d.grid[r+1][c], d.grid[r+1][c+1], d.grid[r][c+1])
			if err != nil {
				return err
			}
			mat, err := d.mesh.FaceData(fh)
			if err != nil {
				return err
			}
			if (r+c)%2 == 0 {
				*mat = "checker_light"
			} else {
				*mat = "checker_dark"
			}
			d.faces = append(d.faces, fh)
		}
	}
	return nil
}

// splitInterior splits one shared interior edge, placing the new vertex
// halfway between the endpoints. The two flanking quads become pentagons.
func (d *Demo) splitInterior() error {
	from, to := d.grid[1][1], d.grid[1][2]
	eh, err := d.edgeBetween(from, to)
	if err != nil {
		return err
	}

	a, err := d.mesh.VertexData(from)
	if err != nil {
		return err
	}
	b, err := d.mesh.VertexData(to)
	if err != nil {
		return err
	}
	mid := math.Vertex3D{
		Position: math.Midpoint(a.Position, b.Position),
		Normal:   a.Normal.Lerp(b.Normal, 0.5),
		Texcoord: math.NewVec2((a.Texcoord.X+b.Texcoord.X)/2, (a.Texcoord.Y+b.Texcoord.Y)/2),
	}

	vh, err := d.mesh.SplitEdge(eh, mid)
	if err != nil {
		return err
	}
	deg, err := d.mesh.VertexDegree(vh)
	if err != nil {
		return err
	}
	core.LogInfo("split %s at %s, new vertex degree %d", eh, vh, deg)
	return nil
}

// collapseInterior merges two grid vertices, turning the flanking quads
// into triangles.
func (d *Demo) collapseInterior() error {
	r, c := d.config.Rows-1, 0
	eh, err := d.edgeBetween(d.grid[r][c], d.grid[r][c+1])
	if err != nil {
		return err
	}
	if err := d.mesh.CollapseEdge(eh); err != nil {
		if errors.Is(err, topology.ErrCollapseWouldDisconnect) {
			core.LogWarn("skipping collapse of %s: %s", eh, err.Error())
			return nil
		}
		return err
	}
	core.LogInfo("collapsed %s into %s", d.grid[r][c+1], d.grid[r][c])
	return nil
}

// punchHole removes a face in the middle of the grid, walks the hole's
// rim when one is left behind, and makes the face again over the same
// vertices.
func (d *Demo) punchHole() error {
	target := d.faces[(d.config.Rows/2)*d.config.Cols+d.config.Cols/2]

	var rim []topology.VertexHandle
	loop, err := d.mesh.FaceLoop(target).Collect()
	if err != nil {
		return err
	}
	for _, eh := range loop {
		from, _, err := d.mesh.EdgeEndpoints(eh)
		if err != nil {
			return err
		}
		rim = append(rim, from)
	}

	if err := d.mesh.RemoveFace(target); err != nil {
		return err
	}

	// An interior face leaves its loop behind as a walkable boundary.
	if eh, err := d.edgeBetween(rim[0], rim[1]); err == nil {
		ring, err := d.mesh.BoundaryLoop(eh).Collect()
		if err != nil {
			return err
		}
		core.LogInfo("hole rim has %d edges", len(ring))
	}

	patched, err := d.mesh.MakeFace(rim...)
	if err != nil {
		return err
	}
	mat, err := d.mesh.FaceData(patched)
	if err != nil {
		return err
	}
	*mat = "patch"
	core.LogInfo("patched hole with %s", patched)
	return nil
}

func (d *Demo) report() {
	sides := map[int]int{}
	fit := d.mesh.Faces()
	for {
		fh, ok := fit.Next()
		if !ok {
			break
		}
		n, err := d.mesh.FaceSides(fh)
		if err != nil {
			core.LogWarn("skipping %s in report: %s", fh, err.Error())
			continue
		}
		sides[n]++
	}

	maxDegree := 0
	vit := d.mesh.Vertices()
	for {
		vh, ok := vit.Next()
		if !ok {
			break
		}
		deg, err := d.mesh.VertexDegree(vh)
		if err != nil {
			core.LogWarn("skipping %s in report: %s", vh, err.Error())
			continue
		}
		if deg > maxDegree {
			maxDegree = deg
		}
	}

	core.LogInfo("final mesh %s", d.mesh)
	for n, count := range sides {
		core.LogInfo("  %d faces with %d sides", count, n)
	}
	core.LogInfo("  max vertex degree %d", maxDegree)
}

// edgeBetween resolves the half-edge running between two vertices by
// fanning around the origin.
func (d *Demo) edgeBetween(from, to topology.VertexHandle) (topology.HalfEdgeHandle, error) {
	it := d.mesh.VertexOutgoing(from)
	for {
		eh, ok := it.Next()
		if !ok {
			break
		}
		_, dst, err := d.mesh.EdgeEndpoints(eh)
		if err != nil {
			return topology.InvalidHalfEdge, err
		}
		if dst == to {
			return eh, nil
		}
	}
	if err := it.Err(); err != nil {
		return topology.InvalidHalfEdge, err
	}
	return topology.InvalidHalfEdge, fmt.Errorf("no half-edge between %s and %s", from, to)
}

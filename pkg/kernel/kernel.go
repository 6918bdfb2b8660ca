// Package kernel defines the solid-modelling interface used to build
// reference enclosures. An implementation turns primitives and booleans
// into a triangle mesh that the analysis passes can consume like any
// exported STL.
package kernel

import "github.com/chazu/meshprobe/pkg/mesh"

// DefaultMeshCells is the marching-cubes resolution along the longest axis.
const DefaultMeshCells = 200

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids and tessellates them.
type Kernel interface {
	// Box has its minimum corner at the origin.
	Box(x, y, z float64) Solid
	// Cylinder is centred on the origin with its axis along Z.
	Cylinder(height, radius float64) Solid

	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid

	Translate(s Solid, x, y, z float64) Solid

	// ToMesh tessellates s with cells samples along its longest axis.
	// Vertices are rounded to float32 so the mesh matches what an STL
	// export of it would decode to.
	ToMesh(s Solid, cells int) (*mesh.Mesh, error)
}

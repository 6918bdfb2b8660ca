package analyze

import (
	"errors"
	"fmt"

	"github.com/chazu/meshprobe/pkg/mesh"
)

// ErrEmptyMesh is returned when a pass needs at least one vertex.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// EmptyMeshError names the mesh that had no triangles. It matches
// ErrEmptyMesh under errors.Is.
type EmptyMeshError struct {
	Name string
}

func (e *EmptyMeshError) Error() string {
	if e.Name == "" {
		return ErrEmptyMesh.Error()
	}
	return fmt.Sprintf("%s: %v", e.Name, ErrEmptyMesh)
}

func (e *EmptyMeshError) Is(target error) bool { return target == ErrEmptyMesh }

// BoundingBox is the axis-aligned extent of a set of vertices.
// Min <= Max component-wise.
type BoundingBox struct {
	Min    mesh.Vertex `json:"min"`
	Max    mesh.Vertex `json:"max"`
	Size   mesh.Vertex `json:"size"`
	Center mesh.Vertex `json:"center"`
}

// Bounds computes the bounding box over every vertex of m in one pass.
func Bounds(m *mesh.Mesh) (BoundingBox, error) {
	if m.IsEmpty() {
		name := ""
		if m != nil {
			name = m.Name
		}
		return BoundingBox{}, &EmptyMeshError{Name: name}
	}

	first := m.Triangles[0][0]
	bb := BoundingBox{Min: first, Max: first}
	for _, tri := range m.Triangles {
		for _, v := range tri {
			bb.include(v)
		}
	}
	bb.derive()
	return bb, nil
}

// Extend returns a copy of bb grown to include v.
func (bb BoundingBox) Extend(v mesh.Vertex) BoundingBox {
	bb.include(v)
	bb.derive()
	return bb
}

func (bb *BoundingBox) include(v mesh.Vertex) {
	bb.Min.X = min(bb.Min.X, v.X)
	bb.Min.Y = min(bb.Min.Y, v.Y)
	bb.Min.Z = min(bb.Min.Z, v.Z)
	bb.Max.X = max(bb.Max.X, v.X)
	bb.Max.Y = max(bb.Max.Y, v.Y)
	bb.Max.Z = max(bb.Max.Z, v.Z)
}

func (bb *BoundingBox) derive() {
	bb.Size = bb.Max.Sub(bb.Min)
	bb.Center = mesh.Vertex{
		X: (bb.Min.X + bb.Max.X) / 2,
		Y: (bb.Min.Y + bb.Max.Y) / 2,
		Z: (bb.Min.Z + bb.Max.Z) / 2,
	}
}

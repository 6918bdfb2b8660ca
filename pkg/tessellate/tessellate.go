// Package tessellate builds reference enclosure parts from flat lists of
// primitives and produces their triangle mesh through a geometry kernel.
// The meshes stand in for exported CAD files when checking the analysis
// passes against known geometry.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/meshprobe/pkg/kernel"
	"github.com/chazu/meshprobe/pkg/mesh"
)

// PartKind selects the primitive a Part is built from.
type PartKind int

const (
	PartBox PartKind = iota
	PartCylinder
)

func (k PartKind) String() string {
	switch k {
	case PartBox:
		return "box"
	case PartCylinder:
		return "cylinder"
	}
	return fmt.Sprintf("PartKind(%d)", int(k))
}

// Vec3 is a position or size in millimetres.
type Vec3 struct {
	X, Y, Z float64
}

// Part is one primitive of a model. A box is placed by its minimum corner;
// a cylinder by the centre of its base, standing along +Z. Cut parts are
// subtracted from the union of the solid parts.
type Part struct {
	Name   string
	Kind   PartKind
	At     Vec3
	Size   Vec3    // box only
	Radius float64 // cylinder only
	Height float64 // cylinder only
	Cut    bool
}

// Model is a named set of parts tessellated as one mesh.
type Model struct {
	Name  string
	Parts []Part
	Cells int // marching-cubes resolution; 0 selects kernel.DefaultMeshCells
}

// ErrNoSolid is returned for a model without any additive part.
var ErrNoSolid = errors.New("tessellate: model has no solid parts")

// Build composes the model into a single solid, applying parts in
// declaration order: solid parts are unioned onto the body and cut parts
// are subtracted from it. A later solid part therefore survives an
// earlier cut.
func Build(m Model, k kernel.Kernel) (kernel.Solid, error) {
	var body kernel.Solid
	for i, p := range m.Parts {
		s, err := handlePart(k, p)
		if err != nil {
			return nil, fmt.Errorf("tessellate: part %d (%s): %w", i, p.Name, err)
		}
		switch {
		case body == nil && p.Cut:
			return nil, fmt.Errorf("tessellate: part %d (%s): cut before any solid part", i, p.Name)
		case body == nil:
			body = s
		case p.Cut:
			body = k.Difference(body, s)
		default:
			body = k.Union(body, s)
		}
	}
	if body == nil {
		return nil, ErrNoSolid
	}
	return body, nil
}

// handlePart creates and places the solid for one part.
func handlePart(k kernel.Kernel, p Part) (kernel.Solid, error) {
	switch p.Kind {
	case PartBox:
		if p.Size.X <= 0 || p.Size.Y <= 0 || p.Size.Z <= 0 {
			return nil, fmt.Errorf("box size must be positive, got %+v", p.Size)
		}
		return k.Translate(k.Box(p.Size.X, p.Size.Y, p.Size.Z), p.At.X, p.At.Y, p.At.Z), nil

	case PartCylinder:
		if p.Radius <= 0 || p.Height <= 0 {
			return nil, fmt.Errorf("cylinder radius and height must be positive, got r=%v h=%v", p.Radius, p.Height)
		}
		// The kernel centres cylinders on the origin.
		return k.Translate(k.Cylinder(p.Height, p.Radius), p.At.X, p.At.Y, p.At.Z+p.Height/2), nil

	default:
		return nil, fmt.Errorf("unknown part kind: %v", p.Kind)
	}
}

// Tessellate builds the model and returns its mesh, named after the model.
func Tessellate(m Model, k kernel.Kernel) (*mesh.Mesh, error) {
	solid, err := Build(m, k)
	if err != nil {
		return nil, err
	}
	out, err := k.ToMesh(solid, m.Cells)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", m.Name, err)
	}
	out.Name = m.Name
	return out, nil
}

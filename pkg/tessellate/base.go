package tessellate

import "fmt"

// Standoff is a mounting post rising from the floor. X and Y locate its axis.
type Standoff struct {
	X, Y   float64
	Radius float64
	Height float64 // above the floor top
}

// Opening is a rectangular cutout through the +X wall, centred on (Y, Z).
type Opening struct {
	Y, Z          float64
	Width, Height float64
}

// BaseParams describes an open-topped enclosure base with its minimum
// corner at the origin.
type BaseParams struct {
	Width, Depth, Height float64 // outer X, Y, Z
	Floor                float64 // floor plate thickness
	Wall                 float64 // wall thickness
	Standoffs            []Standoff
	Openings             []Opening
	Cells                int
}

// DefaultBase returns a 100×80×20 base with four M3 standoffs and one
// connector opening in the +X wall.
func DefaultBase() BaseParams {
	posts := make([]Standoff, 0, 4)
	for _, xy := range [][2]float64{{15, 15}, {85, 15}, {15, 65}, {85, 65}} {
		posts = append(posts, Standoff{X: xy[0], Y: xy[1], Radius: 3, Height: 6})
	}
	return BaseParams{
		Width: 100, Depth: 80, Height: 20,
		Floor: 2, Wall: 3,
		Standoffs: posts,
		Openings:  []Opening{{Y: 40, Z: 12, Width: 16, Height: 10}},
	}
}

// Validate checks that the walls and standoffs fit inside the outline.
func (p BaseParams) Validate() error {
	if p.Width <= 0 || p.Depth <= 0 || p.Height <= 0 {
		return fmt.Errorf("outer size must be positive, got %vx%vx%v", p.Width, p.Depth, p.Height)
	}
	if p.Floor <= 0 || p.Floor >= p.Height {
		return fmt.Errorf("floor thickness %v must be within (0, %v)", p.Floor, p.Height)
	}
	if p.Wall <= 0 || 2*p.Wall >= min(p.Width, p.Depth) {
		return fmt.Errorf("wall thickness %v leaves no interior", p.Wall)
	}
	for i, s := range p.Standoffs {
		if s.Radius <= 0 || s.Height <= 0 {
			return fmt.Errorf("standoff %d: radius and height must be positive", i)
		}
		if s.X-s.Radius < p.Wall || s.X+s.Radius > p.Width-p.Wall ||
			s.Y-s.Radius < p.Wall || s.Y+s.Radius > p.Depth-p.Wall {
			return fmt.Errorf("standoff %d at (%v, %v) overlaps a wall", i, s.X, s.Y)
		}
	}
	for i, o := range p.Openings {
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("opening %d: size must be positive", i)
		}
	}
	return nil
}

// FloorTop returns the Z of the floor's upper surface.
func (p BaseParams) FloorTop() float64 {
	return p.Floor
}

// BaseModel lays out the floor, the four walls as a hollowed box, the
// standoffs and the wall openings.
func BaseModel(name string, p BaseParams) (Model, error) {
	if err := p.Validate(); err != nil {
		return Model{}, fmt.Errorf("base: %w", err)
	}

	parts := []Part{
		{Name: "shell", Kind: PartBox, Size: Vec3{p.Width, p.Depth, p.Height}},
		{
			Name: "cavity", Kind: PartBox, Cut: true,
			At:   Vec3{p.Wall, p.Wall, p.Floor},
			Size: Vec3{p.Width - 2*p.Wall, p.Depth - 2*p.Wall, p.Height},
		},
	}
	for i, s := range p.Standoffs {
		// Posts start at z=0 so they fuse with the floor.
		parts = append(parts, Part{
			Name: fmt.Sprintf("standoff-%d", i), Kind: PartCylinder,
			At:     Vec3{s.X, s.Y, 0},
			Radius: s.Radius, Height: p.Floor + s.Height,
		})
	}
	for i, o := range p.Openings {
		parts = append(parts, Part{
			Name: fmt.Sprintf("opening-%d", i), Kind: PartBox, Cut: true,
			At:   Vec3{p.Width - 2*p.Wall, o.Y - o.Width/2, o.Z - o.Height/2},
			Size: Vec3{3 * p.Wall, o.Width, o.Height},
		})
	}
	return Model{Name: name, Parts: parts, Cells: p.Cells}, nil
}

package verify

import (
	"fmt"
	"io"
	"strings"

	"github.com/chazu/meshprobe/pkg/analyze"
	"github.com/chazu/meshprobe/pkg/config"
)

// Span is a closed interval along one axis.
type Span struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Size returns Max - Min.
func (s Span) Size() float64 { return s.Max - s.Min }

// Point is a position in the XY plane.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned extent.
type Box struct {
	X Span `json:"x"`
	Y Span `json:"y"`
	Z Span `json:"z"`
}

// Clearance is the gap between the shield PCB and each inner wall.
type Clearance struct {
	Left  float64 `json:"left"`  // -X
	Right float64 `json:"right"` // +X
	Front float64 `json:"front"` // -Y
	Back  float64 `json:"back"`  // +Y
}

// Connector is a housing placed in case coordinates. WallDistance is
// measured to the outer wall the connector faces; negative means the
// housing passes through it.
type Connector struct {
	Center       Point   `json:"center"`
	Housing      Box     `json:"housing"`
	WallDistance float64 `json:"wall_distance"`
}

// Cutout is the centre of a wall cutout in the YZ plane.
type Cutout struct {
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PlacementReport is where the board stack lands inside the case.
type PlacementReport struct {
	Case         analyze.BoundingBox `json:"case"`
	Inner        Box                 `json:"inner"`
	BoardOrigin  Point               `json:"board_origin"`
	ShieldOrigin Point               `json:"shield_origin"`
	Shield       Box                 `json:"shield"`
	Clearance    Clearance           `json:"clearance"`

	RJ45       Connector `json:"rj45"`
	RJ45Cutout Cutout    `json:"rj45_cutout"`
	SD         Connector `json:"sd"`

	Terminal         Cutout  `json:"terminal"`
	TerminalBackWall float64 `json:"terminal_back_wall"` // to the inner +Y wall
	TerminalEdge     float64 `json:"terminal_edge"`      // to the outer +Y face

	Notes  []string `json:"notes,omitempty"`
	Issues []string `json:"issues,omitempty"`
}

// Passed reports whether no collision was found.
func (r PlacementReport) Passed() bool { return len(r.Issues) == 0 }

// Placement computes the board stack position for a case whose outer
// extent is caseBox. The main board sits BoardInset from the inner -X wall,
// centred in Y, on standoffs above the case floor; the shield shares its
// origin and rides on the stacking headers.
func Placement(enc config.Enclosure, caseBox analyze.BoundingBox) PlacementReport {
	r := PlacementReport{Case: caseBox}
	lo, hi := caseBox.Min, caseBox.Max
	wall := enc.WallThickness

	r.Inner = Box{
		X: Span{lo.X + wall, hi.X - wall},
		Y: Span{lo.Y + wall, hi.Y - wall},
		Z: Span{lo.Z, hi.Z},
	}

	r.BoardOrigin = Point{
		X: lo.X + wall + enc.BoardInset,
		Y: (lo.Y+hi.Y)/2 - enc.BoardDepth/2,
	}
	r.ShieldOrigin = r.BoardOrigin

	boardBottom := lo.Z + enc.StandoffHeight
	boardTop := boardBottom + enc.PCBThickness
	shieldBottom := boardTop + enc.HeaderHeight
	shieldTop := shieldBottom + enc.PCBThickness

	o := r.ShieldOrigin
	r.Shield = Box{
		X: Span{o.X, o.X + enc.ShieldWidth},
		Y: Span{o.Y, o.Y + enc.ShieldDepth},
		Z: Span{shieldBottom, shieldTop},
	}
	r.Clearance = Clearance{
		Left:  r.Shield.X.Min - r.Inner.X.Min,
		Right: r.Inner.X.Max - r.Shield.X.Max,
		Front: r.Shield.Y.Min - r.Inner.Y.Min,
		Back:  r.Inner.Y.Max - r.Shield.Y.Max,
	}

	// The RJ45 reference point overhangs the board edge; the housing runs
	// from the board edge outward along -X.
	rj := enc.RJ45
	rjCenter := Point{X: o.X + rj.OffsetX, Y: o.Y + rj.OffsetY}
	rjXMax := rjCenter.X - rj.OffsetX
	r.RJ45 = Connector{
		Center: rjCenter,
		Housing: Box{
			X: Span{rjXMax - rj.Length, rjXMax},
			Y: Span{rjCenter.Y - rj.Width/2, rjCenter.Y + rj.Width/2},
			Z: Span{shieldTop, shieldTop + rj.Height},
		},
	}
	r.RJ45.WallDistance = r.RJ45.Housing.X.Min - lo.X
	r.RJ45Cutout = Cutout{Y: rjCenter.Y, Z: shieldTop + rj.Height/2}

	sd := enc.SD
	sdCenter := Point{X: o.X + sd.OffsetX, Y: o.Y + sd.OffsetY}
	r.SD = Connector{
		Center: sdCenter,
		Housing: Box{
			X: Span{sdCenter.X - sd.Length/2, sdCenter.X + sd.Length/2},
			Y: Span{sdCenter.Y - sd.Width/2, sdCenter.Y + sd.Width/2},
			Z: Span{shieldTop, shieldTop + sd.Height},
		},
	}
	r.SD.WallDistance = hi.X - r.SD.Housing.X.Max

	r.Terminal = Cutout{
		Y: r.RJ45Cutout.Y + enc.RJ45CutoutWidth/2 + enc.TerminalSpacing + enc.TerminalWidth/2,
		Z: r.RJ45Cutout.Z,
	}
	termYMax := r.Terminal.Y + enc.TerminalWidth/2
	r.TerminalBackWall = r.Inner.Y.Max - termYMax
	r.TerminalEdge = hi.Y - termYMax

	r.checkCollisions()
	return r
}

func (r *PlacementReport) checkCollisions() {
	note := func(format string, args ...interface{}) { r.Notes = append(r.Notes, fmt.Sprintf(format, args...)) }
	issue := func(format string, args ...interface{}) { r.Issues = append(r.Issues, fmt.Sprintf(format, args...)) }

	rjMin := r.RJ45.Housing.X.Min
	switch {
	case rjMin >= r.Inner.X.Min:
		note("WARNING: RJ45 housing does NOT reach wall (gap: %.2f mm)", rjMin-r.Inner.X.Min)
	case rjMin < r.Case.Min.X:
		issue("RJ45 housing extends %.2f mm PAST the outer wall", r.Case.Min.X-rjMin)
	default:
		note("ok: RJ45 housing penetrates wall (expected - cutout provides clearance)")
	}

	sdMax := r.SD.Housing.X.Max
	switch {
	case sdMax <= r.Inner.X.Max:
		note("WARNING: SD slot does NOT reach wall (gap: %.2f mm)", r.Inner.X.Max-sdMax)
	case sdMax > r.Case.Max.X:
		issue("SD housing extends %.2f mm PAST the outer wall", sdMax-r.Case.Max.X)
	default:
		note("ok: SD slot reaches into wall (expected - cutout provides clearance)")
	}

	if c := r.Clearance.Left; c < 0 {
		issue("PCB left edge clips inner wall by %.2f mm", -c)
	}
	if c := r.Clearance.Right; c < 0 {
		issue("PCB right edge clips inner wall by %.2f mm", -c)
	}
	if c := r.Clearance.Front; c < 0 {
		issue("PCB front edge clips inner wall by %.2f mm", -c)
	}
	if c := r.Clearance.Back; c < 0 {
		issue("PCB back edge clips inner wall by %.2f mm", -c)
	}
}

// WriteText prints the report in the layout of the board position sheet.
func (r PlacementReport) WriteText(w io.Writer) error {
	rule := strings.Repeat("=", 60)
	var b strings.Builder
	p := func(format string, args ...interface{}) { fmt.Fprintf(&b, format+"\n", args...) }
	span := func(label string, s Span) { p("  %s: %.2f to %.2f", label, s.Min, s.Max) }

	p("%s\nBoard Positions in Case Coordinates\n%s", rule, rule)

	p("\nCase inner walls:")
	p("  X: %.2f to %.2f (width: %.2f)", r.Inner.X.Min, r.Inner.X.Max, r.Inner.X.Size())
	p("  Y: %.2f to %.2f (depth: %.2f)", r.Inner.Y.Min, r.Inner.Y.Max, r.Inner.Y.Size())
	p("  Z: %.2f to %.2f (height: %.2f)", r.Inner.Z.Min, r.Inner.Z.Max, r.Inner.Z.Size())

	p("\nMain board origin (case coords): (%.2f, %.2f)", r.BoardOrigin.X, r.BoardOrigin.Y)
	p("Shield origin (case coords): (%.2f, %.2f)", r.ShieldOrigin.X, r.ShieldOrigin.Y)

	p("\nShield PCB extent:")
	span("X", r.Shield.X)
	span("Y", r.Shield.Y)
	span("Z", r.Shield.Z)
	p("\n  Clearance to left wall (-X):  %.2f mm", r.Clearance.Left)
	p("  Clearance to right wall (+X): %.2f mm", r.Clearance.Right)
	p("  Clearance to front wall (-Y): %.2f mm", r.Clearance.Front)
	p("  Clearance to back wall (+Y):  %.2f mm", r.Clearance.Back)

	p("\nRJ45 housing position (case coords):")
	p("  Center: (%.2f, %.2f)", r.RJ45.Center.X, r.RJ45.Center.Y)
	p("  Z base: %.2f", r.RJ45.Housing.Z.Min)
	span("Housing X", r.RJ45.Housing.X)
	span("Housing Y", r.RJ45.Housing.Y)
	span("Housing Z", r.RJ45.Housing.Z)
	p("  Distance to left wall (-X): %.2f mm (negative = through wall)", r.RJ45.WallDistance)

	p("\nRJ45 cutout position:")
	p("  Center Y: %.2f", r.RJ45Cutout.Y)
	p("  Center Z: %.2f", r.RJ45Cutout.Z)

	p("\nSD slot position (case coords):")
	p("  Center: (%.2f, %.2f)", r.SD.Center.X, r.SD.Center.Y)
	span("Housing X", r.SD.Housing.X)
	span("Housing Y", r.SD.Housing.Y)
	p("  Distance to right wall (+X): %.2f mm (negative = through wall)", r.SD.WallDistance)

	p("\nTerminal cutout position:")
	p("  Center Y: %.2f", r.Terminal.Y)
	p("  Center Z: %.2f", r.Terminal.Z)
	p("  Distance to back wall (+Y): %.2f mm", r.TerminalBackWall)
	p("  Distance to case edge (+Y): %.2f mm", r.TerminalEdge)

	p("\n%s\nCOLLISION CHECK\n%s", rule, rule)
	for _, n := range r.Notes {
		p("  %s", n)
	}
	if r.Passed() {
		p("\n  No collisions detected.")
	} else {
		p("\nISSUES FOUND:")
		for _, is := range r.Issues {
			p("  ** %s", is)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

package config

import (
	"encoding/json"
	"fmt"
)

// Housing is a connector body mounted on the shield. Offsets are from the
// shield origin to the connector reference point.
type Housing struct {
	OffsetX float64 `json:"offset_x"`
	OffsetY float64 `json:"offset_y"`
	Length  float64 `json:"length"` // along X
	Width   float64 `json:"width"`  // along Y
	Height  float64 `json:"height"`
}

// Enclosure describes the board stack placed inside the case: a main board
// on standoffs with a shield on stacking headers above it. All values are
// millimetres.
type Enclosure struct {
	WallThickness  float64 `json:"wall_thickness"`
	BoardInset     float64 `json:"board_inset"` // gap between inner -X wall and board origin
	BoardDepth     float64 `json:"board_depth"` // main board Y size, centred in the case
	StandoffHeight float64 `json:"standoff_height"`
	PCBThickness   float64 `json:"pcb_thickness"`
	HeaderHeight   float64 `json:"header_height"`
	ShieldWidth    float64 `json:"shield_width"`
	ShieldDepth    float64 `json:"shield_depth"`

	RJ45 Housing `json:"rj45"`
	SD   Housing `json:"sd"`

	RJ45CutoutWidth float64 `json:"rj45_cutout_width"`
	TerminalWidth   float64 `json:"terminal_width"`
	TerminalSpacing float64 `json:"terminal_spacing"`
}

// DefaultEnclosure returns the GIGA R1 with an Ethernet shield stacked on it.
func DefaultEnclosure() Enclosure {
	return Enclosure{
		WallThickness:  4.0,
		BoardInset:     2.0,
		BoardDepth:     76.2,
		StandoffHeight: 5.0,
		PCBThickness:   1.6,
		HeaderHeight:   8.5,
		ShieldWidth:    68.6,
		ShieldDepth:    53.3,
		RJ45: Housing{
			OffsetX: -4.318,
			OffsetY: 38.354,
			Length:  21.75,
			Width:   16.0,
			Height:  13.5,
		},
		SD: Housing{
			OffsetX: 63.5,
			OffsetY: 19.05,
			Length:  14.0,
			Width:   12.0,
		},
		RJ45CutoutWidth: 17.0,
		TerminalWidth:   18.4,
		TerminalSpacing: 6.0,
	}
}

// UnmarshalJSON fills omitted fields from DefaultEnclosure.
func (e *Enclosure) UnmarshalJSON(data []byte) error {
	type plain Enclosure
	p := plain(DefaultEnclosure())
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Enclosure(p)
	return nil
}

// Validate rejects negative dimensions.
func (e Enclosure) Validate() error {
	dims := []struct {
		name string
		v    float64
	}{
		{"wall_thickness", e.WallThickness},
		{"board_depth", e.BoardDepth},
		{"standoff_height", e.StandoffHeight},
		{"pcb_thickness", e.PCBThickness},
		{"header_height", e.HeaderHeight},
		{"shield_width", e.ShieldWidth},
		{"shield_depth", e.ShieldDepth},
		{"rj45.length", e.RJ45.Length},
		{"rj45.width", e.RJ45.Width},
		{"rj45.height", e.RJ45.Height},
		{"sd.length", e.SD.Length},
		{"sd.width", e.SD.Width},
		{"terminal_width", e.TerminalWidth},
	}
	for _, d := range dims {
		if d.v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", d.name, d.v)
		}
	}
	return nil
}

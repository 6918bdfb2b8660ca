package analyze

import (
	"math"

	"github.com/chazu/meshprobe/pkg/mesh"
)

// DefaultFaceTolerance is the half-height of the band used to collect
// vertices at a face level.
const DefaultFaceTolerance = 0.5

// FaceParams configures FaceExtents.
type FaceParams struct {
	Axis      Axis
	Level     *float64 // nil selects the mesh maximum along Axis
	Tolerance float64  // <= 0 selects DefaultFaceTolerance
}

// FaceExtent is the in-plane rectangle covering the vertices near a level.
type FaceExtent struct {
	Face  string  `json:"face"`
	Axis  Axis    `json:"axis"`
	Level float64 `json:"level"`
	XMin  float64 `json:"x_min"`
	XMax  float64 `json:"x_max"`
	YMin  float64 `json:"y_min"`
	YMax  float64 `json:"y_max"`
}

// FaceExtents reports the XY extent of vertices within tolerance of a Z
// level, which approximates the top-face footprint of a lid. Only AxisZ is
// supported; other axes yield no result. The extent covers every vertex at
// the level, so an opening in the face cannot be told apart from the solid
// around it.
func FaceExtents(m *mesh.Mesh, p FaceParams) []FaceExtent {
	if p.Axis != AxisZ || m.IsEmpty() {
		return nil
	}
	tol := p.Tolerance
	if tol <= 0 {
		tol = DefaultFaceTolerance
	}

	var level float64
	if p.Level != nil {
		level = *p.Level
	} else {
		bb, err := Bounds(m)
		if err != nil {
			return nil
		}
		level = bb.Max.Z
	}

	s, ok := AxisSlice(m, AxisZ, level, tol)
	if !ok {
		return nil
	}
	return []FaceExtent{{
		Face:  "top",
		Axis:  AxisZ,
		Level: level,
		XMin:  s.UMin,
		XMax:  s.UMax,
		YMin:  s.VMin,
		YMax:  s.VMax,
	}}
}

// SliceExtent is the extent of the vertices near a plane, expressed along
// the plane's two in-plane axes U and V (for AxisX: Y and Z).
type SliceExtent struct {
	Axis     Axis    `json:"axis"`
	Level    float64 `json:"level"`
	U, V     Axis    `json:"-"`
	UMin     float64 `json:"u_min"`
	UMax     float64 `json:"u_max"`
	VMin     float64 `json:"v_min"`
	VMax     float64 `json:"v_max"`
	Vertices int     `json:"vertices"`
}

// AxisSlice collects the vertices with |coord - level| < tol along axis and
// returns their extent on the two orthogonal axes. It reports false when no
// vertex is close enough. Wall openings are located this way, for example
// the +X wall at the bounding-box maximum X.
func AxisSlice(m *mesh.Mesh, axis Axis, level, tol float64) (SliceExtent, bool) {
	u, v := axis.plane()
	s := SliceExtent{
		Axis: axis, Level: level, U: u, V: v,
		UMin: math.Inf(1), UMax: math.Inf(-1),
		VMin: math.Inf(1), VMax: math.Inf(-1),
	}
	if m.IsEmpty() {
		return SliceExtent{}, false
	}
	for _, tri := range m.Triangles {
		for _, p := range tri {
			if math.Abs(axis.coord(p)-level) >= tol {
				continue
			}
			pu, pv := u.coord(p), v.coord(p)
			s.UMin = math.Min(s.UMin, pu)
			s.UMax = math.Max(s.UMax, pu)
			s.VMin = math.Min(s.VMin, pv)
			s.VMax = math.Max(s.VMax, pv)
			s.Vertices++
		}
	}
	if s.Vertices == 0 {
		return SliceExtent{}, false
	}
	return s, true
}

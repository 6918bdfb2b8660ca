package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/meshprobe/pkg/analyze"
	"github.com/chazu/meshprobe/pkg/mesh"
)

// MaxListedLayers is how many Z layers the text report prints before
// summarising the rest.
const MaxListedLayers = 10

const rule = "============================================================"

// WriteText writes a human-readable report for a. Lengths are printed with
// two decimals.
func WriteText(w io.Writer, a *Analysis) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "\n%s\nFile: %s\n%s\n", rule, a.Name, rule)
	fmt.Fprintf(bw, "  Triangles: %d\n", a.Triangles)
	fmt.Fprintf(bw, "  Bounding box:\n")
	fmt.Fprintf(bw, "    Min: %s\n", point(a.Box.Min))
	fmt.Fprintf(bw, "    Max: %s\n", point(a.Box.Max))
	fmt.Fprintf(bw, "  Size: %.2f x %.2f x %.2f mm\n", a.Box.Size.X, a.Box.Size.Y, a.Box.Size.Z)
	fmt.Fprintf(bw, "  Center: %s\n", point(a.Box.Center))

	if len(a.Layers) > 0 {
		fmt.Fprintf(bw, "  Key Z layers: %s\n", layerList(a.Layers))
	}

	if len(a.TopFace) > 0 {
		fmt.Fprintf(bw, "  Top face analysis:\n")
		for _, f := range a.TopFace {
			fmt.Fprintf(bw, "    X range: %.2f to %.2f\n", f.XMin, f.XMax)
			fmt.Fprintf(bw, "    Y range: %.2f to %.2f\n", f.YMin, f.YMax)
		}
	}

	if a.Features != nil {
		writeFeatures(bw, a.Features)
	}
	return bw.Flush()
}

func writeFeatures(w io.Writer, f *Features) {
	p, res := f.Params, f.Result
	fmt.Fprintf(w, "  Vertices in standoff Z range (%.1f to %.1f): %d\n", p.ZLow, p.ZHigh, res.BandVertices)

	if len(res.Clusters) == 0 {
		fmt.Fprintf(w, "  No dense vertex clusters found in standoff Z range\n")
	} else {
		fmt.Fprintf(w, "  Found %d potential standoff features:\n", len(res.Clusters))
		for i, c := range res.Clusters {
			fmt.Fprintf(w, "    #%d: center=(%.2f, %.2f), Z=%.2f to %.2f, dia~%.1fmm, verts=%d\n",
				i+1, c.CenterX, c.CenterY, c.ZMin, c.ZMax, c.Diameter, c.VertexCount)
		}
		fmt.Fprintf(w, "  Likely mounting standoffs (diameter %g-%gmm):\n", p.MinDiameter, p.MaxDiameter)
		for i, c := range res.Mounting {
			fmt.Fprintf(w, "    #%d: (%.2f, %.2f), height~%.1fmm, dia~%.1fmm\n",
				i+1, c.CenterX, c.CenterY, c.Height(f.FloorZ), c.Diameter)
		}
	}

	if s := f.RightWall; s != nil {
		fmt.Fprintf(w, "  Right wall (+X) opening analysis at X=%.2f:\n", s.Level)
		writeSlice(w, *s)
	}
}

// writeSlice prints the in-plane ranges of a wall slice.
func writeSlice(w io.Writer, s analyze.SliceExtent) {
	fmt.Fprintf(w, "    %s range: %.2f to %.2f\n", strings.ToUpper(s.U.String()), s.UMin, s.UMax)
	fmt.Fprintf(w, "    %s range: %.2f to %.2f\n", strings.ToUpper(s.V.String()), s.VMin, s.VMax)
}

func point(v mesh.Vertex) string {
	return fmt.Sprintf("(%.2f, %.2f, %.2f)", v.X, v.Y, v.Z)
}

func layerList(layers []float64) string {
	n := len(layers)
	if n > MaxListedLayers {
		n = MaxListedLayers
	}
	parts := make([]string, n)
	for i, z := range layers[:n] {
		parts[i] = fmt.Sprintf("%.2f", z)
	}
	s := strings.Join(parts, ", ")
	if more := len(layers) - n; more > 0 {
		s += fmt.Sprintf(" ... (+%d more)", more)
	}
	return s
}

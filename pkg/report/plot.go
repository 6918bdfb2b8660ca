package report

import (
	"errors"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// ErrNoHistogram is returned when an analysis has no Z buckets to plot.
var ErrNoHistogram = errors.New("no Z histogram to plot")

var (
	histogramColor = color.RGBA{R: 49, G: 104, B: 142, A: 255}
	thresholdColor = color.RGBA{R: 200, G: 40, B: 40, A: 255}
	layerColor     = color.RGBA{R: 53, G: 183, B: 121, A: 255}
)

// LayerPlot builds the vertex-count-per-Z histogram of a with the layer
// threshold drawn across it and the detected layers marked.
func LayerPlot(a *Analysis) (*plot.Plot, error) {
	if len(a.Histogram) == 0 {
		return nil, ErrNoHistogram
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - Z Layers", a.Name)
	p.X.Label.Text = "Z (mm)"
	p.Y.Label.Text = "Vertices"

	pts := make(plotter.XYs, len(a.Histogram))
	for i, b := range a.Histogram {
		pts[i] = plotter.XY{X: b.Z, Y: float64(b.Count)}
	}
	hist, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	hist.StepStyle = plotter.MidStep
	hist.Color = histogramColor
	hist.Width = vg.Points(1)
	p.Add(hist)
	p.Legend.Add("vertices", hist)

	lo, hi := a.Histogram[0].Z, a.Histogram[len(a.Histogram)-1].Z
	thr, err := plotter.NewLine(plotter.XYs{{X: lo, Y: a.Threshold}, {X: hi, Y: a.Threshold}})
	if err != nil {
		return nil, err
	}
	thr.Color = thresholdColor
	thr.Width = vg.Points(1)
	thr.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	p.Add(thr)
	p.Legend.Add(fmt.Sprintf("threshold %.1f", a.Threshold), thr)

	if len(a.Layers) > 0 {
		counts := make(map[float64]int, len(a.Histogram))
		for _, b := range a.Histogram {
			counts[b.Z] = b.Count
		}
		marks := make(plotter.XYs, len(a.Layers))
		for i, z := range a.Layers {
			marks[i] = plotter.XY{X: z, Y: float64(counts[z])}
		}
		sc, err := plotter.NewScatter(marks)
		if err != nil {
			return nil, err
		}
		sc.Color = layerColor
		sc.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add("layers", sc)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// SaveLayerPlot renders LayerPlot to path. The image format follows the
// file extension (.png, .svg, .pdf).
func SaveLayerPlot(path string, a *Analysis) error {
	p, err := LayerPlot(a)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Name, err)
	}
	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save layer plot: %w", err)
	}
	return nil
}

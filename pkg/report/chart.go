package report

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// ClusterChart renders the cluster centres of a as an HTML scatter chart.
// Point colour follows the member vertex count. Mounting features are drawn
// as a second, larger series on top.
func ClusterChart(w io.Writer, a *Analysis) error {
	if a.Features == nil {
		return fmt.Errorf("%s: no standoff analysis to chart", a.Name)
	}
	res := a.Features.Result

	maxVerts := 1
	for _, c := range res.Clusters {
		if c.VertexCount > maxVerts {
			maxVerts = c.VertexCount
		}
	}

	xMin, xMax := a.Box.Min.X, a.Box.Max.X
	yMin, yMax := a.Box.Min.Y, a.Box.Max.Y
	pad := 0.05 * math.Max(a.Box.Size.X, a.Box.Size.Y)

	all := make([]opts.ScatterData, 0, len(res.Clusters))
	for _, c := range res.Clusters {
		all = append(all, opts.ScatterData{
			Name:  fmt.Sprintf("dia~%.1fmm", c.Diameter),
			Value: []interface{}{c.CenterX, c.CenterY, c.VertexCount},
		})
	}
	mounting := make([]opts.ScatterData, 0, len(res.Mounting))
	for _, c := range res.Mounting {
		mounting = append(mounting, opts.ScatterData{
			Name:  fmt.Sprintf("dia~%.1fmm", c.Diameter),
			Value: []interface{}{c.CenterX, c.CenterY, c.VertexCount},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: a.Name + " standoffs", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Standoff clusters",
			Subtitle: fmt.Sprintf("%s clusters=%d mounting=%d", a.Name, len(res.Clusters), len(res.Mounting)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: xMin - pad, Max: xMax + pad, Name: "X (mm)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: yMin - pad, Max: yMax + pad, Name: "Y (mm)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(maxVerts),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("clusters", all, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))
	scatter.AddSeries("mounting", mounting, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 16}))
	return scatter.Render(w)
}

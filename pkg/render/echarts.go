// Package render draws the scene for browsers: an interactive 3D chart page and
// a static top-down image.
package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"trailview/pkg/scene"
)

// minExtent keeps the axis range from collapsing when the trail is tiny or empty.
const minExtent = scene.AxisLength / 2

// Chart writes an HTML page with a 3D scatter of the scene: trail dots, the origin
// marker and the end points of the three axes.
func Chart(w io.Writer, entities []scene.Entity) error {
	var trail, marker, axes []opts.Chart3DData
	var offsets []r3.Vec

	for _, e := range entities {
		switch {
		case e.Tag == scene.TagTrail:
			offsets = append(offsets, e.Position)
			trail = append(trail, point3D("", e.Position, e.Color))
		case e.Name == scene.MarkerName:
			marker = append(marker, point3D("current", e.Position, e.Color))
		case e.Kind == scene.KindAxis:
			half := r3.Scale(e.Length/2, e.Direction)
			axes = append(axes,
				point3D(e.Name+"+", half, e.Color),
				point3D(e.Name+"-", r3.Scale(-1, half), e.Color),
			)
		}
	}

	ext := max(minExtent, scene.Extent(offsets)*1.05)

	chart := charts.NewScatter3D()
	chart.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "trailview", Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Relative trail", Subtitle: fmt.Sprintf("%d trail points", len(trail))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X", Min: -ext, Max: ext}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y", Min: -ext, Max: ext}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z", Min: -ext, Max: ext}),
		charts.WithGrid3DOpts(opts.Grid3D{ViewControl: &opts.ViewControl{AutoRotate: opts.Bool(false)}}),
	)

	chart.AddSeries("trail", trail, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	chart.AddSeries("current", marker, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))
	chart.AddSeries("axes", axes, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	if err := chart.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func point3D(name string, v r3.Vec, color string) opts.Chart3DData {
	return opts.Chart3DData{
		Name:      name,
		Value:     []interface{}{v.X, v.Y, v.Z},
		ItemStyle: &opts.ItemStyle{Color: color},
	}
}

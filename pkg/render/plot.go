package render

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"trailview/pkg/scene"
)

// TopDownSize is the edge length of the square top-down image.
const TopDownSize = 6 * vg.Inch

var (
	trailColor  = color.RGBA{R: 0xff, A: 0xff}
	markerColor = color.Black
)

// TopDownPNG writes a PNG of the trail projected onto the XY plane, with the
// current sample at the origin.
func TopDownPNG(w io.Writer, trail []r3.Vec) error {
	p := plot.New()
	p.Title.Text = "Trail (top-down)"
	p.X.Label.Text = "X"
	p.Y.Label.Text = "Y"
	p.Add(plotter.NewGrid())

	ext := max(minExtent, scene.Extent(trail)*1.05)
	p.X.Min, p.X.Max = -ext, ext
	p.Y.Min, p.Y.Max = -ext, ext

	if len(trail) > 0 {
		pts := make(plotter.XYs, len(trail))
		for i, v := range trail {
			pts[i] = plotter.XY{X: v.X, Y: v.Y}
		}
		dots, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to build trail: %w", err)
		}
		dots.GlyphStyle = draw.GlyphStyle{Color: trailColor, Radius: vg.Points(2), Shape: draw.CircleGlyph{}}
		p.Add(dots)
		p.Legend.Add("trail", dots)
	}

	marker, err := plotter.NewScatter(plotter.XYs{{X: 0, Y: 0}})
	if err != nil {
		return fmt.Errorf("failed to build marker: %w", err)
	}
	marker.GlyphStyle = draw.GlyphStyle{Color: markerColor, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}
	p.Add(marker)
	p.Legend.Add("current", marker)
	p.Legend.Top = true

	wt, err := p.WriterTo(TopDownSize, TopDownSize, "png")
	if err != nil {
		return fmt.Errorf("failed to create png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write png: %w", err)
	}
	return nil
}

// Package render draws density maps: a static PNG scatter of grid cell
// centroids coloured by density, and an interactive HTML variant.
package render

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/density.report/internal/density"
)

// ScatterOptions controls the PNG density map.
type ScatterOptions struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// DefaultScatterOptions matches the upstream density export projection.
func DefaultScatterOptions() ScatterOptions {
	return ScatterOptions{
		Title:  "AIS Vessel Density - Time at Cells (1km grid)",
		XLabel: "Longitude (EPSG:3035)",
		YLabel: "Latitude (EPSG:3035)",
		Width:  12 * vg.Inch,
		Height: 8 * vg.Inch,
	}
}

// SaveScatterPNG renders one point per record at its centroid, coloured by
// density magnitude on a heat ramp, and saves the plot as a PNG.
func SaveScatterPNG(path string, records []density.Record, opt ScatterOptions) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to plot")
	}

	s := density.Stats(records)

	pts := make(plotter.XYs, len(records))
	for i, r := range records {
		pts[i] = plotter.XY{X: r.LonCentroid, Y: r.LatCentroid}
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build scatter: %w", err)
	}
	sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{
			Color:  heatColor(records[i].Density, s.Min, s.Max),
			Radius: vg.Points(1.5),
			Shape:  draw.CircleGlyph{},
		}
	}

	p := plot.New()
	p.Title.Text = opt.Title
	p.X.Label.Text = opt.XLabel
	p.Y.Label.Text = opt.YLabel
	p.Add(sc)

	if err := p.Save(opt.Width, opt.Height, path); err != nil {
		return fmt.Errorf("save density map: %w", err)
	}

	return nil
}

// heatColor maps v within [min,max] onto a black-red-yellow-white ramp,
// matching the usual "hot" colormap for density plots.
func heatColor(v, min, max float64) color.Color {
	t := 0.0
	if max > min {
		t = (v - min) / (max - min)
	}

	var r, g, b float64
	switch {
	case t < 1.0/3.0:
		r = 3 * t
	case t < 2.0/3.0:
		r = 1
		g = 3*t - 1
	default:
		r = 1
		g = 1
		b = 3*t - 2
	}

	return color.RGBA{
		R: uint8(clamp01(r) * 255),
		G: uint8(clamp01(g) * 255),
		B: uint8(clamp01(b) * 255),
		A: 255,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/density.report/internal/density"
)

// RenderHTML writes an interactive scatter of the density map. Points carry
// density in the third dimension so the visual map colours by magnitude.
func RenderHTML(w io.Writer, records []density.Record) error {
	if len(records) == 0 {
		return fmt.Errorf("no records to plot")
	}

	s := density.Stats(records)

	data := make([]opts.ScatterData, 0, len(records))
	for _, r := range records {
		data = append(data, opts.ScatterData{Value: []interface{}{r.LonCentroid, r.LatCentroid, r.Density}})
	}

	maxDensity := s.Max
	if maxDensity == 0 {
		maxDensity = 1
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Vessel Density Map", Theme: "dark", Width: "1200px", Height: "800px"}),
		charts.WithTitleOpts(opts.Title{Title: "AIS Vessel Density", Subtitle: fmt.Sprintf("cells=%d density=[%.4f, %.4f]", s.Cells, s.Min, s.Max)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Longitude", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Latitude", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(s.Min),
			Max:        float32(maxDensity),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}},
		}),
	)

	scatter.AddSeries("density", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}))

	if err := scatter.Render(w); err != nil {
		return fmt.Errorf("render density map: %w", err)
	}
	return nil
}

// Command density-map renders a quick visualisation of a density export
// without needing GDAL. Paths are fixed: it reads the sample density CSV and
// writes a PNG next to it, plus an interactive HTML version.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/banshee-data/density.report/internal/density"
	"github.com/banshee-data/density.report/internal/render"
)

const (
	densityFile = "data/samples/03_density/density_time_at_cells_1000_All.csv"
	pngFile     = "data/samples/03_density/density_map.png"
	htmlFile    = "data/samples/03_density/density_map.html"
)

func main() {
	table, err := density.ReadTable(densityFile)
	if err != nil {
		log.Fatalf("failed to load density table: %v", err)
	}

	// One point per cell: keep the max density per gridID.
	cells := density.DedupeMax(table.Records)
	stats := density.Stats(cells)

	fmt.Printf("Loaded %d unique grid cells\n", stats.Cells)
	fmt.Printf("Density range: %.4f to %.4f hours\n", stats.Min, stats.Max)

	if err := render.SaveScatterPNG(pngFile, cells, render.DefaultScatterOptions()); err != nil {
		log.Fatalf("failed to render density map: %v", err)
	}
	fmt.Printf("Saved visualization to %s\n", pngFile)

	f, err := os.Create(htmlFile)
	if err != nil {
		log.Fatalf("failed to create %s: %v", htmlFile, err)
	}
	defer f.Close()

	if err := render.RenderHTML(f, cells); err != nil {
		log.Fatalf("failed to render interactive map: %v", err)
	}
	fmt.Printf("Saved interactive map to %s\n", htmlFile)
}

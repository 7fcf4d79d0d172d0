package anomaly

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// OutputColumns is the ordered column set of the comparison CSV.
var OutputColumns = []string{
	"gridID",
	"lon_centroid",
	"lat_centroid",
	"baseline",
	"current",
	"ratio",
	"diff",
	"score",
	"is_anomaly",
}

// WriteCSV writes the comparison table with a header row, one row per gridID,
// no index column. Cells without a resolvable centroid get empty centroid
// fields.
func WriteCSV(w io.Writer, cmps []Comparison) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(OutputColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, c := range cmps {
		lon, lat := "", ""
		if c.HasCentroid {
			lon = formatFloat(c.LonCentroid)
			lat = formatFloat(c.LatCentroid)
		}
		row := []string{
			c.GridID,
			lon,
			lat,
			formatFloat(c.Baseline),
			formatFloat(c.Current),
			formatFloat(c.Ratio),
			formatFloat(c.Diff),
			formatFloat(c.Score),
			strconv.FormatBool(c.IsAnomaly),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %s: %w", c.GridID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCSVFile renders the whole table in memory first and only then creates
// the output file, so a failed computation never leaves partial output.
func WriteCSVFile(path string, cmps []Comparison) error {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, cmps); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// FormatTable renders comparisons as a fixed-width text table without an
// index column, suitable for the console summary.
func FormatTable(cmps []Comparison) string {
	rows := make([][]string, 0, len(cmps)+1)
	rows = append(rows, OutputColumns)
	for _, c := range cmps {
		lon, lat := "", ""
		if c.HasCentroid {
			lon = formatFloat(c.LonCentroid)
			lat = formatFloat(c.LatCentroid)
		}
		rows = append(rows, []string{
			c.GridID,
			lon,
			lat,
			formatFloat(c.Baseline),
			formatFloat(c.Current),
			formatFloat(c.Ratio),
			formatFloat(c.Diff),
			formatFloat(c.Score),
			strconv.FormatBool(c.IsAnomaly),
		})
	}

	widths := make([]int, len(OutputColumns))
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var b strings.Builder
	for _, row := range rows {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			fmt.Fprintf(&b, "%*s", widths[i], cell)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Package density loads per-grid-cell vessel density tables produced by the
// upstream density pipeline. Tables are CSVs with a header row and at minimum
// a gridID column; density and centroid columns are optional and missing ones
// are tolerated rather than treated as errors.
package density

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Column names expected in upstream density CSVs.
const (
	ColGridID      = "gridID"
	ColDensity     = "density"
	ColLonCentroid = "lon_centroid"
	ColLatCentroid = "lat_centroid"
)

// Record is one grid cell's density observation. Centroid coordinates are
// carried through for output and plotting only; nothing here computes on them.
type Record struct {
	GridID      string
	Density     float64
	LonCentroid float64
	LatCentroid float64
}

// Table holds the records of one density CSV along with which optional
// columns the source actually carried. Downstream centroid resolution needs
// to distinguish "no centroid columns at all" from "cell missing a row".
type Table struct {
	Records      []Record
	HasDensity   bool
	HasCentroids bool
}

// ReadTable parses a density CSV. Only the expected columns present in the
// header are ingested; extra columns are ignored. It is an error for the file
// to be missing, unparseable, or to lack a gridID column.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open density table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows surface as parse errors below instead

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	gridIdx, ok := idx[ColGridID]
	if !ok {
		return nil, fmt.Errorf("%s: missing required column %q", path, ColGridID)
	}
	densIdx, hasDensity := idx[ColDensity]
	lonIdx, hasLon := idx[ColLonCentroid]
	latIdx, hasLat := idx[ColLatCentroid]
	hasCentroids := hasLon && hasLat

	t := &Table{
		HasDensity:   hasDensity,
		HasCentroids: hasCentroids,
	}

	line := 1
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		line++

		if gridIdx >= len(row) {
			return nil, fmt.Errorf("%s line %d: row too short for column %q", path, line, ColGridID)
		}

		rec := Record{GridID: row[gridIdx]}
		if hasDensity {
			rec.Density, err = parseField(row, densIdx, path, line, ColDensity)
			if err != nil {
				return nil, err
			}
		}
		if hasCentroids {
			rec.LonCentroid, err = parseField(row, lonIdx, path, line, ColLonCentroid)
			if err != nil {
				return nil, err
			}
			rec.LatCentroid, err = parseField(row, latIdx, path, line, ColLatCentroid)
			if err != nil {
				return nil, err
			}
		}
		t.Records = append(t.Records, rec)
	}

	return t, nil
}

func parseField(row []string, idx int, path string, line int, col string) (float64, error) {
	if idx >= len(row) {
		return 0, fmt.Errorf("%s line %d: row too short for column %q", path, line, col)
	}
	s := row[idx]
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s line %d: parse %s %q: %w", path, line, col, s, err)
	}
	return v, nil
}

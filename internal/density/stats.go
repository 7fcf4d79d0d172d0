package density

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DedupeMax collapses duplicate gridIDs, keeping the maximum density seen for
// each cell and the first-seen centroid pair. Upstream density exports can
// contain one row per time slice for the same cell; the map renderer wants
// one point per cell.
func DedupeMax(records []Record) []Record {
	byID := make(map[string]Record, len(records))
	for _, r := range records {
		prev, seen := byID[r.GridID]
		if !seen {
			byID[r.GridID] = r
			continue
		}
		if r.Density > prev.Density {
			prev.Density = r.Density
			byID[r.GridID] = prev
		}
	}

	out := make([]Record, 0, len(byID))
	for _, r := range byID {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GridID < out[j].GridID })
	return out
}

// Summary holds descriptive statistics over a set of density records.
type Summary struct {
	Cells int
	Min   float64
	Max   float64
	Mean  float64
}

// Stats computes count, min, max and mean density. Zero value on empty input.
func Stats(records []Record) Summary {
	if len(records) == 0 {
		return Summary{}
	}

	vals := make([]float64, len(records))
	for i, r := range records {
		vals[i] = r.Density
	}

	s := Summary{
		Cells: len(records),
		Min:   vals[0],
		Max:   vals[0],
		Mean:  stat.Mean(vals, nil),
	}
	for _, v := range vals[1:] {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	return s
}

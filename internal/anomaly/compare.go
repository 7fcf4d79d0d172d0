// Package anomaly compares a baseline density snapshot against a current one
// and flags grid cells whose traffic changed anomalously. A cell is flagged
// when its current density is both a large multiple of its baseline and large
// enough in absolute terms to matter.
package anomaly

import (
	"sort"

	"github.com/banshee-data/density.report/internal/density"
)

// Params are the comparator thresholds. For time_at_cells densities the
// units are hours; for vessels_count set MinCurrentDensity to 1 and tune
// RatioThresh.
type Params struct {
	// RatioThresh is the minimum current/baseline ratio to flag.
	RatioThresh float64
	// MinCurrentDensity is the minimum absolute current density to flag.
	// Guards against tiny-absolute-value cells with huge ratios.
	MinCurrentDensity float64
	// Eps is the floor applied to baseline before division.
	Eps float64
}

// DefaultParams returns the comparator defaults.
func DefaultParams() Params {
	return Params{
		RatioThresh:       5.0,
		MinCurrentDensity: 2.0,
		Eps:               1e-3,
	}
}

// Comparison is the per-cell result of a baseline/current comparison.
// Exactly one Comparison exists per gridID present in either input.
type Comparison struct {
	GridID      string
	LonCentroid float64
	LatCentroid float64
	// HasCentroid is false when neither side could supply a centroid for
	// this cell; the CSV writer emits empty fields in that case.
	HasCentroid bool

	Baseline float64
	Current  float64

	Ratio     float64 // current / max(baseline, eps)
	Diff      float64 // current - baseline
	Score     float64 // ratio * diff
	IsAnomaly bool
}

// Compare outer-joins the two tables on gridID and derives the comparison
// metrics. Cells absent from one side get a density of 0.0 on that side.
// Centroids prefer the current table when it carries centroid columns,
// falling back per-cell to baseline; when the current table has no centroid
// columns at all, baseline centroids are used unconditionally. Results are
// sorted by gridID.
func Compare(baseline, current *density.Table, p Params) []Comparison {
	type side struct {
		rec     density.Record
		present bool
	}

	ids := make([]string, 0, len(baseline.Records)+len(current.Records))
	b := make(map[string]side, len(baseline.Records))
	c := make(map[string]side, len(current.Records))

	for _, r := range baseline.Records {
		if _, dup := b[r.GridID]; !dup {
			ids = append(ids, r.GridID)
		}
		b[r.GridID] = side{rec: r, present: true}
	}
	for _, r := range current.Records {
		if _, inB := b[r.GridID]; !inB {
			if _, dup := c[r.GridID]; !dup {
				ids = append(ids, r.GridID)
			}
		}
		c[r.GridID] = side{rec: r, present: true}
	}
	sort.Strings(ids)

	out := make([]Comparison, 0, len(ids))
	for _, id := range ids {
		bs, cs := b[id], c[id]

		cmp := Comparison{GridID: id}
		if bs.present {
			cmp.Baseline = bs.rec.Density
		}
		if cs.present {
			cmp.Current = cs.rec.Density
		}

		switch {
		case current.HasCentroids && cs.present:
			cmp.LonCentroid = cs.rec.LonCentroid
			cmp.LatCentroid = cs.rec.LatCentroid
			cmp.HasCentroid = true
		case current.HasCentroids && baseline.HasCentroids && bs.present:
			// Cell only in baseline; fall back to its centroid.
			cmp.LonCentroid = bs.rec.LonCentroid
			cmp.LatCentroid = bs.rec.LatCentroid
			cmp.HasCentroid = true
		case !current.HasCentroids && baseline.HasCentroids && bs.present:
			cmp.LonCentroid = bs.rec.LonCentroid
			cmp.LatCentroid = bs.rec.LatCentroid
			cmp.HasCentroid = true
		}

		floored := cmp.Baseline
		if floored < p.Eps {
			floored = p.Eps
		}
		cmp.Ratio = cmp.Current / floored
		cmp.Diff = cmp.Current - cmp.Baseline
		cmp.Score = cmp.Ratio * cmp.Diff
		cmp.IsAnomaly = cmp.Ratio >= p.RatioThresh && cmp.Current >= p.MinCurrentDensity

		out = append(out, cmp)
	}

	return out
}

// CountAnomalies returns the number of flagged cells.
func CountAnomalies(cmps []Comparison) int {
	n := 0
	for _, c := range cmps {
		if c.IsAnomaly {
			n++
		}
	}
	return n
}

// TopByScore returns the n comparisons with the highest score, descending.
// The input is not modified. Length is min(n, len(cmps)).
func TopByScore(cmps []Comparison, n int) []Comparison {
	sorted := make([]Comparison, len(cmps))
	copy(sorted, cmps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Anomalies returns only the flagged comparisons, preserving order.
func Anomalies(cmps []Comparison) []Comparison {
	var out []Comparison
	for _, c := range cmps {
		if c.IsAnomaly {
			out = append(out, c)
		}
	}
	return out
}

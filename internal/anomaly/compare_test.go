package anomaly

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/density.report/internal/density"
)

func table(hasCentroids bool, recs ...density.Record) *density.Table {
	return &density.Table{
		Records:      recs,
		HasDensity:   true,
		HasCentroids: hasCentroids,
	}
}

func findCell(t *testing.T, cmps []Comparison, gridID string) Comparison {
	t.Helper()
	for _, c := range cmps {
		if c.GridID == gridID {
			return c
		}
	}
	t.Fatalf("gridID %s missing from comparisons", gridID)
	return Comparison{}
}

// A cell that grows 10x from a non-trivial baseline is an anomaly; a cell
// that appears out of nowhere but stays tiny in absolute terms is not.
func TestCompareWorkedExample(t *testing.T) {
	baseline := table(true, density.Record{GridID: "A1", Density: 1.0, LonCentroid: 10, LatCentroid: 20})
	current := table(true,
		density.Record{GridID: "A1", Density: 10.0, LonCentroid: 10, LatCentroid: 20},
		density.Record{GridID: "B2", Density: 1.5, LonCentroid: 11, LatCentroid: 21},
	)

	cmps := Compare(baseline, current, DefaultParams())
	require.Len(t, cmps, 2)

	a1 := findCell(t, cmps, "A1")
	assert.Equal(t, 10.0, a1.Ratio)
	assert.Equal(t, 9.0, a1.Diff)
	assert.Equal(t, 90.0, a1.Score)
	assert.True(t, a1.IsAnomaly)

	b2 := findCell(t, cmps, "B2")
	assert.Equal(t, 0.0, b2.Baseline)
	assert.Equal(t, 1500.0, b2.Ratio) // 1.5 / 0.001
	assert.Equal(t, 1.5, b2.Diff)
	assert.Equal(t, 2250.0, b2.Score)
	assert.False(t, b2.IsAnomaly, "current below min density must not flag")
}

func TestCompareUnionCardinality(t *testing.T) {
	baseline := table(true,
		density.Record{GridID: "A1", Density: 1},
		density.Record{GridID: "B2", Density: 1},
	)
	current := table(true,
		density.Record{GridID: "B2", Density: 1},
		density.Record{GridID: "C3", Density: 1},
	)

	cmps := Compare(baseline, current, DefaultParams())
	require.Len(t, cmps, 3, "one row per distinct gridID across both inputs")

	ids := make([]string, len(cmps))
	for i, c := range cmps {
		ids[i] = c.GridID
	}
	assert.Equal(t, []string{"A1", "B2", "C3"}, ids, "output sorted by gridID")
}

func TestCompareMissingSideFilledWithZero(t *testing.T) {
	baseline := table(true, density.Record{GridID: "OLD", Density: 4.0, LonCentroid: 1, LatCentroid: 2})
	current := table(true, density.Record{GridID: "NEW", Density: 3.0, LonCentroid: 5, LatCentroid: 6})

	cmps := Compare(baseline, current, DefaultParams())

	old := findCell(t, cmps, "OLD")
	assert.Equal(t, 4.0, old.Baseline)
	assert.Equal(t, 0.0, old.Current)
	assert.Equal(t, -4.0, old.Diff)
	assert.True(t, old.Score < 0, "vanished cell scores negative")
	assert.False(t, old.IsAnomaly)
	// Centroid falls back to the baseline side.
	assert.True(t, old.HasCentroid)
	assert.Equal(t, 1.0, old.LonCentroid)
	assert.Equal(t, 2.0, old.LatCentroid)

	niu := findCell(t, cmps, "NEW")
	assert.Equal(t, 0.0, niu.Baseline)
	assert.Equal(t, 3.0, niu.Current)
	assert.True(t, niu.HasCentroid)
	assert.Equal(t, 5.0, niu.LonCentroid)
}

func TestComparePrefersCurrentCentroid(t *testing.T) {
	baseline := table(true, density.Record{GridID: "A1", Density: 1, LonCentroid: 100, LatCentroid: 200})
	current := table(true, density.Record{GridID: "A1", Density: 1, LonCentroid: 101, LatCentroid: 201})

	cmps := Compare(baseline, current, DefaultParams())
	a1 := findCell(t, cmps, "A1")
	assert.Equal(t, 101.0, a1.LonCentroid)
	assert.Equal(t, 201.0, a1.LatCentroid)
}

func TestCompareCurrentWithoutCentroidColumns(t *testing.T) {
	// Current table carries no centroid columns: baseline's are used
	// unconditionally, and current-only cells end up with none.
	baseline := table(true, density.Record{GridID: "A1", Density: 1, LonCentroid: 100, LatCentroid: 200})
	current := table(false,
		density.Record{GridID: "A1", Density: 5},
		density.Record{GridID: "B2", Density: 5},
	)

	cmps := Compare(baseline, current, DefaultParams())

	a1 := findCell(t, cmps, "A1")
	assert.True(t, a1.HasCentroid)
	assert.Equal(t, 100.0, a1.LonCentroid)

	b2 := findCell(t, cmps, "B2")
	assert.False(t, b2.HasCentroid)
}

func TestCompareNoCentroidsAnywhere(t *testing.T) {
	baseline := table(false, density.Record{GridID: "A1", Density: 1})
	current := table(false, density.Record{GridID: "A1", Density: 2})

	cmps := Compare(baseline, current, DefaultParams())
	assert.False(t, findCell(t, cmps, "A1").HasCentroid)
}

func TestCompareEpsFloor(t *testing.T) {
	p := DefaultParams()

	baseline := table(false,
		density.Record{GridID: "ZERO", Density: 0},
		density.Record{GridID: "TINY", Density: 0.0005},
		density.Record{GridID: "BIG", Density: 2.0},
	)
	current := table(false,
		density.Record{GridID: "ZERO", Density: 1},
		density.Record{GridID: "TINY", Density: 1},
		density.Record{GridID: "BIG", Density: 1},
	)

	cmps := Compare(baseline, current, p)

	// baseline 0 -> divide by eps exactly
	assert.Equal(t, 1/0.001, findCell(t, cmps, "ZERO").Ratio)
	// baseline below eps is floored to eps
	assert.Equal(t, 1/0.001, findCell(t, cmps, "TINY").Ratio)
	// baseline above eps divides normally
	assert.InDelta(t, 0.5, findCell(t, cmps, "BIG").Ratio, 1e-12)
}

func TestCompareThresholdBoundaries(t *testing.T) {
	p := Params{RatioThresh: 5.0, MinCurrentDensity: 2.0, Eps: 1e-3}

	tests := []struct {
		name     string
		baseline float64
		current  float64
		want     bool
	}{
		{"both thresholds met exactly", 0.4, 2.0, true}, // ratio exactly 5.0
		{"ratio just below", 0.41, 2.0, false},
		{"current just below", 0.2, 1.999, false},
		{"both comfortably above", 0.1, 3.0, true},
		{"ratio high current low", 0.001, 1.0, false},
		{"current high ratio low", 10.0, 20.0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			baseline := table(false, density.Record{GridID: "X", Density: tc.baseline})
			current := table(false, density.Record{GridID: "X", Density: tc.current})
			got := findCell(t, Compare(baseline, current, p), "X").IsAnomaly
			if got != tc.want {
				t.Errorf("is_anomaly = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCompareDuplicateInputRows(t *testing.T) {
	// Duplicate gridIDs in an input still yield exactly one output row.
	baseline := table(false,
		density.Record{GridID: "A1", Density: 1},
		density.Record{GridID: "A1", Density: 2},
	)
	current := table(false, density.Record{GridID: "A1", Density: 3})

	cmps := Compare(baseline, current, DefaultParams())
	require.Len(t, cmps, 1)
	// Last row wins, matching a keyed overwrite.
	assert.Equal(t, 2.0, cmps[0].Baseline)
}

func TestTopByScore(t *testing.T) {
	var cmps []Comparison
	for i, score := range []float64{5, 90, -3, 42, 7} {
		cmps = append(cmps, Comparison{GridID: string(rune('A' + i)), Score: score})
	}

	top := TopByScore(cmps, 3)
	require.Len(t, top, 3)
	assert.Equal(t, []float64{90, 42, 7}, []float64{top[0].Score, top[1].Score, top[2].Score})

	// n larger than the row count returns all rows, still sorted.
	all := TopByScore(cmps, 10)
	require.Len(t, all, len(cmps))
	for i := 1; i < len(all); i++ {
		assert.GreaterOrEqual(t, all[i-1].Score, all[i].Score)
	}

	// Input order must be untouched.
	assert.Equal(t, 5.0, cmps[0].Score)
}

func TestCountAnomaliesAndFilter(t *testing.T) {
	cmps := []Comparison{
		{GridID: "A", IsAnomaly: true},
		{GridID: "B"},
		{GridID: "C", IsAnomaly: true},
	}
	assert.Equal(t, 2, CountAnomalies(cmps))

	flagged := Anomalies(cmps)
	require.Len(t, flagged, 2)
	assert.Equal(t, "A", flagged[0].GridID)
	assert.Equal(t, "C", flagged[1].GridID)
}

func TestCompareNoNaNs(t *testing.T) {
	baseline := table(false, density.Record{GridID: "A1", Density: 0})
	current := table(false, density.Record{GridID: "A1", Density: 0})

	c := findCell(t, Compare(baseline, current, DefaultParams()), "A1")
	for name, v := range map[string]float64{"ratio": c.Ratio, "diff": c.Diff, "score": c.Score} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s = %v, want finite", name, v)
		}
	}
}

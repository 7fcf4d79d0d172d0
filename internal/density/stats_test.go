package density

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDedupeMaxKeepsMaxDensity(t *testing.T) {
	in := []Record{
		{GridID: "A1", Density: 1.0, LonCentroid: 10, LatCentroid: 20},
		{GridID: "A1", Density: 3.5, LonCentroid: 99, LatCentroid: 99},
		{GridID: "B2", Density: 0.5, LonCentroid: 11, LatCentroid: 21},
	}

	got := DedupeMax(in)

	// Max density wins but the first-seen centroid pair is kept.
	want := []Record{
		{GridID: "A1", Density: 3.5, LonCentroid: 10, LatCentroid: 20},
		{GridID: "B2", Density: 0.5, LonCentroid: 11, LatCentroid: 21},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DedupeMax mismatch (-want +got):\n%s", diff)
	}
}

func TestDedupeMaxSortedOutput(t *testing.T) {
	in := []Record{
		{GridID: "C3", Density: 1},
		{GridID: "A1", Density: 1},
		{GridID: "B2", Density: 1},
	}

	got := DedupeMax(in)
	for i := 1; i < len(got); i++ {
		if got[i-1].GridID > got[i].GridID {
			t.Fatalf("output not sorted: %s before %s", got[i-1].GridID, got[i].GridID)
		}
	}
}

func TestStats(t *testing.T) {
	records := []Record{
		{GridID: "A1", Density: 2.0},
		{GridID: "B2", Density: 6.0},
		{GridID: "C3", Density: 1.0},
	}

	s := Stats(records)
	if s.Cells != 3 {
		t.Errorf("Cells = %d, want 3", s.Cells)
	}
	if s.Min != 1.0 {
		t.Errorf("Min = %v, want 1.0", s.Min)
	}
	if s.Max != 6.0 {
		t.Errorf("Max = %v, want 6.0", s.Max)
	}
	if math.Abs(s.Mean-3.0) > 1e-12 {
		t.Errorf("Mean = %v, want 3.0", s.Mean)
	}
}

func TestStatsEmpty(t *testing.T) {
	s := Stats(nil)
	if s != (Summary{}) {
		t.Errorf("Stats(nil) = %+v, want zero value", s)
	}
}

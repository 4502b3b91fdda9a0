package testutil

import (
	"fmt"
	"math"
	"testing"
)

// MaxAbsDiff returns the largest absolute difference between a and b and
// the index where it occurs (-1 for empty slices). NaN on either side counts
// as an infinite difference.
func MaxAbsDiff(a, b []float64) (float64, int, error) {
	if len(a) != len(b) {
		return 0, -1, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	worst, at := 0.0, -1
	for i := range a {
		d := math.Abs(a[i] - b[i])
		if math.IsNaN(d) {
			return math.Inf(1), i, nil
		}
		if at < 0 || d > worst {
			worst, at = d, i
		}
	}
	return worst, at, nil
}

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	diff, at, err := MaxAbsDiff(got, want)
	if err != nil {
		t.Fatal(err)
	}
	if diff > eps {
		t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", at, got[at], want[at], diff, eps)
	}
}

// RequireFinite fails t if any sample is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}

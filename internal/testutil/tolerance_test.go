package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		diff float64
		at   int
	}{
		{"empty", nil, nil, 0, -1},
		{"identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0, 0},
		{"largest wins", []float64{1, 2, 3}, []float64{1.1, 2, 2.5}, 0.5, 2},
		{"nan", []float64{0, math.NaN()}, []float64{0, 0}, math.Inf(1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff, at, err := MaxAbsDiff(tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if math.Abs(diff-tt.diff) > 1e-15 && diff != tt.diff {
				t.Errorf("diff = %v, want %v", diff, tt.diff)
			}
			if at != tt.at {
				t.Errorf("index = %d, want %d", at, tt.at)
			}
		})
	}

	if _, _, err := MaxAbsDiff([]float64{1}, []float64{1, 2}); err == nil {
		t.Fatal("expected error for length mismatch")
	}
}

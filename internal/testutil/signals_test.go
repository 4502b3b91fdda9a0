package testutil

import (
	"math"
	"testing"
)

func TestExponentialDecay(t *testing.T) {
	d := ExponentialDecay(1000, 0.5, 1)
	if len(d) != 1000 {
		t.Fatalf("len = %d, want 1000", len(d))
	}
	if d[0] != 1 {
		t.Fatalf("d[0] = %v, want 1", d[0])
	}
	// -60 dB after rt60.
	if math.Abs(d[500]-1e-3) > 1e-12 {
		t.Fatalf("d[500] = %v, want 1e-3", d[500])
	}
	for i := 1; i < len(d); i++ {
		if d[i] >= d[i-1] {
			t.Fatalf("not decreasing at %d", i)
		}
	}
}

func TestDeterministicNoise(t *testing.T) {
	a := DeterministicNoise(42, 1.0, 64)
	b := DeterministicNoise(42, 1.0, 64)
	if len(a) != 64 {
		t.Fatalf("len = %d, want 64", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("noise not deterministic at index %d", i)
		}
		if math.Abs(a[i]) > 1 {
			t.Fatalf("a[%d] = %v out of range", i, a[i])
		}
	}
}

func TestImpulse(t *testing.T) {
	imp := Impulse(8, 3)
	for i, v := range imp {
		want := 0.0
		if i == 3 {
			want = 1
		}
		if v != want {
			t.Fatalf("imp[%d] = %v, want %v", i, v, want)
		}
	}

	for i, v := range Impulse(4, 10) {
		if v != 0 {
			t.Fatalf("imp[%d] = %v, want all zeros for out-of-bounds pos", i, v)
		}
	}
}

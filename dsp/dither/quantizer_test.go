package dither

import (
	"math"
	"testing"
)

func TestNewQuantizerValidation(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"bit depth too small", []Option{WithBitDepth(1)}},
		{"bit depth too large", []Option{WithBitDepth(33)}},
		{"bad dither type", []Option{WithDitherType(DitherType(99))}},
		{"negative amplitude", []Option{WithDitherAmplitude(-1)}},
		{"NaN amplitude", []Option{WithDitherAmplitude(math.NaN())}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewQuantizer(tt.opts...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewQuantizerDefaults(t *testing.T) {
	quant, err := NewQuantizer(nil)
	if err != nil {
		t.Fatal(err)
	}

	if quant.BitDepth() != 16 {
		t.Errorf("BitDepth() = %d, want 16", quant.BitDepth())
	}
	if quant.DitherType() != DitherNone {
		t.Errorf("DitherType() = %v, want None", quant.DitherType())
	}
	if quant.DitherAmplitude() != 1.0 {
		t.Errorf("DitherAmplitude() = %v, want 1.0", quant.DitherAmplitude())
	}
	if !quant.Limit() {
		t.Error("Limit() should be true by default")
	}
	if quant.FullScale() != 32767 {
		t.Errorf("FullScale() = %d, want 32767", quant.FullScale())
	}
}

func TestQuantizerRounding(t *testing.T) {
	tests := []struct {
		bits  int
		input float64
		want  int
	}{
		{16, 0, 0},
		{16, 1, 32767},
		{16, -1, -32767},
		{16, 0.5, 16384}, // 16383.5 rounds away from zero
		{16, 1.5, 32767},
		{16, -1.5, -32768},
		{24, 1, 8388607},
		{24, -0.25, -2097152},
		{8, 0.1, 13},
	}
	for _, tt := range tests {
		quant, err := NewQuantizer(WithBitDepth(tt.bits))
		if err != nil {
			t.Fatal(err)
		}
		if got := quant.ProcessInteger(tt.input); got != tt.want {
			t.Errorf("%d-bit ProcessInteger(%v) = %d, want %d", tt.bits, tt.input, got, tt.want)
		}
	}
}

func TestQuantizerNoLimit(t *testing.T) {
	quant, err := NewQuantizer(WithBitDepth(8), WithLimit(false))
	if err != nil {
		t.Fatal(err)
	}
	if got := quant.ProcessInteger(2); got != 254 {
		t.Errorf("ProcessInteger(2) = %d, want 254", got)
	}
}

func TestQuantizerDitherBounded(t *testing.T) {
	for _, dt := range []DitherType{DitherRectangular, DitherTriangular} {
		quant, err := NewQuantizer(WithDitherType(dt), WithSeed(1, 0))
		if err != nil {
			t.Fatal(err)
		}

		var sum float64
		const n = 20000
		for range n {
			got := quant.ProcessInteger(0.25)
			if d := got - 8192; d < -1 || d > 1 {
				t.Fatalf("%v: ProcessInteger(0.25) = %d, more than 1 LSB from 8192", dt, got)
			}
			sum += float64(got)
		}
		// Dither is zero mean: the average stays on the undithered value.
		if mean := sum / n; math.Abs(mean-0.25*32767) > 0.05 {
			t.Errorf("%v: mean = %.3f, want %.3f", dt, mean, 0.25*32767)
		}
	}
}

func TestQuantizerDeterministic(t *testing.T) {
	run := func(seed uint64) []int {
		quant, err := NewQuantizer(WithDitherType(DitherTriangular), WithSeed(seed, 3))
		if err != nil {
			t.Fatal(err)
		}
		src := make([]float64, 256)
		for i := range src {
			src[i] = math.Sin(float64(i) / 7)
		}
		dst := make([]int, len(src))
		if err := quant.QuantizeTo(dst, src); err != nil {
			t.Fatal(err)
		}
		return dst
	}

	a, b, c := run(42), run(42), run(43)
	differs := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d: %d vs %d with equal seeds", i, a[i], b[i])
		}
		if a[i] != c[i] {
			differs = true
		}
	}
	if !differs {
		t.Error("different seeds produced identical dither")
	}
}

func TestQuantizerSilencePreservation(t *testing.T) {
	quant, err := NewQuantizer()
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]float64, 100)
	quant.ProcessInPlace(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("sample %d = %v, want 0", i, v)
		}
	}
}

func TestQuantizeToShortDestination(t *testing.T) {
	quant, err := NewQuantizer()
	if err != nil {
		t.Fatal(err)
	}
	if err := quant.QuantizeTo(make([]int, 1), []float64{0, 0}); err == nil {
		t.Error("expected error for short destination")
	}
}

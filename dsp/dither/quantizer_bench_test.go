package dither

import (
	"testing"

	"github.com/cwbudde/algo-storir/internal/testutil"
)

func BenchmarkQuantizerProcessInteger(b *testing.B) {
	quant, _ := NewQuantizer(WithDitherType(DitherTriangular), WithSeed(42, 0))

	b.ReportAllocs()

	for b.Loop() {
		quant.ProcessInteger(0.3)
	}
}

func BenchmarkQuantizerQuantizeTo(b *testing.B) {
	quant, _ := NewQuantizer(WithDitherType(DitherTriangular), WithSeed(42, 0))

	src := testutil.DeterministicNoise(7, 1, 1024)
	dst := make([]int, len(src))

	b.ReportAllocs()

	for b.Loop() {
		_ = quant.QuantizeTo(dst, src)
	}
}

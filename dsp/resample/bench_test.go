package resample

import (
	"testing"

	"github.com/cwbudde/algo-storir/internal/testutil"
)

func BenchmarkConvert48To44(b *testing.B) {
	c, err := New(48000, 44100)
	if err != nil {
		b.Fatal(err)
	}
	x := testutil.ExponentialDecay(48000, 0.5, 1)

	b.ReportAllocs()
	for b.Loop() {
		c.Convert(x)
	}
}

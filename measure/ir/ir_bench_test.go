package ir

import (
	"testing"

	"github.com/cwbudde/algo-storir/internal/testutil"
)

func BenchmarkSchroederIntegral(b *testing.B) {
	impulseResponse := testutil.ExponentialDecay(48000, 1.0, 3.0)
	a := NewAnalyzer(48000)

	b.ResetTimer()

	for b.Loop() {
		if _, err := a.SchroederIntegral(impulseResponse); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalyze(b *testing.B) {
	impulseResponse := testutil.ExponentialDecay(48000, 1.0, 3.0)
	a := NewAnalyzer(48000)

	b.ResetTimer()

	for b.Loop() {
		if _, err := a.Analyze(impulseResponse); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWindowRMS(b *testing.B) {
	impulseResponse := testutil.ExponentialDecay(48000, 1.0, 3.0)
	a := NewAnalyzer(48000)

	b.ResetTimer()

	for b.Loop() {
		if _, err := a.WindowRMS(impulseResponse, 10); err != nil {
			b.Fatal(err)
		}
	}
}

// Package ir analyzes impulse responses with the ISO 3382 room acoustic
// parameters derived from the Schroeder backward integration:
//
//   - EDT: early decay time (0 to -10 dB, extrapolated)
//   - T20, T30, RT60: reverberation time
//   - C50, C80: clarity
//   - D50, D80: definition
//   - DRR: direct-to-reverberant ratio
//   - Center time
//
// WindowRMS reports the short-time level of a response, which is how
// synthesized responses are checked for a steadily decaying envelope.
//
// # Usage
//
//	analyzer := ir.NewAnalyzer(44100)
//	metrics, err := analyzer.Analyze(samples)
//	fmt.Printf("RT60 = %.2f s, EDT = %.2f s\n", metrics.RT60, metrics.EDT)
package ir

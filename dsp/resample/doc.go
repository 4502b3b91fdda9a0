// Package resample converts impulse responses between sample rates with a
// polyphase Kaiser-windowed sinc filter. Integer rates give an exact
// rational ratio, and the filter delay is removed so the direct sound of a
// response keeps its position.
//
//	mode            taps/phase
//	QualityFast     16
//	QualityBalanced 32
//	QualityBest     64
package resample

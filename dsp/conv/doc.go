// Package conv convolves signals with impulse responses.
//
// Two strategies are provided:
//
//   - Direct convolution: O(N*M) time-domain convolution for short kernels
//   - Overlap-add (OLA): FFT block convolution for long signals and long
//     kernels such as room impulse responses
//
// # Usage
//
//	wet, err := conv.Convolve(dry, ir)        // picks the algorithm
//	out, err := conv.Apply(dry, ir, 0.3)      // 30% wet reverb mix
//
// For repeated convolution with the same kernel, create a reusable convolver
// so the kernel spectrum is computed once:
//
//	c, err := conv.NewOverlapAdd(ir, 0)
//	wet, err := c.Process(dry)
package conv

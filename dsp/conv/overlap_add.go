package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// minBlockSize bounds the automatic block size from below.
const minBlockSize = 256

// OverlapAdd implements FFT-based convolution using the overlap-add method:
// the input is cut into blocks, each block is convolved with the kernel by
// spectral multiplication, and the overlapping block results are summed.
//
// An OverlapAdd owns scratch buffers and is not safe for concurrent use.
type OverlapAdd struct {
	kernelFFT []complex128
	kernelLen int
	blockSize int
	fftSize   int // next power of 2 >= blockSize+kernelLen-1

	plan *algofft.Plan[complex128]

	scratch []complex128
}

// NewOverlapAdd creates an overlap-add convolver for kernel.
// If blockSize is 0, a size is chosen from the kernel length.
func NewOverlapAdd(kernel []float64, blockSize int) (*OverlapAdd, error) {
	if len(kernel) == 0 {
		return nil, ErrEmptyKernel
	}

	if blockSize <= 0 {
		blockSize = max(minBlockSize, nextPowerOf2(len(kernel)))
	}
	fftSize := nextPowerOf2(blockSize + len(kernel) - 1)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}

	oa := &OverlapAdd{
		kernelFFT: make([]complex128, fftSize),
		kernelLen: len(kernel),
		blockSize: blockSize,
		fftSize:   fftSize,
		plan:      plan,
		scratch:   make([]complex128, fftSize),
	}

	for i, v := range kernel {
		oa.scratch[i] = complex(v, 0)
	}
	if err := plan.Forward(oa.kernelFFT, oa.scratch); err != nil {
		return nil, fmt.Errorf("conv: failed to compute kernel FFT: %w", err)
	}

	return oa, nil
}

// BlockSize returns the input block size.
func (oa *OverlapAdd) BlockSize() int { return oa.blockSize }

// FFTSize returns the FFT size used internally.
func (oa *OverlapAdd) FFTSize() int { return oa.fftSize }

// KernelLen returns the kernel length.
func (oa *OverlapAdd) KernelLen() int { return oa.kernelLen }

// Process returns the full linear convolution of input with the kernel.
func (oa *OverlapAdd) Process(input []float64) ([]float64, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([]float64, len(input)+oa.kernelLen-1)
	if err := oa.process(out, input); err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessTo writes the convolution of input into output, which must have
// length len(input) + KernelLen() - 1.
func (oa *OverlapAdd) ProcessTo(output, input []float64) error {
	if len(input) == 0 {
		return ErrEmptyInput
	}
	if want := len(input) + oa.kernelLen - 1; len(output) != want {
		return fmt.Errorf("%w: expected %d, got %d", ErrLengthMismatch, want, len(output))
	}

	clear(output)
	return oa.process(output, input)
}

func (oa *OverlapAdd) process(out, input []float64) error {
	for start := 0; start < len(input); start += oa.blockSize {
		block := input[start:min(start+oa.blockSize, len(input))]

		clear(oa.scratch)
		for i, v := range block {
			oa.scratch[i] = complex(v, 0)
		}

		if err := oa.plan.Forward(oa.scratch, oa.scratch); err != nil {
			return fmt.Errorf("conv: forward FFT failed: %w", err)
		}
		for i, k := range oa.kernelFFT {
			oa.scratch[i] *= k
		}
		if err := oa.plan.Inverse(oa.scratch, oa.scratch); err != nil {
			return fmt.Errorf("conv: inverse FFT failed: %w", err)
		}

		n := min(len(block)+oa.kernelLen-1, len(out)-start)
		for i := range n {
			out[start+i] += real(oa.scratch[i])
		}
	}
	return nil
}

// OverlapAddConvolve performs one-shot overlap-add convolution.
func OverlapAddConvolve(signal, kernel []float64) ([]float64, error) {
	oa, err := NewOverlapAdd(kernel, 0)
	if err != nil {
		return nil, err
	}
	return oa.Process(signal)
}

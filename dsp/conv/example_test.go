package conv_test

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-storir/dsp/conv"
)

func ExampleDirect() {
	signal := []float64{1, 2, 3, 4, 5, 4, 3, 2, 1}
	kernel := []float64{0.25, 0.5, 0.25}

	result, _ := conv.Direct(signal, kernel)

	fmt.Printf("Output length: %d\n", len(result))
	fmt.Printf("First few values: %.2f, %.2f, %.2f\n", result[0], result[1], result[2])

	// Output:
	// Output length: 11
	// First few values: 0.25, 1.00, 2.00
}

func ExampleApply() {
	// A click through a short decaying response, 50% wet.
	dry := []float64{1, 0, 0, 0}
	ir := make([]float64, 4)
	for i := range ir {
		ir[i] = math.Pow(0.5, float64(i))
	}

	out, _ := conv.Apply(dry, ir, 0.5)
	fmt.Println(out)

	// Output:
	// [1 0.25 0.125 0.0625 0 0 0]
}

func ExampleOverlapAdd() {
	ir := make([]float64, 64)
	for i := range ir {
		ir[i] = math.Exp(-float64(i) / 10)
	}

	convolver, _ := conv.NewOverlapAdd(ir, 256)
	fmt.Printf("Block size: %d\n", convolver.BlockSize())
	fmt.Printf("FFT size: %d\n", convolver.FFTSize())

	result, _ := convolver.Process(make([]float64, 500))
	fmt.Printf("Result length: %d\n", len(result))

	// Output:
	// Block size: 256
	// FFT size: 512
	// Result length: 563
}

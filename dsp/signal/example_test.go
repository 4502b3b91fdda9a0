package signal_test

import (
	"fmt"

	"github.com/cwbudde/algo-storir/dsp/signal"
)

func ExampleNormalize() {
	data := []float64{0.1, -0.4, 0.2}

	gain, err := signal.Normalize(data, 1)
	if err != nil {
		panic(err)
	}

	fmt.Printf("gain=%.1f data=%v\n", gain, data)

	// Output:
	// gain=2.5 data=[0.25 -1 0.5]
}

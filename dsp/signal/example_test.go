package signal_test

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-magsonify/dsp/core"
	"github.com/cwbudde/algo-magsonify/dsp/signal"
)

func ExampleGenerator_Tones() {
	// A 20 s wave sampled at the 5 s cadence: one quarter cycle per sample.
	g := signal.NewGenerator(core.WithSamplePeriod(5 * time.Second))
	x, err := g.Tones(5, signal.Tone{Frequency: 0.05, Amplitude: 2})
	if err != nil {
		panic(err)
	}

	for i, v := range x {
		if math.Abs(v) < 1e-12 {
			x[i] = 0
		}
	}

	fmt.Printf("%.0f %.0f %.0f %.0f %.0f\n", x[0], x[1], x[2], x[3], x[4])

	// Output:
	// 0 2 0 -2 0
}

func ExampleSineExpectation() {
	g := signal.NewGenerator(core.WithSamplePeriod(time.Second))
	axis, err := g.Axis(time.Time{}, 4)
	if err != nil {
		panic(err)
	}

	want, err := signal.SineExpectation(axis, 2, signal.Tone{Frequency: 0.25, Amplitude: 1})
	if err != nil {
		panic(err)
	}

	fmt.Println(len(want))

	// Output:
	// 7
}

func ExampleNormalize() {
	x, err := signal.Normalize([]float64{-0.5, 0.25, 1}, 0.8)
	if err != nil {
		panic(err)
	}
	fmt.Printf("%.2f %.2f %.2f\n", x[0], x[1], x[2])

	// Output:
	// -0.40 0.20 0.80
}

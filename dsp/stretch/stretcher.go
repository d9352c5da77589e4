package stretch

import (
	"fmt"
	"math"
)

// Stretcher dilates a finite signal by factor. factor > 1 lengthens it.
type Stretcher interface {
	Stretch(input []float64, factor float64) ([]float64, error)
}

// OutputLength returns the number of samples a stretch of n samples by
// factor produces.
func OutputLength(n int, factor float64) int {
	return int(math.Round(float64(n) * factor))
}

func validateRequest(input []float64, factor float64) error {
	if len(input) == 0 {
		return fmt.Errorf("%w: empty input", ErrInvalidConfig)
	}

	if !(factor > 0) || math.IsInf(factor, 0) {
		return fmt.Errorf("%w: factor must be > 0 and finite: %g", ErrInvalidConfig, factor)
	}

	if OutputLength(len(input), factor) == 0 {
		return fmt.Errorf("%w: factor %g leaves no output samples", ErrInvalidConfig, factor)
	}

	return nil
}

func fitLength(in []float64, n int) []float64 {
	if len(in) == n {
		return in
	}

	out := make([]float64, n)
	copy(out, in)

	return out
}

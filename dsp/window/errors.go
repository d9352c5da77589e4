package window

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports a window length or shape parameter out of range.
var ErrInvalidParameter = errors.New("window: invalid parameter")

var (
	errEmptyCoeffs      = errors.New("window coefficients must not be empty")
	errZeroCoherentGain = errors.New("window coherent gain is zero")
	errMismatchedLength = errors.New("samples and coefficients must have same length")
)

// UnknownNameError is returned by Parse for names it does not recognise.
type UnknownNameError struct {
	Name string
}

func (e *UnknownNameError) Error() string {
	return fmt.Sprintf("unknown window %q", e.Name)
}

// validateShape checks size and, for parametric windows, the shape value.
func validateShape(t Type, size int, alpha float64) error {
	if size <= 0 {
		return fmt.Errorf("%w: size must be > 0: %d", ErrInvalidParameter, size)
	}

	switch t {
	case TypeKaiser, TypeGauss:
		if alpha < 0 {
			return fmt.Errorf("%w: %s shape must be >= 0: %g", ErrInvalidParameter, t, alpha)
		}
	case TypeTukey:
		if alpha < 0 || alpha > 1 {
			return fmt.Errorf("%w: tukey alpha must be in [0,1]: %g", ErrInvalidParameter, alpha)
		}
	}

	return nil
}

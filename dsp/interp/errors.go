package interp

import "errors"

var (
	errNoKnots        = errors.New("interp: spline needs at least one knot")
	errLengthMismatch = errors.New("interp: x and y must have the same length")
	errUnorderedKnots = errors.New("interp: knots must be strictly increasing")
)

package interp

import (
	"fmt"
	"sort"
)

// CubicSpline is a natural cubic spline through strictly increasing knots.
//
// Outside the knot range the boundary segment's polynomial is continued.
// That extrapolation is only trustworthy very close to the range; callers
// decide how far they allow it.
type CubicSpline struct {
	x []float64
	y []float64
	m []float64 // second derivatives at the knots
}

// NewCubicSpline fits a natural cubic spline through (x[i], y[i]).
// One knot yields a constant, two knots a straight line.
func NewCubicSpline(x, y []float64) (*CubicSpline, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%w: %d vs %d", errLengthMismatch, len(x), len(y))
	}

	n := len(x)
	if n == 0 {
		return nil, errNoKnots
	}

	for i := 1; i < n; i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: index %d", errUnorderedKnots, i)
		}
	}

	s := &CubicSpline{
		x: append([]float64(nil), x...),
		y: append([]float64(nil), y...),
		m: make([]float64, n),
	}

	if n < 3 {
		return s, nil
	}

	// Thomas algorithm on the interior rows; m[0] = m[n-1] = 0.
	diag := make([]float64, n)
	rhs := make([]float64, n)

	for i := 1; i < n-1; i++ {
		hPrev := x[i] - x[i-1]
		h := x[i+1] - x[i]
		diag[i] = 2 * (hPrev + h)
		rhs[i] = 6 * ((y[i+1]-y[i])/h - (y[i]-y[i-1])/hPrev)

		if i > 1 {
			w := hPrev / diag[i-1]
			diag[i] -= w * hPrev
			rhs[i] -= w * rhs[i-1]
		}
	}

	for i := n - 2; i >= 1; i-- {
		h := x[i+1] - x[i]
		s.m[i] = (rhs[i] - h*s.m[i+1]) / diag[i]
	}

	return s, nil
}

// Domain returns the first and last knot.
func (s *CubicSpline) Domain() (lo, hi float64) {
	return s.x[0], s.x[len(s.x)-1]
}

// At evaluates the spline at v.
func (s *CubicSpline) At(v float64) float64 {
	n := len(s.x)
	if n == 1 {
		return s.y[0]
	}

	// segment i covers [x[i], x[i+1]]
	i := sort.SearchFloat64s(s.x, v) - 1
	if i < 0 {
		i = 0
	}

	if i > n-2 {
		i = n - 2
	}

	return s.segment(i, v)
}

// Eval evaluates the spline at every xs[k] into dst. Ascending xs are
// evaluated with a single forward walk over the segments.
func (s *CubicSpline) Eval(dst, xs []float64) {
	if len(xs) == 0 {
		return
	}

	n := len(s.x)
	if n == 1 {
		for k := range xs {
			dst[k] = s.y[0]
		}

		return
	}

	i := 0
	prev := xs[0]

	for k, v := range xs {
		if v < prev {
			i = 0
		}

		prev = v
		for i < n-2 && v > s.x[i+1] {
			i++
		}

		dst[k] = s.segment(i, v)
	}
}

func (s *CubicSpline) segment(i int, v float64) float64 {
	h := s.x[i+1] - s.x[i]
	t := v - s.x[i]
	m0 := s.m[i]
	m1 := s.m[i+1]
	slope := (s.y[i+1]-s.y[i])/h - h*(2*m0+m1)/6

	return s.y[i] + t*(slope+t*(m0/2+t*(m1-m0)/(6*h)))
}

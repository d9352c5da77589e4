package interp

import "math"

// Hermite4 computes cubic 4-point interpolation.
// It interpolates from x0 to x1 using neighbor points xm1 and x2.
func Hermite4(t, xm1, x0, x1, x2 float64) float64 {
	c0 := x0
	c1 := 0.5 * (x1 - xm1)
	c2 := xm1 - 2.5*x0 + 2*x1 - 0.5*x2
	c3 := 0.5*(x2-xm1) + 1.5*(x0-x1)
	return ((c3*t+c2)*t+c1)*t + c0
}

// UniformAt evaluates samples at fractional index pos using Hermite4.
// Neighbors outside the slice are extrapolated linearly from the two edge
// samples, so ramps are reproduced up to the ends. pos is clamped to
// [0, len(samples)-1]. Returns 0 for an empty slice.
func UniformAt(samples []float64, pos float64) float64 {
	n := len(samples)
	if n == 0 {
		return 0
	}
	if n == 1 || pos <= 0 {
		return samples[0]
	}
	if pos >= float64(n-1) {
		return samples[n-1]
	}

	i := int(math.Floor(pos))
	t := pos - float64(i)

	at := func(k int) float64 {
		if k < 0 {
			return 2*samples[0] - samples[1]
		}
		if k >= n {
			return 2*samples[n-1] - samples[n-2]
		}
		return samples[k]
	}

	return Hermite4(t, at(i-1), samples[i], at(i+1), at(i+2))
}

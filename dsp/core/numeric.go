package core

import "math"

// Clamp limits value to the inclusive range [lo, hi]. NaN passes through.
func Clamp(value, lo, hi float64) float64 {
	if lo > hi {
		lo, hi = hi, lo
	}

	return min(max(value, lo), hi)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// PeakAbs returns the largest finite |x| in data, or 0.
func PeakAbs(data []float64) float64 {
	peak := 0.0
	for _, v := range data {
		if IsFinite(v) {
			peak = max(peak, math.Abs(v))
		}
	}

	return peak
}

package dataset

import (
	"fmt"
	"math"
	"time"
)

// AverageOption selects the running-average window.
type AverageOption func(*averageConfig)

type averageConfig struct {
	samples    int
	window     time.Duration
	hasSamples bool
	hasWindow  bool
}

// BySamples sets the window length in samples.
func BySamples(n int) AverageOption {
	return func(c *averageConfig) {
		c.samples = n
		c.hasSamples = true
	}
}

// ByDuration sets the window as a duration, converted to samples with the
// axis' mean sampling interval.
func ByDuration(d time.Duration) AverageOption {
	return func(c *averageConfig) {
		c.window = d
		c.hasWindow = true
	}
}

// WindowSamples resolves the options against the dataset's axis.
func (d *Dataset) WindowSamples(opts ...AverageOption) (int, error) {
	var cfg averageConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	switch {
	case cfg.hasSamples && cfg.hasWindow:
		return 0, fmt.Errorf("%w: give either a sample count or a time window, not both", ErrConfiguration)
	case !cfg.hasSamples && !cfg.hasWindow:
		return 0, fmt.Errorf("%w: running average needs a sample count or a time window", ErrConfiguration)
	}

	n := cfg.samples
	if cfg.hasWindow {
		interval := d.axis.MeanInterval()
		if interval <= 0 {
			return 0, fmt.Errorf("%w: axis has no sampling interval", ErrInvalidRange)
		}

		n = int(cfg.window / interval)
	}

	if n <= 0 {
		return 0, fmt.Errorf("%w: running average window resolves to %d samples", ErrInvalidRange, n)
	}

	return n, nil
}

// RunningAverage returns a boxcar-smoothed copy. The first and last
// floor(N/2) samples of every channel are NaN because the kernel is not
// fully supported there; a non-finite sample poisons every window containing it.
func (d *Dataset) RunningAverage(opts ...AverageOption) (*Dataset, error) {
	n, err := d.WindowSamples(opts...)
	if err != nil {
		return nil, err
	}

	return d.derive(func(_ Key, s []float64) []float64 {
		return boxcar(s, n)
	}), nil
}

func boxcar(src []float64, n int) []float64 {
	out := make([]float64, len(src))
	for i := range out {
		out[i] = math.NaN()
	}

	half := n / 2
	first, last := half, len(src)-1-half

	if first > last || n > len(src) {
		return out
	}

	sum := 0.0
	bad := 0

	push := func(v float64, sign float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			if sign > 0 {
				bad++
			} else {
				bad--
			}

			return
		}

		sum += sign * v
	}

	for k := range n {
		push(src[k], 1)
	}

	inv := 1 / float64(n)

	for i := first; ; i++ {
		if bad == 0 {
			out[i] = sum * inv
		}

		if i == last {
			break
		}

		push(src[i-half], -1)
		push(src[i-half+n], 1)
	}

	return out
}

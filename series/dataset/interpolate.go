package dataset

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-magsonify/dsp/interp"
	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

const defaultGuardMargin = 1.0

// InterpolateOption configures resampling.
type InterpolateOption func(*interpolateConfig)

type interpolateConfig struct {
	guardMargin float64
	unbounded   bool
}

// WithGuardMargin sets how far, in mean source sample intervals, resampling
// may extrapolate past either end of the source axis. Targets further out are
// set to NaN. Negative values are ignored.
func WithGuardMargin(intervals float64) InterpolateOption {
	return func(c *interpolateConfig) {
		if intervals >= 0 {
			c.guardMargin = intervals
		}
	}
}

// WithUnboundedExtrapolation extrapolates every target regardless of the
// guard margin. Values far outside the source range are not reliable.
func WithUnboundedExtrapolation() InterpolateOption {
	return func(c *interpolateConfig) {
		c.unbounded = true
	}
}

// InterpolationReport counts target instants that fell outside the source axis.
type InterpolationReport struct {
	// Extrapolated counts targets outside the source range.
	Extrapolated int
	// BeyondMargin counts targets outside the guard margin. They are NaN
	// unless unbounded extrapolation was requested.
	BeyondMargin int
}

// Any reports whether any extrapolation happened.
func (r InterpolationReport) Any() bool { return r.Extrapolated > 0 }

// Interpolate resamples every channel onto target with a natural cubic spline
// through the channel's finite samples, then replaces the receiver's axis.
// The receiver is left unchanged when an error is returned.
func (d *Dataset) Interpolate(target timeaxis.Axis, opts ...InterpolateOption) (InterpolationReport, error) {
	cfg := interpolateConfig{guardMargin: defaultGuardMargin}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	var report InterpolationReport

	if d.Len() == 0 {
		return report, fmt.Errorf("%w: cannot interpolate an empty dataset", ErrInvalidRange)
	}

	src, err := d.axis.OffsetsIn(target)
	if err != nil {
		return report, fmt.Errorf("dataset: interpolate: %w", err)
	}

	dst := target.Float64s()

	lo, hi := src[0], src[len(src)-1]
	margin := 0.0
	if len(src) > 1 {
		margin = cfg.guardMargin * (hi - lo) / float64(len(src)-1)
	}

	outside := make([]bool, len(dst))
	for i, v := range dst {
		if v >= lo && v <= hi {
			continue
		}

		report.Extrapolated++

		if v < lo-margin || v > hi+margin {
			report.BeyondMargin++
			outside[i] = !cfg.unbounded
		}
	}

	resampled := make(map[Key][]float64, len(d.keys))
	for _, k := range d.keys {
		out, err := resampleChannel(src, d.data[k], dst)
		if err != nil {
			return report, fmt.Errorf("dataset: interpolate channel %s: %w", k, err)
		}

		for i, skip := range outside {
			if skip {
				out[i] = math.NaN()
			}
		}

		resampled[k] = out
	}

	d.axis = target
	d.data = resampled

	return report, nil
}

// InterpolateFactor resamples onto a uniform axis with factor times the
// current sample density.
func (d *Dataset) InterpolateFactor(factor float64, opts ...InterpolateOption) (InterpolationReport, error) {
	target, err := d.axis.Interpolate(factor)
	if err != nil {
		return InterpolationReport{}, err
	}

	return d.Interpolate(target, opts...)
}

// InterpolateLike resamples onto ref's axis.
func (d *Dataset) InterpolateLike(ref *Dataset, opts ...InterpolateOption) (InterpolationReport, error) {
	return d.Interpolate(ref.axis, opts...)
}

// resampleChannel fits a spline through the finite samples of values at x.
// A channel without finite samples resamples to NaN.
func resampleChannel(x, values, targets []float64) ([]float64, error) {
	out := make([]float64, len(targets))

	kx := make([]float64, 0, len(x))
	ky := make([]float64, 0, len(x))

	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		kx = append(kx, x[i])
		ky = append(ky, v)
	}

	if len(kx) == 0 {
		for i := range out {
			out[i] = math.NaN()
		}

		return out, nil
	}

	spline, err := interp.NewCubicSpline(kx, ky)
	if err != nil {
		return nil, err
	}

	spline.Eval(out, targets)

	return out, nil
}

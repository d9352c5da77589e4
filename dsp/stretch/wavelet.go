package stretch

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-magsonify/dsp/interp"
	"github.com/cwbudde/algo-magsonify/dsp/wavelet"
)

// WaveletOption configures a Wavelet stretcher.
type WaveletOption func(*wavelet.Config)

// WithBandOverlap sets the spacing between Morlet sub-bands in octaves. The
// default is 0.5; smaller values overlap more and cost more.
func WithBandOverlap(dj float64) WaveletOption {
	return func(c *wavelet.Config) { c.ScaleSpacing = dj }
}

// WithOctaves sets the decomposition depth in octaves. The default is 16;
// it is capped at what the input length supports.
func WithOctaves(octaves float64) WaveletOption {
	return func(c *wavelet.Config) { c.Octaves = octaves }
}

// Wavelet stretches a signal by resampling the amplitude and phase envelope
// of every Morlet sub-band independently.
//
// Each band's magnitude is read at n/factor with cubic Hermite interpolation.
// Its unwrapped phase is read the same way and multiplied by factor, which
// keeps the per-sample instantaneous frequency of the band unchanged.
type Wavelet struct {
	cfg wavelet.Config
}

// NewWavelet builds a wavelet stretcher.
func NewWavelet(opts ...WaveletOption) (*Wavelet, error) {
	cfg := wavelet.DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	return &Wavelet{cfg: cfg}, nil
}

// Config returns the scale layout.
func (w *Wavelet) Config() wavelet.Config { return w.cfg }

// Stretch returns input dilated by factor, round(len(input)*factor) samples long.
func (w *Wavelet) Stretch(input []float64, factor float64) ([]float64, error) {
	if err := validateRequest(input, factor); err != nil {
		return nil, err
	}

	tr, err := wavelet.Analyze(input,
		wavelet.WithSmallestScale(w.cfg.SmallestScale),
		wavelet.WithScaleSpacing(w.cfg.ScaleSpacing),
		wavelet.WithOctaves(w.cfg.Octaves),
	)
	if err != nil {
		if errors.Is(err, wavelet.ErrInvalidParameter) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}

		return nil, err
	}

	m := OutputLength(len(input), factor)
	out := make([]float64, m)

	for j := range tr.Scales {
		amp := tr.Amplitude(j)
		phase := tr.Phase(j)
		weight := tr.SynthesisWeight(j)

		for i := range out {
			pos := float64(i) / factor
			a := interp.UniformAt(amp, pos)
			p := factor * interp.UniformAt(phase, pos)
			out[i] += weight * a * math.Cos(p)
		}
	}

	for i := range out {
		out[i] += tr.Mean
	}

	return out, nil
}

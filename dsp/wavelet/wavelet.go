package wavelet

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-magsonify/dsp/spectrum"
)

const (
	// Omega0 is the Morlet centre frequency in radians per unit scale.
	Omega0 = 6.0

	DefaultSmallestScale = 2.0
	DefaultScaleSpacing  = 0.5
	DefaultOctaves       = 16.0

	// morletCDelta is the delta-function reconstruction constant for a
	// Morlet wavelet with omega0 = 6 (Torrence & Compo 1998, table 2).
	morletCDelta = 0.776
)

// ErrInvalidParameter reports an unusable transform parameter.
var ErrInvalidParameter = errors.New("wavelet: invalid parameter")

// psi00 is the Morlet mother wavelet at t = 0.
var psi00 = math.Pow(math.Pi, -0.25)

// Option configures Analyze.
type Option func(*Config)

// Config holds the scale layout of a transform.
type Config struct {
	// SmallestScale is s0 in samples.
	SmallestScale float64
	// ScaleSpacing is dj, the distance between neighbouring scales in octaves.
	ScaleSpacing float64
	// Octaves bounds the decomposition depth. It is capped at log2(n/s0).
	Octaves float64
}

// DefaultConfig returns s0 = 2, dj = 0.5 and 16 octaves.
func DefaultConfig() Config {
	return Config{
		SmallestScale: DefaultSmallestScale,
		ScaleSpacing:  DefaultScaleSpacing,
		Octaves:       DefaultOctaves,
	}
}

// WithSmallestScale sets s0.
func WithSmallestScale(s0 float64) Option {
	return func(c *Config) { c.SmallestScale = s0 }
}

// WithScaleSpacing sets dj in octaves. Smaller values overlap the sub-bands
// more and reconstruct more accurately.
func WithScaleSpacing(dj float64) Option {
	return func(c *Config) { c.ScaleSpacing = dj }
}

// WithOctaves sets the decomposition depth.
func WithOctaves(octaves float64) Option {
	return func(c *Config) { c.Octaves = octaves }
}

// Validate reports whether c describes a usable scale layout.
func (c Config) Validate() error {
	switch {
	case !(c.SmallestScale > 0) || math.IsInf(c.SmallestScale, 0):
		return fmt.Errorf("%w: smallest scale must be > 0: %g", ErrInvalidParameter, c.SmallestScale)
	case !(c.ScaleSpacing > 0) || c.ScaleSpacing > 1:
		return fmt.Errorf("%w: scale spacing must be in (0, 1]: %g", ErrInvalidParameter, c.ScaleSpacing)
	case !(c.Octaves > 0) || math.IsInf(c.Octaves, 0):
		return fmt.Errorf("%w: octaves must be > 0: %g", ErrInvalidParameter, c.Octaves)
	}

	return nil
}

// Scales returns s_j = s0*2^(j*dj) for j = 0..J with J = floor(octaves/dj),
// where octaves is capped so the largest scale does not exceed n samples.
func (c Config) Scales(n int) []float64 {
	octaves := c.Octaves
	if limit := math.Log2(float64(n) / c.SmallestScale); limit < octaves {
		octaves = max(limit, 0)
	}

	count := int(math.Floor(octaves/c.ScaleSpacing+1e-9)) + 1
	scales := make([]float64, count)

	for j := range scales {
		scales[j] = c.SmallestScale * math.Exp2(float64(j)*c.ScaleSpacing)
	}

	return scales
}

// Transform is a continuous wavelet transform of a real signal.
type Transform struct {
	Config
	// Scales holds one entry per row of Coefficients.
	Scales []float64
	// Coefficients[j][n] is W_n(s_j).
	Coefficients [][]complex128
	// Mean is the signal mean removed before the transform.
	Mean float64
}

// Analyze computes the Morlet CWT of signal. The signal is mean-removed and
// zero-padded to the next power of two of at least twice its length.
func Analyze(signal []float64, opts ...Option) (*Transform, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("%w: empty signal", ErrInvalidParameter)
	}

	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := len(signal)
	size := 1
	for size < 2*n {
		size <<= 1
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("wavelet: failed to create FFT plan: %w", err)
	}

	mean := 0.0
	for _, v := range signal {
		mean += v
	}
	mean /= float64(n)

	xhat := make([]complex128, size)
	for i, v := range signal {
		xhat[i] = complex(v-mean, 0)
	}

	if err := plan.Forward(xhat, xhat); err != nil {
		return nil, fmt.Errorf("wavelet: forward transform: %w", err)
	}

	scales := cfg.Scales(n)
	t := &Transform{
		Config:       cfg,
		Scales:       scales,
		Coefficients: make([][]complex128, len(scales)),
		Mean:         mean,
	}

	work := make([]complex128, size)

	for j, s := range scales {
		clear(work)
		norm := math.Sqrt(2 * math.Pi * s)

		// Only positive frequencies: the Morlet daughter is analytic.
		for k := 1; k <= size/2; k++ {
			w := 2 * math.Pi * float64(k) / float64(size)
			psi := norm * psi00 * math.Exp(-0.5*(s*w-Omega0)*(s*w-Omega0))
			work[k] = xhat[k] * complex(psi, 0)
		}

		if err := plan.Inverse(work, work); err != nil {
			return nil, fmt.Errorf("wavelet: inverse transform at scale %g: %w", s, err)
		}

		t.Coefficients[j] = append([]complex128(nil), work[:n]...)
	}

	return t, nil
}

// Len returns the length of the analysed signal.
func (t *Transform) Len() int {
	if len(t.Coefficients) == 0 {
		return 0
	}

	return len(t.Coefficients[0])
}

// Amplitude returns |W_n(s_j)|.
func (t *Transform) Amplitude(j int) []float64 {
	return spectrum.Magnitude(t.Coefficients[j])
}

// Phase returns the unwrapped phase of W_n(s_j) along n.
func (t *Transform) Phase(j int) []float64 {
	phase := make([]float64, t.Len())
	for n, c := range t.Coefficients[j] {
		phase[n] = cmplx.Phase(c)
	}

	spectrum.UnwrapPhaseInPlace(phase)

	return phase
}

// SynthesisWeight is the factor applied to Re(W(s_j)) in the delta-function
// reconstruction.
func (t *Transform) SynthesisWeight(j int) float64 {
	return t.ScaleSpacing / (morletCDelta * psi00 * math.Sqrt(t.Scales[j]))
}

// FourierPeriod returns the Fourier period in samples that scale s responds to.
func FourierPeriod(s float64) float64 {
	return 4 * math.Pi * s / (Omega0 + math.Sqrt(2+Omega0*Omega0))
}

// Reconstruct inverts the transform with the delta-function synthesis of
// Torrence & Compo (1998, eq. 11) and restores the mean.
func (t *Transform) Reconstruct() []float64 {
	out := make([]float64, t.Len())

	for j, row := range t.Coefficients {
		w := t.SynthesisWeight(j)
		for n, c := range row {
			out[n] += w * real(c)
		}
	}

	for n := range out {
		out[n] += t.Mean
	}

	return out
}

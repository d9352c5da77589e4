package spectrum

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-magsonify/dsp/window"
)

var (
	errEmptySignal = errors.New("spectrum: signal must not be empty")
	errSampleRate  = errors.New("spectrum: sample rate must be > 0")
)

// Periodogram is the one-sided power spectrum of a windowed, zero-padded signal.
type Periodogram struct {
	// Power holds |X[k]|^2 for k = 0..Size/2.
	Power []float64
	// Size is the FFT length.
	Size       int
	SampleRate float64
}

// PeriodogramOption configures NewPeriodogram.
type PeriodogramOption func(*periodogramConfig)

type periodogramConfig struct {
	window  window.Type
	padding int
}

// WithWindow selects the analysis window. The default is Hann.
func WithWindow(t window.Type) PeriodogramOption {
	return func(c *periodogramConfig) {
		c.window = t
	}
}

// WithZeroPadding sets the FFT length to at least factor times the signal
// length. The default factor is 4.
func WithZeroPadding(factor int) PeriodogramOption {
	return func(c *periodogramConfig) {
		if factor >= 1 {
			c.padding = factor
		}
	}
}

// NewPeriodogram computes the power spectrum of samples taken at sampleRate.
func NewPeriodogram(samples []float64, sampleRate float64, opts ...PeriodogramOption) (*Periodogram, error) {
	if len(samples) == 0 {
		return nil, errEmptySignal
	}

	if !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: %g", errSampleRate, sampleRate)
	}

	cfg := periodogramConfig{window: window.TypeHann, padding: 4}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size := 1
	for size < len(samples)*cfg.padding {
		size <<= 1
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return nil, fmt.Errorf("spectrum: failed to create FFT plan: %w", err)
	}

	w := window.Generate(cfg.window, len(samples))
	frame := make([]complex128, size)

	for i, s := range samples {
		frame[i] = complex(s*w[i], 0)
	}

	if err := plan.Forward(frame, frame); err != nil {
		return nil, fmt.Errorf("spectrum: forward transform: %w", err)
	}

	return &Periodogram{
		Power:      Power(frame[:size/2+1]),
		Size:       size,
		SampleRate: sampleRate,
	}, nil
}

// BinFrequency returns the frequency of bin k in Hz.
func (p *Periodogram) BinFrequency(k float64) float64 {
	return k * p.SampleRate / float64(p.Size)
}

// Peak returns the frequency and power of the strongest bin above DC,
// refined by parabolic interpolation of the log power.
func (p *Periodogram) Peak() (freq, power float64) {
	best := 1
	for k := 2; k < len(p.Power); k++ {
		if p.Power[k] > p.Power[best] {
			best = k
		}
	}

	if best >= len(p.Power) {
		return 0, p.Power[0]
	}

	offset := 0.0
	if best > 0 && best < len(p.Power)-1 {
		a := math.Log(p.Power[best-1] + 1e-300)
		b := math.Log(p.Power[best] + 1e-300)
		c := math.Log(p.Power[best+1] + 1e-300)

		if den := a - 2*b + c; den != 0 {
			offset = min(max(0.5*(a-c)/den, -0.5), 0.5)
		}
	}

	return p.BinFrequency(float64(best) + offset), p.Power[best]
}

// BandPower sums the power of every bin whose frequency lies in [lo, hi] Hz.
func (p *Periodogram) BandPower(lo, hi float64) float64 {
	sum := 0.0
	for k, v := range p.Power {
		if f := p.BinFrequency(float64(k)); f >= lo && f <= hi {
			sum += v
		}
	}

	return sum
}

// DominantFrequency returns the frequency in Hz of the strongest spectral
// component of samples.
func DominantFrequency(samples []float64, sampleRate float64) (float64, error) {
	p, err := NewPeriodogram(samples, sampleRate)
	if err != nil {
		return 0, err
	}

	f, _ := p.Peak()

	return f, nil
}

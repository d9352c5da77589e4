package signal

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/cwbudde/algo-magsonify/dsp/core"
	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

// Generator synthesizes deterministic records at a fixed sample rate, e.g. a
// 3 s magnetometer cadence set with core.WithSamplePeriod.
type Generator struct {
	cfg  core.ProcessorConfig
	seed uint64
}

// Option configures a Generator.
type Option func(*Generator)

// WithSeed sets the noise seed.
func WithSeed(seed uint64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}

// NewGenerator creates a generator with the given sampling settings.
func NewGenerator(opts ...core.ProcessorOption) *Generator {
	return NewGeneratorWithOptions(opts)
}

// NewGeneratorWithOptions creates a generator with sampling settings and
// generator options.
func NewGeneratorWithOptions(coreOpts []core.ProcessorOption, opts ...Option) *Generator {
	g := &Generator{
		cfg:  core.ApplyProcessorOptions(coreOpts...),
		seed: 1,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Config returns the sampling settings.
func (g *Generator) Config() core.ProcessorConfig {
	return g.cfg
}

// Seed returns the noise seed.
func (g *Generator) Seed() uint64 { return g.seed }

// SetSeed replaces the noise seed.
func (g *Generator) SetSeed(seed uint64) { g.seed = seed }

// Axis returns a uniform axis of samples instants starting at origin and
// spaced by the generator's sample period.
func (g *Generator) Axis(origin time.Time, samples int) (timeaxis.Axis, error) {
	if samples <= 0 {
		return timeaxis.Axis{}, fmt.Errorf("axis samples must be > 0: %d", samples)
	}

	period := g.cfg.SamplePeriod()
	if period <= 0 {
		return timeaxis.Axis{}, fmt.Errorf("sample rate %g Hz has no representable period", g.cfg.SampleRate)
	}

	return timeaxis.Uniform(0, period.Seconds(), samples, time.Second, timeaxis.WithOrigin(origin))
}

// Tones evaluates the sum of tones over samples instants of the generator's
// cadence. Tone frequencies are in Hz of the sample clock.
func (g *Generator) Tones(samples int, tones ...Tone) ([]float64, error) {
	if len(tones) == 0 {
		return nil, fmt.Errorf("tones needs at least one tone")
	}

	axis, err := g.Axis(time.Time{}, samples)
	if err != nil {
		return nil, err
	}

	return Harmonic(axis, tones...)
}

// WhiteNoise generates deterministic uniform noise in [-amplitude, amplitude].
func (g *Generator) WhiteNoise(amplitude float64, samples int) ([]float64, error) {
	if samples <= 0 {
		return nil, fmt.Errorf("noise samples must be > 0: %d", samples)
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be >= 0: %f", amplitude)
	}

	out := make([]float64, samples)
	rng := rand.New(rand.NewPCG(g.seed, ^g.seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out, nil
}

// Normalize scales data to target peak amplitude and returns a new slice.
// Non-finite samples are ignored when locating the peak.
func Normalize(data []float64, targetPeak float64) ([]float64, error) {
	if targetPeak < 0 {
		return nil, fmt.Errorf("normalize target peak must be >= 0: %f", targetPeak)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("normalize input must not be empty")
	}

	out := make([]float64, len(data))

	maxAbs := core.PeakAbs(data)
	if maxAbs == 0 || targetPeak == 0 {
		return out, nil
	}

	scale := targetPeak / maxAbs
	for i, v := range data {
		out[i] = v * scale
	}
	return out, nil
}

package stretch

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-magsonify/dsp/spectrum"
	"github.com/cwbudde/algo-magsonify/dsp/window"
)

const (
	defaultFrameSize = 512
	// defaultHopDivisor gives the default synthesis hop as a fraction of
	// the frame size.
	defaultHopDivisor = 16
	minFrameSize      = 16
	normFloor         = 1e-12
)

// VocoderOption configures a PhaseVocoder.
type VocoderOption func(*vocoderConfig)

type vocoderConfig struct {
	frameSize    int
	windowType   window.Type
	synthesisHop int
	analysisHop  int
	phaseLocking bool
	observer     Observer
}

// WithFrameSize sets the FFT frame size. It must be a power of two >= 16.
func WithFrameSize(size int) VocoderOption {
	return func(c *vocoderConfig) {
		c.frameSize = size
	}
}

// WithWindow sets the analysis and synthesis window. The window is always
// generated in periodic form.
func WithWindow(t window.Type) VocoderOption {
	return func(c *vocoderConfig) {
		c.windowType = t
	}
}

// WithSynthesisHop fixes the output hop in samples; the analysis hop is
// derived as hop/factor. This is the default anchoring, with hop = frame/16.
func WithSynthesisHop(hop int) VocoderOption {
	return func(c *vocoderConfig) {
		c.synthesisHop = hop
	}
}

// WithAnalysisHop fixes the input hop in samples; the synthesis hop is
// derived as hop*factor. It cannot be combined with WithSynthesisHop.
func WithAnalysisHop(hop int) VocoderOption {
	return func(c *vocoderConfig) {
		c.analysisHop = hop
	}
}

// WithPhaseLocking toggles identity phase locking (Laroche & Dolson 1999).
// It is enabled by default.
func WithPhaseLocking(enabled bool) VocoderOption {
	return func(c *vocoderConfig) {
		c.phaseLocking = enabled
	}
}

// WithObserver reports every analysis frame to o.
func WithObserver(o Observer) VocoderOption {
	return func(c *vocoderConfig) {
		c.observer = o
	}
}

// PhaseVocoder stretches signals with an STFT phase vocoder.
//
// The hop that is not anchored is fractional: frame positions along that
// side are rounded individually so the realised duration ratio equals the
// requested factor rather than a ratio of integer hops.
//
// A PhaseVocoder is not safe for concurrent use.
type PhaseVocoder struct {
	cfg vocoderConfig

	plan  *algofft.Plan[complex128]
	win   []float64
	omega []float64
}

// NewPhaseVocoder builds a phase vocoder. Without options it uses a 512-sample
// periodic Hann window, a 32-sample synthesis hop and identity phase locking.
func NewPhaseVocoder(opts ...VocoderOption) (*PhaseVocoder, error) {
	cfg := vocoderConfig{
		frameSize:    defaultFrameSize,
		windowType:   window.TypeHann,
		phaseLocking: true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.frameSize < minFrameSize || cfg.frameSize&(cfg.frameSize-1) != 0 {
		return nil, fmt.Errorf("%w: frame size must be a power of two >= %d: %d",
			ErrInvalidConfig, minFrameSize, cfg.frameSize)
	}

	if cfg.synthesisHop != 0 && cfg.analysisHop != 0 {
		return nil, fmt.Errorf("%w: set either the analysis or the synthesis hop, not both", ErrInvalidConfig)
	}

	if cfg.synthesisHop < 0 || cfg.analysisHop < 0 {
		return nil, fmt.Errorf("%w: hops must be positive", ErrInvalidConfig)
	}

	if cfg.synthesisHop == 0 && cfg.analysisHop == 0 {
		cfg.synthesisHop = cfg.frameSize / defaultHopDivisor
	}

	plan, err := algofft.NewPlan64(cfg.frameSize)
	if err != nil {
		return nil, fmt.Errorf("stretch: failed to create FFT plan: %w", err)
	}

	half := cfg.frameSize / 2
	omega := make([]float64, half+1)

	for k := range omega {
		omega[k] = 2 * math.Pi * float64(k) / float64(cfg.frameSize)
	}

	return &PhaseVocoder{
		cfg:   cfg,
		plan:  plan,
		win:   window.Generate(cfg.windowType, cfg.frameSize, window.WithPeriodic()),
		omega: omega,
	}, nil
}

// FrameSize returns the FFT frame size.
func (v *PhaseVocoder) FrameSize() int { return v.cfg.frameSize }

// WindowType returns the STFT window type.
func (v *PhaseVocoder) WindowType() window.Type { return v.cfg.windowType }

// Hops returns the nominal analysis and synthesis hops for factor. One of
// them is the configured integer hop, the other is derived from it.
func (v *PhaseVocoder) Hops(factor float64) (analysis, synthesis float64, err error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return 0, 0, fmt.Errorf("%w: factor must be > 0 and finite: %g", ErrInvalidConfig, factor)
	}

	if v.cfg.analysisHop > 0 {
		analysis = float64(v.cfg.analysisHop)
		synthesis = analysis * factor
	} else {
		synthesis = float64(v.cfg.synthesisHop)
		analysis = synthesis / factor
	}

	frame := float64(v.cfg.frameSize)

	switch {
	case analysis < 1:
		return 0, 0, fmt.Errorf("%w: analysis hop %.3g resolves to 0 samples (factor %g)", ErrInvalidConfig, analysis, factor)
	case synthesis < 1:
		return 0, 0, fmt.Errorf("%w: synthesis hop %.3g resolves to 0 samples (factor %g)", ErrInvalidConfig, synthesis, factor)
	case analysis > frame || synthesis > frame:
		return 0, 0, fmt.Errorf("%w: hops %.3g/%.3g exceed the %d-sample frame", ErrInvalidConfig, analysis, synthesis, v.cfg.frameSize)
	}

	return analysis, synthesis, nil
}

// vocoderState holds the per-run buffers.
type vocoderState struct {
	spec      []complex128
	frame     []complex128
	mag       []float64
	phase     []float64
	prevPhase []float64
	sumPhase  []float64
	peaks     []int
}

// Stretch returns input dilated by factor, round(len(input)*factor) samples long.
func (v *PhaseVocoder) Stretch(input []float64, factor float64) ([]float64, error) {
	if err := validateRequest(input, factor); err != nil {
		return nil, err
	}

	ha, hs, err := v.Hops(factor)
	if err != nil {
		return nil, err
	}

	n := v.cfg.frameSize
	half := n / 2

	frames := 0
	for int(math.Round(float64(frames)*ha)) < len(input) {
		frames++
	}

	lastOut := int(math.Round(float64(frames-1) * hs))
	out := make([]float64, lastOut+n)
	norm := make([]float64, lastOut+n)

	st := vocoderState{
		spec:      make([]complex128, n),
		frame:     make([]complex128, n),
		mag:       make([]float64, half+1),
		phase:     make([]float64, half+1),
		prevPhase: make([]float64, half+1),
		sumPhase:  make([]float64, half+1),
		peaks:     make([]int, 0, half),
	}

	prevIn, prevOut := 0, 0

	for f := range frames {
		inPos := int(math.Round(float64(f) * ha))
		outPos := int(math.Round(float64(f) * hs))

		for i := range n {
			x := 0.0
			if idx := inPos + i; idx < len(input) {
				x = input[idx]
			}

			st.spec[i] = complex(x*v.win[i], 0)
		}

		if err := v.plan.Forward(st.spec, st.spec); err != nil {
			return nil, fmt.Errorf("stretch: forward FFT failed: %w", err)
		}

		if v.cfg.observer != nil {
			v.cfg.observer.ObserveFrame(Frame{
				Index:          f,
				AnalysisStart:  inPos,
				SynthesisStart: outPos,
				Spectrum:       st.spec[:half+1],
				Window:         v.win,
			})
		}

		spectrum.MagnitudePhaseInto(st.mag, st.phase, st.spec[:half+1])

		if f == 0 {
			copy(st.sumPhase, st.phase)
		} else {
			v.advancePhase(&st, float64(inPos-prevIn), float64(outPos-prevOut))
		}

		copy(st.prevPhase, st.phase)
		prevIn, prevOut = inPos, outPos

		for k := 0; k <= half; k++ {
			st.spec[k] = complex(st.mag[k]*math.Cos(st.sumPhase[k]), st.mag[k]*math.Sin(st.sumPhase[k]))
		}

		st.spec[0] = complex(real(st.spec[0]), 0)
		st.spec[half] = complex(real(st.spec[half]), 0)

		for k := 1; k < half; k++ {
			st.spec[n-k] = complex(real(st.spec[k]), -imag(st.spec[k]))
		}

		if err := v.plan.Inverse(st.frame, st.spec); err != nil {
			return nil, fmt.Errorf("stretch: inverse FFT failed: %w", err)
		}

		for i := range n {
			w := v.win[i]
			out[outPos+i] += real(st.frame[i]) * w
			norm[outPos+i] += w * w
		}
	}

	for i := range out {
		if norm[i] > normFloor {
			out[i] /= norm[i]
		}
	}

	return fitLength(out, OutputLength(len(input), factor)), nil
}

// advancePhase estimates each bin's instantaneous frequency from the phase
// advance over the analysis hop and accumulates it over the synthesis hop.
func (v *PhaseVocoder) advancePhase(st *vocoderState, ha, hs float64) {
	half := len(st.phase) - 1

	instFreq := func(k int) float64 {
		delta := spectrum.WrapPhase(st.phase[k] - st.prevPhase[k] - v.omega[k]*ha)
		return v.omega[k] + delta/ha
	}

	if !v.cfg.phaseLocking {
		for k := 0; k <= half; k++ {
			st.sumPhase[k] += instFreq(k) * hs
		}

		return
	}

	st.peaks = st.peaks[:0]
	for k := 1; k < half; k++ {
		if st.mag[k] >= st.mag[k-1] && st.mag[k] > st.mag[k+1] {
			st.peaks = append(st.peaks, k)
		}
	}

	if len(st.peaks) == 0 {
		for k := 0; k <= half; k++ {
			st.sumPhase[k] += instFreq(k) * hs
		}

		return
	}

	for _, pk := range st.peaks {
		st.sumPhase[pk] += instFreq(pk) * hs
	}

	// Every other bin keeps its phase offset to the nearest peak.
	p := 0
	for k := 0; k <= half; k++ {
		for p+1 < len(st.peaks) && absInt(st.peaks[p+1]-k) < absInt(st.peaks[p]-k) {
			p++
		}

		if pk := st.peaks[p]; k != pk {
			st.sumPhase[k] = st.sumPhase[pk] + st.phase[k] - st.phase[pk]
		}
	}
}

// Spectrogram returns |STFT| frames of input using the vocoder's window and
// frame size with the given hop, for diagnostics.
func (v *PhaseVocoder) Spectrogram(input []float64, hop int) ([][]float64, error) {
	if len(input) == 0 || hop <= 0 {
		return nil, fmt.Errorf("%w: spectrogram needs input and a positive hop", ErrInvalidConfig)
	}

	n := v.cfg.frameSize
	buf := make([]complex128, n)
	windowed := make([]float64, n)
	var rows [][]float64

	for pos := 0; pos < len(input); pos += hop {
		clear(windowed)
		copy(windowed, input[pos:min(pos+n, len(input))])
		vecmath.MulBlockInPlace(windowed, v.win)

		for i, x := range windowed {
			buf[i] = complex(x, 0)
		}

		if err := v.plan.Forward(buf, buf); err != nil {
			return nil, fmt.Errorf("stretch: forward FFT failed: %w", err)
		}

		rows = append(rows, spectrum.Magnitude(buf[:n/2+1]))
	}

	return rows, nil
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}

	return x
}

package stretch

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-magsonify/dsp/signal"
	"github.com/cwbudde/algo-magsonify/dsp/spectrum"
	"github.com/cwbudde/algo-magsonify/dsp/window"
	"github.com/cwbudde/algo-magsonify/internal/testutil"
	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

func newVocoder(t *testing.T, opts ...VocoderOption) *PhaseVocoder {
	t.Helper()

	v, err := NewPhaseVocoder(opts...)
	if err != nil {
		t.Fatalf("NewPhaseVocoder() error = %v", err)
	}

	return v
}

func newWavelet(t *testing.T, opts ...WaveletOption) *Wavelet {
	t.Helper()

	w, err := NewWavelet(opts...)
	if err != nil {
		t.Fatalf("NewWavelet() error = %v", err)
	}

	return w
}

func TestOutputLength(t *testing.T) {
	tests := []struct {
		n      int
		factor float64
		want   int
	}{
		{1000, 16, 16000},
		{1000, 0.5, 500},
		{3, 1.5, 5},
		{7, 1.0 / 3, 2},
		{10, 0.01, 0},
	}

	for _, tt := range tests {
		if got := OutputLength(tt.n, tt.factor); got != tt.want {
			t.Fatalf("OutputLength(%d, %g)=%d want=%d", tt.n, tt.factor, got, tt.want)
		}
	}
}

func TestNewPhaseVocoderDefaults(t *testing.T) {
	v := newVocoder(t)

	if v.FrameSize() != 512 {
		t.Fatalf("FrameSize()=%d want=512", v.FrameSize())
	}

	if v.WindowType() != window.TypeHann {
		t.Fatalf("WindowType()=%v want=Hann", v.WindowType())
	}

	ha, hs, err := v.Hops(16)
	if err != nil {
		t.Fatalf("Hops(16) error = %v", err)
	}

	if hs != 32 || ha != 2 {
		t.Fatalf("Hops(16)=(%g, %g) want=(2, 32)", ha, hs)
	}
}

func TestNewPhaseVocoderRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []VocoderOption
	}{
		{"frame not power of two", []VocoderOption{WithFrameSize(500)}},
		{"frame too small", []VocoderOption{WithFrameSize(8)}},
		{"both hops", []VocoderOption{WithSynthesisHop(32), WithAnalysisHop(16)}},
		{"negative synthesis hop", []VocoderOption{WithSynthesisHop(-1)}},
		{"negative analysis hop", []VocoderOption{WithAnalysisHop(-4)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPhaseVocoder(tt.opts...)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err=%v want ErrInvalidConfig", err)
			}
		})
	}
}

func TestStretchRejectsBadRequest(t *testing.T) {
	input := testutil.DeterministicSine(1, 40, 1, 1024)

	stretchers := map[string]Stretcher{
		"vocoder": newVocoder(t),
		"wavelet": newWavelet(t),
	}

	tests := []struct {
		name   string
		input  []float64
		factor float64
	}{
		{"empty input", nil, 2},
		{"zero factor", input, 0},
		{"negative factor", input, -2},
		{"NaN factor", input, math.NaN()},
		{"infinite factor", input, math.Inf(1)},
		{"no output samples", input[:10], 0.01},
	}

	for name, s := range stretchers {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				_, err := s.Stretch(tt.input, tt.factor)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("err=%v want ErrInvalidConfig", err)
				}
			})
		}
	}
}

func TestPhaseVocoderRejectsDegenerateHops(t *testing.T) {
	input := testutil.DeterministicSine(1, 40, 1, 4096)

	tests := []struct {
		name   string
		opts   []VocoderOption
		factor float64
	}{
		// 32/64 = 0.5 analysis samples per frame.
		{"analysis hop below one sample", nil, 64},
		// 64*0.01 = 0.64 synthesis samples per frame.
		{"synthesis hop below one sample", []VocoderOption{WithAnalysisHop(64)}, 0.01},
		{"synthesis hop beyond frame", []VocoderOption{WithSynthesisHop(600)}, 1},
		{"analysis hop beyond frame", []VocoderOption{WithSynthesisHop(256)}, 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newVocoder(t, tt.opts...).Stretch(input, tt.factor)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err=%v want ErrInvalidConfig", err)
			}
		})
	}
}

func TestStretchOutputLength(t *testing.T) {
	stretchers := map[string]Stretcher{
		"vocoder": newVocoder(t),
		"wavelet": newWavelet(t),
	}

	tests := []struct {
		n      int
		factor float64
	}{
		{4096, 4},
		{4096, 0.5},
		{1000, 3},
		{1001, 1.5},
		{100, 2},
		{333, 1},
	}

	for name, s := range stretchers {
		for _, tt := range tests {
			input := testutil.DeterministicNoise(7, 1, tt.n)

			out, err := s.Stretch(input, tt.factor)
			if err != nil {
				t.Fatalf("%s: Stretch(n=%d, factor=%g) error = %v", name, tt.n, tt.factor, err)
			}

			if want := OutputLength(tt.n, tt.factor); len(out) != want {
				t.Fatalf("%s: len=%d want=%d", name, len(out), want)
			}

			testutil.RequireFinite(t, out)
		}
	}
}

func TestPhaseVocoderUnitFactorReconstructs(t *testing.T) {
	input := testutil.DeterministicNoise(3, 1, 4096)

	for _, locking := range []bool{true, false} {
		out, err := newVocoder(t, WithPhaseLocking(locking)).Stretch(input, 1)
		if err != nil {
			t.Fatalf("Stretch() error = %v", err)
		}

		testutil.RequireSliceNearlyEqual(t, testutil.Interior(out, 512), testutil.Interior(input, 512), 1e-9)
	}
}

func TestStretchPreservesPitch(t *testing.T) {
	const (
		sampleRate = 1000.0
		freq       = 25.0
	)

	input := testutil.DeterministicSine(freq, sampleRate, 1, 4096)

	stretchers := map[string]Stretcher{
		"vocoder":          newVocoder(t),
		"vocoder unlocked": newVocoder(t, WithPhaseLocking(false)),
		"vocoder analysis": newVocoder(t, WithAnalysisHop(32)),
		"wavelet":          newWavelet(t),
	}

	for name, s := range stretchers {
		for _, factor := range []float64{0.5, 1.5, 4} {
			out, err := s.Stretch(input, factor)
			if err != nil {
				t.Fatalf("%s x%g: Stretch() error = %v", name, factor, err)
			}

			got, err := spectrum.DominantFrequency(testutil.Interior(out, 512), sampleRate)
			if err != nil {
				t.Fatal(err)
			}

			if math.Abs(got-freq)/freq > 0.02 {
				t.Fatalf("%s x%g: dominant=%g Hz want~%g Hz", name, factor, got, freq)
			}
		}
	}
}

func TestStretchMatchesSineExpectation(t *testing.T) {
	const factor = 4.0

	axis, err := timeaxis.Uniform(0, 1, 4096, time.Second)
	if err != nil {
		t.Fatal(err)
	}

	// A cosine keeps the wavelet band phases at zero so that scaling them by
	// the factor leaves the waveform aligned.
	tone := signal.Tone{Frequency: 1.0 / 40, Amplitude: 1, Phase: math.Pi / 2}

	input, err := signal.Sine(axis, tone)
	if err != nil {
		t.Fatal(err)
	}

	want, err := signal.SineExpectation(axis, factor, tone)
	if err != nil {
		t.Fatal(err)
	}

	stretchers := map[string]Stretcher{
		"vocoder": newVocoder(t),
		"wavelet": newWavelet(t),
	}

	for name, s := range stretchers {
		got, err := s.Stretch(input, factor)
		if err != nil {
			t.Fatalf("%s: Stretch() error = %v", name, err)
		}

		n := min(len(got), len(want))

		corr, err := testutil.Correlation(testutil.Interior(got[:n], 2048), testutil.Interior(want[:n], 2048))
		if err != nil {
			t.Fatal(err)
		}

		if corr < 0.95 {
			t.Fatalf("%s: correlation with expectation=%f", name, corr)
		}
	}
}

func TestPhaseVocoderObserver(t *testing.T) {
	var rec Recorder

	v := newVocoder(t, WithObserver(&rec))
	input := testutil.DeterministicSine(1, 40, 1, 2048)

	if _, err := v.Stretch(input, 2); err != nil {
		t.Fatalf("Stretch() error = %v", err)
	}

	if len(rec.Magnitudes) != 128 {
		t.Fatalf("frames=%d want=128", len(rec.Magnitudes))
	}

	if len(rec.Magnitudes[0]) != 257 || len(rec.Window) != 512 {
		t.Fatalf("bins=%d window=%d", len(rec.Magnitudes[0]), len(rec.Window))
	}

	for i := range rec.AnalysisStarts {
		if rec.AnalysisStarts[i] != 16*i || rec.SynthesisStarts[i] != 32*i {
			t.Fatalf("frame %d starts=(%d, %d)", i, rec.AnalysisStarts[i], rec.SynthesisStarts[i])
		}
	}

	rec.Reset()
	if rec.Magnitudes != nil || rec.Window != nil {
		t.Fatal("Reset() left data behind")
	}
}

func TestPhaseVocoderFractionalHop(t *testing.T) {
	var starts []int

	v := newVocoder(t, WithObserver(ObserverFunc(func(f Frame) {
		starts = append(starts, f.AnalysisStart)
	})))

	input := testutil.DeterministicSine(1, 40, 1, 1024)

	if _, err := v.Stretch(input, 3); err != nil {
		t.Fatalf("Stretch() error = %v", err)
	}

	// Analysis hop is 32/3 samples.
	want := []int{0, 11, 21, 32, 43, 53, 64}
	for i, w := range want {
		if starts[i] != w {
			t.Fatalf("starts[%d]=%d want=%d", i, starts[i], w)
		}
	}

	if last := starts[len(starts)-1]; last >= len(input) || last+11 < len(input) {
		t.Fatalf("last analysis start=%d for %d samples", last, len(input))
	}
}

func TestPhaseVocoderSpectrogram(t *testing.T) {
	v := newVocoder(t, WithFrameSize(256))
	input := testutil.DeterministicSine(1, 16, 1, 1024)

	rows, err := v.Spectrogram(input, 128)
	if err != nil {
		t.Fatalf("Spectrogram() error = %v", err)
	}

	if len(rows) != 8 || len(rows[0]) != 129 {
		t.Fatalf("shape=%dx%d want=8x129", len(rows), len(rows[0]))
	}

	peak := 0
	for k, m := range rows[0] {
		if m > rows[0][peak] {
			peak = k
		}
	}

	// 256/16 = bin 16.
	if peak != 16 {
		t.Fatalf("peak bin=%d want=16", peak)
	}

	if _, err := v.Spectrogram(input, 0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("hop 0: err=%v", err)
	}
}

func TestNewWaveletRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []WaveletOption
	}{
		{"zero overlap", []WaveletOption{WithBandOverlap(0)}},
		{"overlap above one", []WaveletOption{WithBandOverlap(2)}},
		{"zero octaves", []WaveletOption{WithOctaves(0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewWavelet(tt.opts...); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("err=%v want ErrInvalidConfig", err)
			}
		})
	}

	w := newWavelet(t, WithBandOverlap(0.25), WithOctaves(8))
	if cfg := w.Config(); cfg.ScaleSpacing != 0.25 || cfg.Octaves != 8 {
		t.Fatalf("Config()=%+v", cfg)
	}
}

func TestWaveletKeepsMean(t *testing.T) {
	input := make([]float64, 500)
	for i := range input {
		input[i] = -2
	}

	out, err := newWavelet(t).Stretch(input, 2.5)
	if err != nil {
		t.Fatal(err)
	}

	for i, v := range out {
		if math.Abs(v+2) > 1e-9 {
			t.Fatalf("out[%d]=%g want=-2", i, v)
		}
	}
}

func BenchmarkPhaseVocoderStretch(b *testing.B) {
	v, err := NewPhaseVocoder()
	if err != nil {
		b.Fatal(err)
	}

	input := testutil.DeterministicSine(1, 40, 1, 1<<14)

	for b.Loop() {
		if _, err := v.Stretch(input, 4); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkWaveletStretch(b *testing.B) {
	w, err := NewWavelet()
	if err != nil {
		b.Fatal(err)
	}

	input := testutil.DeterministicSine(1, 40, 1, 1<<12)

	for b.Loop() {
		if _, err := w.Stretch(input, 4); err != nil {
			b.Fatal(err)
		}
	}
}

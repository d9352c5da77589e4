package wavelet

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-magsonify/internal/testutil"
)

func TestScales(t *testing.T) {
	scales := DefaultConfig().Scales(1024)

	// log2(1024/2) = 9 octaves at half-octave spacing.
	if len(scales) != 19 {
		t.Fatalf("len(scales)=%d want=19", len(scales))
	}

	if scales[0] != 2 {
		t.Fatalf("scales[0]=%g want=2", scales[0])
	}

	if math.Abs(scales[len(scales)-1]-1024) > 1e-9 {
		t.Fatalf("last scale=%g want=1024", scales[len(scales)-1])
	}

	for j := 1; j < len(scales); j++ {
		if math.Abs(scales[j]/scales[j-1]-math.Sqrt2) > 1e-12 {
			t.Fatalf("scale ratio at %d = %g", j, scales[j]/scales[j-1])
		}
	}
}

func TestScalesHonourOctaveLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Octaves = 3

	if got := len(cfg.Scales(1 << 16)); got != 7 {
		t.Fatalf("len(scales)=%d want=7", got)
	}

	// Signals shorter than s0 still get one scale.
	if got := len(cfg.Scales(1)); got != 1 {
		t.Fatalf("len(scales)=%d want=1", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"zero spacing", WithScaleSpacing(0)},
		{"spacing above one octave", WithScaleSpacing(1.5)},
		{"negative octaves", WithOctaves(-1)},
		{"zero smallest scale", WithSmallestScale(0)},
		{"NaN spacing", WithScaleSpacing(math.NaN())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Analyze([]float64{1, 2, 3}, tt.opt)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("err=%v want ErrInvalidParameter", err)
			}
		})
	}

	if _, err := Analyze(nil); !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("empty signal: err=%v", err)
	}
}

func TestReconstructSine(t *testing.T) {
	const n = 4096

	x := testutil.DeterministicSine(1, 64, 1, n)

	for _, dj := range []float64{0.5, 0.25} {
		tr, err := Analyze(x, WithScaleSpacing(dj))
		if err != nil {
			t.Fatalf("Analyze(dj=%g): %v", dj, err)
		}

		y := tr.Reconstruct()
		if len(y) != n {
			t.Fatalf("len=%d want=%d", len(y), n)
		}

		corr, err := testutil.Correlation(testutil.Interior(y, 512), testutil.Interior(x, 512))
		if err != nil {
			t.Fatal(err)
		}

		if corr < 0.99 {
			t.Fatalf("dj=%g: correlation=%f", dj, corr)
		}

		ratio := testutil.RMS(testutil.Interior(y, 512)) / testutil.RMS(testutil.Interior(x, 512))
		if math.Abs(ratio-1) > 0.08 {
			t.Fatalf("dj=%g: rms ratio=%f", dj, ratio)
		}
	}
}

func TestReconstructRestoresMean(t *testing.T) {
	x := make([]float64, 256)
	for i := range x {
		x[i] = 3.5
	}

	tr, err := Analyze(x)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, tr.Reconstruct(), x, 1e-9)
}

func TestAmplitudePeaksAtMatchingScale(t *testing.T) {
	const period = 40.0

	x := testutil.DeterministicSine(1, period, 1, 2048)

	tr, err := Analyze(x, WithScaleSpacing(0.125))
	if err != nil {
		t.Fatal(err)
	}

	best, bestPower := 0, 0.0
	for j, s := range tr.Scales {
		amp := testutil.Interior(tr.Amplitude(j), 256)
		p := testutil.RMS(amp) / math.Sqrt(s)

		if p > bestPower {
			best, bestPower = j, p
		}
	}

	got := FourierPeriod(tr.Scales[best])
	if math.Abs(got-period)/period > 0.1 {
		t.Fatalf("peak scale period=%g want~%g", got, period)
	}
}

func TestPhaseAdvancesAtSignalFrequency(t *testing.T) {
	const period = 32.0

	x := testutil.DeterministicSine(1, period, 1, 1024)

	tr, err := Analyze(x)
	if err != nil {
		t.Fatal(err)
	}

	// Scale whose Fourier period is closest to the tone.
	best := 0
	for j, s := range tr.Scales {
		if math.Abs(FourierPeriod(s)-period) < math.Abs(FourierPeriod(tr.Scales[best])-period) {
			best = j
		}
	}

	phase := tr.Phase(best)
	slope := (phase[768] - phase[256]) / 512
	want := 2 * math.Pi / period

	if math.Abs(slope-want) > 1e-3 {
		t.Fatalf("phase slope=%g want=%g", slope, want)
	}
}

func BenchmarkAnalyze(b *testing.B) {
	x := testutil.DeterministicSine(1, 64, 1, 1<<13)

	for b.Loop() {
		if _, err := Analyze(x); err != nil {
			b.Fatal(err)
		}
	}
}

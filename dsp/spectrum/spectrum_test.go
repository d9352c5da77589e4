package spectrum

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-magsonify/dsp/window"
)

func TestMagnitudePhasePower(t *testing.T) {
	bins := []complex128{3 + 4i, -1 - 1i, 0}

	mag := Magnitude(bins)
	if len(mag) != len(bins) {
		t.Fatalf("Magnitude length mismatch: got=%d want=%d", len(mag), len(bins))
	}

	if math.Abs(mag[0]-5) > 1e-12 {
		t.Fatalf("Magnitude[0]=%f want=5", mag[0])
	}

	pow := Power(bins)
	if math.Abs(pow[0]-25) > 1e-12 {
		t.Fatalf("Power[0]=%f want=25", pow[0])
	}

	phase := Phase(bins)
	if math.Abs(phase[0]-math.Atan2(4, 3)) > 1e-12 {
		t.Fatalf("Phase[0]=%f mismatch", phase[0])
	}
}

func TestMagnitudePhaseInto(t *testing.T) {
	bins := []complex128{3 + 4i, -2, 1i}
	mag := make([]float64, 3)
	phase := make([]float64, 3)

	MagnitudePhaseInto(mag, phase, bins)

	want := []float64{5, 2, 1}
	for i := range want {
		if math.Abs(mag[i]-want[i]) > 1e-12 {
			t.Fatalf("mag[%d]=%v want %v", i, mag[i], want[i])
		}
	}

	if math.Abs(phase[1]-math.Pi) > 1e-12 || math.Abs(phase[2]-math.Pi/2) > 1e-12 {
		t.Fatalf("unexpected phase: %v", phase)
	}
}

func TestUnwrapPhase(t *testing.T) {
	in := []float64{2.8, -2.7, -2.6}

	out := UnwrapPhase(in)
	if len(out) != len(in) {
		t.Fatalf("unwrap length mismatch")
	}

	if math.Abs((out[1]-out[0])-(2*math.Pi-5.5)) > 1e-12 {
		t.Fatalf("unexpected unwrap delta: %f", out[1]-out[0])
	}

	if in[1] != -2.7 {
		t.Fatal("UnwrapPhase modified its input")
	}
}

func TestUnwrapPhaseRecoversRamp(t *testing.T) {
	n := 200
	ramp := make([]float64, n)
	wrapped := make([]float64, n)
	for i := range ramp {
		ramp[i] = -0.9 * float64(i)
		wrapped[i] = WrapPhase(ramp[i])
	}

	UnwrapPhaseInPlace(wrapped)

	for i := range ramp {
		if math.Abs(wrapped[i]-ramp[i]) > 1e-9 {
			t.Fatalf("index %d: got %v want %v", i, wrapped[i], ramp[i])
		}
	}
}

func TestWrapPhase(t *testing.T) {
	for _, x := range []float64{0, 1, -1, math.Pi, -math.Pi, 7, -7, 100} {
		got := WrapPhase(x)
		if got <= -math.Pi || got > math.Pi {
			t.Fatalf("WrapPhase(%v)=%v out of range", x, got)
		}

		if d := math.Remainder(got-x, 2*math.Pi); math.Abs(d) > 1e-9 {
			t.Fatalf("WrapPhase(%v)=%v is not congruent", x, got)
		}
	}
}

func TestDominantFrequency(t *testing.T) {
	const sampleRate = 8000.0

	for _, freq := range []float64{220, 441.5, 1234} {
		x := make([]float64, 4096)
		for i := range x {
			x[i] = math.Sin(2*math.Pi*freq*float64(i)/sampleRate) + 0.1*math.Sin(2*math.Pi*3*freq*float64(i)/sampleRate)
		}

		got, err := DominantFrequency(x, sampleRate)
		if err != nil {
			t.Fatalf("DominantFrequency error: %v", err)
		}

		if math.Abs(got-freq) > 1 {
			t.Fatalf("DominantFrequency=%v want ~%v", got, freq)
		}
	}
}

func TestPeriodogramBandPower(t *testing.T) {
	const sampleRate = 1000.0

	x := make([]float64, 2000)
	for i := range x {
		x[i] = math.Cos(2 * math.Pi * 100 * float64(i) / sampleRate)
	}

	p, err := NewPeriodogram(x, sampleRate, WithWindow(window.TypeBlackmanHarris4Term), WithZeroPadding(2))
	if err != nil {
		t.Fatalf("NewPeriodogram error: %v", err)
	}

	if p.Size != 4096 || len(p.Power) != 2049 {
		t.Fatalf("size=%d bins=%d", p.Size, len(p.Power))
	}

	in := p.BandPower(95, 105)
	out := p.BandPower(200, 500)

	if in <= 0 || out/in > 1e-6 {
		t.Fatalf("band power leak: in=%g out=%g", in, out)
	}
}

func TestPeriodogramErrors(t *testing.T) {
	if _, err := NewPeriodogram(nil, 100); err == nil {
		t.Fatal("expected error for empty signal")
	}

	if _, err := NewPeriodogram([]float64{1, 2}, 0); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

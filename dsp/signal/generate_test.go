package signal

import (
	"math"
	"testing"
	"time"

	"github.com/cwbudde/algo-magsonify/dsp/core"
)

func TestGeneratorAxisUsesCadence(t *testing.T) {
	g := NewGenerator(core.WithSamplePeriod(3 * time.Second))
	origin := time.Date(2008, 2, 26, 4, 0, 0, 0, time.UTC)

	axis, err := g.Axis(origin, 10)
	if err != nil {
		t.Fatalf("Axis() error = %v", err)
	}

	if axis.Len() != 10 {
		t.Fatalf("len = %d, want 10", axis.Len())
	}
	if got := axis.Instant(9); !got.Equal(origin.Add(27 * time.Second)) {
		t.Fatalf("Instant(9) = %v", got)
	}

	if _, err := g.Axis(origin, 0); err == nil {
		t.Fatal("expected error for empty axis")
	}
}

func TestTonesSumsComponents(t *testing.T) {
	g := NewGenerator(core.WithSamplePeriod(time.Second))
	out, err := g.Tones(32, Tone{Frequency: 0.05, Amplitude: 0.5}, Tone{Frequency: 0.12, Amplitude: 0.5})
	if err != nil {
		t.Fatalf("Tones() error = %v", err)
	}

	for i, v := range out {
		want := 0.5*math.Sin(2*math.Pi*0.05*float64(i)) + 0.5*math.Sin(2*math.Pi*0.12*float64(i))
		if math.Abs(v-want) > 1e-12 {
			t.Fatalf("out[%d]=%v want %v", i, v, want)
		}
	}

	if _, err := g.Tones(4); err == nil {
		t.Fatal("expected error for no tones")
	}
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	g1 := NewGeneratorWithOptions(nil, WithSeed(42))
	g2 := NewGeneratorWithOptions(nil, WithSeed(42))

	n1, err := g1.WhiteNoise(1, 16)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}
	n2, err := g2.WhiteNoise(1, 16)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}

	for i := range n1 {
		if n1[i] != n2[i] {
			t.Fatalf("noise mismatch at %d: %v != %v", i, n1[i], n2[i])
		}
		if math.Abs(n1[i]) > 1 {
			t.Fatalf("noise out of range at %d: %v", i, n1[i])
		}
	}

	if _, err := g1.WhiteNoise(-1, 4); err == nil {
		t.Fatal("expected error for negative amplitude")
	}
}

func TestSetSeed(t *testing.T) {
	g := NewGenerator()
	g.SetSeed(99)
	if g.Seed() != 99 {
		t.Fatalf("Seed()=%d, want 99", g.Seed())
	}

	a, err := g.WhiteNoise(1, 8)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}
	g.SetSeed(100)
	b, err := g.WhiteNoise(1, 8)
	if err != nil {
		t.Fatalf("WhiteNoise() error = %v", err)
	}

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different seeds to produce different noise")
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{-0.5, 1.0, math.NaN(), -0.25}, 0.5)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if out[1] != 0.5 {
		t.Fatalf("peak = %v, want 0.5", out[1])
	}

	silent, err := Normalize([]float64{0, 0}, 1)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	if silent[0] != 0 || silent[1] != 0 {
		t.Fatalf("silent input should stay silent: %v", silent)
	}

	if _, err := Normalize(nil, 1); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := Normalize([]float64{1}, -1); err == nil {
		t.Fatal("expected error for negative peak")
	}
}

package core

import (
	"math"
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		lo       float64
		hi       float64
		expected float64
	}{
		{name: "inside", value: 120, lo: -400, hi: 400, expected: 120},
		{name: "below", value: -900, lo: -400, hi: 400, expected: -400},
		{name: "above", value: 401, lo: -400, hi: 400, expected: 400},
		{name: "swapped", value: 2, lo: 1, hi: 0, expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp(tt.value, tt.lo, tt.hi); got != tt.expected {
				t.Fatalf("Clamp() = %v, want %v", got, tt.expected)
			}
		})
	}

	if got := Clamp(math.NaN(), -1, 1); !math.IsNaN(got) {
		t.Fatalf("Clamp(NaN) = %v, want NaN", got)
	}
}

func TestIsFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if IsFinite(v) {
			t.Fatalf("IsFinite(%v) = true", v)
		}
	}

	if !IsFinite(-1e31) {
		t.Fatal("IsFinite(-1e31) = false")
	}
}

func TestPeakAbs(t *testing.T) {
	if got := PeakAbs([]float64{0.5, -3, math.NaN(), math.Inf(-1), 2}); got != 3 {
		t.Fatalf("PeakAbs() = %v, want 3", got)
	}
	if got := PeakAbs(nil); got != 0 {
		t.Fatalf("PeakAbs(nil) = %v, want 0", got)
	}
}

func TestProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(48000), WithBlockSize(-1), nil)
	if cfg.SampleRate != 48000 || cfg.BlockSize != DefaultProcessorConfig().BlockSize {
		t.Fatalf("unexpected config %+v", cfg)
	}

	cfg = ApplyProcessorOptions(WithSamplePeriod(4 * time.Second))
	if cfg.SampleRate != 0.25 {
		t.Fatalf("SampleRate = %v, want 0.25", cfg.SampleRate)
	}
	if got := cfg.SamplePeriod(); got != 4*time.Second {
		t.Fatalf("SamplePeriod() = %v, want 4s", got)
	}

	cfg = ApplyProcessorOptions(WithSamplePeriod(0))
	if cfg.SampleRate != 44100 {
		t.Fatalf("zero period changed the rate: %v", cfg.SampleRate)
	}

	if got := (ProcessorConfig{}).SamplePeriod(); got != 0 {
		t.Fatalf("unset SamplePeriod() = %v, want 0", got)
	}
}

package signal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

var errZeroDirection = errors.New("signal: direction must not be the zero vector")

// Tone is one sinusoidal component of a synthetic waveform. Frequency is in Hz
// of the axis' time, so a 5 mHz tone on a 3 s cadence completes one cycle
// every 200 s.
type Tone struct {
	Frequency float64
	Amplitude float64
	Phase     float64
}

// seconds returns the axis offsets in seconds.
func seconds(axis timeaxis.Axis) ([]float64, error) {
	s, err := axis.ChangeUnit(time.Second)
	if err != nil {
		return nil, err
	}

	return s.Float64s(), nil
}

// Sine evaluates amplitude*sin(2*pi*f*t + phase) at every instant of axis.
func Sine(axis timeaxis.Axis, tone Tone) ([]float64, error) {
	return Harmonic(axis, tone)
}

// Harmonic evaluates the sum of tones at every instant of axis.
func Harmonic(axis timeaxis.Axis, tones ...Tone) ([]float64, error) {
	t, err := seconds(axis)
	if err != nil {
		return nil, err
	}

	out := make([]float64, len(t))
	for _, tone := range tones {
		w := 2 * math.Pi * tone.Frequency
		for i, ti := range t {
			out[i] += tone.Amplitude * math.Sin(w*ti+tone.Phase)
		}
	}

	return out, nil
}

// SineExpectation returns what a pitch-preserving stretch of Sine(axis, tone)
// by factor should produce: the same per-sample frequency over factor times
// as many samples.
func SineExpectation(axis timeaxis.Axis, factor float64, tone Tone) ([]float64, error) {
	return HarmonicExpectation(axis, factor, tone)
}

// HarmonicExpectation is the multi-tone form of SineExpectation.
func HarmonicExpectation(axis timeaxis.Axis, factor float64, tones ...Tone) ([]float64, error) {
	dense, err := axis.Interpolate(factor)
	if err != nil {
		return nil, fmt.Errorf("signal: expectation axis: %w", err)
	}

	scaled := make([]Tone, len(tones))
	for i, tone := range tones {
		scaled[i] = tone
		scaled[i].Frequency = tone.Frequency * factor
	}

	return Harmonic(dense, scaled...)
}

// OrientOffset places a scalar waveform in 3-D: component i is
// waveform*unit(direction)[i] + offset[i].
func OrientOffset(waveform []float64, direction, offset [3]float64) ([3][]float64, error) {
	norm := math.Sqrt(direction[0]*direction[0] + direction[1]*direction[1] + direction[2]*direction[2])
	if norm == 0 {
		return [3][]float64{}, errZeroDirection
	}

	var out [3][]float64
	for c := range out {
		d := direction[c] / norm
		out[c] = make([]float64, len(waveform))

		for i, v := range waveform {
			out[c][i] = v*d + offset[c]
		}
	}

	return out, nil
}

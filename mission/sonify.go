package mission

import (
	"fmt"

	"github.com/cwbudde/algo-magsonify/dsp/core"
	"github.com/cwbudde/algo-magsonify/dsp/signal"
	"github.com/cwbudde/algo-magsonify/dsp/stretch"
	"github.com/cwbudde/algo-magsonify/series/dataset"
)

// Sonify extracts channel key from ds, stretches it by factor with s and
// scales it to peak. The result is keyed Index(0) on an axis resized to the
// stretched length, with the original origin and sample spacing.
func Sonify(ds *dataset.Dataset, key dataset.Key, s stretch.Stretcher, factor, peak float64) (*dataset.Dataset, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset", ErrMissingField)
	}

	ch, err := ds.ExtractKey(key)
	if err != nil {
		return nil, err
	}

	stretched, err := s.Stretch(ch.MustChannel(dataset.Index(0)), factor)
	if err != nil {
		return nil, fmt.Errorf("mission: stretch channel %s: %w", key, err)
	}

	normalized, err := signal.Normalize(stretched, peak)
	if err != nil {
		return nil, fmt.Errorf("mission: normalize channel %s: %w", key, err)
	}

	axis, err := ds.Axis().Resized(len(normalized))
	if err != nil {
		return nil, fmt.Errorf("mission: stretched axis: %w", err)
	}

	return dataset.FromSlices(axis, normalized)
}

// SonifyJoint stretches each keyed channel of ds like Sonify but scales all
// of them by one common factor, so the loudest channel reaches peak and the
// others keep their level relative to it. Channel i of the result holds
// keys[i].
func SonifyJoint(ds *dataset.Dataset, s stretch.Stretcher, factor, peak float64, keys ...dataset.Key) (*dataset.Dataset, error) {
	if ds == nil {
		return nil, fmt.Errorf("%w: dataset", ErrMissingField)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("mission: joint sonification needs at least one channel")
	}

	if peak < 0 {
		return nil, fmt.Errorf("mission: peak must be >= 0: %g", peak)
	}

	stretched := make([][]float64, len(keys))
	loudest := 0.0

	for i, key := range keys {
		ch, err := ds.ExtractKey(key)
		if err != nil {
			return nil, err
		}

		out, err := s.Stretch(ch.MustChannel(dataset.Index(0)), factor)
		if err != nil {
			return nil, fmt.Errorf("mission: stretch channel %s: %w", key, err)
		}

		stretched[i] = out
		loudest = max(loudest, core.PeakAbs(out))
	}

	scale := 0.0
	if loudest > 0 {
		scale = peak / loudest
	}

	for _, out := range stretched {
		for j := range out {
			out[j] *= scale
		}
	}

	axis, err := ds.Axis().Resized(len(stretched[0]))
	if err != nil {
		return nil, fmt.Errorf("mission: stretched axis: %w", err)
	}

	return dataset.FromSlices(axis, stretched...)
}

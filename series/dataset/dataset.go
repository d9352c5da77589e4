package dataset

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-magsonify/dsp/core"
	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

// Channel is one named series used to build a Dataset.
type Channel struct {
	Key    Key
	Values []float64
}

// Dataset is an ordered mapping from channel keys to series sharing one time axis.
//
// Invariant: every series has exactly Axis().Len() samples.
type Dataset struct {
	axis timeaxis.Axis
	keys []Key
	data map[Key][]float64
}

// New builds a dataset from channels. Values are copied.
func New(axis timeaxis.Axis, channels ...Channel) (*Dataset, error) {
	d := &Dataset{
		axis: axis,
		keys: make([]Key, 0, len(channels)),
		data: make(map[Key][]float64, len(channels)),
	}

	for _, ch := range channels {
		if len(ch.Values) != axis.Len() {
			return nil, fmt.Errorf("%w: channel %s has %d samples, axis has %d",
				ErrShapeMismatch, ch.Key, len(ch.Values), axis.Len())
		}

		if _, dup := d.data[ch.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate channel %s", ErrConfiguration, ch.Key)
		}

		d.keys = append(d.keys, ch.Key)
		d.data[ch.Key] = append([]float64(nil), ch.Values...)
	}

	return d, nil
}

// FromSlices builds a dataset whose channels are keyed 0..len(series)-1.
func FromSlices(axis timeaxis.Axis, series ...[]float64) (*Dataset, error) {
	channels := make([]Channel, len(series))
	for i, s := range series {
		channels[i] = Channel{Key: Index(i), Values: s}
	}

	return New(axis, channels...)
}

// NewFromTimes builds a dataset from time-tagged samples. Samples whose
// instant does not strictly follow the last kept instant (duplicates and
// out-of-order records) are dropped from every channel.
func NewFromTimes(times []time.Time, channels []Channel, opts ...timeaxis.Option) (*Dataset, error) {
	for _, ch := range channels {
		if len(ch.Values) != len(times) {
			return nil, fmt.Errorf("%w: channel %s has %d samples, %d timestamps",
				ErrShapeMismatch, ch.Key, len(ch.Values), len(times))
		}
	}

	keep := make([]int, 0, len(times))
	for i, t := range times {
		if len(keep) == 0 || t.After(times[keep[len(keep)-1]]) {
			keep = append(keep, i)
		}
	}

	kept := make([]time.Time, len(keep))
	for j, i := range keep {
		kept[j] = times[i]
	}

	axis, err := timeaxis.FromTimes(kept, opts...)
	if err != nil {
		return nil, err
	}

	filtered := make([]Channel, len(channels))
	for c, ch := range channels {
		values := make([]float64, len(keep))
		for j, i := range keep {
			values[j] = ch.Values[i]
		}

		filtered[c] = Channel{Key: ch.Key, Values: values}
	}

	return New(axis, filtered...)
}

// Axis returns the shared time axis.
func (d *Dataset) Axis() timeaxis.Axis { return d.axis }

// Len returns the number of samples per channel.
func (d *Dataset) Len() int { return d.axis.Len() }

// Keys returns the channel keys in insertion order.
func (d *Dataset) Keys() []Key { return append([]Key(nil), d.keys...) }

// Has reports whether the channel exists.
func (d *Dataset) Has(k Key) bool {
	_, ok := d.data[k]
	return ok
}

// Channel returns the series stored under k. The slice aliases the dataset's
// storage; modifying it modifies the dataset.
func (d *Dataset) Channel(k Key) ([]float64, bool) {
	s, ok := d.data[k]
	return s, ok
}

// MustChannel is like Channel but panics when k is missing.
func (d *Dataset) MustChannel(k Key) []float64 {
	s, ok := d.data[k]
	if !ok {
		panic(fmt.Sprintf("dataset: missing channel %s", k))
	}

	return s
}

// Copy returns a deep copy sharing the (immutable) axis.
func (d *Dataset) Copy() *Dataset {
	return d.derive(func(_ Key, s []float64) []float64 {
		return append([]float64(nil), s...)
	})
}

// FillNaN replaces every non-finite sample with value.
func (d *Dataset) FillNaN(value float64) {
	for _, s := range d.data {
		for i, v := range s {
			if !core.IsFinite(v) {
				s[i] = value
			}
		}
	}
}

// ConstrainAbsoluteValue clamps every sample into [-limit, limit]. NaN samples stay NaN.
func (d *Dataset) ConstrainAbsoluteValue(limit float64) {
	limit = math.Abs(limit)
	for _, s := range d.data {
		for i, v := range s {
			s[i] = core.Clamp(v, -limit, limit)
		}
	}
}

// FillMask replaces every sample whose mask entry is true with value.
func (d *Dataset) FillMask(mask []bool, value float64) error {
	if len(mask) != d.Len() {
		return fmt.Errorf("%w: mask has %d entries, dataset has %d samples", ErrShapeMismatch, len(mask), d.Len())
	}

	for _, s := range d.data {
		for i, m := range mask {
			if m {
				s[i] = value
			}
		}
	}

	return nil
}

// ExtractKey returns a single-channel copy of channel k keyed Index(0).
func (d *Dataset) ExtractKey(k Key) (*Dataset, error) {
	s, ok := d.data[k]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKey, k)
	}

	return New(d.axis, Channel{Key: Index(0), Values: s})
}

// Add returns d + other, elementwise per key.
func (d *Dataset) Add(other *Dataset) (*Dataset, error) {
	return d.pair(other, func(a, b float64) float64 { return a + b })
}

// Sub returns d - other, elementwise per key.
func (d *Dataset) Sub(other *Dataset) (*Dataset, error) {
	return d.pair(other, func(a, b float64) float64 { return a - b })
}

// Neg returns -d.
func (d *Dataset) Neg() *Dataset {
	return d.derive(func(_ Key, s []float64) []float64 {
		out := make([]float64, len(s))
		for i, v := range s {
			out[i] = -v
		}

		return out
	})
}

// SameAxis returns ErrTimeAxisMismatch unless other shares an equal axis.
func (d *Dataset) SameAxis(other *Dataset) error {
	if !d.axis.Equal(other.axis) {
		return fmt.Errorf("%w: %s vs %s", ErrTimeAxisMismatch, d.axis, other.axis)
	}

	return nil
}

func (d *Dataset) pair(other *Dataset, op func(a, b float64) float64) (*Dataset, error) {
	if err := d.SameAxis(other); err != nil {
		return nil, err
	}

	if len(d.keys) != len(other.keys) {
		return nil, fmt.Errorf("%w: %d channels vs %d", ErrShapeMismatch, len(d.keys), len(other.keys))
	}

	for _, k := range d.keys {
		if !other.Has(k) {
			return nil, fmt.Errorf("%w: channel %s missing from operand", ErrShapeMismatch, k)
		}
	}

	return d.derive(func(k Key, s []float64) []float64 {
		o := other.data[k]
		out := make([]float64, len(s))

		for i := range s {
			out[i] = op(s[i], o[i])
		}

		return out
	}), nil
}

// derive builds a dataset on the same axis with fn applied to every channel.
func (d *Dataset) derive(fn func(Key, []float64) []float64) *Dataset {
	out := &Dataset{
		axis: d.axis,
		keys: append([]Key(nil), d.keys...),
		data: make(map[Key][]float64, len(d.keys)),
	}

	for _, k := range d.keys {
		out.data[k] = fn(k, d.data[k])
	}

	return out
}

// String implements fmt.Stringer.
func (d *Dataset) String() string {
	return fmt.Sprintf("Dataset%v over %s", d.keys, d.axis)
}

package timeaxis

import (
	"fmt"
	"iter"
	"math"
	"time"
)

const defaultUnit = time.Second

// Axis is an immutable, strictly increasing sequence of instants.
//
// The zero value is an empty axis without origin.
type Axis struct {
	origin    time.Time
	hasOrigin bool
	unit      time.Duration

	// explicit offsets; nil for uniform axes
	offsets []float64

	// uniform representation
	first float64
	step  float64
	n     int
}

// Option configures axis construction.
type Option func(*config)

type config struct {
	unit      time.Duration
	origin    time.Time
	hasOrigin bool
}

// WithUnit sets the unit in which offsets are expressed. Non-positive units are ignored.
func WithUnit(unit time.Duration) Option {
	return func(c *config) {
		if unit > 0 {
			c.unit = unit
		}
	}
}

// WithOrigin sets the reference origin offsets are measured from.
func WithOrigin(origin time.Time) Option {
	return func(c *config) {
		c.origin = origin
		c.hasOrigin = true
	}
}

func applyOptions(opts []Option) config {
	cfg := config{unit: defaultUnit}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Generate returns a uniform axis holding every instant start + i*spacing that
// does not exceed end. The origin defaults to start and the unit to one second.
func Generate(start, end time.Time, spacing time.Duration, opts ...Option) (Axis, error) {
	if !end.After(start) {
		return Axis{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidRange, end, start)
	}

	if spacing <= 0 {
		return Axis{}, fmt.Errorf("%w: spacing must be > 0: %s", ErrInvalidRange, spacing)
	}

	cfg := applyOptions(opts)
	if !cfg.hasOrigin {
		cfg.origin = start
		cfg.hasOrigin = true
	}

	unitF := float64(cfg.unit)

	return Axis{
		origin:    cfg.origin,
		hasOrigin: true,
		unit:      cfg.unit,
		first:     float64(start.Sub(cfg.origin)) / unitF,
		step:      float64(spacing) / unitF,
		n:         int(end.Sub(start)/spacing) + 1,
	}, nil
}

// FromTimes builds an explicit axis from instants. The origin defaults to the
// first instant and the unit to one second.
func FromTimes(times []time.Time, opts ...Option) (Axis, error) {
	if len(times) == 0 {
		return Axis{}, fmt.Errorf("%w: no instants", ErrInvalidRange)
	}

	for i := 1; i < len(times); i++ {
		if !times[i].After(times[i-1]) {
			return Axis{}, fmt.Errorf("%w: index %d (%s after %s)", ErrUnordered, i, times[i], times[i-1])
		}
	}

	cfg := applyOptions(opts)
	if !cfg.hasOrigin {
		cfg.origin = times[0]
	}

	unitF := float64(cfg.unit)
	offsets := make([]float64, len(times))

	for i, t := range times {
		offsets[i] = float64(t.Sub(cfg.origin)) / unitF
	}

	return Axis{
		origin:    cfg.origin,
		hasOrigin: true,
		unit:      cfg.unit,
		offsets:   offsets,
		n:         len(offsets),
	}, nil
}

// FromOffsets builds an explicit axis from offsets expressed in unit. The axis
// has no origin unless WithOrigin is given.
func FromOffsets(offsets []float64, unit time.Duration, opts ...Option) (Axis, error) {
	if unit <= 0 {
		return Axis{}, fmt.Errorf("%w: unit must be > 0: %s", ErrInvalidRange, unit)
	}

	for i := 1; i < len(offsets); i++ {
		if !(offsets[i] > offsets[i-1]) {
			return Axis{}, fmt.Errorf("%w: index %d (%g after %g)", ErrUnordered, i, offsets[i], offsets[i-1])
		}
	}

	cfg := applyOptions(append(opts, WithUnit(unit)))

	return Axis{
		origin:    cfg.origin,
		hasOrigin: cfg.hasOrigin,
		unit:      cfg.unit,
		offsets:   append([]float64(nil), offsets...),
		n:         len(offsets),
	}, nil
}

// Uniform builds an n-sample axis starting at offset first with the given
// step, both expressed in unit. The axis has no origin unless WithOrigin is given.
func Uniform(first, step float64, n int, unit time.Duration, opts ...Option) (Axis, error) {
	if n < 0 || unit <= 0 || !(step > 0) || math.IsInf(step, 0) || math.IsNaN(first) {
		return Axis{}, fmt.Errorf("%w: n=%d step=%g unit=%s", ErrInvalidRange, n, step, unit)
	}

	cfg := applyOptions(append(opts, WithUnit(unit)))

	return Axis{
		origin:    cfg.origin,
		hasOrigin: cfg.hasOrigin,
		unit:      cfg.unit,
		first:     first,
		step:      step,
		n:         n,
	}, nil
}

// Len returns the number of instants.
func (a Axis) Len() int { return a.n }

// Unit returns the unit offsets are expressed in.
func (a Axis) Unit() time.Duration {
	if a.unit <= 0 {
		return defaultUnit
	}

	return a.unit
}

// HasOrigin reports whether the axis carries a reference origin.
func (a Axis) HasOrigin() bool { return a.hasOrigin }

// Origin returns the reference origin, or the zero time when there is none.
func (a Axis) Origin() time.Time { return a.origin }

// IsUniform reports whether offsets are implied by a constant spacing.
func (a Axis) IsUniform() bool { return a.offsets == nil }

// Offset returns the i-th offset in units.
func (a Axis) Offset(i int) float64 {
	if a.offsets != nil {
		return a.offsets[i]
	}

	return a.first + float64(i)*a.step
}

// Numeric returns a lazy, restartable sequence of offsets in units.
func (a Axis) Numeric() iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for i := range a.n {
			if !yield(a.Offset(i)) {
				return
			}
		}
	}
}

// Float64s returns the offsets in units as a new slice.
func (a Axis) Float64s() []float64 {
	out := make([]float64, a.n)
	for i := range out {
		out[i] = a.Offset(i)
	}

	return out
}

// Instant returns the i-th instant. Axes without origin are anchored at the zero time.
func (a Axis) Instant(i int) time.Time {
	return a.origin.Add(time.Duration(a.nanos(i)))
}

// Times returns all instants.
func (a Axis) Times() []time.Time {
	out := make([]time.Time, a.n)
	for i := range out {
		out[i] = a.Instant(i)
	}

	return out
}

// Start returns the first instant, or the zero time for an empty axis.
func (a Axis) Start() time.Time {
	if a.n == 0 {
		return time.Time{}
	}

	return a.Instant(0)
}

// End returns the last instant, or the zero time for an empty axis.
func (a Axis) End() time.Time {
	if a.n == 0 {
		return time.Time{}
	}

	return a.Instant(a.n - 1)
}

// MeanInterval returns the mean spacing between instants, or 0 for fewer than two.
func (a Axis) MeanInterval() time.Duration {
	if a.n < 2 {
		return 0
	}

	return time.Duration(math.Round(a.meanStep() * float64(a.Unit())))
}

func (a Axis) meanStep() float64 {
	if a.offsets == nil {
		return a.step
	}

	return (a.offsets[a.n-1] - a.offsets[0]) / float64(a.n-1)
}

// nanos returns the i-th offset as whole nanoseconds relative to the origin.
func (a Axis) nanos(i int) int64 {
	return int64(math.Round(a.Offset(i) * float64(a.Unit())))
}

// Equal reports whether both axes realize the same instants.
func (a Axis) Equal(b Axis) bool {
	if a.n != b.n || a.hasOrigin != b.hasOrigin {
		return false
	}

	var shift int64
	if a.hasOrigin {
		shift = a.origin.Sub(b.origin).Nanoseconds()
	}

	for i := range a.n {
		if a.nanos(i)+shift != b.nanos(i) {
			return false
		}
	}

	return true
}

// ChangeUnit returns the same instants expressed in a different unit.
func (a Axis) ChangeUnit(unit time.Duration) (Axis, error) {
	if unit <= 0 {
		return Axis{}, fmt.Errorf("%w: unit must be > 0: %s", ErrInvalidRange, unit)
	}

	scale := float64(a.Unit()) / float64(unit)
	out := a
	out.unit = unit

	if a.offsets != nil {
		out.offsets = make([]float64, a.n)
		for i, v := range a.offsets {
			out.offsets[i] = v * scale
		}

		return out, nil
	}

	out.first = a.first * scale
	out.step = a.step * scale

	return out, nil
}

// Rebase returns the same instants expressed relative to a new origin.
func (a Axis) Rebase(origin time.Time) Axis {
	shift := float64(a.origin.Sub(origin)) / float64(a.Unit())
	out := a
	out.origin = origin
	out.hasOrigin = true

	if a.offsets != nil {
		out.offsets = make([]float64, a.n)
		for i, v := range a.offsets {
			out.offsets[i] = v + shift
		}

		return out
	}

	out.first = a.first + shift

	return out
}

// OffsetsIn returns this axis' instants as offsets in ref's unit relative to
// ref's origin. Both axes must either carry an origin or both lack one.
func (a Axis) OffsetsIn(ref Axis) ([]float64, error) {
	if a.hasOrigin != ref.hasOrigin {
		return nil, ErrIncompatibleOrigin
	}

	var shift int64
	if a.hasOrigin {
		shift = a.origin.Sub(ref.origin).Nanoseconds()
	}

	unitF := float64(ref.Unit())
	out := make([]float64, a.n)

	for i := range out {
		out[i] = float64(a.nanos(i)+shift) / unitF
	}

	return out, nil
}

// Interpolate returns a uniform axis over [first, last] with factor times the
// sample density: round((n-1)*factor)+1 instants.
func (a Axis) Interpolate(factor float64) (Axis, error) {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return Axis{}, fmt.Errorf("%w: interpolation factor must be > 0 and finite: %g", ErrInvalidRange, factor)
	}

	if a.n < 2 {
		return Axis{}, fmt.Errorf("%w: interpolation needs at least 2 instants, have %d", ErrInvalidRange, a.n)
	}

	n := int(math.Round(float64(a.n-1)*factor)) + 1
	if n < 2 {
		return Axis{}, fmt.Errorf("%w: factor %g leaves fewer than 2 instants", ErrInvalidRange, factor)
	}

	first := a.Offset(0)
	last := a.Offset(a.n - 1)

	out := a
	out.offsets = nil
	out.first = first
	out.step = (last - first) / float64(n-1)
	out.n = n

	return out, nil
}

// Resized returns a uniform axis with the same origin, first offset and mean
// spacing but n instants. It describes a series that was dilated in time.
func (a Axis) Resized(n int) (Axis, error) {
	if n < 0 {
		return Axis{}, fmt.Errorf("%w: negative length %d", ErrInvalidRange, n)
	}

	if a.n < 2 && a.offsets != nil {
		return Axis{}, fmt.Errorf("%w: spacing undefined for %d instants", ErrInvalidRange, a.n)
	}

	out := a
	out.step = a.meanStep()
	out.first = a.Offset(0)
	out.offsets = nil
	out.n = n

	if !(out.step > 0) {
		return Axis{}, fmt.Errorf("%w: spacing undefined", ErrInvalidRange)
	}

	return out, nil
}

// String implements fmt.Stringer.
func (a Axis) String() string {
	if a.n == 0 {
		return "Axis[empty]"
	}

	if a.hasOrigin {
		return fmt.Sprintf("Axis[n=%d unit=%s %s..%s]", a.n, a.Unit(),
			a.Start().Format(time.RFC3339Nano), a.End().Format(time.RFC3339Nano))
	}

	return fmt.Sprintf("Axis[n=%d unit=%s %g..%g]", a.n, a.Unit(), a.Offset(0), a.Offset(a.n-1))
}

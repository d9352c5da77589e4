package mission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-magsonify/series/dataset"
)

// Probe identifies one of the five THEMIS spacecraft, "A" to "E".
type Probe string

// ParseProbe normalizes s to an upper-case probe letter.
func ParseProbe(s string) (Probe, error) {
	p := Probe(strings.ToUpper(strings.TrimSpace(s)))
	if len(p) != 1 || p[0] < 'A' || p[0] > 'E' {
		return "", fmt.Errorf("%w: unknown probe %q (want A-E)", ErrInvalidRequest, s)
	}

	return p, nil
}

// Instrument names one of the three acquired data products.
type Instrument string

const (
	InstrumentField    Instrument = "field"
	InstrumentPosition Instrument = "position"
	InstrumentPlasma   Instrument = "plasma"
)

// Canonical column names of acquired series.
const (
	ColumnX         = "x"
	ColumnY         = "y"
	ColumnZ         = "z"
	ColumnRadius    = "radius"
	ColumnDensity   = "density"
	ColumnVelocityX = "velocity_x"
	ColumnFluxX     = "flux_x"
	ColumnFluxY     = "flux_y"
)

// Request selects a time range on one probe.
type Request struct {
	Start time.Time
	End   time.Time
	Probe Probe
}

// Validate reports whether r describes a non-empty range on a known probe.
func (r Request) Validate() error {
	if !r.End.After(r.Start) {
		return fmt.Errorf("%w: end %s is not after start %s", ErrInvalidRequest, r.End, r.Start)
	}

	if _, err := ParseProbe(string(r.Probe)); err != nil {
		return err
	}

	return nil
}

// Column is one named series of an acquired product.
type Column struct {
	Name   string
	Values []float64
}

// Series is a time-tagged table delivered by an Acquirer.
type Series struct {
	Times   []time.Time
	Columns []Column
}

// Column returns the values of the named column.
func (s Series) Column(name string) ([]float64, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c.Values, true
		}
	}

	return nil, false
}

func (s Series) require(instrument Instrument, names ...string) ([]dataset.Channel, error) {
	channels := make([]dataset.Channel, len(names))

	for i, name := range names {
		values, ok := s.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %s series has no %q column", ErrMissingField, instrument, name)
		}

		channels[i] = dataset.Channel{Key: dataset.Name(name), Values: values}
	}

	return channels, nil
}

// Acquirer fetches raw instrument data. Implementations own retries and
// timeouts.
type Acquirer interface {
	FetchMagneticField(ctx context.Context, req Request) (Series, error)
	FetchPosition(ctx context.Context, req Request) (Series, error)
	FetchPlasma(ctx context.Context, req Request) (Series, error)
}

// Fetch dispatches to the Acquirer method for instrument.
func Fetch(ctx context.Context, acq Acquirer, instrument Instrument, req Request) (Series, error) {
	switch instrument {
	case InstrumentField:
		return acq.FetchMagneticField(ctx, req)
	case InstrumentPosition:
		return acq.FetchPosition(ctx, req)
	case InstrumentPlasma:
		return acq.FetchPlasma(ctx, req)
	default:
		return Series{}, fmt.Errorf("%w: unknown instrument %q", ErrInvalidRequest, instrument)
	}
}

// Acquire fetches the field, position and, if withPlasma is set, the plasma
// moments concurrently. Each fetch returns its own result; they are assigned
// to the returned MagnetometerData only after all fetches succeeded. The first
// failure cancels the remaining fetches.
//
// Samples with duplicate or out-of-order timestamps are dropped.
func Acquire(ctx context.Context, acq Acquirer, req Request, withPlasma bool) (*MagnetometerData, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var field, position, plasma Series

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := acq.FetchMagneticField(gctx, req)
		if err != nil {
			return fmt.Errorf("mission: fetch %s: %w", InstrumentField, err)
		}

		field = s

		return nil
	})

	g.Go(func() error {
		s, err := acq.FetchPosition(gctx, req)
		if err != nil {
			return fmt.Errorf("mission: fetch %s: %w", InstrumentPosition, err)
		}

		position = s

		return nil
	})

	if withPlasma {
		g.Go(func() error {
			s, err := acq.FetchPlasma(gctx, req)
			if err != nil {
				return fmt.Errorf("mission: fetch %s: %w", InstrumentPlasma, err)
			}

			plasma = s

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := &MagnetometerData{}

	var err error
	if m.MagneticField, err = vectorFromSeries(InstrumentField, field); err != nil {
		return nil, err
	}

	if m.Position, m.Radius, err = positionFromSeries(position); err != nil {
		return nil, err
	}

	if withPlasma {
		if m.Plasma, err = plasmaFromSeries(plasma); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func vectorFromSeries(instrument Instrument, s Series) (*dataset.Vector, error) {
	named, err := s.require(instrument, ColumnX, ColumnY, ColumnZ)
	if err != nil {
		return nil, err
	}

	channels := make([]dataset.Channel, len(named))
	for i, ch := range named {
		channels[i] = dataset.Channel{Key: dataset.Index(i), Values: ch.Values}
	}

	ds, err := dataset.NewFromTimes(s.Times, channels)
	if err != nil {
		return nil, fmt.Errorf("mission: %s: %w", instrument, err)
	}

	return dataset.AsVector(ds)
}

// positionFromSeries splits a position series into the vector and the radial
// distance. Without a radius column the radius is the vector magnitude.
func positionFromSeries(s Series) (*dataset.Vector, *dataset.Dataset, error) {
	pos, err := vectorFromSeries(InstrumentPosition, s)
	if err != nil {
		return nil, nil, err
	}

	radius, ok := s.Column(ColumnRadius)
	if !ok {
		mag := pos.Magnitude()
		values := mag.MustChannel(dataset.Index(0))

		r, err := dataset.New(pos.Axis(), dataset.Channel{Key: dataset.Name(ColumnRadius), Values: values})

		return pos, r, err
	}

	r, err := dataset.NewFromTimes(s.Times, []dataset.Channel{{Key: dataset.Name(ColumnRadius), Values: radius}})
	if err != nil {
		return nil, nil, fmt.Errorf("mission: %s radius: %w", InstrumentPosition, err)
	}

	return pos, r, nil
}

func plasmaFromSeries(s Series) (*dataset.Dataset, error) {
	channels, err := s.require(InstrumentPlasma, ColumnDensity, ColumnVelocityX, ColumnFluxX, ColumnFluxY)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.NewFromTimes(s.Times, channels)
	if err != nil {
		return nil, fmt.Errorf("mission: %s: %w", InstrumentPlasma, err)
	}

	return ds, nil
}

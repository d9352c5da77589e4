package mission

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/cwbudde/algo-magsonify/series/dataset"
	"github.com/cwbudde/algo-magsonify/series/timeaxis"
)

// MagnetometerData holds the state of one processing run. Each field can be
// replaced independently; steps that combine fields check that their time
// axes are equal.
type MagnetometerData struct {
	MagneticField *dataset.Vector
	MeanField     *dataset.Vector
	// Position is in Earth radii.
	Position *dataset.Vector
	// Radius holds the radial distance in Earth radii, keyed "radius".
	Radius *dataset.Dataset
	// Plasma holds the electron moments keyed density, velocity_x, flux_x
	// and flux_y.
	Plasma               *dataset.Dataset
	MeanFieldCoordinates *dataset.Vector
}

// SheathThresholds select magnetosheath samples: beyond Radius, any of a
// density above Density, a sunward velocity below VelocityX or a perpendicular
// flux above PerpFlux marks the sample.
type SheathThresholds struct {
	Radius    float64
	Density   float64
	VelocityX float64
	PerpFlux  float64
}

// DefaultSheathThresholds returns the THEMIS electron-moment criteria.
func DefaultSheathThresholds() SheathThresholds {
	return SheathThresholds{Radius: 8, Density: 10, VelocityX: -200, PerpFlux: 2e7}
}

// ResampleReport counts extrapolated samples per resampled field.
type ResampleReport map[string]dataset.InterpolationReport

// ResampleUniform resamples every acquired field onto a uniform axis with
// the given cadence spanning the magnetic field's time range.
func (m *MagnetometerData) ResampleUniform(cadence time.Duration, opts ...dataset.InterpolateOption) (ResampleReport, error) {
	if m.MagneticField == nil {
		return nil, fmt.Errorf("%w: magnetic field", ErrMissingField)
	}

	axis := m.MagneticField.Axis()

	target, err := timeaxis.Generate(axis.Start(), axis.End(), cadence)
	if err != nil {
		return nil, fmt.Errorf("mission: resample axis: %w", err)
	}

	type field struct {
		name string
		ds   *dataset.Dataset
	}

	fields := []field{{"magnetic_field", m.MagneticField.Dataset}}
	if m.Position != nil {
		fields = append(fields, field{"position", m.Position.Dataset})
	}

	if m.Radius != nil {
		fields = append(fields, field{"radius", m.Radius})
	}

	if m.Plasma != nil {
		fields = append(fields, field{"plasma", m.Plasma})
	}

	report := make(ResampleReport, len(fields))

	for _, f := range fields {
		r, err := f.ds.Interpolate(target, opts...)
		if err != nil {
			return report, fmt.Errorf("mission: resample %s: %w", f.name, err)
		}

		report[f.name] = r
	}

	return report, nil
}

// ComputeMeanField clamps the field to ±limit, sets MeanField to its running
// average over window and subtracts it from MagneticField.
func (m *MagnetometerData) ComputeMeanField(limit float64, window time.Duration) error {
	if m.MagneticField == nil {
		return fmt.Errorf("%w: magnetic field", ErrMissingField)
	}

	m.MagneticField.ConstrainAbsoluteValue(limit)

	mean, err := m.MagneticField.RunningAverage(dataset.ByDuration(window))
	if err != nil {
		return fmt.Errorf("mission: mean field: %w", err)
	}

	residual, err := m.MagneticField.Sub(mean)
	if err != nil {
		return fmt.Errorf("mission: mean field: %w", err)
	}

	m.MeanField = mean
	m.MagneticField = residual

	return nil
}

// FillLessThanRadius sets the magnetic field to value wherever the radial
// distance is below radius.
func (m *MagnetometerData) FillLessThanRadius(radius, value float64) error {
	r, err := m.radius()
	if err != nil {
		return err
	}

	mask := make([]bool, len(r))
	for i, v := range r {
		mask[i] = v < radius
	}

	return m.MagneticField.FillMask(mask, value)
}

// RemoveMagnetosheath sets the magnetic field to value wherever the plasma
// moments identify magnetosheath plasma.
func (m *MagnetometerData) RemoveMagnetosheath(th SheathThresholds, value float64) error {
	r, err := m.radius()
	if err != nil {
		return err
	}

	if m.Plasma == nil {
		return fmt.Errorf("%w: plasma moments", ErrMissingField)
	}

	if err := m.MagneticField.SameAxis(m.Plasma); err != nil {
		return fmt.Errorf("mission: magnetosheath: %w", err)
	}

	cols := make([][]float64, 4)
	for i, name := range []string{ColumnDensity, ColumnVelocityX, ColumnFluxX, ColumnFluxY} {
		c, ok := m.Plasma.Channel(dataset.Name(name))
		if !ok {
			return fmt.Errorf("%w: plasma %s", ErrMissingField, name)
		}

		cols[i] = c
	}

	density, vx, fx, fy := cols[0], cols[1], cols[2], cols[3]

	mask := make([]bool, len(r))
	for i := range mask {
		mask[i] = r[i] > th.Radius &&
			(density[i] > th.Density || vx[i] < th.VelocityX || math.Hypot(fx[i], fy[i]) > th.PerpFlux)
	}

	return m.MagneticField.FillMask(mask, value)
}

// radius returns the radial distance after checking it shares the field's axis.
func (m *MagnetometerData) radius() ([]float64, error) {
	if m.MagneticField == nil {
		return nil, fmt.Errorf("%w: magnetic field", ErrMissingField)
	}

	if m.Radius == nil {
		return nil, fmt.Errorf("%w: radius", ErrMissingField)
	}

	if err := m.MagneticField.SameAxis(m.Radius); err != nil {
		return nil, fmt.Errorf("mission: radius: %w", err)
	}

	r, ok := m.Radius.Channel(dataset.Name(ColumnRadius))
	if !ok {
		return nil, fmt.Errorf("%w: radius channel", ErrMissingField)
	}

	return r, nil
}

// Basis returns the mean-field unit vectors: the field direction, the
// poloidal direction field × earthward and the toroidal direction
// field × poloidal.
func (m *MagnetometerData) Basis() (field, pol, tor *dataset.Vector, err error) {
	if m.MeanField == nil {
		return nil, nil, nil, fmt.Errorf("%w: mean field", ErrMissingField)
	}

	if m.Position == nil {
		return nil, nil, nil, fmt.Errorf("%w: position", ErrMissingField)
	}

	field = m.MeanField.Copy()
	field.MakeUnitVector()

	earthward := m.Position.Neg()
	earthward.MakeUnitVector()

	if pol, err = field.Cross(earthward); err != nil {
		return nil, nil, nil, fmt.Errorf("mission: poloidal direction: %w", err)
	}

	pol.MakeUnitVector()

	if tor, err = field.Cross(pol); err != nil {
		return nil, nil, nil, fmt.Errorf("mission: toroidal direction: %w", err)
	}

	tor.MakeUnitVector()

	return field, pol, tor, nil
}

// ConvertToMeanFieldCoordinates projects the magnetic field onto Basis.
func (m *MagnetometerData) ConvertToMeanFieldCoordinates() error {
	if m.MagneticField == nil {
		return fmt.Errorf("%w: magnetic field", ErrMissingField)
	}

	field, pol, tor, err := m.Basis()
	if err != nil {
		return err
	}

	mfc, err := m.MagneticField.CoordinateTransform(field, pol, tor)
	if err != nil {
		return fmt.Errorf("mission: mean-field coordinates: %w", err)
	}

	m.MeanFieldCoordinates = mfc

	return nil
}

// Config controls a Pipeline run.
type Config struct {
	Cadence         time.Duration
	ClampLimit      float64
	MeanFieldWindow time.Duration
	// MinRadius is the radial distance in Earth radii below which the field
	// is zeroed.
	MinRadius           float64
	RemoveMagnetosheath bool
	Sheath              SheathThresholds
	// GuardMargin bounds resampling extrapolation in sample intervals.
	GuardMargin float64
}

// DefaultConfig returns 3 s cadence, a 400 nT clamp, a 35 min mean field and
// a 4 R_E inner cutoff.
func DefaultConfig() Config {
	return Config{
		Cadence:         3 * time.Second,
		ClampLimit:      400,
		MeanFieldWindow: 35 * time.Minute,
		MinRadius:       4,
		Sheath:          DefaultSheathThresholds(),
		GuardMargin:     1,
	}
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithConfig replaces the processing parameters.
func WithConfig(cfg Config) Option {
	return func(p *Pipeline) { p.cfg = cfg }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// Pipeline turns acquired magnetometer data into a field in mean-field
// coordinates.
type Pipeline struct {
	acq    Acquirer
	cfg    Config
	logger *slog.Logger
}

// NewPipeline creates a pipeline reading from acq.
func NewPipeline(acq Acquirer, opts ...Option) *Pipeline {
	p := &Pipeline{
		acq:    acq,
		cfg:    DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}

	return p
}

// Config returns the processing parameters.
func (p *Pipeline) Config() Config { return p.cfg }

// Run acquires req and processes it. The result has MeanFieldCoordinates set
// with non-finite samples replaced by 0.
func (p *Pipeline) Run(ctx context.Context, req Request) (*MagnetometerData, error) {
	log := p.logger.With(slog.String("probe", string(req.Probe)))
	start := time.Now()

	m, err := Acquire(ctx, p.acq, req, p.cfg.RemoveMagnetosheath)
	if err != nil {
		return nil, err
	}

	log.Info("acquired",
		slog.Int("field_samples", m.MagneticField.Len()),
		slog.Int("position_samples", m.Position.Len()),
		slog.Duration("elapsed", time.Since(start)))

	if err := p.Process(m); err != nil {
		return nil, err
	}

	log.Info("processed",
		slog.Int("samples", m.MeanFieldCoordinates.Len()),
		slog.Duration("elapsed", time.Since(start)))

	return m, nil
}

// Process runs every step after acquisition on m.
func (p *Pipeline) Process(m *MagnetometerData) error {
	cfg := p.cfg

	report, err := m.ResampleUniform(cfg.Cadence, dataset.WithGuardMargin(cfg.GuardMargin))
	if err != nil {
		return err
	}

	for name, r := range report {
		if r.BeyondMargin > 0 {
			p.logger.Warn("resampling beyond guard margin",
				slog.String("field", name),
				slog.Int("extrapolated", r.Extrapolated),
				slog.Int("beyond_margin", r.BeyondMargin))
		} else if r.Any() {
			p.logger.Debug("resampling extrapolated", slog.String("field", name), slog.Int("extrapolated", r.Extrapolated))
		}
	}

	if err := m.ComputeMeanField(cfg.ClampLimit, cfg.MeanFieldWindow); err != nil {
		return err
	}

	if err := m.FillLessThanRadius(cfg.MinRadius, 0); err != nil {
		return err
	}

	if cfg.RemoveMagnetosheath {
		if err := m.RemoveMagnetosheath(cfg.Sheath, 0); err != nil {
			return err
		}

		p.logger.Debug("magnetosheath removed")
	}

	if err := m.ConvertToMeanFieldCoordinates(); err != nil {
		return err
	}

	m.MeanFieldCoordinates.FillNaN(0)

	return nil
}

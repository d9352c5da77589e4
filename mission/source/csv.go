// Package source provides file-backed mission.Acquirer implementations for
// offline processing.
package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cwbudde/algo-magsonify/mission"
)

// ErrFormat reports a malformed CSV export.
var ErrFormat = errors.New("source: malformed csv")

// CSV reads CDAWeb text exports from a directory. Each product lives in
// <dir>/<product ID>.csv, e.g. THD_L2_FGM.csv. The first column holds RFC
// 3339 timestamps; the header names the remaining columns, either with the
// CDAWeb labels (BX_FGS-D) or the canonical names (x). Empty cells and
// fill values read as NaN.
type CSV struct {
	dir string
	// FillValue marks missing data in the export. CDAWeb uses -1e31.
	FillValue float64
}

// NewCSV returns an acquirer reading from dir.
func NewCSV(dir string) *CSV {
	return &CSV{dir: dir, FillValue: -1e31}
}

// FetchMagneticField implements mission.Acquirer.
func (c *CSV) FetchMagneticField(ctx context.Context, req mission.Request) (mission.Series, error) {
	return c.fetch(ctx, mission.InstrumentField, req)
}

// FetchPosition implements mission.Acquirer.
func (c *CSV) FetchPosition(ctx context.Context, req mission.Request) (mission.Series, error) {
	return c.fetch(ctx, mission.InstrumentPosition, req)
}

// FetchPlasma implements mission.Acquirer.
func (c *CSV) FetchPlasma(ctx context.Context, req mission.Request) (mission.Series, error) {
	return c.fetch(ctx, mission.InstrumentPlasma, req)
}

// Path returns the file read for instrument on probe.
func (c *CSV) Path(probe mission.Probe, instrument mission.Instrument) (string, error) {
	product, err := mission.THEMIS(probe, instrument)
	if err != nil {
		return "", err
	}

	return filepath.Join(c.dir, product.ID+".csv"), nil
}

func (c *CSV) fetch(ctx context.Context, instrument mission.Instrument, req mission.Request) (mission.Series, error) {
	product, err := mission.THEMIS(req.Probe, instrument)
	if err != nil {
		return mission.Series{}, err
	}

	path := filepath.Join(c.dir, product.ID+".csv")

	f, err := os.Open(path)
	if err != nil {
		return mission.Series{}, fmt.Errorf("source: %w", err)
	}
	defer f.Close()

	s, err := c.read(ctx, f, product, req)
	if err != nil {
		return mission.Series{}, fmt.Errorf("source: %s: %w", filepath.Base(path), err)
	}

	return s, nil
}

func (c *CSV) read(ctx context.Context, r io.Reader, product mission.Product, req mission.Request) (mission.Series, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return mission.Series{}, fmt.Errorf("%w: header: %w", ErrFormat, err)
	}

	if len(header) < 2 {
		return mission.Series{}, fmt.Errorf("%w: need a time column and at least one value column", ErrFormat)
	}

	cr.FieldsPerRecord = len(header)

	s := mission.Series{Columns: make([]mission.Column, len(header)-1)}
	for i, label := range header[1:] {
		s.Columns[i].Name = product.Canonical(strings.TrimSpace(label))
	}

	for line := 2; ; line++ {
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return mission.Series{}, err
			}
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return mission.Series{}, fmt.Errorf("%w: %w", ErrFormat, err)
		}

		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(rec[0]))
		if err != nil {
			return mission.Series{}, fmt.Errorf("%w: line %d: %w", ErrFormat, line, err)
		}

		if ts.Before(req.Start) || ts.After(req.End) {
			continue
		}

		s.Times = append(s.Times, ts)

		for i, cell := range rec[1:] {
			v, err := c.parseValue(cell)
			if err != nil {
				return mission.Series{}, fmt.Errorf("%w: line %d column %q: %w", ErrFormat, line, header[i+1], err)
			}

			s.Columns[i].Values = append(s.Columns[i].Values, v)
		}
	}

	return s, nil
}

func (c *CSV) parseValue(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return math.NaN(), nil
	}

	v, err := strconv.ParseFloat(cell, 64)
	if err != nil {
		return 0, err
	}

	if v == c.FillValue {
		return math.NaN(), nil
	}

	return v, nil
}

// WriteSeries writes s in the format read by CSV, with canonical column names.
func WriteSeries(w io.Writer, s mission.Series) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(s.Columns)+1)
	header = append(header, "time")

	for _, c := range s.Columns {
		if len(c.Values) != len(s.Times) {
			return fmt.Errorf("%w: column %q has %d values for %d timestamps", ErrFormat, c.Name, len(c.Values), len(s.Times))
		}

		header = append(header, c.Name)
	}

	if err := cw.Write(header); err != nil {
		return err
	}

	rec := make([]string, len(header))
	for i, t := range s.Times {
		rec[0] = t.UTC().Format(time.RFC3339Nano)
		for j, c := range s.Columns {
			rec[j+1] = strconv.FormatFloat(c.Values[i], 'g', -1, 64)
		}

		if err := cw.Write(rec); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

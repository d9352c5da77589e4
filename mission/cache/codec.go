package cache

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/cwbudde/algo-magsonify/mission"
)

var errCorrupt = errors.New("cache: corrupt entry")

// codec packs a series into a compact value: timestamps as delta-of-delta
// varints, each column as XOR-ed float bits, both zstd-compressed.
type codec struct {
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func newCodec(level zstd.EncoderLevel) (*codec, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("cache: zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("cache: zstd decoder: %w", err)
	}

	return &codec{encoder: encoder, decoder: decoder}, nil
}

func (c *codec) close() {
	c.encoder.Close()
	c.decoder.Close()
}

// An entry is framed as uvarint sample and column counts followed by
// length-prefixed fields: the compressed timestamps, then each column's
// name and compressed values.

func (c *codec) encode(s mission.Series) ([]byte, error) {
	buf := binary.AppendUvarint(nil, uint64(len(s.Times)))
	buf = binary.AppendUvarint(buf, uint64(len(s.Columns)))
	buf = appendField(buf, c.encoder.EncodeAll(encodeTimes(s.Times), nil))

	for _, col := range s.Columns {
		if len(col.Values) != len(s.Times) {
			return nil, fmt.Errorf("cache: column %q has %d values for %d timestamps", col.Name, len(col.Values), len(s.Times))
		}

		buf = appendField(buf, []byte(col.Name))
		buf = appendField(buf, c.encoder.EncodeAll(encodeValues(col.Values), nil))
	}

	return buf, nil
}

func (c *codec) decode(data []byte) (mission.Series, error) {
	r := fieldReader{buf: data}

	count := r.uvarint()
	ncols := r.uvarint()
	times := r.field()

	// Every column needs at least two length prefixes.
	if r.err != nil || ncols > uint64(len(r.buf))/2+1 {
		return mission.Series{}, fmt.Errorf("%w: header", errCorrupt)
	}

	s := mission.Series{Columns: make([]mission.Column, ncols)}
	blobs := make([][]byte, ncols)

	for i := range s.Columns {
		s.Columns[i].Name = string(r.field())
		blobs[i] = r.field()
	}

	if r.err != nil {
		return mission.Series{}, fmt.Errorf("%w: columns", errCorrupt)
	}

	if len(r.buf) != 0 {
		return mission.Series{}, fmt.Errorf("%w: %d trailing bytes", errCorrupt, len(r.buf))
	}

	if count == 0 {
		return s, nil
	}

	raw, err := c.decoder.DecodeAll(times, nil)
	if err != nil {
		return mission.Series{}, fmt.Errorf("%w: %w", errCorrupt, err)
	}

	// Each timestamp takes at least one varint byte.
	if count > uint64(len(raw)) {
		return mission.Series{}, fmt.Errorf("%w: %d timestamps in %d bytes", errCorrupt, count, len(raw))
	}

	n := int(count)

	if s.Times, err = decodeTimes(raw, n); err != nil {
		return mission.Series{}, err
	}

	for i, blob := range blobs {
		name := s.Columns[i].Name

		raw, err := c.decoder.DecodeAll(blob, nil)
		if err != nil {
			return mission.Series{}, fmt.Errorf("%w: column %q: %w", errCorrupt, name, err)
		}

		values, err := decodeValues(raw, n)
		if err != nil {
			return mission.Series{}, fmt.Errorf("column %q: %w", name, err)
		}

		s.Columns[i].Values = values
	}

	return s, nil
}

func appendField(buf, field []byte) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(field)))
	return append(buf, field...)
}

// fieldReader consumes a framed entry. The first failure sticks.
type fieldReader struct {
	buf []byte
	err error
}

func (r *fieldReader) uvarint() uint64 {
	if r.err != nil {
		return 0
	}

	v, n := binary.Uvarint(r.buf)
	if n <= 0 {
		r.err = errCorrupt
		return 0
	}

	r.buf = r.buf[n:]

	return v
}

func (r *fieldReader) field() []byte {
	size := r.uvarint()
	if r.err != nil {
		return nil
	}

	if size > uint64(len(r.buf)) {
		r.err = errCorrupt
		return nil
	}

	f := r.buf[:size:size]
	r.buf = r.buf[size:]

	return f
}

func encodeTimes(times []time.Time) []byte {
	buf := make([]byte, 0, len(times)*2+binary.MaxVarintLen64)

	var prev, prevDelta int64
	for i, t := range times {
		ns := t.UnixNano()
		if i == 0 {
			buf = binary.AppendVarint(buf, ns)
		} else {
			delta := ns - prev
			buf = binary.AppendVarint(buf, delta-prevDelta)
			prevDelta = delta
		}

		prev = ns
	}

	return buf
}

func decodeTimes(buf []byte, count int) ([]time.Time, error) {
	times := make([]time.Time, count)

	var prev, prevDelta int64
	for i := range count {
		v, n := binary.Varint(buf)
		if n <= 0 {
			return nil, fmt.Errorf("%w: timestamp %d", errCorrupt, i)
		}

		buf = buf[n:]

		if i == 0 {
			prev = v
		} else {
			prevDelta += v
			prev += prevDelta
		}

		times[i] = time.Unix(0, prev).UTC()
	}

	return times, nil
}

func encodeValues(values []float64) []byte {
	buf := make([]byte, 0, len(values)*8)

	var prev uint64
	for _, v := range values {
		bits := math.Float64bits(v)
		buf = binary.LittleEndian.AppendUint64(buf, bits^prev)
		prev = bits
	}

	return buf
}

func decodeValues(buf []byte, count int) ([]float64, error) {
	if len(buf) != count*8 {
		return nil, fmt.Errorf("%w: %d value bytes for %d samples", errCorrupt, len(buf), count)
	}

	values := make([]float64, count)

	var prev uint64
	for i := range values {
		prev ^= binary.LittleEndian.Uint64(buf[i*8:])
		values[i] = math.Float64frombits(prev)
	}

	return values, nil
}

// Package cache memoizes a mission.Acquirer in a local badger store so that
// repeated runs over the same interval skip the remote fetch.
package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/cwbudde/algo-magsonify/mission"
)

const keyVersion = "v1"

type config struct {
	level    zstd.EncoderLevel
	inMemory bool
	logger   *slog.Logger
}

// Option configures a Cache.
type Option func(*config)

// WithCompression sets the zstd encoder level. Default zstd.SpeedDefault.
func WithCompression(level zstd.EncoderLevel) Option {
	return func(c *config) { c.level = level }
}

// InMemory keeps the store in memory; the path passed to Open is ignored.
func InMemory() Option {
	return func(c *config) { c.inMemory = true }
}

// WithLogger sets the logger for hits, misses and store failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Cache is a mission.Acquirer that serves series from the store and falls back
// to the wrapped Acquirer on a miss. Failed fetches are not stored.
type Cache struct {
	next   mission.Acquirer
	db     *badger.DB
	codec  *codec
	logger *slog.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// Open opens or creates the store at path in front of next.
func Open(path string, next mission.Acquirer, opts ...Option) (*Cache, error) {
	if next == nil {
		return nil, errors.New("cache: nil acquirer")
	}

	cfg := config{
		level:  zstd.SpeedDefault,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	bopts := badger.DefaultOptions(path)
	if cfg.inMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	}

	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("cache: open store: %w", err)
	}

	c, err := newCodec(cfg.level)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{next: next, db: db, codec: c, logger: cfg.logger}, nil
}

// Close releases the store.
func (c *Cache) Close() error {
	c.codec.close()
	return c.db.Close()
}

// Hits returns the number of fetches served from the store.
func (c *Cache) Hits() int64 { return c.hits.Load() }

// Misses returns the number of fetches forwarded to the wrapped Acquirer.
func (c *Cache) Misses() int64 { return c.misses.Load() }

// FetchMagneticField implements mission.Acquirer.
func (c *Cache) FetchMagneticField(ctx context.Context, req mission.Request) (mission.Series, error) {
	return c.fetch(ctx, mission.InstrumentField, req)
}

// FetchPosition implements mission.Acquirer.
func (c *Cache) FetchPosition(ctx context.Context, req mission.Request) (mission.Series, error) {
	return c.fetch(ctx, mission.InstrumentPosition, req)
}

// FetchPlasma implements mission.Acquirer.
func (c *Cache) FetchPlasma(ctx context.Context, req mission.Request) (mission.Series, error) {
	return c.fetch(ctx, mission.InstrumentPlasma, req)
}

// Invalidate removes the stored entry for instrument and req, if any.
func (c *Cache) Invalidate(instrument mission.Instrument, req mission.Request) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(instrument, req))
	})
}

func (c *Cache) fetch(ctx context.Context, instrument mission.Instrument, req mission.Request) (mission.Series, error) {
	log := c.logger.With(
		slog.String("probe", string(req.Probe)),
		slog.String("instrument", string(instrument)),
	)

	k := key(instrument, req)

	s, ok, err := c.load(k)
	if err != nil {
		log.Warn("cache read failed", slog.Any("error", err))
	}

	if ok {
		c.hits.Add(1)
		log.Debug("cache hit", slog.Int("samples", len(s.Times)))

		return s, nil
	}

	c.misses.Add(1)

	s, err = mission.Fetch(ctx, c.next, instrument, req)
	if err != nil {
		return mission.Series{}, err
	}

	if err := c.store(k, s); err != nil {
		log.Warn("cache write failed", slog.Any("error", err))
	} else {
		log.Debug("cache miss stored", slog.Int("samples", len(s.Times)))
	}

	return s, nil
}

func (c *Cache) load(k []byte) (mission.Series, bool, error) {
	var value []byte

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)

		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return mission.Series{}, false, nil
	}

	if err != nil {
		return mission.Series{}, false, err
	}

	s, err := c.codec.decode(value)
	if err != nil {
		return mission.Series{}, false, err
	}

	return s, true, nil
}

func (c *Cache) store(k []byte, s mission.Series) error {
	value, err := c.codec.encode(s)
	if err != nil {
		return err
	}

	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set(k, value)
	})
}

func key(instrument mission.Instrument, req mission.Request) []byte {
	return fmt.Appendf(nil, "%s/%s/%s/%d/%d",
		keyVersion, req.Probe, instrument, req.Start.UnixNano(), req.End.UnixNano())
}

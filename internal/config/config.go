// Package config loads the magsonify YAML configuration and turns it into
// options for the mission, stretch and audio packages.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-magsonify/audio"
	"github.com/cwbudde/algo-magsonify/dsp/stretch"
	"github.com/cwbudde/algo-magsonify/dsp/window"
	"github.com/cwbudde/algo-magsonify/mission"
)

// ErrInvalid reports a configuration value outside its domain.
var ErrInvalid = errors.New("config: invalid value")

// Stretch methods.
const (
	MethodVocoder = "vocoder"
	MethodWavelet = "wavelet"
)

// Config is the top-level configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline"`
	Stretch  StretchConfig  `yaml:"stretch"`
	Audio    AudioConfig    `yaml:"audio"`
	Cache    CacheConfig    `yaml:"cache"`
	Log      LogConfig      `yaml:"log"`
}

// PipelineConfig mirrors mission.Config.
type PipelineConfig struct {
	Cadence             time.Duration `yaml:"cadence"`
	ClampLimit          float64       `yaml:"clamp_limit"` // nT
	MeanFieldWindow     time.Duration `yaml:"mean_field_window"`
	MinRadius           float64       `yaml:"min_radius"` // Earth radii
	RemoveMagnetosheath bool          `yaml:"remove_magnetosheath"`
	GuardMargin         float64       `yaml:"guard_margin"` // sample intervals
}

// StretchConfig selects and tunes the time-stretch engine.
type StretchConfig struct {
	Method       string  `yaml:"method"` // vocoder | wavelet
	Factor       float64 `yaml:"factor"`
	FrameSize    int     `yaml:"frame_size"`
	HopDivisor   int     `yaml:"hop_divisor"` // synthesis hop = frame_size / hop_divisor
	Window       string  `yaml:"window"`
	PhaseLocking *bool   `yaml:"phase_locking"`
	Octaves      float64 `yaml:"octaves"`
	BandOverlap  float64 `yaml:"band_overlap"`
}

// AudioConfig controls WAV rendering.
type AudioConfig struct {
	SampleRate int     `yaml:"sample_rate"`
	BitDepth   int     `yaml:"bit_depth"`
	Dither     string  `yaml:"dither"` // none | rectangular | triangular
	Peak       float64 `yaml:"peak"`
	Stereo     bool    `yaml:"stereo"`
}

// CacheConfig enables the acquisition cache when Path is set.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()

	return cfg
}

// LoadFile reads a YAML configuration file. Missing fields take defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

// Parse decodes YAML, applies defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	def := mission.DefaultConfig()

	if c.Pipeline.Cadence <= 0 {
		c.Pipeline.Cadence = def.Cadence
	}
	if c.Pipeline.ClampLimit <= 0 {
		c.Pipeline.ClampLimit = def.ClampLimit
	}
	if c.Pipeline.MeanFieldWindow <= 0 {
		c.Pipeline.MeanFieldWindow = def.MeanFieldWindow
	}
	if c.Pipeline.MinRadius <= 0 {
		c.Pipeline.MinRadius = def.MinRadius
	}
	if c.Pipeline.GuardMargin <= 0 {
		c.Pipeline.GuardMargin = def.GuardMargin
	}

	if c.Stretch.Method == "" {
		c.Stretch.Method = MethodVocoder
	}
	if c.Stretch.Factor <= 0 {
		c.Stretch.Factor = 16
	}
	if c.Stretch.FrameSize <= 0 {
		c.Stretch.FrameSize = 512
	}
	if c.Stretch.HopDivisor <= 0 {
		c.Stretch.HopDivisor = 16
	}
	if c.Stretch.Window == "" {
		c.Stretch.Window = window.TypeHann.String()
	}
	if c.Stretch.PhaseLocking == nil {
		enabled := true
		c.Stretch.PhaseLocking = &enabled
	}
	if c.Stretch.Octaves <= 0 {
		c.Stretch.Octaves = 16
	}
	if c.Stretch.BandOverlap <= 0 {
		c.Stretch.BandOverlap = 0.5
	}

	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 44100
	}
	if c.Audio.BitDepth <= 0 {
		c.Audio.BitDepth = 16
	}
	if c.Audio.Dither == "" {
		c.Audio.Dither = audio.DitherTriangular.String()
	}
	if c.Audio.Peak <= 0 {
		c.Audio.Peak = 1
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	switch c.Stretch.Method {
	case MethodVocoder, MethodWavelet:
	default:
		return fmt.Errorf("%w: stretch.method %q", ErrInvalid, c.Stretch.Method)
	}

	if _, err := window.Parse(c.Stretch.Window); err != nil {
		return fmt.Errorf("%w: stretch.window: %w", ErrInvalid, err)
	}

	if c.Stretch.HopDivisor > c.Stretch.FrameSize {
		return fmt.Errorf("%w: stretch.hop_divisor %d exceeds frame_size %d", ErrInvalid, c.Stretch.HopDivisor, c.Stretch.FrameSize)
	}

	if _, err := audio.ParseDither(c.Audio.Dither); err != nil {
		return fmt.Errorf("%w: audio.dither: %w", ErrInvalid, err)
	}

	if c.Audio.Peak > 1 {
		return fmt.Errorf("%w: audio.peak %g exceeds full scale", ErrInvalid, c.Audio.Peak)
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalid, c.Log.Format)
	}

	return nil
}

// Mission returns the pipeline parameters.
func (c *Config) Mission() mission.Config {
	cfg := mission.DefaultConfig()
	cfg.Cadence = c.Pipeline.Cadence
	cfg.ClampLimit = c.Pipeline.ClampLimit
	cfg.MeanFieldWindow = c.Pipeline.MeanFieldWindow
	cfg.MinRadius = c.Pipeline.MinRadius
	cfg.RemoveMagnetosheath = c.Pipeline.RemoveMagnetosheath
	cfg.GuardMargin = c.Pipeline.GuardMargin

	return cfg
}

// Stretcher builds the configured stretch engine.
func (c *Config) Stretcher(observer stretch.Observer) (stretch.Stretcher, error) {
	if c.Stretch.Method == MethodWavelet {
		w, err := stretch.NewWavelet(
			stretch.WithOctaves(c.Stretch.Octaves),
			stretch.WithBandOverlap(c.Stretch.BandOverlap),
		)
		if err != nil {
			return nil, err
		}

		return w, nil
	}

	wt, err := window.Parse(c.Stretch.Window)
	if err != nil {
		return nil, err
	}

	opts := []stretch.VocoderOption{
		stretch.WithFrameSize(c.Stretch.FrameSize),
		stretch.WithSynthesisHop(c.Stretch.FrameSize / c.Stretch.HopDivisor),
		stretch.WithWindow(wt),
		stretch.WithPhaseLocking(c.Stretch.PhaseLocking == nil || *c.Stretch.PhaseLocking),
	}

	if observer != nil {
		opts = append(opts, stretch.WithObserver(observer))
	}

	v, err := stretch.NewPhaseVocoder(opts...)
	if err != nil {
		return nil, err
	}

	return v, nil
}

// AudioOptions returns the rendering options.
func (c *Config) AudioOptions() ([]audio.Option, error) {
	dt, err := audio.ParseDither(c.Audio.Dither)
	if err != nil {
		return nil, err
	}

	return []audio.Option{
		audio.WithSampleRate(c.Audio.SampleRate),
		audio.WithBitDepth(c.Audio.BitDepth),
		audio.WithDither(dt),
	}, nil
}

// Logger builds a slog logger writing to w.
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("%w: log.level %q", ErrInvalid, s)
	}

	return level, nil
}

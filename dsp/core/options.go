package core

import "time"

// ProcessorConfig holds the sampling settings shared by generators and
// renderers. SampleRate is in Hz of whatever time base the samples live on:
// the spacecraft cadence for data, the playback rate for audio.
type ProcessorConfig struct {
	SampleRate float64
	// BlockSize is the number of frames handed to an encoder per write.
	BlockSize int
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns CD-rate defaults.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate: 44100,
		BlockSize:  4096,
	}
}

// SamplePeriod returns the spacing between samples, or 0 if the rate is unset.
func (c ProcessorConfig) SamplePeriod() time.Duration {
	if !(c.SampleRate > 0) {
		return 0
	}

	return time.Duration(float64(time.Second) / c.SampleRate)
}

// WithSampleRate sets the sample rate in Hz. Non-positive values are ignored.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithSamplePeriod sets the sample rate from a cadence, e.g. 3 s for
// spin-resolution magnetometer data. Non-positive values are ignored.
func WithSamplePeriod(period time.Duration) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if period > 0 {
			cfg.SampleRate = 1 / period.Seconds()
		}
	}
}

// WithBlockSize sets the encoder block size. Non-positive values are ignored.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// ApplyProcessorOptions applies opts to the defaults.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

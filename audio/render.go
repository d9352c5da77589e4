package audio

import (
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-magsonify/dsp/core"
)

const wavFormatPCM = 1

// Option configures rendering.
type Option func(*config)

type config struct {
	proc     core.ProcessorConfig
	bitDepth int
	dither   DitherType
	seed     uint64
}

func defaultConfig() config {
	return config{
		proc:     core.DefaultProcessorConfig(),
		bitDepth: 16,
		dither:   DitherTriangular,
		seed:     1,
	}
}

// WithSampleRate sets the WAV sample rate in Hz. The default is 44100.
func WithSampleRate(sampleRate int) Option {
	return func(c *config) {
		c.proc.SampleRate = float64(sampleRate)
	}
}

// WithBitDepth sets the PCM word length: 16 (default) or 24 bits.
func WithBitDepth(bits int) Option {
	return func(c *config) {
		c.bitDepth = bits
	}
}

// WithDither selects the quantization dither. The default is triangular.
func WithDither(dt DitherType) Option {
	return func(c *config) {
		c.dither = dt
	}
}

// WithSeed fixes the dither noise sequence.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
	}
}

// WithBlockSize sets how many frames are handed to the encoder per write.
func WithBlockSize(frames int) Option {
	return func(c *config) {
		core.WithBlockSize(frames)(&c.proc)
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	sr := cfg.proc.SampleRate
	if !(sr >= 1) || sr != math.Trunc(sr) || sr > math.MaxUint32 {
		return cfg, fmt.Errorf("%w: %g", errSampleRate, sr)
	}

	switch cfg.bitDepth {
	case 16, 24:
	default:
		return cfg, fmt.Errorf("%w: %d", errBitDepth, cfg.bitDepth)
	}

	if cfg.dither < 0 || cfg.dither >= ditherTypeCount {
		return cfg, fmt.Errorf("audio: unknown dither type %d", int(cfg.dither))
	}

	return cfg, nil
}

// Render writes channels as an interleaved PCM WAV to w. One channel gives a
// mono file, two a stereo file. Every sample must be finite and lie in
// [-1, 1]; callers normalize beforehand.
func Render(w io.WriteSeeker, channels [][]float64, opts ...Option) error {
	cfg, err := applyOptions(opts)
	if err != nil {
		return err
	}

	if err := validate(channels); err != nil {
		return err
	}

	numCh := len(channels)
	frames := len(channels[0])
	block := cfg.proc.BlockSize
	q := newQuantizer(cfg.bitDepth, cfg.dither, cfg.seed)

	enc := wav.NewEncoder(w, int(cfg.proc.SampleRate), cfg.bitDepth, numCh, wavFormatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: numCh, SampleRate: int(cfg.proc.SampleRate)},
		Data:           make([]int, 0, block*numCh),
		SourceBitDepth: cfg.bitDepth,
	}

	for start := 0; start < frames; start += block {
		end := min(start+block, frames)
		buf.Data = buf.Data[:0]

		for i := start; i < end; i++ {
			for _, ch := range channels {
				buf.Data = append(buf.Data, q.quantize(ch[i]))
			}
		}

		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("audio: write frames %d-%d: %w", start, end, err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("audio: finalize wav: %w", err)
	}

	return nil
}

// RenderMono writes a single-channel WAV.
func RenderMono(w io.WriteSeeker, samples []float64, opts ...Option) error {
	return Render(w, [][]float64{samples}, opts...)
}

// RenderVector mixes three components to stereo with mix and writes them.
// Both channels are scaled by a common factor if the mix exceeds unity, so
// the balance between them is kept.
func RenderVector(w io.WriteSeeker, mix StereoMix, x, y, z []float64, opts ...Option) error {
	left, right, err := mix.Apply(x, y, z)
	if err != nil {
		return err
	}

	if peak := max(core.PeakAbs(left), core.PeakAbs(right)); peak > 1 {
		for i := range left {
			left[i] /= peak
			right[i] /= peak
		}
	}

	return Render(w, [][]float64{left, right}, opts...)
}

// WriteFile renders channels to the WAV file at path.
func WriteFile(path string, channels [][]float64, opts ...Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("audio: %w", err)
	}

	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("audio: %w", cerr)
		}
	}()

	return Render(f, channels, opts...)
}

func validate(channels [][]float64) error {
	if len(channels) == 0 || len(channels) > 2 {
		return fmt.Errorf("%w: %d channels", ErrInvalidLayout, len(channels))
	}

	frames := len(channels[0])
	if frames == 0 {
		return fmt.Errorf("%w: no samples", ErrInvalidLayout)
	}

	for c, ch := range channels {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidLayout, c, len(ch), frames)
		}

		for i, v := range ch {
			if !core.IsFinite(v) || math.Abs(v) > 1 {
				return fmt.Errorf("%w: channel %d sample %d = %g", ErrOutOfRange, c, i, v)
			}
		}
	}

	return nil
}

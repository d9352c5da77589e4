package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-magsonify/audio"
	"github.com/cwbudde/algo-magsonify/dsp/core"
	"github.com/cwbudde/algo-magsonify/dsp/signal"
	"github.com/cwbudde/algo-magsonify/dsp/spectrum"
)

var errToneSyntax = errors.New("tone must be FREQ_HZ[:AMPLITUDE[:PHASE_RAD]]")

type simulateFlags struct {
	tones   []string
	cadence time.Duration
	samples int
	noise   float64
	seed    uint64
	factor  float64
	out     string
}

func newSimulateCmd(a *app) *cobra.Command {
	var fl simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Stretch a synthetic tone bundle and report the pitch mapping",
		Long: "simulate samples a sum of sinusoids at the data cadence, stretches it\n" +
			"with the configured engine and writes the result as a WAV file. It prints\n" +
			"the dominant frequency of the input (in data time) and of the audio.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSimulate(cmd, a, fl)
		},
	}

	f := cmd.Flags()
	f.StringArrayVar(&fl.tones, "tone", []string{"0.005:1"}, "tone FREQ_HZ[:AMPLITUDE[:PHASE_RAD]], repeatable")
	f.DurationVar(&fl.cadence, "cadence", 3*time.Second, "sample spacing of the synthetic record")
	f.IntVar(&fl.samples, "samples", 4096, "number of input samples")
	f.Float64Var(&fl.noise, "noise", 0, "peak amplitude of added white noise")
	f.Uint64Var(&fl.seed, "seed", 1, "noise seed")
	f.Float64Var(&fl.factor, "factor", 0, "stretch factor (overrides stretch.factor)")
	f.StringVarP(&fl.out, "out", "o", "simulated.wav", "output WAV file")

	return cmd
}

func parseTone(s string) (signal.Tone, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return signal.Tone{}, fmt.Errorf("%w: %q", errToneSyntax, s)
	}

	vals := []float64{0, 1, 0}

	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return signal.Tone{}, fmt.Errorf("%w: %q", errToneSyntax, s)
		}

		vals[i] = v
	}

	if !(vals[0] > 0) {
		return signal.Tone{}, fmt.Errorf("%w: frequency must be > 0 in %q", errToneSyntax, s)
	}

	return signal.Tone{Frequency: vals[0], Amplitude: vals[1], Phase: vals[2]}, nil
}

func runSimulate(cmd *cobra.Command, a *app, fl simulateFlags) error {
	cfg := a.cfg

	tones := make([]signal.Tone, 0, len(fl.tones))
	for _, s := range fl.tones {
		tone, err := parseTone(s)
		if err != nil {
			return err
		}

		tones = append(tones, tone)
	}

	if fl.cadence <= 0 {
		return fmt.Errorf("cadence must be > 0: %s", fl.cadence)
	}

	gen := signal.NewGeneratorWithOptions(
		[]core.ProcessorOption{core.WithSamplePeriod(fl.cadence)},
		signal.WithSeed(fl.seed),
	)

	input, err := gen.Tones(fl.samples, tones...)
	if err != nil {
		return err
	}

	if fl.noise > 0 {
		noise, err := gen.WhiteNoise(fl.noise, fl.samples)
		if err != nil {
			return err
		}

		for i, v := range noise {
			input[i] += v
		}
	}

	stretcher, err := cfg.Stretcher(nil)
	if err != nil {
		return err
	}

	factor := cfg.Stretch.Factor
	if fl.factor > 0 {
		factor = fl.factor
	}

	start := time.Now()

	stretched, err := stretcher.Stretch(input, factor)
	if err != nil {
		return err
	}

	a.logger.Info("stretched",
		slog.String("method", cfg.Stretch.Method),
		slog.Float64("factor", factor),
		slog.Int("samples", len(stretched)),
		slog.Duration("elapsed", time.Since(start)))

	normalized, err := signal.Normalize(stretched, cfg.Audio.Peak)
	if err != nil {
		return err
	}

	opts, err := cfg.AudioOptions()
	if err != nil {
		return err
	}

	if err := audio.WriteFile(fl.out, [][]float64{normalized}, opts...); err != nil {
		return err
	}

	dataRate := gen.Config().SampleRate

	inFreq, err := spectrum.DominantFrequency(input, dataRate)
	if err != nil {
		return err
	}

	outFreq, err := spectrum.DominantFrequency(stretched, float64(cfg.Audio.SampleRate))
	if err != nil {
		return err
	}

	// Frequency per sample is preserved; playback at the audio rate maps
	// data-time frequency f to f * sampleRate / dataRate.
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Signal\tSamples\tRate [Hz]\tDominant [Hz]\tCycles/sample\n")
	fmt.Fprintf(tw, "input\t%d\t%.6g\t%.6g\t%.6f\n", len(input), dataRate, inFreq, inFreq/dataRate)
	fmt.Fprintf(tw, "audio\t%d\t%d\t%.6g\t%.6f\n", len(stretched), cfg.Audio.SampleRate, outFreq, outFreq/float64(cfg.Audio.SampleRate))
	fmt.Fprintf(tw, "file\t%s\t\t\t\n", fl.out)

	return tw.Flush()
}

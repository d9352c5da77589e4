package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-magsonify/audio"
	"github.com/cwbudde/algo-magsonify/mission"
	"github.com/cwbudde/algo-magsonify/mission/cache"
	"github.com/cwbudde/algo-magsonify/mission/source"
	"github.com/cwbudde/algo-magsonify/series/dataset"
)

// componentNames label the mean-field coordinate channels in output files.
var componentNames = [3]string{"field", "poloidal", "toroidal"}

type processFlags struct {
	data    string
	probe   string
	start   string
	end     string
	out     string
	cache   string
	factor  float64
	stereo  bool
	sheath  bool
	noCache bool
}

func newProcessCmd(a *app) *cobra.Command {
	var fl processFlags

	cmd := &cobra.Command{
		Use:   "process",
		Short: "Run the mission pipeline on CSV exports and write WAV files",
		Long: "process reads <data>/<product>.csv exports (e.g. THD_L2_FGM.csv), resamples\n" +
			"and projects the field into mean-field coordinates, then stretches each\n" +
			"component into <out>/<probe>_<component>.wav.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runProcess(cmd, a, fl)
		},
	}

	f := cmd.Flags()
	f.StringVar(&fl.data, "data", "", "directory holding the CSV exports (required)")
	f.StringVar(&fl.probe, "probe", "", "THEMIS probe A-E (required)")
	f.StringVar(&fl.start, "start", "", "interval start, RFC 3339 (required)")
	f.StringVar(&fl.end, "end", "", "interval end, RFC 3339 (required)")
	f.StringVarP(&fl.out, "out", "o", ".", "output directory")
	f.StringVar(&fl.cache, "cache", "", "acquisition cache directory (overrides cache.path)")
	f.BoolVar(&fl.noCache, "no-cache", false, "bypass the acquisition cache")
	f.Float64Var(&fl.factor, "factor", 0, "stretch factor (overrides stretch.factor)")
	f.BoolVar(&fl.stereo, "stereo", false, "write one stereo file instead of one file per component")
	f.BoolVar(&fl.sheath, "remove-magnetosheath", false, "mask magnetosheath intervals using plasma moments")

	for _, name := range []string{"data", "probe", "start", "end"} {
		_ = cmd.MarkFlagRequired(name)
	}

	return cmd
}

func runProcess(cmd *cobra.Command, a *app, fl processFlags) error {
	cfg := a.cfg
	log := a.logger

	probe, err := mission.ParseProbe(fl.probe)
	if err != nil {
		return err
	}

	start, err := time.Parse(time.RFC3339, fl.start)
	if err != nil {
		return fmt.Errorf("parse --start: %w", err)
	}

	end, err := time.Parse(time.RFC3339, fl.end)
	if err != nil {
		return fmt.Errorf("parse --end: %w", err)
	}

	req := mission.Request{Start: start, End: end, Probe: probe}
	if err := req.Validate(); err != nil {
		return err
	}

	var acq mission.Acquirer = source.NewCSV(fl.data)

	cachePath := cfg.Cache.Path
	if fl.cache != "" {
		cachePath = fl.cache
	}

	if cachePath != "" && !fl.noCache {
		c, err := cache.Open(cachePath, acq, cache.WithLogger(log))
		if err != nil {
			return err
		}

		defer func() {
			log.Debug("cache closed", slog.Int64("hits", c.Hits()), slog.Int64("misses", c.Misses()))
			closeLogged(log, c, "cache close failed", slog.String("path", cachePath))
		}()

		acq = c
	}

	mcfg := cfg.Mission()
	if fl.sheath {
		mcfg.RemoveMagnetosheath = true
	}

	pipeline := mission.NewPipeline(acq, mission.WithConfig(mcfg), mission.WithLogger(log))

	m, err := pipeline.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	stretcher, err := cfg.Stretcher(nil)
	if err != nil {
		return err
	}

	factor := cfg.Stretch.Factor
	if fl.factor > 0 {
		factor = fl.factor
	}

	stereo := fl.stereo || cfg.Audio.Stereo
	keys := []dataset.Key{dataset.Index(0), dataset.Index(1), dataset.Index(2)}

	var components [3][]float64

	if stereo {
		// One scale for all three so the mix keeps their relative levels.
		ds, err := mission.SonifyJoint(m.MeanFieldCoordinates.Dataset, stretcher, factor, cfg.Audio.Peak, keys...)
		if err != nil {
			return fmt.Errorf("sonify: %w", err)
		}

		for i, k := range keys {
			components[i] = ds.MustChannel(k)
		}
	} else {
		for i, k := range keys {
			ds, err := mission.Sonify(m.MeanFieldCoordinates.Dataset, k, stretcher, factor, cfg.Audio.Peak)
			if err != nil {
				return fmt.Errorf("sonify %s: %w", componentNames[i], err)
			}

			components[i] = ds.MustChannel(dataset.Index(0))
		}
	}

	if err := os.MkdirAll(fl.out, 0o755); err != nil {
		return err
	}

	opts, err := cfg.AudioOptions()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if stereo {
		path := filepath.Join(fl.out, fmt.Sprintf("%s_stereo.wav", probe))
		if err := writeStereo(path, components, opts); err != nil {
			return err
		}

		fmt.Fprintln(out, path)

		return nil
	}

	for i, samples := range components {
		path := filepath.Join(fl.out, fmt.Sprintf("%s_%s.wav", probe, componentNames[i]))
		if err := audio.WriteFile(path, [][]float64{samples}, opts...); err != nil {
			return err
		}

		log.Info("wrote", slog.String("path", path), slog.Int("samples", len(samples)))
		fmt.Fprintln(out, path)
	}

	return nil
}

func writeStereo(path string, c [3][]float64, opts []audio.Option) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return audio.RenderVector(f, audio.DefaultStereoMix, c[0], c[1], c[2], opts...)
}

// closeLogged closes c and reports a failure at Warn. It serves deferred
// closes whose error cannot change the command's result.
func closeLogged(log *slog.Logger, c io.Closer, msg string, attrs ...any) {
	if err := c.Close(); err != nil {
		log.Warn(msg, append(attrs, slog.Any("error", err))...)
	}
}

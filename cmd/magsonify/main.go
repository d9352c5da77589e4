// Command magsonify turns spacecraft magnetometer records into audio.
//
// Usage:
//
//	magsonify process  --data DIR --probe D --start T0 --end T1 [--out DIR]
//	magsonify simulate --tone 0.005:1 [--tone 0.012:0.5] [--out sim.wav]
//	magsonify windows  [--size 1024] [window-name ...]
//
// Every command reads an optional YAML configuration (--config); flags
// override it.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-magsonify/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// app is the state shared by subcommands after the root pre-run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	var (
		configPath string
		logLevel   string
		logFormat  string
	)

	root := &cobra.Command{
		Use:   "magsonify",
		Short: "Sonify magnetometer data",
		Long: "magsonify resamples magnetometer records, projects them into mean-field\n" +
			"coordinates and time-stretches each component into an audible WAV file.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Default()

			if configPath != "" {
				loaded, err := config.LoadFile(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}

				cfg = loaded
			}

			if logLevel != "" {
				cfg.Log.Level = logLevel
			}

			if logFormat != "" {
				cfg.Log.Format = logFormat
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cfg.Logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger

			return nil
		},
	}

	f := root.PersistentFlags()
	f.StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	f.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(newProcessCmd(a))
	root.AddCommand(newSimulateCmd(a))
	root.AddCommand(newWindowsCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

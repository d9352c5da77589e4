package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-magsonify/dsp/window"
)

func newWindowsCmd() *cobra.Command {
	var (
		size     int
		periodic bool
	)

	cmd := &cobra.Command{
		Use:   "windows [window-name ...]",
		Short: "List the analysis windows usable by the phase vocoder",
		Long: "windows prints measured spectral properties of each window type. Without\n" +
			"arguments it lists every type accepted by stretch.window.",
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if len(names) == 0 {
				names = window.Names()
			}

			var opts []window.Option
			if periodic {
				opts = append(opts, window.WithPeriodic())
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "Window\tSize\tCoherent Gain\tENBW [bins]\tBW 3dB [bins]\tSidelobe [dB]\t1st Min [bins]\tScallop [dB]\n")

			for _, name := range names {
				t, err := window.Parse(name)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
					continue
				}

				a, err := window.Analyze(window.Generate(t, size, opts...))
				if err != nil {
					return fmt.Errorf("analyze %s: %w", t, err)
				}

				label := t.String()
				if alpha := window.Info(t).DefaultAlpha; alpha != 0 {
					label = fmt.Sprintf("%s (a=%.2f)", label, alpha)
				}

				fmt.Fprintf(tw, "%s\t%d\t%.6f\t%.4f\t%.4f\t%.2f\t%.4f\t%.4f\n",
					label, size,
					a.CoherentGain, a.ENBW, a.Bandwidth3dB,
					a.HighestSidelobedB, a.FirstMinimumBins, a.ScallopLossdB)
			}

			return tw.Flush()
		},
	}

	f := cmd.Flags()
	f.IntVar(&size, "size", 1024, "window length in samples")
	f.BoolVar(&periodic, "periodic", false, "use the periodic (FFT) form instead of the symmetric one")

	return cmd
}

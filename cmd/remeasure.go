package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/RyanBlaney/formant-extract/internal/app"
)

var (
	remeasureOutputDir   string
	remeasureStem        string
	remeasureSummaryFile string
)

var remeasureCmd = &cobra.Command{
	Use:   "remeasure [flags] <measurements.json>",
	Short: "Rerun the speaker-specific remeasurement pass",
	Long: `Remeasure a saved measurement set against the speaker's own vowel
distributions.

The set must have been written by "extract" with output.save_measurements
enabled and Mahalanobis prediction. Outputs go to <stem>_remeasured.*.

Examples:
  formant-extract remeasure out/speaker1.measurements.json`,
	Args: cobra.ExactArgs(1),
	RunE: runRemeasure,
}

func init() {
	rootCmd.AddCommand(remeasureCmd)

	remeasureCmd.Flags().StringVar(&remeasureOutputDir, "output-dir", "",
		"directory for measurement files (overrides output.dir)")
	remeasureCmd.Flags().StringVar(&remeasureStem, "stem", "",
		"base name of the output files (default is <set>_remeasured)")
	remeasureCmd.Flags().StringVar(&remeasureSummaryFile, "summary-file", "",
		"write the run summary to this file instead of stdout")
}

func runRemeasure(cmd *cobra.Command, args []string) error {
	appCtx := newAppContext()
	appCtx.MeasurementsFile = args[0]
	appCtx.OutputDir = remeasureOutputDir
	appCtx.OutputStem = remeasureStem
	appCtx.SummaryFile = remeasureSummaryFile

	remeasureApp, err := app.NewRemeasureApp(appCtx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return remeasureApp.Run(ctx)
}

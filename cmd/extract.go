package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/formant-extract/internal/app"
)

var (
	// Extract command flags
	extractOutputDir   string
	extractStem        string
	extractSummaryFile string
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract [flags] <job-file>",
	Short: "Measure the vowels of one speaker",
	Long: `Measure every vowel of an aligned transcript and write the results.

The job file (YAML, or JSON with a .json extension) holds the speaker,
the aligned words and phones, and for each vowel the formant tracks of
its LPC analyses, given inline or as Praat Formant files.

Examples:
  # Measure with the configured defaults
  formant-extract extract speaker1.yaml

  # Write Plotnik files to a separate directory
  FORMANT_EXTRACT_OUTPUT_FORMAT=plotnik formant-extract extract --output-dir out speaker1.yaml

  # Print the run summary as JSON
  formant-extract extract -o json speaker1.yaml

  # Measure only vowels with primary stress
  formant-extract extract --only-stressed speaker1.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVar(&extractOutputDir, "output-dir", "",
		"directory for measurement files (overrides output.dir)")
	extractCmd.Flags().StringVar(&extractStem, "stem", "",
		"base name of the output files (default is the job file name)")
	extractCmd.Flags().StringVar(&extractSummaryFile, "summary-file", "",
		"write the run summary to this file instead of stdout")
	extractCmd.Flags().Bool("only-stressed", false,
		"skip vowels without primary stress (overrides extraction.only_measure_stressed)")

	viper.BindPFlag("extraction.only_measure_stressed", extractCmd.Flags().Lookup("only-stressed"))
}

func runExtract(cmd *cobra.Command, args []string) error {
	appCtx := newAppContext()
	appCtx.JobFile = args[0]
	appCtx.OutputDir = extractOutputDir
	appCtx.OutputStem = extractStem
	appCtx.SummaryFile = extractSummaryFile

	extractApp, err := app.NewExtractApp(appCtx)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return extractApp.Run(ctx)
}

// newAppContext collects the global flags shared by every command
func newAppContext() *app.Context {
	return &app.Context{
		ConfigFile:    viper.ConfigFileUsed(),
		SummaryFormat: outputFormat,
		LogLevel:      viper.GetString("log_level"),
		Verbose:       verbose,
		Quiet:         quiet,
	}
}

// printFailure reports a failed step in red
func printFailure(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s%s%s\n", ColorRed, fmt.Sprintf(format, args...), ColorReset)
}

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/RyanBlaney/formant-extract/configs"
	"github.com/RyanBlaney/formant-extract/internal/app"
)

// Terminal colours for status lines
const (
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
	ColorReset = "\033[0m"
)

var (
	writeExampleConfig string
	writeExampleJob    string
)

// configTestCmd represents the config test command
var configTestCmd = &cobra.Command{
	Use:   "config-test",
	Short: "Test and display all configuration values",
	Long: `Test configuration loading and display all values to verify proper parsing.

This command loads the configuration, validates it and displays all values
in a structured format. It can also write an example configuration file and
an example job.

Examples:
  # Test with default config file
  formant-extract config-test

  # Test with specific config file
  formant-extract --config /path/to/config.yaml config-test

  # Write starting points for a new project
  formant-extract config-test --write-example formant-extract.yaml --write-example-job job.yaml`,
	RunE: runConfigTest,
}

func init() {
	rootCmd.AddCommand(configTestCmd)

	configTestCmd.Flags().StringVar(&writeExampleConfig, "write-example", "",
		"write the default configuration to this file")
	configTestCmd.Flags().StringVar(&writeExampleJob, "write-example-job", "",
		"write an example job document to this file")
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	if writeExampleConfig != "" {
		if err := app.GenerateExampleConfig(writeExampleConfig); err != nil {
			return err
		}
		fmt.Printf("Example configuration written to %s\n", writeExampleConfig)
	}
	if writeExampleJob != "" {
		if err := app.GenerateExampleJob(writeExampleJob); err != nil {
			return err
		}
		fmt.Printf("Example job written to %s\n", writeExampleJob)
	}
	if writeExampleConfig != "" || writeExampleJob != "" {
		return nil
	}

	fmt.Println("FORMANT EXTRACT CONFIGURATION TEST")
	fmt.Println(strings.Repeat("=", 80))

	// Load configuration
	config, err := configs.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printSection("APPLICATION SETTINGS")
	printKeyValue("Verbose", fmt.Sprintf("%t", config.Verbose))
	printKeyValue("Log Level", config.LogLevel)

	ex := config.Extraction
	printSection("EXTRACTION CONFIGURATION")
	printKeyValue("Measurement Point", ex.MeasurementPointMethod)
	printKeyValue("Formant Prediction", ex.FormantPredictionMethod)
	printKeyValue("Formants", fmt.Sprintf("%d", ex.NFormants))
	printKeyValue("Smoothing", fmt.Sprintf("%d frames", ex.NSmoothing))
	printKeyValue("Min Vowel Duration", fmt.Sprintf("%.3f s", ex.MinVowelDuration))
	printKeyValue("Window Size", fmt.Sprintf("%.3f s", ex.WindowSize))
	printKeyValue("Remeasurement", fmt.Sprintf("%t", ex.Remeasurement))
	printKeyValue("Vowel System", ex.VowelSystem)
	printKeyValue("Only Stressed", fmt.Sprintf("%t", ex.OnlyMeasureStressed))
	printKeyValue("Case", ex.Case)
	printKeyValue("Phoneset", orDefault(ex.Phoneset, "(built-in CMU)"))

	printSubsection("Stop Words")
	printKeyValue("  Remove", fmt.Sprintf("%t", ex.RemoveStopWords))
	printKeyValue("  Words", fmt.Sprintf("(%d) %v", len(ex.StopWords), ex.StopWords))
	printKeyValue("  File", orDefault(ex.StopWordsFile, "(none)"))

	printSection("REFERENCE STATISTICS")
	printKeyValue("Means", orDefault(config.Reference.Means, "(none)"))
	printKeyValue("Covariances", orDefault(config.Reference.Covariances, "(none)"))

	printSection("OUTPUT CONFIGURATION")
	printKeyValue("Directory", config.Output.Dir)
	printKeyValue("Format", config.Output.Format)
	printKeyValue("Header", fmt.Sprintf("%t", config.Output.Header))
	printKeyValue("Candidates", fmt.Sprintf("%t", config.Output.Candidates))
	printKeyValue("Tracks", fmt.Sprintf("%t", config.Output.Tracks))
	printKeyValue("Save Measurements", fmt.Sprintf("%t", config.Output.SaveMeasurements))
	printKeyValue("Summary Format", config.Output.SummaryFormat)
	printKeyValue("Summary File", orDefault(config.Output.SummaryFile, "(stdout)"))

	printSection("METRICS CONFIGURATION")
	printKeyValue("Enabled", fmt.Sprintf("%t", config.Metrics.Enabled))
	printKeyValue("Log File", orDefault(config.Metrics.LogFile, "(none)"))

	fmt.Println()
	if err := configs.ValidateConfig(config); err != nil {
		printFailure("CONFIGURATION INVALID: %v", err)
		return err
	}

	fmt.Println(ColorGreen + strings.Repeat("-", 80))
	fmt.Println("CONFIGURATION TEST COMPLETED SUCCESSFULLY")
	fmt.Printf("Config file: %s\n", orDefault(viper.ConfigFileUsed(), "(defaults only)"))
	fmt.Println(strings.Repeat("=", 80) + ColorReset)

	return nil
}

func printSection(title string) {
	fmt.Printf("\n%s\n", title)
	fmt.Println(strings.Repeat("-", len(title)))
}

func printSubsection(title string) {
	fmt.Printf("\n  %s\n", title)
}

func printKeyValue(key, value string) {
	if value == "" {
		fmt.Printf("%-35s\n", key)
	} else {
		fmt.Printf("%-35s %s\n", key+":", value)
	}
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

package configs

import (
	"github.com/spf13/viper"

	"github.com/RyanBlaney/formant-extract/internal/pipeline"
)

// SetDefaults sets default configuration values for all components
func SetDefaults(v *viper.Viper) {
	// Application defaults
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")

	// Extraction defaults
	v.SetDefault("extraction.measurement_point_method", "faav")
	v.SetDefault("extraction.formant_prediction_method", "mahalanobis")
	v.SetDefault("extraction.n_formants", 5)
	v.SetDefault("extraction.n_smoothing", 12)
	v.SetDefault("extraction.min_vowel_duration", 0.05)
	v.SetDefault("extraction.window_size", 0.025)
	v.SetDefault("extraction.remeasurement", false)
	v.SetDefault("extraction.vowel_system", "NorthAmerican")
	v.SetDefault("extraction.only_measure_stressed", false)
	v.SetDefault("extraction.remove_stop_words", false)
	v.SetDefault("extraction.stop_words", pipeline.DefaultStopWords)
	v.SetDefault("extraction.stop_words_file", "")
	v.SetDefault("extraction.case", "upper")
	v.SetDefault("extraction.phoneset", "")

	// Reference defaults
	v.SetDefault("reference.means", "")
	v.SetDefault("reference.covariances", "")

	// Output defaults
	v.SetDefault("output.dir", ".")
	v.SetDefault("output.format", "text")
	v.SetDefault("output.header", true)
	v.SetDefault("output.candidates", false)
	v.SetDefault("output.tracks", false)
	v.SetDefault("output.save_measurements", false)
	v.SetDefault("output.summary_format", "table")
	v.SetDefault("output.summary_file", "")

	// Metrics defaults
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.log_file", "")
}

// GetDefaultConfig returns a Config struct with all default values set
func GetDefaultConfig() *Config {
	return &Config{
		Verbose:    false,
		LogLevel:   "info",
		Extraction: GetDefaultExtractionConfig(),
		Reference:  ReferenceConfig{},
		Output:     GetDefaultOutputConfig(),
		Metrics:    MetricsConfig{},
	}
}

// GetDefaultExtractionConfig returns the default measurement settings
func GetDefaultExtractionConfig() ExtractionConfig {
	return ExtractionConfig{
		MeasurementPointMethod:  "faav",
		FormantPredictionMethod: "mahalanobis",
		NFormants:               5,
		NSmoothing:              12,
		MinVowelDuration:        0.05,
		WindowSize:              0.025,
		VowelSystem:             "NorthAmerican",
		OnlyMeasureStressed:     false,
		StopWords:               append([]string(nil), pipeline.DefaultStopWords...),
		Case:                    "upper",
	}
}

// GetDefaultOutputConfig returns default output settings
func GetDefaultOutputConfig() OutputConfig {
	return OutputConfig{
		Dir:           ".",
		Format:        "text",
		Header:        true,
		SummaryFormat: "table",
	}
}

// GetDefaultOutputConfigForFormat returns output config adjusted for a
// summary format
func GetDefaultOutputConfigForFormat(format string) OutputConfig {
	base := GetDefaultOutputConfig()

	switch format {
	case "json", "yaml":
		base.SummaryFormat = format
		base.SaveMeasurements = true
	case "csv":
		base.SummaryFormat = format
		base.Header = true
	case "table":
		base.SummaryFormat = format
	default:
		// Keep defaults
	}

	return base
}

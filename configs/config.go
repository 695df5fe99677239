package configs

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/report"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// Config represents the application configuration
type Config struct {
	// Application settings
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Measurement settings
	Extraction ExtractionConfig `mapstructure:"extraction" yaml:"extraction"`

	// Population statistics for Mahalanobis prediction
	Reference ReferenceConfig `mapstructure:"reference" yaml:"reference"`

	// Output files and run summary
	Output OutputConfig `mapstructure:"output" yaml:"output"`

	// Per-run metrics sink
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ExtractionConfig contains the measurement settings
type ExtractionConfig struct {
	MeasurementPointMethod  string   `mapstructure:"measurement_point_method" yaml:"measurement_point_method"`
	FormantPredictionMethod string   `mapstructure:"formant_prediction_method" yaml:"formant_prediction_method"`
	NFormants               int      `mapstructure:"n_formants" yaml:"n_formants"`
	NSmoothing              int      `mapstructure:"n_smoothing" yaml:"n_smoothing"`
	MinVowelDuration        float64  `mapstructure:"min_vowel_duration" yaml:"min_vowel_duration"`
	WindowSize              float64  `mapstructure:"window_size" yaml:"window_size"`
	Remeasurement           bool     `mapstructure:"remeasurement" yaml:"remeasurement"`
	VowelSystem             string   `mapstructure:"vowel_system" yaml:"vowel_system"`
	OnlyMeasureStressed     bool     `mapstructure:"only_measure_stressed" yaml:"only_measure_stressed"`
	RemoveStopWords         bool     `mapstructure:"remove_stop_words" yaml:"remove_stop_words"`
	StopWords               []string `mapstructure:"stop_words" yaml:"stop_words"`
	StopWordsFile           string   `mapstructure:"stop_words_file" yaml:"stop_words_file"`
	Case                    string   `mapstructure:"case" yaml:"case"`
	Phoneset                string   `mapstructure:"phoneset" yaml:"phoneset"`
}

// ReferenceConfig points at the tab-delimited population statistics
type ReferenceConfig struct {
	Means       string `mapstructure:"means" yaml:"means"`
	Covariances string `mapstructure:"covariances" yaml:"covariances"`
}

// OutputConfig contains output settings
type OutputConfig struct {
	Dir              string `mapstructure:"dir" yaml:"dir"`
	Format           string `mapstructure:"format" yaml:"format"`
	Header           bool   `mapstructure:"header" yaml:"header"`
	Candidates       bool   `mapstructure:"candidates" yaml:"candidates"`
	Tracks           bool   `mapstructure:"tracks" yaml:"tracks"`
	SaveMeasurements bool   `mapstructure:"save_measurements" yaml:"save_measurements"`
	SummaryFormat    string `mapstructure:"summary_format" yaml:"summary_format"`
	SummaryFile      string `mapstructure:"summary_file" yaml:"summary_file"`
}

// MetricsConfig contains the metrics sink settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	LogFile string `mapstructure:"log_file" yaml:"log_file"`
}

// LoadConfig loads configuration from viper
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(viper.GetViper())
}

// LoadConfigFrom loads configuration from the given viper instance
func LoadConfigFrom(v *viper.Viper) (*Config, error) {
	config := &Config{}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode configuration: %w", err)
	}

	return config, nil
}

var summaryFormats = map[string]bool{"json": true, "yaml": true, "csv": true, "table": true}

// ValidateConfig validates the configuration
func ValidateConfig(config *Config) error {
	ex := config.Extraction

	if _, err := measure.ParseMethod(ex.MeasurementPointMethod); err != nil {
		return fmt.Errorf("invalid measurement point method: %w", err)
	}

	prediction, err := extract.ParsePredictionMethod(ex.FormantPredictionMethod)
	if err != nil {
		return fmt.Errorf("invalid formant prediction method: %w", err)
	}

	if _, err := plotnik.ParseSystem(ex.VowelSystem); err != nil {
		return fmt.Errorf("invalid vowel system: %w", err)
	}

	if ex.NFormants < 3 || ex.NFormants > 6 {
		return fmt.Errorf("n_formants must be between 3 and 6, got %d", ex.NFormants)
	}

	if ex.NSmoothing < 0 {
		return fmt.Errorf("n_smoothing cannot be negative")
	}

	if ex.MinVowelDuration < 0 {
		return fmt.Errorf("min_vowel_duration cannot be negative")
	}

	if ex.WindowSize < 0 {
		return fmt.Errorf("window_size cannot be negative")
	}

	switch strings.ToLower(ex.Case) {
	case "upper", "lower":
	default:
		return fmt.Errorf("case must be upper or lower, got %q", ex.Case)
	}

	if prediction == extract.PredictMahalanobis && (config.Reference.Means == "" || config.Reference.Covariances == "") {
		return fmt.Errorf("reference means and covariances are required for mahalanobis prediction")
	}

	if ex.Remeasurement && prediction != extract.PredictMahalanobis {
		return fmt.Errorf("remeasurement requires mahalanobis prediction")
	}

	if _, err := report.ParseFormat(config.Output.Format); err != nil {
		return err
	}

	if !summaryFormats[config.Output.SummaryFormat] {
		return fmt.Errorf("unknown summary format %q (json, yaml, csv, table)", config.Output.SummaryFormat)
	}

	if config.Metrics.Enabled && config.Metrics.LogFile == "" {
		return fmt.Errorf("metrics log file is required when metrics are enabled")
	}

	return nil
}

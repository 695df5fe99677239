package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/RyanBlaney/latency-benchmark-common/output"
	"github.com/tunein/go-logging/v7/pkg/logger"
	"github.com/tunein/go-logging/v7/pkg/logger/logtypes"
	"github.com/tunein/go-logging/v7/pkg/rootcollector"
	"github.com/tunein/go-logging/v7/pkg/rootlogger"

	"github.com/RyanBlaney/formant-extract/configs"
	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
	"github.com/RyanBlaney/formant-extract/internal/report"
)

// Context holds the application context and configuration
type Context struct {
	// CLI arguments
	ConfigFile       string
	JobFile          string // Aligned transcript and candidate tracks (extract)
	MeasurementsFile string // Saved measurement set (remeasure)
	OutputDir        string
	OutputStem       string
	SummaryFile      string
	SummaryFormat    string
	LogLevel         string
	Verbose          bool
	Quiet            bool

	// Runtime context
	Logger logging.Logger
	Config *configs.Config
}

// ExtractApp handles the extraction lifecycle
type ExtractApp struct {
	ctx    *Context
	config *configs.Config
	job    *Job
	logger logging.Logger
}

// NewExtractApp creates a new extraction application
func NewExtractApp(ctx *Context) (*ExtractApp, error) {
	// Set up logging
	logger := setupLogging(ctx)
	ctx.Logger = logger

	// Load configuration
	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	if ctx.JobFile == "" {
		return nil, fmt.Errorf("job file is required")
	}
	job, err := LoadJob(ctx.JobFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load job: %w", err)
	}

	logger.Debug("Extraction application initialized", logging.Fields{
		"config_file": ctx.ConfigFile,
		"job_file":    ctx.JobFile,
		"speaker":     job.Speaker.Name,
		"words":       len(job.Words),
		"candidates":  len(job.Candidates),
		"prediction":  config.Extraction.FormantPredictionMethod,
	})

	return &ExtractApp{
		ctx:    ctx,
		config: config,
		job:    job,
		logger: logger,
	}, nil
}

// Run measures the job and writes every configured output
func (app *ExtractApp) Run(ctx context.Context) error {
	start := time.Now()

	cfg, err := buildPipelineConfig(app.config)
	if err != nil {
		return fmt.Errorf("failed to prepare extraction: %w", err)
	}
	if err := app.job.CheckOrders(cfg.Engine.Prediction); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}

	orchestrator, err := pipeline.NewOrchestrator(cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create orchestrator: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	result, err := orchestrator.Run(app.job.Transcript(), NewJobProvider(app.job, app.logger))
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	stem := app.ctx.OutputStem
	if stem == "" {
		stem = strings.TrimSuffix(filepath.Base(app.ctx.JobFile), filepath.Ext(app.ctx.JobFile))
	}

	s := &session{ctx: app.ctx, config: app.config, logger: app.logger}
	return s.finish(result, &cfg.Engine, stem, time.Since(start))
}

// setupLogging configures logging based on context
func setupLogging(ctx *Context) logging.Logger {
	level := strings.ToLower(ctx.LogLevel)
	if ctx.Quiet {
		level = "error"
	}

	switch level {
	case "debug":
		logging.SetLevel(logging.DebugLevel)
	case "warn", "warning":
		logging.SetLevel(logging.WarnLevel)
	case "error":
		logging.SetLevel(logging.ErrorLevel)
	default:
		logging.SetLevel(logging.InfoLevel)
	}

	return logging.NewDefaultLogger()
}

// session holds what both commands need to report a finished run
type session struct {
	ctx    *Context
	config *configs.Config
	logger logging.Logger
}

// finish writes the output files, the run summary and the run metrics
func (s *session) finish(result *pipeline.Result, engine *extract.EngineConfig, stem string, elapsed time.Duration) error {
	writer, err := report.NewWriter(&report.Config{
		Dir:              s.config.Output.Dir,
		Stem:             stem,
		Format:           s.config.Output.Format,
		Header:           s.config.Output.Header,
		Candidates:       s.config.Output.Candidates,
		Tracks:           s.config.Output.Tracks,
		SaveMeasurements: s.config.Output.SaveMeasurements,
	}, engine, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create report writer: %w", err)
	}

	paths, err := writer.Write(result)
	if err != nil {
		return fmt.Errorf("failed to write outputs: %w", err)
	}

	quality := pipeline.NewMetricsCalculator(s.logger).CalculateQualityMetrics(result)

	if s.config.Metrics.Enabled {
		s.collectRunMetrics(result, quality, elapsed)
	}

	if err := s.outputResults(result, quality, paths, elapsed); err != nil {
		return fmt.Errorf("failed to output results: %w", err)
	}

	if result.Stats.Vowels > 0 && result.Stats.Analyzed == 0 {
		return fmt.Errorf("no vowels could be measured")
	}
	return nil
}

// outputResults renders the run summary
func (s *session) outputResults(result *pipeline.Result, quality *pipeline.QualityMetrics, paths []string, elapsed time.Duration) error {
	ex := s.config.Extraction
	outputData := map[string]any{
		"speaker":         result.Speaker.Name,
		"max_formant":     result.MaxFormant,
		"timestamp":       time.Now(),
		"elapsed_seconds": elapsed.Seconds(),
		"stats":           result.Stats,
		"quality_metrics": quality,
		"normalization":   result.Normalization,
		"outputs":         paths,
		"configuration": map[string]any{
			"measurement_point_method":  ex.MeasurementPointMethod,
			"formant_prediction_method": ex.FormantPredictionMethod,
			"n_formants":                ex.NFormants,
			"n_smoothing":               ex.NSmoothing,
			"vowel_system":              ex.VowelSystem,
			"remeasurement":             ex.Remeasurement,
		},
	}

	if result.Remeasurement != nil {
		outputData["remeasurement"] = result.Remeasurement
	}
	if s.config.Verbose {
		outputData["class_means"] = classSummary(result.Means)
	}

	// Create formatter
	var formatter output.Formatter
	switch s.config.Output.SummaryFormat {
	case "json":
		formatter = &output.JSONFormatter{}
	case "yaml":
		formatter = &output.YAMLFormatter{}
	case "csv":
		formatter = &output.CSVFormatter{}
	case "table":
		formatter = &output.TableFormatter{}
	default:
		formatter = &output.JSONFormatter{}
	}

	formattedData, err := formatter.Format(outputData, true)
	if err != nil {
		return fmt.Errorf("failed to format output data: %w", err)
	}

	if s.config.Output.SummaryFile != "" {
		return s.writeToFile(s.config.Output.SummaryFile, formattedData)
	}
	if s.ctx.Quiet {
		return nil
	}

	_, err = os.Stdout.Write(formattedData)
	return err
}

// classSummary lists the statistics of every class with tokens
func classSummary(means []*pipeline.VowelMean) []map[string]any {
	var out []map[string]any
	for _, m := range means {
		if m.Count() == 0 {
			continue
		}
		out = append(out, map[string]any{
			"class":   m.Class,
			"n":       m.Count(),
			"f1_mean": m.Means[0].Mean,
			"f1_stdv": m.Means[0].Stdv,
			"f2_mean": m.Means[1].Mean,
			"f2_stdv": m.Means[1].Stdv,
			"norm_f1": m.NormMeans[0].Mean,
			"norm_f2": m.NormMeans[1].Mean,
		})
	}
	return out
}

// collectRunMetrics sends run metrics to rootcollector
func (s *session) collectRunMetrics(result *pipeline.Result, quality *pipeline.QualityMetrics, elapsed time.Duration) {
	err := rootlogger.Configure(logger.LogOptions{
		Out:          s.config.Metrics.LogFile,
		ReopenSignal: syscall.SIGHUP,
		Level:        logtypes.InfoLevel,
	})
	if err != nil {
		logging.Error(err, "Failed configuring log writer")
	}

	baseTags := []string{
		"speaker:" + result.Speaker.Name,
		"prediction:" + s.config.Extraction.FormantPredictionMethod,
		"measurement_point:" + s.config.Extraction.MeasurementPointMethod,
	}

	stats := result.Stats
	rootcollector.Metric("formant.extract.vowels", int64(stats.Vowels), baseTags)
	rootcollector.Metric("formant.extract.analyzed", int64(stats.Analyzed), baseTags)
	rootcollector.Metric("formant.extract.remeasured", int64(stats.Remeasured), baseTags)
	rootcollector.Metric("formant.extract.duration.milliseconds", elapsed.Milliseconds(), baseTags)

	for reason, n := range quality.SkipReasons {
		tags := append(append([]string{}, baseTags...), "reason:"+reason)
		rootcollector.Metric("formant.extract.skipped", int64(n), tags)
	}

	for order, n := range quality.OrderDistribution {
		tags := append(append([]string{}, baseTags...), "order:"+order)
		rootcollector.Metric("formant.extract.order", int64(n), tags)
	}

	// Vowel durations are reported in whole milliseconds
	if quality.Duration != nil && quality.Duration.Count > 0 {
		rootcollector.Metric("formant.extract.vowel_duration.median.ms", int64(quality.Duration.Median*1000), baseTags)
	}

	s.logger.Debug("Run metrics sent", logging.Fields{
		"log_file": s.config.Metrics.LogFile,
		"reasons":  len(quality.SkipReasons),
		"orders":   strconv.Itoa(len(quality.OrderDistribution)),
	})
}

// writeToFile writes data to the specified output file
func (s *session) writeToFile(path string, data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	s.logger.Debug("Summary written to file", logging.Fields{
		"output_file": path,
		"size_bytes":  len(data),
	})

	return nil
}

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/formant-extract/configs"
	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
	"github.com/RyanBlaney/formant-extract/internal/remeasure"
	"github.com/RyanBlaney/formant-extract/internal/report"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
)

// RemeasureApp reruns the speaker-specific second pass over a saved
// measurement set.
type RemeasureApp struct {
	ctx    *Context
	config *configs.Config
	set    *report.MeasurementSet
	logger logging.Logger
}

// NewRemeasureApp loads the configuration and the saved measurement set
func NewRemeasureApp(ctx *Context) (*RemeasureApp, error) {
	logger := setupLogging(ctx)
	ctx.Logger = logger

	config, err := loadAndMergeConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	ctx.Config = config

	if ctx.MeasurementsFile == "" {
		return nil, fmt.Errorf("measurements file is required")
	}
	set, err := loadMeasurementSet(ctx.MeasurementsFile)
	if err != nil {
		return nil, err
	}

	if set.Prediction != extract.PredictMahalanobis.String() {
		return nil, fmt.Errorf("remeasurement needs a measurement set made with mahalanobis prediction, %s uses %q",
			ctx.MeasurementsFile, set.Prediction)
	}

	logger.Debug("Remeasure application initialized", logging.Fields{
		"measurements_file": ctx.MeasurementsFile,
		"speaker":           set.Speaker.Name,
		"tokens":            len(set.Measurements),
	})

	return &RemeasureApp{ctx: ctx, config: config, set: set, logger: logger}, nil
}

func loadMeasurementSet(path string) (*report.MeasurementSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open measurements file: %w", err)
	}
	defer f.Close()

	set, err := report.ReadMeasurementSet(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Run remeasures the set and writes the outputs under a "_remeasured" stem
func (app *RemeasureApp) Run(ctx context.Context) error {
	start := time.Now()

	if err := ctx.Err(); err != nil {
		return err
	}

	maxFormant, err := app.set.Speaker.MaxFormant()
	if err != nil {
		return err
	}

	rm := remeasure.NewEngine(app.logger).Remeasure(app.set.Measurements)

	result := &pipeline.Result{
		Speaker:       app.set.Speaker,
		MaxFormant:    maxFormant,
		Measurements:  rm.Measurements,
		Remeasurement: rm,
	}
	result.Means = pipeline.CalculateMeans(result.Measurements)
	result.Normalization = pipeline.Normalize(result.Measurements, result.Means)
	result.Stats.Vowels = len(rm.Measurements)
	result.Stats.Analyzed = len(rm.Measurements)
	result.Stats.Remeasured = rm.Changed

	point, err := measure.ParseMethod(app.set.MeasurementPoint)
	if err != nil {
		return fmt.Errorf("measurement set: %w", err)
	}
	engine := &extract.EngineConfig{
		Prediction:       extract.PredictMahalanobis,
		MeasurementPoint: point,
	}

	stem := app.ctx.OutputStem
	if stem == "" {
		base := filepath.Base(app.ctx.MeasurementsFile)
		base = strings.TrimSuffix(base, ".json")
		base = strings.TrimSuffix(base, ".measurements")
		stem = base + "_remeasured"
	}

	s := &session{ctx: app.ctx, config: app.config, logger: app.logger}
	return s.finish(result, engine, stem, time.Since(start))
}

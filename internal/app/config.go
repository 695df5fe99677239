package app

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/formant-extract/configs"
	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
	"github.com/RyanBlaney/formant-extract/pkg/classify"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// loadAndMergeConfig loads configuration from viper and merges CLI flags
func loadAndMergeConfig(ctx *Context) (*configs.Config, error) {
	config, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load base configuration: %w", err)
	}
	mergeContext(config, ctx)

	if err := configs.ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// mergeContext applies CLI flags over file and environment settings
func mergeContext(config *configs.Config, ctx *Context) {
	if ctx.OutputDir != "" {
		config.Output.Dir = ctx.OutputDir
	}
	if ctx.SummaryFormat != "" {
		config.Output.SummaryFormat = ctx.SummaryFormat
	}
	if ctx.SummaryFile != "" {
		config.Output.SummaryFile = ctx.SummaryFile
	}
	if ctx.Verbose {
		config.Verbose = true
	}
}

// buildPipelineConfig resolves the extraction settings into orchestrator
// configuration, loading reference statistics, phoneset and stop words
func buildPipelineConfig(config *configs.Config) (*pipeline.Config, error) {
	ex := config.Extraction

	point, err := measure.ParseMethod(ex.MeasurementPointMethod)
	if err != nil {
		return nil, err
	}
	prediction, err := extract.ParsePredictionMethod(ex.FormantPredictionMethod)
	if err != nil {
		return nil, err
	}
	system, err := plotnik.ParseSystem(ex.VowelSystem)
	if err != nil {
		return nil, err
	}

	cfg := &pipeline.Config{
		Engine: extract.EngineConfig{
			Prediction:       prediction,
			MeasurementPoint: point,
			NFormants:        ex.NFormants,
			NSmoothing:       ex.NSmoothing,
		},
		VowelSystem:      system,
		MinVowelDuration: ex.MinVowelDuration,
		WindowSize:       ex.WindowSize,
		OnlyStressed:     ex.OnlyMeasureStressed,
		RemoveStopWords:  ex.RemoveStopWords,
		StopWords:        ex.StopWords,
		Case:             strings.ToLower(ex.Case),
		Remeasure:        ex.Remeasurement,
	}

	if prediction == extract.PredictMahalanobis {
		refs, err := loadReferences(config.Reference.Means, config.Reference.Covariances)
		if err != nil {
			return nil, err
		}
		cfg.Engine.References = refs
	}

	if ex.Phoneset != "" {
		ps, err := loadPhoneset(ex.Phoneset)
		if err != nil {
			return nil, err
		}
		cfg.Phoneset = ps
	}

	if ex.StopWordsFile != "" {
		words, err := loadStopWords(ex.StopWordsFile)
		if err != nil {
			return nil, err
		}
		cfg.StopWords = append(append([]string(nil), cfg.StopWords...), words...)
	}

	return cfg, nil
}

// loadReferences reads the population means and covariances
func loadReferences(meansFile, covsFile string) (classify.ReferenceSet, error) {
	mf, err := os.Open(meansFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open means file: %w", err)
	}
	defer mf.Close()

	means, err := classify.LoadMeans(mf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", meansFile, err)
	}

	cf, err := os.Open(covsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open covariances file: %w", err)
	}
	defer cf.Close()

	invCovs, err := classify.LoadCovariances(cf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", covsFile, err)
	}

	refs, err := classify.NewReferenceSet(means, invCovs)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("no vowel class has both means and covariances in %s and %s", meansFile, covsFile)
	}
	return refs, nil
}

func loadPhoneset(path string) (plotnik.Phoneset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open phoneset: %w", err)
	}
	defer f.Close()

	ps, err := plotnik.ReadPhoneset(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// loadStopWords reads one word per line, ignoring blank lines
func loadStopWords(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stop words file: %w", err)
	}
	defer f.Close()

	var words []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if w := strings.TrimSpace(scanner.Text()); w != "" {
			words = append(words, w)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stop words: %w", err)
	}
	return words, nil
}

// GenerateExampleConfig writes the default configuration as YAML
func GenerateExampleConfig(outputFile string) error {
	config := configs.GetDefaultConfig()
	config.Reference = configs.ReferenceConfig{Means: "means.txt", Covariances: "covs.txt"}
	return writeYAML(outputFile, config)
}

// GenerateExampleJob writes a small job document with one measurable vowel
func GenerateExampleJob(outputFile string) error {
	frames := func(f1, f2, f3 float64) []FrameSpec {
		out := make([]FrameSpec, 0, 41)
		for i := range 41 {
			out = append(out, FrameSpec{
				T: formant.Round(0.075+float64(i)*0.005, 3),
				F: []float64{f1, f2, f3},
				B: []float64{80, 120, 200},
			})
		}
		return out
	}

	job := &Job{
		Speaker: extract.Speaker{
			Name: "example", FirstName: "Pat", LastName: "Example", Sex: "f", Age: "34",
			Location: "Philadelphia", City: "Philadelphia", State: "PA", Year: "2012", TierNum: 1,
		},
		MaxTime: 1.0,
		Words: []extract.Word{
			{Transcription: "sp", Xmin: 0, Xmax: 0.05, Phones: []extract.Phone{{Label: "sp", Xmin: 0, Xmax: 0.05}}},
			{Transcription: "cat", Xmin: 0.05, Xmax: 0.35, Phones: []extract.Phone{
				{Label: "K", Xmin: 0.05, Xmax: 0.1},
				{Label: "AE1", Xmin: 0.1, Xmax: 0.25},
				{Label: "T", Xmin: 0.25, Xmax: 0.35},
			}},
		},
		Candidates: []VowelCandidates{{
			Word: 1, Phone: 1,
			Orders: []OrderSource{
				{Order: 3, Frames: frames(760, 1650, 2500)},
				{Order: 4, Frames: frames(720, 1720, 2450)},
				{Order: 5, Frames: frames(700, 1750, 2400)},
				{Order: 6, Frames: frames(690, 1200, 1760)},
			},
		}},
	}
	return writeYAML(outputFile, job)
}

func writeYAML(outputFile string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", outputFile, err)
	}

	// Ensure directory exists
	dir := filepath.Dir(outputFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	return nil
}

// Package report writes measurement sets in the tab-delimited, Plotnik and
// JSON formats used by downstream sociophonetic tooling.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
)

// Output formats
const (
	FormatText    = "text"
	FormatPlotnik = "plotnik"
	FormatBoth    = "both"
)

// ParseFormat normalizes an output format name.
func ParseFormat(name string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "txt", "text":
		return FormatText, nil
	case "plotnik", "plt":
		return FormatPlotnik, nil
	case "both":
		return FormatBoth, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text, plotnik, both)", name)
	}
}

// Config controls which files are written and where.
type Config struct {
	Dir              string
	Stem             string
	Format           string
	Header           bool
	Candidates       bool
	Tracks           bool
	SaveMeasurements bool
}

// Writer writes the output files of a run
type Writer struct {
	config *Config
	engine *extract.EngineConfig
	logger logging.Logger
}

// NewWriter creates a new report writer. engine describes the run so
// prediction-specific columns and files can be included.
func NewWriter(cfg *Config, engine *extract.EngineConfig, logger logging.Logger) (*Writer, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	if cfg.Stem == "" {
		return nil, fmt.Errorf("output stem is required")
	}
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	normalized := *cfg
	normalized.Format = format

	return &Writer{
		config: &normalized,
		engine: engine,
		logger: logger.WithFields(logging.Fields{"component": "report_writer"}),
	}, nil
}

// Path returns the path of the output with the given suffix.
func (w *Writer) Path(suffix string) string {
	return filepath.Join(w.config.Dir, w.config.Stem+suffix)
}

// Write writes every enabled output for res and returns the paths written.
func (w *Writer) Write(res *pipeline.Result) ([]string, error) {
	if w.config.Dir != "" {
		if err := os.MkdirAll(w.config.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	mahalanobis := w.engine.Prediction == extract.PredictMahalanobis
	opts := Options{Header: w.config.Header, Candidates: w.config.Candidates, Mahalanobis: mahalanobis}
	text := w.config.Format == FormatText || w.config.Format == FormatBoth
	plt := w.config.Format == FormatPlotnik || w.config.Format == FormatBoth

	type output struct {
		suffix string
		write  func(io.Writer) error
	}
	var outputs []output
	if text {
		outputs = append(outputs,
			output{".txt", func(f io.Writer) error { return WriteText(f, res, opts) }},
			output{"_norm.txt", func(f io.Writer) error { return WriteNormalized(f, res, opts) }},
		)
		if w.config.Tracks {
			outputs = append(outputs, output{".tracks", func(f io.Writer) error { return WriteTracks(f, res) }})
		}
	}
	if plt {
		outputs = append(outputs,
			output{".plt", func(f io.Writer) error { return WritePlotnik(f, res) }},
			output{".pll", func(f io.Writer) error { return WritePlotnikNormalized(f, res) }},
		)
	}
	if mahalanobis {
		name := w.Path(".txt")
		outputs = append(outputs, output{".nFormants", func(f io.Writer) error { return WriteFormantSettings(f, res, name) }})
	}
	if w.config.SaveMeasurements {
		set := NewMeasurementSet(res, w.engine)
		outputs = append(outputs, output{".measurements.json", func(f io.Writer) error { return WriteMeasurementSet(f, set) }})
	}

	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := w.Path(o.suffix)
		if err := writeFile(path, o.write); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		w.logger.Debug("Output written", logging.Fields{
			"path":         path,
			"measurements": len(res.Measurements),
		})
		written = append(written, path)
	}
	return written, nil
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}

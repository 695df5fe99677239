package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
)

// Job is one speaker's aligned transcript together with the LPC analyses
// computed for its vowels.
type Job struct {
	Speaker    extract.Speaker      `json:"speaker" yaml:"speaker"`
	MaxTime    float64              `json:"max_time" yaml:"max_time"`
	Words      []extract.Word       `json:"words" yaml:"words"`
	OtherTiers [][]extract.Interval `json:"other_tiers,omitempty" yaml:"other_tiers,omitempty"`
	StyleTier  []extract.Interval   `json:"style_tier,omitempty" yaml:"style_tier,omitempty"`
	Candidates []VowelCandidates    `json:"candidates" yaml:"candidates"`

	// dir resolves relative Praat file paths.
	dir string
}

// VowelCandidates lists the analyses of one vowel, addressed by word and
// phone index.
type VowelCandidates struct {
	Word  int `json:"word" yaml:"word"`
	Phone int `json:"phone" yaml:"phone"`

	// RelativeTimes marks frame times measured from the start of the padded
	// analysis window rather than from the start of the recording.
	RelativeTimes bool             `json:"relative_times,omitempty" yaml:"relative_times,omitempty"`
	Orders        []OrderSource    `json:"orders" yaml:"orders"`
	Intensity     *IntensitySource `json:"intensity,omitempty" yaml:"intensity,omitempty"`
}

// OrderSource is a formant track at one LPC order, given inline or as a Praat
// Formant file.
type OrderSource struct {
	Order     int         `json:"order" yaml:"order"`
	Frames    []FrameSpec `json:"frames,omitempty" yaml:"frames,omitempty"`
	PraatFile string      `json:"praat_file,omitempty" yaml:"praat_file,omitempty"`
}

// FrameSpec is one inline analysis frame.
type FrameSpec struct {
	T float64   `json:"t" yaml:"t"`
	F []float64 `json:"f" yaml:"f"`
	B []float64 `json:"b" yaml:"b"`
}

// IntensitySource is an intensity contour given inline or as a Praat
// Intensity file.
type IntensitySource struct {
	measure.Intensity `json:",inline" yaml:",inline"`
	PraatFile         string `json:"praat_file,omitempty" yaml:"praat_file,omitempty"`
}

// LoadJob loads a job document, choosing the decoder by file extension
func LoadJob(filePath string) (*Job, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("job file does not exist: %s", filePath)
	}

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open job file: %w", err)
	}
	defer file.Close()

	var job *Job
	switch filepath.Ext(filePath) {
	case ".json":
		job, err = DecodeJobJSON(file)
	default:
		job, err = DecodeJobYAML(file)
	}
	if err != nil {
		return nil, err
	}
	job.dir = filepath.Dir(filePath)

	if err := job.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job %s: %w", filePath, err)
	}
	return job, nil
}

// DecodeJobYAML decodes a YAML job document
func DecodeJobYAML(r io.Reader) (*Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML job: %w", err)
	}

	var job Job
	if err := yaml.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse YAML job: %w", err)
	}
	return &job, nil
}

// DecodeJobJSON decodes a JSON job document
func DecodeJobJSON(r io.Reader) (*Job, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON job: %w", err)
	}

	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to parse JSON job: %w", err)
	}
	return &job, nil
}

// Validate checks that every candidate entry addresses an existing vowel
func (j *Job) Validate() error {
	if j.MaxTime <= 0 {
		for _, w := range j.Words {
			j.MaxTime = max(j.MaxTime, w.Xmax)
		}
	}

	seen := make(map[[2]int]bool, len(j.Candidates))
	for i, c := range j.Candidates {
		if c.Word < 0 || c.Word >= len(j.Words) {
			return fmt.Errorf("candidates %d: word index %d out of range", i, c.Word)
		}
		phones := j.Words[c.Word].Phones
		if c.Phone < 0 || c.Phone >= len(phones) {
			return fmt.Errorf("candidates %d: phone index %d out of range for %q", i, c.Phone, j.Words[c.Word].Transcription)
		}
		key := [2]int{c.Word, c.Phone}
		if seen[key] {
			return fmt.Errorf("candidates %d: duplicate entry for word %d phone %d", i, c.Word, c.Phone)
		}
		seen[key] = true

		for _, o := range c.Orders {
			if o.Order < 1 {
				return fmt.Errorf("candidates %d: invalid order %d", i, o.Order)
			}
			if len(o.Frames) == 0 && o.PraatFile == "" {
				return fmt.Errorf("candidates %d: order %d has neither frames nor a praat file", i, o.Order)
			}
		}
	}
	return nil
}

// CheckOrders rejects LPC orders the prediction method cannot measure.
func (j *Job) CheckOrders(prediction extract.PredictionMethod) error {
	for i, c := range j.Candidates {
		for _, o := range c.Orders {
			if !prediction.Allows(o.Order) {
				return fmt.Errorf("candidates %d: order %d is not measured by %s prediction (want one of %v)",
					i, o.Order, prediction, prediction.Orders(0))
			}
		}
	}
	return nil
}

// Transcript returns the aligned transcript of the job.
func (j *Job) Transcript() *pipeline.Transcript {
	return &pipeline.Transcript{
		Speaker:    j.Speaker,
		Words:      j.Words,
		OtherTiers: j.OtherTiers,
		StyleTier:  j.StyleTier,
		MaxTime:    j.MaxTime,
	}
}

// resolve returns path relative to the job file's directory.
func (j *Job) resolve(path string) string {
	if filepath.IsAbs(path) || j.dir == "" {
		return path
	}
	return filepath.Join(j.dir, path)
}

package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
)

// MeasurementSet is the saved form of one run, complete with every order
// candidate so the set can be remeasured later.
type MeasurementSet struct {
	Speaker          extract.Speaker             `json:"speaker"`
	Prediction       string                      `json:"prediction"`
	MeasurementPoint string                      `json:"measurement_point"`
	Measurements     []*extract.VowelMeasurement `json:"measurements"`
}

// NewMeasurementSet captures the measurements of res.
func NewMeasurementSet(res *pipeline.Result, cfg *extract.EngineConfig) *MeasurementSet {
	return &MeasurementSet{
		Speaker:          res.Speaker,
		Prediction:       cfg.Prediction.String(),
		MeasurementPoint: cfg.MeasurementPoint.String(),
		Measurements:     res.Measurements,
	}
}

// WriteMeasurementSet encodes set as indented JSON.
func WriteMeasurementSet(w io.Writer, set *MeasurementSet) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(set); err != nil {
		return fmt.Errorf("failed to encode measurement set: %w", err)
	}
	return nil
}

// ReadMeasurementSet decodes a set written by WriteMeasurementSet.
func ReadMeasurementSet(r io.Reader) (*MeasurementSet, error) {
	var set MeasurementSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode measurement set: %w", err)
	}
	for i, vm := range set.Measurements {
		if vm == nil {
			return nil, fmt.Errorf("measurement %d is empty", i)
		}
		if len(vm.Candidates) > 0 && (vm.Winner < 0 || vm.Winner >= len(vm.Candidates)) {
			return nil, fmt.Errorf("measurement %d (%s in %s): winner %d out of range", i, vm.Phone, vm.Word, vm.Winner)
		}
	}
	return &set, nil
}

package extract

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/formant-extract/pkg/classify"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
)

// ErrUnknownPrediction is returned for an unrecognised prediction method name.
var ErrUnknownPrediction = errors.New("unknown formant prediction method")

// PredictionMethod selects how the formant order is chosen.
type PredictionMethod int

const (
	// PredictDefault measures a single configured order.
	PredictDefault PredictionMethod = iota
	// PredictMahalanobis measures orders 3..6 and keeps the one closest to
	// the class reference.
	PredictMahalanobis
)

// ParsePredictionMethod converts a configuration name into a PredictionMethod.
func ParsePredictionMethod(name string) (PredictionMethod, error) {
	switch strings.ToLower(name) {
	case "default":
		return PredictDefault, nil
	case "mahalanobis":
		return PredictMahalanobis, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPrediction, name)
	}
}

func (p PredictionMethod) String() string {
	if p == PredictMahalanobis {
		return "mahalanobis"
	}
	return "default"
}

// Orders returns the formant orders a provider must supply.
func (p PredictionMethod) Orders(nFormants int) []int {
	if p == PredictMahalanobis {
		return []int{3, 4, 5, 6}
	}
	return []int{nFormants}
}

// Allows reports whether a Mahalanobis run may measure order. Default
// prediction accepts any order.
func (p PredictionMethod) Allows(order int) bool {
	if p != PredictMahalanobis {
		return true
	}
	return slices.Contains(p.Orders(0), order)
}

// EngineConfig contains configuration for the measurement engine
type EngineConfig struct {
	Prediction       PredictionMethod
	MeasurementPoint measure.Method
	NFormants        int
	NSmoothing       int
	References       classify.ReferenceSet
	Logger           logging.Logger
}

// Validate checks the engine settings.
func (c *EngineConfig) Validate() error {
	if c.NFormants < classify.MinOrder || c.NFormants > formant.MaxFormants {
		return fmt.Errorf("n_formants must be between %d and %d, got %d", classify.MinOrder, formant.MaxFormants, c.NFormants)
	}
	if c.NSmoothing < 0 {
		return fmt.Errorf("n_smoothing must not be negative, got %d", c.NSmoothing)
	}
	if c.Prediction == PredictMahalanobis && len(c.References) == 0 {
		return fmt.Errorf("mahalanobis prediction requires reference statistics")
	}
	return nil
}

// MeasurementEngine measures single vowel tokens
type MeasurementEngine struct {
	logger     logging.Logger
	prediction PredictionMethod
	selector   *measure.Selector
	classifier *classify.Classifier
	nFormants  int
	nSmoothing int
}

// NewMeasurementEngine creates a new measurement engine
func NewMeasurementEngine(config *EngineConfig) *MeasurementEngine {
	logger := config.Logger
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	return &MeasurementEngine{
		logger:     logger.WithFields(logging.Fields{"component": "measurement_engine"}),
		prediction: config.Prediction,
		selector:   measure.NewSelector(config.MeasurementPoint),
		classifier: classify.NewClassifier(config.References),
		nFormants:  config.NFormants,
		nSmoothing: config.NSmoothing,
	}
}

// Prediction returns the engine's prediction method.
func (e *MeasurementEngine) Prediction() PredictionMethod {
	return e.prediction
}

// Measure smooths the candidate tracks of one vowel, picks the measurement
// point and formant order, and assembles the measurement. Context fields
// that depend on neighbouring words are left to the caller.
func (e *MeasurementEngine) Measure(phone Phone, word *Word, cands *Candidates) (*VowelMeasurement, error) {
	fail := func(code, msg string, cause error) error {
		return NewMeasurementError(code, phone.Label, word.Transcription, msg, cause)
	}

	tracks := e.selectTracks(cands)
	if len(tracks) == 0 {
		return nil, fail(ErrCodeNoCandidates, "no candidate tracks", nil)
	}

	vowel := measure.Vowel{
		Label: phone.Base(),
		Class: phone.Code.Class,
		Xmin:  phone.Xmin,
		Xmax:  phone.Xmax,
	}

	var intensity measure.Intensity
	if cands != nil {
		intensity = cands.Intensity
	}

	orders := make([]OrderCandidate, 0, len(tracks))
	for _, ot := range tracks {
		smoothed, err := formant.Smooth(ot.Track, e.nSmoothing)
		if err != nil {
			return nil, fail(ErrCodeTooShortForSmoothing, fmt.Sprintf("order %d too short for smoothing", ot.Order), err)
		}
		if len(smoothed) == 0 {
			return nil, fail(ErrCodeNoCandidates, fmt.Sprintf("order %d has no frames", ot.Order), nil)
		}
		point, err := e.selector.Select(vowel, smoothed, intensity)
		if err != nil {
			return nil, fail(ErrCodeNoMeasurementPoint, fmt.Sprintf("order %d", ot.Order), err)
		}
		frame, _ := smoothed.At(point)
		orders = append(orders, OrderCandidate{
			Order:   ot.Order,
			Point:   point,
			Frame:   frame,
			Samples: formant.SampleTrack(smoothed, phone.Xmin, phone.Xmax),
			Track:   smoothed,
		})
	}

	winner := 0
	distance := formant.Undefined
	if e.prediction == PredictMahalanobis {
		choices := make([]classify.Candidate, len(orders))
		for i, o := range orders {
			choices[i] = classify.Candidate{Order: o.Order, Frame: o.Frame}
		}
		choice, err := e.classifier.Choose(vowel.Class, choices)
		if err != nil {
			return nil, fail(ErrCodeUnmeasurable, "no formant order could be scored", err)
		}
		switch {
		case choice.Fallback:
			e.logger.Debug("No reference for vowel class, using default order", logging.Fields{
				"class": vowel.Class,
				"word":  word.Transcription,
				"order": choice.Order,
			})
		case choice.Unscored:
			e.logger.Debug("No order has two formants, keeping the lowest order", logging.Fields{
				"class": vowel.Class,
				"word":  word.Transcription,
				"order": choice.Order,
			})
		default:
			distance = formant.Some(choice.Distance)
		}
		winner = choice.Index
	}

	if !orders[winner].Frame.F(1).Defined() {
		return nil, fail(ErrCodeUnmeasurable, "no formants at measurement point", nil)
	}

	vm := &VowelMeasurement{
		Phone:      vowel.Label,
		Stress:     phone.Stress(),
		Style:      word.Style,
		Word:       word.Transcription,
		Beg:        formant.Round(phone.Xmin, 3),
		End:        formant.Round(phone.Xmax, 3),
		Dur:        formant.Round(phone.Duration(), 3),
		Code:       phone.Code,
		Candidates: orders,
	}
	vm.Adopt(winner)
	vm.Distance = distance

	if e.prediction == PredictDefault {
		vm.NFormants = 0
	} else if vowel.Label == "AY" {
		vm.Glide = DetectGlide(orders[winner].Track, orders[winner].Point)
	}

	return vm, nil
}

// selectTracks returns the tracks the prediction method measures. Mahalanobis
// prediction only measures the orders it has references for.
func (e *MeasurementEngine) selectTracks(cands *Candidates) []OrderTrack {
	if cands == nil {
		return nil
	}
	if e.prediction == PredictMahalanobis {
		tracks := make([]OrderTrack, 0, len(cands.Tracks))
		for _, t := range cands.Tracks {
			if e.prediction.Allows(t.Order) {
				tracks = append(tracks, t)
			}
		}
		return tracks
	}
	for _, t := range cands.Tracks {
		if t.Order == e.nFormants {
			return []OrderTrack{t}
		}
	}
	if len(cands.Tracks) == 1 {
		return cands.Tracks
	}
	return nil
}

// DetectGlide classifies an /ay/ token as a monophthong "m" when F2 rises
// at most 100 Hz after the measurement point, a weak glide "s" when it rises
// at most 300 Hz, and "" otherwise.
func DetectGlide(track formant.Track, point float64) string {
	idx := track.Index(point)
	if idx < 0 {
		return ""
	}
	start, ok := track[idx].F(2).Get()
	if !ok {
		return ""
	}
	peak := start
	for _, f := range track[idx:] {
		if f2, ok := f.F(2).Get(); ok && f2 > peak {
			peak = f2
		}
	}
	switch movement := formant.Round(peak-start, 3); {
	case movement <= 100:
		return "m"
	case movement <= 300:
		return "s"
	default:
		return ""
	}
}

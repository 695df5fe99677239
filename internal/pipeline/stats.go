package pipeline

import "github.com/RyanBlaney/formant-extract/internal/extract"

// RunStats counts what happened to every vowel of one run
type RunStats struct {
	Vowels               int `json:"vowels" yaml:"vowels"`
	Analyzed             int `json:"analyzed" yaml:"analyzed"`
	Uncertain            int `json:"uncertain" yaml:"uncertain"`
	Overlaps             int `json:"overlaps" yaml:"overlaps"`
	Truncated            int `json:"truncated" yaml:"truncated"`
	StopWords            int `json:"stop_words" yaml:"stop_words"`
	Unstressed           int `json:"unstressed" yaml:"unstressed"`
	TooShort             int `json:"too_short" yaml:"too_short"`
	TooShortForSmoothing int `json:"too_short_for_smoothing" yaml:"too_short_for_smoothing"`
	NoCandidates         int `json:"no_candidates" yaml:"no_candidates"`
	NoMeasurementPoint   int `json:"no_measurement_point" yaml:"no_measurement_point"`
	Unmeasurable         int `json:"unmeasurable" yaml:"unmeasurable"`
	Remeasured           int `json:"remeasured" yaml:"remeasured"`
}

// Skipped returns the number of vowels that produced no measurement.
func (s RunStats) Skipped() int {
	return s.Uncertain + s.Overlaps + s.Truncated + s.StopWords + s.Unstressed + s.TooShort +
		s.TooShortForSmoothing + s.NoCandidates + s.NoMeasurementPoint + s.Unmeasurable
}

// SkipReasons returns the non-zero skip counters keyed by reason.
func (s RunStats) SkipReasons() map[string]int {
	reasons := map[string]int{
		"uncertain":               s.Uncertain,
		"overlap":                 s.Overlaps,
		"truncated":               s.Truncated,
		"stop_word":               s.StopWords,
		"unstressed":              s.Unstressed,
		"too_short":               s.TooShort,
		"too_short_for_smoothing": s.TooShortForSmoothing,
		"no_candidates":           s.NoCandidates,
		"no_measurement_point":    s.NoMeasurementPoint,
		"unmeasurable":            s.Unmeasurable,
	}
	for k, v := range reasons {
		if v == 0 {
			delete(reasons, k)
		}
	}
	return reasons
}

// recordFailure counts a per-token engine failure under its code.
func (s *RunStats) recordFailure(err error) {
	switch extract.ErrorCode(err) {
	case extract.ErrCodeTooShortForSmoothing:
		s.TooShortForSmoothing++
	case extract.ErrCodeNoMeasurementPoint:
		s.NoMeasurementPoint++
	case extract.ErrCodeUnmeasurable:
		s.Unmeasurable++
	default:
		s.NoCandidates++
	}
}

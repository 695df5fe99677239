// Package pipeline walks an aligned transcript, measures every eligible vowel
// and derives the class statistics of the run.
package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/remeasure"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// uncertain matches transcriptions marked as unclear, e.g. "((DOG))".
var uncertain = regexp.MustCompile(`\(\(([\*\+]?['\w]+\-?)\)\)`)

// DefaultStopWords are excluded from measurement when stop word removal is on.
var DefaultStopWords = []string{
	"AND", "BUT", "FOR", "HE", "HE'S", "HUH", "I", "I'LL", "I'M", "IS", "IT", "IT'S", "ITS", "MY", "OF", "OH",
	"SHE", "SHE'S", "THAT", "THE", "THEM", "THEN", "THERE", "THEY", "THIS", "UH", "UM", "UP", "WAS", "WE", "WERE", "WHAT", "YOU",
}

// Transcription case applied to words in the output.
const (
	CaseUpper = "upper"
	CaseLower = "lower"
)

// Config contains configuration for the orchestrator
type Config struct {
	Engine           extract.EngineConfig
	VowelSystem      plotnik.System
	Phoneset         plotnik.Phoneset
	MinVowelDuration float64
	WindowSize       float64
	OnlyStressed     bool
	RemoveStopWords  bool
	StopWords        []string
	Case             string
	Remeasure        bool
}

// Transcript is the aligned speech of one speaker.
type Transcript struct {
	Speaker    extract.Speaker
	Words      []extract.Word
	OtherTiers [][]extract.Interval
	StyleTier  []extract.Interval
	MaxTime    float64
}

// Result is the outcome of one run
type Result struct {
	Speaker       extract.Speaker             `json:"speaker" yaml:"speaker"`
	MaxFormant    int                         `json:"max_formant" yaml:"max_formant"`
	Measurements  []*extract.VowelMeasurement `json:"-" yaml:"-"`
	Means         []*VowelMean                `json:"-" yaml:"-"`
	Normalization Normalization               `json:"normalization" yaml:"normalization"`
	Stats         RunStats                    `json:"stats" yaml:"stats"`
	Remeasurement *remeasure.Result           `json:"remeasurement,omitempty" yaml:"remeasurement,omitempty"`
}

// Orchestrator coordinates measurement of a whole transcript
type Orchestrator struct {
	config     *Config
	coder      *plotnik.Coder
	engine     *extract.MeasurementEngine
	remeasurer *remeasure.Engine
	caser      cases.Caser
	stopWords  map[string]bool
	logger     logging.Logger
}

// NewOrchestrator creates a new orchestrator
func NewOrchestrator(cfg *Config, logger logging.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	engineConfig := cfg.Engine
	engineConfig.Logger = logger
	if err := engineConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine configuration: %w", err)
	}

	caser := cases.Upper(language.Und)
	switch cfg.Case {
	case CaseLower:
		caser = cases.Lower(language.Und)
	case CaseUpper, "":
	default:
		return nil, fmt.Errorf("unknown case %q, must be %q or %q", cfg.Case, CaseUpper, CaseLower)
	}

	stopWords := make(map[string]bool, len(cfg.StopWords))
	for _, w := range cfg.StopWords {
		stopWords[caser.String(w)] = true
	}

	return &Orchestrator{
		config:     cfg,
		coder:      plotnik.NewCoder(cfg.Phoneset, cfg.VowelSystem),
		engine:     extract.NewMeasurementEngine(&engineConfig),
		remeasurer: remeasure.NewEngine(logger),
		caser:      caser,
		stopWords:  stopWords,
		logger:     logger.WithFields(logging.Fields{"component": "orchestrator"}),
	}, nil
}

// Run measures every eligible vowel of t, optionally remeasures the set
// against the speaker's own statistics, and computes class means and
// normalized values.
func (o *Orchestrator) Run(t *Transcript, provider extract.CandidateProvider) (*Result, error) {
	maxFormant, err := t.Speaker.MaxFormant()
	if err != nil {
		if o.engine.Prediction() == extract.PredictMahalanobis {
			return nil, fmt.Errorf("speaker %q: %w", t.Speaker.Name, err)
		}
		o.logger.Warn("Speaker sex not set, analysis ceiling unknown", logging.Fields{
			"speaker": t.Speaker.Name,
		})
	}

	words := o.prepareWords(t)
	result := &Result{Speaker: t.Speaker, MaxFormant: maxFormant}
	stats := &result.Stats
	for i := range words {
		stats.Vowels += words[i].NumVowels()
	}

	o.logger.Debug("Starting extraction", logging.Fields{
		"speaker":    t.Speaker.Name,
		"words":      len(words),
		"vowels":     stats.Vowels,
		"prediction": o.engine.Prediction().String(),
	})

	var empty extract.Word
	for wi := range words {
		w := &words[wi]
		pre, fol := &empty, &empty
		if wi > 0 {
			pre = &words[wi-1]
		}
		if wi+1 < len(words) {
			fol = &words[wi+1]
		}

		if !o.wordEligible(w, stats) {
			continue
		}

		for pi, p := range w.Phones {
			if !p.IsVowel() || !o.vowelEligible(w, p, stats) {
				continue
			}

			window := extract.Padding(p, o.config.WindowSize, t.MaxTime)
			cands, err := provider.Candidates(wi, pi, p, window)
			if err != nil {
				stats.NoCandidates++
				o.logger.Warn("No candidate tracks for vowel", logging.Fields{
					"word":  w.Transcription,
					"phone": p.Label,
					"xmin":  p.Xmin,
					"error": err.Error(),
				})
				continue
			}

			vm, err := o.engine.Measure(p, w, cands)
			if err != nil {
				stats.recordFailure(err)
				o.logger.Debug("Vowel not measured", logging.Fields{
					"word":  w.Transcription,
					"phone": p.Label,
					"xmin":  p.Xmin,
					"code":  extract.ErrorCode(err),
					"error": err.Error(),
				})
				continue
			}

			fillContext(vm, pi, w, pre, fol)
			result.Measurements = append(result.Measurements, vm)
			stats.Analyzed++
		}
	}

	if o.config.Remeasure && o.engine.Prediction() == extract.PredictMahalanobis {
		result.Remeasurement = o.remeasurer.Remeasure(result.Measurements)
		result.Measurements = result.Remeasurement.Measurements
		stats.Remeasured = result.Remeasurement.Changed
	}

	result.Means = CalculateMeans(result.Measurements)
	result.Normalization = Normalize(result.Measurements, result.Means)

	o.logger.Info("Extraction complete", logging.Fields{
		"speaker":    t.Speaker.Name,
		"vowels":     stats.Vowels,
		"analyzed":   stats.Analyzed,
		"skipped":    stats.Skipped(),
		"remeasured": stats.Remeasured,
	})
	return result, nil
}

// prepareWords copies the transcript's words, codes every vowel, and applies
// style and overlap annotations.
func (o *Orchestrator) prepareWords(t *Transcript) []extract.Word {
	words := make([]extract.Word, len(t.Words))
	for i, w := range t.Words {
		words[i] = w
		words[i].Phones = make([]extract.Phone, len(w.Phones))
		for j, p := range w.Phones {
			p.Label = strings.ToUpper(p.Label)
			words[i].Phones[j] = p
		}
	}

	for i := range words {
		w := &words[i]
		if w.NumVowels() == 0 {
			continue
		}
		labels := w.Labels()
		for j := range w.Phones {
			if !w.Phones[j].IsVowel() {
				continue
			}
			code, err := o.coder.Code(j, labels, w.Transcription)
			if err != nil {
				o.logger.Debug("Could not code vowel", logging.Fields{
					"word":  w.Transcription,
					"phone": w.Phones[j].Label,
					"error": err.Error(),
				})
				continue
			}
			w.Phones[j].Code = code
		}
	}

	if len(t.StyleTier) > 0 {
		extract.ApplyStyles(words, t.StyleTier)
	}
	if len(t.OtherTiers) > 0 {
		extract.MarkOverlaps(words, t.OtherTiers)
	}

	for i := range words {
		if !isSilence(words[i].Transcription) {
			words[i].Transcription = o.caser.String(words[i].Transcription)
		}
	}
	return words
}

func isSilence(trans string) bool {
	return trans == "" || strings.EqualFold(trans, "((xxxx))") || strings.EqualFold(trans, "SP")
}

// wordEligible applies the per-word skip rules.
func (o *Orchestrator) wordEligible(w *extract.Word, stats *RunStats) bool {
	if isSilence(w.Transcription) {
		return false
	}
	numV := w.NumVowels()
	if numV == 0 {
		o.logger.Debug("No vowels in word", logging.Fields{"word": w.Transcription, "xmin": w.Xmin})
		return false
	}
	if o.config.RemoveStopWords && o.stopWords[w.Transcription] {
		stats.StopWords += numV
		o.logger.Debug("Skipping stop word", logging.Fields{"word": w.Transcription, "xmin": w.Xmin})
		return false
	}
	if uncertain.MatchString(w.Transcription) {
		stats.Uncertain += numV
		o.logger.Debug("Skipping uncertain transcription", logging.Fields{"word": w.Transcription, "xmin": w.Xmin})
		return false
	}
	return true
}

// vowelEligible applies the per-vowel skip rules.
func (o *Orchestrator) vowelEligible(w *extract.Word, p extract.Phone, stats *RunStats) bool {
	skip := func(reason string) bool {
		o.logger.Debug("Skipping vowel", logging.Fields{
			"word":   w.Transcription,
			"phone":  p.Label,
			"xmin":   p.Xmin,
			"reason": reason,
		})
		return false
	}

	switch fs := p.Code.FollowingSeq; {
	case p.Overlap:
		stats.Overlaps++
		return skip("overlap")
	case strings.HasSuffix(w.Transcription, "-") && fs != "1" && fs != "2" && fs != "4" && fs != "5":
		stats.Truncated++
		return skip("truncated")
	case o.config.OnlyStressed && p.Stress() != "1":
		stats.Unstressed++
		return skip("unstressed")
	case formant.Round(p.Duration(), 3) < o.config.MinVowelDuration:
		stats.TooShort++
		return skip("too short")
	}
	return true
}

// fillContext sets the fields that depend on the vowel's position and on the
// neighbouring words.
func fillContext(vm *extract.VowelMeasurement, pi int, w, pre, fol *extract.Word) {
	vm.PreWord = pre.Transcription
	vm.FolWord = fol.Transcription
	vm.WordTrans = w.PhoneTranscription()
	vm.PreWordTrans = pre.PhoneTranscription()
	vm.FolWordTrans = fol.PhoneTranscription()
	vm.Index = pi + 1

	last := len(w.Phones) - 1
	prevLabel := func() string {
		if pi > 0 {
			return w.Phones[pi-1].Label
		}
		if n := len(pre.Phones); n > 0 {
			return pre.Phones[n-1].Label
		}
		return ""
	}
	nextLabel := func() string {
		if pi < last {
			return w.Phones[pi+1].Label
		}
		if len(fol.Phones) > 0 {
			return fol.Phones[0].Label
		}
		return ""
	}

	switch {
	case last == 0:
		vm.Context = "coextensive"
	case pi == 0:
		vm.Context = "initial"
	case pi == last:
		vm.Context = "final"
	default:
		vm.Context = "internal"
	}
	vm.PreSeg = prevLabel()
	vm.FolSeg = nextLabel()
}

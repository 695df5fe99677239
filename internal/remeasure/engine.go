// Package remeasure re-runs formant order selection against statistics fitted
// to the speaker's own first-pass measurements.
package remeasure

import (
	"math"
	"sort"

	"github.com/RyanBlaney/latency-benchmark-common/logging"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/pkg/classify"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
)

const (
	// OutlierThreshold is the initial squared distance a token may lie from
	// its class mean and survive pruning.
	OutlierThreshold = 4.75

	// ThresholdStep relaxes the threshold while too few tokens survive.
	ThresholdStep = 0.5

	// MinPruned is the number of tokens a pruned class must keep. Classes
	// smaller than this are not pruned.
	MinPruned = 10
)

// ClassStats describes the fit for one vowel class.
type ClassStats struct {
	Class     string  `json:"class" yaml:"class"`
	Tokens    int     `json:"tokens" yaml:"tokens"`
	Kept      int     `json:"kept" yaml:"kept"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Refit     bool    `json:"refit" yaml:"refit"`
}

// Result is the outcome of a remeasurement pass.
type Result struct {
	Measurements []*extract.VowelMeasurement `json:"-" yaml:"-"`
	Eligible     int                         `json:"eligible" yaml:"eligible"`
	Changed      int                         `json:"changed" yaml:"changed"`
	Classes      []ClassStats                `json:"classes" yaml:"classes"`
}

// Engine performs the speaker-specific second pass
type Engine struct {
	logger logging.Logger
}

// NewEngine creates a remeasurement engine
func NewEngine(logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	return &Engine{
		logger: logger.WithFields(logging.Fields{"component": "remeasure_engine"}),
	}
}

// Remeasure fits per-class statistics to ms, prunes outliers, refits and
// reclassifies every eligible token. The input measurements are not
// modified; the result holds copies.
func (e *Engine) Remeasure(ms []*extract.VowelMeasurement) *Result {
	groups := groupByClass(ms)

	classes := make([]string, 0, len(groups))
	for cd := range groups {
		classes = append(classes, cd)
	}
	sort.Strings(classes)

	result := &Result{Measurements: make([]*extract.VowelMeasurement, len(ms))}
	refs := make(classify.ReferenceSet, len(groups))

	for _, cd := range classes {
		obs := groups[cd]
		stats := ClassStats{Class: cd, Tokens: len(obs), Kept: len(obs)}

		ref, ok := classify.Fit(obs)
		if ok && len(obs) >= MinPruned {
			obs, stats.Threshold = Prune(obs, ref)
			stats.Kept = len(obs)
			ref, ok = classify.Fit(obs)
		}
		if ok {
			refs[cd] = ref
			stats.Refit = true
		} else {
			e.logger.Debug("No speaker covariance for vowel class, keeping first-pass values", logging.Fields{
				"class":  cd,
				"tokens": stats.Tokens,
			})
		}
		result.Classes = append(result.Classes, stats)
	}

	for i, vm := range ms {
		ref, eligible := refs[vm.Code.Class]
		eligible = eligible && len(groups[vm.Code.Class]) >= classify.MinFitSamples
		if eligible {
			result.Eligible++
		}
		updated, changed := reclassifyIfEligible(vm, ref, eligible)
		if changed {
			result.Changed++
			e.logger.Debug("Formant order changed", logging.Fields{
				"word":       vm.Word,
				"phone":      vm.Phone,
				"old_order":  vm.NFormants,
				"new_order":  updated.NFormants,
				"vowel_beg":  vm.Beg,
				"vowel_code": vm.Code.Class,
			})
		}
		result.Measurements[i] = updated
	}

	e.logger.Info("Remeasurement complete", logging.Fields{
		"tokens":   len(ms),
		"eligible": result.Eligible,
		"changed":  result.Changed,
		"classes":  len(refs),
	})
	return result
}

// reclassifyIfEligible returns vm unchanged when it is not eligible or none
// of its candidates can be scored, and otherwise a copy that has adopted the
// candidate order closest to ref.
func reclassifyIfEligible(vm *extract.VowelMeasurement, ref classify.Reference, eligible bool) (*extract.VowelMeasurement, bool) {
	if !eligible || len(vm.Candidates) == 0 || vm.Dur <= 0 {
		return vm, false
	}

	cands := make([]classify.Candidate, len(vm.Candidates))
	for i, c := range vm.Candidates {
		cands[i] = classify.Candidate{Order: c.Order, Frame: c.Frame}
	}
	choice, err := classify.ChooseWith(ref, cands, durationVector(vm.Dur))
	if err != nil || choice.Unscored {
		return vm, false
	}

	// the token keeps its first-pass measurement time
	out := *vm
	out.Adopt(choice.Index)
	out.T = vm.T
	out.Distance = formant.Some(choice.Distance)
	return &out, choice.Index != vm.Winner
}

// durationVector extends the formant observation with the log duration of
// the token.
func durationVector(dur float64) classify.Vectorizer {
	lnDur := math.Log(dur)
	return func(f formant.Frame) ([]float64, bool) {
		x, ok := classify.FormantVector(f)
		if !ok {
			return nil, false
		}
		return append(x, lnDur), true
	}
}

// Observation builds [F1, F2, ln B1, ln B2, ln dur] for a measurement.
func Observation(vm *extract.VowelMeasurement) ([]float64, bool) {
	f1, ok1 := vm.F1.Get()
	f2, ok2 := vm.F2.Get()
	b1, ok3 := vm.B1.Get()
	b2, ok4 := vm.B2.Get()
	if !ok1 || !ok2 || !ok3 || !ok4 || b1 <= 0 || b2 <= 0 || vm.Dur <= 0 {
		return nil, false
	}
	return []float64{f1, f2, math.Log(b1), math.Log(b2), math.Log(vm.Dur)}, true
}

func groupByClass(ms []*extract.VowelMeasurement) map[string][][]float64 {
	groups := make(map[string][][]float64)
	for _, vm := range ms {
		x, ok := Observation(vm)
		if !ok {
			continue
		}
		groups[vm.Code.Class] = append(groups[vm.Code.Class], x)
	}
	return groups
}

// Prune keeps the observations within the squared distance threshold of
// ref, relaxing the threshold until at least MinPruned survive or every
// scorable observation is kept. It returns the survivors and the final
// threshold.
func Prune(obs [][]float64, ref classify.Reference) ([][]float64, float64) {
	threshold := OutlierThreshold
	for {
		kept := make([][]float64, 0, len(obs))
		scorable := 0
		for _, x := range obs {
			d, err := ref.Distance(x)
			if err != nil {
				continue
			}
			scorable++
			if d*d <= threshold {
				kept = append(kept, x)
			}
		}
		if len(kept) >= MinPruned || len(kept) == scorable {
			return kept, threshold
		}
		threshold += ThresholdStep
	}
}

package classify

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/formant-extract/pkg/formant"
)

const (
	// MinOrder is the lowest formant order analysed; candidate i has order
	// MinOrder+i.
	MinOrder = 3

	// DefaultOrder is used when a class has no reference distribution.
	DefaultOrder = 5
)

var (
	// ErrNoUsableCandidate is returned when there are no candidates to score.
	ErrNoUsableCandidate = errors.New("classify: no usable candidate")

	// ErrNoFallbackOrder is returned when the fallback order is not among the candidates.
	ErrNoFallbackOrder = errors.New("classify: fallback order missing from candidates")
)

// Candidate is the frame measured at one formant order.
type Candidate struct {
	Order int
	Frame formant.Frame
}

// Vectorizer turns a frame into an observation vector, or reports false
// when the frame cannot be scored.
type Vectorizer func(formant.Frame) ([]float64, bool)

// FormantVector builds [F1, F2, ln B1, ln B2].
func FormantVector(f formant.Frame) ([]float64, bool) {
	f1, ok1 := f.F(1).Get()
	f2, ok2 := f.F(2).Get()
	b1, ok3 := f.B(1).Get()
	b2, ok4 := f.B(2).Get()
	if !ok1 || !ok2 || !ok3 || !ok4 || b1 <= 0 || b2 <= 0 {
		return nil, false
	}
	return []float64{f1, f2, math.Log(b1), math.Log(b2)}, true
}

// Choice is the outcome of scoring a set of candidates.
type Choice struct {
	Index     int
	Order     int
	Distance  float64
	Frame     formant.Frame
	Fallback  bool
	// Unscored is set when no candidate could be vectorized and the first
	// candidate was taken as is.
	Unscored  bool
	Distances []float64
}

// Classifier picks the formant order closest to a class reference.
type Classifier struct {
	refs ReferenceSet
}

// NewClassifier returns a classifier over refs.
func NewClassifier(refs ReferenceSet) *Classifier {
	return &Classifier{refs: refs}
}

// HasReference reports whether class has a reference distribution.
func (c *Classifier) HasReference(class string) bool {
	_, ok := c.refs[class]
	return ok
}

// Choose scores candidates against the reference for class. Classes without
// a reference fall back to DefaultOrder.
func (c *Classifier) Choose(class string, candidates []Candidate) (Choice, error) {
	ref, ok := c.refs[class]
	if !ok {
		for i, cand := range candidates {
			if cand.Order == DefaultOrder {
				return Choice{Index: i, Order: cand.Order, Frame: cand.Frame, Fallback: true}, nil
			}
		}
		return Choice{}, fmt.Errorf("%w: class %s", ErrNoFallbackOrder, class)
	}
	return ChooseWith(ref, candidates, FormantVector)
}

// ChooseWith returns the candidate with the smallest distance to ref.
// Candidates the vectorizer rejects score +Inf and keep their position; on
// ties the earlier candidate wins. When every candidate is rejected the
// first one is returned with Unscored set.
func ChooseWith(ref Reference, candidates []Candidate, vectorize Vectorizer) (Choice, error) {
	distances := make([]float64, len(candidates))
	best := -1
	for i, cand := range candidates {
		distances[i] = math.Inf(1)
		x, ok := vectorize(cand.Frame)
		if !ok {
			continue
		}
		d, err := ref.Distance(x)
		if err != nil {
			return Choice{}, fmt.Errorf("order %d: %w", cand.Order, err)
		}
		distances[i] = d
		if best < 0 || d < distances[best] {
			best = i
		}
	}
	if len(candidates) == 0 {
		return Choice{}, ErrNoUsableCandidate
	}
	if best < 0 {
		return Choice{
			Order:     candidates[0].Order,
			Distance:  math.Inf(1),
			Frame:     candidates[0].Frame,
			Unscored:  true,
			Distances: distances,
		}, nil
	}
	return Choice{
		Index:     best,
		Order:     candidates[best].Order,
		Distance:  distances[best],
		Frame:     candidates[best].Frame,
		Distances: distances,
	}, nil
}

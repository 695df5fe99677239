// Package measure chooses the time within a vowel at which formants are read.
package measure

import (
	"errors"
	"fmt"
	"math"

	"github.com/RyanBlaney/formant-extract/pkg/formant"
)

var (
	// ErrNoFrames is returned when no frame carries the values a method needs.
	ErrNoFrames = errors.New("measure: no usable frames")

	// ErrNoIntensity is returned by maxint for an empty intensity contour.
	ErrNoIntensity = errors.New("measure: empty intensity contour")
)

const (
	transition         = 0.02
	shortVowelLimit    = 0.04
	tenseUWAfterApical = "73"
)

// Vowel is the part of a phone the selector needs. Label carries no stress
// digit; Class is the Plotnik vowel class code.
type Vowel struct {
	Label string
	Class string
	Xmin  float64
	Xmax  float64
}

// Duration returns xmax - xmin.
func (v Vowel) Duration() float64 {
	return v.Xmax - v.Xmin
}

// Selector picks the measurement time for one method.
type Selector struct {
	method Method
}

// NewSelector returns a selector for m.
func NewSelector(m Method) *Selector {
	return &Selector{method: m}
}

// Method returns the selector's method.
func (s *Selector) Method() Method {
	return s.method
}

// Select returns the measurement time for v given its formant track and
// intensity contour.
func (s *Selector) Select(v Vowel, track formant.Track, in Intensity) (float64, error) {
	switch s.method {
	case Third:
		return v.Xmin + v.Duration()/3, nil
	case Fourth:
		return v.Xmin + v.Duration()/4, nil
	case Mid:
		return v.Xmin + v.Duration()/2, nil
	case Lennig:
		return lennig(v, trimTransitions(v, track)), nil
	case ANAE:
		return anae(v, trimTransitions(v, track))
	case FAAV:
		return faav(v, track, in)
	case MaxIntensity:
		top := in.peak()
		if top < 0 {
			return 0, ErrNoIntensity
		}
		return in.Times[top], nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownMethod, s.method)
	}
}

// TransitionLength is the margin removed from each end of a vowel before the
// shape-based methods look at it.
func TransitionLength(xmin, xmax float64) float64 {
	if formant.Round(xmax-xmin, 3) <= shortVowelLimit {
		return 0
	}
	return transition
}

func trimTransitions(v Vowel, track formant.Track) formant.Track {
	tr := TransitionLength(v.Xmin, v.Xmax)
	return track.Trim(v.Xmin+tr, v.Xmax-tr)
}

func lennig(v Vowel, track formant.Track) float64 {
	best := -1
	score := math.Inf(1)
	for i := 1; i < len(track)-1; i++ {
		c, ok := changeRate(track[i-1], track[i], track[i+1])
		if ok && c < score {
			best, score = i, c
		}
	}
	if best < 0 {
		return v.Xmin + v.Duration()/2
	}
	return track[best].Time
}

func changeRate(prev, cur, next formant.Frame) (float64, bool) {
	var total float64
	for n := 1; n <= 2; n++ {
		p, ok1 := prev.F(n).Get()
		c, ok2 := cur.F(n).Get()
		x, ok3 := next.F(n).Get()
		if !ok1 || !ok2 || !ok3 || c == 0 {
			return 0, false
		}
		total += (math.Abs(c-p) + math.Abs(c-x)) / c
	}
	return total, true
}

func anae(v Vowel, track formant.Track) (float64, error) {
	slot, sign := 1, 1.0
	switch v.Label {
	case "AE":
		slot = 2
	case "AO":
		slot, sign = 2, -1
	}

	best := -1
	var bestVal float64
	for i, f := range track {
		val, ok := f.F(slot).Get()
		if !ok {
			continue
		}
		if best < 0 || sign*val > sign*bestVal {
			best, bestVal = i, val
		}
	}
	if best < 0 {
		return 0, ErrNoFrames
	}
	return track[best].Time, nil
}

func faav(v Vowel, track formant.Track, in Intensity) (float64, error) {
	tenseUW := v.Label == "UW" && v.Class == tenseUWAfterApical
	switch v.Label {
	case "AY", "EY", "OW", "AW":
	default:
		if !tenseUW {
			return v.Xmin + v.Duration()/3, nil
		}
	}
	if len(track) == 0 {
		return 0, ErrNoFrames
	}

	beg, end, ok := in.Cutoff()
	if !ok || beg == end {
		beg, end = track[0].Time, track[len(track)-1].Time
	}
	beg, end = modifyCutoff(beg, end, v, in)

	switch {
	case v.Label == "AY" || v.Label == "EY":
		return timeOfF1Max(track, beg, end)
	case tenseUW:
		return math.Max(v.Xmin, beg), nil
	default:
		peak, err := timeOfF1Max(track, beg, end)
		if err != nil {
			return 0, err
		}
		if peak > v.Xmin {
			return math.Max(beg, v.Xmin+(peak-v.Xmin)/2), nil
		}
		return math.Max(beg, v.Xmin), nil
	}
}

// modifyCutoff keeps the measurement window in the first half of the vowel.
func modifyCutoff(beg, end float64, v Vowel, in Intensity) (float64, float64) {
	mid := v.Xmin + v.Duration()/2
	if end > mid && mid > beg {
		end = mid
	}
	if beg > mid {
		if b, e, ok := in.Trim(v.Xmin, mid).Cutoff(); ok {
			beg, end = b, e
		}
	}
	return beg, end
}

// timeOfF1Max returns the time of the highest F1 within [beg, end]. Frames
// without F1 count as zero.
func timeOfF1Max(track formant.Track, beg, end float64) (float64, error) {
	window := track.Trim(beg, end)
	if len(window) == 0 {
		return 0, ErrNoFrames
	}
	best := 0
	bestVal := window[0].F(1).Or(0)
	for i := 1; i < len(window); i++ {
		if f1 := window[i].F(1).Or(0); f1 > bestVal {
			best, bestVal = i, f1
		}
	}
	return window[best].Time, nil
}

package extract

import "strings"

// Interval is one labelled span of an annotation tier.
type Interval struct {
	Xmin float64 `json:"xmin" yaml:"xmin"`
	Xmax float64 `json:"xmax" yaml:"xmax"`
	Mark string  `json:"mark" yaml:"mark"`
}

// silent reports whether the interval carries no speech.
func (i Interval) silent() bool {
	switch strings.ToUpper(strings.TrimSpace(i.Mark)) {
	case "", "SP", "SIL":
		return true
	}
	return false
}

// MarkOverlaps flags every vowel phone that overlaps speech on another
// speaker's word tier. Tiers must be sorted by time.
func MarkOverlaps(words []Word, tiers [][]Interval) int {
	pointer := make([]int, len(tiers))
	marked := 0

	for wi := range words {
		for pi := range words[wi].Phones {
			p := &words[wi].Phones[pi]
			if !p.IsVowel() {
				continue
			}
			for sn, tier := range tiers {
				for pointer[sn] < len(tier) && tier[pointer[sn]].Xmin < p.Xmax {
					if overlaps(tier[pointer[sn]], p.Xmin, p.Xmax) && !tier[pointer[sn]].silent() {
						p.Overlap = true
					}
					pointer[sn]++
				}
				// the last interval may also cover the next phone
				if pointer[sn] > 0 {
					pointer[sn]--
				}
			}
			if p.Overlap {
				marked++
			}
		}
	}
	return marked
}

func overlaps(i Interval, xmin, xmax float64) bool {
	left := i.Xmin <= xmin || (xmin <= i.Xmin && i.Xmin <= xmax)
	right := i.Xmax >= xmax || (xmin <= i.Xmax && i.Xmax <= xmax)
	return left && right
}

// ApplyStyles copies the label of the first non-SP style interval that
// overlaps each word onto the word, upper-cased.
func ApplyStyles(words []Word, styles []Interval) {
	start := 0
	for wi := range words {
		w := &words[wi]
		for i := start; i < len(styles); i++ {
			s := styles[i]
			if s.Xmin >= w.Xmax {
				start = max(i-2, 0)
				break
			}
			mark := strings.ToUpper(s.Mark)
			if mark == "SP" {
				continue
			}
			if styleCovers(s, w.Xmin, w.Xmax) {
				w.Style = mark
				start = max(i-1, 0)
				break
			}
		}
	}
}

func styleCovers(s Interval, xmin, xmax float64) bool {
	within := func(t float64) bool { return s.Xmin <= t && t <= s.Xmax }
	switch {
	case within(xmin) && within(xmax):
		return true
	case xmin <= s.Xmin && within(xmax):
		return true
	case within(xmin) && s.Xmax <= xmax:
		return true
	case xmin <= s.Xmin && s.Xmax <= xmax:
		return true
	}
	return false
}

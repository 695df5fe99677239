package pipeline

import (
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// functionWords never contribute to class means.
var functionWords = wordSet(
	"A", "AH", "AM", "AN'", "AN", "AND", "ARE", "AREN'T", "AS", "AT", "AW", "BECAUSE", "BUT", "COULD",
	"EH", "FOR", "FROM", "GET", "GONNA", "GOT", "GOTTA", "GOTTEN",
	"HAD", "HAS", "HAVE", "HE", "HE'S", "HIGH", "HUH",
	"I", "I'LL", "I'M", "I'VE", "I'D", "IN", "IS", "IT", "IT'S", "ITS", "JUST", "MEAN", "MY",
	"NAH", "NOT", "OF", "OH", "ON", "OR", "OUR", "SAYS", "SHE", "SHE'S", "SHOULD", "SO",
	"THAN", "THAT", "THAT'S", "THE", "THEM", "THERE", "THERE'S", "THEY", "TO", "UH", "UM", "UP",
	"WAS", "WASN'T", "WE", "WERE", "WHAT", "WHEN", "WHICH", "WHO", "WITH", "WOULD",
	"YEAH", "YOU", "YOU'VE",
)

func wordSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Stat is a mean and standard deviation, either of which may be missing.
type Stat struct {
	Mean formant.Value `json:"mean" yaml:"mean"`
	Stdv formant.Value `json:"stdv" yaml:"stdv"`
}

// VowelMean holds the statistics of one Plotnik vowel class.
type VowelMean struct {
	Class string `json:"class" yaml:"class"`

	// Values are the F1, F2 and F3 readings that entered the means.
	Values [3][]float64 `json:"-" yaml:"-"`
	N      [3]int       `json:"n" yaml:"n"`
	Means  [3]Stat      `json:"means" yaml:"means"`

	Tracks [2 * formant.TrackPoints]Stat `json:"tracks" yaml:"tracks"`

	NormMeans  [2]Stat                       `json:"norm_means" yaml:"norm_means"`
	NormTracks [2 * formant.TrackPoints]Stat `json:"norm_tracks" yaml:"norm_tracks"`

	trackValues []formant.Samples
}

// Count returns the largest per-formant token count.
func (m *VowelMean) Count() int {
	return max(m.N[0], m.N[1], m.N[2])
}

// MeanStdv returns the mean and sample standard deviation (N-1) of values.
// An empty list has neither; a single value has a standard deviation of 0.
func MeanStdv(values []float64) (mean, stdv formant.Value) {
	switch len(values) {
	case 0:
		return formant.Undefined, formant.Undefined
	case 1:
		return formant.Some(values[0]), formant.Some(0)
	}
	m, s := stat.MeanStdDev(values, nil)
	return formant.Some(m), formant.Some(s)
}

// contributes reports whether a token enters the class means. Every token is
// still written out.
func contributes(vm *extract.VowelMeasurement) bool {
	cd, fm, ps := vm.Code.Class, vm.Code.Manner, vm.Code.Preceding
	switch {
	case vm.Stress != "1":
		return false
	case vm.F1.Or(0) < 200:
		return false
	case vm.Glide == "g":
		return false
	case functionWords[strings.ToUpper(vm.Word)]:
		return false
	case (cd == "3" || cd == "2" || cd == "1" || cd == "42") && fm == "4":
		return false
	case fm == "5" && cd != "39":
		return false
	case ps == "9" || ps == "8":
		return false
	}
	return true
}

// CalculateMeans computes the class statistics of ms in Plotnik code order.
// Classes without tokens are included with empty statistics.
func CalculateMeans(ms []*extract.VowelMeasurement) []*VowelMean {
	means := make([]*VowelMean, len(plotnik.Codes))
	byClass := make(map[string]*VowelMean, len(plotnik.Codes))
	for i, cd := range plotnik.Codes {
		means[i] = &VowelMean{Class: cd}
		byClass[cd] = means[i]
	}

	for _, vm := range ms {
		if !contributes(vm) {
			continue
		}
		m, ok := byClass[vm.Code.Class]
		if !ok {
			continue
		}
		for i, v := range [3]formant.Value{vm.F1, vm.F2, vm.F3} {
			if v.Truthy() {
				m.Values[i] = append(m.Values[i], v.Or(0))
			}
		}
		m.trackValues = append(m.trackValues, vm.Tracks)
	}

	for _, m := range means {
		for i := range m.Values {
			m.N[i] = len(m.Values[i])
			mean, stdv := MeanStdv(m.Values[i])
			if mean.Truthy() {
				m.Means[i].Mean = mean.Round(0)
			}
			if stdv.Truthy() {
				m.Means[i].Stdv = stdv.Round(0)
			}
		}
		for j := range m.Tracks {
			var points []float64
			for _, t := range m.trackValues {
				if t[j].Truthy() {
					points = append(points, t[j].Or(0))
				}
			}
			mean, stdv := MeanStdv(points)
			if mean.Truthy() && stdv.Defined() {
				m.Tracks[j] = Stat{Mean: mean, Stdv: stdv}
			}
		}
	}
	return means
}

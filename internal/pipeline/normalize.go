package pipeline

import (
	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
)

// Display scale of normalized values.
const (
	F1Centre = 650
	F1Scale  = 150
	F2Centre = 1700
	F2Scale  = 420
)

// Scale maps a z-score onto a display range.
type Scale struct {
	Centre float64 `json:"centre" yaml:"centre"`
	Factor float64 `json:"factor" yaml:"factor"`
}

var (
	f1Scale = Scale{Centre: F1Centre, Factor: F1Scale}
	f2Scale = Scale{Centre: F2Centre, Factor: F2Scale}
)

// Norm holds the grand statistics of one formant.
type Norm struct {
	Mean  formant.Value `json:"mean" yaml:"mean"`
	Stdv  formant.Value `json:"stdv" yaml:"stdv"`
	Scale Scale         `json:"scale" yaml:"scale"`
}

// Lobanov returns the z-score of value, undefined when value, mean or stdv
// is missing or zero.
func Lobanov(value, mean, stdv formant.Value) formant.Value {
	v, m, s := value.Or(0), mean.Or(0), stdv.Or(0)
	if v == 0 || m == 0 || s == 0 {
		return formant.Undefined
	}
	return formant.Some((v - m) / s)
}

// Scaled maps value onto the display range without rounding.
func (n Norm) Scaled(value formant.Value) formant.Value {
	z, ok := Lobanov(value, n.Mean, n.Stdv).Get()
	if !ok {
		return formant.Undefined
	}
	return formant.Some(n.Scale.Centre + n.Scale.Factor*z)
}

// Apply normalizes value and rounds it to whole Hz.
func (n Norm) Apply(value formant.Value) formant.Value {
	return n.Scaled(value).Round(0)
}

// Invert recovers the raw value from a Scaled value.
func (n Norm) Invert(normalized formant.Value) formant.Value {
	v, ok1 := normalized.Get()
	m, ok2 := n.Mean.Get()
	s, ok3 := n.Stdv.Get()
	if !ok1 || !ok2 || !ok3 || n.Scale.Factor == 0 {
		return formant.Undefined
	}
	return formant.Some(m + s*(v-n.Scale.Centre)/n.Scale.Factor)
}

// scaleStdv rescales a class standard deviation.
func (n Norm) scaleStdv(sd formant.Value) formant.Value {
	v, ok1 := sd.Get()
	s, ok2 := n.Stdv.Get()
	if !ok1 || !ok2 || s == 0 {
		return formant.Undefined
	}
	return formant.Some(formant.Round(n.Scale.Factor*v/s, 0))
}

// Normalization is the grand F1 and F2 statistics used for a measurement set.
type Normalization struct {
	F1 Norm `json:"f1" yaml:"f1"`
	F2 Norm `json:"f2" yaml:"f2"`
}

// NewNormalization collects the grand statistics of ms.
func NewNormalization(ms []*extract.VowelMeasurement) Normalization {
	var f1s, f2s []float64
	for _, vm := range ms {
		if vm.F1.Truthy() {
			f1s = append(f1s, vm.F1.Or(0))
		}
		if vm.F2.Truthy() {
			f2s = append(f2s, vm.F2.Or(0))
		}
	}
	n := Normalization{F1: Norm{Scale: f1Scale}, F2: Norm{Scale: f2Scale}}
	n.F1.Mean, n.F1.Stdv = MeanStdv(f1s)
	n.F2.Mean, n.F2.Stdv = MeanStdv(f2s)
	return n
}

// Normalize fills the normalized fields of every measurement and class mean
// and returns the statistics used.
func Normalize(ms []*extract.VowelMeasurement, means []*VowelMean) Normalization {
	n := NewNormalization(ms)

	for _, vm := range ms {
		vm.NormF1 = n.F1.Apply(vm.F1)
		vm.NormF2 = n.F2.Apply(vm.F2)

		var tracks formant.Samples
		for i := 0; i < formant.TrackPoints; i++ {
			f1, f2 := vm.Tracks.F1(i), vm.Tracks.F2(i)
			if f1.Truthy() && f2.Truthy() {
				tracks[2*i] = n.F1.Apply(f1)
				tracks[2*i+1] = n.F2.Apply(f2)
			}
		}
		vm.NormTracks = tracks
	}

	for _, m := range means {
		m.NormMeans[0] = Stat{Mean: n.F1.Apply(m.Means[0].Mean), Stdv: n.F1.scaleStdv(m.Means[0].Stdv)}
		m.NormMeans[1] = Stat{Mean: n.F2.Apply(m.Means[1].Mean), Stdv: n.F2.scaleStdv(m.Means[1].Stdv)}
		for j, t := range m.Tracks {
			norm := n.F1
			if j%2 == 1 {
				norm = n.F2
			}
			mean := norm.Apply(t.Mean)
			if !mean.Defined() {
				m.NormTracks[j] = Stat{}
				continue
			}
			m.NormTracks[j] = Stat{Mean: mean, Stdv: norm.scaleStdv(t.Stdv)}
		}
	}
	return n
}

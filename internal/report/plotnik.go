package report

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// Plotnik requires carriage returns as line terminators.
const pltEOL = "\r"

// pltToken holds the values of one token line.
type pltToken struct {
	f1, f2, f3 formant.Value
	tracks     formant.Samples
}

// pltClass holds the values of one class summary line.
type pltClass struct {
	means, stdvs [3]formant.Value
	tracks       [2 * formant.TrackPoints]pipeline.Stat
}

// WritePlotnik writes measurements and class means in Plotnik .plt format.
func WritePlotnik(w io.Writer, res *pipeline.Result) error {
	return writePlt(w, res,
		func(vm *extract.VowelMeasurement) pltToken {
			return pltToken{f1: vm.F1, f2: vm.F2, f3: vm.F3, tracks: vm.Tracks}
		},
		func(m *pipeline.VowelMean) pltClass {
			var c pltClass
			for i := range m.Means {
				c.means[i], c.stdvs[i] = m.Means[i].Mean, m.Means[i].Stdv
			}
			c.tracks = m.Tracks
			return c
		},
	)
}

// WritePlotnikNormalized writes the normalized .pll variant. F3 is not
// normalized and is left empty.
func WritePlotnikNormalized(w io.Writer, res *pipeline.Result) error {
	return writePlt(w, res,
		func(vm *extract.VowelMeasurement) pltToken {
			return pltToken{f1: vm.NormF1, f2: vm.NormF2, tracks: vm.NormTracks}
		},
		func(m *pipeline.VowelMean) pltClass {
			var c pltClass
			for i := range m.NormMeans {
				c.means[i], c.stdvs[i] = m.NormMeans[i].Mean, m.NormMeans[i].Stdv
			}
			c.tracks = m.NormTracks
			return c
		},
	)
}

func writePlt(w io.Writer, res *pipeline.Result, token func(*extract.VowelMeasurement) pltToken, class func(*pipeline.VowelMean) pltClass) error {
	lw := newLineWriter(bufio.NewWriter(w), ",", pltEOL)
	s := res.Speaker
	lw.row(s.FirstName+" "+s.LastName, s.Age, s.Sex, s.Ethnicity, s.YearsOfSchooling, s.Location, s.Year)
	lw.row(strconv.Itoa(len(res.Measurements)), "")

	for _, vm := range res.Measurements {
		t := token(vm)
		lw.raw(strings.Join([]string{
			rounded(t.f1, 1), rounded(t.f2, 1), present(t.f3),
			vm.Code.String(), pltStress(vm.Stress) + "." + strconv.Itoa(int(formant.Round(vm.Dur*1000, 0))),
			vm.Word,
		}, ","))
		if vm.Glide != "" {
			lw.raw(" {" + vm.Glide + "}")
		}
		if vm.Style != "" {
			lw.raw(" -" + plotnik.StyleCode(vm.Style) + "-")
		}
		if vm.NFormants > 0 {
			lw.raw(" /" + strconv.Itoa(vm.NFormants) + "/")
		}
		lw.raw(" " + number(vm.T) + " ")
		lw.raw(" <" + strings.Join(samples(t.tracks, 0), ",") + ">" + pltEOL)
	}

	lw.raw(pltEOL)
	byClass := make(map[string]*pipeline.VowelMean, len(res.Means))
	for _, m := range res.Means {
		byClass[m.Class] = m
	}
	for _, cd := range plotnik.Codes {
		m, ok := byClass[cd]
		if !ok {
			m = &pipeline.VowelMean{Class: cd}
		}
		c := class(m)
		fields := []string{cd, strconv.Itoa(m.Count())}
		for _, v := range c.means {
			fields = append(fields, value(v))
		}
		for _, v := range c.stdvs {
			fields = append(fields, value(v))
		}
		tracks := make([]string, len(c.tracks))
		for i, st := range c.tracks {
			tracks[i] = rounded(st.Mean, 0)
		}
		lw.raw(strings.Join(fields, ",") + " <" + strings.Join(tracks, ",") + ">" + pltEOL)
	}
	return lw.flush()
}

// pltStress maps unstressed "0" to Plotnik's "3".
func pltStress(stress string) string {
	if stress == "0" {
		return "3"
	}
	return stress
}

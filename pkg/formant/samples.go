package formant

// TrackPoints is the number of sample points taken across a vowel.
const TrackPoints = 5

// TrackFractions are the relative positions of the sample points.
var TrackFractions = [TrackPoints]float64{0.2, 0.35, 0.5, 0.65, 0.8}

// Samples holds F1 and F2 at each track point, interleaved:
// F1@20%, F2@20%, F1@35%, F2@35%, ...
type Samples [2 * TrackPoints]Value

// SampleTrack reads F1/F2 at 20, 35, 50, 65 and 80 percent of [xmin, xmax].
// A point where the nearest frame lacks F1 or F2 is undefined for both.
func SampleTrack(t Track, xmin, xmax float64) Samples {
	var out Samples
	if len(t) == 0 {
		return out
	}
	dur := xmax - xmin
	for i, frac := range TrackFractions {
		f, _ := t.At(xmin + frac*dur)
		f1, f2 := f.F(1), f.F(2)
		if f1.Defined() && f2.Defined() {
			out[2*i] = f1
			out[2*i+1] = f2
		}
	}
	return out
}

// F1 returns the F1 sample at point i.
func (s Samples) F1(i int) Value {
	return s[2*i]
}

// F2 returns the F2 sample at point i.
func (s Samples) F2(i int) Value {
	return s[2*i+1]
}

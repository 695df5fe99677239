package extract

// Padding returns the analysis window around a vowel. Both sides are padded
// by windowSize, the start of /ay/ by twice that, and neither side extends
// past the file bounds [0, maxTime].
func Padding(p Phone, windowSize, maxTime float64) Window {
	w := Window{Xmin: p.Xmin, Xmax: p.Xmax}

	switch {
	case p.Xmin-windowSize < 0:
		w.PadBeg = p.Xmin
	case p.Base() == "AY":
		if p.Xmin-2*windowSize < 0 {
			w.PadBeg = p.Xmin
		} else {
			w.PadBeg = 2 * windowSize
		}
	default:
		w.PadBeg = windowSize
	}

	if p.Xmax+windowSize > maxTime {
		w.PadEnd = maxTime - p.Xmax
	} else {
		w.PadEnd = windowSize
	}
	return w
}

package measure

// Intensity is an intensity contour sampled at Times.
type Intensity struct {
	Times  []float64 `json:"times" yaml:"times"`
	Values []float64 `json:"values" yaml:"values"`
}

// Len returns the number of samples in the contour.
func (in Intensity) Len() int {
	if len(in.Times) < len(in.Values) {
		return len(in.Times)
	}
	return len(in.Values)
}

// Trim keeps the samples whose time lies within [min, max].
func (in Intensity) Trim(min, max float64) Intensity {
	var out Intensity
	for i := range in.Len() {
		if in.Times[i] >= min && in.Times[i] <= max {
			out.Times = append(out.Times, in.Times[i])
			out.Values = append(out.Values, in.Values[i])
		}
	}
	return out
}

// peak returns the index of the first maximum value, or -1 when empty.
func (in Intensity) peak() int {
	best := -1
	for i := range in.Len() {
		if best < 0 || in.Values[i] > in.Values[best] {
			best = i
		}
	}
	return best
}

// Cutoff returns the times bounding the contiguous region around the peak
// where intensity stays at or above 90% of the maximum.
func (in Intensity) Cutoff() (beg, end float64, ok bool) {
	top := in.peak()
	if top < 0 {
		return 0, 0, false
	}
	limit := 0.9 * in.Values[top]

	left := top
	for left > 0 && in.Values[left-1] >= limit {
		left--
	}
	right := top
	for right < in.Len()-1 && in.Values[right+1] >= limit {
		right++
	}
	return in.Times[left], in.Times[right], true
}

package formant

// MaxFormants is the number of formant slots carried per frame. Readings past
// the last slot are dropped on ingestion.
const MaxFormants = 6

// Slots holds one optional reading per formant index.
type Slots [MaxFormants]Value

// NewSlots fills slots from a variable-length list.
func NewSlots(values []float64) Slots {
	var s Slots
	for i, v := range values {
		if i >= MaxFormants {
			break
		}
		s[i] = Some(v)
	}
	return s
}

// Count returns the number of leading defined slots.
func (s Slots) Count() int {
	n := 0
	for _, v := range s {
		if !v.Defined() {
			break
		}
		n++
	}
	return n
}

// Floats returns the leading defined slots as a plain list.
func (s Slots) Floats() []float64 {
	out := make([]float64, 0, MaxFormants)
	for _, v := range s {
		f, ok := v.Get()
		if !ok {
			break
		}
		out = append(out, f)
	}
	return out
}

// Frame is one analysis frame of a candidate track.
type Frame struct {
	Time       float64 `json:"t" yaml:"t"`
	Formants   Slots   `json:"f" yaml:"f"`
	Bandwidths Slots   `json:"b" yaml:"b"`
}

// NewFrame builds a frame from variable-length formant and bandwidth lists.
func NewFrame(t float64, formants, bandwidths []float64) Frame {
	return Frame{
		Time:       t,
		Formants:   NewSlots(formants),
		Bandwidths: NewSlots(bandwidths),
	}
}

// NumFormants returns the number of leading defined formants.
func (f Frame) NumFormants() int {
	return f.Formants.Count()
}

// F returns formant n (1-based). Out of range yields Undefined.
func (f Frame) F(n int) Value {
	if n < 1 || n > MaxFormants {
		return Undefined
	}
	return f.Formants[n-1]
}

// B returns bandwidth n (1-based). Out of range yields Undefined.
func (f Frame) B(n int) Value {
	if n < 1 || n > MaxFormants {
		return Undefined
	}
	return f.Bandwidths[n-1]
}

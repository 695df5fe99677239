package formant

import "math"

// Track is an ordered sequence of frames for one formant order.
type Track []Frame

// Times returns the frame times.
func (t Track) Times() []float64 {
	times := make([]float64, len(t))
	for i, f := range t {
		times[i] = f.Time
	}
	return times
}

// Trim keeps the frames whose time lies within [min, max].
func (t Track) Trim(min, max float64) Track {
	out := make(Track, 0, len(t))
	for _, f := range t {
		if f.Time >= min && f.Time <= max {
			out = append(out, f)
		}
	}
	return out
}

// Index returns the index of the frame nearest to at, or -1 for an empty track.
func (t Track) Index(at float64) int {
	return TimeIndex(at, t.Times())
}

// At returns the frame nearest to the given time.
func (t Track) At(at float64) (Frame, bool) {
	i := t.Index(at)
	if i < 0 {
		return Frame{}, false
	}
	return t[i], true
}

// TimeIndex returns the index of the time nearest to t in an ordered list.
// Times before the first or after the last entry clamp to the ends; on a tie
// the earlier index wins.
func TimeIndex(t float64, times []float64) int {
	if len(times) == 0 {
		return -1
	}
	if t < times[0] {
		return 0
	}
	if t > times[len(times)-1] {
		return len(times) - 1
	}

	prev := 0.0
	for i, ti := range times {
		if t > ti {
			prev = ti
			continue
		}
		if math.Abs(t-prev) > math.Abs(t-ti) || i == 0 {
			return i
		}
		return i - 1
	}
	return len(times) - 1
}

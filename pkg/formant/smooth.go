package formant

import (
	"errors"
	"fmt"
)

var (
	// ErrTrackTooShort is returned when a track has fewer than 2s+1 frames.
	ErrTrackTooShort = errors.New("formant: track too short for smoothing window")

	// ErrNegativeWindow is returned for a negative half-window.
	ErrNegativeWindow = errors.New("formant: smoothing half-window must not be negative")
)

// Smooth averages formants and bandwidths over a symmetric window of 2s+1
// frames. The result has len(t)-2s frames carrying the times t[s:len-s]. An
// output slot is undefined unless the centre frame and every frame in the
// window define it.
func Smooth(t Track, s int) (Track, error) {
	if s < 0 {
		return nil, ErrNegativeWindow
	}
	if 2*s+1 > len(t) {
		return nil, fmt.Errorf("%w: %d frames, window %d", ErrTrackTooShort, len(t), 2*s+1)
	}

	formants := make([]Slots, len(t))
	bandwidths := make([]Slots, len(t))
	for i, f := range t {
		formants[i] = f.Formants
		bandwidths[i] = f.Bandwidths
	}

	sf := SmoothSlots(formants, s)
	sb := SmoothSlots(bandwidths, s)

	out := make(Track, len(sf))
	for i := range sf {
		out[i] = Frame{
			Time:       t[i+s].Time,
			Formants:   sf[i],
			Bandwidths: sb[i],
		}
	}
	return out, nil
}

// SmoothSlots applies the strict window average to each slot index
// independently. Callers guarantee len(rows) >= 2s+1.
func SmoothSlots(rows []Slots, s int) []Slots {
	if len(rows) < 2*s+1 {
		return nil
	}
	out := make([]Slots, len(rows)-2*s)
	width := float64(2*s + 1)

	for i := s; i < len(rows)-s; i++ {
		for n := range MaxFormants {
			sum, ok := rows[i][n].Get()
			if !ok {
				continue
			}
			for j := 1; j <= s && ok; j++ {
				after, okAfter := rows[i+j][n].Get()
				before, okBefore := rows[i-j][n].Get()
				if !okAfter || !okBefore {
					ok = false
					break
				}
				sum += after + before
			}
			if ok {
				out[i-s][n] = Some(sum / width)
			}
		}
	}
	return out
}

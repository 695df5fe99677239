// Package praat reads Formant and Intensity objects saved by Praat as text
// files, in either the short or the long layout.
package praat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
)

// ErrFormat is returned when a file ends early or holds a malformed number.
var ErrFormat = errors.New("praat: malformed text file")

// headerTokens are the "File type" and "Object class" values.
const headerTokens = 2

// Header holds the time domain shared by sampled Praat objects.
type Header struct {
	Xmin float64
	Xmax float64
	Nx   int
	Dx   float64
	X1   float64
}

// FrameTime returns the time of frame i rounded to milliseconds.
func (h Header) FrameTime(i int) float64 {
	return formant.Round(float64(i)*h.Dx+h.X1, 3)
}

// tokens yields the values of a Praat text file. Lines of the form
// "key = value" contribute their value and bare numeric lines contribute
// themselves; labels such as "frame [3]:" are skipped.
type tokens struct {
	values []string
	pos    int
}

func tokenize(r io.Reader) (*tokens, error) {
	var values []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if _, value, ok := strings.Cut(line, "="); ok {
			values = append(values, strings.Trim(strings.TrimSpace(value), `"`))
			continue
		}
		if _, err := strconv.ParseFloat(line, 64); err == nil {
			values = append(values, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read praat file: %w", err)
	}
	if len(values) < headerTokens {
		return nil, fmt.Errorf("%w: missing header", ErrFormat)
	}
	return &tokens{values: values, pos: headerTokens}, nil
}

func (t *tokens) float(name string) (float64, error) {
	if t.pos >= len(t.values) {
		return 0, fmt.Errorf("%w: unexpected end of file reading %s", ErrFormat, name)
	}
	v, err := strconv.ParseFloat(t.values[t.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrFormat, name, err)
	}
	t.pos++
	return v, nil
}

func (t *tokens) int(name string) (int, error) {
	v, err := t.float(name)
	if err != nil {
		return 0, err
	}
	if v < 0 || v != float64(int(v)) {
		return 0, fmt.Errorf("%w: %s is not a count: %g", ErrFormat, name, v)
	}
	return int(v), nil
}

func (t *tokens) header() (Header, error) {
	var h Header
	var err error
	if h.Xmin, err = t.float("xmin"); err != nil {
		return h, err
	}
	if h.Xmax, err = t.float("xmax"); err != nil {
		return h, err
	}
	if h.Nx, err = t.int("nx"); err != nil {
		return h, err
	}
	if h.Dx, err = t.float("dx"); err != nil {
		return h, err
	}
	if h.X1, err = t.float("x1"); err != nil {
		return h, err
	}
	h.Xmin = formant.Round(h.Xmin, 3)
	h.Xmax = formant.Round(h.Xmax, 3)
	h.Dx = formant.Round(h.Dx, 3)
	h.X1 = formant.Round(h.X1, 3)
	return h, nil
}

// ReadFormant parses a Formant object into a track. Frames with more than
// formant.MaxFormants formants keep the lowest ones.
func ReadFormant(r io.Reader) (formant.Track, Header, error) {
	t, err := tokenize(r)
	if err != nil {
		return nil, Header{}, err
	}
	h, err := t.header()
	if err != nil {
		return nil, h, err
	}
	if _, err := t.int("maxnFormants"); err != nil {
		return nil, h, err
	}

	track := make(formant.Track, 0, h.Nx)
	for i := range h.Nx {
		if _, err := t.float("intensity"); err != nil {
			return nil, h, err
		}
		n, err := t.int("nFormants")
		if err != nil {
			return nil, h, err
		}
		freqs := make([]float64, n)
		bands := make([]float64, n)
		for j := range n {
			if freqs[j], err = t.float("frequency"); err != nil {
				return nil, h, err
			}
			if bands[j], err = t.float("bandwidth"); err != nil {
				return nil, h, err
			}
		}
		track = append(track, formant.NewFrame(h.FrameTime(i), freqs, bands))
	}
	return track, h, nil
}

// ReadIntensity parses an Intensity object into a contour.
func ReadIntensity(r io.Reader) (measure.Intensity, error) {
	t, err := tokenize(r)
	if err != nil {
		return measure.Intensity{}, err
	}
	h, err := t.header()
	if err != nil {
		return measure.Intensity{}, err
	}
	for _, name := range []string{"ymin", "ymax", "ny", "dy", "y1"} {
		if _, err := t.float(name); err != nil {
			return measure.Intensity{}, err
		}
	}

	in := measure.Intensity{
		Times:  make([]float64, 0, h.Nx),
		Values: make([]float64, 0, h.Nx),
	}
	for i := range h.Nx {
		z, err := t.float("z")
		if err != nil {
			return measure.Intensity{}, err
		}
		in.Times = append(in.Times, h.FrameTime(i))
		in.Values = append(in.Values, z)
	}
	return in, nil
}

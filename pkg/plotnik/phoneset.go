package plotnik

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"
)

//go:embed cmu_phoneset.txt
var cmuPhoneset string

// ErrMalformedPhoneset is returned when a phoneset line has too few columns.
var ErrMalformedPhoneset = errors.New("plotnik: malformed phoneset line")

// Features are the CMU distinctive features of one phone. Consonant manner
// is one of s a f n l r; place one of l b d a p v; voice + or -. "0" marks
// a feature that does not apply.
type Features struct {
	Label   string
	Vocalic string
	Length  string
	Height  string
	Front   string
	Round   string
	Manner  string
	Place   string
	Voice   string
}

// Phoneset maps an ARPABET label without stress to its features.
type Phoneset map[string]Features

// DefaultPhoneset returns the built-in CMU phoneset.
func DefaultPhoneset() Phoneset {
	ps, err := ReadPhoneset(strings.NewReader(cmuPhoneset))
	if err != nil {
		panic(fmt.Sprintf("plotnik: embedded phoneset: %v", err))
	}
	return ps
}

// ReadPhoneset parses a CMU phoneset file: one header line, then a label
// followed by eight whitespace-separated feature columns per line.
func ReadPhoneset(r io.Reader) (Phoneset, error) {
	ps := make(Phoneset)
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 9 {
			return nil, fmt.Errorf("%w %d: %q", ErrMalformedPhoneset, line, scanner.Text())
		}
		ps[fields[0]] = Features{
			Label:   fields[0],
			Vocalic: fields[1],
			Length:  fields[2],
			Height:  fields[3],
			Front:   fields[4],
			Round:   fields[5],
			Manner:  fields[6],
			Place:   fields[7],
			Voice:   fields[8],
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read phoneset: %w", err)
	}
	return ps, nil
}

// Voice returns the voicing feature of label, or "0" for unknown phones.
func (ps Phoneset) Voice(label string) string {
	if f, ok := ps[label]; ok {
		return f.Voice
	}
	return "0"
}

// Has reports whether label is in the phoneset.
func (ps Phoneset) Has(label string) bool {
	_, ok := ps[label]
	return ok
}

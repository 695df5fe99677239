package report

import (
	"bufio"
	"math"
	"strconv"
	"strings"

	"github.com/RyanBlaney/formant-extract/pkg/formant"
)

// number renders a float the way the downstream Plotnik and R tooling
// expects: shortest round-trip digits, always with a decimal point, and
// exponent notation only for very small or very large magnitudes.
func number(v float64) string {
	if abs := math.Abs(v); v != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// value renders a defined value, or "" when undefined.
func value(v formant.Value) string {
	if f, ok := v.Get(); ok {
		return number(f)
	}
	return ""
}

// present renders a value only when it is defined and non-zero.
func present(v formant.Value) string {
	if !v.Truthy() {
		return ""
	}
	return number(v.Or(0))
}

// rounded renders a present value rounded to the given decimals.
func rounded(v formant.Value, decimals int) string {
	return present(v.Round(decimals))
}

func joinNumbers(values []float64, sep string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = number(v)
	}
	return strings.Join(parts, sep)
}

// lineWriter writes delimited rows. Write errors are sticky in the buffered
// writer and surface on flush.
type lineWriter struct {
	w   *bufio.Writer
	sep string
	eol string
}

func newLineWriter(w *bufio.Writer, sep, eol string) *lineWriter {
	return &lineWriter{w: w, sep: sep, eol: eol}
}

func (lw *lineWriter) row(fields ...string) {
	lw.w.WriteString(strings.Join(fields, lw.sep))
	lw.w.WriteString(lw.eol)
}

func (lw *lineWriter) raw(s string) {
	lw.w.WriteString(s)
}

func (lw *lineWriter) flush() error {
	return lw.w.Flush()
}

package measure

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownMethod is returned when a measurement method name is not recognised.
var ErrUnknownMethod = errors.New("measure: unknown measurement point method")

// Method selects how the measurement time within a vowel is chosen.
type Method int

const (
	Third Method = iota
	Fourth
	Mid
	Lennig
	ANAE
	FAAV
	MaxIntensity
)

var methodNames = map[Method]string{
	Third:        "third",
	Fourth:       "fourth",
	Mid:          "mid",
	Lennig:       "lennig",
	ANAE:         "anae",
	FAAV:         "faav",
	MaxIntensity: "maxint",
}

// Methods lists all methods in declaration order.
func Methods() []Method {
	return []Method{Third, Fourth, Mid, Lennig, ANAE, FAAV, MaxIntensity}
}

// ParseMethod converts a configuration name into a Method.
func ParseMethod(name string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for m, n := range methodNames {
		if n == key {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMethod, name)
}

func (m Method) String() string {
	if n, ok := methodNames[m]; ok {
		return n
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// UsesIntensity reports whether the method reads the intensity contour.
func (m Method) UsesIntensity() bool {
	return m == FAAV || m == MaxIntensity
}

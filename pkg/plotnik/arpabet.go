package plotnik

import "strings"

var vowels = map[string]bool{
	"AA": true, "AE": true, "AH": true, "AO": true, "AW": true,
	"AY": true, "EH": true, "ER": true, "EY": true, "IH": true,
	"IY": true, "OW": true, "OY": true, "UH": true, "UW": true,
}

// SplitStress separates a trailing stress digit (0, 1 or 2) from an ARPABET
// label. Labels without one return an empty stress.
func SplitStress(label string) (base, stress string) {
	if n := len(label); n > 0 {
		switch label[n-1] {
		case '0', '1', '2':
			return label[:n-1], label[n-1:]
		}
	}
	return label, ""
}

// VowelBase returns the two-letter vowel of label, upper-cased, and whether
// label is a vowel at all. Any single trailing digit is accepted.
func VowelBase(label string) (string, bool) {
	u := strings.ToUpper(label)
	switch {
	case len(u) == 3 && u[2] >= '0' && u[2] <= '9':
		u = u[:2]
	case len(u) != 2:
		return "", false
	}
	return u, vowels[u]
}

// IsVowel reports whether label is an ARPABET vowel, with or without stress.
func IsVowel(label string) bool {
	_, ok := VowelBase(label)
	return ok
}

// Stress returns the stress digit of a vowel label, or "" for consonants.
func Stress(label string) string {
	if !IsVowel(label) {
		return ""
	}
	_, s := SplitStress(label)
	return s
}

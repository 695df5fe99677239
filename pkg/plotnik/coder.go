// Package plotnik codes ARPABET vowels into Plotnik vowel classes with
// phonetic environment codes.
package plotnik

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownSystem is returned for an unrecognised vowel system name.
	ErrUnknownSystem = errors.New("plotnik: unknown vowel system")

	// ErrNotVowel is returned when the phone to code is not a vowel.
	ErrNotVowel = errors.New("plotnik: phone is not a vowel")
)

// System selects the vowel class inventory.
type System int

// SimplifiedARPABET is accepted for configurations that name it and codes
// like NorthAmerican.
const (
	NorthAmerican System = iota
	Phila
	SimplifiedARPABET
)

// ParseSystem converts a configuration name into a System.
func ParseSystem(name string) (System, error) {
	switch {
	case name == "NorthAmerican":
		return NorthAmerican, nil
	case strings.EqualFold(name, "phila"):
		return Phila, nil
	case name == "simplifiedARPABET":
		return SimplifiedARPABET, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSystem, name)
	}
}

func (s System) String() string {
	switch s {
	case NorthAmerican:
		return "NorthAmerican"
	case Phila:
		return "Phila"
	case SimplifiedARPABET:
		return "simplifiedARPABET"
	default:
		return fmt.Sprintf("system(%d)", int(s))
	}
}

// Code is the Plotnik coding of one vowel token.
type Code struct {
	Class        string `json:"cd" yaml:"cd"`
	Manner       string `json:"fm" yaml:"fm"`
	Place        string `json:"fp" yaml:"fp"`
	Voice        string `json:"fv" yaml:"fv"`
	Preceding    string `json:"ps" yaml:"ps"`
	FollowingSeq string `json:"fs" yaml:"fs"`

	// PrecedingPhone is the previous phone without stress, "" word-initially.
	PrecedingPhone string `json:"pre_phone" yaml:"pre_phone"`
}

// String renders the code as "cd.fmfpfvpsfs".
func (c Code) String() string {
	return c.Class + "." + c.Manner + c.Place + c.Voice + c.Preceding + c.FollowingSeq
}

// Coder assigns Plotnik codes using a phoneset and vowel system.
type Coder struct {
	phoneset Phoneset
	system   System
}

// NewCoder returns a coder. A nil phoneset uses the built-in table.
func NewCoder(ps Phoneset, sys System) *Coder {
	if ps == nil {
		ps = DefaultPhoneset()
	}
	return &Coder{phoneset: ps, system: sys}
}

// System returns the coder's vowel system.
func (c *Coder) System() System {
	return c.system
}

var (
	labialOral   = set("B", "P", "V", "F")
	apicalOral   = set("D", "T", "Z", "S", "TH", "DH")
	palatals     = set("ZH", "SH", "JH", "CH")
	velars       = set("G", "K")
	liquids      = set("L", "R")
	obstruents   = set("B", "D", "G", "P", "T", "K", "V", "F", "Z", "S", "SH", "TH")
	glides       = set("W", "Y")
	codaBreakers = set("Y", "W", "R", "L")
)

// Code returns the Plotnik code for the vowel at index i of phones, which
// are the word's ARPABET labels in order.
func (c *Coder) Code(i int, phones []string, word string) (Code, error) {
	if i < 0 || i >= len(phones) {
		return Code{}, fmt.Errorf("phone index %d out of range for %d phones", i, len(phones))
	}
	vowel, ok := VowelBase(phones[i])
	if !ok {
		return Code{}, fmt.Errorf("%w: %q", ErrNotVowel, phones[i])
	}
	trans := strings.ToUpper(word)

	code := Code{Manner: "0", Place: "0", Voice: "0", Preceding: "0", FollowingSeq: "0"}

	var next string
	lastOrFinalSP := i+1 == len(phones) || (i == len(phones)-2 && strings.EqualFold(phones[i+1], "SP"))
	if !lastOrFinalSP {
		next, _ = SplitStress(phones[i+1])
		if f, ok := c.phoneset[next]; ok {
			code.Manner = codeOr(mannerCodes, f.Manner)
			code.Place = codeOr(placeCodes, f.Place)
			code.Voice = codeOr(voiceCodes, f.Voice)
		}
		code.FollowingSeq = followingSequence(i, phones)
	}

	if i > 0 {
		code.PrecedingPhone, _ = SplitStress(phones[i-1])
		code.Preceding = precedingSegment(i, phones, code.PrecedingPhone)
	}

	code.Class = c.vowelClass(vowel, trans, code.PrecedingPhone, next)
	if c.system == Phila {
		code.Class = c.philaClass(i, phones, trans, code)
	}
	return code, nil
}

func (c *Coder) vowelClass(vowel, trans, prev, next string) string {
	if (prev != "" && !c.phoneset.Has(prev)) || (next != "" && !c.phoneset.Has(next)) {
		return a2p[vowel]
	}
	switch {
	case next == "" && a2pFinal[vowel] != "":
		return a2pFinal[vowel]
	case next != "" && vowel == "AY" && c.phoneset[next].Voice == "-":
		return "47"
	case vowel == "AA" && fatherWords[trans]:
		return "43"
	case prev != "" && vowel == "UW" && c.phoneset[prev].Place == "a":
		return "73"
	case next != "" && c.phoneset[next].Manner == "r" && vowel != "ER":
		return a2pR[vowel]
	default:
		return a2p[vowel]
	}
}

func followingSequence(i int, phones []string) string {
	syllables := 0
	for _, p := range phones[i+1:] {
		if IsVowel(p) {
			syllables++
		}
	}
	coda := 0
	for _, p := range phones[i+1:] {
		if IsVowel(p) || (coda == 1 && codaBreakers[p]) {
			break
		}
		coda++
	}

	switch {
	case coda <= 1 && syllables == 1:
		return "1"
	case coda <= 1 && syllables >= 2:
		return "2"
	case coda > 1 && syllables == 0:
		return "3"
	case coda > 1 && syllables == 1:
		return "4"
	case coda > 1 && syllables >= 2:
		return "5"
	default:
		return "0"
	}
}

func precedingSegment(i int, phones []string, prev string) string {
	switch {
	case labialOral[prev]:
		return "1"
	case prev == "M":
		return "2"
	case apicalOral[prev]:
		return "3"
	case prev == "N":
		return "4"
	case palatals[prev]:
		return "5"
	case velars[prev]:
		return "6"
	case i > 1 && liquids[prev] && obstruents[phones[i-2]]:
		return "8"
	case liquids[prev] || prev == "ER":
		return "7"
	case glides[prev]:
		return "9"
	default:
		return "0"
	}
}

func codeOr(table map[string]string, feature string) string {
	if v, ok := table[feature]; ok {
		return v
	}
	return "0"
}

func set(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

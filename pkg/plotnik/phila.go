package plotnik

import "strings"

var fatherWords = set(
	"FATHER", "FATHER'S", "MA", "MA'S", "PA", "PA'S", "SPA", "SPAS", "SPA'S",
	"CHICAGO", "CHICAGO'S", "PASTA", "BRA", "BRAS", "BRA'S", "UTAH", "TACO", "TACOS", "TACO'S",
	"GRANDFATHER", "GRANDFATHERS", "GRANDFATHER'S", "CALM", "CALMER", "CALMEST", "CALMING", "CALMED", "CALMS",
	"PALM", "PALMS", "BALM", "BALMS", "ALMOND", "ALMONDS", "LAGER", "SALAMI", "NIRVANA", "KARATE", "AH",
)

var (
	shortAFunctionWords = set("AND", "AN'", "AM", "AN", "THAN")
	tensingConsonants   = set("M", "N", "S", "TH", "F")
	tensingExceptions   = set("CATHOLIC", "CATHOLICS", "CAMERA")
	tenseSuffixes       = [][2]string{{"IH0", "NG"}, {"AH0", "NG"}, {"AH0", "N"}, {"AH0", "Z"}}
	voicelessStops      = set("P", "T", "K")

	madBadGlad = set(
		"MAD", "BAD", "GLAD", "MADLY", "BADLY", "GLADLY", "MADDER", "BADDER", "GLADDER",
		"MADDEST", "BADDEST", "GLADDEST", "MADNESS", "GLADNESS", "BADNESS", "MADHOUSE",
	)

	variableShortA = set(
		"RAN", "SWAM", "BEGAN", "CAN", "FAMILY", "FAMILIES", "FAMILY'S", "JANUARY", "ANNUAL",
		"ANNE", "ANNE'S", "ANNIE", "ANNIE'S", "JOANNE", "GAS", "GASES", "EXAM", "EXAMS", "EXAM'S", "ALAS", "ASPIRIN",
	)

	// "FALLINGAUDIENCE" is kept as a single entry.
	ohWords = set(
		"LAW", "LAWS", "LAW'S", "LAWFUL", "UNLAWFUL", "DOG", "DOGS", "DOG'S", "DOGGED",
		"ALL", "ALL'S", "CALL", "CALLS", "CALL'S", "CALLING", "CALLED", "FALL", "FALLS", "FALL'S", "FALLINGAUDIENCE",
		"AUDIENCES", "AUDIENCE'S", "ON", "ONTO", "GONNA", "GONE", "BOSTON", "BOSTON'S",
		"AWFUL", "AWFULLY", "AWFULNESS", "AWKWARD", "AWKWARDLY", "AWKWARDNESS", "AWESOME", "AUGUST",
		"COUGH", "COUGHS", "COUGHED", "COUGHING",
	)

	oWords = set(
		"CHOCOLATE", "CHOCOLATES", "CHOCOLATE'S", "WALLET", "WALLETS", "WARRANT", "WARRANTS",
		"WATCH", "WATCHES", "WATCHED", "WATCHING", "WANDER", "WANDERS", "WANDERED", "WANDERING",
		"CONNIE", "CATHOLICISM", "WANT", "WANTED", "PONG", "GONG", "KONG", "FLORIDA", "ORANGE",
		"HORRIBLE", "MAJORITY",
	)

	iwOnsets   = set("T", "D", "N", "L", "S")
	iwSpelling = []string{"TU", "DU", "NU", "LU", "SU"}
)

// philaClass applies the Philadelphia reassignments in order. Each rule sees
// the class left by the rules before it.
func (c *Coder) philaClass(i int, phones []string, trans string, code Code) string {
	arpa := make([]string, len(phones))
	for k, p := range phones {
		arpa[k], _ = SplitStress(p)
	}
	at := func(k int) string {
		if k < len(arpa) {
			return arpa[k]
		}
		return ""
	}
	n := len(phones)
	pc := code.Class

	// short-a: tense /aeh/ and variable /aey/
	if pc == "3" && phones[i] == "AE1" && !shortAFunctionWords[trans] && code.Manner != "0" {
		if tensingConsonants[at(i+1)] {
			switch {
			case n == i+2:
				if trans == "MATH" {
					pc = "39"
				} else {
					pc = "33"
				}
			case c.phoneset.Voice(arpa[i+2]) != "0" && !tensingExceptions[trans]:
				pc = "33"
			case n > i+3:
				if n == i+4 && hasTenseSuffix(phones[i+2], phones[i+3]) {
					pc = "33"
				} else {
					pc = "39"
				}
			}
		}
		if madBadGlad[trans] {
			pc = "33"
		}
		if variableShortA[trans] {
			pc = "39"
		}
		if at(i+1) == "L" {
			pc = "39"
		}
		if n > i+3 && at(i+1) == "S" && voicelessStops[at(i+2)] && c.phoneset.Voice(arpa[i+3]) == "0" &&
			!strings.HasSuffix(trans, "ING") && !strings.HasSuffix(trans, "IN'") {
			pc = "39"
		}
	}

	// -ARRY words listed with /e/
	if pc == "2" && strings.Contains(trans, "ARRY") && n > i+2 && at(i+1) == "R" && c.phoneset.Voice(arpa[i+2]) == "0" {
		pc = "39"
	}

	if pc == "5" && trans == "MARIO" {
		pc = "3"
	}

	if trans == "CATCH" || trans == "KEPT" {
		pc = "2"
	}

	if arpa[i] == "AA" && ohWords[trans] {
		pc = "53"
	}
	if arpa[i] == "AO" && oWords[trans] {
		pc = "5"
	}
	if arpa[i] == "AE" && (trans == "LANZA" || trans == "LANZA'S") {
		pc = "5"
	}

	// /iw/
	if phones[i] == "UW1" {
		if i > 0 && arpa[i-1] == "Y" {
			pc = "82"
		}
		if strings.Contains(trans, "EW") {
			pc = "82"
		}
		if i > 0 && iwOnsets[arpa[i-1]] {
			for _, sp := range iwSpelling {
				if strings.Contains(trans, sp) {
					pc = "82"
				}
			}
		}
	}

	if phones[i] == "UW1" && trans == "THROUGH" {
		pc = "73"
	}

	// front vowels before /r/
	if n > i+1 && (arpa[i] == "EH" || arpa[i] == "AE") && arpa[i+1] == "R" {
		if n == i+2 {
			pc = "24"
		}
		if n > i+2 && c.phoneset.Voice(arpa[i+2]) != "0" {
			pc = "24"
		}
	}

	return pc
}

func hasTenseSuffix(a, b string) bool {
	for _, s := range tenseSuffixes {
		if s[0] == a && s[1] == b {
			return true
		}
	}
	return false
}

package plotnik

// ARPABET vowel to Plotnik class.
var a2p = map[string]string{
	"AA": "5", "AE": "3", "AH": "6", "AO": "53", "AW": "42", "AY": "41", "EH": "2", "ER": "94",
	"EY": "21", "IH": "1", "IY": "11", "OW": "62", "OY": "61", "UH": "7", "UW": "72",
}

// Word-final free vowels.
var a2pFinal = map[string]string{"IY": "12", "EY": "22", "OW": "63"}

// Vowels before tautosyllabic /r/.
var a2pR = map[string]string{
	"EH": "2", "AE": "3", "IH": "14", "IY": "14", "EY": "24", "AA": "44", "AO": "64",
	"OW": "64", "UH": "74", "UW": "74", "AH": "6", "AW": "42", "AY": "41", "OY": "61",
}

var (
	mannerCodes = map[string]string{"s": "1", "a": "2", "f": "3", "n": "4", "l": "5", "r": "6"}
	placeCodes  = map[string]string{"l": "1", "a": "4", "p": "5", "b": "2", "d": "3", "v": "6"}
	voiceCodes  = map[string]string{"-": "1", "+": "2"}
)

// Codes lists the Plotnik vowel classes in side-bar order.
var Codes = []string{
	"1", "2", "3", "5", "6", "7", "8", "11", "12", "21", "22", "41", "47", "61", "82",
	"72", "73", "62", "63", "42", "33", "43", "53", "14", "24", "44", "54", "64", "74", "94", "31", "39",
}

var styles = map[string]string{
	"R": "2", "N": "1", "L": "2", "G": "1", "S": "2", "K": "1", "T": "1", "C": "2",
	"WL": "6", "MP": "7", "RP": "5", "SD": "4",
}

var vowelNames = map[string]string{
	"1": "i", "2": "e", "3": "ae", "5": "o", "6": "uh", "7": "u",
	"11": "iy", "12": "iyF", "14": "iyr", "21": "ey", "22": "eyF", "24": "eyr",
	"33": "aeh", "39": "aey", "41": "ay", "42": "aw", "43": "ah", "44": "ahr", "47": "ay0",
	"53": "oh", "61": "oy", "62": "ow", "63": "owF", "64": "owr",
	"72": "uw", "73": "Tuw", "74": "uwr", "82": "iw", "94": "*hr",
}

var ipaNames = map[string]string{
	"1": "ɪ", "2": "ɛ", "3": "æ", "5": "ɑ", "6": "ʌ", "7": "ʊ",
	"11": "iy", "12": "iyF", "14": "iɹ", "21": "ey", "22": "eyF", "24": "eɹ",
	"33": "æh", "39": "æy", "41": "ay", "42": "aw", "43": "ɑh", "44": "ɑɹ", "47": "ʌy",
	"53": "ɔh", "61": "ɔy", "62": "ow", "63": "owF", "64": "oɹ",
	"72": "uw", "73": "Tuw", "74": "uɹ", "82": "iw", "94": "ɚ",
}

var mannerNames = map[string]string{
	"1": "stop", "2": "affricate", "3": "fricative", "4": "nasal", "5": "lateral", "6": "central",
}

var placeNames = map[string]string{
	"1": "labial", "2": "labiodental", "3": "interdental", "4": "apical", "5": "palatal", "6": "velar",
}

var voiceNames = map[string]string{"1": "voiceless", "2": "voiced"}

var precedingNames = map[string]string{
	"1": "oral labial", "2": "nasal labial", "3": "oral apical", "4": "nasal apical",
	"5": "palatal", "6": "velar", "7": "liquid", "8": "obstruent liquid", "9": "w/y",
}

var followingSeqNames = map[string]string{
	"1": "one fol syl", "2": "two fol syl", "3": "complex coda",
	"4": "complex one syl", "5": "complex two syl",
}

func lookup(table map[string]string, code string) string {
	if code == "0" || code == "" {
		return ""
	}
	if name, ok := table[code]; ok {
		return name
	}
	return code
}

// VowelName returns the Plotnik label for a vowel class, e.g. "iy" for 11.
func VowelName(class string) string { return lookup(vowelNames, class) }

// IPAName returns the IPA-style label for a vowel class.
func IPAName(class string) string { return lookup(ipaNames, class) }

// MannerName returns the label for a following-manner code.
func MannerName(fm string) string { return lookup(mannerNames, fm) }

// PlaceName returns the label for a following-place code.
func PlaceName(fp string) string { return lookup(placeNames, fp) }

// VoiceName returns the label for a following-voice code.
func VoiceName(fv string) string { return lookup(voiceNames, fv) }

// PrecedingName returns the label for a preceding-segment code.
func PrecedingName(ps string) string { return lookup(precedingNames, ps) }

// FollowingSeqName returns the label for a following-sequence code.
func FollowingSeqName(fs string) string { return lookup(followingSeqNames, fs) }

// StyleCode converts a style tier label to its Plotnik digit. Unknown labels
// pass through unchanged.
func StyleCode(style string) string {
	if code, ok := styles[style]; ok {
		return code
	}
	return style
}

package extract

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// ErrUnknownSex is returned when the analysis ceiling cannot be derived.
var ErrUnknownSex = errors.New("speaker sex must be one of m, f, male, female")

// Speaker holds the background information written into every output file
type Speaker struct {
	Name             string `json:"name" yaml:"name"`
	FirstName        string `json:"first_name" yaml:"first_name"`
	LastName         string `json:"last_name" yaml:"last_name"`
	Age              string `json:"age" yaml:"age"`
	Sex              string `json:"sex" yaml:"sex"`
	Ethnicity        string `json:"ethnicity" yaml:"ethnicity"`
	YearsOfSchooling string `json:"years_of_schooling" yaml:"years_of_schooling"`
	Location         string `json:"location" yaml:"location"`
	City             string `json:"city" yaml:"city"`
	State            string `json:"state" yaml:"state"`
	Year             string `json:"year" yaml:"year"`
	TierNum          int    `json:"tiernum" yaml:"tiernum"`
}

// MaxFormant returns the LPC analysis ceiling in Hz for the speaker's sex.
func (s Speaker) MaxFormant() (int, error) {
	switch s.Sex {
	case "m", "M", "male", "MALE":
		return 5000, nil
	case "f", "F", "female", "FEMALE":
		return 5500, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownSex, s.Sex)
	}
}

// Attributes returns the speaker fields keyed by name, in sorted key order.
func (s Speaker) Attributes() (keys []string, values map[string]string) {
	values = map[string]string{
		"name":               s.Name,
		"first_name":         s.FirstName,
		"last_name":          s.LastName,
		"age":                s.Age,
		"sex":                s.Sex,
		"ethnicity":          s.Ethnicity,
		"years_of_schooling": s.YearsOfSchooling,
		"location":           s.Location,
		"city":               s.City,
		"state":              s.State,
		"year":               s.Year,
		"tiernum":            strconv.Itoa(s.TierNum),
	}
	keys = make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, values
}

// Phone is one aligned segment. Vowel labels carry a stress digit.
type Phone struct {
	Label string  `json:"label" yaml:"label"`
	Xmin  float64 `json:"xmin" yaml:"xmin"`
	Xmax  float64 `json:"xmax" yaml:"xmax"`

	Overlap bool         `json:"overlap,omitempty" yaml:"overlap,omitempty"`
	Code    plotnik.Code `json:"code" yaml:"-"`
}

// Base returns the label without its stress digit.
func (p Phone) Base() string {
	base, _ := plotnik.SplitStress(p.Label)
	return base
}

// Stress returns the stress digit of a vowel label.
func (p Phone) Stress() string {
	return plotnik.Stress(p.Label)
}

// IsVowel reports whether the phone is a vowel.
func (p Phone) IsVowel() bool {
	return plotnik.IsVowel(p.Label)
}

// Duration returns xmax - xmin.
func (p Phone) Duration() float64 {
	return p.Xmax - p.Xmin
}

// Word is one aligned word with its phones.
type Word struct {
	Transcription string  `json:"transcription" yaml:"transcription"`
	Xmin          float64 `json:"xmin" yaml:"xmin"`
	Xmax          float64 `json:"xmax" yaml:"xmax"`
	Phones        []Phone `json:"phones" yaml:"phones"`
	Style         string  `json:"style,omitempty" yaml:"style,omitempty"`
}

// Labels returns the phone labels in order.
func (w *Word) Labels() []string {
	labels := make([]string, len(w.Phones))
	for i, p := range w.Phones {
		labels[i] = p.Label
	}
	return labels
}

// PhoneTranscription joins the phone labels with spaces.
func (w *Word) PhoneTranscription() string {
	if w == nil {
		return ""
	}
	return strings.Join(w.Labels(), " ")
}

// NumVowels counts vowel phones.
func (w *Word) NumVowels() int {
	n := 0
	for _, p := range w.Phones {
		if p.IsVowel() {
			n++
		}
	}
	return n
}

// OrderTrack is the formant track computed at one LPC order.
type OrderTrack struct {
	Order int           `json:"order" yaml:"order"`
	Track formant.Track `json:"track" yaml:"track"`
}

// Candidates are the analyses available for one vowel token.
type Candidates struct {
	Tracks    []OrderTrack
	Intensity measure.Intensity
}

// Window is the analysis interval around a vowel, padded on both sides.
type Window struct {
	Xmin   float64
	Xmax   float64
	PadBeg float64
	PadEnd float64
}

// Start returns the padded start time.
func (w Window) Start() float64 { return w.Xmin - w.PadBeg }

// End returns the padded end time.
func (w Window) End() float64 { return w.Xmax + w.PadEnd }

// CandidateProvider supplies per-order formant tracks and an intensity
// contour for a vowel. Implementations read LPC output produced elsewhere.
type CandidateProvider interface {
	Candidates(wordIndex, phoneIndex int, phone Phone, window Window) (*Candidates, error)
}

// OrderCandidate is the measurement made at one formant order.
type OrderCandidate struct {
	Order   int             `json:"order"`
	Point   float64         `json:"point"`
	Frame   formant.Frame   `json:"frame"`
	Samples formant.Samples `json:"samples"`
	Track   formant.Track   `json:"track"`
}

// VowelMeasurement is the result for one vowel token
type VowelMeasurement struct {
	Phone   string `json:"phone"`
	Stress  string `json:"stress"`
	Style   string `json:"style"`
	Word    string `json:"word"`
	PreWord string `json:"pre_word"`
	FolWord string `json:"fol_word"`

	WordTrans    string `json:"word_trans"`
	PreWordTrans string `json:"pre_word_trans"`
	FolWordTrans string `json:"fol_word_trans"`

	F1 formant.Value `json:"f1"`
	F2 formant.Value `json:"f2"`
	F3 formant.Value `json:"f3"`
	B1 formant.Value `json:"b1"`
	B2 formant.Value `json:"b2"`
	B3 formant.Value `json:"b3"`

	T   float64 `json:"t"`
	Beg float64 `json:"beg"`
	End float64 `json:"end"`
	Dur float64 `json:"dur"`

	Code    plotnik.Code `json:"code"`
	Glide   string       `json:"glide"`
	PreSeg  string       `json:"pre_seg"`
	FolSeg  string       `json:"fol_seg"`
	Context string       `json:"context"`
	Index   int          `json:"vowel_index"`

	Tracks     formant.Samples `json:"tracks"`
	NFormants  int             `json:"n_formants"`
	Poles      []float64       `json:"poles"`
	Bandwidths []float64       `json:"bandwidths"`

	// Candidates holds every order analysed; Winner indexes the chosen one.
	Candidates []OrderCandidate `json:"candidates,omitempty"`
	Winner     int              `json:"winner"`
	Distance   formant.Value    `json:"distance"`

	NormF1     formant.Value   `json:"norm_f1"`
	NormF2     formant.Value   `json:"norm_f2"`
	NormTracks formant.Samples `json:"norm_tracks"`
}

// WinnerTrack returns the smoothed track of the chosen order.
func (vm *VowelMeasurement) WinnerTrack() formant.Track {
	if vm.Winner < 0 || vm.Winner >= len(vm.Candidates) {
		return nil
	}
	return vm.Candidates[vm.Winner].Track
}

// Adopt replaces the measured values with those of candidate i.
func (vm *VowelMeasurement) Adopt(i int) {
	c := vm.Candidates[i]
	vm.Winner = i
	vm.NFormants = c.Order
	vm.T = formant.Round(c.Point, 3)
	vm.setFrame(c.Frame)
	vm.Tracks = c.Samples
}

func (vm *VowelMeasurement) setFrame(f formant.Frame) {
	vm.F1 = f.F(1).Round(1)
	vm.F2 = f.F(2).Round(1)
	vm.F3 = f.F(3).Round(1)
	vm.B1 = f.B(1).Round(1)
	vm.B2 = f.B(2).Round(1)
	vm.B3 = f.B(3).Round(1)
	vm.Poles = f.Formants.Floats()
	vm.Bandwidths = f.Bandwidths.Floats()
}

package extract

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/RyanBlaney/formant-extract/pkg/classify"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// flatTrack returns n frames 10 ms apart starting at start, all carrying the
// same formants and bandwidths.
func flatTrack(start float64, n int, formants, bandwidths []float64) formant.Track {
	t := make(formant.Track, n)
	for i := range t {
		t[i] = formant.NewFrame(start+float64(i)*0.01, formants, bandwidths)
	}
	return t
}

func catPhone() Phone {
	return Phone{Label: "AE1", Xmin: 0.1, Xmax: 0.2, Code: plotnik.Code{Class: "3", Manner: "1", Place: "4", Voice: "1", Preceding: "6", FollowingSeq: "0"}}
}

func catWord() *Word {
	return &Word{
		Transcription: "CAT",
		Xmin:          0.05,
		Xmax:          0.25,
		Phones: []Phone{
			{Label: "K", Xmin: 0.05, Xmax: 0.1},
			catPhone(),
			{Label: "T", Xmin: 0.2, Xmax: 0.25},
		},
	}
}

func catReferences() classify.ReferenceSet {
	return classify.ReferenceSet{
		"3": {
			Mean:   []float64{700, 1700, math.Log(100), math.Log(150)},
			InvCov: mat.NewDense(4, 4, []float64{1.0 / 10000, 0, 0, 0, 0, 1.0 / 40000, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}),
		},
	}
}

func TestMeasureDefaultPrediction(t *testing.T) {
	engine := NewMeasurementEngine(&EngineConfig{
		Prediction:       PredictDefault,
		MeasurementPoint: measure.Mid,
		NFormants:        5,
	})
	cands := &Candidates{Tracks: []OrderTrack{
		{Order: 5, Track: flatTrack(0.1, 11, []float64{700.04, 1700, 2500}, []float64{100, 150, 200})},
	}}

	vm, err := engine.Measure(catPhone(), catWord(), cands)
	require.NoError(t, err)

	assert.Equal(t, "AE", vm.Phone)
	assert.Equal(t, "1", vm.Stress)
	assert.Equal(t, "CAT", vm.Word)
	assert.InDelta(t, 0.15, vm.T, 1e-9)
	assert.InDelta(t, 0.1, vm.Dur, 1e-9)
	assert.Equal(t, formant.Some(700), vm.F1)
	assert.Equal(t, formant.Some(1700), vm.F2)
	assert.Equal(t, formant.Some(150), vm.B2)
	assert.Equal(t, 0, vm.NFormants)
	assert.False(t, vm.Distance.Defined())
	assert.Equal(t, "3.14160", vm.Code.String())
	assert.Equal(t, formant.Some(700.04), vm.Tracks.F1(0))
	assert.Len(t, vm.Candidates, 1)
}

func TestMeasureMahalanobisPicksOrder(t *testing.T) {
	engine := NewMeasurementEngine(&EngineConfig{
		Prediction:       PredictMahalanobis,
		MeasurementPoint: measure.Third,
		NFormants:        5,
		References:       catReferences(),
	})
	bw := []float64{100, 150, 200}
	cands := &Candidates{Tracks: []OrderTrack{
		{Order: 3, Track: flatTrack(0.1, 11, []float64{900, 1700, 2500}, bw)},
		{Order: 4, Track: flatTrack(0.1, 11, []float64{700, 1700, 2500}, bw)},
		{Order: 5, Track: flatTrack(0.1, 11, []float64{650}, []float64{90})},
		{Order: 6, Track: flatTrack(0.1, 11, []float64{1000, 1800, 2600}, bw)},
	}}

	vm, err := engine.Measure(catPhone(), catWord(), cands)
	require.NoError(t, err)

	assert.Equal(t, 1, vm.Winner)
	assert.Equal(t, 4, vm.NFormants)
	assert.Equal(t, formant.Some(700), vm.F1)
	assert.InDelta(t, 0, vm.Distance.Or(-1), 1e-9)
	assert.Equal(t, []float64{700, 1700, 2500}, vm.Poles)
	assert.Len(t, vm.Candidates, 4)
	assert.Equal(t, cands.Tracks[1].Track, vm.WinnerTrack())

	vm.Adopt(0)
	assert.Equal(t, 3, vm.NFormants)
	assert.Equal(t, formant.Some(900), vm.F1)
}

func TestMeasureKeepsLowestOrderWhenNoneScores(t *testing.T) {
	engine := NewMeasurementEngine(&EngineConfig{
		Prediction:       PredictMahalanobis,
		MeasurementPoint: measure.Third,
		NFormants:        5,
		References:       catReferences(),
	})
	cands := &Candidates{Tracks: make([]OrderTrack, 0, 4)}
	for order := 3; order <= 6; order++ {
		cands.Tracks = append(cands.Tracks, OrderTrack{Order: order, Track: flatTrack(0.1, 11, []float64{650}, []float64{90})})
	}

	vm, err := engine.Measure(catPhone(), catWord(), cands)
	require.NoError(t, err)

	assert.Equal(t, 0, vm.Winner)
	assert.Equal(t, 3, vm.NFormants)
	assert.Equal(t, formant.Some(650), vm.F1)
	assert.Equal(t, formant.Some(90), vm.B1)
	assert.False(t, vm.F2.Defined())
	assert.False(t, vm.B2.Defined())
	assert.False(t, vm.Distance.Defined())
	assert.Len(t, vm.Candidates, 4)
}

func TestMeasureMahalanobisIgnoresOrdersOutsideRange(t *testing.T) {
	engine := NewMeasurementEngine(&EngineConfig{
		Prediction:       PredictMahalanobis,
		MeasurementPoint: measure.Third,
		NFormants:        5,
		References:       catReferences(),
	})
	bw := []float64{100, 150, 200}
	cands := &Candidates{Tracks: []OrderTrack{
		{Order: 2, Track: flatTrack(0.1, 11, []float64{700, 1700}, bw)},
		{Order: 3, Track: flatTrack(0.1, 11, []float64{900, 1700, 2500}, bw)},
		{Order: 4, Track: flatTrack(0.1, 11, []float64{710, 1700, 2500}, bw)},
		{Order: 7, Track: flatTrack(0.1, 11, []float64{700, 1700, 2500}, bw)},
	}}

	vm, err := engine.Measure(catPhone(), catWord(), cands)
	require.NoError(t, err)
	assert.Equal(t, 4, vm.NFormants)
	assert.Len(t, vm.Candidates, 2)
	for _, c := range vm.Candidates {
		assert.True(t, PredictMahalanobis.Allows(c.Order))
	}

	_, err = engine.Measure(catPhone(), catWord(), &Candidates{Tracks: []OrderTrack{cands.Tracks[0], cands.Tracks[3]}})
	assert.Equal(t, ErrCodeNoCandidates, ErrorCode(err))

	assert.True(t, PredictDefault.Allows(7))
	assert.False(t, PredictMahalanobis.Allows(7))
}

func TestMeasureFailures(t *testing.T) {
	t.Run("too short for smoothing", func(t *testing.T) {
		engine := NewMeasurementEngine(&EngineConfig{MeasurementPoint: measure.Mid, NFormants: 5, NSmoothing: 12})
		cands := &Candidates{Tracks: []OrderTrack{{Order: 5, Track: flatTrack(0.1, 11, []float64{700, 1700}, []float64{100, 150})}}}

		_, err := engine.Measure(catPhone(), catWord(), cands)
		require.Error(t, err)
		assert.Equal(t, ErrCodeTooShortForSmoothing, ErrorCode(err))
		assert.ErrorIs(t, err, formant.ErrTrackTooShort)
	})

	t.Run("no candidates", func(t *testing.T) {
		engine := NewMeasurementEngine(&EngineConfig{MeasurementPoint: measure.Mid, NFormants: 5})
		_, err := engine.Measure(catPhone(), catWord(), nil)
		assert.Equal(t, ErrCodeNoCandidates, ErrorCode(err))

		cands := &Candidates{Tracks: []OrderTrack{
			{Order: 3, Track: flatTrack(0.1, 11, []float64{700}, []float64{100})},
			{Order: 4, Track: flatTrack(0.1, 11, []float64{700}, []float64{100})},
		}}
		_, err = engine.Measure(catPhone(), catWord(), cands)
		assert.Equal(t, ErrCodeNoCandidates, ErrorCode(err))
	})

	t.Run("unmeasurable", func(t *testing.T) {
		engine := NewMeasurementEngine(&EngineConfig{MeasurementPoint: measure.Mid, NFormants: 5})
		cands := &Candidates{Tracks: []OrderTrack{{Order: 5, Track: flatTrack(0.1, 11, nil, nil)}}}

		_, err := engine.Measure(catPhone(), catWord(), cands)
		var me *MeasurementError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, ErrCodeUnmeasurable, me.Code)
		assert.Equal(t, "CAT", me.Word)
		assert.Contains(t, err.Error(), "AE1 in CAT")
	})

	t.Run("no intensity", func(t *testing.T) {
		engine := NewMeasurementEngine(&EngineConfig{MeasurementPoint: measure.MaxIntensity, NFormants: 5})
		cands := &Candidates{Tracks: []OrderTrack{{Order: 5, Track: flatTrack(0.1, 11, []float64{700, 1700}, []float64{100, 150})}}}

		_, err := engine.Measure(catPhone(), catWord(), cands)
		assert.Equal(t, ErrCodeNoMeasurementPoint, ErrorCode(err))
		assert.ErrorIs(t, err, measure.ErrNoIntensity)
	})
}

func TestEngineConfigValidate(t *testing.T) {
	cfg := &EngineConfig{NFormants: 5}
	assert.NoError(t, cfg.Validate())

	cfg.NFormants = 7
	assert.Error(t, cfg.Validate())

	cfg = &EngineConfig{NFormants: 5, NSmoothing: -1}
	assert.Error(t, cfg.Validate())

	cfg = &EngineConfig{NFormants: 5, Prediction: PredictMahalanobis}
	assert.Error(t, cfg.Validate())
	cfg.References = catReferences()
	assert.NoError(t, cfg.Validate())
}

func TestParsePredictionMethod(t *testing.T) {
	p, err := ParsePredictionMethod("Mahalanobis")
	require.NoError(t, err)
	assert.Equal(t, PredictMahalanobis, p)
	assert.Equal(t, []int{3, 4, 5, 6}, p.Orders(5))
	assert.Equal(t, []int{4}, PredictDefault.Orders(4))

	_, err = ParsePredictionMethod("bayes")
	assert.ErrorIs(t, err, ErrUnknownPrediction)
}

func TestDetectGlide(t *testing.T) {
	glide := func(f2s ...float64) string {
		track := make(formant.Track, len(f2s))
		for i, f2 := range f2s {
			track[i] = formant.NewFrame(float64(i)*0.01, []float64{700, f2}, []float64{100, 150})
		}
		return DetectGlide(track, 0)
	}

	assert.Equal(t, "m", glide(1200, 1250, 1300, 1280))
	assert.Equal(t, "s", glide(1200, 1400, 1500))
	assert.Equal(t, "", glide(1200, 1400, 1600))
	assert.Equal(t, "m", glide(1200, 1100))
	assert.Equal(t, "", DetectGlide(formant.Track{formant.NewFrame(0, []float64{700}, []float64{100})}, 0))
	assert.Equal(t, "", DetectGlide(nil, 0))
}

func TestPadding(t *testing.T) {
	ay := Phone{Label: "AY1", Xmin: 0.3, Xmax: 0.5}
	w := Padding(ay, 0.1, 0.55)
	assert.InDelta(t, 0.2, w.PadBeg, 1e-9)
	assert.InDelta(t, 0.05, w.PadEnd, 1e-9)
	assert.InDelta(t, 0.1, w.Start(), 1e-9)
	assert.InDelta(t, 0.55, w.End(), 1e-9)

	ay.Xmin = 0.15
	assert.InDelta(t, 0.15, Padding(ay, 0.1, 10).PadBeg, 1e-9)

	ae := Phone{Label: "AE1", Xmin: 0.05, Xmax: 0.2}
	w = Padding(ae, 0.1, 10)
	assert.InDelta(t, 0.05, w.PadBeg, 1e-9)
	assert.InDelta(t, 0.1, w.PadEnd, 1e-9)
}

func TestSpeakerMaxFormant(t *testing.T) {
	hz, err := Speaker{Sex: "f"}.MaxFormant()
	require.NoError(t, err)
	assert.Equal(t, 5500, hz)

	hz, err = Speaker{Sex: "Male"}.MaxFormant()
	assert.ErrorIs(t, err, ErrUnknownSex)
	assert.Zero(t, hz)

	hz, err = Speaker{Sex: "male"}.MaxFormant()
	require.NoError(t, err)
	assert.Equal(t, 5000, hz)

	keys, values := Speaker{Name: "PH00-1-1", Sex: "m", TierNum: 2}.Attributes()
	assert.Equal(t, "age", keys[0])
	assert.Equal(t, "2", values["tiernum"])
}

func TestMarkOverlaps(t *testing.T) {
	words := []Word{
		*catWord(),
		{Transcription: "BEE", Xmin: 1.0, Xmax: 1.3, Phones: []Phone{
			{Label: "B", Xmin: 1.0, Xmax: 1.1},
			{Label: "IY1", Xmin: 1.1, Xmax: 1.3},
		}},
	}
	other := [][]Interval{{
		{Xmin: 0, Xmax: 0.15, Mark: "sp"},
		{Xmin: 0.15, Xmax: 0.5, Mark: "hello"},
		{Xmin: 0.5, Xmax: 1.2, Mark: "sil"},
		{Xmin: 1.2, Xmax: 2, Mark: ""},
	}}

	n := MarkOverlaps(words, other)
	assert.Equal(t, 1, n)
	assert.True(t, words[0].Phones[1].Overlap)
	assert.False(t, words[0].Phones[0].Overlap, "consonants are never marked")
	assert.False(t, words[1].Phones[1].Overlap)
}

func TestApplyStyles(t *testing.T) {
	words := []Word{
		{Transcription: "ONE", Xmin: 0.2, Xmax: 0.5},
		{Transcription: "TWO", Xmin: 1.2, Xmax: 1.5},
		{Transcription: "THREE", Xmin: 2.1, Xmax: 2.4},
		{Transcription: "FOUR", Xmin: 2.8, Xmax: 3.3},
	}
	styles := []Interval{
		{Xmin: 0, Xmax: 1, Mark: "r"},
		{Xmin: 1, Xmax: 2, Mark: "SP"},
		{Xmin: 2, Xmax: 3, Mark: "wl"},
		{Xmin: 3, Xmax: 4, Mark: "mp"},
	}

	ApplyStyles(words, styles)
	assert.Equal(t, "R", words[0].Style)
	assert.Equal(t, "", words[1].Style)
	assert.Equal(t, "WL", words[2].Style)
	assert.Equal(t, "WL", words[3].Style)
}

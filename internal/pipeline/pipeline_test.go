package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/RyanBlaney/latency-benchmark-common/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

// fakeProvider returns flat order-5 tracks spanning each requested window.
type fakeProvider struct {
	windows map[[2]int]extract.Window
	fail    map[[2]int]bool
	frames  int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{windows: make(map[[2]int]extract.Window), fail: make(map[[2]int]bool), frames: 11}
}

func (p *fakeProvider) Candidates(wordIndex, phoneIndex int, phone extract.Phone, window extract.Window) (*extract.Candidates, error) {
	key := [2]int{wordIndex, phoneIndex}
	p.windows[key] = window
	if p.fail[key] {
		return nil, errors.New("formant file missing")
	}
	step := (window.End() - window.Start()) / float64(p.frames-1)
	track := make(formant.Track, p.frames)
	for i := range track {
		track[i] = formant.NewFrame(window.Start()+float64(i)*step, []float64{500, 1800, 2600}, []float64{80, 120, 200})
	}
	return &extract.Candidates{Tracks: []extract.OrderTrack{{Order: 5, Track: track}}}, nil
}

func phones(fields ...any) []extract.Phone {
	var out []extract.Phone
	for i := 0; i < len(fields); i += 3 {
		out = append(out, extract.Phone{Label: fields[i].(string), Xmin: fields[i+1].(float64), Xmax: fields[i+2].(float64)})
	}
	return out
}

// PipelineTestSuite runs the orchestrator over a small transcript
type PipelineTestSuite struct {
	suite.Suite
	logger     logging.Logger
	config     *Config
	transcript *Transcript
	provider   *fakeProvider
}

func (suite *PipelineTestSuite) SetupSuite() {
	logging.SetLevel(logging.InfoLevel)
	suite.logger = logging.WithFields(logging.Fields{
		"component": "pipeline_test_suite",
	})
}

func (suite *PipelineTestSuite) SetupTest() {
	suite.config = &Config{
		Engine: extract.EngineConfig{
			Prediction:       extract.PredictDefault,
			MeasurementPoint: measure.Mid,
			NFormants:        5,
		},
		VowelSystem:      plotnik.NorthAmerican,
		MinVowelDuration: 0.05,
		WindowSize:       0.025,
		OnlyStressed:     true,
		RemoveStopWords:  true,
		StopWords:        DefaultStopWords,
		Case:             CaseUpper,
	}
	suite.provider = newFakeProvider()
	suite.transcript = &Transcript{
		Speaker: extract.Speaker{Name: "Test Speaker", Sex: "f"},
		MaxTime: 4,
		Words: []extract.Word{
			{Transcription: "sp", Xmin: 0, Xmax: 0.1, Phones: phones("sp", 0.0, 0.1)},
			{Transcription: "cat", Xmin: 0.1, Xmax: 0.35, Phones: phones("K", 0.1, 0.15, "AE1", 0.15, 0.3, "T", 0.3, 0.35)},
			{Transcription: "the", Xmin: 0.35, Xmax: 0.5, Phones: phones("DH", 0.35, 0.4, "AH0", 0.4, 0.5)},
			{Transcription: "((dog))", Xmin: 0.5, Xmax: 0.8, Phones: phones("D", 0.5, 0.55, "AO1", 0.55, 0.75, "G", 0.75, 0.8)},
			{Transcription: "bee-", Xmin: 0.8, Xmax: 1.0, Phones: phones("B", 0.8, 0.85, "IY1", 0.85, 1.0)},
			{Transcription: "a", Xmin: 1.0, Xmax: 1.1, Phones: phones("AH0", 1.0, 1.1)},
			{Transcription: "bit", Xmin: 1.1, Xmax: 1.2, Phones: phones("B", 1.1, 1.14, "IH1", 1.14, 1.17, "T", 1.17, 1.2)},
			{Transcription: "seat", Xmin: 1.2, Xmax: 1.5, Phones: phones("S", 1.2, 1.3, "IY1", 1.3, 1.45, "T", 1.45, 1.5)},
		},
	}
}

func (suite *PipelineTestSuite) run() *Result {
	o, err := NewOrchestrator(suite.config, suite.logger)
	suite.Require().NoError(err)
	result, err := o.Run(suite.transcript, suite.provider)
	suite.Require().NoError(err)
	return result
}

func (suite *PipelineTestSuite) TestSkipRules() {
	result := suite.run()
	stats := result.Stats

	suite.Equal(7, stats.Vowels)
	suite.Equal(2, stats.Analyzed)
	suite.Equal(1, stats.StopWords)
	suite.Equal(1, stats.Uncertain)
	suite.Equal(1, stats.Truncated)
	suite.Equal(1, stats.Unstressed)
	suite.Equal(1, stats.TooShort)
	suite.Equal(5, stats.Skipped())
	suite.Equal(5500, result.MaxFormant)

	suite.Len(suite.provider.windows, 2)
	suite.Require().Len(result.Measurements, 2)
	suite.Equal("CAT", result.Measurements[0].Word)
	suite.Equal("SEAT", result.Measurements[1].Word)
}

func (suite *PipelineTestSuite) TestContextFields() {
	result := suite.run()
	cat := result.Measurements[0]

	suite.Equal("AE", cat.Phone)
	suite.Equal("internal", cat.Context)
	suite.Equal("K", cat.PreSeg)
	suite.Equal("T", cat.FolSeg)
	suite.Equal(2, cat.Index)
	suite.Equal("sp", cat.PreWord)
	suite.Equal("THE", cat.FolWord)
	suite.Equal("K AE1 T", cat.WordTrans)
	suite.Equal("SP", cat.PreWordTrans)
	suite.Equal("DH AH0", cat.FolWordTrans)
	suite.Equal("3", cat.Code.Class)
	suite.Equal(formant.Some(500), cat.F1)

	seat := result.Measurements[1]
	suite.Equal("", seat.FolWord)
	suite.Equal("", seat.FolWordTrans)

	window := suite.provider.windows[[2]int{1, 1}]
	suite.InDelta(0.025, window.PadBeg, 1e-9)
	suite.InDelta(0.025, window.PadEnd, 1e-9)
}

func (suite *PipelineTestSuite) TestLowerCaseAndKeptStopWords() {
	suite.config.Case = CaseLower
	suite.config.RemoveStopWords = false
	suite.config.OnlyStressed = false

	result := suite.run()
	suite.Equal(0, result.Stats.StopWords)
	suite.Equal(0, result.Stats.Unstressed)
	suite.Equal(4, result.Stats.Analyzed)
	suite.Equal("cat", result.Measurements[0].Word)
	suite.Equal("the", result.Measurements[1].Word)
}

func (suite *PipelineTestSuite) TestProviderAndEngineFailuresAreCounted() {
	suite.provider.fail[[2]int{7, 1}] = true
	suite.config.Engine.NSmoothing = 6

	result := suite.run()
	suite.Equal(1, result.Stats.NoCandidates)
	suite.Equal(1, result.Stats.TooShortForSmoothing)
	suite.Equal(0, result.Stats.Analyzed)
	suite.Empty(result.Measurements)
}

func (suite *PipelineTestSuite) TestOverlapAndStyle() {
	suite.transcript.OtherTiers = [][]extract.Interval{{
		{Xmin: 0, Xmax: 1.25, Mark: ""},
		{Xmin: 1.25, Xmax: 1.6, Mark: "yeah"},
	}}
	suite.transcript.StyleTier = []extract.Interval{{Xmin: 0, Xmax: 4, Mark: "r"}}

	result := suite.run()
	suite.Equal(1, result.Stats.Overlaps)
	suite.Require().Len(result.Measurements, 1)
	suite.Equal("R", result.Measurements[0].Style)
}

func (suite *PipelineTestSuite) TestInvalidConfiguration() {
	suite.config.Case = "title"
	_, err := NewOrchestrator(suite.config, suite.logger)
	suite.Error(err)

	suite.config.Case = CaseUpper
	suite.config.Engine.Prediction = extract.PredictMahalanobis
	_, err = NewOrchestrator(suite.config, suite.logger)
	suite.Error(err, "mahalanobis prediction needs reference statistics")
}

func TestPipelineTestSuite(t *testing.T) {
	suite.Run(t, new(PipelineTestSuite))
}

func measurement(class, word, stress string, f1, f2 float64) *extract.VowelMeasurement {
	return &extract.VowelMeasurement{
		Phone:  "IY",
		Stress: stress,
		Word:   word,
		F1:     formant.Some(f1),
		F2:     formant.Some(f2),
		Code:   plotnik.Code{Class: class, Manner: "1", Place: "4", Voice: "1", Preceding: "3", FollowingSeq: "1"},
		Tracks: formant.Samples{formant.Some(f1), formant.Some(f2)},
	}
}

func meanFor(means []*VowelMean, class string) *VowelMean {
	for _, m := range means {
		if m.Class == class {
			return m
		}
	}
	return nil
}

func TestMeanStdv(t *testing.T) {
	mean, stdv := MeanStdv(nil)
	assert.False(t, mean.Defined())
	assert.False(t, stdv.Defined())

	mean, stdv = MeanStdv([]float64{42})
	assert.Equal(t, formant.Some(42), mean)
	assert.Equal(t, formant.Some(0), stdv)

	mean, stdv = MeanStdv([]float64{300, 320, 340})
	assert.InDelta(t, 320, mean.Or(0), 1e-9)
	assert.InDelta(t, 20, stdv.Or(0), 1e-9)
}

func TestCalculateMeansFiltersTokens(t *testing.T) {
	nasal := measurement("3", "MAN", "1", 800, 1900)
	nasal.Code.Manner = "4"
	afterGlide := measurement("11", "WEEK", "1", 900, 2000)
	afterGlide.Code.Preceding = "9"

	ms := []*extract.VowelMeasurement{
		measurement("11", "BEAT", "1", 300, 2200),
		measurement("11", "SEAT", "1", 320, 2300),
		measurement("11", "FEET", "1", 340, 2400),
		measurement("11", "THE", "1", 500, 1500),
		measurement("11", "BEATING", "2", 500, 1500),
		measurement("11", "LOW", "1", 150, 1500),
		afterGlide,
		nasal,
	}

	means := CalculateMeans(ms)
	require.Len(t, means, len(plotnik.Codes))
	assert.Equal(t, plotnik.Codes[0], means[0].Class)

	iy := meanFor(means, "11")
	require.NotNil(t, iy)
	assert.Equal(t, [3]int{3, 3, 0}, iy.N)
	assert.Equal(t, 3, iy.Count())
	assert.Equal(t, formant.Some(320), iy.Means[0].Mean)
	assert.Equal(t, formant.Some(20), iy.Means[0].Stdv)
	assert.Equal(t, formant.Some(2300), iy.Means[1].Mean)
	assert.Equal(t, formant.Some(100), iy.Means[1].Stdv)
	assert.False(t, iy.Means[2].Mean.Defined())
	assert.InDelta(t, 320, iy.Tracks[0].Mean.Or(0), 1e-9)
	assert.False(t, iy.Tracks[2].Mean.Defined())

	ae := meanFor(means, "3")
	require.NotNil(t, ae)
	assert.Zero(t, ae.Count())
}

func TestLobanovRoundTrip(t *testing.T) {
	n := Norm{Mean: formant.Some(500), Stdv: formant.Some(100), Scale: f1Scale}

	for _, raw := range []float64{250, 499.5, 620, 1033.3} {
		scaled := n.Scaled(formant.Some(raw))
		require.True(t, scaled.Defined())
		assert.InDelta(t, raw, n.Invert(scaled).Or(0), 1e-9)
	}
	assert.Equal(t, formant.Some(830), n.Apply(formant.Some(620)))

	assert.False(t, Lobanov(formant.Some(0), formant.Some(500), formant.Some(100)).Defined())
	assert.False(t, Lobanov(formant.Some(620), formant.Some(500), formant.Some(0)).Defined())
	assert.False(t, Lobanov(formant.Undefined, formant.Some(500), formant.Some(100)).Defined())
}

func TestNormalize(t *testing.T) {
	ms := []*extract.VowelMeasurement{
		measurement("11", "BEAT", "1", 400, 1500),
		measurement("11", "SEAT", "1", 600, 2100),
	}
	means := CalculateMeans(ms)
	n := Normalize(ms, means)

	assert.InDelta(t, 500, n.F1.Mean.Or(0), 1e-9)
	assert.InDelta(t, 100*math.Sqrt2, n.F1.Stdv.Or(0), 1e-9)

	assert.Equal(t, formant.Some(544), ms[0].NormF1)
	assert.Equal(t, formant.Some(756), ms[1].NormF1)
	assert.Equal(t, formant.Some(1403), ms[0].NormF2)
	assert.Equal(t, formant.Some(1997), ms[1].NormF2)
	assert.Equal(t, formant.Some(544), ms[0].NormTracks[0])
	assert.False(t, ms[0].NormTracks[2].Defined())

	iy := meanFor(means, "11")
	assert.Equal(t, formant.Some(650), iy.NormMeans[0].Mean)
	assert.Equal(t, formant.Some(150), iy.NormMeans[0].Stdv)
	assert.Equal(t, formant.Some(1700), iy.NormMeans[1].Mean)
}

func TestNormalizeSingleTokenLeavesValuesUndefined(t *testing.T) {
	ms := []*extract.VowelMeasurement{measurement("11", "BEAT", "1", 400, 1500)}
	Normalize(ms, CalculateMeans(ms))
	assert.False(t, ms[0].NormF1.Defined())
	assert.False(t, ms[0].NormF2.Defined())
}

func TestQualityMetrics(t *testing.T) {
	ms := []*extract.VowelMeasurement{
		measurement("11", "BEAT", "1", 400, 1500),
		measurement("11", "SEAT", "1", 600, 2100),
		measurement("3", "CAT", "1", 700, 1700),
	}
	ms[0].NFormants, ms[0].Distance, ms[0].Dur = 4, formant.Some(1), 0.1
	ms[1].NFormants, ms[1].Distance, ms[1].Dur = 5, formant.Some(3), 0.2
	ms[2].NFormants, ms[2].Dur = 5, 0.3

	result := &Result{Measurements: ms, Stats: RunStats{Vowels: 6, Analyzed: 3, TooShort: 3, Remeasured: 1}}
	metrics := NewMetricsCalculator(nil).CalculateQualityMetrics(result)

	assert.InDelta(t, 0.5, metrics.AnalysisRate, 1e-12)
	assert.Equal(t, map[string]int{"too_short": 3}, metrics.SkipReasons)
	assert.Equal(t, map[string]int{"4": 1, "5": 2}, metrics.OrderDistribution)
	assert.InDelta(t, 1.0/3, metrics.FallbackRate, 1e-12)
	assert.InDelta(t, 1.0/3, metrics.RemeasuredRate, 1e-12)
	assert.Equal(t, 3, metrics.Duration.Count)
	assert.InDelta(t, 0.2, metrics.Duration.Median, 1e-12)
	assert.InDelta(t, 2, metrics.Distance.Mean, 1e-12)

	counts := ClassOrderCounts(ms)
	assert.Equal(t, map[int]int{4: 1, 5: 1}, counts["11"])
	assert.Equal(t, map[int]int{5: 1}, counts["3"])
}

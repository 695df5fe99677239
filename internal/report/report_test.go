package report

import (
	"bytes"
	"encoding/csv"
	"os"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/formant-extract/internal/extract"
	"github.com/RyanBlaney/formant-extract/internal/pipeline"
	"github.com/RyanBlaney/formant-extract/pkg/formant"
	"github.com/RyanBlaney/formant-extract/pkg/measure"
	"github.com/RyanBlaney/formant-extract/pkg/plotnik"
)

func catMeasurement() *extract.VowelMeasurement {
	track := formant.Track{
		formant.NewFrame(0.1, []float64{700, 1700, 2500}, []float64{100, 150, 200}),
		formant.NewFrame(0.11, []float64{705, 1695, 2510}, []float64{100, 150, 200}),
	}
	var tracks formant.Samples
	tracks[0] = formant.Some(710.04)
	tracks[1] = formant.Some(1690)

	return &extract.VowelMeasurement{
		Phone: "AE", Stress: "1", Word: "CAT", PreWord: "THE", FolWord: "SAT",
		WordTrans: "K AE1 T", PreWordTrans: "DH AH0", FolWordTrans: "S AE1 T",
		F1: formant.Some(700), F2: formant.Some(1700), B1: formant.Some(100), B2: formant.Some(150),
		T: 0.15, Beg: 0.1, End: 0.2, Dur: 0.1,
		Code:      plotnik.Code{Class: "3", Manner: "1", Place: "4", Voice: "1", Preceding: "6", FollowingSeq: "0"},
		Context:   "internal",
		Index:     2,
		Tracks:    tracks,
		NFormants: 4,
		Poles:     []float64{700, 1700, 2500}, Bandwidths: []float64{100, 150, 200},
		Candidates: []extract.OrderCandidate{
			{Order: 4, Point: 0.15, Frame: track[0], Samples: tracks, Track: track},
		},
		NormF1: formant.Some(544),
	}
}

func testResult() *pipeline.Result {
	ms := []*extract.VowelMeasurement{catMeasurement()}
	return &pipeline.Result{
		Speaker: extract.Speaker{
			Name: "s1", FirstName: "Ann", LastName: "Lee", Age: "30", Sex: "f",
			Location: "Philadelphia", City: "Philadelphia", State: "PA", Year: "2010", TierNum: 1,
		},
		Measurements: ms,
		Means:        pipeline.CalculateMeans(ms),
	}
}

func column(t *testing.T, header, row []string, name string) string {
	t.Helper()
	i := slices.Index(header, name)
	require.GreaterOrEqual(t, i, 0, "column %s", name)
	require.Less(t, i, len(row), "column %s", name)
	return row[i]
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "700.0", number(700))
	assert.Equal(t, "0.15", number(0.15))
	assert.Equal(t, "-3.5", number(-3.5))
	assert.Equal(t, "0.0", number(0))
	assert.Equal(t, "1e-05", number(0.00001))
	assert.Equal(t, "", present(formant.Some(0)))
	assert.Equal(t, "", value(formant.Undefined))
	assert.Equal(t, "710.0", rounded(formant.Some(710.04), 1))
}

func TestWriteTextLayout(t *testing.T) {
	res := testResult()
	opts := Options{Header: true, Candidates: true, Mahalanobis: true}

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, res, opts))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	header := strings.Split(lines[0], "\t")
	row := strings.Split(lines[1], "\t")
	assert.Len(t, header, 12+31+10+1+2)
	assert.Len(t, row, len(header))
	assert.Equal(t, "age", header[0])

	assert.Equal(t, "f", column(t, header, row, "sex"))
	assert.Equal(t, "1", column(t, header, row, "tiernum"))
	assert.Equal(t, "AE", column(t, header, row, "vowel"))
	assert.Equal(t, "THE", column(t, header, row, "pre_word"))
	assert.Equal(t, "700.0", column(t, header, row, "F1"))
	assert.Equal(t, "", column(t, header, row, "F3"))
	assert.Equal(t, "100.0", column(t, header, row, "B1"))
	assert.Equal(t, "0.15", column(t, header, row, "t"))
	assert.Equal(t, plotnik.VowelName("3"), column(t, header, row, "plt_vclass"))
	assert.Equal(t, plotnik.IPAName("3"), column(t, header, row, "ipa_vclass"))
	assert.Equal(t, "internal", column(t, header, row, "context"))
	assert.Equal(t, "2", column(t, header, row, "vowel_index"))
	assert.Equal(t, "K AE1 T", column(t, header, row, "word_trans"))
	assert.Equal(t, "710.0", column(t, header, row, "F1@20%"))
	assert.Equal(t, "1690.0", column(t, header, row, "F2@20%"))
	assert.Equal(t, "", column(t, header, row, "F2@80%"))
	assert.Equal(t, "4", column(t, header, row, "nFormants"))
	assert.Equal(t, "700.0,1700.0,2500.0", column(t, header, row, "poles"))
	assert.Equal(t, "100.0,150.0,200.0", column(t, header, row, "bandwidths"))

	buf.Reset()
	res.Measurements[0].NFormants = 0
	require.NoError(t, WriteText(&buf, res, Options{}))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Len(t, strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\t"), 12+31+10)
}

func TestWriteNormalized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteNormalized(&buf, testResult(), Options{Header: true, Mahalanobis: true}))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "s1, 30, f, , , Philadelphia, 2010", lines[0])
	assert.Equal(t, "", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "vowel\tstress\tword\tnorm_F1\tnorm_F2\t"))
	assert.True(t, strings.HasSuffix(lines[2], "norm_F2@80%\tnFormants"))

	row := strings.Split(lines[3], "\t")
	require.Len(t, row, 17+10+1)
	assert.Equal(t, "544.0", row[3])
	assert.Equal(t, "", row[4])
	assert.Equal(t, []string{"3", "1", "4", "1", "6", "0"}, row[9:15])
	assert.Equal(t, "4", row[27])
}

func TestWritePlotnik(t *testing.T) {
	res := testResult()

	var buf bytes.Buffer
	require.NoError(t, WritePlotnik(&buf, res))
	out := buf.String()
	assert.NotContains(t, out, "\n")

	lines := strings.Split(out, "\r")
	require.Len(t, lines, 2+1+1+len(plotnik.Codes)+1)
	assert.Equal(t, "Ann Lee,30,f,,,Philadelphia,2010", lines[0])
	assert.Equal(t, "1,", lines[1])
	assert.Equal(t, "700.0,1700.0,,3.14160,1.100,CAT /4/ 0.15  <710.0,1690.0,,,,,,,,>", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "1,0,,,,,, <,,,,,,,,,>", lines[4])
	assert.Equal(t, "3,1,700.0,1700.0,,,, <710.0,1690.0,,,,,,,,>", lines[6])

	res.Measurements[0].Glide = "m"
	res.Measurements[0].Style = "R"
	res.Measurements[0].Stress = "0"
	buf.Reset()
	require.NoError(t, WritePlotnik(&buf, res))
	token := strings.Split(buf.String(), "\r")[2]
	assert.Contains(t, token, ",3.100,CAT {m} -"+plotnik.StyleCode("R")+"- /4/ 0.15 ")
}

func TestWritePlotnikNormalized(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePlotnikNormalized(&buf, testResult()))

	lines := strings.Split(buf.String(), "\r")
	assert.Equal(t, "544.0,,,3.14160,1.100,CAT /4/ 0.15  <,,,,,,,,,>", lines[2])
	assert.Equal(t, "3,1,,,,,, <,,,,,,,,,>", lines[6])
}

func TestWriteFormantSettings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFormantSettings(&buf, testResult(), "out/s1.txt"))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "Formant settings for out/s1.txt:", lines[0])
	assert.Equal(t, "s1, 30, f, Philadelphia, PA, 2010", lines[2])
	assert.Equal(t, "vowel\t3\t4\t5\t6", lines[4])
	assert.Equal(t, strings.Repeat("-", 40), lines[5])
	assert.Equal(t, "1\t0\t0\t0\t0", lines[6])
	assert.Equal(t, "3\t0\t1\t0\t0", lines[8])
}

func TestWriteTracks(t *testing.T) {
	res := testResult()
	single := catMeasurement()
	single.Candidates[0].Track = formant.Track{formant.NewFrame(0.1, []float64{700}, []float64{100})}
	res.Measurements = append(res.Measurements, single)

	var buf bytes.Buffer
	require.NoError(t, WriteTracks(&buf, res))

	r := csv.NewReader(&buf)
	r.Comma = '\t'
	records, err := r.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, TracksHeader(res.Speaker), header)
	first, second := records[1], records[2]
	assert.Equal(t, "0", column(t, header, first, "id"))
	assert.Equal(t, "700.0", column(t, header, first, "F1_meas"))
	assert.Equal(t, "", column(t, header, first, "F3_meas"))
	assert.Equal(t, "2500.0", column(t, header, first, "F3"))
	assert.Equal(t, "0.1", column(t, header, first, "t"))
	assert.Equal(t, "0.15", column(t, header, first, "t_meas"))
	assert.Equal(t, "705.0", column(t, header, second, "F1"))
	assert.Equal(t, "0.11", column(t, header, second, "t"))
	assert.Equal(t, "S AE1 T", column(t, header, second, "fol_word_trans"))
}

func TestMeasurementSetRoundTrip(t *testing.T) {
	res := testResult()
	engine := &extract.EngineConfig{Prediction: extract.PredictMahalanobis, MeasurementPoint: measure.Third}

	var buf bytes.Buffer
	require.NoError(t, WriteMeasurementSet(&buf, NewMeasurementSet(res, engine)))

	set, err := ReadMeasurementSet(&buf)
	require.NoError(t, err)
	assert.Equal(t, "mahalanobis", set.Prediction)
	assert.Equal(t, res.Speaker, set.Speaker)
	require.Len(t, set.Measurements, 1)
	assert.Equal(t, res.Measurements[0], set.Measurements[0])

	_, err = ReadMeasurementSet(strings.NewReader(`{"measurements":[{"phone":"AE","candidates":[{"order":3}],"winner":2}]}`))
	assert.Error(t, err)
	_, err = ReadMeasurementSet(strings.NewReader(`{"measurements":[null]}`))
	assert.Error(t, err)
}

func TestWriterWritesEnabledOutputs(t *testing.T) {
	dir := t.TempDir()
	engine := &extract.EngineConfig{Prediction: extract.PredictMahalanobis, MeasurementPoint: measure.Third}
	w, err := NewWriter(&Config{
		Dir: dir, Stem: "s1", Format: "both", Header: true, Tracks: true, SaveMeasurements: true,
	}, engine, nil)
	require.NoError(t, err)

	paths, err := w.Write(testResult())
	require.NoError(t, err)
	assert.Len(t, paths, 7)
	for _, suffix := range []string{".txt", "_norm.txt", ".tracks", ".plt", ".pll", ".nFormants", ".measurements.json"} {
		assert.FileExists(t, w.Path(suffix))
	}

	data, err := os.ReadFile(w.Path(".nFormants"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Formant settings for "+w.Path(".txt"))

	w, err = NewWriter(&Config{Dir: dir, Stem: "s2", Format: "txt"}, &extract.EngineConfig{}, nil)
	require.NoError(t, err)
	paths, err = w.Write(testResult())
	require.NoError(t, err)
	assert.Equal(t, []string{w.Path(".txt"), w.Path("_norm.txt")}, paths)
}

func TestWriterConfigErrors(t *testing.T) {
	_, err := NewWriter(&Config{Format: "text"}, &extract.EngineConfig{}, nil)
	assert.Error(t, err)

	_, err = NewWriter(&Config{Stem: "s1", Format: "xlsx"}, &extract.EngineConfig{}, nil)
	assert.Error(t, err)

	f, err := ParseFormat("Plotnik")
	require.NoError(t, err)
	assert.Equal(t, FormatPlotnik, f)
}

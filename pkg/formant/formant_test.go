package formant

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func trackFromLists(times []float64, formants [][]float64) Track {
	t := make(Track, len(times))
	for i := range times {
		t[i] = NewFrame(times[i], formants[i], formants[i])
	}
	return t
}

func TestSmoothZeroWindowIsIdentity(t *testing.T) {
	track := trackFromLists(
		[]float64{0.1, 0.2, 0.3},
		[][]float64{{500, 1500, 2500}, {510}, {}},
	)

	smoothed, err := Smooth(track, 0)
	require.NoError(t, err)
	assert.Equal(t, track, smoothed)
}

func TestSmoothUndefinedWindowMember(t *testing.T) {
	track := trackFromLists(
		[]float64{0.1, 0.2, 0.3},
		[][]float64{{500, 1500}, {}, {520, 1510}},
	)

	smoothed, err := Smooth(track, 1)
	require.NoError(t, err)
	require.Len(t, smoothed, 1)

	assert.InDelta(t, 0.2, smoothed[0].Time, 1e-9)
	assert.False(t, smoothed[0].F(1).Defined())
	assert.False(t, smoothed[0].F(2).Defined())
	assert.Equal(t, 0, smoothed[0].NumFormants())
}

func TestSmoothAveragesDefinedWindows(t *testing.T) {
	track := trackFromLists(
		[]float64{0.1, 0.2, 0.3, 0.4},
		[][]float64{{500, 1500}, {530, 1530}, {560}, {590, 1590}},
	)

	smoothed, err := Smooth(track, 1)
	require.NoError(t, err)
	require.Len(t, smoothed, 2)

	f1, ok := smoothed[0].F(1).Get()
	require.True(t, ok)
	assert.InDelta(t, 530.0, f1, 1e-9)
	// F2 is missing in the third frame, so both windows lose F2.
	assert.False(t, smoothed[0].F(2).Defined())
	assert.False(t, smoothed[1].F(2).Defined())

	f1, ok = smoothed[1].F(1).Get()
	require.True(t, ok)
	assert.InDelta(t, 560.0, f1, 1e-9)
}

func TestSmoothRejectsShortTracks(t *testing.T) {
	track := trackFromLists([]float64{0.1, 0.2}, [][]float64{{500}, {510}})

	_, err := Smooth(track, 1)
	assert.ErrorIs(t, err, ErrTrackTooShort)

	_, err = Smooth(track, -1)
	assert.ErrorIs(t, err, ErrNegativeWindow)
}

func TestTimeIndex(t *testing.T) {
	times := []float64{0.10, 0.11, 0.12, 0.13}

	tests := []struct {
		name string
		t    float64
		want int
	}{
		{"before first", 0.05, 0},
		{"after last", 0.20, 3},
		{"exact", 0.12, 2},
		{"nearer to next", 0.1149, 1},
		{"nearer to later", 0.1161, 2},
		{"first", 0.10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TimeIndex(tt.t, times))
		})
	}

	assert.Equal(t, -1, TimeIndex(0.1, nil))
}

func TestTimeIndexTiePrefersEarlier(t *testing.T) {
	assert.Equal(t, 0, TimeIndex(0.5, []float64{0.0, 1.0}))
	assert.Equal(t, 1, TimeIndex(1.5, []float64{0.0, 1.0, 2.0}))
}

func TestSampleTrack(t *testing.T) {
	var track Track
	for i := range 11 {
		tm := float64(i) / 10
		f := []float64{500 + float64(i), 1500 + float64(i)}
		if i == 5 {
			f = []float64{500 + float64(i)}
		}
		track = append(track, NewFrame(tm, f, []float64{50, 60}))
	}

	samples := SampleTrack(track, 0, 1)

	assert.Equal(t, Some(502), samples.F1(0))
	assert.Equal(t, Some(1502), samples.F2(0))
	// 35% falls between the 0.3 and 0.4 frames and resolves to 0.3.
	assert.Equal(t, Some(503), samples.F1(1))
	assert.False(t, samples.F1(2).Defined())
	assert.False(t, samples.F2(2).Defined())
	assert.Equal(t, Some(508), samples.F1(4))
}

func TestSlotsCountStopsAtGap(t *testing.T) {
	s := NewSlots([]float64{1, 2, 3, 4, 5, 6, 7, 8})
	assert.Equal(t, MaxFormants, s.Count())

	s[2] = Undefined
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []float64{1, 2}, s.Floats())
}

func TestValueEncoding(t *testing.T) {
	frame := NewFrame(0.5, []float64{500}, nil)

	data, err := json.Marshal(frame)
	require.NoError(t, err)

	var decoded Frame
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, frame, decoded)

	data, err = yaml.Marshal(frame)
	require.NoError(t, err)

	var fromYAML Frame
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, frame, fromYAML)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 512.4, Round(512.35, 1))
	assert.Equal(t, 0.123, Round(0.1234, 3))
	assert.Equal(t, Some(500.0), Some(499.96).Round(1))
	assert.False(t, Undefined.Round(1).Defined())
}

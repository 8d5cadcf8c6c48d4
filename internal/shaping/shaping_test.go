package shaping

import (
	"testing"

	"energy-traffic-light/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hourly(n int, start int64) []model.PowerLoadEntry {
	out := make([]model.PowerLoadEntry, n)
	for i := range out {
		out[i] = model.PowerLoadEntry{Timestamp: start + int64(i)*3600, Value: float64(i)}
	}
	return out
}

func TestFilterTrailingWindowBounds(t *testing.T) {
	series := hourly(72, 0)
	for _, current := range []int64{0, 3600_000, 24 * 3600_000, 50*3600_000 + 1234, 100 * 3600_000} {
		got := FilterTrailingWindow(series, current, DefaultWindow)
		for _, e := range got {
			ms := e.Millis()
			assert.Greater(t, ms, current-DefaultWindow.Milliseconds())
			assert.LessOrEqual(t, ms, current)
		}
	}
}

func TestFilterTrailingWindowExcludesLowerBound(t *testing.T) {
	series := hourly(49, 0)
	got := FilterTrailingWindow(series, 48*3600_000, DefaultWindow)
	require.Len(t, got, 24)
	assert.Equal(t, int64(25*3600), got[0].Timestamp)
	assert.Equal(t, int64(48*3600), got[len(got)-1].Timestamp)
}

func TestFilterTrailingWindowEmpty(t *testing.T) {
	assert.Empty(t, FilterTrailingWindow(nil, 1000, DefaultWindow))
	assert.Empty(t, FilterRange(hourly(3, 0), 10, 10))
}

func TestFilterRange(t *testing.T) {
	got := FilterRange(hourly(10, 0), 2*3600_000, 5*3600_000)
	require.Len(t, got, 3)
	assert.Equal(t, int64(3*3600), got[0].Timestamp)
}

func TestDownsampleIdentityWhenSmall(t *testing.T) {
	s := hourly(5, 0)
	assert.Equal(t, s, Downsample(s, 5))
	assert.Equal(t, s, Downsample(s, 10))
	assert.Equal(t, s, Downsample(s, 0))
	assert.Empty(t, Downsample(nil, 3))
}

func TestDownsampleBuckets(t *testing.T) {
	s := []model.PowerLoadEntry{
		{Timestamp: 0, Value: 1},
		{Timestamp: 10, Value: 3, IsPeak: true},
		{Timestamp: 20, Value: 5},
		{Timestamp: 30, Value: 7},
	}
	got := Downsample(s, 2)
	require.Len(t, got, 2)
	assert.Equal(t, int64(5), got[0].Timestamp)
	assert.InDelta(t, 2.0, got[0].Value, 1e-9)
	assert.True(t, got[0].IsPeak)
	assert.Equal(t, int64(25), got[1].Timestamp)
	assert.InDelta(t, 6.0, got[1].Value, 1e-9)
	assert.False(t, got[1].IsPeak)
}

func TestDownsampleRemainderFoldsIntoLastBucket(t *testing.T) {
	s := hourly(10, 0)
	s[9].IsPeak = true
	got := Downsample(s, 3)
	require.Len(t, got, 3)
	// buckets: [0,1,2] [3,4,5] [6,7,8,9]
	assert.InDelta(t, 1.0, got[0].Value, 1e-9)
	assert.InDelta(t, 4.0, got[1].Value, 1e-9)
	assert.InDelta(t, 7.5, got[2].Value, 1e-9)
	assert.True(t, got[2].IsPeak)
	assert.False(t, got[1].IsPeak)
}

func TestDownsampleLengthAndPeakProperty(t *testing.T) {
	s := hourly(1000, 0)
	for i := 100; i < 130; i++ {
		s[i].IsPeak = true
	}
	for _, n := range []int{1, 7, 168, 240, 999} {
		got := Downsample(s, n)
		assert.LessOrEqual(t, len(got), n)
		size := len(s) / n
		for b, e := range got {
			start := b * size
			end := start + size
			if b == n-1 {
				end = len(s)
			}
			want := false
			for _, src := range s[start:end] {
				want = want || src.IsPeak
			}
			assert.Equal(t, want, e.IsPeak, "n=%d bucket=%d", n, b)
		}
	}
}

func TestSmoothKeepsLengthAndTimestamps(t *testing.T) {
	s := hourly(20, 100)
	got := Smooth(s, 3)
	require.Len(t, got, len(s))
	for i := range s {
		assert.Equal(t, s[i].Timestamp, got[i].Timestamp)
	}
	// index 0 is its own mean, index 5 averages 2..5
	assert.InDelta(t, 0.0, got[0].Value, 1e-9)
	assert.InDelta(t, 3.5, got[5].Value, 1e-9)
}

func TestSmoothPeakWindow(t *testing.T) {
	s := hourly(6, 0)
	s[1].IsPeak = true
	got := Smooth(s, 2)
	assert.False(t, got[0].IsPeak)
	assert.True(t, got[1].IsPeak)
	assert.True(t, got[2].IsPeak)
	assert.True(t, got[3].IsPeak)
	assert.False(t, got[4].IsPeak)
}

func TestSmoothEdgeCases(t *testing.T) {
	assert.Empty(t, Smooth(nil, 5))
	s := hourly(3, 0)
	assert.Equal(t, s, Smooth(s, 0))
}

func TestFindPeakRegions(t *testing.T) {
	assert.Equal(t, []PeakRegion{}, FindPeakRegions(nil))

	s := []model.PowerLoadEntry{
		{Timestamp: 0, Value: 1},
		{Timestamp: 1, Value: 2, IsPeak: true},
		{Timestamp: 2, Value: 3, IsPeak: true},
		{Timestamp: 3, Value: 1},
	}
	assert.Equal(t, []PeakRegion{{Start: 1, End: 2}}, FindPeakRegions(s))

	all := make([]model.PowerLoadEntry, 5)
	for i := range all {
		all[i].IsPeak = true
	}
	assert.Equal(t, []PeakRegion{{Start: 0, End: 4}}, FindPeakRegions(all))

	assert.Empty(t, FindPeakRegions(hourly(4, 0)))
}

func TestFindPeakRegionsMultipleRuns(t *testing.T) {
	flags := []bool{true, false, true, true, false, false, true}
	s := make([]model.PowerLoadEntry, len(flags))
	for i, f := range flags {
		s[i].IsPeak = f
	}
	assert.Equal(t, []PeakRegion{{0, 0}, {2, 3}, {6, 6}}, FindPeakRegions(s))
}

func TestValues(t *testing.T) {
	assert.Equal(t, []float64{0, 1, 2}, Values(hourly(3, 0)))
}

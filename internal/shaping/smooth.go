package shaping

import (
	"energy-traffic-light/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Smooth applies a trailing moving average over indices [max(0, i-window) .. i].
// Timestamps are kept per index and isPeak is OR-ed over the same window, so the
// output has the same length and timestamps as the input. window <= 0 is identity.
func Smooth(series []model.PowerLoadEntry, window int) []model.PowerLoadEntry {
	if len(series) == 0 {
		return []model.PowerLoadEntry{}
	}
	if window <= 0 {
		return series
	}
	vals := make([]float64, len(series))
	for i, e := range series {
		vals[i] = e.Value
	}
	out := make([]model.PowerLoadEntry, len(series))
	for i, e := range series {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		peak := false
		for _, w := range series[lo : i+1] {
			if w.IsPeak {
				peak = true
				break
			}
		}
		out[i] = model.PowerLoadEntry{
			Timestamp: e.Timestamp,
			Value:     stat.Mean(vals[lo:i+1], nil),
			IsPeak:    peak,
		}
	}
	return out
}

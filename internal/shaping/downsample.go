package shaping

import (
	"math"

	"energy-traffic-light/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Downsample reduces series to target points by averaging contiguous buckets.
//
// A series that already fits (len <= target) is returned unchanged, as is any
// series when target <= 0. Otherwise the bucket size is floor(len/target) and
// exactly target buckets are emitted; entries left over by the flooring are folded
// into the final bucket so no sample is dropped.
//
// Each bucket yields timestamp = round(mean(ts)), value = mean(values) and
// isPeak = any(isPeak).
func Downsample(series []model.PowerLoadEntry, target int) []model.PowerLoadEntry {
	if len(series) == 0 {
		return []model.PowerLoadEntry{}
	}
	if target <= 0 || len(series) <= target {
		return series
	}
	size := len(series) / target
	out := make([]model.PowerLoadEntry, 0, target)
	for b := 0; b < target; b++ {
		start := b * size
		end := start + size
		if b == target-1 {
			end = len(series)
		}
		out = append(out, aggregate(series[start:end]))
	}
	return out
}

func aggregate(bucket []model.PowerLoadEntry) model.PowerLoadEntry {
	ts := make([]float64, len(bucket))
	vals := make([]float64, len(bucket))
	peak := false
	for i, e := range bucket {
		ts[i] = float64(e.Timestamp)
		vals[i] = e.Value
		peak = peak || e.IsPeak
	}
	return model.PowerLoadEntry{
		Timestamp: int64(math.Round(stat.Mean(ts, nil))),
		Value:     stat.Mean(vals, nil),
		IsPeak:    peak,
	}
}

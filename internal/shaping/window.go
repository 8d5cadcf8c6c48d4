// Package shaping holds the pure transforms applied to load series before charting:
// trailing-window filtering, bucket downsampling, causal smoothing and peak-region
// detection. None of the functions mutate their input.
package shaping

import (
	"time"

	"energy-traffic-light/internal/model"
)

// DefaultWindow is the trailing span shown on the dashboard.
const DefaultWindow = 24 * time.Hour

// FilterTrailingWindow returns the entries whose timestamp*1000 lies in
// (currentMs-window, currentMs]. The input order is preserved.
func FilterTrailingWindow(series []model.PowerLoadEntry, currentMs int64, window time.Duration) []model.PowerLoadEntry {
	if len(series) == 0 {
		return []model.PowerLoadEntry{}
	}
	lower := currentMs - window.Milliseconds()
	out := make([]model.PowerLoadEntry, 0, len(series))
	for _, e := range series {
		t := e.Millis()
		if t > lower && t <= currentMs {
			out = append(out, e)
		}
	}
	return out
}

// FilterRange returns entries with timestamp*1000 in (fromMs, toMs].
func FilterRange(series []model.PowerLoadEntry, fromMs, toMs int64) []model.PowerLoadEntry {
	if toMs <= fromMs {
		return []model.PowerLoadEntry{}
	}
	return FilterTrailingWindow(series, toMs, time.Duration(toMs-fromMs)*time.Millisecond)
}

package shaping

import "energy-traffic-light/internal/model"

// PeakRegion is a maximal run of peak samples, as inclusive indices.
type PeakRegion struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// FindPeakRegions returns every maximal contiguous run with IsPeak set.
// A run still open at the end of the series closes at the last index.
func FindPeakRegions(series []model.PowerLoadEntry) []PeakRegion {
	regions := []PeakRegion{}
	start := -1
	for i, e := range series {
		switch {
		case e.IsPeak && start < 0:
			start = i
		case !e.IsPeak && start >= 0:
			regions = append(regions, PeakRegion{Start: start, End: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		regions = append(regions, PeakRegion{Start: start, End: len(series) - 1})
	}
	return regions
}

// Values extracts the value column of a series.
func Values(series []model.PowerLoadEntry) []float64 {
	out := make([]float64, len(series))
	for i, e := range series {
		out[i] = e.Value
	}
	return out
}

package analysis

import (
	"math"
	"sort"
	"time"

	"energy-traffic-light/internal/model"

	"gonum.org/v1/gonum/stat"
)

// SeriesStats summarises one load series for the datasets endpoint and the
// exports.
type SeriesStats struct {
	Kind  model.SeriesKind `json:"kind"`
	Count int              `json:"count"`

	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	P05  float64 `json:"p05"`
	P95  float64 `json:"p95"`

	// PeakShare is the fraction of samples flagged as peak.
	PeakShare   float64 `json:"peak_share"`
	PeakRegions int     `json:"peak_regions"`
}

func ComputeStats(kind model.SeriesKind, series []model.PowerLoadEntry) SeriesStats {
	s := SeriesStats{Kind: kind}
	if len(series) == 0 {
		return s
	}
	s.Count = len(series)
	s.Start = series[0].Time()
	s.End = series[len(series)-1].Time()

	minv := math.Inf(1)
	maxv := math.Inf(-1)
	vals := make([]float64, 0, len(series))
	peaks := 0
	inRun := false
	for _, e := range series {
		v := e.Value
		vals = append(vals, v)
		if v < minv {
			minv = v
		}
		if v > maxv {
			maxv = v
		}
		if e.IsPeak {
			peaks++
			if !inRun {
				s.PeakRegions++
			}
		}
		inRun = e.IsPeak
	}
	sort.Float64s(vals)
	s.Min = minv
	s.Max = maxv
	s.Mean = stat.Mean(vals, nil)
	s.P05 = stat.Quantile(0.05, stat.LinInterp, vals, nil)
	s.P95 = stat.Quantile(0.95, stat.LinInterp, vals, nil)
	s.PeakShare = float64(peaks) / float64(len(series))
	return s
}

// LoadPercent expresses v as a percentage of the series range [min, max].
func (s SeriesStats) LoadPercent(v float64) float64 {
	if s.Count == 0 || s.Max <= s.Min {
		return 0
	}
	pct := (v - s.Min) / (s.Max - s.Min) * 100
	return math.Max(0, math.Min(100, pct))
}

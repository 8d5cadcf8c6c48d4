package data

import (
	"context"

	"energy-traffic-light/internal/metrics"
	"energy-traffic-light/internal/model"

	"go.uber.org/zap"
)

// Dataset is the pair of full series after sorting and overlap truncation.
type Dataset struct {
	Grid      []model.PowerLoadEntry
	Household []model.PowerLoadEntry
	// OverlapCutoff is min(last grid ts, last household ts) in unix seconds;
	// zero when either series is empty.
	OverlapCutoff int64
}

// Series returns the full series for kind.
func (d Dataset) Series(kind model.SeriesKind) []model.PowerLoadEntry {
	if kind == model.KindHousehold {
		return d.Household
	}
	return d.Grid
}

// Loader fetches both series from a Source.
type Loader struct {
	Source  Source
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

func NewLoader(src Source, logger *zap.Logger, m *metrics.Metrics) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{Source: src, Logger: logger, Metrics: m}
}

// Load fetches, sorts and truncates both series. A failed fetch never fails the
// load: the series is logged and replaced by an empty one.
func (l *Loader) Load(ctx context.Context) Dataset {
	grid := l.fetch(ctx, model.KindGrid)
	household := l.fetch(ctx, model.KindHousehold)
	return Prepare(grid, household)
}

func (l *Loader) fetch(ctx context.Context, kind model.SeriesKind) []model.PowerLoadEntry {
	series, err := l.Source.Fetch(ctx, kind)
	l.Metrics.ObserveDataLoad(string(kind), err)
	if err != nil {
		l.Logger.Error("error loading series, using empty data",
			zap.String("series", string(kind)), zap.Error(err))
		return []model.PowerLoadEntry{}
	}
	return series
}

// Prepare sorts both series and truncates them at their common overlap.
func Prepare(grid, household []model.PowerLoadEntry) Dataset {
	model.SortByTimestamp(grid)
	model.SortByTimestamp(household)
	grid, household, cutoff := TruncateToOverlap(grid, household)
	return Dataset{Grid: grid, Household: household, OverlapCutoff: cutoff}
}

// TruncateToOverlap drops entries later than the earlier of the two final
// timestamps. Both inputs must be sorted. If either is empty nothing is dropped.
func TruncateToOverlap(grid, household []model.PowerLoadEntry) ([]model.PowerLoadEntry, []model.PowerLoadEntry, int64) {
	lastGrid, okG := model.LastTimestamp(grid)
	lastHouse, okH := model.LastTimestamp(household)
	if !okG || !okH {
		return grid, household, 0
	}
	cutoff := lastGrid
	if lastHouse < cutoff {
		cutoff = lastHouse
	}
	return truncateAfter(grid, cutoff), truncateAfter(household, cutoff), cutoff
}

func truncateAfter(series []model.PowerLoadEntry, cutoff int64) []model.PowerLoadEntry {
	for i, e := range series {
		if e.Timestamp > cutoff {
			return series[:i]
		}
	}
	return series
}

package model

import (
	"sort"
	"time"
)

// SeriesKind names one of the two load series shipped with the dashboard.
type SeriesKind string

const (
	KindGrid      SeriesKind = "grid"
	KindHousehold SeriesKind = "household"
)

// Kinds lists every series kind in display order.
var Kinds = []SeriesKind{KindGrid, KindHousehold}

func (k SeriesKind) Valid() bool {
	return k == KindGrid || k == KindHousehold
}

// PowerLoadEntry is one sample of grid or household load.
//
// Example:
//
//	{ "timestamp": 1720569600, "Wert": 42.7, "is_peak": false }
//
// The "Wert" field name comes from the source dataset and is kept as-is.
type PowerLoadEntry struct {
	Timestamp int64   `json:"timestamp"` // unix seconds
	Value     float64 `json:"Wert"`
	IsPeak    bool    `json:"is_peak"`
}

func (e PowerLoadEntry) Millis() int64 {
	return e.Timestamp * 1000
}

func (e PowerLoadEntry) Time() time.Time {
	return time.Unix(e.Timestamp, 0).UTC()
}

// SortByTimestamp sorts a series ascending in place. Equal timestamps keep their order.
func SortByTimestamp(series []PowerLoadEntry) {
	sort.SliceStable(series, func(i, j int) bool {
		return series[i].Timestamp < series[j].Timestamp
	})
}

// LastTimestamp returns the timestamp of the final entry, or false for an empty series.
func LastTimestamp(series []PowerLoadEntry) (int64, bool) {
	if len(series) == 0 {
		return 0, false
	}
	return series[len(series)-1].Timestamp, true
}

// MillisToTime converts a unix-millisecond instant to UTC.
func MillisToTime(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

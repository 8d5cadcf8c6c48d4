package analysis

import (
	"sort"

	"energy-traffic-light/internal/model"

	"gonum.org/v1/gonum/stat"
)

// HourLoad is the mean load observed in one hour of the day (UTC).
type HourLoad struct {
	Hour     int     `json:"hour"`
	MeanLoad float64 `json:"mean_load"`
	Samples  int     `json:"samples"`
}

// RankHoursByLoad groups a series by hour of day and sorts ascending by mean
// load, so the quietest hours come first. Hours without samples are omitted.
func RankHoursByLoad(series []model.PowerLoadEntry) []HourLoad {
	var byHour [24][]float64
	for _, e := range series {
		h := e.Time().Hour()
		byHour[h] = append(byHour[h], e.Value)
	}
	out := make([]HourLoad, 0, 24)
	for h, vals := range byHour {
		if len(vals) == 0 {
			continue
		}
		out = append(out, HourLoad{Hour: h, MeanLoad: stat.Mean(vals, nil), Samples: len(vals)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MeanLoad < out[j].MeanLoad
	})
	return out
}

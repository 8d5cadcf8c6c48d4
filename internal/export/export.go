// Package export renders the current simulation window as XLSX or PDF.
package export

import (
	"time"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"
)

// Report is the data both exporters render.
type Report struct {
	GeneratedAt time.Time
	CurrentTime time.Time
	Window      time.Duration

	Grid      []model.PowerLoadEntry
	Household []model.PowerLoadEntry

	GridStats      analysis.SeriesStats
	HouseholdStats analysis.SeriesStats

	// ChartPNG is embedded in the PDF when present.
	ChartPNG []byte
}

// NewReport captures snap's windowed series.
func NewReport(snap simulation.Snapshot, window time.Duration, now time.Time) Report {
	return Report{
		GeneratedAt:    now.UTC(),
		CurrentTime:    snap.Time(),
		Window:         window,
		Grid:           snap.WindowGrid,
		Household:      snap.WindowHousehold,
		GridStats:      analysis.ComputeStats(model.KindGrid, snap.WindowGrid),
		HouseholdStats: analysis.ComputeStats(model.KindHousehold, snap.WindowHousehold),
	}
}

// row joins the two series on timestamp.
type row struct {
	ts        int64
	grid      *model.PowerLoadEntry
	household *model.PowerLoadEntry
}

func (r Report) rows() []row {
	out := make([]row, 0, len(r.Grid)+len(r.Household))
	i, j := 0, 0
	for i < len(r.Grid) || j < len(r.Household) {
		switch {
		case j >= len(r.Household) || (i < len(r.Grid) && r.Grid[i].Timestamp < r.Household[j].Timestamp):
			out = append(out, row{ts: r.Grid[i].Timestamp, grid: &r.Grid[i]})
			i++
		case i >= len(r.Grid) || r.Household[j].Timestamp < r.Grid[i].Timestamp:
			out = append(out, row{ts: r.Household[j].Timestamp, household: &r.Household[j]})
			j++
		default:
			out = append(out, row{ts: r.Grid[i].Timestamp, grid: &r.Grid[i], household: &r.Household[j]})
			i++
			j++
		}
	}
	return out
}

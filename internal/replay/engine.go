// Package replay steps a private simulated clock across a time range and records
// what the dashboard would have shown at each step.
package replay

import (
	"fmt"
	"time"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/pricing"
	"energy-traffic-light/internal/simulation"
)

const MaxSteps = 10000

type Options struct {
	From   time.Time
	Steps  int
	Step   time.Duration
	Window time.Duration
}

type Engine struct {
	pricer pricing.Pricer
}

func New(pricer pricing.Pricer) *Engine {
	if pricer == nil {
		pricer = &pricing.LoadTiered{Low: pricing.DefaultLowPrice, Medium: pricing.DefaultMediumPrice, High: pricing.DefaultHighPrice}
	}
	return &Engine{pricer: pricer}
}

// Run replays ds from opts.From. The live store is never touched; each run
// builds its own.
func (e *Engine) Run(ds data.Dataset, opts Options) (*Result, error) {
	if opts.Steps <= 0 {
		return nil, fmt.Errorf("steps must be positive")
	}
	if opts.Steps > MaxSteps {
		return nil, fmt.Errorf("steps %d exceeds maximum %d", opts.Steps, MaxSteps)
	}
	if opts.Step <= 0 {
		return nil, fmt.Errorf("step must be positive")
	}
	if len(ds.Grid) == 0 && len(ds.Household) == 0 {
		return nil, fmt.Errorf("no data")
	}

	gridStats := analysis.ComputeStats(model.KindGrid, ds.Grid)
	store := simulation.NewStore(opts.Window)
	store.Init(ds, opts.From.UnixMilli())

	ledger := make([]LedgerRow, 0, opts.Steps)
	counts := map[model.Light]int{}
	sumPct := 0.0

	for idx := 0; idx < opts.Steps; idx++ {
		if idx > 0 {
			store.SetCurrentTime(store.CurrentTime() + opts.Step.Milliseconds())
		}
		snap := store.Snapshot()

		row := LedgerRow{
			Index:                 idx,
			Time:                  snap.Time(),
			WindowGridPoints:      len(snap.WindowGrid),
			WindowHouseholdPoints: len(snap.WindowHousehold),
		}
		if n := len(snap.WindowGrid); n > 0 {
			last := snap.WindowGrid[n-1]
			row.GridLoad = last.Value
			row.IsPeak = last.IsPeak
			row.LoadPct = gridStats.LoadPercent(last.Value)
		}
		if n := len(snap.WindowHousehold); n > 0 {
			row.HouseholdLoad = snap.WindowHousehold[n-1].Value
		}
		row.Light = model.LightFromLoad(row.LoadPct)
		row.Tier = pricing.TierForLoad(row.LoadPct)
		row.Price = e.pricer.Price(pricing.Context{Time: row.Time, LoadPct: row.LoadPct})

		counts[row.Light]++
		sumPct += row.LoadPct
		ledger = append(ledger, row)
	}

	return &Result{
		Ledger:      ledger,
		LightCounts: counts,
		MeanLoadPct: sumPct / float64(len(ledger)),
	}, nil
}

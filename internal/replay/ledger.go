package replay

import (
	"time"

	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/pricing"
)

// LedgerRow is one replay step.
type LedgerRow struct {
	Index int       `json:"index"`
	Time  time.Time `json:"time"`

	GridLoad      float64 `json:"grid_load"`
	HouseholdLoad float64 `json:"household_load"`
	LoadPct       float64 `json:"load_pct"`
	IsPeak        bool    `json:"is_peak"`

	Light model.Light  `json:"light"`
	Tier  pricing.Tier `json:"tier"`
	Price float64      `json:"price"`

	WindowGridPoints      int `json:"window_grid_points"`
	WindowHouseholdPoints int `json:"window_household_points"`
}

type Result struct {
	Ledger      []LedgerRow         `json:"ledger"`
	LightCounts map[model.Light]int `json:"light_counts"`
	MeanLoadPct float64             `json:"mean_load_pct"`
}

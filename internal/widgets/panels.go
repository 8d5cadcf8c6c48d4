package widgets

import (
	"math"
	"sync"
	"time"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/pricing"
)

type TrafficLight struct {
	Light   model.Light `json:"light"`
	LoadPct float64     `json:"load_pct"`
}

func ReadTrafficLight(src Source) TrafficLight {
	load := src.GridLoad()
	return TrafficLight{Light: model.LightFromLoad(load), LoadPct: load}
}

type Bill struct {
	UsageKWh  float64 `json:"usage_kwh"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

func EstimateBill(src Source) Bill {
	usage := src.MonthlyUsageKWh()
	price := src.UnitPrice()
	return Bill{UsageKWh: usage, UnitPrice: price, Total: usage * price}
}

// Gamification accumulates off-peak consumption into a score.
type Gamification struct {
	mu         sync.Mutex
	offPeakKWh float64
}

type GamificationState struct {
	OffPeakKWh float64 `json:"off_peak_kwh"`
	Score      int     `json:"score"`
	Level      int     `json:"level"`
	Progress   int     `json:"progress"` // points into the current level, 0-99
}

// Poll adds the source's off-peak increment and returns the new state.
func (g *Gamification) Poll(src Source) GamificationState {
	inc := src.OffPeakIncrementKWh()
	g.mu.Lock()
	g.offPeakKWh += inc
	g.mu.Unlock()
	return g.State()
}

func (g *Gamification) State() GamificationState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return scoreFor(g.offPeakKWh)
}

func scoreFor(offPeak float64) GamificationState {
	score := int(math.Floor(offPeak / 10))
	return GamificationState{
		OffPeakKWh: offPeak,
		Score:      score,
		Level:      score/100 + 1,
		Progress:   score % 100,
	}
}

var tipsByTier = map[pricing.Tier][]string{
	pricing.TierHigh: {
		"High grid load! Consider postponing high-energy activities.",
		"Use smart plugs to automatically turn off devices during peak hours.",
		"Adjust your thermostat by a few degrees to reduce energy consumption.",
	},
	pricing.TierMedium: {
		"Grid load is increasing. Be mindful of your energy usage.",
		"Run your dishwasher and washing machine during off-peak hours.",
		"Unplug electronics when not in use to reduce standby power consumption.",
	},
	pricing.TierLow: {
		"Grid load is low. This is a good time for energy-intensive tasks.",
		"Consider charging electric vehicles or running large appliances now.",
		"Take advantage of lower prices by pre-cooling or pre-heating your home.",
	},
}

type Insights struct {
	At             time.Time    `json:"at"`
	LoadPct        float64      `json:"load_pct"`
	Tier           pricing.Tier `json:"tier"`
	UnitPrice      float64      `json:"unit_price"`
	MonthlySavings float64      `json:"monthly_savings"`
	Tips           []string     `json:"tips"`

	// QuietHours lists the hours of day with the lowest mean grid load.
	QuietHours []analysis.HourLoad `json:"quiet_hours,omitempty"`
}

const quietHourCount = 3

// QuietHours returns the n least loaded hours of day in grid.
func QuietHours(grid []model.PowerLoadEntry, n int) []analysis.HourLoad {
	ranked := analysis.RankHoursByLoad(grid)
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// ReadInsights prices the current load and picks tips for its tier.
func ReadInsights(src Source, pricer pricing.Pricer) Insights {
	load := src.GridLoad()
	now := src.Now()
	tier := pricing.TierForLoad(load)
	price := pricer.Price(pricing.Context{Time: now, LoadPct: load})
	cheapest := pricer.Price(pricing.Context{Time: now, LoadPct: 0})
	return Insights{
		At:             now,
		LoadPct:        load,
		Tier:           tier,
		UnitPrice:      price,
		MonthlySavings: pricing.MonthlySavings(price, cheapest),
		Tips:           append([]string(nil), tipsByTier[tier]...),
	}
}

const (
	co2KgPerKWh   = 0.5
	co2KgPerTree  = 22.0
	homeKWhPerDay = 30.0
)

type Dinosaur struct {
	Name      string  `json:"name"`
	EnergyKWh float64 `json:"energy_kwh"`
}

var Dinosaurs = []Dinosaur{
	{Name: "T-Rex", EnergyKWh: 6640},
	{Name: "Brachiosaurus", EnergyKWh: 33200},
	{Name: "Velociraptor", EnergyKWh: 12.5},
	{Name: "Stegosaurus", EnergyKWh: 2490},
	{Name: "Triceratops", EnergyKWh: 8300},
}

type DinosaurComparison struct {
	Dinosaur
	// Percent of the dinosaur's fossil energy the usage represents.
	Percent  float64 `json:"percent"`
	HomeDays float64 `json:"home_days"`
}

type Carbon struct {
	KWh       float64              `json:"kwh"`
	CO2Kg     float64              `json:"co2_kg"`
	Trees     int                  `json:"trees"`
	Dinosaurs []DinosaurComparison `json:"dinosaurs"`
}

// Footprint converts consumption into CO2, trees needed to absorb it and
// dinosaur-sized comparisons.
func Footprint(kwh float64) Carbon {
	if kwh < 0 || math.IsNaN(kwh) {
		kwh = 0
	}
	co2 := kwh * co2KgPerKWh
	out := Carbon{
		KWh:       kwh,
		CO2Kg:     co2,
		Trees:     int(math.Ceil(co2 / co2KgPerTree)),
		Dinosaurs: make([]DinosaurComparison, 0, len(Dinosaurs)),
	}
	for _, d := range Dinosaurs {
		out.Dinosaurs = append(out.Dinosaurs, DinosaurComparison{
			Dinosaur: d,
			Percent:  kwh / d.EnergyKWh * 100,
			HomeDays: d.EnergyKWh / homeKWhPerDay,
		})
	}
	return out
}

package pricing

const (
	DefaultLowPrice    = 0.10
	DefaultMediumPrice = 0.15
	DefaultHighPrice   = 0.20

	// Reference household used by the savings estimate.
	dailyShiftableKWh = 30 * 0.2
	daysPerMonth      = 30
)

// Tier buckets grid load for pricing and tips.
type Tier string

const (
	TierLow    Tier = "low"
	TierMedium Tier = "medium"
	TierHigh   Tier = "high"
)

// TierForLoad: above 80% is high, above 60% medium, otherwise low.
func TierForLoad(loadPct float64) Tier {
	switch {
	case loadPct > 80:
		return TierHigh
	case loadPct > 60:
		return TierMedium
	default:
		return TierLow
	}
}

// LoadTiered prices energy by the current grid load tier.
type LoadTiered struct {
	Low, Medium, High float64
}

func (p *LoadTiered) Name() string { return NameLoadTiered }

func (p *LoadTiered) Price(ctx Context) float64 {
	switch TierForLoad(ctx.LoadPct) {
	case TierHigh:
		return p.High
	case TierMedium:
		return p.Medium
	default:
		return p.Low
	}
}

// MonthlySavings estimates what shifting a fifth of a 30 kWh day to the cheapest
// tier would save per month at the given price.
func MonthlySavings(price, cheapest float64) float64 {
	s := dailyShiftableKWh * (price - cheapest) * daysPerMonth
	if s < 0 {
		return 0
	}
	return s
}

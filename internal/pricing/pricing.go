// Package pricing turns the simulated instant and grid load into a unit energy
// price. Prices are illustrative; nothing here models a real tariff.
package pricing

import (
	"fmt"
	"strings"
	"time"
)

// Context is what a Pricer may look at.
type Context struct {
	Time    time.Time
	LoadPct float64 // current grid load, 0-100
}

type Pricer interface {
	Name() string
	Price(ctx Context) float64
}

const (
	NameLoadTiered = "load_tiered"
	NameTimeOfUse  = "time_of_use"
)

// New builds a pricer from a name and loosely typed params (YAML or JSON).
func New(name string, params map[string]any) (Pricer, error) {
	switch strings.TrimSpace(name) {
	case "", NameLoadTiered:
		return &LoadTiered{
			Low:    num(params, "low_price", DefaultLowPrice),
			Medium: num(params, "medium_price", DefaultMediumPrice),
			High:   num(params, "high_price", DefaultHighPrice),
		}, nil
	case NameTimeOfUse:
		return NewTimeOfUse(TimeOfUseParams{
			PeakStart:    str(params, "peak_start", "17:00"),
			PeakEnd:      str(params, "peak_end", "21:00"),
			PeakPrice:    num(params, "peak_price", DefaultHighPrice),
			OffPeakPrice: num(params, "off_peak_price", DefaultLowPrice),
		})
	default:
		return nil, fmt.Errorf("unsupported pricer: %q", name)
	}
}

func num(m map[string]any, key string, def float64) float64 {
	if v, ok := m[key]; ok && v != nil {
		switch x := v.(type) {
		case float64:
			return x
		case int:
			return float64(x)
		}
	}
	return def
}

func str(m map[string]any, key string, def string) string {
	if v, ok := m[key]; ok && v != nil {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return def
}

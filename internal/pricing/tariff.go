package pricing

import (
	"fmt"
	"strings"
)

// TimeOfUseParams describes a daily peak window:
// - PeakPrice during [PeakStart, PeakEnd)
// - OffPeakPrice otherwise
//
// Times are interpreted in the location of the instant being priced.
type TimeOfUseParams struct {
	PeakStart    string // "HH:MM"
	PeakEnd      string // "HH:MM"; may be earlier than PeakStart to wrap past midnight
	PeakPrice    float64
	OffPeakPrice float64
}

type TimeOfUse struct {
	Params TimeOfUseParams

	startMins int
	endMins   int
}

func NewTimeOfUse(p TimeOfUseParams) (*TimeOfUse, error) {
	start, err := parseHHMM(p.PeakStart)
	if err != nil {
		return nil, err
	}
	end, err := parseHHMM(p.PeakEnd)
	if err != nil {
		return nil, err
	}
	if p.PeakPrice < 0 || p.OffPeakPrice < 0 {
		return nil, fmt.Errorf("prices must be non-negative")
	}
	return &TimeOfUse{Params: p, startMins: start, endMins: end}, nil
}

func (t *TimeOfUse) Name() string { return NameTimeOfUse }

func (t *TimeOfUse) Price(ctx Context) float64 {
	if t.IsPeak(ctx) {
		return t.Params.PeakPrice
	}
	return t.Params.OffPeakPrice
}

func (t *TimeOfUse) IsPeak(ctx Context) bool {
	mins := ctx.Time.Hour()*60 + ctx.Time.Minute()
	return inWindow(mins, t.startMins, t.endMins)
}

func parseHHMM(s string) (int, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	var h, m int
	if _, err := fmt.Sscanf(parts[0], "%d", &h); err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &m); err != nil {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return h*60 + m, nil
}

// inWindow checks whether tMins is in [start, end) on a 24h clock.
// start == end is an empty window; start > end wraps across midnight.
func inWindow(tMins, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return tMins >= start && tMins < end
	}
	return tMins >= start || tMins < end
}

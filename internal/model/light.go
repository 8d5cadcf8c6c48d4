package model

// Light is the traffic-light colour shown for the current grid load.
// Keep these values stable; they are intended for CSV output.
type Light string

const (
	LightGreen  Light = "GREEN"
	LightYellow Light = "YELLOW"
	LightRed    Light = "RED"
)

// LightFromLoad maps a load percentage (0-100) onto a colour.
func LightFromLoad(loadPct float64) Light {
	switch {
	case loadPct < 33:
		return LightGreen
	case loadPct < 66:
		return LightYellow
	default:
		return LightRed
	}
}

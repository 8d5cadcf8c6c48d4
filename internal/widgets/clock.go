package widgets

import "time"

// ClockFace is the formatted simulated date and time shown above the charts.
type ClockFace struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Unix int64  `json:"unix_ms"`
}

func FormatClock(t time.Time) ClockFace {
	t = t.UTC()
	return ClockFace{
		Date: t.Format("Monday, January 2, 2006"),
		Time: t.Format("15:04:05"),
		Unix: t.UnixMilli(),
	}
}

package stream

import (
	"time"

	"go.uber.org/zap"

	"energy-traffic-light/internal/simulation"
)

// WindowUpdate summarises a store snapshot for push clients. Full series are
// fetched over HTTP.
type WindowUpdate struct {
	CurrentTime     int64     `json:"current_time"`
	CurrentTimeISO  time.Time `json:"current_time_iso"`
	Version         uint64    `json:"version"`
	GridPoints      int       `json:"grid_points"`
	HouseholdPoints int       `json:"household_points"`
	LatestGrid      *float64  `json:"latest_grid,omitempty"`
	LatestHousehold *float64  `json:"latest_household,omitempty"`
}

func NewWindowUpdate(snap simulation.Snapshot) WindowUpdate {
	u := WindowUpdate{
		CurrentTime:     snap.CurrentTime,
		CurrentTimeISO:  snap.Time(),
		Version:         snap.Version,
		GridPoints:      len(snap.WindowGrid),
		HouseholdPoints: len(snap.WindowHousehold),
	}
	if n := len(snap.WindowGrid); n > 0 {
		v := snap.WindowGrid[n-1].Value
		u.LatestGrid = &v
	}
	if n := len(snap.WindowHousehold); n > 0 {
		v := snap.WindowHousehold[n-1].Value
		u.LatestHousehold = &v
	}
	return u
}

// Feed publishes store snapshots and clock state changes to b until the
// returned cancel func is called.
func Feed(store *simulation.Store, clock *simulation.Clock, b *Broker, logger *zap.Logger) func() {
	if logger == nil {
		logger = zap.NewNop()
	}
	cancelStore := store.Subscribe(func(snap simulation.Snapshot) {
		if err := b.Publish(EventWindow, NewWindowUpdate(snap)); err != nil {
			logger.Warn("publish window failed", zap.Error(err))
		}
	})
	cancelClock := func() {}
	if clock != nil {
		cancelClock = clock.Subscribe(func(st simulation.ClockState) {
			if err := b.Publish(EventState, st); err != nil {
				logger.Warn("publish state failed", zap.Error(err))
			}
		})
	}
	return func() {
		cancelStore()
		cancelClock()
	}
}

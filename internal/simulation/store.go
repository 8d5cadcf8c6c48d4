// Package simulation owns the simulated clock and the state derived from it.
//
// A Store holds the full load series and the trailing window computed for the
// current simulated instant. Current time and windows change together in one
// step; subscribers are then called synchronously with the new Snapshot.
package simulation

import (
	"sync"
	"time"

	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/shaping"
)

// Snapshot is an immutable view of the store after one update.
type Snapshot struct {
	CurrentTime     int64 // unix ms
	Version         uint64
	WindowGrid      []model.PowerLoadEntry
	WindowHousehold []model.PowerLoadEntry
}

func (s Snapshot) Time() time.Time {
	return model.MillisToTime(s.CurrentTime)
}

// Window returns the windowed series for kind.
func (s Snapshot) Window(kind model.SeriesKind) []model.PowerLoadEntry {
	if kind == model.KindHousehold {
		return s.WindowHousehold
	}
	return s.WindowGrid
}

// Listener must not write to the store it is subscribed to.
type Listener func(Snapshot)

type Store struct {
	window time.Duration

	mu      sync.RWMutex
	dataset data.Dataset
	snap    Snapshot

	// notifyMu serializes update+notify so listeners observe snapshots in order.
	notifyMu  sync.Mutex
	lmu       sync.Mutex
	listeners []subscription
	nextID    int
}

type subscription struct {
	id int
	fn Listener
}

// NewStore creates an empty store; window <= 0 uses the 24h default.
func NewStore(window time.Duration) *Store {
	if window <= 0 {
		window = shaping.DefaultWindow
	}
	return &Store{
		window: window,
		snap: Snapshot{
			WindowGrid:      []model.PowerLoadEntry{},
			WindowHousehold: []model.PowerLoadEntry{},
		},
	}
}

// Init replaces the full series and sets the current time.
func (s *Store) Init(ds data.Dataset, currentMs int64) {
	if ds.Grid == nil {
		ds.Grid = []model.PowerLoadEntry{}
	}
	if ds.Household == nil {
		ds.Household = []model.PowerLoadEntry{}
	}
	s.apply(func() {
		s.dataset = ds
		s.snap.CurrentTime = currentMs
	})
}

// SetCurrentTime is the only way simulated time changes after Init.
func (s *Store) SetCurrentTime(ms int64) {
	s.apply(func() {
		s.snap.CurrentTime = ms
	})
}

func (s *Store) apply(mutate func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	mutate()
	s.snap = Snapshot{
		CurrentTime:     s.snap.CurrentTime,
		Version:         s.snap.Version + 1,
		WindowGrid:      shaping.FilterTrailingWindow(s.dataset.Grid, s.snap.CurrentTime, s.window),
		WindowHousehold: shaping.FilterTrailingWindow(s.dataset.Household, s.snap.CurrentTime, s.window),
	}
	snap := s.snap
	s.mu.Unlock()

	s.lmu.Lock()
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.lmu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
}

// Subscribe registers fn for every future update and returns its cancel func.
func (s *Store) Subscribe(fn Listener) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.lmu.Lock()
			defer s.lmu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

func (s *Store) CurrentTime() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.CurrentTime
}

// Dataset returns the full (truncated) series.
func (s *Store) Dataset() data.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

func (s *Store) Window() time.Duration {
	return s.window
}

// StartInstant picks the initial simulated time: the overlap cutoff when
// useOverlap is set and one exists, otherwise fallback.
func StartInstant(ds data.Dataset, useOverlap bool, fallback time.Time) int64 {
	if useOverlap && ds.OverlapCutoff > 0 {
		return ds.OverlapCutoff * 1000
	}
	return fallback.UnixMilli()
}

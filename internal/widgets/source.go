// Package widgets derives the dashboard's small panels (traffic light, bill,
// gamification, notifications, price insights, carbon) from a pluggable Source.
package widgets

import (
	"math/rand"
	"sync"
	"time"

	"energy-traffic-light/internal/analysis"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/pricing"
	"energy-traffic-light/internal/simulation"

	"gonum.org/v1/gonum/stat"
)

// Source supplies the readings widgets are computed from. MockSource stands in
// for a live feed; SimulationSource reads the simulated store.
type Source interface {
	Name() string
	Now() time.Time
	// GridLoad is the current grid load as a percentage (0-100).
	GridLoad() float64
	// MonthlyUsageKWh is the household's projected monthly consumption.
	MonthlyUsageKWh() float64
	UnitPrice() float64
	// OffPeakIncrementKWh is off-peak consumption since the previous poll.
	OffPeakIncrementKWh() float64
}

// MockSource draws uniform random readings in the ranges the dashboard was
// designed around.
type MockSource struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewMockSource seeds the generator; seed 0 uses the wall clock.
func NewMockSource(seed int64) *MockSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &MockSource{rng: rand.New(rand.NewSource(seed)), now: time.Now}
}

func (m *MockSource) uniform(lo, hi float64) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return lo + m.rng.Float64()*(hi-lo)
}

func (m *MockSource) Name() string                 { return "mock" }
func (m *MockSource) Now() time.Time               { return m.now() }
func (m *MockSource) GridLoad() float64            { return m.uniform(0, 100) }
func (m *MockSource) MonthlyUsageKWh() float64     { return m.uniform(100, 600) }
func (m *MockSource) UnitPrice() float64           { return m.uniform(0.10, 0.20) }
func (m *MockSource) OffPeakIncrementKWh() float64 { return m.uniform(0, 10) }

// SimulationSource reads the store's trailing window at the simulated instant.
type SimulationSource struct {
	store  *simulation.Store
	pricer pricing.Pricer

	mu        sync.Mutex
	gridStats analysis.SeriesStats
	statsVer  int
	lastPoll  int64
}

func NewSimulationSource(store *simulation.Store, pricer pricing.Pricer) *SimulationSource {
	if pricer == nil {
		pricer = &pricing.LoadTiered{Low: pricing.DefaultLowPrice, Medium: pricing.DefaultMediumPrice, High: pricing.DefaultHighPrice}
	}
	return &SimulationSource{store: store, pricer: pricer}
}

func (s *SimulationSource) Name() string   { return "simulation" }
func (s *SimulationSource) Now() time.Time { return s.store.Snapshot().Time() }

// GridLoad scales the latest windowed grid value into the full series range.
func (s *SimulationSource) GridLoad() float64 {
	snap := s.store.Snapshot()
	if len(snap.WindowGrid) == 0 {
		return 0
	}
	stats := s.stats()
	return stats.LoadPercent(snap.WindowGrid[len(snap.WindowGrid)-1].Value)
}

func (s *SimulationSource) stats() analysis.SeriesStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	full := s.store.Dataset().Grid
	if s.statsVer != len(full) || s.gridStats.Count == 0 {
		s.gridStats = analysis.ComputeStats(model.KindGrid, full)
		s.statsVer = len(full)
	}
	return s.gridStats
}

// MonthlyUsageKWh projects the window's mean household load over 30 days.
func (s *SimulationSource) MonthlyUsageKWh() float64 {
	w := s.store.Snapshot().WindowHousehold
	if len(w) == 0 {
		return 0
	}
	vals := make([]float64, len(w))
	for i, e := range w {
		vals[i] = e.Value
	}
	return stat.Mean(vals, nil) * 24 * 30
}

func (s *SimulationSource) UnitPrice() float64 {
	return s.pricer.Price(pricing.Context{Time: s.Now(), LoadPct: s.GridLoad()})
}

// OffPeakIncrementKWh integrates non-peak household samples since the last poll.
func (s *SimulationSource) OffPeakIncrementKWh() float64 {
	snap := s.store.Snapshot()
	s.mu.Lock()
	since := s.lastPoll
	s.lastPoll = snap.CurrentTime
	s.mu.Unlock()

	w := snap.WindowHousehold
	total := 0.0
	for i, e := range w {
		if e.Millis() <= since || e.IsPeak {
			continue
		}
		hours := 0.25
		if i > 0 {
			hours = float64(e.Timestamp-w[i-1].Timestamp) / 3600
		}
		total += e.Value * hours
	}
	return total
}

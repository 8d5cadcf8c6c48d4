package widgets

import (
	"context"
	"testing"
	"time"

	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/pricing"
	"energy-traffic-light/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedSource struct {
	load, usage, price, offPeak float64
	now                         time.Time
}

func (f *fixedSource) Name() string                 { return "fixed" }
func (f *fixedSource) Now() time.Time               { return f.now }
func (f *fixedSource) GridLoad() float64            { return f.load }
func (f *fixedSource) MonthlyUsageKWh() float64     { return f.usage }
func (f *fixedSource) UnitPrice() float64           { return f.price }
func (f *fixedSource) OffPeakIncrementKWh() float64 { return f.offPeak }

func defaultPricer() pricing.Pricer {
	return &pricing.LoadTiered{Low: 0.10, Medium: 0.15, High: 0.20}
}

func TestTrafficLightAndBill(t *testing.T) {
	src := &fixedSource{load: 70, usage: 300, price: 0.15}
	tl := ReadTrafficLight(src)
	assert.Equal(t, model.LightRed, tl.Light)
	assert.Equal(t, 70.0, tl.LoadPct)

	src.load = 10
	assert.Equal(t, model.LightGreen, ReadTrafficLight(src).Light)

	b := EstimateBill(src)
	assert.InDelta(t, 45.0, b.Total, 1e-9)
}

func TestGamificationScoring(t *testing.T) {
	g := &Gamification{}
	src := &fixedSource{offPeak: 505}
	st := g.Poll(src)
	assert.Equal(t, 50, st.Score)
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, 50, st.Progress)

	st = g.Poll(src)
	assert.Equal(t, 101, st.Score)
	assert.Equal(t, 2, st.Level)
	assert.Equal(t, 1, st.Progress)
	assert.InDelta(t, 1010.0, st.OffPeakKWh, 1e-9)
}

func TestInsightsPerTier(t *testing.T) {
	src := &fixedSource{load: 90}
	in := ReadInsights(src, defaultPricer())
	assert.Equal(t, pricing.TierHigh, in.Tier)
	assert.Equal(t, 0.20, in.UnitPrice)
	assert.InDelta(t, 18.0, in.MonthlySavings, 1e-9)
	require.Len(t, in.Tips, 3)
	assert.Contains(t, in.Tips[0], "High grid load")

	src.load = 65
	in = ReadInsights(src, defaultPricer())
	assert.Equal(t, pricing.TierMedium, in.Tier)
	assert.InDelta(t, 9.0, in.MonthlySavings, 1e-9)

	src.load = 20
	in = ReadInsights(src, defaultPricer())
	assert.Equal(t, pricing.TierLow, in.Tier)
	assert.Zero(t, in.MonthlySavings)
	assert.Contains(t, in.Tips[0], "Grid load is low")
}

func TestFootprint(t *testing.T) {
	c := Footprint(100)
	assert.Equal(t, 50.0, c.CO2Kg)
	assert.Equal(t, 3, c.Trees)
	require.Len(t, c.Dinosaurs, len(Dinosaurs))
	assert.Equal(t, "T-Rex", c.Dinosaurs[0].Name)
	assert.InDelta(t, 100.0/6640*100, c.Dinosaurs[0].Percent, 1e-9)
	assert.InDelta(t, 6640.0/30, c.Dinosaurs[0].HomeDays, 1e-9)

	assert.Zero(t, Footprint(-5).CO2Kg)
	assert.Zero(t, Footprint(0).Trees)
}

func TestNotificationCenter(t *testing.T) {
	c := NewCenter(time.Hour, nil, nil)
	defer c.Close()

	_, ok := c.Check(&fixedSource{load: 50})
	assert.False(t, ok)

	warn, ok := c.Check(&fixedSource{load: 61})
	require.True(t, ok)
	assert.Equal(t, LevelWarning, warn.Level)
	assert.Equal(t, MsgIncreasingLoad, warn.Message)

	alert, ok := c.Check(&fixedSource{load: 81})
	require.True(t, ok)
	assert.Equal(t, LevelAlert, alert.Level)
	assert.Equal(t, MsgHighLoad, alert.Message)
	assert.NotEqual(t, warn.ID, alert.ID)

	assert.Len(t, c.List(), 2)
	assert.True(t, c.Dismiss(warn.ID))
	assert.False(t, c.Dismiss(warn.ID))
	list := c.List()
	require.Len(t, list, 1)
	assert.Equal(t, alert.ID, list[0].ID)
}

func TestNotificationExpires(t *testing.T) {
	c := NewCenter(20*time.Millisecond, nil, nil)
	_, ok := c.Check(&fixedSource{load: 95})
	require.True(t, ok)
	assert.Eventually(t, func() bool { return len(c.List()) == 0 }, time.Second, 5*time.Millisecond)
}

func TestMockSourceRanges(t *testing.T) {
	m := NewMockSource(42)
	for i := 0; i < 200; i++ {
		l := m.GridLoad()
		assert.True(t, l >= 0 && l <= 100)
		u := m.MonthlyUsageKWh()
		assert.True(t, u >= 100 && u <= 600)
		p := m.UnitPrice()
		assert.True(t, p >= 0.10 && p <= 0.20)
		o := m.OffPeakIncrementKWh()
		assert.True(t, o >= 0 && o <= 10)
	}
}

func TestSimulationSource(t *testing.T) {
	ds := data.Prepare(
		[]model.PowerLoadEntry{{Timestamp: 0, Value: 0}, {Timestamp: 3600, Value: 50}, {Timestamp: 7200, Value: 100}},
		[]model.PowerLoadEntry{{Timestamp: 0, Value: 1}, {Timestamp: 3600, Value: 2}, {Timestamp: 7200, Value: 3, IsPeak: true}},
	)
	store := simulation.NewStore(24 * time.Hour)
	store.Init(ds, 3600*1000)

	src := NewSimulationSource(store, nil)
	assert.Equal(t, "simulation", src.Name())
	assert.InDelta(t, 50.0, src.GridLoad(), 1e-9)
	assert.InDelta(t, 1.5*24*30, src.MonthlyUsageKWh(), 1e-9)
	assert.Equal(t, 0.10, src.UnitPrice())

	// ts 0 is not after the initial poll mark of 0; ts 3600 covers one hour at 2 kW.
	assert.InDelta(t, 2.0, src.OffPeakIncrementKWh(), 1e-9)
	assert.Zero(t, src.OffPeakIncrementKWh())

	store.SetCurrentTime(7200 * 1000)
	assert.InDelta(t, 100.0, src.GridLoad(), 1e-9)
	assert.Equal(t, 0.20, src.UnitPrice())
	// The only new sample is a peak sample.
	assert.Zero(t, src.OffPeakIncrementKWh())
}

func TestBoardSummaryAndRun(t *testing.T) {
	src := &fixedSource{load: 85, usage: 200, price: 0.2, offPeak: 10, now: time.Date(2024, 7, 10, 12, 0, 0, 0, time.UTC)}
	b := NewBoard(src, nil, BoardOptions{
		PollInterval:    5 * time.Millisecond,
		NotifyInterval:  5 * time.Millisecond,
		NotificationTTL: time.Hour,
	}, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	assert.Eventually(t, func() bool {
		s := b.Summary()
		return s.Gamification.Score >= 1 && len(s.Notifications) >= 1
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	s := b.Summary()
	assert.Equal(t, "fixed", s.Source)
	assert.Equal(t, model.LightRed, s.TrafficLight.Light)
	assert.InDelta(t, 40.0, s.Bill.Total, 1e-9)
	assert.Equal(t, 100.0, s.Carbon.CO2Kg)
	assert.Equal(t, "Wednesday, July 10, 2024", s.Clock.Date)
	assert.Equal(t, "12:00:00", s.Clock.Time)
}

func TestBoardInsightsQuietHours(t *testing.T) {
	grid := []model.PowerLoadEntry{
		{Timestamp: 0, Value: 90},        // 00:00
		{Timestamp: 3600, Value: 10},     // 01:00
		{Timestamp: 2 * 3600, Value: 40}, // 02:00
		{Timestamp: 3 * 3600, Value: 20}, // 03:00
		{Timestamp: 4 * 3600, Value: 70}, // 04:00
	}
	b := NewBoard(&fixedSource{load: 10}, nil, BoardOptions{}, nil, nil)
	assert.Empty(t, b.Insights().QuietHours)

	b.GridSeries = func() []model.PowerLoadEntry { return grid }
	hours := b.Insights().QuietHours
	require.Len(t, hours, 3)
	assert.Equal(t, []int{1, 3, 2}, []int{hours[0].Hour, hours[1].Hour, hours[2].Hour})
}

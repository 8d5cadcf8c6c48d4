package chart

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"energy-traffic-light/internal/config"
	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/shaping"
	"energy-traffic-light/internal/simulation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 7, 10, 0, 0, 0, 0, time.UTC)

// quarterHourly returns samples every 15 minutes for days days before t0.
func quarterHourly(days int, scale float64) []model.PowerLoadEntry {
	n := days * 96
	out := make([]model.PowerLoadEntry, n)
	start := t0.Add(-time.Duration(days) * 24 * time.Hour).Unix()
	for i := range out {
		ts := start + int64(i+1)*900
		h := time.Unix(ts, 0).UTC().Hour()
		out[i] = model.PowerLoadEntry{Timestamp: ts, Value: scale * float64(h+1), IsPeak: h >= 17 && h < 20}
	}
	return out
}

func sources(days int) Sources {
	grid := quarterHourly(days, 10)
	house := quarterHourly(days, 1)
	now := t0
	return Sources{
		Now:             now,
		FullGrid:        grid,
		FullHousehold:   house,
		WindowGrid:      shaping.FilterTrailingWindow(grid, now.UnixMilli(), 24*time.Hour),
		WindowHousehold: shaping.FilterTrailingWindow(house, now.UnixMilli(), 24*time.Hour),
	}
}

func TestParseViewAndComparison(t *testing.T) {
	v, err := ParseView("")
	require.NoError(t, err)
	assert.Equal(t, ViewDaily, v)
	_, err = ParseView("hourly")
	assert.Error(t, err)

	c, err := ParseComparison("lastYear")
	require.NoError(t, err)
	assert.Equal(t, ComparisonLastYear, c)
	_, err = ParseComparison("yesterday")
	assert.Error(t, err)
}

func TestBuildDailyGrid(t *testing.T) {
	p, err := NewBuilder(nil).Build(sources(3), Request{Kind: model.KindGrid, View: ViewDaily})
	require.NoError(t, err)
	assert.Len(t, p.Labels, 96)
	require.Len(t, p.Datasets, 1)
	ds := p.Datasets[0]
	assert.Len(t, ds.Data, 96)
	assert.Equal(t, "00:15", p.Labels[0])
	assert.Equal(t, "Grid Load - Daily View - Wednesday, July 10, 2024", p.Title)

	// smoothing ORs peaks over a trailing window, so regions may extend past 20:00
	require.Len(t, p.PeakRegions, 1)
	for i := p.PeakRegions[0].Start; i <= p.PeakRegions[0].End; i++ {
		assert.Equal(t, ColorPeak, ds.PointColors[i])
		assert.Equal(t, RadiusPeak, ds.PointRadii[i])
	}
	assert.Equal(t, RadiusPoint, ds.PointRadii[0])
}

func TestBuildWeeklyDownsamples(t *testing.T) {
	p, err := NewBuilder(nil).Build(sources(10), Request{Kind: model.KindGrid, View: ViewWeekly})
	require.NoError(t, err)
	assert.Len(t, p.Datasets[0].Data, 168)
	assert.Contains(t, p.Title, "Weekly View")
}

func TestBuildMonthlyWithOverride(t *testing.T) {
	b := NewBuilder(map[string]config.ViewConfig{"monthly": {Downsample: 100}})
	p, err := b.Build(sources(40), Request{Kind: model.KindGrid, View: ViewMonthly})
	require.NoError(t, err)
	assert.Len(t, p.Datasets[0].Data, 100)
	assert.Equal(t, "Grid Load - Monthly View - July 2024", p.Title)
}

func TestBuildHouseholdComparison(t *testing.T) {
	p, err := NewBuilder(nil).Build(sources(3), Request{
		Kind:       model.KindHousehold,
		View:       ViewDaily,
		Comparison: ComparisonLastPeriod,
	})
	require.NoError(t, err)
	require.Len(t, p.Datasets, 2)
	assert.Equal(t, len(p.Datasets[0].Data), len(p.Datasets[1].Data))
	assert.True(t, p.Datasets[1].Dashed)
	// same hour-of-day shape a day earlier
	assert.InDeltaSlice(t, p.Datasets[0].Data, p.Datasets[1].Data, 1e-9)

	none, err := NewBuilder(nil).Build(sources(3), Request{Kind: model.KindHousehold, Comparison: ComparisonLastYear})
	require.NoError(t, err)
	require.Len(t, none.Datasets, 2)
	assert.Empty(t, none.Datasets[1].Data)
}

func TestBuildRejectsUnknownKind(t *testing.T) {
	_, err := NewBuilder(nil).Build(sources(1), Request{Kind: "solar"})
	assert.Error(t, err)
}

func TestAdapterBeforeInitialize(t *testing.T) {
	a := NewAdapter("grid", nil)
	a.Update(Payload{Labels: []string{"a"}})
	a.Resize(10, 10)
	err := a.Render(&bytes.Buffer{}, FormatPNG)
	assert.True(t, errors.Is(err, ErrNotInitialized))
}

func TestAdapterRender(t *testing.T) {
	p, err := NewBuilder(nil).Build(sources(2), Request{Kind: model.KindGrid})
	require.NoError(t, err)

	canvas, specs := Spec(model.KindGrid, 640, 320)
	a := NewAdapter("grid", nil)
	a.Initialize(canvas, specs)
	a.Update(p)
	a.Update(p)

	var png bytes.Buffer
	require.NoError(t, a.Render(&png, FormatPNG))
	assert.Equal(t, []byte("\x89PNG"), png.Bytes()[:4])

	var svg bytes.Buffer
	require.NoError(t, a.Render(&svg, FormatSVG))
	assert.Contains(t, svg.String(), "<svg")

	a.Resize(300, 0)
	assert.Equal(t, 300, a.Canvas().Width)
	assert.Equal(t, 320, a.Canvas().Height)
}

func TestAdapterRenderDegenerateData(t *testing.T) {
	canvas, specs := Spec(model.KindHousehold, 400, 200)
	for _, p := range []Payload{
		{},
		{Labels: []string{"00:00"}, Datasets: []Dataset{{Data: []float64{3}}}},
		{Labels: []string{"a", "b"}, Datasets: []Dataset{{Data: []float64{0, 0}}}, PeakRegions: []shaping.PeakRegion{{Start: 1, End: 1}}},
	} {
		a := NewAdapter("household", nil)
		a.Initialize(canvas, specs)
		a.Update(p)
		assert.NoError(t, a.Render(&bytes.Buffer{}, FormatPNG))
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("SVG")
	require.NoError(t, err)
	assert.Equal(t, "image/svg+xml", f.ContentType())
	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestRenderCache(t *testing.T) {
	c := NewRenderCache(time.Minute)
	now := t0
	c.now = func() time.Time { return now }
	c.Set("k", []byte("v"))
	got, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("k")
	assert.False(t, ok)
	c.evictExpired()
	assert.Zero(t, c.Len())

	var disabled *RenderCache = NewRenderCache(0)
	disabled.Set("k", nil)
	_, ok = disabled.Get("k")
	assert.False(t, ok)
}

func TestCacheKeyDistinguishesInputs(t *testing.T) {
	req := Request{Kind: model.KindGrid, View: ViewDaily}
	a := CacheKey(req, 1, 1, 100, 100, FormatPNG)
	assert.Equal(t, a, CacheKey(req, 1, 1, 100, 100, FormatPNG))
	assert.NotEqual(t, a, CacheKey(req, 2, 1, 100, 100, FormatPNG))
	assert.NotEqual(t, a, CacheKey(req, 1, 1, 100, 100, FormatSVG))
}

func TestServiceFollowsStore(t *testing.T) {
	store := simulation.NewStore(0)
	ds := data.Prepare(quarterHourly(3, 10), quarterHourly(3, 1))
	store.Init(ds, t0.UnixMilli())

	svc := NewService(store, NewBuilder(nil), NewRenderCache(time.Minute), 500, 250, nil, nil)
	_, err := svc.Render(Request{Kind: model.KindGrid}, 0, 0, FormatPNG)
	assert.True(t, errors.Is(err, ErrNotInitialized))

	svc.Initialize()
	store.Subscribe(svc.OnSnapshot)
	store.SetCurrentTime(t0.Add(-12 * time.Hour).UnixMilli())

	p, err := svc.Payload(Request{Kind: model.KindGrid})
	require.NoError(t, err)
	assert.Equal(t, "Grid Load - Daily View - Tuesday, July 9, 2024", p.Title)

	body, err := svc.Render(Request{Kind: model.KindGrid}, 0, 0, FormatPNG)
	require.NoError(t, err)
	again, err := svc.Render(Request{Kind: model.KindGrid}, 0, 0, FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, body, again)
	assert.True(t, svc.Live(model.KindHousehold).Initialized())
}

func TestServiceRendersLiveChart(t *testing.T) {
	store := simulation.NewStore(0)
	store.Init(data.Prepare(quarterHourly(3, 10), quarterHourly(3, 1)), t0.UnixMilli())
	svc := NewService(store, NewBuilder(nil), NewRenderCache(time.Minute), 500, 250, nil, nil)
	svc.Initialize()

	p, err := svc.Payload(Request{Kind: model.KindGrid})
	require.NoError(t, err)
	require.NotEmpty(t, p.Datasets)
	p.Datasets[0].Label = "Pinned Live Label"
	svc.Live(model.KindGrid).Update(p)

	var want bytes.Buffer
	require.NoError(t, svc.Live(model.KindGrid).Render(&want, FormatSVG))
	got, err := svc.Render(Request{Kind: model.KindGrid}, 0, 0, FormatSVG)
	require.NoError(t, err)
	assert.Equal(t, want.Bytes(), got)
	assert.Contains(t, string(got), "Pinned Live Label")

	weekly, err := svc.Render(Request{Kind: model.KindGrid, View: ViewWeekly}, 0, 0, FormatSVG)
	require.NoError(t, err)
	assert.NotContains(t, string(weekly), "Pinned Live Label")

	other, err := svc.Render(Request{Kind: model.KindGrid}, 320, 200, FormatSVG)
	require.NoError(t, err)
	assert.NotContains(t, string(other), "Pinned Live Label")
}

func TestServiceResize(t *testing.T) {
	store := simulation.NewStore(0)
	store.Init(data.Prepare(quarterHourly(2, 10), quarterHourly(2, 1)), t0.UnixMilli())
	svc := NewService(store, NewBuilder(nil), NewRenderCache(time.Minute), 500, 250, nil, nil)
	assert.True(t, errors.Is(svc.Resize(320, 200), ErrNotInitialized))

	svc.Initialize()
	before, err := svc.Render(Request{Kind: model.KindGrid}, 0, 0, FormatPNG)
	require.NoError(t, err)
	cfg, err := png.DecodeConfig(bytes.NewReader(before))
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Width)

	require.NoError(t, svc.Resize(320, 200))
	w, h := svc.Size()
	assert.Equal(t, 320, w)
	assert.Equal(t, 200, h)

	after, err := svc.Render(Request{Kind: model.KindGrid}, 0, 0, FormatPNG)
	require.NoError(t, err)
	cfg, err = png.DecodeConfig(bytes.NewReader(after))
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

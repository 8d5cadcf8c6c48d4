package chart

import (
	"fmt"
	"strings"
	"time"

	"energy-traffic-light/internal/config"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/shaping"
)

type View string

const (
	ViewDaily   View = "daily"
	ViewWeekly  View = "weekly"
	ViewMonthly View = "monthly"
)

type Comparison string

const (
	ComparisonNone       Comparison = "none"
	ComparisonLastPeriod Comparison = "lastPeriod"
	ComparisonLastYear   Comparison = "lastYear"
)

func ParseView(s string) (View, error) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case "":
		return ViewDaily, nil
	case ViewDaily, ViewWeekly, ViewMonthly:
		return v, nil
	}
	return "", fmt.Errorf("unknown view %q (expected daily, weekly or monthly)", s)
}

func ParseComparison(s string) (Comparison, error) {
	switch c := Comparison(strings.TrimSpace(s)); c {
	case "":
		return ComparisonNone, nil
	case ComparisonNone, ComparisonLastPeriod, ComparisonLastYear:
		return c, nil
	}
	return "", fmt.Errorf("unknown comparison %q (expected none, lastPeriod or lastYear)", s)
}

// builtinViews: downsample 0 on daily means "match the grid chart's length"
// for the household chart and no downsampling for the grid chart.
var builtinViews = map[View]config.ViewConfig{
	ViewDaily:   {Downsample: 0, Smooth: 5, LabelLayout: "15:04"},
	ViewWeekly:  {Downsample: 168, Smooth: 3, LabelLayout: "Mon"},
	ViewMonthly: {Downsample: 240, Smooth: 5, LabelLayout: "Jan 2"},
}

// Request selects what to build.
type Request struct {
	Kind       model.SeriesKind
	View       View
	Comparison Comparison
	// Override is merged onto the view (non-zero fields win).
	Override config.ViewConfig
}

// Builder turns full series and the simulated instant into chart payloads.
type Builder struct {
	views map[View]config.ViewConfig
}

// NewBuilder applies configured view overrides (keyed by view name).
func NewBuilder(overrides map[string]config.ViewConfig) *Builder {
	views := make(map[View]config.ViewConfig, len(builtinViews))
	for v, cfg := range builtinViews {
		views[v] = config.MergeView(cfg, overrides[string(v)])
	}
	return &Builder{views: views}
}

func (b *Builder) ViewConfig(v View) config.ViewConfig {
	return b.views[v]
}

// Start returns the exclusive lower bound of the view window ending at now.
func Start(v View, now time.Time) time.Time {
	switch v {
	case ViewWeekly:
		return now.Add(-7 * 24 * time.Hour)
	case ViewMonthly:
		return now.AddDate(0, -1, 0)
	default:
		return now.Add(-24 * time.Hour)
	}
}

// Period is the shift applied by the lastPeriod comparison.
func Period(v View) time.Duration {
	switch v {
	case ViewWeekly:
		return 7 * 24 * time.Hour
	case ViewMonthly:
		return 30 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

const lastYear = 365 * 24 * time.Hour

// Sources carries the inputs of one build: the full series and, for the daily
// view, the store's already-windowed series.
type Sources struct {
	Now             time.Time
	FullGrid        []model.PowerLoadEntry
	FullHousehold   []model.PowerLoadEntry
	WindowGrid      []model.PowerLoadEntry
	WindowHousehold []model.PowerLoadEntry
}

// Build shapes the requested chart. Peak regions come from the chart's own
// primary dataset.
func (b *Builder) Build(src Sources, req Request) (Payload, error) {
	if !req.Kind.Valid() {
		return Payload{}, fmt.Errorf("unknown series %q", req.Kind)
	}
	if req.View == "" {
		req.View = ViewDaily
	}
	vc, ok := b.views[req.View]
	if !ok {
		return Payload{}, fmt.Errorf("unknown view %q", req.View)
	}
	vc = config.MergeView(vc, req.Override)

	grid := b.shape(src.Now, req.View, src.FullGrid, src.WindowGrid, vc, 0)
	primary := grid
	if req.Kind == model.KindHousehold {
		primary = b.shape(src.Now, req.View, src.FullHousehold, src.WindowHousehold, vc, len(grid))
	}

	labels := make([]string, len(primary))
	for i, e := range primary {
		labels[i] = e.Time().Format(vc.LabelLayout)
	}

	p := Payload{
		Title:       Title(req.Kind, req.View, src.Now),
		Labels:      labels,
		Datasets:    []Dataset{styled(primaryLabel(req.Kind), primaryColor(req.Kind), primary)},
		PeakRegions: shaping.FindPeakRegions(primary),
	}

	if req.Kind == model.KindHousehold && req.Comparison != "" && req.Comparison != ComparisonNone {
		shift := Period(req.View)
		label := "Last Period Household Power Load (kW)"
		if req.Comparison == ComparisonLastYear {
			shift = lastYear
			label = "Last Year Household Power Load (kW)"
		}
		past := b.shape(src.Now.Add(-shift), req.View, src.FullHousehold, nil, vc, len(grid))
		cmp := Dataset{
			Label:       label,
			Data:        shaping.Values(past),
			BorderColor: ColorPrimary,
			Dashed:      true,
		}
		p.Datasets = append(p.Datasets, cmp)
	}
	return p, nil
}

// shape filters full to the view window ending at now (or uses window when
// given for the daily view), downsamples and smooths.
func (b *Builder) shape(now time.Time, v View, full, window []model.PowerLoadEntry, vc config.ViewConfig, matchLen int) []model.PowerLoadEntry {
	series := window
	if v != ViewDaily || series == nil {
		series = shaping.FilterRange(full, Start(v, now).UnixMilli(), now.UnixMilli())
	}
	target := vc.Downsample
	if v == ViewDaily && target == 0 {
		target = matchLen
	}
	if target > 0 {
		series = shaping.Downsample(series, target)
	}
	return shaping.Smooth(series, vc.Smooth)
}

func styled(label, lineColor string, series []model.PowerLoadEntry) Dataset {
	ds := Dataset{
		Label:       label,
		Data:        shaping.Values(series),
		BorderColor: lineColor,
		PointColors: make([]string, len(series)),
		PointRadii:  make([]float64, len(series)),
	}
	for i, e := range series {
		if e.IsPeak {
			ds.PointColors[i] = ColorPeak
			ds.PointRadii[i] = RadiusPeak
		} else {
			ds.PointColors[i] = lineColor
			ds.PointRadii[i] = RadiusPoint
		}
	}
	return ds
}

func primaryLabel(kind model.SeriesKind) string {
	if kind == model.KindHousehold {
		return "Current Household Power Load (kW)"
	}
	return "Grid Load (kW)"
}

func primaryColor(kind model.SeriesKind) string {
	if kind == model.KindHousehold {
		return ColorSecondary
	}
	return ColorPrimary
}

// Title renders e.g. "Grid Load - Daily View - Wednesday, July 10, 2024".
func Title(kind model.SeriesKind, v View, now time.Time) string {
	const long = "Monday, January 2, 2006"
	prefix := "Grid Load"
	if kind == model.KindHousehold {
		prefix = "Household Load"
	}
	switch v {
	case ViewWeekly:
		return fmt.Sprintf("%s - Weekly View - %s to %s", prefix, Start(v, now).Format(long), now.Format(long))
	case ViewMonthly:
		return fmt.Sprintf("%s - Monthly View - %s", prefix, now.Format("January 2006"))
	default:
		return fmt.Sprintf("%s - Daily View - %s", prefix, now.Format(long))
	}
}

// Spec returns the Initialize arguments for a chart of kind.
func Spec(kind model.SeriesKind, width, height int) (Canvas, []DatasetSpec) {
	if kind == model.KindHousehold {
		return Canvas{Width: width, Height: height, YAxisName: "Household Power Load (kW)"}, []DatasetSpec{
			{Label: primaryLabel(kind), Color: ColorSecondary, Fill: true},
			{Label: "Comparison Household Power Load (kW)", Color: ColorPrimary, Dashed: true},
		}
	}
	return Canvas{Width: width, Height: height, YAxisName: "Grid Power Load (kW)"}, []DatasetSpec{
		{Label: primaryLabel(kind), Color: ColorPrimary, Fill: true},
	}
}

package chart

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"go.uber.org/zap"
)

var (
	ErrNotInitialized = errors.New("chart not initialized")
	ErrUnknownFormat  = errors.New("unknown chart format")
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatPNG, "":
		return FormatPNG, nil
	case FormatSVG:
		return FormatSVG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

var peakBand = drawing.Color{R: 255, G: 99, B: 132, A: 64}

const maxTicks = 10

// Adapter holds one chart instance. Updates before Initialize are dropped with
// a diagnostic so early state changes never fail.
type Adapter struct {
	name   string
	logger *zap.Logger

	mu          sync.RWMutex
	initialized bool
	canvas      Canvas
	specs       []DatasetSpec
	payload     Payload
}

func NewAdapter(name string, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{name: name, logger: logger.With(zap.String("chart", name))}
}

// Initialize creates the chart once; later calls are ignored.
func (a *Adapter) Initialize(canvas Canvas, specs []DatasetSpec) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.initialized {
		a.logger.Debug("chart already initialized")
		return
	}
	a.canvas = canvas
	a.specs = append([]DatasetSpec(nil), specs...)
	a.initialized = true
}

func (a *Adapter) Initialized() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.initialized
}

// Update replaces labels, datasets and peak overlays. Safe to repeat.
func (a *Adapter) Update(p Payload) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		a.logger.Warn("charts not initialized, update dropped")
		return
	}
	a.payload = p
}

func (a *Adapter) Resize(width, height int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.initialized {
		a.logger.Warn("charts not initialized, resize dropped")
		return
	}
	if width > 0 {
		a.canvas.Width = width
	}
	if height > 0 {
		a.canvas.Height = height
	}
}

func (a *Adapter) Canvas() Canvas {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.canvas
}

// Render draws the current payload.
func (a *Adapter) Render(w io.Writer, format Format) error {
	a.mu.RLock()
	if !a.initialized {
		a.mu.RUnlock()
		return ErrNotInitialized
	}
	graph := a.buildLocked()
	a.mu.RUnlock()

	var provider chart.RendererProvider
	switch format {
	case FormatPNG:
		provider = chart.PNG
	case FormatSVG:
		provider = chart.SVG
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("failed to render %s chart: %w", a.name, err)
	}
	return nil
}

func (a *Adapter) buildLocked() chart.Chart {
	p := a.payload
	n := len(p.Labels)
	for _, ds := range p.Datasets {
		if len(ds.Data) > n {
			n = len(ds.Data)
		}
	}

	yMax := 0.0
	for _, ds := range p.Datasets {
		for _, v := range ds.Data {
			yMax = math.Max(yMax, v)
		}
	}
	if yMax <= 0 {
		yMax = 1
	} else {
		yMax *= 1.1
	}

	// go-chart needs at least two x values for a non-zero range.
	xMax := float64(n - 1)
	if xMax < 1 {
		xMax = 1
	}

	graph := chart.Chart{
		Title:  p.Title,
		Width:  a.canvas.Width,
		Height: a.canvas.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Ticks: labelTicks(p.Labels),
			Range: &chart.ContinuousRange{Min: 0, Max: xMax},
		},
		YAxis: chart.YAxis{
			Name:  a.canvas.YAxisName,
			Range: &chart.ContinuousRange{Min: 0, Max: yMax},
			GridMajorStyle: chart.Style{
				StrokeColor: drawing.Color{R: 200, G: 200, B: 200, A: 255},
				StrokeWidth: 1,
			},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f kW", f)
				}
				return ""
			},
		},
	}

	for i, r := range p.PeakRegions {
		name := ""
		if i == 0 {
			name = "Peak"
		}
		start, end := float64(r.Start), float64(r.End)
		if end == start {
			start -= 0.5
			end += 0.5
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name: name,
			Style: chart.Style{
				StrokeColor: peakBand,
				StrokeWidth: 0,
				FillColor:   peakBand,
			},
			XValues: []float64{start, end},
			YValues: []float64{yMax, yMax},
		})
	}

	drawn := 0
	for i, ds := range p.Datasets {
		if len(ds.Data) == 0 {
			continue
		}
		graph.Series = append(graph.Series, a.series(i, ds))
		drawn++
	}
	if drawn == 0 {
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Style:   chart.Style{StrokeColor: drawing.ColorTransparent},
			XValues: []float64{0, 1},
			YValues: []float64{0, 0},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func (a *Adapter) series(i int, ds Dataset) chart.Series {
	spec := DatasetSpec{Label: ds.Label, Color: ds.BorderColor, Dashed: ds.Dashed}
	if i < len(a.specs) {
		spec = a.specs[i]
		if ds.Label != "" {
			spec.Label = ds.Label
		}
		if ds.BorderColor != "" {
			spec.Color = ds.BorderColor
		}
		spec.Dashed = spec.Dashed || ds.Dashed
	}
	line := color(spec.Color, ColorPrimary)

	xs := make([]float64, len(ds.Data))
	for j := range xs {
		xs[j] = float64(j)
	}
	ys := ds.Data
	if len(ys) == 1 {
		xs = []float64{0, 1}
		ys = []float64{ys[0], ys[0]}
	}

	style := chart.Style{
		StrokeColor: line,
		StrokeWidth: 2,
		DotColor:    line,
		DotWidth:    RadiusPoint,
	}
	if spec.Fill {
		style.FillColor = line.WithAlpha(51)
	}
	if spec.Dashed {
		style.StrokeDashArray = []float64{5, 5}
	}
	if len(ds.PointColors) > 0 {
		colors := ds.PointColors
		style.DotColorProvider = func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
			if index < len(colors) {
				return color(colors[index], spec.Color)
			}
			return line
		}
	}
	if len(ds.PointRadii) > 0 {
		radii := ds.PointRadii
		style.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
			if index < len(radii) {
				return radii[index]
			}
			return RadiusPoint
		}
	}
	return chart.ContinuousSeries{
		Name:    spec.Label,
		Style:   style,
		XValues: xs,
		YValues: ys,
	}
}

// labelTicks thins labels to at most maxTicks evenly spaced ticks.
func labelTicks(labels []string) []chart.Tick {
	if len(labels) < 2 {
		return nil
	}
	step := int(math.Ceil(float64(len(labels)) / maxTicks))
	ticks := make([]chart.Tick, 0, maxTicks+1)
	for i := 0; i < len(labels); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: labels[i]})
	}
	return ticks
}

func color(hex, fallback string) drawing.Color {
	if strings.EqualFold(hex, "red") {
		hex = ColorPeak
	}
	if hex == "" {
		hex = fallback
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

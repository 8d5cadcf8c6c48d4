package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prefix = "traffic_light_"

// Metrics bundles dashboard metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	ClockTicks     prometheus.Counter
	SimulatedTime  prometheus.Gauge
	Speed          prometheus.Gauge
	Playing        prometheus.Gauge
	WindowPoints   *prometheus.GaugeVec
	DataLoads      *prometheus.CounterVec
	ChartRenders   *prometheus.CounterVec
	RenderLatency  *prometheus.HistogramVec
	StreamClients  *prometheus.GaugeVec
	Notifications  *prometheus.CounterVec
	ExportsTotal   *prometheus.CounterVec
	RequestLatency *prometheus.HistogramVec
}

// New constructs metrics on a private registry, so several instances can live in
// one process (tests, the CLI).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ClockTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: prefix + "clock_ticks_total",
			Help: "Total simulation clock ticks applied",
		}),
		SimulatedTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "simulated_time_seconds",
			Help: "Current simulated time as unix seconds",
		}),
		Speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "clock_speed",
			Help: "Current simulation speed multiplier",
		}),
		Playing: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: prefix + "clock_playing",
			Help: "1 when the simulation clock is playing",
		}),
		WindowPoints: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "window_points",
			Help: "Entries in the trailing window by series",
		}, []string{"series"}),
		DataLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "data_loads_total",
			Help: "Dataset load attempts by series and result",
		}, []string{"series", "result"}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "chart_renders_total",
			Help: "Chart renders by format and result",
		}, []string{"format", "result"}),
		RenderLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "chart_render_latency_seconds",
			Help:    "Chart render latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
		StreamClients: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: prefix + "stream_clients",
			Help: "Connected push clients by transport",
		}, []string{"transport"}),
		Notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "notifications_total",
			Help: "Notifications raised by level",
		}, []string{"level"}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "exports_total",
			Help: "Window exports by format and result",
		}, []string{"format", "result"}),
		RequestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    prefix + "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	m.registry.MustRegister(
		m.ClockTicks,
		m.SimulatedTime,
		m.Speed,
		m.Playing,
		m.WindowPoints,
		m.DataLoads,
		m.ChartRenders,
		m.RenderLatency,
		m.StreamClients,
		m.Notifications,
		m.ExportsTotal,
		m.RequestLatency,
	)
	return m
}

// Handler exposes the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveTick() {
	if m == nil {
		return
	}
	m.ClockTicks.Inc()
}

// ObserveState records the clock state after any change.
func (m *Metrics) ObserveState(currentMs int64, speed float64, playing bool, gridPoints, householdPoints int) {
	if m == nil {
		return
	}
	m.SimulatedTime.Set(float64(currentMs) / 1000)
	m.Speed.Set(speed)
	if playing {
		m.Playing.Set(1)
	} else {
		m.Playing.Set(0)
	}
	m.WindowPoints.WithLabelValues("grid").Set(float64(gridPoints))
	m.WindowPoints.WithLabelValues("household").Set(float64(householdPoints))
}

func (m *Metrics) ObserveDataLoad(series string, err error) {
	if m == nil {
		return
	}
	m.DataLoads.WithLabelValues(series, result(err)).Inc()
}

func (m *Metrics) ObserveRender(format string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.ChartRenders.WithLabelValues(format, result(err)).Inc()
	m.RenderLatency.WithLabelValues(format).Observe(time.Since(started).Seconds())
}

func (m *Metrics) StreamClientDelta(transport string, delta float64) {
	if m == nil {
		return
	}
	m.StreamClients.WithLabelValues(transport).Add(delta)
}

func (m *Metrics) ObserveNotification(level string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(level).Inc()
}

func (m *Metrics) ObserveExport(format string, err error) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(format, result(err)).Inc()
}

func (m *Metrics) ObserveRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestLatency.WithLabelValues(method, route, status).Observe(d.Seconds())
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

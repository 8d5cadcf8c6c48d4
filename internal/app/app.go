// Package app assembles the dashboard backend from a Config: data loading, the
// simulation store and clock, charts, widgets and the push stream.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"energy-traffic-light/internal/chart"
	"energy-traffic-light/internal/config"
	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/logging"
	"energy-traffic-light/internal/metrics"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/pricing"
	"energy-traffic-light/internal/replay"
	"energy-traffic-light/internal/simulation"
	"energy-traffic-light/internal/stream"
	"energy-traffic-light/internal/widgets"
)

type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *metrics.Metrics

	Source data.Source
	Loader *data.Loader
	Store  *simulation.Store
	Clock  *simulation.Clock
	Pricer pricing.Pricer

	Charts *chart.Service
	Cache  *chart.RenderCache
	Board  *widgets.Board
	Replay *replay.Engine

	Broker *stream.Broker
	Hub    *stream.Hub

	mu      sync.Mutex
	cancels []func()
}

// NewSource picks the data source named by cfg.
func NewSource(cfg *config.Config, logger *zap.Logger) data.Source {
	if cfg.Data.Source == config.SourceHTTP {
		return data.NewHTTPSource(cfg.Data.BaseURL, cfg.Data.Timeout, logging.Component(logger, "data"))
	}
	return data.NewFileSource(cfg.Data.Dir)
}

// New wires every component but starts nothing. Pass a nil src to use the
// configured source.
func New(cfg *config.Config, src data.Source, logger *zap.Logger, m *metrics.Metrics) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pricer, err := cfg.Pricer()
	if err != nil {
		return nil, fmt.Errorf("tariff: %w", err)
	}
	if src == nil {
		src = NewSource(cfg, logger)
	}

	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Source:  src,
		Loader:  data.NewLoader(src, logging.Component(logger, "loader"), m),
		Store:   simulation.NewStore(cfg.Simulation.Window),
		Pricer:  pricer,
		Replay:  replay.New(pricer),
		Broker:  stream.NewBroker(m),
	}
	a.Clock = simulation.NewClock(a.Store, simulation.ClockOptions{
		Speed:        cfg.Simulation.Speed,
		MinSpeed:     cfg.Simulation.MinSpeed,
		MaxSpeed:     cfg.Simulation.MaxSpeed,
		TickInterval: cfg.Simulation.TickInterval,
	}, logging.Component(logger, "clock"), m)

	a.Cache = chart.NewRenderCache(cfg.Charts.CacheTTL)
	a.Charts = chart.NewService(a.Store, chart.NewBuilder(cfg.Charts.Views), a.Cache,
		cfg.Charts.Width, cfg.Charts.Height, logging.Component(logger, "charts"), m)

	var wsrc widgets.Source
	if cfg.Widgets.Source == config.WidgetSourceMock {
		wsrc = widgets.NewMockSource(cfg.Widgets.Seed)
	} else {
		wsrc = widgets.NewSimulationSource(a.Store, pricer)
	}
	wlog := logging.Component(logger, "widgets")
	center := widgets.NewCenter(cfg.Widgets.NotificationTTL, wlog, m)
	a.Board = widgets.NewBoard(wsrc, pricer, widgets.BoardOptions{
		PollInterval:    cfg.Widgets.PollInterval,
		NotifyInterval:  cfg.Widgets.NotifyInterval,
		NotificationTTL: cfg.Widgets.NotificationTTL,
	}, center, wlog)
	a.Board.GridSeries = func() []model.PowerLoadEntry { return a.Store.Dataset().Grid }

	a.Hub = stream.NewHub(a.Broker, a.Clock, cfg.Server.AllowedOrigins, logging.Component(logger, "stream"))
	return a, nil
}

// Load fetches both series and initialises the store at the configured start.
func (a *App) Load(ctx context.Context) (data.Dataset, error) {
	ds := a.Loader.Load(ctx)
	fallback, err := a.Config.StartTime()
	if err != nil {
		return ds, err
	}
	start := simulation.StartInstant(ds, a.Config.Simulation.StartMode == config.StartModeOverlap, fallback)
	a.Clock.Reset(ds, start)
	a.Cache.Clear()
	a.Logger.Info("data loaded",
		zap.Int("grid_points", len(ds.Grid)),
		zap.Int("household_points", len(ds.Household)),
		zap.Int64("overlap_cutoff", ds.OverlapCutoff),
		zap.Time("start", model.MillisToTime(start)),
	)
	return ds, nil
}

// Start loads data, mounts the charts, subscribes them and the stream to the
// store, and runs the background loops until ctx is done.
func (a *App) Start(ctx context.Context) error {
	if _, err := a.Load(ctx); err != nil {
		return err
	}
	a.Charts.Initialize()

	a.mu.Lock()
	a.cancels = append(a.cancels,
		a.Store.Subscribe(a.Charts.OnSnapshot),
		stream.Feed(a.Store, a.Clock, a.Broker, logging.Component(a.Logger, "stream")),
	)
	a.mu.Unlock()

	a.Clock.Start(ctx)
	if a.Config.Simulation.AutoPlay {
		a.Clock.Play()
	}
	go a.Board.Run(ctx)
	go a.Cache.Run(ctx, time.Minute)
	return nil
}

// Close stops the clock and drops store subscriptions.
func (a *App) Close() {
	a.Clock.Stop()
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, cancel := range a.cancels {
		cancel()
	}
	a.cancels = nil
}

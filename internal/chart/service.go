package chart

import (
	"bytes"
	"sync"
	"time"

	"energy-traffic-light/internal/config"
	"energy-traffic-light/internal/metrics"
	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/simulation"

	"go.uber.org/zap"
)

// Service keeps one live chart per series in step with the simulation store and
// renders arbitrary views on demand.
type Service struct {
	store   *simulation.Store
	builder *Builder
	cache   *RenderCache
	metrics *metrics.Metrics
	logger  *zap.Logger

	width, height int
	live          map[model.SeriesKind]*Adapter

	// liveVersion is the store version each live chart last drew.
	mu          sync.Mutex
	liveVersion map[model.SeriesKind]uint64
}

func NewService(store *simulation.Store, builder *Builder, cache *RenderCache, width, height int, logger *zap.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:   store,
		builder: builder,
		cache:   cache,
		metrics: m,
		logger:  logger,
		width:   width,
		height:  height,
		live:    map[model.SeriesKind]*Adapter{},

		liveVersion: map[model.SeriesKind]uint64{},
	}
	for _, kind := range model.Kinds {
		s.live[kind] = NewAdapter(string(kind), logger)
	}
	return s
}

// Initialize mounts the live charts and draws the current state.
func (s *Service) Initialize() {
	for _, kind := range model.Kinds {
		canvas, specs := Spec(kind, s.width, s.height)
		s.live[kind].Initialize(canvas, specs)
	}
	s.OnSnapshot(s.store.Snapshot())
}

// OnSnapshot redraws the live daily charts; subscribe it to the store.
func (s *Service) OnSnapshot(snap simulation.Snapshot) {
	src := s.sources(snap)
	for _, kind := range model.Kinds {
		p, err := s.builder.Build(src, Request{Kind: kind, View: ViewDaily})
		if err != nil {
			s.logger.Error("build live chart", zap.String("series", string(kind)), zap.Error(err))
			continue
		}
		s.mu.Lock()
		s.live[kind].Update(p)
		s.liveVersion[kind] = snap.Version
		s.mu.Unlock()
	}
}

// Resize applies a new viewport size to the live charts. Non-positive sides
// keep their current value.
func (s *Service) Resize(width, height int) error {
	for _, kind := range model.Kinds {
		if !s.live[kind].Initialized() {
			return ErrNotInitialized
		}
	}
	for _, kind := range model.Kinds {
		s.live[kind].Resize(width, height)
	}
	s.cache.Clear()
	s.logger.Info("charts resized", zap.Int("width", width), zap.Int("height", height))
	return nil
}

// Size returns the live chart canvas size.
func (s *Service) Size() (width, height int) {
	c := s.live[model.KindGrid].Canvas()
	return c.Width, c.Height
}

func (s *Service) Live(kind model.SeriesKind) *Adapter {
	return s.live[kind]
}

// Payload builds the chart data for req at the current simulated instant.
func (s *Service) Payload(req Request) (Payload, error) {
	return s.builder.Build(s.sources(s.store.Snapshot()), req)
}

// Render draws req as an image. width/height <= 0 use the live chart size.
func (s *Service) Render(req Request, width, height int, format Format) ([]byte, error) {
	live := s.live[req.Kind]
	if live == nil || !live.Initialized() {
		return nil, ErrNotInitialized
	}
	canvas := live.Canvas()
	if width <= 0 {
		width = canvas.Width
	}
	if height <= 0 {
		height = canvas.Height
	}

	snap := s.store.Snapshot()
	key := CacheKey(req, snap.CurrentTime, snap.Version, width, height, format)
	if body, ok := s.cache.Get(key); ok {
		return body, nil
	}

	started := time.Now()
	body, err := s.render(snap, req, width, height, format)
	s.metrics.ObserveRender(string(format), started, err)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, body)
	return body, nil
}

// isLive reports whether req asks for exactly what the live charts show.
func isLive(req Request) bool {
	return (req.View == "" || req.View == ViewDaily) &&
		(req.Comparison == "" || req.Comparison == ComparisonNone) &&
		req.Override == (config.ViewConfig{})
}

// renderLive draws the live chart when it is current for snap at this size.
func (s *Service) renderLive(snap simulation.Snapshot, req Request, width, height int, format Format) ([]byte, bool, error) {
	live := s.live[req.Kind]
	canvas := live.Canvas()
	if !isLive(req) || canvas.Width != width || canvas.Height != height {
		return nil, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveVersion[req.Kind] != snap.Version {
		return nil, false, nil
	}

	var buf bytes.Buffer
	if err := live.Render(&buf, format); err != nil {
		return nil, true, err
	}
	return buf.Bytes(), true, nil
}

func (s *Service) render(snap simulation.Snapshot, req Request, width, height int, format Format) ([]byte, error) {
	if body, ok, err := s.renderLive(snap, req, width, height, format); ok {
		return body, err
	}

	p, err := s.builder.Build(s.sources(snap), req)
	if err != nil {
		return nil, err
	}
	canvas, specs := Spec(req.Kind, width, height)
	a := NewAdapter(string(req.Kind), s.logger)
	a.Initialize(canvas, specs)
	a.Update(p)

	var buf bytes.Buffer
	if err := a.Render(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Service) sources(snap simulation.Snapshot) Sources {
	ds := s.store.Dataset()
	return Sources{
		Now:             snap.Time(),
		FullGrid:        ds.Grid,
		FullHousehold:   ds.Household,
		WindowGrid:      snap.WindowGrid,
		WindowHousehold: snap.WindowHousehold,
	}
}

package widgets

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"energy-traffic-light/internal/metrics"
)

type Level string

const (
	LevelWarning Level = "warning"
	LevelAlert   Level = "alert"
)

const (
	alertThreshold   = 80.0
	warningThreshold = 60.0

	MsgHighLoad       = "High grid load! Please reduce energy consumption."
	MsgIncreasingLoad = "Grid load is increasing. Consider reducing energy usage."
)

type Notification struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	LoadPct   float64   `json:"load_pct"`
	CreatedAt time.Time `json:"created_at"`
}

// Center holds active notifications. Each one expires after the TTL unless
// dismissed first.
type Center struct {
	mu      sync.Mutex
	ttl     time.Duration
	active  map[string]Notification
	timers  map[string]*time.Timer
	logger  *zap.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewCenter(ttl time.Duration, logger *zap.Logger, m *metrics.Metrics) *Center {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Center{
		ttl:     ttl,
		active:  make(map[string]Notification),
		timers:  make(map[string]*time.Timer),
		logger:  logger,
		metrics: m,
		now:     time.Now,
	}
}

// Check raises a notification when the source's grid load crosses a
// threshold. It returns the new notification, or false when load is normal.
func (c *Center) Check(src Source) (Notification, bool) {
	load := src.GridLoad()
	var n Notification
	switch {
	case load > alertThreshold:
		n = Notification{Level: LevelAlert, Message: MsgHighLoad}
	case load > warningThreshold:
		n = Notification{Level: LevelWarning, Message: MsgIncreasingLoad}
	default:
		return Notification{}, false
	}
	n.ID = uuid.NewString()
	n.LoadPct = load
	n.CreatedAt = c.now()
	c.add(n)
	return n, true
}

func (c *Center) add(n Notification) {
	c.mu.Lock()
	c.active[n.ID] = n
	if c.ttl > 0 {
		id := n.ID
		c.timers[id] = time.AfterFunc(c.ttl, func() { c.expire(id) })
	}
	c.mu.Unlock()

	c.metrics.ObserveNotification(string(n.Level))
	c.logger.Debug("notification raised",
		zap.String("id", n.ID),
		zap.String("level", string(n.Level)),
		zap.Float64("load_pct", n.LoadPct),
	)
}

func (c *Center) expire(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, id)
	delete(c.timers, id)
}

// Dismiss removes a notification before it expires. Unknown ids return false.
func (c *Center) Dismiss(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.active[id]; !ok {
		return false
	}
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	delete(c.active, id)
	return true
}

// List returns active notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	out := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, n)
	}
	c.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Close stops pending expiry timers.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
}

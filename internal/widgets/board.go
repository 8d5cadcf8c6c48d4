package widgets

import (
	"context"
	"time"

	"go.uber.org/zap"

	"energy-traffic-light/internal/model"
	"energy-traffic-light/internal/pricing"
)

// Board owns the stateful widgets and refreshes them on their intervals.
type Board struct {
	Source        Source
	Pricer        pricing.Pricer
	Gamification  *Gamification
	Notifications *Center

	PollInterval   time.Duration
	NotifyInterval time.Duration

	// GridSeries, when set, feeds the quiet-hours ranking in Insights.
	GridSeries func() []model.PowerLoadEntry

	logger *zap.Logger
}

type BoardOptions struct {
	PollInterval    time.Duration
	NotifyInterval  time.Duration
	NotificationTTL time.Duration
}

func NewBoard(src Source, pricer pricing.Pricer, opts BoardOptions, n *Center, logger *zap.Logger) *Board {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pricer == nil {
		pricer = &pricing.LoadTiered{Low: pricing.DefaultLowPrice, Medium: pricing.DefaultMediumPrice, High: pricing.DefaultHighPrice}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Second
	}
	if opts.NotifyInterval <= 0 {
		opts.NotifyInterval = 10 * time.Second
	}
	if n == nil {
		n = NewCenter(opts.NotificationTTL, logger, nil)
	}
	return &Board{
		Source:         src,
		Pricer:         pricer,
		Gamification:   &Gamification{},
		Notifications:  n,
		PollInterval:   opts.PollInterval,
		NotifyInterval: opts.NotifyInterval,
		logger:         logger,
	}
}

// Summary is every widget in one payload.
type Summary struct {
	Source        string            `json:"source"`
	Clock         ClockFace         `json:"clock"`
	TrafficLight  TrafficLight      `json:"traffic_light"`
	Bill          Bill              `json:"bill"`
	Gamification  GamificationState `json:"gamification"`
	Insights      Insights          `json:"insights"`
	Carbon        Carbon            `json:"carbon"`
	Notifications []Notification    `json:"notifications"`
}

func (b *Board) Summary() Summary {
	bill := EstimateBill(b.Source)
	return Summary{
		Source:        b.Source.Name(),
		Clock:         FormatClock(b.Source.Now()),
		TrafficLight:  ReadTrafficLight(b.Source),
		Bill:          bill,
		Gamification:  b.Gamification.State(),
		Insights:      b.Insights(),
		Carbon:        Footprint(bill.UsageKWh),
		Notifications: b.Notifications.List(),
	}
}

func (b *Board) Insights() Insights {
	in := ReadInsights(b.Source, b.Pricer)
	if b.GridSeries != nil {
		in.QuietHours = QuietHours(b.GridSeries(), quietHourCount)
	}
	return in
}

// Run polls gamification and checks notifications until ctx is done.
func (b *Board) Run(ctx context.Context) {
	poll := time.NewTicker(b.PollInterval)
	notify := time.NewTicker(b.NotifyInterval)
	defer poll.Stop()
	defer notify.Stop()

	b.logger.Info("widget board started",
		zap.String("source", b.Source.Name()),
		zap.Duration("poll", b.PollInterval),
		zap.Duration("notify", b.NotifyInterval),
	)
	for {
		select {
		case <-ctx.Done():
			b.Notifications.Close()
			return
		case <-poll.C:
			b.Gamification.Poll(b.Source)
		case <-notify.C:
			b.Notifications.Check(b.Source)
		}
	}
}

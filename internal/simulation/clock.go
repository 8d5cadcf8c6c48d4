package simulation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"energy-traffic-light/internal/data"
	"energy-traffic-light/internal/metrics"
	"energy-traffic-light/internal/model"

	"go.uber.org/zap"
)

var (
	ErrInvalidSpeed = errors.New("invalid speed")
	ErrInvalidTime  = errors.New("invalid time")
)

// MsgInvalidTime is shown when a jump target cannot be parsed.
const MsgInvalidTime = "Invalid date. The simulation time was not changed."

// ClockOptions configures a Clock. Zero values take the defaults
// (speed 1, range [0.1, 24], 1s tick).
type ClockOptions struct {
	Speed        float64
	MinSpeed     float64
	MaxSpeed     float64
	TickInterval time.Duration
}

func (o ClockOptions) withDefaults() ClockOptions {
	if o.MinSpeed <= 0 {
		o.MinSpeed = 0.1
	}
	if o.MaxSpeed <= 0 {
		o.MaxSpeed = 24
	}
	if o.Speed == 0 {
		o.Speed = 1
	}
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	return o
}

// ClockState is the play/speed state plus the last user-facing error.
type ClockState struct {
	CurrentTime int64   `json:"current_time"`
	Speed       float64 `json:"speed"`
	Playing     bool    `json:"playing"`
	Error       string  `json:"error,omitempty"`
}

// Clock drives a Store's simulated time.
//
// Each tick advances time by speed × tick interval (speed × 1000 ms with the
// default 1s tick). Every speed or play-state change cancels the running tick
// loop and starts a fresh one, so two loops never tick concurrently.
//
// Store listeners run while the clock holds its lock and must not call back
// into the Clock.
type Clock struct {
	store   *Store
	opts    ClockOptions
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu       sync.Mutex
	speed    float64
	playing  bool
	lastErr  string
	lifeCtx  context.Context
	stopLoop context.CancelFunc

	lmu       sync.Mutex
	listeners []stateSub
	nextID    int
}

type stateSub struct {
	id int
	fn func(ClockState)
}

func NewClock(store *Store, opts ClockOptions, logger *zap.Logger, m *metrics.Metrics) *Clock {
	opts = opts.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Clock{
		store:   store,
		opts:    opts,
		logger:  logger,
		metrics: m,
		speed:   opts.Speed,
	}
}

// Start binds the tick loop to ctx. Until Start is called the clock only moves
// through explicit calls (Tick, JumpToTime, AdvanceTime).
func (c *Clock) Start(ctx context.Context) {
	c.mu.Lock()
	c.lifeCtx = ctx
	c.restartLocked()
	c.mu.Unlock()
}

// Stop halts the tick loop without changing the play state.
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lifeCtx = nil
	if c.stopLoop != nil {
		c.stopLoop()
		c.stopLoop = nil
	}
}

func (c *Clock) State() ClockState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Clock) stateLocked() ClockState {
	return ClockState{
		CurrentTime: c.store.CurrentTime(),
		Speed:       c.speed,
		Playing:     c.playing,
		Error:       c.lastErr,
	}
}

func (c *Clock) SpeedRange() (float64, float64) {
	return c.opts.MinSpeed, c.opts.MaxSpeed
}

// SetSpeed changes the multiplier. Out-of-range values leave speed unchanged,
// set the error message and return ErrInvalidSpeed.
func (c *Clock) SetSpeed(speed float64) error {
	c.mu.Lock()
	if math.IsNaN(speed) || speed < c.opts.MinSpeed || speed > c.opts.MaxSpeed {
		c.lastErr = fmt.Sprintf("Invalid speed. Please use a value between %g and %g.", c.opts.MinSpeed, c.opts.MaxSpeed)
		st := c.stateLocked()
		c.mu.Unlock()
		c.logger.Warn("rejected speed", zap.Float64("speed", speed))
		c.emit(st)
		return fmt.Errorf("%w: %g outside [%g, %g]", ErrInvalidSpeed, speed, c.opts.MinSpeed, c.opts.MaxSpeed)
	}
	c.speed = speed
	c.lastErr = ""
	c.restartLocked()
	st := c.stateLocked()
	c.mu.Unlock()

	c.logger.Info("speed changed", zap.Float64("speed", speed))
	c.emit(st)
	return nil
}

// TogglePlayPause flips the play state and returns the new one.
func (c *Clock) TogglePlayPause() bool {
	c.mu.Lock()
	playing := !c.playing
	c.applyPlayingLocked(playing)
	return playing
}

func (c *Clock) Play()  { c.setPlaying(true) }
func (c *Clock) Pause() { c.setPlaying(false) }

func (c *Clock) setPlaying(playing bool) {
	c.mu.Lock()
	if c.playing == playing {
		c.mu.Unlock()
		return
	}
	c.applyPlayingLocked(playing)
}

// applyPlayingLocked sets the play state and releases c.mu before notifying.
func (c *Clock) applyPlayingLocked(playing bool) {
	c.playing = playing
	c.restartLocked()
	st := c.stateLocked()
	c.mu.Unlock()

	c.logger.Info("play state changed", zap.Bool("playing", playing))
	c.emit(st)
}

// Tick advances time by one step when playing and reports whether it did.
func (c *Clock) Tick() bool {
	return c.tick(nil)
}

func (c *Clock) tick(loopCtx context.Context) bool {
	c.mu.Lock()
	// A loop cancelled while waiting for the lock must not apply its tick.
	if loopCtx != nil && loopCtx.Err() != nil {
		c.mu.Unlock()
		return false
	}
	if !c.playing {
		c.mu.Unlock()
		return false
	}
	step := int64(c.speed * float64(c.opts.TickInterval.Milliseconds()))
	c.store.SetCurrentTime(c.store.CurrentTime() + step)
	st := c.stateLocked()
	c.mu.Unlock()

	c.metrics.ObserveTick()
	c.emit(st)
	return true
}

// Reset replaces the dataset and moves time to startMs under the clock lock, so
// a tick racing a reload cannot overwrite the reset. Play state and speed are
// kept.
func (c *Clock) Reset(ds data.Dataset, startMs int64) {
	c.mu.Lock()
	c.lastErr = ""
	c.store.Init(ds, startMs)
	st := c.stateLocked()
	c.mu.Unlock()

	c.logger.Info("reset", zap.Time("to", model.MillisToTime(startMs)))
	c.emit(st)
}

// JumpToTime sets the simulated time directly.
func (c *Clock) JumpToTime(t time.Time) error {
	if !validInstant(t) {
		return c.rejectTime(fmt.Errorf("%w: %s is out of range", ErrInvalidTime, t))
	}
	c.mu.Lock()
	c.lastErr = ""
	c.store.SetCurrentTime(t.UnixMilli())
	st := c.stateLocked()
	c.mu.Unlock()

	c.logger.Info("jumped", zap.Time("to", t))
	c.emit(st)
	return nil
}

// JumpToString parses s with ParseInstant and jumps there.
func (c *Clock) JumpToString(s string) error {
	t, err := ParseInstant(s)
	if err != nil {
		return c.rejectTime(err)
	}
	return c.JumpToTime(t)
}

func (c *Clock) rejectTime(err error) error {
	c.mu.Lock()
	c.lastErr = MsgInvalidTime
	st := c.stateLocked()
	c.mu.Unlock()
	c.logger.Warn("rejected jump", zap.Error(err))
	c.emit(st)
	return err
}

// AdvanceTime moves time by minutes immediately, pausing first if playing so a
// manual step never races the tick loop.
func (c *Clock) AdvanceTime(minutes int) {
	c.mu.Lock()
	if c.playing {
		c.playing = false
		c.restartLocked()
	}
	c.lastErr = ""
	c.store.SetCurrentTime(c.store.CurrentTime() + int64(minutes)*60_000)
	st := c.stateLocked()
	c.mu.Unlock()

	c.logger.Info("advanced", zap.Int("minutes", minutes))
	c.emit(st)
}

// Subscribe registers fn for clock state changes and returns its cancel func.
func (c *Clock) Subscribe(fn func(ClockState)) func() {
	c.lmu.Lock()
	defer c.lmu.Unlock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, stateSub{id: id, fn: fn})
	var once sync.Once
	return func() {
		once.Do(func() {
			c.lmu.Lock()
			defer c.lmu.Unlock()
			for i, l := range c.listeners {
				if l.id == id {
					c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (c *Clock) emit(st ClockState) {
	snap := c.store.Snapshot()
	c.metrics.ObserveState(st.CurrentTime, st.Speed, st.Playing, len(snap.WindowGrid), len(snap.WindowHousehold))

	c.lmu.Lock()
	subs := make([]stateSub, len(c.listeners))
	copy(subs, c.listeners)
	c.lmu.Unlock()
	for _, l := range subs {
		l.fn(st)
	}
}

// restartLocked cancels any running loop and, if playing under a live
// lifecycle, starts a new one. Caller holds c.mu.
func (c *Clock) restartLocked() {
	if c.stopLoop != nil {
		c.stopLoop()
		c.stopLoop = nil
	}
	if !c.playing || c.lifeCtx == nil || c.lifeCtx.Err() != nil {
		return
	}
	ctx, cancel := context.WithCancel(c.lifeCtx)
	c.stopLoop = cancel
	go c.loop(ctx, c.opts.TickInterval)
}

func (c *Clock) loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.tick(ctx)
		}
	}
}

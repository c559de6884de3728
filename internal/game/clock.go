package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
)

var errClockStale = errors.New("turn clock replaced")

// TurnClock is the single turn watchdog of a table. It never calls into the
// engine: expiry and ticks are reported through callbacks that post events
// back to the table's inbox.
type TurnClock struct {
	clock    quartz.Clock
	onExpire func(seat int, token uint64)
	onTick   func(seat int, token uint64, left time.Duration)

	mu       sync.Mutex
	gen      uint64
	timer    *quartz.Timer
	stopTick context.CancelFunc
}

// NewTurnClock creates a stopped clock. onTick may be nil.
func NewTurnClock(clock quartz.Clock, onExpire func(int, uint64), onTick func(int, uint64, time.Duration)) *TurnClock {
	return &TurnClock{clock: clock, onExpire: onExpire, onTick: onTick}
}

// Start cancels any running clock and starts a new one for the seat's turn.
// A zero tick disables countdown ticks.
func (c *TurnClock) Start(seat int, token uint64, timeout, tick time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
	c.gen++
	gen := c.gen
	deadline := c.clock.Now().Add(timeout)

	c.timer = c.clock.AfterFunc(timeout, func() {
		c.mu.Lock()
		if c.gen != gen {
			c.mu.Unlock()
			return
		}
		if c.stopTick != nil {
			c.stopTick()
			c.stopTick = nil
		}
		c.mu.Unlock()
		c.onExpire(seat, token)
	}, "turn", "timeout")

	if tick <= 0 || c.onTick == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.stopTick = cancel
	c.clock.TickerFunc(ctx, tick, func() error {
		if !c.current(gen) {
			return errClockStale
		}
		if left := deadline.Sub(c.clock.Now()); left > 0 {
			c.onTick(seat, token, left)
		}
		return nil
	}, "turn", "tick")
}

// Cancel stops the running clock. Callbacks already in flight are dropped.
func (c *TurnClock) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
	c.gen++
}

func (c *TurnClock) stopLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.stopTick != nil {
		c.stopTick()
		c.stopTick = nil
	}
}

func (c *TurnClock) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen == gen
}

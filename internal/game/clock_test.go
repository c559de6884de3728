package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
)

type clockEvents struct {
	mu      sync.Mutex
	expired []int
	tokens  []uint64
	ticks   []time.Duration
}

func (e *clockEvents) expire(seat int, token uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.expired = append(e.expired, seat)
	e.tokens = append(e.tokens, token)
}

func (e *clockEvents) tick(_ int, _ uint64, left time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ticks = append(e.ticks, left)
}

func (e *clockEvents) snapshot() ([]int, []uint64, []time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.expired...), append([]uint64(nil), e.tokens...), append([]time.Duration(nil), e.ticks...)
}

func TestTurnClockTicksThenExpiresOnce(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	mClock := quartz.NewMock(t)
	var events clockEvents
	c := NewTurnClock(mClock, events.expire, events.tick)

	c.Start(3, 7, 5*time.Second, time.Second)
	for range 5 {
		mClock.Advance(time.Second).MustWait(ctx)
	}

	expired, tokens, ticks := events.snapshot()
	assert.Equal(t, []int{3}, expired)
	assert.Equal(t, []uint64{7}, tokens)
	assert.Equal(t, []time.Duration{4 * time.Second, 3 * time.Second, 2 * time.Second, time.Second}, ticks)
}

func TestTurnClockStartReplacesRunningClock(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	mClock := quartz.NewMock(t)
	var events clockEvents
	c := NewTurnClock(mClock, events.expire, nil)

	c.Start(1, 1, 5*time.Second, time.Second)
	mClock.Advance(2 * time.Second).MustWait(ctx)
	c.Start(2, 2, 5*time.Second, time.Second)

	mClock.Advance(3 * time.Second).MustWait(ctx)
	expired, _, _ := events.snapshot()
	assert.Empty(t, expired, "the first turn's timer was stopped")

	mClock.Advance(2 * time.Second).MustWait(ctx)
	expired, tokens, ticks := events.snapshot()
	assert.Equal(t, []int{2}, expired)
	assert.Equal(t, []uint64{2}, tokens)
	assert.Empty(t, ticks, "no tick callback configured")
}

func TestTurnClockCancel(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()

	mClock := quartz.NewMock(t)
	var events clockEvents
	c := NewTurnClock(mClock, events.expire, events.tick)

	c.Start(0, 1, 3*time.Second, 0)
	mClock.Advance(time.Second).MustWait(ctx)
	c.Cancel()
	mClock.Advance(5 * time.Second).MustWait(ctx)

	expired, _, ticks := events.snapshot()
	assert.Empty(t, expired)
	assert.Empty(t, ticks, "a zero tick disables ticks")

	// Cancelling a stopped clock is harmless.
	c.Cancel()
}

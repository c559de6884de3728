package server

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertables/internal/game"
)

type countingRecorder struct {
	n   int
	err error
}

func (c *countingRecorder) RecordHand(game.HandRecord) error {
	c.n++
	return c.err
}

func sampleRecord() game.HandRecord {
	return game.HandRecord{
		TableID:    "t1",
		HandNumber: 12,
		BigBlind:   10,
		Seats: []game.RecordedSeat{
			{ID: 0, Name: "alice", StartingStack: 1000, FinishingStack: 1150},
			{ID: 1, Name: "bob", StartingStack: 1000, FinishingStack: 850},
		},
		Payouts: []game.Payout{{Seat: 0, Amount: 300, Hand: "Two Pair"}},
	}
}

func TestNewRecorders(t *testing.T) {
	t.Parallel()

	a := &countingRecorder{}
	assert.Same(t, a, NewRecorders(nil, a), "a single recorder is returned as is")

	b := &countingRecorder{err: errors.New("disk full")}
	c := &countingRecorder{}
	rec := NewRecorders(a, b, nil, c)
	err := rec.RecordHand(sampleRecord())
	require.EqualError(t, err, "disk full")
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
	assert.Equal(t, 1, c.n, "recorders after a failing one still run")
}

func TestListMonitor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	m := NewListMonitor(&buf)
	require.NoError(t, m.RecordHand(sampleRecord()))

	line := buf.String()
	assert.Contains(t, line, "t1")
	assert.Contains(t, line, "#12")
	assert.Contains(t, line, "alice")
	assert.NotContains(t, line, "bob")
	assert.Contains(t, line, "+15.0 bb")
	assert.Contains(t, line, "Two Pair")
}

func TestLogMonitor(t *testing.T) {
	t.Parallel()

	m := NewLogMonitor(quietLogger())
	assert.NoError(t, m.RecordHand(sampleRecord()))
}

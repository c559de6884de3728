package game

import (
	"context"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/poker"
)

// Evaluator ranks a hand of hole cards plus the board. *evaluator.Table
// implements it.
type Evaluator interface {
	Evaluate(cards []poker.Card) (evaluator.Evaluation, error)
}

// BotDecisionProvider picks an action for a bot seat. The engine clamps the
// decision like any human action; a provider error folds the seat.
type BotDecisionProvider interface {
	Decide(ctx context.Context, view SeatView) (Decision, error)
}

// BotDecisionFunc adapts a function to BotDecisionProvider.
type BotDecisionFunc func(ctx context.Context, view SeatView) (Decision, error)

func (f BotDecisionFunc) Decide(ctx context.Context, view SeatView) (Decision, error) {
	return f(ctx, view)
}

// Broadcaster receives every distinct snapshot of a table. Implementations
// must not block.
type Broadcaster interface {
	Broadcast(tableID string, snap Snapshot)
}

// Recorder stores finished hands.
type Recorder interface {
	RecordHand(rec HandRecord) error
}

// PlayerActionSource accepts actions from authenticated seats. *Table
// implements it.
type PlayerActionSource interface {
	Submit(ctx context.Context, a Action) error
}

// Broadcasters fans a snapshot out to several broadcasters.
type Broadcasters []Broadcaster

func (bs Broadcasters) Broadcast(tableID string, snap Snapshot) {
	for _, b := range bs {
		b.Broadcast(tableID, snap)
	}
}

type nopBroadcaster struct{}

func (nopBroadcaster) Broadcast(string, Snapshot) {}

package bot

import (
	"context"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/game"
)

// ManiacBot raises or shoves very frequently, calls sometimes and rarely
// folds.
type ManiacBot struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *log.Logger
}

// NewManiacBot creates a new ManiacBot instance
func NewManiacBot(rng *rand.Rand, logger *log.Logger) *ManiacBot {
	return &ManiacBot{rng: rng, logger: logger}
}

func (m *ManiacBot) Decide(_ context.Context, v game.SeatView) (game.Decision, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	shortStack := v.Stack <= 20*v.BigBlind
	if v.ToCall == 0 {
		// We can check - but maniacs prefer to bet
		if v.CanRaise() && m.rng.Float64() < 0.85 {
			if shortStack || m.rng.Float64() < 0.3 {
				return game.Decision{Kind: game.Raise, Amount: v.Stack, Reason: "maniac shove"}, nil
			}
			return game.Decision{Kind: game.Raise, Amount: raiseSize(v, 0.75), Reason: "maniac big raise"}, nil
		}
		return game.Decision{Kind: game.CheckOrCall, Reason: "maniac checking"}, nil
	}

	// Facing a bet
	r := m.rng.Float64()
	switch {
	case r < 0.4 && v.CanRaise():
		return game.Decision{Kind: game.Raise, Amount: v.Stack, Reason: "maniac shove over bet"}, nil
	case r < 0.8:
		return game.Decision{Kind: game.CheckOrCall, Reason: "maniac call"}, nil
	}
	m.logger.Debug("Maniac folding", "seat", v.Seat, "to_call", v.ToCall)
	return game.Decision{Kind: game.Fold, Reason: "maniac fold"}, nil
}

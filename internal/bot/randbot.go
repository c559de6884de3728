package bot

import (
	"context"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/game"
)

// RandBot picks uniformly among the options it was granted.
type RandBot struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *log.Logger
}

// NewRandBot creates a new RandBot instance
func NewRandBot(rng *rand.Rand, logger *log.Logger) *RandBot {
	return &RandBot{rng: rng, logger: logger}
}

func (r *RandBot) Decide(_ context.Context, v game.SeatView) (game.Decision, error) {
	if len(v.Available) == 0 {
		return game.Decision{Kind: game.Fold, Reason: "rand-bot no valid actions"}, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	option := v.Available[r.rng.IntN(len(v.Available))]
	switch option {
	case game.OptionFold:
		return game.Decision{Kind: game.Fold, Reason: "rand-bot random fold"}, nil
	case game.OptionCheck, game.OptionCall, game.OptionBlind:
		return game.Decision{Kind: game.CheckOrCall, Reason: "rand-bot random " + option}, nil
	case game.OptionRaise:
		// For raises, pick a random amount between one big blind and the stack
		amount := v.BigBlind
		if extra := v.Stack - v.ToCall - v.BigBlind; extra > 0 {
			amount += r.rng.IntN(extra + 1)
		}
		return game.Decision{Kind: game.Raise, Amount: amount, Reason: "rand-bot random raise"}, nil
	}
	return game.Decision{Kind: game.Special, Reason: "rand-bot random " + option}, nil
}

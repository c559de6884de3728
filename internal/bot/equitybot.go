package bot

import (
	"context"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/poker"
)

// DefaultEquitySamples is the Monte Carlo sample count per decision.
const DefaultEquitySamples = 600

// EquityBot estimates its share of the pot against random hands and plays
// by comparing it with the price of continuing.
type EquityBot struct {
	eval    *evaluator.Table
	samples int
	mu      sync.Mutex
	rng     *rand.Rand
	logger  *log.Logger
}

// NewEquityBot creates a new EquityBot instance
func NewEquityBot(eval *evaluator.Table, rng *rand.Rand, logger *log.Logger) *EquityBot {
	return &EquityBot{eval: eval, samples: DefaultEquitySamples, rng: rng, logger: logger}
}

func (b *EquityBot) Decide(ctx context.Context, v game.SeatView) (game.Decision, error) {
	tc := &ThinkingContext{}
	opponents := max(v.Opponents, 1)

	b.mu.Lock()
	equity, err := b.eval.EstimateEquity(ctx, evaluator.EquityRequest{
		Hole:      v.HoleCards,
		Board:     v.Community,
		BoardSize: v.BoardSize,
		Opponents: opponents,
		Samples:   b.samples,
	}, b.rng)
	b.mu.Unlock()
	if err != nil {
		return game.Decision{}, fmt.Errorf("equity for %s: %w", poker.FormatCards(v.HoleCards), err)
	}

	fair := 1 / float64(opponents+1)
	strength := equityToHandStrength(equity, fair)
	tc.AddThought("Equity %.1f%% against %d opponents (fair share %.1f%%)", equity*100, opponents, fair*100)
	tc.AddThought("Hand strength: %s", strength)

	var d game.Decision
	required := 0.0
	if v.ToCall > 0 {
		required = float64(v.ToCall) / float64(v.Pot+v.ToCall)
		tc.AddThought("Need %.1f%% to call %d", required*100, v.ToCall)
	}
	switch {
	case strength >= VeryStrong && v.CanSpecial():
		tc.AddThought("Far ahead, forcing the showdown")
		d = tc.decide(game.Special, 0)
	case strength >= Strong && v.CanRaise():
		tc.AddThought("Ahead of the field, raising for value")
		frac := 0.5
		if strength == VeryStrong {
			frac = 0.8
		}
		d = tc.decide(game.Raise, raiseSize(v, frac))
	case v.ToCall == 0:
		tc.AddThought("Checking to see next card")
		d = tc.decide(game.CheckOrCall, 0)
	case equity >= required:
		tc.AddThought("Price is right, calling")
		d = tc.decide(game.CheckOrCall, 0)
	default:
		d = passive(v, tc)
	}

	b.logger.Debug("Bot decision made",
		"seat", v.Seat,
		"stage", v.Stage,
		"equity", equity,
		"decision", d.Kind,
		"amount", d.Amount)
	return d, nil
}

// equityToHandStrength maps equity relative to an even share of the pot to
// hand strength categories.
func equityToHandStrength(equity, fair float64) HandStrength {
	switch ratio := equity / fair; {
	case ratio >= 1.6:
		return VeryStrong
	case ratio >= 1.25:
		return Strong
	case ratio >= 0.9:
		return Medium
	case ratio >= 0.5:
		return Weak
	default:
		return VeryWeak
	}
}

package bot

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/game"
)

// CallBot checks or calls every street, except that it shoves a short stack
// into an unraised pot.
type CallBot struct {
	logger *log.Logger
}

// NewCallBot creates a new CallBot instance
func NewCallBot(logger *log.Logger) *CallBot {
	return &CallBot{logger: logger}
}

func (c *CallBot) Decide(_ context.Context, v game.SeatView) (game.Decision, error) {
	// Stack size consideration
	stackToBB := float64(v.Stack) / float64(max(v.BigBlind, 1))
	if stackToBB < 10 && v.CurrentHighestBet <= v.BigBlind && v.CanRaise() {
		c.logger.Debug("Shoving short stack", "seat", v.Seat, "stack", v.Stack)
		return game.Decision{Kind: game.Raise, Amount: v.Stack, Reason: "shoving with short stack"}, nil
	}
	if v.ToCall == 0 {
		return game.Decision{Kind: game.CheckOrCall, Reason: "call-bot checking"}, nil
	}
	return game.Decision{Kind: game.CheckOrCall, Reason: "call-bot calling"}, nil
}

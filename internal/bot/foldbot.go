package bot

import (
	"context"

	"github.com/lox/pokertables/internal/game"
)

// FoldBot checks when it can and folds otherwise.
type FoldBot struct{}

// NewFoldBot creates a new FoldBot instance
func NewFoldBot() *FoldBot {
	return &FoldBot{}
}

func (FoldBot) Decide(_ context.Context, v game.SeatView) (game.Decision, error) {
	if v.ToCall == 0 {
		return game.Decision{Kind: game.CheckOrCall, Reason: "fold-bot checking"}, nil
	}
	return game.Decision{Kind: game.Fold, Reason: "fold-bot folding"}, nil
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/internal/phh"
	"github.com/lox/pokertables/internal/server"
)

// ReplayCmd plays recorded hands again and checks every seat finishes with
// the recorded stack.
type ReplayCmd struct {
	Files     []string `arg:"" type:"existingfile" help:"PHH hand files"`
	HandRanks string   `help:"Hand rank table path, generated in memory when unset"`

	out io.Writer
}

func (c *ReplayCmd) Run(g *Globals) error {
	logger, err := g.Logger("warn")
	if err != nil {
		return err
	}
	eval, err := loadEvaluator(c.HandRanks, logger)
	if err != nil {
		return err
	}

	monitor := server.NewListMonitor(output(c.out))
	ctx := context.Background()
	for _, path := range c.Files {
		hand, err := phh.ReadFile(path)
		if err != nil {
			return err
		}
		rec, err := hand.Record()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		replayed, err := game.Replay(ctx, eval, rec)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("Hand replayed", "path", path, "hand_id", replayed.HandID, "actions", len(replayed.Actions))
		if err := monitor.RecordHand(replayed); err != nil {
			return err
		}
	}
	return nil
}

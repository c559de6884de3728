package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/randutil"
	"github.com/lox/pokertables/poker"
)

// HandRanksCmd groups the hand rank table tools.
type HandRanksCmd struct {
	Generate HandRanksGenerateCmd `cmd:"" help:"Generate the hand rank table and save it"`
	Eval     HandRanksEvalCmd     `cmd:"" help:"Evaluate hands with the hand rank table"`
}

// HandRanksGenerateCmd writes a freshly generated table to disk.
type HandRanksGenerateCmd struct {
	Out string `short:"o" default:"handranks.dat" help:"Output path"`
}

func (c *HandRanksGenerateCmd) Run(g *Globals) error {
	logger, err := g.Logger("info")
	if err != nil {
		return err
	}
	start := time.Now()
	t := evaluator.Generate()
	if err := t.Verify(); err != nil {
		return err
	}
	if err := t.Save(c.Out); err != nil {
		return fmt.Errorf("save hand ranks: %w", err)
	}
	logger.Info("Hand ranks written",
		"path", c.Out,
		"entries", t.Len(),
		"bytes", 4*t.Len(),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// HandRanksEvalCmd ranks each hand given and, with --opponents, estimates
// its equity.
type HandRanksEvalCmd struct {
	Hands     []string `arg:"" help:"Hands as card strings, e.g. 'AsKsQsJsTs' or 'AhKd' with --board"`
	Board     string   `short:"b" help:"Community cards added to every hand"`
	HandRanks string   `help:"Hand rank table path, generated in memory when unset"`
	Opponents int      `short:"o" help:"Estimate equity against this many random hands"`
	BoardSize int      `default:"5" help:"Community cards at showdown, for equity"`
	Samples   int      `short:"i" default:"10000" help:"Monte Carlo samples for equity"`
	Seed      int64    `help:"Random seed for reproducible equity"`

	out io.Writer
}

var (
	handStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	percentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

func (c *HandRanksEvalCmd) Run(g *Globals) error {
	logger, err := g.Logger("warn")
	if err != nil {
		return err
	}
	eval, err := loadEvaluator(c.HandRanks, logger)
	if err != nil {
		return err
	}
	board, err := poker.ParseCards(c.Board)
	if err != nil {
		return fmt.Errorf("board: %w", err)
	}

	out := output(c.out)
	rng := randutil.New(c.Seed)
	for i, h := range c.Hands {
		hole, err := poker.ParseCards(strings.ReplaceAll(h, " ", ""))
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		cards := append(append([]poker.Card{}, hole...), board...)
		e, err := eval.Evaluate(cards)
		if err != nil {
			return fmt.Errorf("hand %d: %w", i+1, err)
		}
		line := fmt.Sprintf("%s  %s", handStyle.Render(poker.FormatCards(cards)), categoryStyle.Render(e.String()))

		if c.Opponents > 0 {
			equity, err := eval.EstimateEquity(context.Background(), evaluator.EquityRequest{
				Hole:      hole,
				Board:     board,
				BoardSize: c.BoardSize,
				Opponents: c.Opponents,
				Samples:   c.Samples,
			}, rng)
			if err != nil {
				return fmt.Errorf("hand %d: %w", i+1, err)
			}
			line += "  " + percentStyle.Render(fmt.Sprintf("%.1f%% equity vs %d", 100*equity, c.Opponents))
		}
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

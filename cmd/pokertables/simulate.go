package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/pokertables/internal/bot"
	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/internal/gameid"
	"github.com/lox/pokertables/internal/randutil"
	"github.com/lox/pokertables/internal/server"
	"github.com/lox/pokertables/internal/statistics"
)

// SimulateCmd plays bots against each other through the synchronous driver.
type SimulateCmd struct {
	Hands        int      `short:"n" default:"1000" help:"Number of hands to simulate"`
	SessionHands int      `default:"100" help:"Hands per session, stacks reset between sessions"`
	Variant      string   `default:"holdem" help:"Variant: holdem, shorthand or threecard"`
	Bots         []string `default:"rule,equity,call,maniac" help:"Bot strategies, one seat each"`
	Stack        int      `default:"1000" help:"Starting stack"`
	SmallBlind   int      `default:"5" help:"Small blind"`
	BigBlind     int      `default:"10" help:"Big blind"`
	Seed         int64    `help:"RNG seed (0 for random)"`
	HandRanks    string   `help:"Hand rank table path, generated in memory when unset"`
	List         bool     `help:"Print one line per finished hand"`
	NoColor      bool     `help:"Disable colors in the results table"`

	out io.Writer
}

func (c *SimulateCmd) Run(g *Globals) error {
	logger, err := g.Logger("warn")
	if err != nil {
		return err
	}
	cfg := c.gameConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}
	eval, err := loadEvaluator(c.HandRanks, logger)
	if err != nil {
		return err
	}

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger.Info("Starting simulation", "hands", c.Hands, "bots", strings.Join(c.Bots, ","), "seed", seed)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := output(c.out)
	collector := statistics.NewCollector()
	var rec game.Recorder = collector
	if c.List {
		rec = server.NewRecorders(collector, server.NewListMonitor(out))
	}

	perSession := c.SessionHands
	if perSession <= 0 {
		perSession = c.Hands
	}
	start := time.Now()
	played := 0
	for session := 0; played < c.Hands; session++ {
		n, err := c.playSession(ctx, cfg, eval, seed, session, min(perSession, c.Hands-played), rec, logger)
		played += n
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("session %d dealt no hands", session)
		}
	}
	elapsed := time.Since(start)

	profile := termenv.EnvColorProfile()
	if c.NoColor {
		profile = termenv.Ascii
	}
	_, err = fmt.Fprintln(out, renderResults(collector, elapsed, profile))
	return err
}

func (c *SimulateCmd) gameConfig() game.Config {
	cfg := game.DefaultConfig()
	cfg.Variant = c.Variant
	cfg.MaxSeats = max(len(c.Bots), 2)
	cfg.SmallBlind = c.SmallBlind
	cfg.BigBlind = c.BigBlind
	return cfg
}

// playSession seats fresh bots with full stacks and plays up to n hands.
func (c *SimulateCmd) playSession(ctx context.Context, cfg game.Config, eval *evaluator.Table, seed int64, session, n int, rec game.Recorder, logger *log.Logger) (int, error) {
	stream := fmt.Sprintf("session/%d", session)
	d, err := game.NewDriver("sim", cfg, eval, randutil.Derive(seed, "deck/"+stream),
		game.WithDriverRecorder(rec),
		game.WithDriverLogger(logger),
		game.WithDriverIDs(gameid.NewGenerator(randutil.Reader(seed, "ids/"+stream))))
	if err != nil {
		return 0, err
	}

	deps := bot.Deps{Evaluator: eval, Logger: logger}
	for i, strategy := range c.Bots {
		name := fmt.Sprintf("%s-%d", strategy, i+1)
		b, err := bot.New(bot.Spec{Name: name, Strategy: strategy, Seed: seed + int64(session)}, deps)
		if err != nil {
			return 0, err
		}
		if err := d.AddBot(game.SeatSpec{ID: i, Name: name, Stack: c.Stack}, b); err != nil {
			return 0, err
		}
	}

	hands, err := d.PlayHands(ctx, n)
	if len(hands) < n && err == nil {
		logger.Debug("Session ended early", "session", session, "hands", len(hands))
	}
	return len(hands), err
}

// renderResults formats the per-seat summary as a table, best seat first.
func renderResults(collector *statistics.Collector, elapsed time.Duration, profile termenv.Profile) string {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(profile)

	winStyle := r.NewStyle().Foreground(lipgloss.Color("10"))
	lossStyle := r.NewStyle().Foreground(lipgloss.Color("9"))
	titleStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	headerStyle := r.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := r.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.NewStyle().Foreground(lipgloss.Color("8"))).
		Headers("Seat", "Bot", "Hands", "BB/100", "95% CI", "Showdown BB", "Non-showdown BB", "Median").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, s := range collector.Seats() {
		lo, hi := s.Stats.ConfidenceInterval95()
		rate := fmt.Sprintf("%+.2f", s.Stats.BBPer100())
		if s.Stats.BBPer100() >= 0 {
			rate = winStyle.Render(rate)
		} else {
			rate = lossStyle.Render(rate)
		}
		t.Row(
			fmt.Sprint(s.Seat),
			s.Name,
			fmt.Sprint(s.Stats.Hands),
			rate,
			fmt.Sprintf("[%+.1f, %+.1f]", lo*100, hi*100),
			fmt.Sprintf("%+.1f", s.Stats.ShowdownBB),
			fmt.Sprintf("%+.1f", s.Stats.NonShowdownBB),
			fmt.Sprintf("%+.2f", s.Stats.Median()),
		)
	}

	title := titleStyle.Render(fmt.Sprintf("%d hands in %s", collector.Hands(), elapsed.Round(time.Millisecond)))
	return lipgloss.JoinVertical(lipgloss.Left, title, t.Render())
}

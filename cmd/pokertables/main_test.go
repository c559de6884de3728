package main

import (
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertables/internal/bot"
	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/internal/phh"
	"github.com/lox/pokertables/internal/randutil"
	"github.com/lox/pokertables/internal/statistics"
)

var quiet = &Globals{LogLevel: "error"}

func TestGlobalsLogger(t *testing.T) {
	t.Parallel()

	_, err := (&Globals{LogLevel: "loud"}).Logger("")
	assert.Error(t, err)

	l, err := (&Globals{}).Logger("debug")
	require.NoError(t, err)
	assert.Equal(t, "debug", l.GetLevel().String())
}

func TestSimulateCommand(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := &SimulateCmd{
		Hands:        40,
		SessionHands: 15,
		Variant:      "holdem",
		Bots:         []string{"call", "fold", "random"},
		Stack:        500,
		SmallBlind:   5,
		BigBlind:     10,
		Seed:         3,
		List:         true,
		NoColor:      true,
		out:          &buf,
	}
	require.NoError(t, cmd.Run(quiet))

	out := buf.String()
	assert.Contains(t, out, "40 hands in")
	for _, name := range []string{"call-1", "fold-2", "random-3"} {
		assert.Contains(t, out, name)
	}
	assert.Equal(t, 40, strings.Count(out, "sim "), "one list line per hand")
}

func TestSimulateRejectsBadConfig(t *testing.T) {
	t.Parallel()

	cmd := &SimulateCmd{Hands: 1, Variant: "omaha", Bots: []string{"call", "call"}, Stack: 100, SmallBlind: 1, BigBlind: 2}
	assert.ErrorIs(t, cmd.Run(quiet), game.ErrInvalidConfig)

	cmd = &SimulateCmd{Hands: 1, Variant: "holdem", Bots: []string{"call", "psychic"}, Stack: 100, SmallBlind: 1, BigBlind: 2}
	assert.ErrorIs(t, cmd.Run(quiet), bot.ErrUnknownStrategy)
}

func TestRenderResultsWithoutColor(t *testing.T) {
	t.Parallel()

	c := statistics.NewCollector()
	require.NoError(t, c.RecordHand(game.HandRecord{
		BigBlind: 10,
		MaxSeats: 2,
		Seats: []game.RecordedSeat{
			{ID: 0, Name: "winner", StartingStack: 100, FinishingStack: 120},
			{ID: 1, Name: "loser", StartingStack: 100, FinishingStack: 80},
		},
		Payouts: []game.Payout{{Seat: 0, Amount: 40}},
	}))

	out := renderResults(c, 1500*time.Millisecond, termenv.Ascii)
	assert.NotContains(t, out, "\x1b[", "ascii output has no escape codes")
	assert.Contains(t, out, "1 hands in 1.5s")
	assert.Less(t, strings.Index(out, "winner"), strings.Index(out, "loser"))
	assert.Contains(t, out, "+200.00")
}

func TestHandRanksEval(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	cmd := &HandRanksEvalCmd{
		Hands:     []string{"AsKsQsJsTs", "2c2d2h"},
		Board:     "",
		BoardSize: 5,
		out:       &buf,
	}
	require.NoError(t, cmd.Run(quiet))
	assert.Contains(t, buf.String(), "Straight Flush")
	assert.Error(t, (&HandRanksEvalCmd{Hands: []string{"Zz"}, out: &buf}).Run(quiet))

	buf.Reset()
	cmd = &HandRanksEvalCmd{
		Hands:     []string{"AhAd"},
		Board:     "2c7d9h",
		Opponents: 1,
		BoardSize: 5,
		Samples:   200,
		Seed:      1,
		out:       &buf,
	}
	require.NoError(t, cmd.Run(quiet))
	assert.Contains(t, buf.String(), "One Pair")
	assert.Contains(t, buf.String(), "equity vs 1")
}

func TestHandRanksGenerate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ranks.dat")
	require.NoError(t, (&HandRanksGenerateCmd{Out: path}).Run(quiet))

	loaded, err := evaluator.Load(path)
	require.NoError(t, err)
	assert.Equal(t, generated().Len(), loaded.Len())
}

func TestLoadEvaluator(t *testing.T) {
	t.Parallel()

	logger, err := quiet.Logger("")
	require.NoError(t, err)
	dir := t.TempDir()

	inMemory, err := loadEvaluator("", logger)
	require.NoError(t, err)
	assert.Same(t, generated(), inMemory)

	_, err = loadEvaluator(filepath.Join(dir, "missing.dat"), logger)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	corrupt := filepath.Join(dir, "corrupt.dat")
	require.NoError(t, os.WriteFile(corrupt, []byte{1, 2, 3, 4, 5}, 0o644))
	_, err = loadEvaluator(corrupt, logger)
	assert.ErrorIs(t, err, evaluator.ErrCorruptTable)

	saved := filepath.Join(dir, "ranks.dat")
	require.NoError(t, generated().Save(saved))
	loaded, err := loadEvaluator(saved, logger)
	require.NoError(t, err)
	assert.Equal(t, generated().Len(), loaded.Len())
}

func TestServeRejectsMissingHandRanks(t *testing.T) {
	t.Parallel()

	cmd := &ServeCmd{
		Config:    filepath.Join(t.TempDir(), "absent.hcl"),
		Addr:      "127.0.0.1:0",
		HandRanks: filepath.Join(t.TempDir(), "absent.dat"),
	}
	assert.ErrorIs(t, cmd.Run(quiet), fs.ErrNotExist)
}

func TestReplayCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec, err := phh.NewFileRecorder(dir)
	require.NoError(t, err)

	eval := generated()
	d, err := game.NewDriver("replay", game.DefaultConfig(), eval, randutil.New(11), game.WithDriverRecorder(rec))
	require.NoError(t, err)
	for i, strategy := range []string{"call", "random", "maniac"} {
		b, err := bot.New(bot.Spec{Name: strategy, Strategy: strategy, Seed: 11}, bot.Deps{Evaluator: eval})
		require.NoError(t, err)
		require.NoError(t, d.AddBot(game.SeatSpec{ID: i, Name: strategy, Stack: 1000}, b))
	}
	hands, err := d.PlayHands(context.Background(), 5)
	require.NoError(t, err)
	require.NotEmpty(t, hands)

	var files []string
	require.NoError(t, filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err == nil && !e.IsDir() {
			files = append(files, path)
		}
		return err
	}))
	require.Len(t, files, len(hands))

	var buf bytes.Buffer
	require.NoError(t, (&ReplayCmd{Files: files, out: &buf}).Run(quiet))
	assert.Equal(t, len(hands), strings.Count(buf.String(), "\n"))
}

package phh_test

import (
	"bytes"
	"context"
	"fmt"
	rand "math/rand/v2"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/internal/phh"
	"github.com/lox/pokertables/internal/randutil"
)

var (
	evalOnce  sync.Once
	evalTable *evaluator.Table
)

func testEvaluator() *evaluator.Table {
	evalOnce.Do(func() { evalTable = evaluator.Generate() })
	return evalTable
}

func randomBot(rng *rand.Rand) game.BotDecisionFunc {
	return func(_ context.Context, v game.SeatView) (game.Decision, error) {
		switch n := rng.IntN(10); {
		case n < 2:
			return game.Decision{Kind: game.Fold}, nil
		case n < 6:
			return game.Decision{Kind: game.CheckOrCall}, nil
		case n < 7:
			return game.Decision{Kind: game.Special}, nil
		default:
			return game.Decision{Kind: game.Raise, Amount: rng.IntN(v.BigBlind*3 + 1)}, nil
		}
	}
}

func TestHistoriesReplayToTheSameHand(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	eval := testEvaluator()

	for _, variant := range game.VariantNames() {
		t.Run(variant, func(t *testing.T) {
			t.Parallel()
			cfg := game.DefaultConfig()
			cfg.Variant = variant
			d, err := game.NewDriver("phh-"+variant, cfg, eval, randutil.Derive(21, variant))
			require.NoError(t, err)
			for i := range 3 {
				rng := randutil.Derive(21, fmt.Sprintf("%s-%d", variant, i))
				require.NoError(t, d.AddBot(game.SeatSpec{ID: i * 2, Name: fmt.Sprintf("bot%d", i), Stack: 400}, randomBot(rng)))
			}
			hands, err := d.PlayHands(ctx, 20)
			require.NoError(t, err)
			require.NotEmpty(t, hands)

			for _, rec := range hands {
				data, err := phh.EncodeToBytes(phh.FromRecord(rec, time.Now()))
				require.NoError(t, err)
				h, err := phh.Decode(bytes.NewReader(data))
				require.NoError(t, err)

				decoded, err := h.Record()
				require.NoError(t, err, "hand %s", rec.HandID)

				replayed, err := game.Replay(ctx, eval, decoded)
				require.NoError(t, err, "hand %s:\n%s", rec.HandID, data)
				// A fresh table always numbers its first hand 1.
				replayed.HandNumber = rec.HandNumber
				assert.Equal(t, rec, replayed)
			}
		})
	}
}

func TestFileRecorder(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	mClock := quartz.NewMock(t)
	mClock.Set(time.Date(2026, time.March, 1, 9, 30, 15, 0, time.UTC))

	r, err := phh.NewFileRecorder(dir, phh.WithClock(mClock))
	require.NoError(t, err)

	rec := sampleRecord()
	require.NoError(t, r.RecordHand(rec))

	path := r.Path(rec.TableID, rec.HandID)
	_, err = os.Stat(path)
	require.NoError(t, err)

	h, err := phh.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, rec.HandID, h.HandID)
	assert.Equal(t, "09:30:15", h.Time)
	assert.Equal(t, 2026, h.Year)

	entries, err := os.ReadDir(filepath.Join(dir, rec.TableID))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")

	_, err = phh.NewFileRecorder("")
	assert.Error(t, err)
}

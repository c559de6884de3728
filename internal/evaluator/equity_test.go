package evaluator

import (
	"context"
	"testing"

	"github.com/lox/pokertables/internal/randutil"
	"github.com/lox/pokertables/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateEquity(t *testing.T) {
	table := testTable(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		hole     string
		board    string
		opp      int
		min, max float64
	}{
		{"aces preflop heads-up", "AhAd", "", 1, 0.80, 0.90},
		{"seven deuce preflop heads-up", "7c2d", "", 1, 0.28, 0.40},
		{"aces shrink against three", "AhAd", "", 3, 0.58, 0.70},
		{"made royal flush", "AsKs", "QsJsTs", 1, 1, 1},
		{"board plays for everyone", "2c3d", "AsKsQsJsTs", 2, 1.0 / 3, 1.0 / 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			equity, err := table.EstimateEquity(ctx, EquityRequest{
				Hole:      poker.MustParseCards(tt.hole),
				Board:     poker.MustParseCards(tt.board),
				BoardSize: 5,
				Opponents: tt.opp,
				Samples:   4000,
			}, randutil.New(1))
			require.NoError(t, err)
			assert.InDelta(t, (tt.min+tt.max)/2, equity, (tt.max-tt.min)/2+1e-9)
		})
	}
}

func TestEstimateEquityIsReproducible(t *testing.T) {
	table := testTable(t)
	req := EquityRequest{
		Hole:      poker.MustParseCards("QhJh"),
		Board:     poker.MustParseCards("Th9c2d"),
		BoardSize: 5,
		Opponents: 2,
		Samples:   2000,
	}

	a, err := table.EstimateEquity(context.Background(), req, randutil.New(42))
	require.NoError(t, err)
	b, err := table.EstimateEquity(context.Background(), req, randutil.New(42))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEstimateEquityThreeCard(t *testing.T) {
	table := testTable(t)
	equity, err := table.EstimateEquity(context.Background(), EquityRequest{
		Hole:      poker.MustParseCards("AhAdAc"),
		Opponents: 1,
		Samples:   1000,
	}, randutil.New(3))
	require.NoError(t, err)
	assert.Greater(t, equity, 0.95)
}

func TestEstimateEquityErrors(t *testing.T) {
	table := testTable(t)
	rng := randutil.New(1)

	_, err := table.EstimateEquity(context.Background(), EquityRequest{Hole: poker.MustParseCards("AhAd"), BoardSize: 5, Samples: 10}, rng)
	assert.ErrorIs(t, err, ErrInvalidEquityRequest, "no opponents")

	_, err = table.EstimateEquity(context.Background(), EquityRequest{Hole: poker.MustParseCards("AhAd"), BoardSize: 5, Opponents: 30, Samples: 10}, rng)
	assert.ErrorIs(t, err, ErrInvalidEquityRequest, "not enough cards")

	_, err = table.EstimateEquity(context.Background(), EquityRequest{Hole: poker.MustParseCards("AhAh"), BoardSize: 5, Opponents: 1, Samples: 10}, rng)
	assert.ErrorIs(t, err, ErrInvalidCard, "duplicate card")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = table.EstimateEquity(ctx, EquityRequest{Hole: poker.MustParseCards("AhAd"), BoardSize: 5, Opponents: 1, Samples: 1000}, rng)
	assert.ErrorIs(t, err, context.Canceled)
}

package evaluator

import (
	"testing"

	"github.com/lox/pokertables/internal/randutil"
	"github.com/lox/pokertables/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateCategories(t *testing.T) {
	table := testTable(t)

	tests := []struct {
		name     string
		cards    string
		expected Category
	}{
		{"Royal Flush", "AsKsQsJsTs9h8h", StraightFlush},
		{"Straight Flush", "9s8s7s6s5s4h3h", StraightFlush},
		{"Four of a Kind", "AsAhAdAcKs2h3h", FourOfAKind},
		{"Full House", "AsAhAdKsKh2h3h", FullHouse},
		{"Two Trips Make Full House", "AsAhAdKsKhKd3h", FullHouse},
		{"Flush", "AsKsQs8s6s4h3h", Flush},
		{"Straight", "AsKhQdJcTs9h8h", Straight},
		{"Wheel", "As2h3d4c5s9hKh", Straight},
		{"Three of a Kind", "AsAhAdKs9c7h5h", ThreeOfAKind},
		{"Two Pair", "AsAhKdKs9c7h5h", TwoPair},
		{"One Pair", "AsAhKdQs9c7h5h", OnePair},
		{"High Card", "AsKhQd9s7c5h3h", HighCard},

		{"Five Card Flush", "2h5h9hJhKh", Flush},
		{"Five Card Full House", "3c3d3h9s9d", FullHouse},
		{"Six Card Straight Flush", "6d7d8d9dTdTs", StraightFlush},
		{"Six Card Two Pair", "QcQdJhJs4c2d", TwoPair},

		{"Three Card Trips", "7c7d7h", ThreeOfAKind},
		{"Three Card Pair", "7c7dAh", OnePair},
		{"Three Card Run Is High Card", "Jc Qd Kh", HighCard},
		{"Three Card Suited Is High Card", "2h5h9h", HighCard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := table.Evaluate(poker.MustParseCards(tt.cards))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, e.Category, "got %s", e)
			assert.Equal(t, uint32(e.Category)<<12|uint32(e.Rank), e.Value)
		})
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	table := testTable(t)
	rng := randutil.New(1)

	for range 200 {
		hand := randomHand(rng, 7)
		first, err := table.Evaluate(hand)
		require.NoError(t, err)
		second, err := table.Evaluate(hand)
		require.NoError(t, err)
		require.Equal(t, first, second)
	}
}

func TestCategoryOrdering(t *testing.T) {
	table := testTable(t)

	// Weakest member of each category beats the strongest of the one below.
	ladder := []struct {
		weakest  string
		strongest string
	}{
		{"7c5d4h3s2c", "AcKdQhJs9c"},
		{"2c2d3h4s5c", "AcAdKhQsJc"},
		{"3c3d2h2s4c", "AcAdKhKsQc"},
		{"2c2d2h3s4c", "AcAdAhKsQc"},
		{"5c4d3h2sAc", "AcKdQhJsTc"},
		{"7c5c4c3c2c", "AcKcQcJc9c"},
		{"2c2d2h3s3c", "AcAdAhKsKc"},
		{"2c2d2h2s3c", "AcAdAhAsKc"},
		{"5c4c3c2cAc", "AcKcQcJcTc"},
	}

	var prev Evaluation
	for i, step := range ladder {
		lo := table.MustEvaluate(poker.MustParseCards(step.weakest))
		hi := table.MustEvaluate(poker.MustParseCards(step.strongest))

		assert.Equal(t, Category(i+1), lo.Category, step.weakest)
		assert.Equal(t, Category(i+1), hi.Category, step.strongest)
		assert.Equal(t, uint16(1), lo.Rank, "%s should be the weakest %s", step.weakest, lo.Category)
		assert.Greater(t, hi.Value, lo.Value)
		if i > 0 {
			assert.Greater(t, lo.Value, prev.Value, "%s must beat every %s", lo.Category, prev.Category)
		}
		prev = hi
	}
	assert.Equal(t, uint16(10), prev.Rank)
}

func TestCategorySizes(t *testing.T) {
	expected := map[Category]int{
		HighCard:      1277,
		OnePair:       2860,
		TwoPair:       858,
		ThreeOfAKind:  858,
		Straight:      10,
		Flush:         1277,
		FullHouse:     156,
		FourOfAKind:   156,
		StraightFlush: 10,
	}
	got := map[Category]int{}
	for k := range fiveCardRanks {
		got[Category(k>>24)]++
	}
	assert.Equal(t, expected, got)
	assert.Len(t, threeCardRanks, 13+156+286)
}

func TestEvaluateBestFive(t *testing.T) {
	table := testTable(t)
	rng := randutil.New(2)

	for _, size := range []int{6, 7} {
		for range 300 {
			hand := randomHand(rng, size)
			got := table.MustEvaluate(hand)
			want := bestOfFive(t, table, hand)
			require.Equal(t, want, got, "hand %s", poker.FormatCards(hand))
		}
	}
}

func TestEvaluateOrderIndependent(t *testing.T) {
	table := testTable(t)
	rng := randutil.New(3)

	for range 100 {
		hand := randomHand(rng, 7)
		want := table.MustEvaluate(hand)
		rng.Shuffle(len(hand), func(i, j int) { hand[i], hand[j] = hand[j], hand[i] })
		require.Equal(t, want, table.MustEvaluate(hand))
	}
}

func TestEvaluateErrors(t *testing.T) {
	table := testTable(t)

	for _, n := range []int{0, 1, 2, 4, 8} {
		_, err := table.Evaluate(randomHand(randutil.New(int64(n)), n))
		assert.ErrorIs(t, err, ErrInvalidHandSize, "size %d", n)
	}

	_, err := table.Evaluate(poker.MustParseCards("AsAsKdQc2h"))
	assert.ErrorIs(t, err, ErrInvalidCard)

	_, err = table.Evaluate([]poker.Card{0, 1, 2})
	assert.ErrorIs(t, err, ErrInvalidCard)
}

func TestDecode(t *testing.T) {
	t.Parallel()
	e := Decode(uint32(Flush)<<12 | 77)
	assert.Equal(t, Flush, e.Category)
	assert.Equal(t, uint16(77), e.Rank)
	assert.Equal(t, "Flush (77)", e.String())
	assert.Equal(t, "Invalid", Category(12).String())
}

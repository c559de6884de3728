package poker

import (
	"testing"

	"github.com/lox/pokertables/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCardIDs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Card(1), NewCard(Two, Clubs))
	assert.Equal(t, Card(4), NewCard(Two, Spades))
	assert.Equal(t, Card(52), NewCard(Ace, Spades))
	assert.Equal(t, "As", NewCard(Ace, Spades).String())
	assert.Equal(t, "2c", NewCard(Two, Clubs).String())
	assert.Equal(t, "??", Card(0).String())
	assert.Equal(t, "??", Card(53).String())

	seen := map[string]bool{}
	for id := Card(1); id <= NumCards; id++ {
		require.True(t, id.Valid())
		assert.Equal(t, id, NewCard(id.Rank(), id.Suit()))
		seen[id.String()] = true
	}
	assert.Len(t, seen, NumCards)
}

func TestParseCard(t *testing.T) {
	t.Parallel()
	tests := []struct {
		input   string
		want    Card
		wantErr bool
	}{
		{input: "As", want: NewCard(Ace, Spades)},
		{input: "2h", want: NewCard(Two, Hearts)},
		{input: "td", want: NewCard(Ten, Diamonds)},
		{input: "KC", want: NewCard(King, Clubs)},
		{input: "1s", wantErr: true},
		{input: "Ax", wantErr: true},
		{input: "A", wantErr: true},
		{input: "Ahh", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCard(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Parallel()

	cards, err := ParseCards("As Kd 7h")
	require.NoError(t, err)
	assert.Equal(t, "AsKd7h", FormatCards(cards))
	assert.Equal(t, []string{"As", "Kd", "7h"}, CardStrings(cards))

	_, err = ParseCards("AsK")
	require.Error(t, err)
}

func TestCardText(t *testing.T) {
	t.Parallel()

	b, err := NewCard(Queen, Hearts).MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Qh", string(b))

	var c Card
	require.NoError(t, c.UnmarshalText([]byte("9c")))
	assert.Equal(t, NewCard(Nine, Clubs), c)

	_, err = Card(0).MarshalText()
	require.Error(t, err)
}

func TestDeck(t *testing.T) {
	t.Parallel()

	d := NewDeck(randutil.New(42))
	require.Equal(t, NumCards, d.Remaining())

	seen := map[Card]bool{}
	for _, c := range d.Order() {
		require.False(t, seen[c], "duplicate card %s", c)
		seen[c] = true
	}

	hole := d.Draw(2)
	require.Len(t, hole, 2)
	require.True(t, d.Burn())
	flop := d.Draw(3)
	assert.Equal(t, NumCards-6, d.Remaining())
	order := d.Order()
	assert.Equal(t, order[0:2], hole)
	assert.Equal(t, order[3:6], flop)

	assert.Nil(t, d.Draw(NumCards))

	// Same seed, same order
	assert.Equal(t, NewDeck(randutil.New(42)).Order(), NewDeck(randutil.New(42)).Order())
	assert.NotEqual(t, NewDeck(randutil.New(42)).Order(), NewDeck(randutil.New(43)).Order())
}

func TestOrderedDeck(t *testing.T) {
	t.Parallel()

	d, err := NewOrderedDeck(MustParseCards("AsKsQs"))
	require.NoError(t, err)
	assert.Equal(t, MustParseCards("As"), d.Draw(1))

	clone := d.Clone()
	assert.Equal(t, MustParseCards("Ks"), d.Draw(1))
	assert.Equal(t, MustParseCards("Ks"), clone.Draw(1), "clone keeps its own position")

	require.True(t, d.Burn())
	assert.False(t, d.Burn())

	_, err = NewOrderedDeck(MustParseCards("AsAs"))
	require.Error(t, err)
	_, err = NewOrderedDeck([]Card{0})
	require.Error(t, err)
}

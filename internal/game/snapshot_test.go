package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotHidesHoleCardsUntilRevealed(t *testing.T) {
	m := testMachine(t)
	st := seatedState(t, m, testConfig(Holdem.Name, 5, 10), 1000, 1000)
	st = startHand(t, m, st, shuffledDeck(40), 0)

	snap := NewSnapshot(st)
	assert.Equal(t, "pre-flop", snap.Stage)
	assert.Equal(t, []string{OptionFold, OptionCall, OptionRaise}, snap.Seats[0].ActionsAvailable)
	assert.Empty(t, snap.Seats[1].ActionsAvailable)
	for _, s := range snap.Seats {
		assert.Empty(t, s.HoleCards)
	}

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "holeCards")
	assert.Contains(t, string(data), `"communityCards":[]`)
	assert.Contains(t, string(data), `"actionsAvailable":[]`)

	st.Seat(1).Revealed = true
	snap = NewSnapshot(st)
	assert.Equal(t, st.Seat(1).HoleCards, snap.Seats[1].HoleCards)
}

func TestSnapshotEqual(t *testing.T) {
	t.Parallel()
	m := testMachine(t)
	st := seatedState(t, m, testConfig(Holdem.Name, 5, 10), 1000, 1000)

	a := NewSnapshot(st)
	assert.True(t, a.Equal(NewSnapshot(st.Clone())))

	changed := st.Clone()
	changed.Seat(0).TurnTimeLeft = 3
	assert.False(t, a.Equal(NewSnapshot(changed)))

	changed = st.Clone()
	changed.LastAction = LastAction{Seat: 1, Text: "check"}
	assert.False(t, a.Equal(NewSnapshot(changed)))
}

func TestSeatViewAction(t *testing.T) {
	t.Parallel()
	v := SeatView{Seat: 4, Available: []string{OptionFold, OptionCall, OptionRaise}}
	assert.True(t, v.CanRaise())
	assert.False(t, v.CanSpecial())
	assert.Equal(t, Action{Seat: 4, Kind: CheckOrCall}, v.Action(Decision{Kind: Special}))
	assert.Equal(t, Action{Seat: 4, Kind: Raise, Amount: 30}, v.Action(Decision{Kind: Raise, Amount: 30}))

	v.Available = append(v.Available, "show")
	assert.True(t, v.CanSpecial())
	assert.Equal(t, Action{Seat: 4, Kind: Special}, v.Action(Decision{Kind: Special}))
}

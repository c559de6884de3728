package game

import (
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/randutil"
	"github.com/lox/pokertables/poker"
)

var (
	evalOnce  sync.Once
	evalTable *evaluator.Table
)

// testEvaluator generates the hand-rank table once per test binary.
func testEvaluator(t testing.TB) *evaluator.Table {
	t.Helper()
	evalOnce.Do(func() {
		evalTable = evaluator.Generate()
	})
	return evalTable
}

func testMachine(t testing.TB) *Machine {
	t.Helper()
	return NewMachine(testEvaluator(t))
}

// testConfig is a table with no pauses, so Step never schedules a wake.
func testConfig(variant string, small, big int) Config {
	cfg := DefaultConfig()
	cfg.Variant = variant
	cfg.SmallBlind = small
	cfg.BigBlind = big
	cfg.CollectPause = 0
	cfg.ResultsDelay = 0
	cfg.Tick = 0
	return cfg
}

// seatedState returns a waiting table with seats 0..n-1 holding stacks.
func seatedState(t *testing.T, m *Machine, cfg Config, stacks ...int) State {
	t.Helper()
	st, err := NewState("test", cfg)
	require.NoError(t, err)
	for i, stack := range stacks {
		st = mustStep(t, m, st, EventJoin{Seat: SeatSpec{ID: i, Name: fmt.Sprintf("p%d", i), Stack: stack}})
	}
	return st
}

// mustStep applies an event and fails on a rejection.
func mustStep(t *testing.T, m *Machine, st State, ev Event) State {
	t.Helper()
	next, effects := m.Step(st, ev)
	for _, e := range effects {
		if r, ok := e.(Rejected); ok {
			t.Fatalf("%T rejected for seat %d: %v", ev, r.Seat, r.Err)
		}
	}
	return next
}

// stackedDeck puts the given cards on top of an otherwise ordered deck.
func stackedDeck(t *testing.T, top string) []poker.Card {
	t.Helper()
	deck := poker.MustParseCards(top)
	for c := poker.Card(1); c <= poker.NumCards; c++ {
		if !slices.Contains(deck, c) {
			deck = append(deck, c)
		}
	}
	return deck
}

func shuffledDeck(seed int64) []poker.Card {
	return poker.NewDeck(randutil.New(seed)).Order()
}

func startHand(t *testing.T, m *Machine, st State, deck []poker.Card, dealer int) State {
	t.Helper()
	return mustStep(t, m, st, EventStartHand{Deck: deck, HandID: fmt.Sprintf("hand-%d", st.HandNumber+1), Dealer: dealer})
}

func act(t *testing.T, m *Machine, st State, seat int, kind ActionKind, amount int) State {
	t.Helper()
	require.Equal(t, seat, st.Turn, "seat %d acting out of turn", seat)
	return mustStep(t, m, st, EventAction{Action: Action{Seat: seat, Kind: kind, Amount: amount}})
}

func stacks(st State) map[int]int {
	out := make(map[int]int, len(st.Seats))
	for _, s := range st.Seats {
		out[s.ID] = s.Stack
	}
	return out
}

func effectsOf[E Effect](effects []Effect) []E {
	var out []E
	for _, e := range effects {
		if v, ok := e.(E); ok {
			out = append(out, v)
		}
	}
	return out
}

// waitTimeout bounds how long table tests wait on the actor.
const waitTimeout = 5 * time.Second

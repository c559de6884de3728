package game

import (
	"fmt"
	"slices"

	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/poker"
)

// Showdown is the outcome of comparing the live hands.
type Showdown struct {
	Winners []int
	Hands   map[int]evaluator.Evaluation // empty when the pot was uncontested
}

// Resolve picks the winners among the active seats. A lone active seat wins
// without evaluation; otherwise every live hand is ranked on its hole cards
// plus the board and all seats holding the best value win.
func Resolve(eval Evaluator, seats []*Seat, community []poker.Card) (Showdown, error) {
	var active []*Seat
	for _, s := range seats {
		if s.active() {
			active = append(active, s)
		}
	}

	switch len(active) {
	case 0:
		return Showdown{}, fmt.Errorf("no active seats")
	case 1:
		return Showdown{Winners: []int{active[0].ID}}, nil
	}

	sd := Showdown{Hands: make(map[int]evaluator.Evaluation, len(active))}
	var best evaluator.Evaluation
	for _, s := range active {
		cards := append(slices.Clone(s.HoleCards), community...)
		e, err := eval.Evaluate(cards)
		if err != nil {
			return Showdown{}, fmt.Errorf("evaluate %s: %w", s, err)
		}
		sd.Hands[s.ID] = e
		switch e.Compare(best) {
		case 1:
			best = e
			sd.Winners = append(sd.Winners[:0], s.ID)
		case 0:
			sd.Winners = append(sd.Winners, s.ID)
		}
	}
	return sd, nil
}

// Package evaluator ranks 3, 5, 6 and 7 card poker hands by walking a
// precomputed state transition table.
//
// Every card id (1..52) folds into the current state with
//
//	p = ranks[p + card]
//
// starting from the root state. Five and six card hands fold once more with
// no card to settle on a final value; seven card transitions hold the value
// directly. The final value packs the hand category into the upper bits and
// a dense within-category rank into the low 12 bits, so a larger value is
// always a stronger hand.
package evaluator

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/lox/pokertables/poker"
)

// Category is the class of a hand, from HighCard (1) to StraightFlush (9).
type Category uint8

const (
	HighCard Category = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
)

var categoryNames = [...]string{
	"Invalid",
	"High Card",
	"One Pair",
	"Two Pair",
	"Three of a Kind",
	"Straight",
	"Flush",
	"Full House",
	"Four of a Kind",
	"Straight Flush",
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return categoryNames[0]
}

const (
	rankBits  = 12
	rankMask  = 1<<rankBits - 1
	rootState = 53
	// stride is the number of slots per state: slot 0 holds the final value
	// for 3, 5 and 6 card states, slots 1..52 the transitions.
	stride = 53
)

var (
	// ErrInvalidHandSize is returned for hands that are not 3, 5, 6 or 7 cards.
	ErrInvalidHandSize = errors.New("hand size must be 3, 5, 6 or 7 cards")
	// ErrInvalidCard is returned for card ids outside 1..52 and for repeated cards.
	ErrInvalidCard = errors.New("invalid card")
	// ErrCorruptTable is returned when the lookup table fails validation.
	ErrCorruptTable = errors.New("corrupt hand rank table")
)

// Evaluation is the strength of a hand.
type Evaluation struct {
	Category Category
	Rank     uint16
	Value    uint32
}

// Decode splits a packed table value into category and rank.
func Decode(v uint32) Evaluation {
	return Evaluation{
		Category: Category(v >> rankBits),
		Rank:     uint16(v & rankMask),
		Value:    v,
	}
}

// Compare returns -1 if e is weaker, 0 if equal, 1 if e is stronger
func (e Evaluation) Compare(other Evaluation) int {
	return cmp.Compare(e.Value, other.Value)
}

func (e Evaluation) String() string {
	return fmt.Sprintf("%s (%d)", e.Category, e.Rank)
}

// Table is a loaded or generated hand rank table. It is immutable and safe
// for concurrent use.
type Table struct {
	ranks []uint32
}

// Len returns the number of uint32 entries in the table.
func (t *Table) Len() int {
	return len(t.ranks)
}

// Evaluate ranks a 3, 5, 6 or 7 card hand.
func (t *Table) Evaluate(cards []poker.Card) (Evaluation, error) {
	switch len(cards) {
	case 3, 5, 6, 7:
	default:
		return Evaluation{}, fmt.Errorf("%w: got %d", ErrInvalidHandSize, len(cards))
	}

	var seen uint64
	p := uint32(rootState)
	for _, c := range cards {
		if !c.Valid() || seen&(1<<c) != 0 {
			return Evaluation{}, fmt.Errorf("%w: %s", ErrInvalidCard, c)
		}
		seen |= 1 << c

		next := uint64(p) + uint64(c)
		if next >= uint64(len(t.ranks)) {
			return Evaluation{}, ErrCorruptTable
		}
		p = t.ranks[next]
	}

	if len(cards) != 7 {
		if uint64(p) >= uint64(len(t.ranks)) {
			return Evaluation{}, ErrCorruptTable
		}
		p = t.ranks[p]
	}

	e := Decode(p)
	if e.Category < HighCard || e.Category > StraightFlush || e.Rank == 0 {
		return Evaluation{}, ErrCorruptTable
	}
	return e, nil
}

// MustEvaluate is Evaluate for callers that have already validated the hand.
func (t *Table) MustEvaluate(cards []poker.Card) Evaluation {
	e, err := t.Evaluate(cards)
	if err != nil {
		panic(fmt.Sprintf("evaluate %s: %v", poker.FormatCards(cards), err))
	}
	return e
}

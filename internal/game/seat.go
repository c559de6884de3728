package game

import (
	"fmt"
	"slices"

	"github.com/lox/pokertables/poker"
)

// SeatState is the last betting decision of a seat in the current round.
type SeatState uint8

const (
	SeatNone SeatState = iota
	SeatFold
	SeatCheck
	SeatRaise
)

func (s SeatState) String() string {
	switch s {
	case SeatFold:
		return "fold"
	case SeatCheck:
		return "check"
	case SeatRaise:
		return "raise"
	default:
		return "none"
	}
}

// NoSeat is the sentinel for "no seat", e.g. between rounds.
const NoSeat = -1

// Seat is one occupied position at the table.
type Seat struct {
	ID   int
	Name string
	Bot  bool

	Stack     int
	HoleCards []poker.Card
	RoundBet  int // committed this betting round

	IsFold      bool
	IsAllIn     bool
	RoundPlayed bool
	State       SeatState

	TurnTimeLeft int // whole seconds, for display only
	IsDealer     bool
	IsSmallBlind bool
	IsBigBlind   bool
	IsPlayerTurn bool
	Available    []string

	InHand   bool // dealt into the current hand
	Leaving  bool // removed at the next reset
	Revealed bool
}

// SeatSpec describes a seat joining the table.
type SeatSpec struct {
	ID    int
	Name  string
	Bot   bool
	Stack int
}

func (s *Seat) String() string {
	return fmt.Sprintf("seat %d (%s)", s.ID, s.Name)
}

// active reports whether the seat is still contesting the pot.
func (s *Seat) active() bool {
	return s.InHand && !s.IsFold
}

// canAct reports whether the seat can still put chips in.
func (s *Seat) canAct() bool {
	return s.active() && !s.IsAllIn
}

// commit moves up to amount chips from the stack into the round bet and
// returns what was moved. Emptying the stack marks the seat all-in.
func (s *Seat) commit(amount int) int {
	amount = max(0, min(amount, s.Stack))
	s.Stack -= amount
	s.RoundBet += amount
	if s.Stack == 0 && s.InHand {
		s.IsAllIn = true
	}
	return amount
}

func (s *Seat) clone() *Seat {
	c := *s
	c.HoleCards = slices.Clone(s.HoleCards)
	c.Available = slices.Clone(s.Available)
	return &c
}

// resetHand clears everything tied to the previous hand.
func (s *Seat) resetHand() {
	s.HoleCards = nil
	s.RoundBet = 0
	s.IsFold = false
	s.IsAllIn = false
	s.RoundPlayed = false
	s.State = SeatNone
	s.TurnTimeLeft = 0
	s.IsDealer = false
	s.IsSmallBlind = false
	s.IsBigBlind = false
	s.IsPlayerTurn = false
	s.Available = nil
	s.InHand = false
	s.Revealed = false
}

// resetRound clears per-round betting flags. RoundBet is moved by the pot.
func (s *Seat) resetRound() {
	s.RoundPlayed = false
	if s.State != SeatFold {
		s.State = SeatNone
	}
}

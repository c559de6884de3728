package game

import (
	"slices"

	"github.com/lox/pokertables/poker"
)

// HandRecord is everything needed to replay a hand: the seats as they were
// dealt in, the deck order and every accepted action in order.
type HandRecord struct {
	TableID    string
	HandID     string
	HandNumber int
	Variant    string
	SmallBlind int
	BigBlind   int
	MaxSeats   int
	Dealer     int

	Deck    []poker.Card
	Seats   []RecordedSeat
	Actions []RecordedAction
	Board   []poker.Card
	Reveals []Reveal
	Payouts []Payout
}

// RecordedSeat is a seat's view of one hand.
type RecordedSeat struct {
	ID             int
	Name           string
	Bot            bool
	StartingStack  int
	FinishingStack int
	HoleCards      []poker.Card
	Shown          bool
}

// RecordedAction is an accepted action. Raise records the seat's round bet
// after the raise in Total, which is all a replay needs to reproduce it.
type RecordedAction struct {
	Seat    int
	Kind    ActionKind
	Total   int
	Stage   string
	Timeout bool
	Leave   bool
}

// Reveal is a set of community cards turned over after the first After
// actions.
type Reveal struct {
	Stage string
	Cards []poker.Card
	After int
}

// Seat returns the recorded seat with the given id.
func (r *HandRecord) Seat(id int) (RecordedSeat, bool) {
	for _, s := range r.Seats {
		if s.ID == id {
			return s, true
		}
	}
	return RecordedSeat{}, false
}

func (r HandRecord) clone() HandRecord {
	c := r
	c.Deck = slices.Clone(r.Deck)
	c.Seats = slices.Clone(r.Seats)
	for i := range c.Seats {
		c.Seats[i].HoleCards = slices.Clone(c.Seats[i].HoleCards)
	}
	c.Actions = slices.Clone(r.Actions)
	c.Board = slices.Clone(r.Board)
	c.Reveals = slices.Clone(r.Reveals)
	for i := range c.Reveals {
		c.Reveals[i].Cards = slices.Clone(c.Reveals[i].Cards)
	}
	c.Payouts = slices.Clone(r.Payouts)
	return c
}

func (r *HandRecord) seat(id int) *RecordedSeat {
	for i := range r.Seats {
		if r.Seats[i].ID == id {
			return &r.Seats[i]
		}
	}
	return nil
}

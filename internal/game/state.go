package game

import (
	"fmt"
	"slices"

	"github.com/lox/pokertables/poker"
)

// WakeKind is what the single pending wake does when it fires.
type WakeKind uint8

const (
	WakeNone     WakeKind = iota
	WakeStage             // enter State.ResumeStage
	WakeNextHand          // reset after results and deal again
)

// LastAction describes the most recent thing that happened at the table.
type LastAction struct {
	Seat int    `json:"seat"`
	Text string `json:"actionText"`
}

// State is everything the engine knows about one table. It is a value: Step
// clones it before applying an event.
type State struct {
	TableID string
	Config  Config
	Variant Variant

	Stage     int // index into Variant.Stages, or StageWaiting
	Seats     []*Seat
	Deck      *poker.Deck
	Community []poker.Card
	Pot       Pot

	CurrentHighestBet int
	CallSituation     bool
	SmallBlindGiven   bool
	BigBlindGiven     bool
	BigBlindHadOption bool

	Dealer         int
	SmallBlindSeat int
	BigBlindSeat   int

	Turn      int
	TurnToken uint64

	Wake        WakeKind
	WakeToken   uint64
	ResumeStage int
	DealPending bool // DealHand emitted, waiting for EventStartHand

	HandNumber int
	HandID     string
	LastAction LastAction
	StartChips int // chips in play at hand start
	Payouts    []Payout
	Record     HandRecord
}

// NewState creates an empty table waiting for seats.
func NewState(tableID string, cfg Config) (State, error) {
	if err := cfg.Validate(); err != nil {
		return State{}, err
	}
	v, _ := LookupVariant(cfg.Variant)
	return State{
		TableID:        tableID,
		Config:         cfg,
		Variant:        v,
		Stage:          StageWaiting,
		Dealer:         NoSeat,
		SmallBlindSeat: NoSeat,
		BigBlindSeat:   NoSeat,
		Turn:           NoSeat,
		LastAction:     LastAction{Seat: NoSeat},
	}, nil
}

// Clone returns a deep copy.
func (s State) Clone() State {
	c := s
	c.Seats = make([]*Seat, len(s.Seats))
	for i, seat := range s.Seats {
		c.Seats[i] = seat.clone()
	}
	c.Deck = s.Deck.Clone()
	c.Community = slices.Clone(s.Community)
	c.Payouts = slices.Clone(s.Payouts)
	c.Record = s.Record.clone()
	return c
}

// Seat returns the seat with the given id, or nil.
func (s *State) Seat(id int) *Seat {
	i, ok := slices.BinarySearchFunc(s.Seats, id, func(seat *Seat, id int) int {
		return seat.ID - id
	})
	if !ok {
		return nil
	}
	return s.Seats[i]
}

// InHand reports whether a hand is being played.
func (s *State) InHand() bool {
	return s.Stage != StageWaiting
}

// StageSpec returns the current stage, ok is false while waiting.
func (s *State) StageSpec() (StageSpec, bool) {
	if s.Stage < 0 || s.Stage >= len(s.Variant.Stages) {
		return StageSpec{}, false
	}
	return s.Variant.Stages[s.Stage], true
}

// ActiveSeats counts seats still contesting the pot.
func (s *State) ActiveSeats() int {
	n := 0
	for _, seat := range s.Seats {
		if seat.active() {
			n++
		}
	}
	return n
}

// Chips returns the chips currently in play: in-hand stacks, round bets and
// the pot.
func (s *State) Chips() int {
	total := s.Pot.Total
	for _, seat := range s.Seats {
		if seat.InHand {
			total += seat.Stack + seat.RoundBet
		}
	}
	return total
}

// Check verifies the table invariants.
func (s *State) Check() error {
	if s.InHand() {
		if got := s.Chips(); got != s.StartChips {
			return fmt.Errorf("chips in play %d, started hand with %d", got, s.StartChips)
		}
	}
	turns := 0
	for i, seat := range s.Seats {
		if seat.Stack < 0 || seat.RoundBet < 0 {
			return fmt.Errorf("%s has negative chips: stack %d round bet %d", seat, seat.Stack, seat.RoundBet)
		}
		if i > 0 && s.Seats[i-1].ID >= seat.ID {
			return fmt.Errorf("seats out of order at %s", seat)
		}
		if seat.IsPlayerTurn {
			turns++
			if s.Turn != seat.ID {
				return fmt.Errorf("%s marked as turn but turn is %d", seat, s.Turn)
			}
		}
	}
	if turns > 1 {
		return fmt.Errorf("%d seats hold the turn", turns)
	}
	if s.Pot.Total < 0 {
		return fmt.Errorf("negative pot %d", s.Pot.Total)
	}
	return nil
}

// clockwise returns the seats after the given seat id in table order,
// wrapping around. The seat itself comes last when present.
func (s *State) clockwise(from int) []*Seat {
	return clockwiseFrom(s.Seats, from)
}

// nextSeat returns the first seat clockwise after from matching keep.
func (s *State) nextSeat(from int, keep func(*Seat) bool) *Seat {
	for _, seat := range s.clockwise(from) {
		if keep(seat) {
			return seat
		}
	}
	return nil
}

func (s *State) addSeat(seat *Seat) {
	i, _ := slices.BinarySearchFunc(s.Seats, seat.ID, func(seat *Seat, id int) int {
		return seat.ID - id
	})
	s.Seats = slices.Insert(s.Seats, i, seat)
}

func (s *State) removeSeat(id int) {
	s.Seats = slices.DeleteFunc(s.Seats, func(seat *Seat) bool { return seat.ID == id })
}

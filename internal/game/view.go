package game

import (
	"slices"

	"github.com/lox/pokertables/poker"
)

// SeatView is what a bot is allowed to see when asked to act.
type SeatView struct {
	Table     string       `json:"table"`
	HandID    string       `json:"handId"`
	Variant   string       `json:"variant"`
	Stage     string       `json:"stage"`
	Seat      int          `json:"seat"`
	Token     uint64       `json:"token"`
	HoleCards []poker.Card `json:"holeCards"`
	Community []poker.Card `json:"communityCards"`
	BoardSize int          `json:"boardSize"`

	Stack             int      `json:"stack"`
	RoundBet          int      `json:"roundBet"`
	ToCall            int      `json:"toCall"`
	Pot               int      `json:"pot"`
	CurrentHighestBet int      `json:"currentHighestBet"`
	BigBlind          int      `json:"bigBlind"`
	Available         []string `json:"actionsAvailable"`
	Opponents         int      `json:"opponents"` // other seats still in the hand
}

// CanRaise reports whether raise was granted.
func (v SeatView) CanRaise() bool {
	return slices.Contains(v.Available, OptionRaise)
}

// CanSpecial reports whether the variant's special action was granted.
func (v SeatView) CanSpecial() bool {
	for _, a := range v.Available {
		switch a {
		case OptionFold, OptionCheck, OptionCall, OptionRaise, OptionBlind:
		default:
			return true
		}
	}
	return false
}

// Action turns a decision into the seat's action. A special action that was
// not granted is played as check-or-call.
func (v SeatView) Action(d Decision) Action {
	kind := d.Kind
	if kind == Special && !v.CanSpecial() {
		kind = CheckOrCall
	}
	return Action{Seat: v.Seat, Kind: kind, Amount: d.Amount}
}

func newSeatView(s *State, seat *Seat) SeatView {
	pot := s.Pot.Total
	for _, other := range s.Seats {
		pot += other.RoundBet
	}
	return SeatView{
		Table:             s.TableID,
		HandID:            s.HandID,
		Variant:           s.Variant.Name,
		Stage:             s.Variant.StageName(s.Stage),
		Seat:              seat.ID,
		Token:             s.TurnToken,
		HoleCards:         slices.Clone(seat.HoleCards),
		Community:         slices.Clone(s.Community),
		BoardSize:         s.Variant.Board,
		Stack:             seat.Stack,
		RoundBet:          seat.RoundBet,
		ToCall:            min(s.owed(seat), seat.Stack),
		Pot:               pot,
		CurrentHighestBet: s.CurrentHighestBet,
		BigBlind:          s.Config.BigBlind,
		Available:         slices.Clone(seat.Available),
		Opponents:         s.ActiveSeats() - 1,
	}
}

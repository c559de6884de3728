package game

import (
	"slices"

	"github.com/lox/pokertables/poker"
)

// Snapshot is the frame broadcast to spectators after every step that
// changed something visible.
type Snapshot struct {
	Table             string         `json:"table"`
	HandID            string         `json:"handId,omitempty"`
	HandNumber        int            `json:"handNumber"`
	Variant           string         `json:"variant"`
	Stage             string         `json:"stage"`
	TotalPot          int            `json:"totalPot"`
	CurrentHighestBet int            `json:"currentHighestBet"`
	CallSituation     bool           `json:"callSituation"`
	CommunityCards    []poker.Card   `json:"communityCards"`
	Seats             []SeatSnapshot `json:"seats"`
	LastAction        LastAction     `json:"lastAction"`
}

// SeatSnapshot is one seat in a Snapshot. Hole cards are only included once
// the hand is revealed.
type SeatSnapshot struct {
	ID               int          `json:"id"`
	Name             string       `json:"name"`
	Stack            int          `json:"stack"`
	RoundBet         int          `json:"roundBet"`
	IsFold           bool         `json:"isFold"`
	IsAllIn          bool         `json:"isAllIn"`
	TurnTimeLeft     int          `json:"turnTimeLeft"`
	ActionsAvailable []string     `json:"actionsAvailable"`
	IsPlayerTurn     bool         `json:"isPlayerTurn"`
	IsDealer         bool         `json:"isDealer"`
	IsSmallBlind     bool         `json:"isSmallBlind"`
	IsBigBlind       bool         `json:"isBigBlind"`
	InHand           bool         `json:"inHand"`
	HoleCards        []poker.Card `json:"holeCards,omitempty"`
}

// NewSnapshot builds the public view of a state.
func NewSnapshot(s State) Snapshot {
	snap := Snapshot{
		Table:             s.TableID,
		HandID:            s.HandID,
		HandNumber:        s.HandNumber,
		Variant:           s.Variant.Name,
		Stage:             s.Variant.StageName(s.Stage),
		TotalPot:          s.Pot.Total,
		CurrentHighestBet: s.CurrentHighestBet,
		CallSituation:     s.CallSituation,
		CommunityCards:    slices.Clone(s.Community),
		Seats:             make([]SeatSnapshot, 0, len(s.Seats)),
		LastAction:        s.LastAction,
	}
	if snap.CommunityCards == nil {
		snap.CommunityCards = []poker.Card{}
	}
	for _, seat := range s.Seats {
		ss := SeatSnapshot{
			ID:               seat.ID,
			Name:             seat.Name,
			Stack:            seat.Stack,
			RoundBet:         seat.RoundBet,
			IsFold:           seat.IsFold,
			IsAllIn:          seat.IsAllIn,
			TurnTimeLeft:     seat.TurnTimeLeft,
			ActionsAvailable: slices.Clone(seat.Available),
			IsPlayerTurn:     seat.IsPlayerTurn,
			IsDealer:         seat.IsDealer,
			IsSmallBlind:     seat.IsSmallBlind,
			IsBigBlind:       seat.IsBigBlind,
			InHand:           seat.InHand,
		}
		if ss.ActionsAvailable == nil {
			ss.ActionsAvailable = []string{}
		}
		if seat.Revealed {
			ss.HoleCards = slices.Clone(seat.HoleCards)
		}
		snap.Seats = append(snap.Seats, ss)
	}
	return snap
}

// Equal reports whether two snapshots would render identically.
func (s Snapshot) Equal(o Snapshot) bool {
	if s.Table != o.Table || s.HandID != o.HandID || s.HandNumber != o.HandNumber ||
		s.Variant != o.Variant || s.Stage != o.Stage || s.TotalPot != o.TotalPot ||
		s.CurrentHighestBet != o.CurrentHighestBet || s.CallSituation != o.CallSituation ||
		s.LastAction != o.LastAction {
		return false
	}
	if !slices.Equal(s.CommunityCards, o.CommunityCards) {
		return false
	}
	return slices.EqualFunc(s.Seats, o.Seats, func(a, b SeatSnapshot) bool {
		return a.ID == b.ID && a.Name == b.Name && a.Stack == b.Stack &&
			a.RoundBet == b.RoundBet && a.IsFold == b.IsFold && a.IsAllIn == b.IsAllIn &&
			a.TurnTimeLeft == b.TurnTimeLeft && a.IsPlayerTurn == b.IsPlayerTurn &&
			a.IsDealer == b.IsDealer && a.IsSmallBlind == b.IsSmallBlind &&
			a.IsBigBlind == b.IsBigBlind && a.InHand == b.InHand &&
			slices.Equal(a.ActionsAvailable, b.ActionsAvailable) &&
			slices.Equal(a.HoleCards, b.HoleCards)
	})
}

package game

import "slices"

// Pot is the single shared pot of a hand.
type Pot struct {
	Total int
}

// Payout is what one seat won at results.
type Payout struct {
	Seat   int    `json:"seat"`
	Amount int    `json:"amount"`
	Hand   string `json:"hand,omitempty"`
}

// Collect moves every round bet into the pot and reports whether any chips
// moved.
func (p *Pot) Collect(seats []*Seat) bool {
	moved := false
	for _, s := range seats {
		if s.RoundBet > 0 {
			p.Total += s.RoundBet
			s.RoundBet = 0
			moved = true
		}
	}
	return moved
}

// Award splits the pot evenly between the winners and empties it. The chips
// that do not divide evenly go to the first winner clockwise from the dealer.
// Payouts are returned in that clockwise order.
func (p *Pot) Award(seats []*Seat, winners []int, dealer int) []Payout {
	if len(winners) == 0 {
		panic("award with no winners")
	}

	ordered := make([]*Seat, 0, len(winners))
	for _, s := range clockwiseFrom(seats, dealer) {
		if slices.Contains(winners, s.ID) {
			ordered = append(ordered, s)
		}
	}
	if len(ordered) != len(winners) {
		panic("award to a seat that is not at the table")
	}

	share := p.Total / len(ordered)
	remainder := p.Total % len(ordered)

	payouts := make([]Payout, 0, len(ordered))
	for i, s := range ordered {
		amount := share
		if i == 0 {
			amount += remainder
		}
		s.Stack += amount
		payouts = append(payouts, Payout{Seat: s.ID, Amount: amount})
	}
	p.Total = 0
	return payouts
}

// clockwiseFrom orders seats (sorted by id) starting after the given id.
func clockwiseFrom(seats []*Seat, from int) []*Seat {
	out := make([]*Seat, 0, len(seats))
	for _, s := range seats {
		if s.ID > from {
			out = append(out, s)
		}
	}
	for _, s := range seats {
		if s.ID <= from {
			out = append(out, s)
		}
	}
	return out
}

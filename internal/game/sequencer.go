package game

import (
	"fmt"
	"slices"
	"strings"

	"github.com/lox/pokertables/poker"
)

func (r *stepper) eligible(seat *Seat) bool {
	return !seat.Leaving && seat.Stack > r.s.Config.EliminationThreshold
}

func (r *stepper) maybeDeal() {
	s := r.s
	n := 0
	for _, seat := range s.Seats {
		if r.eligible(seat) {
			n++
		}
	}
	if n >= s.Config.MinSeats && !s.DealPending {
		s.DealPending = true
		r.emit(DealHand{})
	}
}

func (r *stepper) startHand(ev EventStartHand) {
	s := r.s
	if s.InHand() {
		r.reject(NoSeat, ErrHandInProgress)
		return
	}
	s.DealPending = false

	var players []*Seat
	for _, seat := range s.Seats {
		if r.eligible(seat) {
			players = append(players, seat)
		}
	}
	if len(players) < s.Config.MinSeats {
		r.reject(NoSeat, fmt.Errorf("%w: %d of %d", ErrNotEnoughSeats, len(players), s.Config.MinSeats))
		return
	}

	deck, err := poker.NewOrderedDeck(ev.Deck)
	if err != nil {
		r.reject(NoSeat, fmt.Errorf("%w: %v", ErrInvalidDeck, err))
		return
	}
	if need := r.cardsNeeded(len(players)); deck.Remaining() < need {
		r.reject(NoSeat, fmt.Errorf("%w: %d cards, need %d", ErrInvalidDeck, deck.Remaining(), need))
		return
	}

	dealer := ev.Dealer
	if dealer == NoSeat {
		dealer = s.nextSeat(s.Dealer, r.eligible).ID
	} else if seat := s.Seat(dealer); seat == nil || !r.eligible(seat) {
		r.reject(dealer, fmt.Errorf("%w: dealer %d is not playing", ErrInvalidSeat, dealer))
		return
	}

	for _, seat := range players {
		seat.InHand = true
	}
	inHand := func(seat *Seat) bool { return seat.InHand }

	s.Dealer = dealer
	if len(players) == 2 {
		s.SmallBlindSeat = dealer
	} else {
		s.SmallBlindSeat = s.nextSeat(dealer, inHand).ID
	}
	s.BigBlindSeat = s.nextSeat(s.SmallBlindSeat, inHand).ID
	s.Seat(dealer).IsDealer = true
	s.Seat(s.SmallBlindSeat).IsSmallBlind = true
	s.Seat(s.BigBlindSeat).IsBigBlind = true

	s.HandNumber++
	s.HandID = ev.HandID
	s.Deck = deck
	s.StartChips = s.Chips()
	s.Record = HandRecord{
		TableID:    s.TableID,
		HandID:     ev.HandID,
		HandNumber: s.HandNumber,
		Variant:    s.Variant.Name,
		SmallBlind: s.Config.SmallBlind,
		BigBlind:   s.Config.BigBlind,
		MaxSeats:   s.Config.MaxSeats,
		Dealer:     dealer,
		Deck:       deck.Order(),
	}
	for _, seat := range players {
		s.Record.Seats = append(s.Record.Seats, RecordedSeat{
			ID:            seat.ID,
			Name:          seat.Name,
			Bot:           seat.Bot,
			StartingStack: seat.Stack,
		})
	}
	s.LastAction = LastAction{Seat: dealer, Text: fmt.Sprintf("hand %d", s.HandNumber)}
	r.enterStage(0)
}

func (r *stepper) cardsNeeded(players int) int {
	n := 0
	for _, spec := range r.s.Variant.Stages {
		switch spec.Kind {
		case StageDeal:
			n += spec.Cards * players
		case StageReveal:
			n += spec.Cards
			if spec.Burn {
				n++
			}
		}
	}
	return n
}

func (r *stepper) draw(n int) []poker.Card {
	cards := r.s.Deck.Draw(n)
	if cards == nil {
		panic("deck exhausted")
	}
	return cards
}

// enterStage runs the entry action of stage i and keeps going until the hand
// needs outside input.
func (r *stepper) enterStage(i int) {
	s := r.s
	s.Stage = i
	spec := s.Variant.Stages[i]

	switch spec.Kind {
	case StageDeal:
		for _, seat := range s.clockwise(s.Dealer) {
			if !seat.InHand {
				continue
			}
			seat.HoleCards = r.draw(spec.Cards)
			s.Record.seat(seat.ID).HoleCards = slices.Clone(seat.HoleCards)
		}
		r.enterStage(i + 1)

	case StageReveal:
		if s.ActiveSeats() < 2 {
			r.enterStage(s.Variant.indexOf(StageResults))
			return
		}
		if spec.Burn {
			s.Deck.Burn()
		}
		cards := r.draw(spec.Cards)
		s.Community = append(s.Community, cards...)
		s.Record.Board = append(s.Record.Board, cards...)
		s.Record.Reveals = append(s.Record.Reveals, Reveal{
			Stage: spec.Name,
			Cards: cards,
			After: len(s.Record.Actions),
		})
		s.LastAction = LastAction{Seat: NoSeat, Text: spec.Name + " " + poker.FormatCards(cards)}
		r.enterStage(i + 1)

	case StageBetting:
		r.startRound(spec)

	case StageRevealAll:
		for _, seat := range s.Seats {
			if seat.active() {
				seat.Revealed = true
				s.Record.seat(seat.ID).Shown = true
			}
		}
		r.enterStage(i + 1)

	case StageResults:
		r.results()
	}
}

// finishRound collects the round bets and continues at stage next, pausing
// first when chips moved.
func (r *stepper) finishRound(next int) {
	s := r.s
	s.Wake = WakeNone
	moved := s.Pot.Collect(s.Seats)
	if s.ActiveSeats() < 2 {
		next = s.Variant.indexOf(StageResults)
	}
	if moved {
		r.scheduleWake(WakeStage, next, s.Config.CollectPause)
		return
	}
	r.enterStage(next)
}

func (r *stepper) results() {
	s := r.s
	sd, err := Resolve(r.m.eval, s.Seats, s.Community)
	if err != nil {
		panic(fmt.Sprintf("table %s: resolve hand %d: %v", s.TableID, s.HandNumber, err))
	}

	payouts := s.Pot.Award(s.Seats, sd.Winners, s.Dealer)
	for i := range payouts {
		if e, ok := sd.Hands[payouts[i].Seat]; ok {
			payouts[i].Hand = e.Category.String()
		}
	}
	s.Payouts = payouts
	s.Record.Payouts = slices.Clone(payouts)
	for i := range s.Record.Seats {
		rs := &s.Record.Seats[i]
		rs.FinishingStack = s.Seat(rs.ID).Stack
	}
	s.LastAction = LastAction{Seat: payouts[0].Seat, Text: describePayouts(payouts)}

	r.emit(HandComplete{Record: s.Record.clone()})
	r.scheduleWake(WakeNextHand, 0, s.Config.ResultsDelay)
}

func describePayouts(payouts []Payout) string {
	parts := make([]string, 0, len(payouts))
	for _, p := range payouts {
		part := fmt.Sprintf("seat %d wins %d", p.Seat, p.Amount)
		if p.Hand != "" {
			part += " with " + p.Hand
		}
		parts = append(parts, part)
	}
	return strings.Join(parts, ", ")
}

// nextHand removes departed and eliminated seats, resets the table and asks
// for a new deal when enough seats remain.
func (r *stepper) nextHand() {
	s := r.s
	s.Seats = slices.DeleteFunc(s.Seats, func(seat *Seat) bool {
		return seat.Leaving || seat.Stack <= s.Config.EliminationThreshold
	})
	for _, seat := range s.Seats {
		seat.resetHand()
	}

	s.Stage = StageWaiting
	s.Deck = nil
	s.Community = nil
	s.Pot = Pot{}
	s.CurrentHighestBet = 0
	s.CallSituation = false
	s.SmallBlindGiven, s.BigBlindGiven, s.BigBlindHadOption = false, false, false
	s.SmallBlindSeat, s.BigBlindSeat = NoSeat, NoSeat
	s.Turn = NoSeat
	s.StartChips = 0
	s.Payouts = nil
	s.Record = HandRecord{}

	r.maybeDeal()
}

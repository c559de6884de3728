package game

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/lox/pokertables/poker"
)

// Reasons an event is rejected.
var (
	ErrUnknownSeat       = errors.New("unknown seat")
	ErrNotPlaying        = errors.New("no betting round in progress")
	ErrOutOfTurn         = errors.New("not this seat's turn")
	ErrStaleTurn         = errors.New("stale turn token")
	ErrActionUnavailable = errors.New("action not available")
	ErrInvalidSeat       = errors.New("invalid seat")
	ErrSeatTaken         = errors.New("seat is taken")
	ErrHandInProgress    = errors.New("hand in progress")
	ErrNotEnoughSeats    = errors.New("not enough seats")
	ErrInvalidDeck       = errors.New("invalid deck")
)

// Event is an input to Step.
type Event interface{ isEvent() }

// EventStartHand deals a new hand from the given deck order. Dealer is the
// button seat, or NoSeat to rotate from the previous hand.
type EventStartHand struct {
	Deck   []poker.Card
	HandID string
	Dealer int
}

// EventAction is a seat's action. Token is the turn token it answers, zero
// accepts any.
type EventAction struct {
	Action Action
	Token  uint64
}

// EventTimeout is the turn clock expiring.
type EventTimeout struct {
	Seat  int
	Token uint64
}

// EventTick is a countdown tick; it only changes TurnTimeLeft.
type EventTick struct {
	Seat  int
	Token uint64
	Left  time.Duration
}

// EventWake is the single pending wake firing.
type EventWake struct {
	Token uint64
}

type EventJoin struct {
	Seat SeatSpec
}

type EventLeave struct {
	Seat int
}

func (EventStartHand) isEvent() {}
func (EventAction) isEvent()    {}
func (EventTimeout) isEvent()   {}
func (EventTick) isEvent()      {}
func (EventWake) isEvent()      {}
func (EventJoin) isEvent()      {}
func (EventLeave) isEvent()     {}

// Effect is an instruction for the runtime returned by Step.
type Effect interface{ isEffect() }

// StartClock starts the turn clock for a seat, replacing any running clock.
type StartClock struct {
	Seat    int
	Token   uint64
	Timeout time.Duration
}

// CancelClock stops the turn clock.
type CancelClock struct{}

// AskBot asks the bot in a seat for its decision.
type AskBot struct {
	Seat  int
	Token uint64
	View  SeatView
}

// ScheduleWake arms the table's single wake timer, replacing any pending one.
type ScheduleWake struct {
	Token uint64
	After time.Duration
}

// DealHand asks the runtime for a shuffled deck and a hand id.
type DealHand struct{}

// HandComplete carries the record of a finished hand.
type HandComplete struct {
	Record HandRecord
}

// Rejected reports an event that was ignored.
type Rejected struct {
	Seat int
	Err  error
}

func (StartClock) isEffect()   {}
func (CancelClock) isEffect()  {}
func (AskBot) isEffect()       {}
func (ScheduleWake) isEffect() {}
func (DealHand) isEffect()     {}
func (HandComplete) isEffect() {}
func (Rejected) isEffect()     {}

// Machine holds the stateless rules of the table.
type Machine struct {
	eval Evaluator
}

// NewMachine creates the rules engine. The evaluator is required.
func NewMachine(eval Evaluator) *Machine {
	if eval == nil {
		panic("evaluator is required")
	}
	return &Machine{eval: eval}
}

// Step applies one event to a copy of the state and returns the new state
// with the effects the runtime must carry out, in order. The input state is
// never modified.
func (m *Machine) Step(st State, ev Event) (State, []Effect) {
	next := st.Clone()
	r := &stepper{m: m, s: &next}
	r.handle(ev)
	if err := next.Check(); err != nil {
		panic(fmt.Sprintf("table %s: invariant violated after %T: %v", next.TableID, ev, err))
	}
	return next, r.effects
}

// actionSource is how an action reached the engine.
type actionSource uint8

const (
	bySeat actionSource = iota
	byTimeout
	byLeave
)

// stepper applies a single event.
type stepper struct {
	m       *Machine
	s       *State
	effects []Effect
}

func (r *stepper) emit(e Effect) {
	r.effects = append(r.effects, e)
}

func (r *stepper) reject(seat int, err error) {
	r.emit(Rejected{Seat: seat, Err: err})
}

func (r *stepper) handle(ev Event) {
	s := r.s
	switch ev := ev.(type) {
	case EventJoin:
		r.join(ev.Seat)
	case EventLeave:
		r.leave(ev.Seat)
	case EventStartHand:
		r.startHand(ev)
	case EventAction:
		if err := s.CheckAction(ev.Action, ev.Token); err != nil {
			r.reject(ev.Action.Seat, err)
			return
		}
		r.act(ev.Action, bySeat)
	case EventTimeout:
		if s.Turn != ev.Seat || s.TurnToken != ev.Token || !s.bettingOpen() {
			return
		}
		r.act(Action{Seat: ev.Seat, Kind: Fold}, byTimeout)
	case EventTick:
		if s.Turn != ev.Seat || s.TurnToken != ev.Token {
			return
		}
		if seat := s.Seat(ev.Seat); seat != nil {
			seat.TurnTimeLeft = ceilSeconds(ev.Left)
		}
	case EventWake:
		if ev.Token != s.WakeToken || s.Wake == WakeNone {
			return
		}
		kind := s.Wake
		s.Wake = WakeNone
		r.wake(kind, s.ResumeStage)
	default:
		panic(fmt.Sprintf("unknown event %T", ev))
	}
}

func (r *stepper) wake(kind WakeKind, stage int) {
	switch kind {
	case WakeStage:
		r.enterStage(stage)
	case WakeNextHand:
		r.nextHand()
	}
}

// scheduleWake replaces the pending wake. A non-positive delay runs it now.
func (r *stepper) scheduleWake(kind WakeKind, stage int, after time.Duration) {
	s := r.s
	s.WakeToken++
	if after <= 0 {
		s.Wake = WakeNone
		r.wake(kind, stage)
		return
	}
	s.Wake = kind
	s.ResumeStage = stage
	r.emit(ScheduleWake{Token: s.WakeToken, After: after})
}

func (r *stepper) join(spec SeatSpec) {
	s := r.s
	switch {
	case spec.ID < 0 || spec.ID >= s.Config.MaxSeats:
		r.reject(spec.ID, fmt.Errorf("%w: %d not in 0..%d", ErrInvalidSeat, spec.ID, s.Config.MaxSeats-1))
		return
	case s.Seat(spec.ID) != nil:
		r.reject(spec.ID, ErrSeatTaken)
		return
	case spec.Stack <= s.Config.EliminationThreshold:
		r.reject(spec.ID, fmt.Errorf("%w: stack %d is at or below the elimination threshold", ErrInvalidSeat, spec.Stack))
		return
	}
	s.addSeat(&Seat{ID: spec.ID, Name: spec.Name, Bot: spec.Bot, Stack: spec.Stack})
	s.LastAction = LastAction{Seat: spec.ID, Text: "joins"}
	if !s.InHand() && s.Wake == WakeNone {
		r.maybeDeal()
	}
}

func (r *stepper) leave(id int) {
	s := r.s
	seat := s.Seat(id)
	if seat == nil {
		r.reject(id, ErrUnknownSeat)
		return
	}
	s.LastAction = LastAction{Seat: id, Text: "leaves"}
	if !s.InHand() || !seat.InHand {
		s.removeSeat(id)
		return
	}

	seat.Leaving = true
	if spec, _ := s.StageSpec(); spec.Kind == StageResults || !seat.active() {
		return
	}
	if s.Turn == id {
		r.act(Action{Seat: id, Kind: Fold}, byLeave)
		return
	}

	r.fold(seat)
	r.record(seat, Fold, byLeave)
	if s.ActiveSeats() < 2 {
		if s.Turn != NoSeat {
			r.emit(CancelClock{})
			r.clearTurn()
		}
		r.finishRound(s.Variant.indexOf(StageResults))
	}
}

func (r *stepper) startRound(spec StageSpec) {
	s := r.s
	for _, seat := range s.Seats {
		seat.resetRound()
	}
	s.CurrentHighestBet = 0
	s.CallSituation = false

	if !spec.Blinds {
		s.SmallBlindGiven, s.BigBlindGiven, s.BigBlindHadOption = true, true, true
		// The round opens at the small blind seat itself.
		r.progress(s.SmallBlindSeat - 1)
		return
	}

	s.SmallBlindGiven, s.BigBlindGiven, s.BigBlindHadOption = false, false, false
	r.postBlind(s.Seat(s.SmallBlindSeat))
	r.postBlind(s.Seat(s.BigBlindSeat))
	r.progress(s.BigBlindSeat)
}

func (r *stepper) postBlind(seat *Seat) {
	s := r.s
	amount := seat.commit(s.owed(seat))
	name := "big"
	if seat.ID == s.SmallBlindSeat && !s.SmallBlindGiven {
		name = "small"
		s.SmallBlindGiven = true
	} else {
		s.BigBlindGiven = true
	}
	s.CurrentHighestBet = max(s.CurrentHighestBet, seat.RoundBet)
	s.LastAction = LastAction{Seat: seat.ID, Text: fmt.Sprintf("posts %s blind %d", name, amount)}
}

// progress hands the turn to the next seat after from that has to act, or
// closes the round.
func (r *stepper) progress(from int) {
	s := r.s
	for {
		if s.ActiveSeats() < 2 {
			r.finishRound(s.Variant.indexOf(StageResults))
			return
		}
		if s.RoundComplete() {
			r.finishRound(s.Stage + 1)
			return
		}

		next := s.nextSeat(from, s.needsAction)
		if next == nil {
			panic("open betting round with no seat to act")
		}
		if s.onlyActor(next) && s.owed(next) == 0 {
			// Nobody left to bet against.
			next.RoundPlayed = true
			next.State = SeatCheck
			if s.bigBlindOption(next) {
				s.BigBlindHadOption = true
			}
			from = next.ID
			continue
		}
		r.assignTurn(next)
		return
	}
}

func (r *stepper) assignTurn(seat *Seat) {
	s := r.s
	s.Turn = seat.ID
	s.TurnToken++
	seat.IsPlayerTurn = true
	seat.Available = s.options(seat)
	seat.TurnTimeLeft = ceilSeconds(s.Config.TurnTimeout)

	r.emit(StartClock{Seat: seat.ID, Token: s.TurnToken, Timeout: s.Config.TurnTimeout})
	if seat.Bot {
		r.emit(AskBot{Seat: seat.ID, Token: s.TurnToken, View: newSeatView(s, seat)})
	}
}

func (r *stepper) clearTurn() {
	s := r.s
	if seat := s.Seat(s.Turn); seat != nil {
		seat.IsPlayerTurn = false
		seat.Available = nil
		seat.TurnTimeLeft = 0
	}
	s.Turn = NoSeat
}

// act applies an accepted action by the seat holding the turn.
func (r *stepper) act(a Action, src actionSource) {
	s := r.s
	seat := s.Seat(a.Seat)
	granted := seat.Available

	r.emit(CancelClock{})
	r.clearTurn()

	kind := a.Kind
	switch a.Kind {
	case Fold:
		r.fold(seat)
	case CheckOrCall, Special:
		r.call(seat)
	case Raise:
		if !slices.Contains(granted, OptionRaise) {
			kind = CheckOrCall
			r.call(seat)
			break
		}
		r.raise(seat, a.Amount)
		if seat.State != SeatRaise {
			kind = CheckOrCall
		}
	}

	if seat.RoundBet > s.CurrentHighestBet {
		s.CurrentHighestBet = seat.RoundBet
		s.CallSituation = true
	}
	if s.bigBlindOption(seat) {
		s.BigBlindHadOption = true
	}
	seat.RoundPlayed = true
	r.record(seat, kind, src)

	if kind == Special {
		r.finishRound(s.Variant.indexOf(StageRevealAll))
		return
	}
	r.progress(seat.ID)
}

func (r *stepper) fold(seat *Seat) {
	if r.s.pendingBlind(seat) > 0 {
		r.postBlind(seat)
	}
	seat.IsFold = true
	seat.State = SeatFold
}

func (r *stepper) call(seat *Seat) {
	if r.s.pendingBlind(seat) > 0 {
		r.postBlind(seat)
	} else {
		seat.commit(r.s.owed(seat))
	}
	seat.State = SeatCheck
}

func (r *stepper) raise(seat *Seat, amount int) {
	seat.commit(r.s.owed(seat) + max(0, amount))
	if seat.RoundBet > r.s.CurrentHighestBet {
		seat.State = SeatRaise
	} else {
		seat.State = SeatCheck
	}
}

func (r *stepper) record(seat *Seat, kind ActionKind, src actionSource) {
	s := r.s
	s.Record.Actions = append(s.Record.Actions, RecordedAction{
		Seat:    seat.ID,
		Kind:    kind,
		Total:   seat.RoundBet,
		Stage:   s.Variant.StageName(s.Stage),
		Timeout: src == byTimeout,
		Leave:   src == byLeave,
	})
	s.LastAction = LastAction{Seat: seat.ID, Text: describe(seat, kind, src, s.Variant.Special)}
}

func describe(seat *Seat, kind ActionKind, src actionSource, special string) string {
	switch kind {
	case Fold:
		switch src {
		case byTimeout:
			return "fold (timeout)"
		case byLeave:
			return "fold (left)"
		}
		return "fold"
	case Special:
		return special
	case Raise:
		if seat.IsAllIn {
			return fmt.Sprintf("all-in %d", seat.RoundBet)
		}
		return fmt.Sprintf("raise to %d", seat.RoundBet)
	}
	switch {
	case seat.IsAllIn:
		return fmt.Sprintf("all-in %d", seat.RoundBet)
	case seat.RoundBet == 0:
		return "check"
	}
	return fmt.Sprintf("call %d", seat.RoundBet)
}

func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

package game

import "slices"

// blindStage reports whether the current stage is the betting round in which
// blinds are posted.
func (s *State) blindStage() bool {
	spec, ok := s.StageSpec()
	return ok && spec.Kind == StageBetting && spec.Blinds
}

// pendingBlind returns the forced blind the seat still has to post.
func (s *State) pendingBlind(seat *Seat) int {
	if !s.blindStage() {
		return 0
	}
	switch {
	case !s.SmallBlindGiven && seat.ID == s.SmallBlindSeat:
		return s.Config.SmallBlind
	case !s.BigBlindGiven && seat.ID == s.BigBlindSeat:
		return s.Config.BigBlind
	}
	return 0
}

// owed is what a check-or-call commits before clamping to the stack.
func (s *State) owed(seat *Seat) int {
	if blind := s.pendingBlind(seat); blind > 0 {
		return max(0, blind-seat.RoundBet)
	}
	return max(0, s.CurrentHighestBet-seat.RoundBet)
}

// bigBlindOption reports whether the seat is the big blind still owed its
// option in the blind round.
func (s *State) bigBlindOption(seat *Seat) bool {
	return s.blindStage() && seat.ID == s.BigBlindSeat && !s.BigBlindHadOption
}

// FirstUnequalSeat returns the first seat, in seat order, that can act and
// has not matched the highest bet, or NoSeat.
func (s *State) FirstUnequalSeat() int {
	for _, seat := range s.Seats {
		if seat.canAct() && seat.RoundBet < s.CurrentHighestBet {
			return seat.ID
		}
	}
	return NoSeat
}

// FirstUnactedSeat returns the first seat, in seat order, that can act and
// has not acted this round, or NoSeat. The big blind counts as unacted until
// it has had its option.
func (s *State) FirstUnactedSeat() int {
	for _, seat := range s.Seats {
		if seat.canAct() && (!seat.RoundPlayed || s.bigBlindOption(seat)) {
			return seat.ID
		}
	}
	return NoSeat
}

// RoundComplete reports whether the current betting round is over.
func (s *State) RoundComplete() bool {
	return s.FirstUnequalSeat() == NoSeat &&
		s.FirstUnactedSeat() == NoSeat &&
		s.SmallBlindGiven && s.BigBlindGiven
}

// needsAction reports whether the seat has to act before the round closes.
func (s *State) needsAction(seat *Seat) bool {
	return seat.canAct() &&
		(seat.RoundBet < s.CurrentHighestBet || !seat.RoundPlayed || s.bigBlindOption(seat))
}

// onlyActor reports whether the seat is the last one able to put chips in.
func (s *State) onlyActor(seat *Seat) bool {
	for _, other := range s.Seats {
		if other.ID != seat.ID && other.canAct() {
			return false
		}
	}
	return true
}

// options lists the actions granted to a seat taking its turn.
func (s *State) options(seat *Seat) []string {
	if s.pendingBlind(seat) > 0 {
		return []string{OptionBlind}
	}
	owed := s.owed(seat)
	opts := []string{OptionFold}
	if owed == 0 {
		opts = append(opts, OptionCheck)
	} else {
		opts = append(opts, OptionCall)
	}
	if seat.Stack > owed {
		opts = append(opts, OptionRaise)
	}
	if s.Variant.Special != "" && s.ActiveSeats() == 2 {
		opts = append(opts, s.Variant.Special)
	}
	return opts
}

// CheckAction reports why an action would be rejected, or nil. token is the
// turn token the action answers; zero matches any.
func (s *State) CheckAction(a Action, token uint64) error {
	seat := s.Seat(a.Seat)
	switch {
	case seat == nil:
		return ErrUnknownSeat
	case !s.bettingOpen():
		return ErrNotPlaying
	case s.Turn != a.Seat:
		return ErrOutOfTurn
	case token != 0 && token != s.TurnToken:
		return ErrStaleTurn
	case a.Kind > Special:
		return ErrActionUnavailable
	case a.Kind == Special && !slices.Contains(seat.Available, s.Variant.Special):
		return ErrActionUnavailable
	}
	return nil
}

func (s *State) bettingOpen() bool {
	spec, ok := s.StageSpec()
	return ok && spec.Kind == StageBetting && s.Turn != NoSeat
}

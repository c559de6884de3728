package phh

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/poker"
)

// positions orders the recorded seats the way PHH lists players: small blind
// first, then clockwise. Heads-up the dealer posts the small blind.
func positions(rec game.HandRecord) []game.RecordedSeat {
	n := len(rec.Seats)
	dealer := slices.IndexFunc(rec.Seats, func(s game.RecordedSeat) bool { return s.ID == rec.Dealer })
	if n < 2 || dealer < 0 {
		return slices.Clone(rec.Seats)
	}
	start := (dealer + 1) % n
	if n == 2 {
		start = dealer
	}
	out := make([]game.RecordedSeat, 0, n)
	for i := range n {
		out = append(out, rec.Seats[(start+i)%n])
	}
	return out
}

func playerName(s game.RecordedSeat) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("seat%d", s.ID)
}

// FromRecord converts a finished hand into a history stamped with at.
func FromRecord(rec game.HandRecord, at time.Time) *HandHistory {
	order := positions(rec)
	player := make(map[int]int, len(order)) // seat id to 1-based player number

	var bots []int
	h := &HandHistory{
		Variant:           variantCode,
		Table:             rec.TableID,
		SeatCount:         rec.MaxSeats,
		Antes:             make([]int, len(order)),
		BlindsOrStraddles: make([]int, len(order)),
		MinBet:            rec.BigBlind,
		Winnings:          make([]int, len(order)),
		HandID:            rec.HandID,
		Board:             poker.CardStrings(rec.Board),
		Timestamp:         at,
	}
	for i, s := range order {
		player[s.ID] = i + 1
		h.Seats = append(h.Seats, s.ID+1)
		h.StartingStacks = append(h.StartingStacks, s.StartingStack)
		h.FinishingStacks = append(h.FinishingStacks, s.FinishingStack)
		h.Players = append(h.Players, playerName(s))
		if s.Bot {
			bots = append(bots, s.ID)
		}
	}
	if len(order) >= 2 {
		h.BlindsOrStraddles[0] = rec.SmallBlind
		h.BlindsOrStraddles[1] = rec.BigBlind
	}
	for _, p := range rec.Payouts {
		h.Winnings[player[p.Seat]-1] += p.Amount
	}

	for _, s := range order {
		h.Actions = append(h.Actions, fmt.Sprintf("d dh p%d %s", player[s.ID], formatCards(s.HoleCards)))
	}
	reveals := rec.Reveals
	flush := func(upTo int) {
		for len(reveals) > 0 && reveals[0].After <= upTo {
			h.Actions = append(h.Actions, "d db "+formatCards(reveals[0].Cards))
			reveals = reveals[1:]
		}
	}
	for i, a := range rec.Actions {
		flush(i)
		h.Actions = append(h.Actions, FormatAction(player[a.Seat], a))
	}
	flush(len(rec.Actions))
	for _, s := range order {
		if s.Shown {
			h.Actions = append(h.Actions, fmt.Sprintf("p%d sm %s", player[s.ID], formatCards(s.HoleCards)))
		}
	}

	h.Metadata = map[string]any{
		metaGame:       rec.Variant,
		metaDeck:       poker.FormatCards(rec.Deck),
		metaDealer:     rec.Dealer,
		metaHandNumber: rec.HandNumber,
	}
	if len(bots) > 0 {
		h.Metadata[metaBots] = bots
	}
	populateTimeFields(h)
	return h
}

// Record converts a history written by FromRecord back into a hand record.
// PHH keeps the round total only for raises, so other actions come back with
// a zero Total and payouts without a hand name; game.Replay regenerates
// both.
func (h *HandHistory) Record() (game.HandRecord, error) {
	name, _ := h.Metadata[metaGame].(string)
	v, ok := game.LookupVariant(name)
	if !ok {
		return game.HandRecord{}, fmt.Errorf("%w: unknown game %q", ErrInvalidHistory, name)
	}
	deckText, _ := h.Metadata[metaDeck].(string)
	deck, err := parseCards(deckText)
	if err != nil || len(deck) == 0 {
		return game.HandRecord{}, fmt.Errorf("%w: missing or bad deck", ErrInvalidHistory)
	}
	dealer, ok := metaInt(h.Metadata[metaDealer])
	if !ok {
		return game.HandRecord{}, fmt.Errorf("%w: missing dealer", ErrInvalidHistory)
	}
	handNumber, _ := metaInt(h.Metadata[metaHandNumber])
	bots := metaInts(h.Metadata[metaBots])

	n := len(h.Players)
	if n < 2 || len(h.Seats) != n || len(h.StartingStacks) != n || len(h.BlindsOrStraddles) != n {
		return game.HandRecord{}, fmt.Errorf("%w: %d players with %d seats, %d stacks and %d blinds",
			ErrInvalidHistory, n, len(h.Seats), len(h.StartingStacks), len(h.BlindsOrStraddles))
	}

	rec := game.HandRecord{
		TableID:    h.Table,
		HandID:     h.HandID,
		HandNumber: handNumber,
		Variant:    v.Name,
		SmallBlind: h.BlindsOrStraddles[0],
		BigBlind:   h.BlindsOrStraddles[1],
		MaxSeats:   h.SeatCount,
		Dealer:     dealer,
		Deck:       deck,
	}
	seats := make([]game.RecordedSeat, n)
	for i := range n {
		id := h.Seats[i] - 1
		seats[i] = game.RecordedSeat{
			ID:            id,
			Name:          h.Players[i],
			Bot:           slices.Contains(bots, id),
			StartingStack: h.StartingStacks[i],
		}
		if i < len(h.FinishingStacks) {
			seats[i].FinishingStack = h.FinishingStacks[i]
		}
	}

	var revealStages []int
	stage := -1
	for i, s := range v.Stages {
		switch {
		case s.Kind == game.StageReveal:
			revealStages = append(revealStages, i)
		case s.Kind == game.StageBetting && stage < 0:
			stage = i
		}
	}

	for lineNo, line := range h.Actions {
		body, comment := splitComment(line)
		fields := strings.Fields(body)
		if len(fields) == 0 {
			continue
		}
		bad := func(why string) error {
			return fmt.Errorf("%w: action %d %q: %s", ErrInvalidHistory, lineNo, line, why)
		}

		if fields[0] == "d" {
			if len(fields) < 3 {
				return game.HandRecord{}, bad("short dealer action")
			}
			switch fields[1] {
			case "dh":
				if len(fields) < 4 {
					return game.HandRecord{}, bad("deal without cards")
				}
				p, err := playerIndex(fields[2], n)
				if err != nil {
					return game.HandRecord{}, bad(err.Error())
				}
				if seats[p].HoleCards, err = parseCards(fields[3]); err != nil {
					return game.HandRecord{}, bad(err.Error())
				}
			case "db":
				if len(revealStages) == 0 {
					return game.HandRecord{}, bad("more board cards than the game deals")
				}
				cards, err := parseCards(fields[2])
				if err != nil {
					return game.HandRecord{}, bad(err.Error())
				}
				idx := revealStages[0]
				revealStages = revealStages[1:]
				rec.Board = append(rec.Board, cards...)
				rec.Reveals = append(rec.Reveals, game.Reveal{Stage: v.Stages[idx].Name, Cards: cards, After: len(rec.Actions)})
				stage = idx + 1
			default:
				return game.HandRecord{}, bad("unknown dealer action")
			}
			continue
		}

		p, err := playerIndex(fields[0], n)
		if err != nil || len(fields) < 2 {
			return game.HandRecord{}, bad("expected pN <action>")
		}
		a := game.RecordedAction{Seat: seats[p].ID, Stage: v.StageName(stage)}
		switch fields[1] {
		case "f":
			a.Kind = game.Fold
			a.Timeout = comment == "timeout"
			a.Leave = comment == "leave"
		case "cc":
			a.Kind = game.CheckOrCall
		case "cbr":
			if len(fields) < 3 {
				return game.HandRecord{}, bad("raise without amount")
			}
			a.Kind = game.Raise
			if a.Total, err = strconv.Atoi(fields[2]); err != nil {
				return game.HandRecord{}, bad("bad raise amount")
			}
		case "sm":
			if len(fields) >= 3 {
				seats[p].Shown = true
				continue
			}
			a.Kind = game.Special
		default:
			return game.HandRecord{}, bad("unknown action")
		}
		rec.Actions = append(rec.Actions, a)
	}

	for i, s := range seats {
		if i < len(h.Winnings) && h.Winnings[i] > 0 {
			rec.Payouts = append(rec.Payouts, game.Payout{Seat: s.ID, Amount: h.Winnings[i]})
		}
	}
	// Payouts are listed clockwise from the dealer.
	slices.SortFunc(rec.Payouts, func(a, b game.Payout) int {
		return clockwiseDistance(dealer, a.Seat) - clockwiseDistance(dealer, b.Seat)
	})
	slices.SortFunc(seats, func(a, b game.RecordedSeat) int { return a.ID - b.ID })
	rec.Seats = seats
	return rec, nil
}

// clockwiseDistance ranks seat ids after from before those at or below it.
func clockwiseDistance(from, seat int) int {
	if seat > from {
		return seat - from
	}
	return seat - from + 1<<16
}

func playerIndex(token string, n int) (int, error) {
	num, ok := strings.CutPrefix(token, "p")
	if !ok {
		return 0, fmt.Errorf("not a player: %q", token)
	}
	i, err := strconv.Atoi(num)
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("no player %q", token)
	}
	return i - 1, nil
}

// metaInt accepts both freshly built (int) and decoded (int64) values.
func metaInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	}
	return 0, false
}

func metaInts(v any) []int {
	switch vs := v.(type) {
	case []int:
		return vs
	case []any:
		out := make([]int, 0, len(vs))
		for _, x := range vs {
			if n, ok := metaInt(x); ok {
				out = append(out, n)
			}
		}
		return out
	}
	return nil
}

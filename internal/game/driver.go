package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lox/pokertables/internal/gameid"
	"github.com/lox/pokertables/poker"
)

// ErrReplayMismatch is returned when a replayed hand ends differently from
// its record.
var ErrReplayMismatch = errors.New("replay diverged from record")

// Driver plays hands synchronously without clocks: pauses elapse instantly
// and bots are asked inline. Every seat must be a bot.
type Driver struct {
	machine  *Machine
	state    State
	bots     map[int]BotDecisionProvider
	rng      *rand.Rand
	ids      *gameid.Generator
	recorder Recorder
	logger   *log.Logger

	target int // hands to deal before stopping
	played int
	hands  []HandRecord
}

// DriverOption configures a Driver.
type DriverOption func(*Driver)

// WithDriverRecorder stores every finished hand.
func WithDriverRecorder(r Recorder) DriverOption {
	return func(d *Driver) { d.recorder = r }
}

// WithDriverLogger sets the parent logger.
func WithDriverLogger(l *log.Logger) DriverOption {
	return func(d *Driver) { d.logger = l }
}

// WithDriverIDs sets the hand id generator.
func WithDriverIDs(g *gameid.Generator) DriverOption {
	return func(d *Driver) { d.ids = g }
}

// NewDriver creates a driver for one table. rng shuffles every deck.
func NewDriver(id string, cfg Config, eval Evaluator, rng *rand.Rand, opts ...DriverOption) (*Driver, error) {
	st, err := NewState(id, cfg)
	if err != nil {
		return nil, err
	}
	d := &Driver{
		machine: NewMachine(eval),
		state:   st,
		bots:    make(map[int]BotDecisionProvider),
		rng:     rng,
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.ids == nil {
		d.ids = gameid.NewGenerator(nil)
	}
	d.logger = d.logger.WithPrefix("driver").With("table", id)
	return d, nil
}

// State returns a copy of the current state.
func (d *Driver) State() State {
	return d.state.Clone()
}

// AddBot seats a bot.
func (d *Driver) AddBot(spec SeatSpec, bot BotDecisionProvider) error {
	if bot == nil {
		return fmt.Errorf("seat %d: a driver seat needs a decision provider", spec.ID)
	}
	spec.Bot = true
	d.bots[spec.ID] = bot
	if err := d.run(context.Background(), EventJoin{Seat: spec}); err != nil {
		delete(d.bots, spec.ID)
		return err
	}
	return nil
}

// RemoveBot leaves the table, folding first when in a hand.
func (d *Driver) RemoveBot(seat int) error {
	return d.run(context.Background(), EventLeave{Seat: seat})
}

// PlayHands plays up to n more hands and returns their records. It stops
// early when too few seats remain to deal.
func (d *Driver) PlayHands(ctx context.Context, n int) ([]HandRecord, error) {
	d.target = d.played + n
	d.hands = nil
	if !d.state.InHand() && d.state.DealPending {
		if err := d.run(ctx, d.newHand()); err != nil {
			return d.hands, err
		}
	}
	return d.hands, nil
}

func (d *Driver) newHand() EventStartHand {
	return EventStartHand{
		Deck:   poker.NewDeck(d.rng).Order(),
		HandID: d.ids.Generate(),
		Dealer: NoSeat,
	}
}

// run steps the machine until the queue drains. Rejections are errors here:
// every event a driver generates should be valid.
func (d *Driver) run(ctx context.Context, first Event) error {
	queue := []Event{first}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}
		ev := queue[0]
		queue = queue[1:]

		next, effects := d.machine.Step(d.state, ev)
		d.state = next

		for _, e := range effects {
			switch e := e.(type) {
			case AskBot:
				queue = append(queue, d.ask(ctx, e))
			case StartClock:
				if _, ok := d.bots[e.Seat]; !ok {
					return fmt.Errorf("seat %d has the turn and no decision provider", e.Seat)
				}
			case ScheduleWake:
				queue = append(queue, EventWake{Token: e.Token})
			case DealHand:
				if d.played < d.target {
					queue = append(queue, d.newHand())
				}
			case HandComplete:
				d.played++
				d.hands = append(d.hands, e.Record)
				if d.recorder != nil {
					if err := d.recorder.RecordHand(e.Record); err != nil {
						return fmt.Errorf("record hand %s: %w", e.Record.HandID, err)
					}
				}
			case Rejected:
				return fmt.Errorf("%T from seat %d: %w", ev, e.Seat, e.Err)
			}
		}
	}
	return nil
}

func (d *Driver) ask(ctx context.Context, ask AskBot) Event {
	decision, err := d.bots[ask.Seat].Decide(ctx, ask.View)
	if err != nil {
		d.logger.Warn("Bot decision failed, folding", "seat", ask.Seat, "error", err)
		decision = Decision{Kind: Fold}
	}
	return EventAction{Action: ask.View.Action(decision), Token: ask.Token}
}

// Replay plays a recorded hand against a fresh table and returns the new
// record. It fails with ErrReplayMismatch unless every seat finishes with the
// recorded stack.
func Replay(ctx context.Context, eval Evaluator, rec HandRecord) (HandRecord, error) {
	cfg := Config{
		Variant:      rec.Variant,
		MaxSeats:     rec.MaxSeats,
		MinSeats:     2,
		SmallBlind:   rec.SmallBlind,
		BigBlind:     rec.BigBlind,
		TurnTimeout:  time.Second,
		ResultsDelay: 0,
	}
	st, err := NewState(rec.TableID, cfg)
	if err != nil {
		return HandRecord{}, fmt.Errorf("replay %s: %w", rec.HandID, err)
	}
	m := NewMachine(eval)

	var (
		done   *HandRecord
		replay func(Event) error
	)
	replay = func(ev Event) error {
		next, effects := m.Step(st, ev)
		st = next
		for _, e := range effects {
			switch e := e.(type) {
			case Rejected:
				return fmt.Errorf("%T from seat %d: %w", ev, e.Seat, e.Err)
			case ScheduleWake:
				if err := replay(EventWake{Token: e.Token}); err != nil {
					return err
				}
			case HandComplete:
				r := e.Record
				done = &r
			}
		}
		return nil
	}

	for _, s := range rec.Seats {
		if err := replay(EventJoin{Seat: SeatSpec{ID: s.ID, Name: s.Name, Bot: s.Bot, Stack: s.StartingStack}}); err != nil {
			return HandRecord{}, fmt.Errorf("replay %s: %w", rec.HandID, err)
		}
	}
	start := EventStartHand{Deck: rec.Deck, HandID: rec.HandID, Dealer: rec.Dealer}
	if err := replay(start); err != nil {
		return HandRecord{}, fmt.Errorf("replay %s: %w", rec.HandID, err)
	}

	for i, a := range rec.Actions {
		if err := ctx.Err(); err != nil {
			return HandRecord{}, err
		}
		if done != nil {
			return HandRecord{}, fmt.Errorf("%w: hand over after %d of %d actions", ErrReplayMismatch, i, len(rec.Actions))
		}
		var ev Event
		switch {
		case a.Leave:
			ev = EventLeave{Seat: a.Seat}
		case a.Timeout:
			ev = EventTimeout{Seat: a.Seat, Token: st.TurnToken}
		case a.Kind == Raise:
			ev = EventAction{Action: Action{Seat: a.Seat, Kind: Raise, Amount: a.Total - st.CurrentHighestBet}}
		default:
			ev = EventAction{Action: Action{Seat: a.Seat, Kind: a.Kind}}
		}
		if err := replay(ev); err != nil {
			return HandRecord{}, fmt.Errorf("replay %s action %d: %w", rec.HandID, i, err)
		}
	}

	if done == nil {
		return HandRecord{}, fmt.Errorf("%w: hand still running after %d actions", ErrReplayMismatch, len(rec.Actions))
	}
	for _, want := range rec.Seats {
		got, ok := done.Seat(want.ID)
		if !ok || got.FinishingStack != want.FinishingStack {
			return *done, fmt.Errorf("%w: seat %d finished with %d, recorded %d",
				ErrReplayMismatch, want.ID, got.FinishingStack, want.FinishingStack)
		}
	}
	return *done, nil
}

package game

import (
	"context"
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokertables/internal/gameid"
	"github.com/lox/pokertables/poker"
)

// ErrTableStopped is returned when posting to a table whose Run has exited.
var ErrTableStopped = errors.New("table stopped")

const inboxSize = 64

// Option configures a Table.
type Option func(*Table)

// WithClock sets the clock driving turn timeouts and wakes.
func WithClock(c quartz.Clock) Option {
	return func(t *Table) { t.clock = c }
}

// WithLogger sets the parent logger.
func WithLogger(l *log.Logger) Option {
	return func(t *Table) { t.logger = l }
}

// WithBroadcaster sets where snapshots go.
func WithBroadcaster(b Broadcaster) Option {
	return func(t *Table) { t.broadcaster = b }
}

// WithRecorder stores every finished hand.
func WithRecorder(r Recorder) Option {
	return func(t *Table) { t.recorder = r }
}

// WithRand sets the RNG used to shuffle decks.
func WithRand(rng *rand.Rand) Option {
	return func(t *Table) { t.rng = rng }
}

// WithIDs sets the hand id generator.
func WithIDs(g *gameid.Generator) Option {
	return func(t *Table) { t.ids = g }
}

// envelope is one inbox entry. reply, when set, receives the rejection (or
// nil) after the event is applied.
type envelope struct {
	ev      Event
	bot     BotDecisionProvider
	inspect func(State)
	reply   chan error
}

// Table runs one table: it owns the State and serializes every event through
// its inbox.
type Table struct {
	id          string
	machine     *Machine
	clock       quartz.Clock
	turn        *TurnClock
	logger      *log.Logger
	broadcaster Broadcaster
	recorder    Recorder
	rng         *rand.Rand
	ids         *gameid.Generator

	inbox chan envelope
	done  chan struct{}

	// Owned by Run.
	state State
	bots  map[int]BotDecisionProvider
	wake  *quartz.Timer
	last  *Snapshot

	snapshot atomic.Pointer[Snapshot]
}

// New creates a table. Nothing happens until Run is called.
func New(id string, cfg Config, eval Evaluator, opts ...Option) (*Table, error) {
	st, err := NewState(id, cfg)
	if err != nil {
		return nil, err
	}
	t := &Table{
		id:          id,
		machine:     NewMachine(eval),
		clock:       quartz.NewReal(),
		logger:      log.New(io.Discard),
		broadcaster: nopBroadcaster{},
		inbox:       make(chan envelope, inboxSize),
		done:        make(chan struct{}),
		state:       st,
		bots:        make(map[int]BotDecisionProvider),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		t.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if t.ids == nil {
		t.ids = gameid.NewGenerator(nil)
	}
	t.logger = t.logger.WithPrefix("table").With("table", id)
	t.turn = NewTurnClock(t.clock, t.onExpire, t.onTick)

	snap := NewSnapshot(st)
	t.snapshot.Store(&snap)
	return t, nil
}

// ID returns the table id.
func (t *Table) ID() string { return t.id }

// Run processes events until ctx is cancelled. It returns nil on
// cancellation.
func (t *Table) Run(ctx context.Context) error {
	defer close(t.done)
	defer t.stopTimers()

	t.logger.Info("Table running", "variant", t.state.Variant.Name, "max_seats", t.state.Config.MaxSeats)
	t.publish()

	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Table stopped", "hands", t.state.HandNumber)
			return nil
		case env := <-t.inbox:
			err := t.dispatch(ctx, env)
			if env.reply != nil {
				env.reply <- err
			}
		}
	}
}

// Submit applies a seat's action and returns the reason it was rejected, if
// it was.
func (t *Table) Submit(ctx context.Context, a Action) error {
	return t.call(ctx, envelope{ev: EventAction{Action: a}})
}

// Join seats a player. A non-nil bot makes the seat bot controlled.
func (t *Table) Join(ctx context.Context, spec SeatSpec, bot BotDecisionProvider) error {
	spec.Bot = bot != nil
	return t.call(ctx, envelope{ev: EventJoin{Seat: spec}, bot: bot})
}

// Leave removes a seat, folding it first when it is in a hand.
func (t *Table) Leave(ctx context.Context, seat int) error {
	return t.call(ctx, envelope{ev: EventLeave{Seat: seat}})
}

// Inspect runs fn with the current state on the table's goroutine. fn must
// not retain the state.
func (t *Table) Inspect(ctx context.Context, fn func(State)) error {
	return t.call(ctx, envelope{inspect: fn})
}

// Snapshot returns the last published snapshot.
func (t *Table) Snapshot() Snapshot {
	return *t.snapshot.Load()
}

func (t *Table) call(ctx context.Context, env envelope) error {
	env.reply = make(chan error, 1)
	if err := t.send(ctx, env); err != nil {
		return err
	}
	select {
	case err := <-env.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrTableStopped
	}
}

func (t *Table) send(ctx context.Context, env envelope) error {
	select {
	case t.inbox <- env:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		return ErrTableStopped
	}
}

// post is used by timers and bot goroutines.
func (t *Table) post(ev Event) {
	select {
	case t.inbox <- envelope{ev: ev}:
	case <-t.done:
	}
}

func (t *Table) onExpire(seat int, token uint64) {
	t.post(EventTimeout{Seat: seat, Token: token})
}

func (t *Table) onTick(seat int, token uint64, left time.Duration) {
	t.post(EventTick{Seat: seat, Token: token, Left: left})
}

func (t *Table) dispatch(ctx context.Context, env envelope) error {
	if env.inspect != nil {
		env.inspect(t.state.Clone())
		return nil
	}
	join, ok := env.ev.(EventJoin)
	if !ok {
		return t.apply(ctx, env.ev)
	}

	// The join can start a hand whose first turn is this bot's.
	id := join.Seat.ID
	prev, had := t.bots[id]
	if env.bot != nil {
		t.bots[id] = env.bot
	} else {
		delete(t.bots, id)
	}
	err := t.apply(ctx, env.ev)
	if err != nil {
		if had {
			t.bots[id] = prev
		} else {
			delete(t.bots, id)
		}
	}
	return err
}

// apply steps the machine and carries out the effects. The turn clock is
// cancelled before an accepted action mutates anything.
func (t *Table) apply(ctx context.Context, ev Event) error {
	if a, ok := ev.(EventAction); ok && t.state.CheckAction(a.Action, a.Token) == nil {
		t.turn.Cancel()
	}

	next, effects := t.machine.Step(t.state, ev)
	t.state = next

	var (
		rejected error
		deal     bool
		asks     []AskBot
	)
	for _, e := range effects {
		switch e := e.(type) {
		case StartClock:
			t.turn.Start(e.Seat, e.Token, e.Timeout, t.state.Config.Tick)
		case CancelClock:
			t.turn.Cancel()
		case AskBot:
			asks = append(asks, e)
		case ScheduleWake:
			t.scheduleWake(e)
		case DealHand:
			deal = true
		case HandComplete:
			t.record(e.Record)
		case Rejected:
			t.logger.Warn("Event rejected", "event", fmt.Sprintf("%T", ev), "seat", e.Seat, "error", e.Err)
			rejected = e.Err
		}
	}

	t.publish()
	for _, ask := range asks {
		t.askBot(ctx, ask)
	}
	if deal {
		t.deal(ctx)
	}
	return rejected
}

func (t *Table) deal(ctx context.Context) {
	ev := EventStartHand{
		Deck:   poker.NewDeck(t.rng).Order(),
		HandID: t.ids.Generate(),
		Dealer: NoSeat,
	}
	if err := t.apply(ctx, ev); err != nil {
		t.logger.Error("Failed to start hand", "error", err)
		return
	}
	t.logger.Info("Hand started", "hand", t.state.HandNumber, "hand_id", t.state.HandID,
		"dealer", t.state.Dealer, "seats", t.state.ActiveSeats())
}

func (t *Table) askBot(ctx context.Context, ask AskBot) {
	bot, ok := t.bots[ask.Seat]
	if !ok {
		t.logger.Warn("No decision provider for bot seat", "seat", ask.Seat)
		return
	}
	go func() {
		decision, err := bot.Decide(ctx, ask.View)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			t.logger.Warn("Bot decision failed, folding", "seat", ask.Seat, "error", err)
			decision = Decision{Kind: Fold, Reason: err.Error()}
		}
		t.logger.Debug("Bot decided", "seat", ask.Seat, "action", decision.Kind,
			"amount", decision.Amount, "reason", decision.Reason)
		t.post(EventAction{Action: ask.View.Action(decision), Token: ask.Token})
	}()
}

func (t *Table) scheduleWake(e ScheduleWake) {
	if t.wake != nil {
		t.wake.Stop()
	}
	token := e.Token
	t.wake = t.clock.AfterFunc(e.After, func() {
		t.post(EventWake{Token: token})
	}, "table", "wake")
}

func (t *Table) record(rec HandRecord) {
	winners := make([]int, 0, len(rec.Payouts))
	for _, p := range rec.Payouts {
		winners = append(winners, p.Seat)
	}
	t.logger.Info("Hand complete", "hand", rec.HandNumber, "hand_id", rec.HandID,
		"winners", winners, "actions", len(rec.Actions))

	if t.recorder == nil {
		return
	}
	if err := t.recorder.RecordHand(rec); err != nil {
		t.logger.Error("Failed to record hand", "hand_id", rec.HandID, "error", err)
	}
}

// publish broadcasts the current snapshot unless it equals the last one.
func (t *Table) publish() {
	snap := NewSnapshot(t.state)
	if t.last != nil && t.last.Equal(snap) {
		return
	}
	t.last = &snap
	t.snapshot.Store(&snap)
	t.broadcaster.Broadcast(t.id, snap)
}

func (t *Table) stopTimers() {
	t.turn.Cancel()
	if t.wake != nil {
		t.wake.Stop()
	}
}

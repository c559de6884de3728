// Package server runs the configured tables behind an HTTP API: spectators
// watch snapshots over websocket, players join and act with JSON requests.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pokertables/internal/bot"
	"github.com/lox/pokertables/internal/evaluator"
	"github.com/lox/pokertables/internal/game"
	"github.com/lox/pokertables/internal/gameid"
	"github.com/lox/pokertables/internal/phh"
	"github.com/lox/pokertables/internal/randutil"
)

const shutdownTimeout = 5 * time.Second

// Server represents the poker server: its tables, their bots and the HTTP
// front end.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	clock    quartz.Clock
	hub      *Hub
	publish  Publisher
	redis    *RedisPublisher
	recorder game.Recorder

	tables map[string]*game.Table
	order  []string
	bots   map[string][]seatedBot
}

type seatedBot struct {
	spec     game.SeatSpec
	provider game.BotDecisionProvider
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the parent logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock sets the clock every table runs on.
func WithClock(c quartz.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithRedis publishes every snapshot through client as well.
func WithRedis(client Publisher) Option {
	return func(s *Server) { s.publish = client }
}

// WithRecorder adds a recorder for finished hands.
func WithRecorder(r game.Recorder) Option {
	return func(s *Server) { s.recorder = NewRecorders(s.recorder, r) }
}

// New builds every table and bot in cfg. Nothing runs until Run.
func New(cfg *Config, eval *evaluator.Table, opts ...Option) (*Server, error) {
	s := &Server{
		cfg:    cfg,
		logger: log.New(io.Discard),
		clock:  quartz.NewReal(),
		tables: make(map[string]*game.Table),
		bots:   make(map[string][]seatedBot),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.logger = s.logger.WithPrefix("server")
	s.hub = NewHub(s.logger)
	s.recorder = NewRecorders(s.recorder, NewLogMonitor(s.logger))

	if dir := cfg.Server.HistoryDir; dir != "" {
		rec, err := phh.NewFileRecorder(dir, phh.WithClock(s.clock), phh.WithLogger(s.logger))
		if err != nil {
			return nil, err
		}
		s.recorder = NewRecorders(s.recorder, rec)
	}

	broadcasters := game.Broadcasters{s.hub}
	if s.publish != nil {
		s.redis = NewRedisPublisher(s.publish, cfg.Server.RedisChannel, DefaultRedisBuffer, s.logger)
		broadcasters = append(broadcasters, s.redis)
	}

	for _, tc := range cfg.Tables {
		gcfg, err := tc.GameConfig()
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}
		tableOpts := []game.Option{
			game.WithClock(s.clock),
			game.WithLogger(s.logger),
			game.WithBroadcaster(broadcasters),
			game.WithRecorder(s.recorder),
		}
		if tc.Seed != 0 {
			tableOpts = append(tableOpts,
				game.WithRand(randutil.Derive(tc.Seed, "deck/"+tc.Name)),
				game.WithIDs(gameid.NewGenerator(randutil.Reader(tc.Seed, "ids/"+tc.Name))))
		}
		t, err := game.New(tc.Name, gcfg, eval, tableOpts...)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}
		s.tables[tc.Name] = t
		s.order = append(s.order, tc.Name)

		for i, bc := range cfg.BotsAt(tc.Name) {
			provider, err := bot.New(bot.Spec{Name: bc.Name, Strategy: bc.Strategy, Seed: bc.Seed, Endpoint: bc.Endpoint},
				bot.Deps{Evaluator: eval, Logger: s.logger})
			if err != nil {
				return nil, err
			}
			s.bots[tc.Name] = append(s.bots[tc.Name], seatedBot{
				spec:     game.SeatSpec{ID: i, Name: bc.Name, Stack: bc.Stack},
				provider: provider,
			})
		}
	}
	return s, nil
}

// Table returns a table by id.
func (s *Server) Table(id string) (*game.Table, bool) {
	t, ok := s.tables[id]
	return t, ok
}

// Hub returns the spectator hub.
func (s *Server) Hub() *Hub { return s.hub }

// RunTables runs every table, seats the configured bots and, when
// configured, the redis publisher. It returns when ctx is cancelled or a
// table fails.
func (s *Server) RunTables(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, id := range s.order {
		t := s.tables[id]
		g.Go(func() error { return t.Run(ctx) })
		g.Go(func() error { return s.seatBots(ctx, t) })
	}
	if s.redis != nil {
		g.Go(func() error { return s.redis.Run(ctx) })
	}
	err := g.Wait()
	s.hub.Close()
	s.closeBots()
	return err
}

func (s *Server) seatBots(ctx context.Context, t *game.Table) error {
	for _, b := range s.bots[t.ID()] {
		if err := t.Join(ctx, b.spec, b.provider); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("seat bot %s at %s: %w", b.spec.Name, t.ID(), err)
		}
		s.logger.Info("Bot seated", "table", t.ID(), "bot", b.spec.Name, "seat", b.spec.ID, "stack", b.spec.Stack)
	}
	return nil
}

func (s *Server) closeBots() {
	for _, bots := range s.bots {
		for _, b := range bots {
			if c, ok := b.provider.(io.Closer); ok {
				_ = c.Close()
			}
		}
	}
}

// Run serves HTTP on the configured address alongside RunTables until ctx
// is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Address, err)
	}
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second}
	s.logger.Info("Starting server", "addr", ln.Addr().String(), "tables", len(s.tables))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.RunTables(ctx) })
	g.Go(func() error {
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /tables", s.handleTables)
	mux.HandleFunc("GET /tables/{id}", s.withTable(s.handleSnapshot))
	mux.HandleFunc("GET /tables/{id}/watch", s.withTable(s.handleWatch))
	mux.HandleFunc("POST /tables/{id}/seats", s.withTable(s.handleJoin))
	mux.HandleFunc("DELETE /tables/{id}/seats/{seat}", s.withTable(s.handleLeave))
	mux.HandleFunc("POST /tables/{id}/actions", s.withTable(s.handleAction))
	return mux
}

// JoinRequest seats a human player.
type JoinRequest struct {
	Seat  int    `json:"seat"`
	Name  string `json:"name"`
	Stack int    `json:"stack"`
}

// ActionRequest is a seat's move. Amount is on top of the call for raises.
type ActionRequest struct {
	Seat   int    `json:"seat"`
	Action string `json:"action"`
	Amount int    `json:"amount,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "OK")
}

func (s *Server) handleTables(w http.ResponseWriter, _ *http.Request) {
	snaps := make([]game.Snapshot, 0, len(s.order))
	for _, id := range s.order {
		snaps = append(snaps, s.tables[id].Snapshot())
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Server) withTable(h func(http.ResponseWriter, *http.Request, *game.Table)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		t, ok := s.tables[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown table"})
			return
		}
		h(w, r, t)
	}
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request, t *game.Table) {
	writeJSON(w, http.StatusOK, t.Snapshot())
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request, t *game.Table) {
	s.hub.ServeWatch(w, r, t.ID())
}

func (s *Server) handleJoin(w http.ResponseWriter, r *http.Request, t *game.Table) {
	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	err := t.Join(r.Context(), game.SeatSpec{ID: req.Seat, Name: req.Name, Stack: req.Stack}, nil)
	reply(w, t, http.StatusCreated, err)
}

func (s *Server) handleLeave(w http.ResponseWriter, r *http.Request, t *game.Table) {
	seat, err := strconv.Atoi(r.PathValue("seat"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "seat must be a number"})
		return
	}
	reply(w, t, http.StatusOK, t.Leave(r.Context(), seat))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request, t *game.Table) {
	var req ActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	kind, err := game.ParseActionKind(req.Action)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var src game.PlayerActionSource = t
	reply(w, t, http.StatusAccepted, src.Submit(r.Context(), game.Action{Seat: req.Seat, Kind: kind, Amount: req.Amount}))
}

// reply answers with the table's snapshot, or maps the error onto a status
// code.
func reply(w http.ResponseWriter, t *game.Table, ok int, err error) {
	switch {
	case err == nil:
		writeJSON(w, ok, t.Snapshot())
	case errors.Is(err, game.ErrTableStopped):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, game.ErrInvalidSeat), errors.Is(err, game.ErrUnknownSeat):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

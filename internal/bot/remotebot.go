package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokertables/internal/game"
)

// DefaultRemoteTimeout bounds one round trip when the caller's context has no
// deadline.
const DefaultRemoteTimeout = 5 * time.Second

// ErrRemoteDecision is returned when the remote model answers with something
// that is not a decision.
var ErrRemoteDecision = errors.New("bad remote decision")

// RemoteRequest is the message a remote model receives for every turn.
type RemoteRequest struct {
	Type string        `json:"type"`
	View game.SeatView `json:"view"`
}

// RemoteBot asks a model behind a websocket for each decision. The
// connection is dialed lazily and redialed after any failure. The model
// replies with a JSON game.Decision, e.g. {"kind":"raise","amount":40}.
type RemoteBot struct {
	endpoint string
	dialer   *websocket.Dialer
	timeout  time.Duration
	logger   *log.Logger

	mu   sync.Mutex
	conn *websocket.Conn
}

// RemoteOption configures a RemoteBot.
type RemoteOption func(*RemoteBot)

// WithRemoteLogger sets the logger.
func WithRemoteLogger(l *log.Logger) RemoteOption {
	return func(b *RemoteBot) { b.logger = l }
}

// WithRemoteTimeout overrides DefaultRemoteTimeout.
func WithRemoteTimeout(d time.Duration) RemoteOption {
	return func(b *RemoteBot) { b.timeout = d }
}

// NewRemoteBot creates a bot for a ws:// or wss:// endpoint; http and https
// are converted.
func NewRemoteBot(endpoint string, opts ...RemoteOption) *RemoteBot {
	b := &RemoteBot{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
		timeout:  DefaultRemoteTimeout,
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.WithPrefix("remote")
	return b
}

func (b *RemoteBot) Decide(ctx context.Context, v game.SeatView) (game.Decision, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	conn, err := b.connect(ctx)
	if err != nil {
		return game.Decision{}, err
	}
	d, err := roundTrip(ctx, conn, v)
	if err != nil {
		b.logger.Warn("Remote decision failed, dropping connection", "endpoint", b.endpoint, "error", err)
		conn.Close()
		b.conn = nil
		return game.Decision{}, err
	}
	return d, nil
}

// Close drops the connection, if any.
func (b *RemoteBot) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil
	}
	err := b.conn.Close()
	b.conn = nil
	return err
}

func (b *RemoteBot) connect(ctx context.Context) (*websocket.Conn, error) {
	if b.conn != nil {
		return b.conn, nil
	}
	u, err := url.Parse(b.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	conn, _, err := b.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", u, err)
	}
	b.logger.Info("Connected to remote model", "endpoint", u.String())
	b.conn = conn
	return conn, nil
}

func roundTrip(ctx context.Context, conn *websocket.Conn, v game.SeatView) (game.Decision, error) {
	deadline, _ := ctx.Deadline()
	// Unblock the read if the context ends first.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return game.Decision{}, err
	}
	if err := conn.WriteJSON(RemoteRequest{Type: "decide", View: v}); err != nil {
		return game.Decision{}, fmt.Errorf("send view: %w", err)
	}
	if err := conn.SetReadDeadline(deadline); err != nil {
		return game.Decision{}, err
	}
	var d game.Decision
	if err := conn.ReadJSON(&d); err != nil {
		if ctx.Err() != nil {
			return game.Decision{}, ctx.Err()
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return game.Decision{}, fmt.Errorf("no decision from model: %w", context.DeadlineExceeded)
		}
		return game.Decision{}, fmt.Errorf("%w: %w", ErrRemoteDecision, err)
	}
	if d.Amount < 0 {
		return game.Decision{}, fmt.Errorf("%w: negative amount %d", ErrRemoteDecision, d.Amount)
	}
	return d, nil
}

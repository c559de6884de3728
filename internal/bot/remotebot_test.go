package bot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/pokertables/internal/game"
)

// modelServer answers every request with reply(view). A nil reply means the
// model never answers.
func modelServer(t *testing.T, reply func(RemoteRequest) any) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var conns atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conns.Add(1)
		for {
			var req RemoteRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			msg := reply(req)
			if msg == nil {
				continue
			}
			if s, ok := msg.(string); ok {
				err = conn.WriteMessage(websocket.TextMessage, []byte(s))
			} else {
				err = conn.WriteJSON(msg)
			}
			if err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &conns
}

func TestRemoteBotRoundTrip(t *testing.T) {
	t.Parallel()
	srv, conns := modelServer(t, func(req RemoteRequest) any {
		if req.View.ToCall > 0 {
			return map[string]any{"kind": "call"}
		}
		return map[string]any{"kind": "raise", "amount": 40, "reason": "model says so"}
	})

	b := NewRemoteBot(srv.URL, WithRemoteLogger(quietLogger()))
	t.Cleanup(func() { _ = b.Close() })
	ctx := context.Background()

	d, err := b.Decide(ctx, view("AsAh", "", 0, 15))
	require.NoError(t, err)
	assert.Equal(t, game.Decision{Kind: game.Raise, Amount: 40, Reason: "model says so"}, d)

	d, err = b.Decide(ctx, view("AsAh", "", 10, 15))
	require.NoError(t, err)
	assert.Equal(t, game.CheckOrCall, d.Kind)
	assert.Equal(t, int32(1), conns.Load(), "connection is reused")
}

func TestRemoteBotBadReplyRedials(t *testing.T) {
	t.Parallel()
	var calls atomic.Int32
	srv, conns := modelServer(t, func(RemoteRequest) any {
		if calls.Add(1) == 1 {
			return "not json"
		}
		return map[string]any{"kind": "fold"}
	})

	b := NewRemoteBot(strings.Replace(srv.URL, "http", "ws", 1), WithRemoteLogger(quietLogger()))
	t.Cleanup(func() { _ = b.Close() })

	_, err := b.Decide(context.Background(), view("AsAh", "", 10, 15))
	assert.ErrorIs(t, err, ErrRemoteDecision)

	d, err := b.Decide(context.Background(), view("AsAh", "", 10, 15))
	require.NoError(t, err)
	assert.Equal(t, game.Fold, d.Kind)
	assert.Equal(t, int32(2), conns.Load())
}

func TestRemoteBotTimesOut(t *testing.T) {
	t.Parallel()
	srv, _ := modelServer(t, func(RemoteRequest) any { return nil })

	b := NewRemoteBot(srv.URL, WithRemoteLogger(quietLogger()), WithRemoteTimeout(50*time.Millisecond))
	t.Cleanup(func() { _ = b.Close() })

	start := time.Now()
	_, err := b.Decide(context.Background(), view("AsAh", "", 10, 15))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestRemoteBotUnreachable(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	b := NewRemoteBot(srv.URL, WithRemoteLogger(quietLogger()))
	_, err := b.Decide(context.Background(), view("AsAh", "", 10, 15))
	assert.Error(t, err)
}

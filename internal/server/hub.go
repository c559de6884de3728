package server

import (
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/pokertables/internal/game"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Spectators never send anything but control frames.
	maxMessageSize = 512

	// Frames buffered per spectator before it is considered too slow.
	sendBuffer = 64
)

// Hub fans table snapshots out to websocket spectators. Broadcast never
// blocks: a spectator whose buffer is full is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *log.Logger

	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{}
	last     map[string][]byte
}

type watcher struct {
	table string
	conn  *websocket.Conn
	send  chan []byte
	once  sync.Once
}

// NewHub creates an empty hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Spectating is read-only, so any origin may watch.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		logger:   logger.WithPrefix("hub"),
		watchers: make(map[string]map[*watcher]struct{}),
		last:     make(map[string][]byte),
	}
}

// Broadcast implements game.Broadcaster.
func (h *Hub) Broadcast(tableID string, snap game.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.logger.Error("Failed to encode snapshot", "table", tableID, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last[tableID] = data
	for w := range h.watchers[tableID] {
		select {
		case w.send <- data:
		default:
			h.logger.Warn("Spectator too slow, disconnecting", "table", tableID)
			h.dropLocked(w)
		}
	}
}

// Watchers returns how many spectators follow a table.
func (h *Hub) Watchers(tableID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers[tableID])
}

// ServeWatch upgrades the request and streams the table's snapshots,
// starting with the latest one.
func (h *Hub) ServeWatch(w http.ResponseWriter, r *http.Request, tableID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}
	wt := &watcher{table: tableID, conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.watchers[tableID] == nil {
		h.watchers[tableID] = make(map[*watcher]struct{})
	}
	h.watchers[tableID][wt] = struct{}{}
	if last := h.last[tableID]; last != nil {
		wt.send <- last
	}
	h.mu.Unlock()
	h.logger.Info("Spectator connected", "table", tableID, "remote", conn.RemoteAddr())

	go h.writePump(wt)
	h.readPump(wt)
}

// Close disconnects every spectator.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ws := range h.watchers {
		for w := range ws {
			h.dropLocked(w)
		}
	}
}

func (h *Hub) drop(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(w)
}

func (h *Hub) dropLocked(w *watcher) {
	w.once.Do(func() {
		delete(h.watchers[w.table], w)
		close(w.send)
	})
}

// readPump discards client frames and notices when the peer goes away.
func (h *Hub) readPump(w *watcher) {
	defer h.drop(w)

	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Spectator read error", "table", w.table, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(w *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = w.conn.Close()
		h.logger.Info("Spectator disconnected", "table", w.table)
	}()

	for {
		select {
		case data, ok := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = w.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.drop(w)
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(w)
				return
			}
		}
	}
}

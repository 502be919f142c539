package server

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ngclient/ngutils/pkg/middleware"
	"github.com/ngclient/ngutils/pkg/ngutils"
)

const (
	// pongWait is how long a watch socket may stay silent before it is
	// considered dead.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait.
	pingPeriod = pongWait * 9 / 10
)

// Hub fans the changes of one client model out to its watch sockets.
//
// Every socket first receives the current model, then each later change in
// sequence order. A notification whose sequence number is not newer than
// what a socket already has is skipped for that socket.
type Hub struct {
	mu       sync.Mutex
	watchers map[*websocket.Conn]*watcher
	closed   bool

	writeWait time.Duration
	metrics   *middleware.Metrics
	logger    *slog.Logger
}

type watcher struct {
	conn *websocket.Conn
	last uint64
}

// NewHub creates an empty hub.
func NewHub(writeWait time.Duration, metrics *middleware.Metrics, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		watchers:  make(map[*websocket.Conn]*watcher),
		writeWait: writeWait,
		metrics:   metrics,
		logger:    logger,
	}
}

// Add registers conn and sends it the model returned by current.
// current is called with the hub locked, so no change can slip in between
// the initial model and the first broadcast the socket sees.
func (h *Hub) Add(conn *websocket.Conn, current func() ngutils.Change) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return websocket.ErrCloseSent
	}

	c := current()
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := h.write(conn, data); err != nil {
		return err
	}

	h.watchers[conn] = &watcher{conn: conn, last: c.Seq}
	h.metrics.WatcherConnected()
	return nil
}

// Remove unregisters conn and closes it.
func (h *Hub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.watchers[conn]
	delete(h.watchers, conn)
	h.mu.Unlock()

	if ok {
		h.metrics.WatcherDisconnected()
	}
	conn.Close()
}

// Broadcast sends c to every watcher that has not seen it yet. Sockets that
// fail to take the write are dropped.
func (h *Hub) Broadcast(c ngutils.Change) {
	data, err := json.Marshal(c)
	if err != nil {
		h.logger.Error("encode change", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, w := range h.watchers {
		if c.Seq <= w.last {
			continue
		}
		if err := h.write(conn, data); err != nil {
			h.logger.Debug("watch write failed", "error", err)
			h.metrics.WatchError("write")
			h.metrics.WatcherDisconnected()
			delete(h.watchers, conn)
			conn.Close()
			continue
		}
		w.last = c.Seq
	}
}

// Count returns the number of connected watchers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

// Close sends a close frame to every watcher and disconnects them.
// Later calls to Add fail.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "client closed")
	for conn := range h.watchers {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.writeWait))
		conn.Close()
		delete(h.watchers, conn)
		h.metrics.WatcherDisconnected()
	}
}

func (h *Hub) write(conn *websocket.Conn, data []byte) error {
	if h.writeWait > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeWait))
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// keepAlive pings conn until done is closed or a ping fails.
// WriteControl may run concurrently with the hub's writes.
func keepAlive(conn *websocket.Conn, writeWait time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

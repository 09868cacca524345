package events

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	defaultWriteTimeout = 5 * time.Second
	defaultPingInterval = 30 * time.Second
)

type envelope struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub broadcasts events to connected dashboard clients over WebSocket.
type Hub struct {
	mu       sync.Mutex
	conns    map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	logger   *zap.Logger

	writeTimeout time.Duration
	pingInterval time.Duration
}

// NewHub builds an event hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:       logger,
		writeTimeout: defaultWriteTimeout,
		pingInterval: defaultPingInterval,
	}
}

// HandleWS upgrades the request and keeps the connection registered until
// the client goes away.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	h.conns[conn] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("event feed client connected", zap.String("remote", conn.RemoteAddr().String()))

	go h.readLoop(conn)
}

// readLoop drains incoming frames so pings/pongs and close frames are
// processed; the feed itself is one-way.
func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		conn.Close()
	}
	h.mu.Unlock()
}

// Start runs the keepalive ping loop until the context is cancelled.
func (h *Hub) Start(ctx context.Context) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case <-ticker.C:
			h.mu.Lock()
			for conn := range h.conns {
				conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					delete(h.conns, conn)
					conn.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for conn := range h.conns {
		conn.Close()
		delete(h.conns, conn)
	}
	h.mu.Unlock()
}

// Transaction broadcasts a purchase outcome.
func (h *Hub) Transaction(event TransactionEvent) {
	h.broadcast(envelope{Type: "transaction", Data: event})
}

// AdminAction broadcasts an administrative action.
func (h *Hub) AdminAction(event AdminEvent) {
	h.broadcast(envelope{Type: "admin_action", Data: event})
}

func (h *Hub) broadcast(msg envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn("event feed write failed, dropping client", zap.Error(err))
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"smartcashpower/backend/services/vending-service/internal/models"
)

func dialHub(t *testing.T, hub *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(hub.HandleWS))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	waitForClients(t, hub, 1)
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.Lock()
		n := len(hub.conns)
		hub.mu.Unlock()
		if n == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("hub never reached %d clients", want)
}

func TestHubBroadcastsTransactionEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub)

	hub.Transaction(TransactionEvent{
		TransactionID: 7,
		UserID:        1,
		MeterNumber:   "MTR-1001",
		Amount:        1000,
		Status:        models.TransactionSuccess,
		Reference:     "ref-7",
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type string           `json:"type"`
		Data TransactionEvent `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "transaction" {
		t.Fatalf("unexpected envelope type %q", msg.Type)
	}
	if msg.Data.TransactionID != 7 || msg.Data.Status != models.TransactionSuccess {
		t.Fatalf("unexpected event %+v", msg.Data)
	}
}

func TestHubBroadcastsAdminEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub)

	hub.AdminAction(AdminEvent{AdminID: 3, Action: "BLOCK_USER", Entity: "user", TargetID: "5"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg struct {
		Type string     `json:"type"`
		Data AdminEvent `json:"data"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Type != "admin_action" || msg.Data.Action != "BLOCK_USER" {
		t.Fatalf("unexpected envelope %+v", msg)
	}
}

func TestHubDropsClosedClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dialHub(t, hub)

	conn.Close()
	waitForClients(t, hub, 0)

	// Broadcasting with no clients must not panic or block.
	hub.Transaction(TransactionEvent{TransactionID: 1})
}

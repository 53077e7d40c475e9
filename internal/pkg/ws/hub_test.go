package ws

import (
	"Forwarder/internal/model"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

func newTestServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ws/forwarded", hub.ServeWS)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/forwarded"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	a := dial(t, srv)
	b := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 2 })

	post := &model.Post{ID: "post_9", Title: "Breaking", Content: "c", Author: "a", Priority: 3, Forwarded: true}
	if err := hub.Deliver(context.Background(), post); err != nil {
		t.Fatalf("Deliver() error = %v", err)
	}

	for _, conn := range []*websocket.Conn{a, b} {
		_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("ReadMessage() error = %v", err)
		}
		var got model.Post
		if err := json.Unmarshal(raw, &got); err != nil || got.ID != "post_9" {
			t.Fatalf("message %s err %v", raw, err)
		}
	}
}

func TestHubDisconnectAndClose(t *testing.T) {
	hub := NewHub()
	srv := newTestServer(t, hub)

	conn := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })

	_ = conn.Close()
	waitFor(t, func() bool { return hub.Count() == 0 })

	if err := hub.Deliver(context.Background(), &model.Post{ID: "p"}); err != nil {
		t.Fatalf("Deliver() without subscribers error = %v", err)
	}

	other := dial(t, srv)
	waitFor(t, func() bool { return hub.Count() == 1 })
	if err := hub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	_ = other.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := other.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Fatalf("ReadMessage() error = %v, want going away close", err)
	}
}

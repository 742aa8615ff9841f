package server

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// ----------------------------------------------------------------------------
// TestWebSocketReload - publish notification reaches connected pages
// ----------------------------------------------------------------------------

func TestWebSocketReload(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, newTestShelf(t))

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	received := make(chan string, 1)
	go func() {
		_ = conn.SetReadDeadline(time.Now().Add(10 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(msg)
	}()

	// The handler may not have subscribed yet when the first broadcast
	// fires, so keep broadcasting until the message lands.
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case msg := <-received:
			if msg != "reload" {
				t.Errorf("message = %q, want %q", msg, "reload")
			}
			return
		case <-ticker.C:
			srv.NotifyReload()
		case <-deadline:
			t.Fatal("timed out waiting for reload message")
		}
	}
}

// ----------------------------------------------------------------------------
// TestNotifyReload - hub behavior without connected pages
// ----------------------------------------------------------------------------

func TestNotifyReload_NoSubscribers(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, newTestShelf(t))

	// Must not panic when nobody is listening.
	srv.NotifyReload()
	srv.NotifyReload()
}

func TestSubscribe_BroadcastCycle(t *testing.T) {
	t.Parallel()
	srv := newTestServer(t, newTestShelf(t))

	first := srv.subscribe()
	srv.NotifyReload()

	select {
	case <-first:
	default:
		t.Error("subscription not closed by NotifyReload")
	}

	second := srv.subscribe()
	select {
	case <-second:
		t.Error("fresh subscription already closed")
	default:
	}
}

package bridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

func recvEvent(t *testing.T, brd *Bridge) Event {
	t.Helper()
	select {
	case ev := <-brd.Events():
		return ev
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for bridge event")
		return Event{}
	}
}

func recvStatus(t *testing.T, brd *Bridge, want Status) {
	t.Helper()
	for {
		ev := recvEvent(t, brd)
		if ev.Kind != EventStatus {
			continue
		}
		if ev.Status == want {
			return
		}
	}
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestBridgeDeliversTelemetry(t *testing.T) {
	done := make(chan struct{})
	handler := websocket.Handler(func(conn *websocket.Conn) {
		if err := websocket.Message.Send(conn, "(9:0.61:1)"); err != nil {
			t.Errorf("send payload: %v", err)
		}
		<-done
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(done) })

	brd := New(wsURL(srv), 50*time.Millisecond)
	brd.Connect()
	t.Cleanup(brd.Disconnect)

	recvStatus(t, brd, StatusConnecting)
	recvStatus(t, brd, StatusConnected)

	for {
		ev := recvEvent(t, brd)
		if ev.Kind != EventTelemetry {
			continue
		}
		if ev.Payload != "(9:0.61:1)" {
			t.Fatalf("unexpected payload: %q", ev.Payload)
		}
		break
	}
	if brd.Status() != StatusConnected {
		t.Fatalf("expected connected status, got %v", brd.Status())
	}
}

func TestBridgeReconnectsAfterRemoteClose(t *testing.T) {
	handler := websocket.Handler(func(conn *websocket.Conn) {
		// Drop the connection immediately to force a reconnect.
		_ = conn.Close()
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	brd := New(wsURL(srv), 20*time.Millisecond)
	brd.Connect()
	t.Cleanup(brd.Disconnect)

	recvStatus(t, brd, StatusConnected)
	recvStatus(t, brd, StatusDisconnected)
	// The fixed backoff brings the connection back without intervention.
	recvStatus(t, brd, StatusConnecting)
	recvStatus(t, brd, StatusConnected)
}

func TestBridgeRetriesAfterDialError(t *testing.T) {
	brd := New("ws://127.0.0.1:1/feed", 20*time.Millisecond)
	brd.Connect()
	t.Cleanup(brd.Disconnect)

	recvStatus(t, brd, StatusConnecting)
	recvStatus(t, brd, StatusError)
	recvStatus(t, brd, StatusConnecting)
	recvStatus(t, brd, StatusError)
}

func TestDisconnectStopsRetry(t *testing.T) {
	brd := New("ws://127.0.0.1:1/feed", 20*time.Millisecond)
	brd.Connect()
	recvStatus(t, brd, StatusError)
	brd.Disconnect()

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		if brd.Status() == StatusDisconnected {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected disconnected status after Disconnect, got %v", brd.Status())
}

func TestOriginFor(t *testing.T) {
	if got := originFor("ws://127.0.0.1:9230/telemetry"); got != "http://127.0.0.1:9230/telemetry" {
		t.Fatalf("unexpected origin: %q", got)
	}
	if got := originFor("wss://bridge.local/feed"); got != "https://bridge.local/feed" {
		t.Fatalf("unexpected origin: %q", got)
	}
}

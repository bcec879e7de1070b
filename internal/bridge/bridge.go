// Package bridge maintains the connection to the hardware telemetry bridge.
package bridge

import (
	"strings"
	"sync"
	"time"

	"golang.org/x/net/websocket"
)

// DefaultRetry is the fixed backoff between reconnect attempts.
const DefaultRetry = 3000 * time.Millisecond

// Status is the connection state exposed to the core.
type Status int

// Connection states.
const (
	StatusDisconnected Status = iota
	StatusConnecting
	StatusConnected
	StatusError
)

// String returns a display label for the status.
func (s Status) String() string {
	switch s {
	case StatusDisconnected:
		return "disconnected"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// EventKind discriminates bridge events.
type EventKind int

// Event kinds.
const (
	EventStatus EventKind = iota
	EventTelemetry
)

// Event is one bridge notification. All events for a connection are
// delivered on a single channel in arrival order.
type Event struct {
	Kind    EventKind
	Status  Status
	Payload string
}

// Bridge is a websocket client for the hardware bridge feed. The core treats
// it as opaque: it subscribes to Events and issues Connect/Disconnect.
type Bridge struct {
	url   string
	retry time.Duration

	events chan Event

	mu      sync.Mutex
	status  Status
	conn    *websocket.Conn
	stop    chan struct{}
	running bool
}

// New builds a bridge client for the given ws:// URL.
func New(url string, retry time.Duration) *Bridge {
	if retry <= 0 {
		retry = DefaultRetry
	}
	return &Bridge{
		url:    url,
		retry:  retry,
		events: make(chan Event, 64),
		status: StatusDisconnected,
	}
}

// Events returns the ordered event feed.
func (b *Bridge) Events() <-chan Event {
	return b.events
}

// Status returns the current connection status.
func (b *Bridge) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Connect starts the connection loop. It returns immediately; progress is
// reported through status events. Calling Connect on a running bridge is a
// no-op.
func (b *Bridge) Connect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return
	}
	b.running = true
	b.stop = make(chan struct{})
	go b.run(b.stop)
}

// Disconnect stops the retry loop and closes any open connection.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.stop)
	conn := b.conn
	b.conn = nil
	b.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

func (b *Bridge) run(stop chan struct{}) {
	for {
		b.setStatus(StatusConnecting)
		conn, err := websocket.Dial(b.url, "", originFor(b.url))
		if err != nil {
			b.setStatus(StatusError)
			if !b.sleep(stop) {
				b.setStatus(StatusDisconnected)
				return
			}
			continue
		}

		b.mu.Lock()
		b.conn = conn
		b.mu.Unlock()
		b.setStatus(StatusConnected)

		for {
			var payload string
			if err := websocket.Message.Receive(conn, &payload); err != nil {
				break
			}
			b.emit(Event{Kind: EventTelemetry, Payload: payload})
		}

		b.mu.Lock()
		b.conn = nil
		b.mu.Unlock()
		_ = conn.Close()
		b.setStatus(StatusDisconnected)

		select {
		case <-stop:
			return
		default:
		}
		if !b.sleep(stop) {
			return
		}
	}
}

// sleep waits one retry interval. It reports false when the bridge was told
// to stop during the wait.
func (b *Bridge) sleep(stop chan struct{}) bool {
	select {
	case <-stop:
		return false
	case <-time.After(b.retry):
		return true
	}
}

func (b *Bridge) setStatus(status Status) {
	b.mu.Lock()
	b.status = status
	b.mu.Unlock()
	b.emit(Event{Kind: EventStatus, Status: status})
}

// emit never blocks the read loop: when the consumer falls behind, the
// oldest buffered event is dropped to make room.
func (b *Bridge) emit(ev Event) {
	for {
		select {
		case b.events <- ev:
			return
		default:
		}
		select {
		case <-b.events:
		default:
		}
	}
}

func originFor(wsURL string) string {
	if strings.HasPrefix(wsURL, "wss") {
		return "https" + strings.TrimPrefix(wsURL, "wss")
	}
	return "http" + strings.TrimPrefix(wsURL, "ws")
}

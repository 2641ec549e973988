// Package hub implements the broadcast channel: a process-wide fan-out
// of typed events to websocket subscribers, keyed by topic. Delivery is
// at-most-once with no persistence; a subscriber not connected at
// publish time never sees that event.
package hub

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/averline/taskwire/internal/events"
)

const (
	writeTimeout = 5 * time.Second
	pingInterval = 30 * time.Second
	// pongTimeout is how long a subscriber may stay silent before it is
	// considered dead and dropped.
	pongTimeout = 90 * time.Second
)

// subscriber is one connected client.
type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan events.Message

	mu     sync.Mutex
	topics map[string]bool

	closeOnce sync.Once
}

func (s *subscriber) subscribed(topic string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topics[topic]
}

// Options configures a Hub.
type Options struct {
	AllowedOrigins  []string
	SendBuffer      int
	BroadcastBuffer int
}

// Hub fans events out to subscribers. Every subscriber receives
// global-scope events; project-scoped events go only to subscribers of
// the event's topic.
type Hub struct {
	upgrader   websocket.Upgrader
	sendBuffer int

	mu          sync.RWMutex
	subscribers map[*subscriber]bool

	broadcast chan events.Event
	seq       atomic.Int64
}

// New creates a Hub. Call Run to start the fan-out loop.
func New(opts Options) *Hub {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 10
	}
	if opts.BroadcastBuffer <= 0 {
		opts.BroadcastBuffer = 100
	}

	h := &Hub{
		sendBuffer:  opts.SendBuffer,
		subscribers: make(map[*subscriber]bool),
		broadcast:   make(chan events.Event, opts.BroadcastBuffer),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(opts.AllowedOrigins),
	}
	return h
}

// originChecker allows requests with no Origin header (non-browser
// clients) and any origin on the configured list.
func originChecker(allowed []string) func(*http.Request) bool {
	normalized := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		normalized[strings.TrimSuffix(o, "/")] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if normalized[strings.TrimSuffix(origin, "/")] {
			return true
		}
		slog.Warn("rejected websocket origin", "origin", origin)
		return false
	}
}

// Run processes the broadcast queue until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case event := <-h.broadcast:
			h.fanOut(event)
		}
	}
}

// Publish hands an event to the broadcast queue without blocking the
// caller. A full queue returns an error rather than back-pressuring
// the mutation path.
func (h *Hub) Publish(event events.Event) error {
	select {
	case h.broadcast <- event:
		eventsPublished.WithLabelValues(string(event.Type)).Inc()
		return nil
	default:
		return fmt.Errorf("broadcast queue full")
	}
}

// fanOut stamps a sequence number and delivers the event to every
// subscriber the event's scope selects. Slow subscribers are skipped.
func (h *Hub) fanOut(event events.Event) {
	event.Seq = h.seq.Add(1)

	scoped := events.ScopeFor(event.Type) == events.ScopeProject

	msg := events.Message{Type: events.MessageEvent, Event: &event}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers {
		if scoped && !sub.subscribed(event.Topic) {
			continue
		}
		select {
		case sub.send <- msg:
			eventsSent.Inc()
		default:
			eventsDropped.Inc()
			slog.Warn("subscriber queue full, event dropped",
				"subscriber", sub.id, "event_type", event.Type)
		}
	}
}

// ServeHTTP upgrades the connection and runs the subscriber until it
// disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	sub := &subscriber{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan events.Message, h.sendBuffer),
		topics: make(map[string]bool),
	}

	h.mu.Lock()
	h.subscribers[sub] = true
	count := len(h.subscribers)
	h.mu.Unlock()
	connectedClients.Set(float64(count))

	slog.Info("client connected", "subscriber", sub.id, "total", count)

	go h.writeLoop(sub)
	h.readLoop(sub)
}

// readLoop consumes control frames (subscribe/unsubscribe) until the
// connection fails.
func (h *Hub) readLoop(sub *subscriber) {
	defer h.remove(sub)

	sub.conn.SetReadLimit(64 * 1024)
	resetDeadline := func() {
		if err := sub.conn.SetReadDeadline(time.Now().Add(pongTimeout)); err != nil {
			slog.Debug("failed to set read deadline", "error", err)
		}
	}
	resetDeadline()
	sub.conn.SetPongHandler(func(string) error {
		resetDeadline()
		return nil
	})

	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		resetDeadline()

		msg, err := events.DecodeMessage(data)
		if err != nil {
			slog.Debug("ignoring malformed client frame", "subscriber", sub.id, "error", err)
			continue
		}

		switch msg.Type {
		case events.MessageSubscribe:
			sub.mu.Lock()
			sub.topics[msg.Topic] = true
			sub.mu.Unlock()
			slog.Debug("client subscribed", "subscriber", sub.id, "topic", msg.Topic)
		case events.MessageUnsubscribe:
			sub.mu.Lock()
			delete(sub.topics, msg.Topic)
			sub.mu.Unlock()
			slog.Debug("client unsubscribed", "subscriber", sub.id, "topic", msg.Topic)
		}
	}
}

// writeLoop drains the send queue and keeps the connection alive with
// pings.
func (h *Hub) writeLoop(sub *subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			data, err := events.EncodeMessage(msg)
			if err != nil {
				slog.Error("failed to encode event", "error", err)
				continue
			}
			if err := sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			if err := sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
				return
			}
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// remove unregisters a subscriber and closes its connection.
func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.subscribers, sub)
	count := len(h.subscribers)
	h.mu.Unlock()
	connectedClients.Set(float64(count))

	sub.closeOnce.Do(func() {
		close(sub.send)
		if err := sub.conn.Close(); err != nil {
			slog.Debug("error closing subscriber connection", "error", err)
		}
	})

	slog.Info("client disconnected", "subscriber", sub.id, "total", count)
}

// closeAll drops every subscriber, used at shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		h.remove(sub)
	}
}

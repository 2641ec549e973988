// Package client maintains the websocket connection a local replica
// listens on. It handles dialing, bounded reconnection, topic
// subscriptions, and sequence-based duplicate suppression; consumers
// read ordered events from Events().
package client

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/averline/taskwire/internal/events"
)

// Options configures a Manager.
type Options struct {
	// URL is the websocket endpoint, e.g. ws://localhost:8080/ws.
	URL string
	// Token is the bearer token presented during the upgrade.
	Token string
	// ReconnectAttempts bounds how many redials follow a lost
	// connection before the manager gives up.
	ReconnectAttempts int
	// ReconnectDelay is the fixed wait between redial attempts.
	ReconnectDelay time.Duration
	// EventBuffer sizes the delivery channel.
	EventBuffer int
}

func (o *Options) applyDefaults() {
	if o.ReconnectAttempts <= 0 {
		o.ReconnectAttempts = 5
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = time.Second
	}
	if o.EventBuffer <= 0 {
		o.EventBuffer = 10
	}
}

// Manager owns one logical connection across redials. Events() stays
// open across reconnects and closes only when the manager stops.
type Manager struct {
	opts Options

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	topics    map[string]struct{}

	lastSeq int64
	eventCh chan events.Event

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager creates a manager. Call Connect to start it.
func NewManager(opts Options) *Manager {
	opts.applyDefaults()
	return &Manager{
		opts:    opts,
		topics:  make(map[string]struct{}),
		eventCh: make(chan events.Event, opts.EventBuffer),
	}
}

// Events returns the delivery channel. Each event is delivered at most
// once, in ascending sequence order. The channel closes when the
// manager disconnects for good.
func (m *Manager) Events() <-chan events.Event {
	return m.eventCh
}

// IsConnected reports whether a live connection currently exists.
func (m *Manager) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Connect dials the server and starts the read loop. The read loop
// redials on failure up to ReconnectAttempts times, re-subscribing to
// all topics after each successful redial.
func (m *Manager) Connect(ctx context.Context) error {
	if err := m.dial(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	go m.run(runCtx)
	return nil
}

// Disconnect stops the manager and closes the event channel.
func (m *Manager) Disconnect() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	m.closeConn()
	<-m.done
}

// Subscribe registers interest in a topic. The subscription survives
// reconnects.
func (m *Manager) Subscribe(topic string) error {
	return m.control(events.MessageSubscribe, topic)
}

// Unsubscribe drops interest in a topic.
func (m *Manager) Unsubscribe(topic string) error {
	return m.control(events.MessageUnsubscribe, topic)
}

func (m *Manager) control(kind, topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch kind {
	case events.MessageSubscribe:
		m.topics[topic] = struct{}{}
	case events.MessageUnsubscribe:
		delete(m.topics, topic)
	}

	if m.conn == nil {
		return nil
	}
	return m.writeMessage(events.Message{Type: kind, Topic: topic})
}

// writeMessage sends a control frame. Callers must hold m.mu.
func (m *Manager) writeMessage(msg events.Message) error {
	data, err := events.EncodeMessage(msg)
	if err != nil {
		return err
	}
	if err := m.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send %s: %w", msg.Type, err)
	}
	return nil
}

func (m *Manager) dial(ctx context.Context) error {
	header := http.Header{}
	if m.opts.Token != "" {
		header.Set("Authorization", "Bearer "+m.opts.Token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, m.opts.URL, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", m.opts.URL, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.conn = conn
	m.connected = true

	// Restore subscriptions lost with the previous connection.
	for topic := range m.topics {
		if err := m.writeMessage(events.Message{Type: events.MessageSubscribe, Topic: topic}); err != nil {
			m.conn = nil
			m.connected = false
			_ = conn.Close()
			return err
		}
	}
	return nil
}

func (m *Manager) closeConn() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.connected = false
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	defer close(m.eventCh)
	defer m.closeConn()

	for {
		err := m.readLoop(ctx)
		if ctx.Err() != nil {
			return
		}
		slog.Warn("connection lost", "error", err)
		m.closeConn()

		if !m.redial(ctx) {
			slog.Error("giving up after failed reconnects", "attempts", m.opts.ReconnectAttempts)
			return
		}
		slog.Info("reconnected", "url", m.opts.URL)
	}
}

func (m *Manager) readLoop(ctx context.Context) error {
	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("not connected")
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		msg, err := events.DecodeMessage(data)
		if err != nil {
			slog.Debug("dropping malformed frame", "error", err)
			continue
		}
		if msg.Type != events.MessageEvent {
			continue
		}

		// Redelivered or out-of-order frames are suppressed by
		// sequence number.
		if msg.Event.Seq <= m.lastSeq {
			continue
		}
		m.lastSeq = msg.Event.Seq

		select {
		case m.eventCh <- *msg.Event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) redial(ctx context.Context) bool {
	for attempt := 1; attempt <= m.opts.ReconnectAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return false
		case <-time.After(m.opts.ReconnectDelay):
		}

		if err := m.dial(ctx); err != nil {
			slog.Warn("reconnect attempt failed",
				"attempt", attempt,
				"max", m.opts.ReconnectAttempts,
				"error", err,
			)
			continue
		}
		return true
	}
	return false
}

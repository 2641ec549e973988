package hub

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/averline/taskwire/internal/events"
	"github.com/averline/taskwire/internal/models"
)

// setupTestHub starts a hub behind an httptest server and returns the
// websocket URL.
func setupTestHub(t *testing.T) (*Hub, string) {
	t.Helper()

	h := New(Options{SendBuffer: 4, BroadcastBuffer: 16})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialTestClient(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial hub: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn, timeout time.Duration) events.Event {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		t.Fatalf("failed to set deadline: %v", err)
	}
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("failed to read event: %v", err)
	}
	msg, err := events.DecodeMessage(data)
	if err != nil {
		t.Fatalf("failed to decode event: %v", err)
	}
	return *msg.Event
}

func expectNoEvent(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()
	if err := conn.SetReadDeadline(time.Now().Add(wait)); err != nil {
		t.Fatalf("failed to set deadline: %v", err)
	}
	if _, data, err := conn.ReadMessage(); err == nil {
		t.Fatalf("expected no event, got %s", data)
	}
}

func subscribe(t *testing.T, conn *websocket.Conn, topic string) {
	t.Helper()
	data, err := events.EncodeMessage(events.Message{Type: events.MessageSubscribe, Topic: topic})
	if err != nil {
		t.Fatalf("failed to encode subscribe: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to send subscribe: %v", err)
	}
	// The hub processes control frames asynchronously.
	time.Sleep(50 * time.Millisecond)
}

func TestGlobalEventReachesAllClients(t *testing.T) {
	h, url := setupTestHub(t)

	c1 := dialTestClient(t, url)
	c2 := dialTestClient(t, url)
	time.Sleep(50 * time.Millisecond)

	if err := h.Publish(events.NewTaskCreated(&models.Task{ID: "t1", Title: "x"})); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	for _, conn := range []*websocket.Conn{c1, c2} {
		ev := readEvent(t, conn, time.Second)
		if ev.Type != events.TaskCreated || ev.Task.ID != "t1" {
			t.Errorf("got event %+v", ev)
		}
		if ev.Seq == 0 {
			t.Error("event missing sequence number")
		}
	}
}

func TestProjectScopedEventOnlyReachesSubscribers(t *testing.T) {
	h, url := setupTestHub(t)

	inRoom := dialTestClient(t, url)
	outOfRoom := dialTestClient(t, url)
	time.Sleep(50 * time.Millisecond)

	subscribe(t, inRoom, events.ProjectTopic("p1"))

	comment := &models.Comment{ID: "c1", TaskID: "t1", Content: "hi"}
	if err := h.Publish(events.NewCommentCreated(comment, "p1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	ev := readEvent(t, inRoom, time.Second)
	if ev.Type != events.CommentCreated || ev.Comment.ID != "c1" {
		t.Errorf("got event %+v", ev)
	}

	expectNoEvent(t, outOfRoom, 200*time.Millisecond)
}

func TestUnsubscribeStopsScopedDelivery(t *testing.T) {
	h, url := setupTestHub(t)

	conn := dialTestClient(t, url)
	time.Sleep(50 * time.Millisecond)
	subscribe(t, conn, events.ProjectTopic("p1"))

	data, err := events.EncodeMessage(events.Message{Type: events.MessageUnsubscribe, Topic: events.ProjectTopic("p1")})
	if err != nil {
		t.Fatalf("failed to encode unsubscribe: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("failed to send unsubscribe: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	if err := h.Publish(events.NewCommentDeleted("c9", "p1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	expectNoEvent(t, conn, 200*time.Millisecond)
}

func TestSequenceNumbersIncreasePerPublish(t *testing.T) {
	h, url := setupTestHub(t)

	conn := dialTestClient(t, url)
	time.Sleep(50 * time.Millisecond)

	for _, id := range []string{"a", "b", "c"} {
		if err := h.Publish(events.NewProjectDeleted(id)); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
	}

	var last int64
	for i := 0; i < 3; i++ {
		ev := readEvent(t, conn, time.Second)
		if ev.Seq <= last {
			t.Errorf("sequence not increasing: %d after %d", ev.Seq, last)
		}
		last = ev.Seq
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	// No Run loop draining the queue: publishing past the buffer must
	// fail fast instead of blocking the caller.
	h := New(Options{BroadcastBuffer: 2})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			_ = h.Publish(events.NewProjectDeleted("p"))
		}
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	h, url := setupTestHub(t)

	conn := dialTestClient(t, url)
	time.Sleep(50 * time.Millisecond)

	if err := conn.WriteMessage(websocket.TextMessage, []byte("{nope")); err != nil {
		t.Fatalf("failed to send garbage: %v", err)
	}
	time.Sleep(50 * time.Millisecond)

	// Connection stays up and events still flow.
	if err := h.Publish(events.NewTaskDeleted("t1")); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	ev := readEvent(t, conn, time.Second)
	if ev.Type != events.TaskDeleted {
		t.Errorf("got event %+v", ev)
	}
}

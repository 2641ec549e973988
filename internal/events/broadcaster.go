package events

import "log/slog"

// Broadcaster is the publish side of the event channel. The hub
// implements it; services depend on this interface so tests can swap in
// a recorder.
type Broadcaster interface {
	// Publish hands an event off for fan-out. It must not block.
	Publish(event Event) error
}

// Publish broadcasts an event, tolerating a nil broadcaster (tests,
// offline tooling). Failures are logged, never propagated: the mutation
// already succeeded and its result is on the way back to the caller.
func Publish(b Broadcaster, event Event) {
	if b == nil {
		return
	}
	if err := b.Publish(event); err != nil {
		slog.Warn("event publish failed",
			"event_type", event.Type,
			"error", err)
	}
}

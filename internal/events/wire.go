package events

import (
	"encoding/json"
	"fmt"
)

// Message kinds carried on the websocket.
const (
	MessageEvent       = "event"
	MessageSubscribe   = "subscribe"
	MessageUnsubscribe = "unsubscribe"
)

// Message is the wire envelope for events and control frames.
type Message struct {
	Type  string `json:"type"`
	Event *Event `json:"event,omitempty"`
	// Topic is set on subscribe/unsubscribe control messages.
	Topic string `json:"topic,omitempty"`
}

// EncodeMessage marshals a message for the wire.
func EncodeMessage(m Message) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// DecodeMessage unmarshals and validates a wire frame. Event payloads
// are validated here so nothing malformed reaches a reconciler or the
// hub's fan-out path.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("failed to decode message: %w", err)
	}

	switch m.Type {
	case MessageEvent:
		if m.Event == nil {
			return Message{}, fmt.Errorf("event message missing event")
		}
		if err := m.Event.Validate(); err != nil {
			return Message{}, err
		}
	case MessageSubscribe, MessageUnsubscribe:
		if m.Topic == "" {
			return Message{}, fmt.Errorf("%s message missing topic", m.Type)
		}
	default:
		return Message{}, fmt.Errorf("unknown message type %q", m.Type)
	}

	return m, nil
}

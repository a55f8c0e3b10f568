package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_ANSWERED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const TypeChatAnswered = "CHAT_ANSWERED"

// NewChatAnsweredEvent is emitted after a question has been answered, for
// operational monitoring. It carries counts only, never answer text.
func NewChatAnsweredEvent(sessionId string, retrieved int, storeHit bool) Event {
	return BaseEvent{
		Type: TypeChatAnswered,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"retrieved":  retrieved,
			"store_hit":  storeHit,
		},
		OccurredAt: time.Now(),
	}
}

package events

import (
	"time"

	"ai-shopscout-be/pkg/store"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Session lifecycle event types.
const (
	TypeSessionCreated   = "SESSION_CREATED"
	TypeSessionCompleted = "SESSION_COMPLETED"
)

// BaseEvent is the generic Event implementation. Prefer the typed
// constructors below over assembling one by hand.
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

// NewSessionEvent snapshots the fields observers care about: identity,
// phase, and enough shape (category, candidate count) to follow a
// session's progress without loading it.
func NewSessionEvent(eventType string, sess *store.SessionState) BaseEvent {
	data := map[string]interface{}{
		"session_id": sess.ID,
		"phase":      sess.Phase,
	}
	if sess.Requirement.Category != nil {
		data["category"] = *sess.Requirement.Category
	}
	if sess.Research != nil {
		data["candidate_count"] = len(sess.Research.Candidates)
	}
	return BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
}

package domain

import "time"

// EventType identifies the kind of lifecycle event an agent session emitted.
type EventType string

const (
	EventSessionStart EventType = "session_start"
	EventSessionEnd   EventType = "session_end"
	EventTaskStart    EventType = "task_start"
	EventTaskComplete EventType = "task_complete"
	EventTaskError    EventType = "task_error"
	EventTaskCancel   EventType = "task_cancel"
	EventToolCall     EventType = "tool_call"
	EventError        EventType = "error"
	EventWarning      EventType = "warning"
	EventFeedback     EventType = "feedback"
)

// IsErrorClass reports whether the event type counts toward error metrics and
// flips a session's derived status to "error".
func (t EventType) IsErrorClass() bool {
	return t == EventError || t == EventTaskError
}

// IsTerminal reports whether the event ends a session.
func (t EventType) IsTerminal() bool {
	return t == EventSessionEnd
}

// Environment is the deployment environment an event was emitted from.
type Environment string

const (
	EnvProduction  Environment = "production"
	EnvStaging     Environment = "staging"
	EnvDevelopment Environment = "development"
)

// Event is a single lifecycle event as submitted by a client. Immutable once
// accepted by a store.
type Event struct {
	ID          string      `json:"event_id"`
	Type        EventType   `json:"event_type"`
	Timestamp   time.Time   `json:"timestamp"`
	SessionID   string      `json:"session_id"`
	UserID      string      `json:"user_id"`
	AgentID     string      `json:"agent_id"`
	Environment Environment `json:"environment"`
	Metadata    Metadata    `json:"metadata,omitempty"`
}

// StoredEvent is an accepted event, stamped with its tenant and ingestion time.
type StoredEvent struct {
	Event
	OrgID      string    `json:"org_id"`
	IngestedAt time.Time `json:"ingested_at"`
}

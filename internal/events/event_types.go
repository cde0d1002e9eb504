package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventStateChanged   EventType = "state_changed"
	EventUserRegistered EventType = "user_registered"
	EventJobSaved       EventType = "job_saved"
	EventJobApplied     EventType = "job_applied"
	EventUserDeleted    EventType = "user_deleted"
)

// Event represents a domain event emitted by the session cache.
type Event struct {
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// JobLinkPayload payload for saved and applied jobs.
type JobLinkPayload struct {
	JobID string `json:"job_id"`
}

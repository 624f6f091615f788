package events

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event.
type EventType string

const (
	// Session lifecycle
	EventSessionLoaded EventType = "session.loaded"
	EventSessionFresh     EventType = "session.fresh"
	EventSessionRecovered EventType = "session.recovered"

	// Conversation
	EventTurnCompleted EventType = "turn.completed"
	EventModelChanged  EventType = "model.changed"

	// Backend calls, traced through model callbacks
	EventModelCall EventType = "model.call"

	// Failures
	EventBackendFailed EventType = "backend.failed"
	EventPersistFailed EventType = "persist.failed"
)

// Level returns the log level diagnostics of this type are reported at.
func (t EventType) Level() slog.Level {
	switch t {
	case EventBackendFailed, EventPersistFailed:
		return slog.LevelError
	case EventSessionRecovered:
		return slog.LevelWarn
	case EventModelCall:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// EventSource identifies the component that emitted an event.
type EventSource string

const (
	SourceController EventSource = "controller"
	SourceBackend    EventSource = "backend"
)

// Event represents an event in the system.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    EventSource    `json:"source"`
	Payload   map[string]any `json:"payload"`
}

// NewEvent creates a new event with the current timestamp.
func NewEvent(eventType EventType, source EventSource, payload map[string]any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    source,
		Payload:   payload,
	}
}

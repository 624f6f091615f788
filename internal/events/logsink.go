package events

import (
	"context"
	"log/slog"
	"sort"
)

// LogTo mirrors every event published on bus into log, at the level of its
// type. Returns the unsubscribe function.
func LogTo(bus *Bus, log *slog.Logger) func() {
	return bus.Subscribe(func(e Event) {
		attrs := []slog.Attr{
			slog.String("event_id", e.ID),
			slog.String("source", string(e.Source)),
		}
		keys := make([]string, 0, len(e.Payload))
		for k := range e.Payload {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			attrs = append(attrs, slog.Any(k, e.Payload[k]))
		}
		log.LogAttrs(context.Background(), e.Type.Level(), string(e.Type), attrs...)
	})
}

// Summary returns a one-line human description of a diagnostic event.
func Summary(e Event) string {
	switch e.Type {
	case EventBackendFailed:
		if p, ok := ExtractPayload[BackendFailedPayload](e); ok {
			return "backend " + p.Kind + ": " + p.Error
		}
	case EventPersistFailed:
		if p, ok := ExtractPayload[PersistFailedPayload](e); ok {
			return "save failed: " + p.Error
		}
	case EventSessionFresh:
		if p, ok := ExtractPayload[SessionFreshPayload](e); ok {
			return "new conversation with " + p.Model
		}
	case EventSessionRecovered:
		if p, ok := ExtractPayload[SessionRecoveredPayload](e); ok {
			return "started fresh (" + p.Reason + ")"
		}
	case EventSessionLoaded:
		if p, ok := ExtractPayload[SessionLoadedPayload](e); ok {
			return "resumed conversation with " + p.Model
		}
	case EventModelChanged:
		if p, ok := ExtractPayload[ModelChangedPayload](e); ok {
			return "model " + p.From + " -> " + p.To
		}
	case EventTurnCompleted:
		if p, ok := ExtractPayload[TurnCompletedPayload](e); ok {
			return "reply from " + p.Model
		}
	}
	return string(e.Type)
}

package events

import "encoding/json"

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

type SessionLoadedPayload struct {
	Key      string `json:"key"`
	Model    string `json:"model"`
	Messages int    `json:"messages"`
}

func (SessionLoadedPayload) EventType() EventType { return EventSessionLoaded }

// SessionFreshPayload reports a first start: nothing was persisted yet.
type SessionFreshPayload struct {
	Key   string `json:"key"`
	Model string `json:"model"`
}

func (SessionFreshPayload) EventType() EventType { return EventSessionFresh }

// SessionRecoveredPayload reports a fresh start forced by an unreadable saved
// conversation. Reason carries the read error.
type SessionRecoveredPayload struct {
	Key    string `json:"key"`
	Model  string `json:"model"`
	Reason string `json:"reason"`
}

func (SessionRecoveredPayload) EventType() EventType { return EventSessionRecovered }

type TurnCompletedPayload struct {
	Model    string `json:"model"`
	ReplyLen int    `json:"reply_len"`
}

func (TurnCompletedPayload) EventType() EventType { return EventTurnCompleted }

type ModelChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (ModelChangedPayload) EventType() EventType { return EventModelChanged }

// ModelCallPayload traces one backend call. Phase is "request", "response"
// or "error".
type ModelCallPayload struct {
	Phase        string `json:"phase"`
	Model        string `json:"model"`
	Provider     string `json:"provider,omitempty"`
	MessageCount int    `json:"message_count,omitempty"`
	TokensInput  int    `json:"tokens_input,omitempty"`
	TokensOutput int    `json:"tokens_output,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (ModelCallPayload) EventType() EventType { return EventModelCall }

type BackendFailedPayload struct {
	Model string `json:"model"`
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

func (BackendFailedPayload) EventType() EventType { return EventBackendFailed }

type PersistFailedPayload struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

func (PersistFailedPayload) EventType() EventType { return EventPersistFailed }

// NewTypedEvent creates an event whose type and payload come from payload.
func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return NewEvent(payload.EventType(), source, toMap(payload))
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// ExtractPayload decodes e.Payload into T.
func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	if e.Type != result.EventType() {
		return result, false
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

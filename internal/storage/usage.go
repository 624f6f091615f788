package storage

import (
	"sort"
	"sync"

	"github.com/dohr-michael/tinychat/internal/events"
)

// ModelUsage is the token count accumulated for one model.
type ModelUsage struct {
	Model  string
	Calls  int
	Input  int
	Output int
}

// UsageTracker accumulates token usage per model from model.call events.
type UsageTracker struct {
	mu          sync.Mutex
	byModel     map[string]*ModelUsage
	unsubscribe func()
}

// NewUsageTracker subscribes to model call events on bus.
func NewUsageTracker(bus *events.Bus) *UsageTracker {
	ut := &UsageTracker{byModel: make(map[string]*ModelUsage)}
	ut.unsubscribe = bus.Subscribe(ut.handleEvent, events.EventModelCall)
	return ut
}

// Close unsubscribes the tracker from the event bus.
func (ut *UsageTracker) Close() {
	if ut.unsubscribe != nil {
		ut.unsubscribe()
	}
}

func (ut *UsageTracker) handleEvent(e events.Event) {
	payload, ok := events.ExtractPayload[events.ModelCallPayload](e)
	if !ok || payload.Phase != "response" {
		return
	}

	ut.mu.Lock()
	defer ut.mu.Unlock()

	u, ok := ut.byModel[payload.Model]
	if !ok {
		u = &ModelUsage{Model: payload.Model}
		ut.byModel[payload.Model] = u
	}
	u.Calls++
	u.Input += payload.TokensInput
	u.Output += payload.TokensOutput
}

// Usage returns the per-model totals sorted by model name.
func (ut *UsageTracker) Usage() []ModelUsage {
	if ut == nil {
		return nil
	}
	ut.mu.Lock()
	defer ut.mu.Unlock()

	out := make([]ModelUsage, 0, len(ut.byModel))
	for _, u := range ut.byModel {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Model < out[j].Model })
	return out
}

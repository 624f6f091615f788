// Package backendtest provides a scripted backend.Port for tests.
package backendtest

import (
	"context"
	"sync"
)

// Call records one Send invocation.
type Call struct {
	Prompt string
	Model  string
}

type step struct {
	reply string
	err   error
}

// Scripted replays queued replies in order. When the script runs out it echoes
// the prompt back.
type Scripted struct {
	mu     sync.Mutex
	steps  []step
	calls  []Call
	active []string
}

// New returns an empty script.
func New() *Scripted {
	return &Scripted{}
}

// Reply queues a successful reply.
func (s *Scripted) Reply(text string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step{reply: text})
	return s
}

// Fail queues a failure.
func (s *Scripted) Fail(err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.steps = append(s.steps, step{err: err})
	return s
}

// Send implements backend.Port.
func (s *Scripted) Send(_ context.Context, prompt, model string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{Prompt: prompt, Model: model})
	if len(s.steps) == 0 {
		return "echo: " + prompt, nil
	}
	next := s.steps[0]
	s.steps = s.steps[1:]
	return next.reply, next.err
}

// SetActiveModel implements backend.Port.
func (s *Scripted) SetActiveModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = append(s.active, model)
}

// Calls returns a copy of the recorded Send calls.
func (s *Scripted) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// ActiveModels returns every model passed to SetActiveModel, in order.
func (s *Scripted) ActiveModels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.active...)
}

// ActiveModel returns the last model passed to SetActiveModel.
func (s *Scripted) ActiveModel() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.active) == 0 {
		return ""
	}
	return s.active[len(s.active)-1]
}

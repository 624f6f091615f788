package sessions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/dohr-michael/tinychat/internal/backend"
	"github.com/dohr-michael/tinychat/internal/backend/backendtest"
	"github.com/dohr-michael/tinychat/internal/chat"
	"github.com/dohr-michael/tinychat/internal/conversation"
	"github.com/dohr-michael/tinychat/internal/events"
)

// memStore is an in-memory Store whose writes can be made to fail.
type memStore struct {
	mu       sync.Mutex
	docs     map[string][]byte
	failSave error
	failNext int // the next failNext saves fail, then saving recovers
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Load(key string) (*conversation.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, &ReadError{Key: key, Err: ErrNotFound}
	}
	conv, err := Decode(data)
	if err != nil {
		return nil, &ReadError{Key: key, Err: err}
	}
	return conv, nil
}

func (m *memStore) Save(key string, conv *conversation.Conversation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext > 0 {
		m.failNext--
		return &WriteError{Key: key, Err: errors.New("transient write failure")}
	}
	if m.failSave != nil {
		return &WriteError{Key: key, Err: m.failSave}
	}
	data, err := Encode(conv)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	m.docs[key] = data
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) stored(t *testing.T, key string) *conversation.Conversation {
	t.Helper()
	conv, err := m.Load(key)
	if err != nil {
		t.Fatalf("stored %s: %v", key, err)
	}
	return conv
}

func newController(t *testing.T, store Store, fake *backendtest.Scripted, bus *events.Bus) *Controller {
	t.Helper()
	return NewController(context.Background(), ControllerOptions{
		Chat:         chat.NewService(fake, nil),
		Store:        store,
		DefaultModel: "default-model",
		Key:          "main",
		Bus:          bus,
	})
}

func TestControllerFreshStart(t *testing.T) {
	fake := backendtest.New()
	c := newController(t, newMemStore(), fake, nil)

	if c.Origin() != OriginFresh {
		t.Errorf("Origin = %v, want fresh", c.Origin())
	}
	if c.Conversation().CurrentModel != "default-model" {
		t.Errorf("model = %q, want default-model", c.Conversation().CurrentModel)
	}
	if c.Conversation().Len() != 0 {
		t.Errorf("expected empty conversation, got %d messages", c.Conversation().Len())
	}
	if got := fake.ActiveModel(); got != "default-model" {
		t.Errorf("backend active model = %q, want default-model", got)
	}
}

func TestControllerReloadReconciliation(t *testing.T) {
	store := newMemStore()
	store.docs["main"] = []byte(`{"messages": [{"content": "earlier", "sender": "User"}, {"content": "reply", "sender": "AI"}], "current_model": "X"}`)
	fake := backendtest.New()

	c := newController(t, store, fake, nil)

	if c.Origin() != OriginLoaded {
		t.Errorf("Origin = %v, want loaded", c.Origin())
	}
	if got := c.Conversation().CurrentModel; got != "X" {
		t.Errorf("live model = %q, want X", got)
	}
	if got := fake.ActiveModel(); got != "X" {
		t.Errorf("backend active model = %q, want X", got)
	}
	want := []conversation.Message{
		conversation.UserMessage("earlier"),
		conversation.AssistantMessage("reply"),
	}
	if diff := cmp.Diff(want, c.Conversation().Messages); diff != "" {
		t.Errorf("messages mismatch (-want +got):\n%s", diff)
	}

	if err := c.OnUserMessage(context.Background(), "next"); err != nil {
		t.Fatalf("OnUserMessage: %v", err)
	}
	if calls := fake.Calls(); len(calls) != 1 || calls[0].Model != "X" {
		t.Errorf("calls = %+v, want one call with model X", calls)
	}
}

func TestControllerMalformedFallback(t *testing.T) {
	for name, doc := range map[string]string{
		"garbage":        "\x00\x01 definitely not json",
		"unknown sender": `{"messages": [{"content": "x", "sender": "Robot"}], "current_model": "X"}`,
		"empty model":    `{"messages": [], "current_model": ""}`,
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "conversation_cache.json")
			if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
				t.Fatal(err)
			}
			fake := backendtest.New()
			c := NewController(context.Background(), ControllerOptions{
				Chat:         chat.NewService(fake, nil),
				Store:        NewFileStore(),
				DefaultModel: "default-model",
				Key:          path,
			})

			if c.Origin() != OriginRecovered {
				t.Errorf("Origin = %v, want recovered", c.Origin())
			}
			if got := c.Conversation().CurrentModel; got != "default-model" {
				t.Errorf("model = %q, want default-model", got)
			}
			if c.Conversation().Len() != 0 {
				t.Errorf("expected empty conversation")
			}
		})
	}
}

func TestControllerOnUserMessagePersists(t *testing.T) {
	store := newMemStore()
	fake := backendtest.New().Reply("pong")
	c := newController(t, store, fake, nil)

	if err := c.OnUserMessage(context.Background(), "ping"); err != nil {
		t.Fatalf("OnUserMessage: %v", err)
	}

	want := []conversation.Message{
		conversation.UserMessage("ping"),
		conversation.AssistantMessage("pong"),
	}
	if diff := cmp.Diff(want, store.stored(t, "main").Messages); diff != "" {
		t.Errorf("persisted mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerBackendFailureKeepsUserTurnOnDisk(t *testing.T) {
	store := newMemStore()
	failure := backend.Rejected("fake", 404, `{"error":"model not found"}`)
	fake := backendtest.New().Fail(failure)
	bus := events.NewBus(16)
	defer bus.Close()
	c := newController(t, store, fake, bus)

	err := c.OnUserMessage(context.Background(), "hello")
	if !errors.Is(err, backend.ErrRejected) {
		t.Fatalf("err = %v, want ErrRejected", err)
	}

	want := []conversation.Message{conversation.UserMessage("hello")}
	if diff := cmp.Diff(want, c.Conversation().Messages); diff != "" {
		t.Errorf("live mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, store.stored(t, "main").Messages); diff != "" {
		t.Errorf("persisted mismatch (-want +got):\n%s", diff)
	}

	waitForEvent(t, c, events.EventBackendFailed)
}

func TestControllerWriteFailureIsNonFatal(t *testing.T) {
	store := newMemStore()
	store.failSave = errors.New("disk full")
	fake := backendtest.New().Reply("pong").Reply("pong again")
	bus := events.NewBus(16)
	defer bus.Close()
	c := newController(t, store, fake, bus)

	err := c.OnUserMessage(context.Background(), "ping")
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("err = %v, want *WriteError", err)
	}
	if c.Conversation().Len() != 2 {
		t.Fatalf("in-memory log has %d messages, want 2", c.Conversation().Len())
	}
	waitForEvent(t, c, events.EventPersistFailed)

	// the next mutation retries the save
	store.mu.Lock()
	store.failSave = nil
	store.mu.Unlock()
	if err := c.OnUserMessage(context.Background(), "again"); err != nil {
		t.Fatalf("OnUserMessage: %v", err)
	}
	if got := store.stored(t, "main").Len(); got != 4 {
		t.Errorf("persisted %d messages, want 4", got)
	}
}

func TestControllerOnChangeModel(t *testing.T) {
	store := newMemStore()
	fake := backendtest.New()
	c := newController(t, store, fake, nil)

	if err := c.OnChangeModel("mistral"); err != nil {
		t.Fatalf("OnChangeModel: %v", err)
	}
	if got := store.stored(t, "main").CurrentModel; got != "mistral" {
		t.Errorf("persisted model = %q, want mistral", got)
	}
	if got := fake.ActiveModel(); got != "mistral" {
		t.Errorf("backend active model = %q, want mistral", got)
	}

	if err := c.OnUserMessage(context.Background(), "hi"); err != nil {
		t.Fatal(err)
	}
	calls := fake.Calls()
	if calls[len(calls)-1].Model != "mistral" {
		t.Errorf("send used %q, want mistral", calls[len(calls)-1].Model)
	}
}

func TestControllerTwoPhaseTurn(t *testing.T) {
	store := newMemStore()
	fake := backendtest.New().Reply("later")
	c := newController(t, store, fake, nil)

	turn, err := c.StartUserMessage("question")
	if err != nil {
		t.Fatalf("StartUserMessage: %v", err)
	}
	// the user turn is on disk before the backend is called
	if got := store.stored(t, "main").Len(); got != 1 {
		t.Fatalf("persisted %d messages before fetch, want 1", got)
	}
	if len(fake.Calls()) != 0 {
		t.Fatal("backend called too early")
	}

	reply, fetchErr := c.FetchReply(context.Background(), turn)
	if err := c.FinishUserMessage(turn, reply, fetchErr); err != nil {
		t.Fatalf("FinishUserMessage: %v", err)
	}

	if got := store.stored(t, "main").Len(); got != 2 {
		t.Errorf("persisted %d messages, want 2", got)
	}
}

func TestControllerPersistUnchangedIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conv.json")
	c := NewController(context.Background(), ControllerOptions{
		Chat:         chat.NewService(backendtest.New(), nil),
		Store:        NewFileStore(),
		DefaultModel: "m",
		Key:          path,
	})
	if err := c.OnUserMessage(context.Background(), "x"); err != nil {
		t.Fatal(err)
	}

	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Persist(); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("bytes differ after re-persist")
	}
}

func waitForEvent(t *testing.T, c *Controller, want events.EventType) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for _, e := range c.Diagnostics(16) {
			if e.Type == want {
				return
			}
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %s event observed", want)
}

func TestControllerDiagnosticsSkipsTraces(t *testing.T) {
	bus := events.NewBus(64)
	defer bus.Close()

	c := newController(t, newMemStore(), backendtest.New(), bus)
	bus.Publish(events.NewTypedEvent(events.SourceBackend, events.ModelCallPayload{Phase: "request", Model: "default-model"}))
	if err := c.OnChangeModel("other"); err != nil {
		t.Fatalf("OnChangeModel: %v", err)
	}
	waitForEvent(t, c, events.EventModelChanged)

	for _, e := range c.Diagnostics(10) {
		if e.Type == events.EventModelCall {
			t.Fatal("model call traces must not be listed as diagnostics")
		}
	}
	if got := c.Diagnostics(1); len(got) != 1 || got[0].Type != events.EventModelChanged {
		t.Errorf("expected latest diagnostic to be model.changed, got %+v", got)
	}
	if got := c.Diagnostics(0); got != nil {
		t.Errorf("expected nil for zero limit, got %d events", len(got))
	}
}

func TestControllerStartEvents(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()
	c := newController(t, newMemStore(), backendtest.New(), bus)
	waitForEvent(t, c, events.EventSessionFresh)

	store := newMemStore()
	store.docs["main"] = []byte("not json")
	bus2 := events.NewBus(16)
	defer bus2.Close()
	recovered := newController(t, store, backendtest.New(), bus2)
	waitForEvent(t, recovered, events.EventSessionRecovered)
	if got := recovered.Key(); got != "main" {
		t.Errorf("Key() = %q, want main", got)
	}
	for _, e := range recovered.Diagnostics(16) {
		if e.Type == events.EventSessionFresh {
			t.Error("an unreadable conversation must not be reported as a first start")
		}
	}
}

func TestControllerReportsFirstWriteFailure(t *testing.T) {
	store := newMemStore()
	store.failNext = 1
	c := newController(t, store, backendtest.New().Reply("pong"), nil)

	err := c.OnUserMessage(context.Background(), "ping")
	var writeErr *WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("err = %v, want the first *WriteError", err)
	}
	if got := store.stored(t, "main").Len(); got != 2 {
		t.Errorf("persisted %d messages, want 2", got)
	}
}

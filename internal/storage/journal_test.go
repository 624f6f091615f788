package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dohr-michael/tinychat/internal/events"
)

func waitForJournal(t *testing.T, path string, n int) []events.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		got, err := ReadJournal(path, 0)
		if err != nil {
			t.Fatalf("ReadJournal: %v", err)
		}
		if len(got) == n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("journal never reached %d events", n)
	return nil
}

func TestEventJournal_WriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "events.jsonl")
	bus := events.NewBus(64)
	defer bus.Close()

	j := NewEventJournal(path, bus, nil)
	defer j.Close()

	bus.Publish(events.NewTypedEvent(events.SourceController, events.ModelChangedPayload{From: "a", To: "b"}))
	bus.Publish(events.NewTypedEvent(events.SourceController, events.PersistFailedPayload{Key: "k", Error: "disk full"}))

	got := waitForJournal(t, path, 2)
	if got[0].Type != events.EventModelChanged {
		t.Errorf("first event = %s, want model.changed", got[0].Type)
	}
	p, ok := events.ExtractPayload[events.PersistFailedPayload](got[1])
	if !ok || p.Error != "disk full" {
		t.Errorf("unexpected second event: %+v", got[1])
	}
}

func TestEventJournal_CloseFlushesQueued(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	bus := events.NewBus(256)
	j := NewEventJournal(path, bus, nil)

	const n = 200
	for i := range n {
		bus.Publish(events.NewTypedEvent(events.SourceController, events.ModelChangedPayload{From: "a", To: fmt.Sprint(i)}))
	}
	bus.Close()
	j.Close()

	got, err := ReadJournal(path, 0)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(got) != n {
		t.Fatalf("journal has %d events after close, want %d", len(got), n)
	}
	for i, e := range got {
		p, ok := events.ExtractPayload[events.ModelChangedPayload](e)
		if !ok || p.To != fmt.Sprint(i) {
			t.Fatalf("event %d = %+v, want To=%d", i, e, i)
		}
	}
}

func TestReadJournal_Missing(t *testing.T) {
	got, err := ReadJournal(filepath.Join(t.TempDir(), "absent.jsonl"), 10)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty journal, got %d events", len(got))
	}
}

func TestReadJournal_SkipsCorruptedLinesAndLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	content := `{"id":"1","type":"model.changed"}
not json

{"id":"2","type":"turn.completed"}
{"id":"3","type":"persist.failed"}
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadJournal(path, 2)
	if err != nil {
		t.Fatalf("ReadJournal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].ID != "2" || got[1].ID != "3" {
		t.Errorf("expected the last two events, got %s and %s", got[0].ID, got[1].ID)
	}
}

// Package storage keeps the diagnostics that outlive a run: a JSONL journal
// of bus events and the token usage reported by the backend.
package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/dohr-michael/tinychat/internal/events"
)

// EventJournal appends every bus event to a JSONL file.
type EventJournal struct {
	mu          sync.Mutex
	path        string
	log         *slog.Logger
	unsubscribe func()
}

// NewEventJournal subscribes to all events on bus and appends them to path.
func NewEventJournal(path string, bus *events.Bus, log *slog.Logger) *EventJournal {
	if log == nil {
		log = slog.Default()
	}
	j := &EventJournal{path: path, log: log}
	j.unsubscribe = bus.Subscribe(j.handleEvent)
	return j
}

// Close unsubscribes the journal from the event bus.
func (j *EventJournal) Close() {
	if j.unsubscribe != nil {
		j.unsubscribe()
	}
}

func (j *EventJournal) handleEvent(e events.Event) {
	if err := j.append(e); err != nil {
		j.log.Debug("event journal write failed", "path", j.path, "error", err)
	}
}

func (j *EventJournal) append(e events.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(j.path), 0o755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// ReadJournal returns the last limit events of the journal at path, oldest
// first. A missing journal is empty. Corrupted lines are skipped.
func ReadJournal(path string, limit int) ([]events.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var items []events.Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e events.Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		items = append(items, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}

	if limit > 0 && len(items) > limit {
		items = items[len(items)-limit:]
	}
	return items, nil
}

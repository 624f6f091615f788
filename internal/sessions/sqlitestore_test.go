package sessions

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dohr-michael/tinychat/internal/conversation"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "tinychat.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreSaveLoad(t *testing.T) {
	store := newTestSQLite(t)
	conv := sampleConversation()

	if err := store.Save("main", conv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load("main")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(conv, got); diff != "" {
		t.Errorf("loaded mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLiteStoreUpsert(t *testing.T) {
	store := newTestSQLite(t)
	conv := conversation.New("a")

	if err := store.Save("main", conv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	conv.Append(conversation.UserMessage("later"))
	conv.CurrentModel = "b"
	if err := store.Save("main", conv); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load("main")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.CurrentModel != "b" || got.Len() != 1 {
		t.Errorf("got model %q with %d messages, want b with 1", got.CurrentModel, got.Len())
	}
}

func storedDocument(t *testing.T, store *SQLiteStore, key string) []byte {
	t.Helper()
	var document string
	if err := store.db.QueryRow(`SELECT document FROM conversations WHERE key = ?`, key).Scan(&document); err != nil {
		t.Fatalf("read stored document: %v", err)
	}
	return []byte(document)
}

func TestSQLiteStoreDocumentMatchesEncode(t *testing.T) {
	store := newTestSQLite(t)
	conv := sampleConversation()

	if err := store.Save("main", conv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first := storedDocument(t, store, "main")
	if err := store.Save("main", conv); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second := storedDocument(t, store, "main")

	want, _ := Encode(conv)
	if !bytes.Equal(first, want) || !bytes.Equal(second, want) {
		t.Errorf("stored document differs from Encode output:\n%s\n---\n%s", first, want)
	}
}

func TestSQLiteStoreLoadMissing(t *testing.T) {
	store := newTestSQLite(t)

	_, err := store.Load("nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStoreLoadMalformed(t *testing.T) {
	store := newTestSQLite(t)
	if _, err := store.db.Exec(
		`INSERT INTO conversations (key, document, updated_at) VALUES (?, ?, 0)`,
		"main", `{"messages": [], "current_model": ""}`,
	); err != nil {
		t.Fatal(err)
	}

	_, err := store.Load("main")
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

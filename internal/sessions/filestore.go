package sessions

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dohr-michael/tinychat/internal/conversation"
)

// FileStore persists each conversation as a JSON document; the key is the
// file path.
type FileStore struct {
	mu sync.Mutex
}

// NewFileStore creates a FileStore.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// Load reads and decodes the document at path.
func (fs *FileStore) Load(path string) (*conversation.Conversation, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ReadError{Key: path, Err: ErrNotFound}
		}
		return nil, &ReadError{Key: path, Err: err}
	}

	conv, err := Decode(data)
	if err != nil {
		return nil, &ReadError{Key: path, Err: err}
	}
	return conv, nil
}

// Save atomically replaces the document at path using a temp file + rename.
func (fs *FileStore) Save(path string, conv *conversation.Conversation) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	data, err := Encode(conv)
	if err != nil {
		return &WriteError{Key: path, Err: err}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &WriteError{Key: path, Err: fmt.Errorf("create dir: %w", err)}
		}
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &WriteError{Key: path, Err: fmt.Errorf("write tmp: %w", err)}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &WriteError{Key: path, Err: fmt.Errorf("rename: %w", err)}
	}
	return nil
}

// Close is a no-op.
func (fs *FileStore) Close() error { return nil }

// Package sessions persists the conversation and owns the live session:
// loading it at startup and saving it after every mutation.
package sessions

import (
	"errors"
	"fmt"

	"github.com/dohr-michael/tinychat/internal/conversation"
)

var (
	// ErrNotFound means nothing has been persisted under the key yet.
	ErrNotFound = errors.New("conversation not found")
	// ErrMalformed means the persisted document does not match the schema.
	ErrMalformed = errors.New("malformed conversation document")
)

// Store loads and saves a conversation under a storage key.
type Store interface {
	Load(key string) (*conversation.Conversation, error)
	Save(key string, conv *conversation.Conversation) error
	Close() error
}

// ReadError is returned by Store.Load. It wraps ErrNotFound, ErrMalformed or
// the underlying I/O error.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read conversation %s: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError is returned by Store.Save.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write conversation %s: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

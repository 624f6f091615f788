package sessions

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dohr-michael/tinychat/internal/conversation"
)

// Encode serializes conv as indented JSON followed by a newline. The output
// depends only on the conversation content.
func Encode(conv *conversation.Conversation) ([]byte, error) {
	doc := *conv
	if doc.Messages == nil {
		doc.Messages = []conversation.Message{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal conversation: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a persisted conversation. Unknown fields are ignored; unknown
// senders and a missing model are rejected with ErrMalformed.
func Decode(data []byte) (*conversation.Conversation, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	var conv conversation.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if conv.CurrentModel == "" {
		return nil, fmt.Errorf("%w: current_model is empty", ErrMalformed)
	}
	for i, m := range conv.Messages {
		if !m.Sender.Valid() {
			return nil, fmt.Errorf("%w: message %d has unknown sender %q", ErrMalformed, i, m.Sender)
		}
	}
	if conv.Messages == nil {
		conv.Messages = []conversation.Message{}
	}
	return &conv, nil
}

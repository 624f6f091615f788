// Package chat applies user turns and model switches to a conversation and
// mediates the calls to the backend.
package chat

import (
	"context"
	"log/slog"

	"github.com/dohr-michael/tinychat/internal/backend"
	"github.com/dohr-michael/tinychat/internal/conversation"
)

// Turn is a user message already committed to the conversation and waiting
// for its reply.
type Turn struct {
	Prompt string
	Model  string
	Index  int // position of the user message in the log
}

// Service orchestrates conversation mutations around a backend.Port.
type Service struct {
	backend backend.Port
	log     *slog.Logger
}

// NewService creates a Service. A nil logger falls back to slog.Default().
func NewService(port backend.Port, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{backend: port, log: log}
}

// SendAndReceive appends userText as a User message, asks the backend for a
// reply under the conversation's current model and appends it.
//
// The User message is appended before the backend is called and stays in the
// log when the call fails; in that case the backend error is returned and no
// Assistant message is added.
func (s *Service) SendAndReceive(ctx context.Context, conv *conversation.Conversation, userText string) error {
	turn := s.BeginTurn(conv, userText)
	reply, err := s.Fetch(ctx, turn)
	if err != nil {
		return err
	}
	s.CompleteTurn(conv, reply)
	return nil
}

// BeginTurn commits userText to conv and captures what must be sent.
func (s *Service) BeginTurn(conv *conversation.Conversation, userText string) Turn {
	conv.Append(conversation.UserMessage(userText))
	return Turn{
		Prompt: userText,
		Model:  conv.CurrentModel,
		Index:  conv.Len() - 1,
	}
}

// Fetch calls the backend for turn. It does not touch any conversation, so it
// may run off the goroutine that owns the conversation.
func (s *Service) Fetch(ctx context.Context, turn Turn) (string, error) {
	log := s.log.With("model", turn.Model, "prompt_len", len(turn.Prompt))
	log.Debug("sending prompt")

	reply, err := s.backend.Send(ctx, turn.Prompt, turn.Model)
	if err != nil {
		log.Warn("backend call failed", "kind", backend.KindOf(err).String(), "error", err)
		return "", err
	}

	log.Debug("reply received", "reply_len", len(reply))
	return reply, nil
}

// CompleteTurn appends the backend reply as an Assistant message.
func (s *Service) CompleteTurn(conv *conversation.Conversation, reply string) {
	conv.Append(conversation.AssistantMessage(reply))
}

// ChangeModel switches conv to newModel and tells the backend. The assignment
// is not rolled back if anything goes wrong afterwards.
func (s *Service) ChangeModel(conv *conversation.Conversation, newModel string) {
	previous := conv.CurrentModel
	conv.CurrentModel = newModel
	s.backend.SetActiveModel(newModel)
	s.log.Info("model changed", "from", previous, "to", newModel)
}

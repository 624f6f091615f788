package sessions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dohr-michael/tinychat/internal/backend"
	"github.com/dohr-michael/tinychat/internal/chat"
	"github.com/dohr-michael/tinychat/internal/conversation"
	"github.com/dohr-michael/tinychat/internal/events"
)

// Origin tells where the live conversation came from.
type Origin int

const (
	// OriginFresh: nothing was persisted under the key.
	OriginFresh Origin = iota
	// OriginLoaded: the persisted conversation was restored.
	OriginLoaded
	// OriginRecovered: the persisted document was unreadable and a fresh
	// conversation replaced it.
	OriginRecovered
)

func (o Origin) String() string {
	switch o {
	case OriginLoaded:
		return "loaded"
	case OriginRecovered:
		return "recovered"
	default:
		return "fresh"
	}
}

// ControllerOptions configures a Controller.
type ControllerOptions struct {
	Chat         *chat.Service
	Store        Store
	DefaultModel string
	Key          string
	Bus          *events.Bus  // optional
	Logger       *slog.Logger // optional
}

// Controller owns the live conversation and saves it after every mutation.
// It is not safe for concurrent use except for FetchReply.
type Controller struct {
	chat   *chat.Service
	store  Store
	key    string
	bus    *events.Bus
	log    *slog.Logger
	conv   *conversation.Conversation
	origin Origin
}

// NewController loads the conversation persisted under opts.Key. Any load
// failure degrades to a fresh conversation using opts.DefaultModel. In both
// cases the backend's active model is aligned with the live conversation.
func NewController(ctx context.Context, opts ControllerOptions) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	c := &Controller{
		chat:  opts.Chat,
		store: opts.Store,
		key:   opts.Key,
		bus:   opts.Bus,
		log:   log.With("key", opts.Key),
	}

	conv, err := c.store.Load(c.key)
	switch {
	case err == nil:
		c.conv = conv
		c.origin = OriginLoaded
		c.log.InfoContext(ctx, "conversation loaded", "model", conv.CurrentModel, "messages", conv.Len())
		c.bus.Publish(events.NewTypedEvent(events.SourceController, events.SessionLoadedPayload{
			Key:      c.key,
			Model:    conv.CurrentModel,
			Messages: conv.Len(),
		}))
	case errors.Is(err, ErrNotFound):
		c.conv = conversation.New(opts.DefaultModel)
		c.origin = OriginFresh
		c.log.InfoContext(ctx, "no saved conversation, starting fresh", "model", opts.DefaultModel)
		c.bus.Publish(events.NewTypedEvent(events.SourceController, events.SessionFreshPayload{
			Key:   c.key,
			Model: opts.DefaultModel,
		}))
	default:
		c.conv = conversation.New(opts.DefaultModel)
		c.origin = OriginRecovered
		c.log.WarnContext(ctx, "saved conversation unreadable, starting fresh", "model", opts.DefaultModel, "error", err)
		c.bus.Publish(events.NewTypedEvent(events.SourceController, events.SessionRecoveredPayload{
			Key:    c.key,
			Model:  opts.DefaultModel,
			Reason: err.Error(),
		}))
	}

	c.chat.ChangeModel(c.conv, c.conv.CurrentModel)
	return c
}

// Conversation returns the live conversation. Callers must not mutate it.
func (c *Controller) Conversation() *conversation.Conversation { return c.conv }

// Origin reports how the live conversation was obtained.
func (c *Controller) Origin() Origin { return c.origin }

// Key returns the storage key.
func (c *Controller) Key() string { return c.key }

// diagnosticsWindow bounds how far back Diagnostics looks for events worth
// showing; model call traces are interleaved with them.
const diagnosticsWindow = 64

// Diagnostics returns up to limit recent events at Info level or above,
// oldest first.
func (c *Controller) Diagnostics(limit int) []events.Event {
	if limit <= 0 {
		return nil
	}
	var out []events.Event
	for _, e := range c.bus.History(diagnosticsWindow) {
		if e.Type.Level() >= slog.LevelInfo {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// OnUserMessage sends text and waits for the reply. The conversation is
// persisted once the user message is appended and again after the call,
// whatever its outcome. It returns the backend error if any, else the first
// write error.
func (c *Controller) OnUserMessage(ctx context.Context, text string) error {
	turn, startErr := c.StartUserMessage(text)
	reply, err := c.FetchReply(ctx, turn)
	if finishErr := c.FinishUserMessage(turn, reply, err); finishErr != nil {
		return finishErr
	}
	return startErr
}

// StartUserMessage appends text as a user message and persists it. The
// returned turn is always valid; the error is a write error only.
func (c *Controller) StartUserMessage(text string) (chat.Turn, error) {
	turn := c.chat.BeginTurn(c.conv, text)
	return turn, c.Persist()
}

// FetchReply calls the backend for turn. It reads no controller state and may
// run on another goroutine.
func (c *Controller) FetchReply(ctx context.Context, turn chat.Turn) (string, error) {
	return c.chat.Fetch(ctx, turn)
}

// FinishUserMessage applies the outcome of FetchReply and persists. A backend
// error leaves only the user message in the log and is returned as is.
func (c *Controller) FinishUserMessage(turn chat.Turn, reply string, fetchErr error) error {
	if fetchErr != nil {
		c.bus.Publish(events.NewTypedEvent(events.SourceController, events.BackendFailedPayload{
			Model: turn.Model,
			Kind:  backend.KindOf(fetchErr).String(),
			Error: fetchErr.Error(),
		}))
		_ = c.Persist()
		return fetchErr
	}

	c.chat.CompleteTurn(c.conv, reply)
	c.bus.Publish(events.NewTypedEvent(events.SourceController, events.TurnCompletedPayload{
		Model:    turn.Model,
		ReplyLen: len(reply),
	}))
	return c.Persist()
}

// OnChangeModel switches the live conversation to newModel and persists.
func (c *Controller) OnChangeModel(newModel string) error {
	previous := c.conv.CurrentModel
	c.chat.ChangeModel(c.conv, newModel)
	c.bus.Publish(events.NewTypedEvent(events.SourceController, events.ModelChangedPayload{
		From: previous,
		To:   newModel,
	}))
	return c.Persist()
}

// Persist writes the live conversation to the store. On failure the error is
// logged, published and returned; the in-memory conversation is untouched.
func (c *Controller) Persist() error {
	if err := c.store.Save(c.key, c.conv); err != nil {
		c.log.Warn("persist failed", "error", err)
		c.bus.Publish(events.NewTypedEvent(events.SourceController, events.PersistFailedPayload{
			Key:   c.key,
			Error: err.Error(),
		}))
		return err
	}
	c.log.Debug("conversation persisted", "messages", c.conv.Len())
	return nil
}

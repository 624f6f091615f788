package models

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/tinychat/internal/backend"
	"github.com/dohr-michael/tinychat/internal/config"
)

// Factory builds a Generator for one model name.
type Factory func(ctx context.Context, modelName string) (Generator, error)

// generatorEntry holds a lazily-initialized generator.
type generatorEntry struct {
	gen  Generator
	err  error
	once sync.Once
}

// Client implements backend.Port. Generators are created on first use of
// each model name and reused afterwards.
type Client struct {
	provider string
	factory  Factory
	log      *slog.Logger
	handlers []callbacks.Handler

	mu      sync.RWMutex
	active  string
	entries map[string]*generatorEntry
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithFactory replaces the driver-based factory.
func WithFactory(f Factory) ClientOption {
	return func(c *Client) { c.factory = f }
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// WithCallbacks attaches Eino callback handlers to every call.
func WithCallbacks(handlers ...callbacks.Handler) ClientOption {
	return func(c *Client) { c.handlers = append(c.handlers, handlers...) }
}

// NewClient creates a Client for cfg. cfg.Model is the initial active model.
func NewClient(cfg config.BackendConfig, opts ...ClientOption) *Client {
	c := &Client{
		provider: strings.ToLower(cfg.Driver),
		active:   cfg.Model,
		entries:  make(map[string]*generatorEntry),
		log:      slog.Default(),
	}
	c.factory = func(ctx context.Context, modelName string) (Generator, error) {
		return CreateGenerator(ctx, cfg, modelName)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ backend.Port = (*Client)(nil)

// Send asks model for a reply to prompt. An empty model means the active one.
func (c *Client) Send(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = c.ActiveModel()
	}

	gen, err := c.generator(ctx, model)
	if err != nil {
		return "", err
	}

	if len(c.handlers) > 0 {
		ctx = callbacks.InitCallbacks(ctx, &callbacks.RunInfo{
			Name:      model,
			Type:      c.provider,
			Component: components.ComponentOfChatModel,
		}, c.handlers...)
	}

	msg, err := gen.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", classify(c.provider, err)
	}
	if msg == nil {
		return "", backend.Protocol(c.provider, "", errors.New("empty response"))
	}
	return msg.Content, nil
}

// SetActiveModel records model as the default for Send.
func (c *Client) SetActiveModel(model string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = model
}

// ActiveModel returns the model used when Send receives none.
func (c *Client) ActiveModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Client) generator(ctx context.Context, model string) (Generator, error) {
	c.mu.Lock()
	entry, ok := c.entries[model]
	if !ok {
		entry = &generatorEntry{}
		c.entries[model] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		c.log.Debug("creating generator", "provider", c.provider, "model", model)
		entry.gen, entry.err = c.factory(ctx, model)
		if entry.err != nil {
			c.log.Warn("generator unavailable", "provider", c.provider, "model", model, "error", entry.err)
		}
	})
	if entry.err != nil {
		// Configuration problems (missing key, bad base URL) are refused
		// before anything reaches the network.
		return nil, &backend.Error{Kind: backend.KindRejected, Provider: c.provider, Cause: entry.err}
	}
	return entry.gen, nil
}

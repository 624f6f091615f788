package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/dohr-michael/tinychat/internal/callbacks"
	"github.com/dohr-michael/tinychat/internal/chat"
	"github.com/dohr-michael/tinychat/internal/config"
	"github.com/dohr-michael/tinychat/internal/events"
	"github.com/dohr-michael/tinychat/internal/models"
	"github.com/dohr-michael/tinychat/internal/sessions"
	"github.com/dohr-michael/tinychat/internal/storage"
)

const eventBufferSize = 64

// loadConfig reads the config file and applies command-line overrides.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	// CLI flags override config
	if cmd.IsSet("driver") {
		cfg.Backend.Driver = strings.ToLower(cmd.String("driver"))
	}
	if cmd.IsSet("model") {
		cfg.Backend.Model = cmd.String("model")
	}
	if cmd.IsSet("base-url") {
		cfg.Backend.BaseURL = cmd.String("base-url")
	}
	if cmd.IsSet("storage") {
		cfg.Storage.Driver = strings.ToLower(cmd.String("storage"))
		// a file path default makes no sense as a row key, and vice versa
		switch {
		case cfg.Storage.Driver == "sqlite" && cfg.Storage.Key == config.ConversationPath():
			cfg.Storage.Key = config.DefaultSessionKey
		case cfg.Storage.Driver == "file" && cfg.Storage.Key == config.DefaultSessionKey:
			cfg.Storage.Key = config.ConversationPath()
		}
	}
	if cmd.IsSet("session") {
		cfg.Storage.Key = cmd.String("session")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger. The level comes from --debug, then
// the config.
func newLogger(w io.Writer, cfg *config.Config, debug bool) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		level = slog.LevelInfo
	}
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openLogFile opens the log file in append mode, creating its directory.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// openStore opens the configured persistence store.
func openStore(cfg *config.Config) (sessions.Store, error) {
	switch cfg.Storage.Driver {
	case "sqlite":
		return sessions.NewSQLiteStore(cfg.Storage.Database)
	default:
		return sessions.NewFileStore(), nil
	}
}

// runtime is everything a command needs to drive the conversation.
type runtime struct {
	cfg        *config.Config
	log        *slog.Logger
	bus        *events.Bus
	store      sessions.Store
	journal    *storage.EventJournal
	usage      *storage.UsageTracker
	controller *sessions.Controller
}

func newRuntime(ctx context.Context, cfg *config.Config, log *slog.Logger) (*runtime, error) {
	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	bus := events.NewBus(eventBufferSize)
	events.LogTo(bus, log.With("component", "events"))
	journal := storage.NewEventJournal(cfg.Log.Events, bus, log)
	usage := storage.NewUsageTracker(bus)

	client := models.NewClient(cfg.Backend,
		models.WithLogger(log),
		models.WithCallbacks(callbacks.NewEventBusHandler(bus)),
	)
	controller := sessions.NewController(ctx, sessions.ControllerOptions{
		Chat:         chat.NewService(client, log),
		Store:        store,
		DefaultModel: cfg.Backend.Model,
		Key:          cfg.Storage.Key,
		Bus:          bus,
		Logger:       log,
	})

	return &runtime{
		cfg:        cfg,
		log:        log,
		bus:        bus,
		store:      store,
		journal:    journal,
		usage:      usage,
		controller: controller,
	}, nil
}

// Close drains the bus so every queued event reaches the journal and the
// usage tracker, then releases the store.
func (r *runtime) Close() {
	r.bus.Close()
	for _, u := range r.usage.Usage() {
		r.log.Info("token usage", "model", u.Model, "calls", u.Calls, "input", u.Input, "output", u.Output)
	}
	r.journal.Close()
	r.usage.Close()
	if err := r.store.Close(); err != nil {
		r.log.Warn("close storage", "error", err)
	}
}

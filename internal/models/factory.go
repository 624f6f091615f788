package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dohr-michael/tinychat/internal/config"
)

// defaultTimeout is used when the config sets none. Local models can take a
// long time to load on first use.
func defaultTimeout(driver string) time.Duration {
	if driver == "ollama" {
		return 300 * time.Second
	}
	return 60 * time.Second
}

// CreateGenerator creates the Generator for modelName using the driver and
// transport settings of cfg.
func CreateGenerator(ctx context.Context, cfg config.BackendConfig, modelName string) (Generator, error) {
	driver := strings.ToLower(cfg.Driver)

	timeout := cfg.Timeout.Duration()
	if timeout <= 0 {
		timeout = defaultTimeout(driver)
	}
	hc := NewHTTPClient(driver, cfg.UserAgent, timeout, cfg.InsecureSkipVerify)

	switch driver {
	case "ollama":
		return NewOllama(ctx, cfg, modelName, hc)
	case "openai", "mistral", "anthropic", "gemini":
		auth, err := ResolveAuth(cfg)
		if err != nil {
			return nil, fmt.Errorf("resolve auth: %w", err)
		}
		switch driver {
		case "openai":
			return NewOpenAI(ctx, cfg, modelName, auth, hc)
		case "mistral":
			return NewMistral(ctx, cfg, modelName, auth, hc)
		case "anthropic":
			return NewAnthropic(ctx, cfg, modelName, auth, hc)
		default:
			return NewGemini(ctx, cfg, modelName, auth, hc)
		}
	default:
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}
}

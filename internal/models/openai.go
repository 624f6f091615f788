package models

import (
	"context"
	"net/http"

	einoopenai "github.com/cloudwego/eino-ext/components/model/openai"

	"github.com/dohr-michael/tinychat/internal/config"
)

const defaultMistralBaseURL = "https://api.mistral.ai/v1"

// NewOpenAI creates a ChatModel for the OpenAI API or any compatible server
// reachable at cfg.BaseURL.
func NewOpenAI(ctx context.Context, cfg config.BackendConfig, modelName string, auth ResolvedAuth, hc *http.Client) (Generator, error) {
	modelConfig := &einoopenai.ChatModelConfig{
		APIKey:     auth.Value,
		Model:      modelName,
		BaseURL:    cfg.BaseURL,
		Timeout:    hc.Timeout,
		HTTPClient: hc,
	}

	if cfg.MaxTokens > 0 {
		maxTokens := cfg.MaxTokens
		modelConfig.MaxCompletionTokens = &maxTokens
	}
	if temp, ok := floatOption(cfg.Options, "temperature"); ok {
		t := float32(temp)
		modelConfig.Temperature = &t
	}
	if topP, ok := floatOption(cfg.Options, "top_p"); ok {
		p := float32(topP)
		modelConfig.TopP = &p
	}

	return einoopenai.NewChatModel(ctx, modelConfig)
}

// NewMistral creates a Mistral AI ChatModel via the OpenAI-compatible API.
func NewMistral(ctx context.Context, cfg config.BackendConfig, modelName string, auth ResolvedAuth, hc *http.Client) (Generator, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultMistralBaseURL
	}
	return NewOpenAI(ctx, cfg, modelName, auth, hc)
}

package models

import (
	"context"
	"net/http"

	einoollama "github.com/cloudwego/eino-ext/components/model/ollama"

	"github.com/dohr-michael/tinychat/internal/config"
)

const defaultOllamaBaseURL = "http://localhost:11434"

// NewOllama creates a new Ollama ChatModel.
func NewOllama(ctx context.Context, cfg config.BackendConfig, modelName string, hc *http.Client) (Generator, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}

	modelConfig := &einoollama.ChatModelConfig{
		BaseURL:    baseURL,
		Model:      modelName,
		Timeout:    hc.Timeout,
		HTTPClient: hc,
	}

	opts := &einoollama.Options{}
	if cfg.MaxTokens > 0 {
		opts.NumPredict = cfg.MaxTokens
	}
	if temp, ok := floatOption(cfg.Options, "temperature"); ok {
		opts.Temperature = float32(temp)
	}
	if numCtx, ok := floatOption(cfg.Options, "num_ctx"); ok {
		opts.NumCtx = int(numCtx)
	}
	if numPredict, ok := floatOption(cfg.Options, "num_predict"); ok {
		opts.NumPredict = int(numPredict)
	}
	if topP, ok := floatOption(cfg.Options, "top_p"); ok {
		opts.TopP = float32(topP)
	}
	if topK, ok := floatOption(cfg.Options, "top_k"); ok {
		opts.TopK = int(topK)
	}
	modelConfig.Options = opts

	return einoollama.NewChatModel(ctx, modelConfig)
}

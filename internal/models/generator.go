// Package models implements backend.Port on top of the supported model
// providers (ollama, openai, mistral, anthropic, gemini).
package models

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Generator is the single capability tinychat needs from a provider: one
// non-streaming completion. The eino-ext chat models satisfy it directly; the
// anthropic and gemini adapters implement it over the vendor SDKs.
type Generator interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

var (
	_ Generator = (*AnthropicChatModel)(nil)
	_ Generator = (*GeminiChatModel)(nil)
)

// floatOption reads a numeric option that may have been decoded from JSON
// (float64) or YAML (int or float64).
func floatOption(opts map[string]any, key string) (float64, bool) {
	switch v := opts[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}

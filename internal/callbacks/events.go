// Package callbacks bridges Eino model callbacks to the event bus.
package callbacks

import (
	"context"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/model"
	ub "github.com/cloudwego/eino/utils/callbacks"

	"github.com/dohr-michael/tinychat/internal/events"
)

const maxErrorLen = 500

// NewEventBusHandler returns a handler publishing a model.call event for the
// start, end and failure of every chat model call.
func NewEventBusHandler(bus *events.Bus) callbacks.Handler {
	publish := func(payload events.ModelCallPayload) {
		bus.Publish(events.NewTypedEvent(events.SourceBackend, payload))
	}

	modelHandler := &ub.ModelCallbackHandler{
		OnStart: func(ctx context.Context, info *callbacks.RunInfo, input *model.CallbackInput) context.Context {
			payload := events.ModelCallPayload{
				Phase:    "request",
				Model:    info.Name,
				Provider: info.Type,
			}
			if input != nil {
				payload.MessageCount = len(input.Messages)
			}
			publish(payload)
			return ctx
		},

		OnEnd: func(ctx context.Context, info *callbacks.RunInfo, output *model.CallbackOutput) context.Context {
			payload := events.ModelCallPayload{
				Phase:    "response",
				Model:    info.Name,
				Provider: info.Type,
			}
			in, out := tokenUsage(output)
			payload.TokensInput, payload.TokensOutput = in, out
			publish(payload)
			return ctx
		},

		OnError: func(ctx context.Context, info *callbacks.RunInfo, err error) context.Context {
			publish(events.ModelCallPayload{
				Phase:    "error",
				Model:    info.Name,
				Provider: info.Type,
				Error:    truncate(err.Error(), maxErrorLen),
			})
			return ctx
		},
	}

	return ub.NewHandlerHelper().
		ChatModel(modelHandler).
		Handler()
}

// tokenUsage prefers the callback's own usage and falls back to the
// response metadata some drivers fill instead.
func tokenUsage(output *model.CallbackOutput) (int, int) {
	if output == nil {
		return 0, 0
	}
	if u := output.TokenUsage; u != nil {
		return u.PromptTokens, u.CompletionTokens
	}
	if output.Message != nil && output.Message.ResponseMeta != nil && output.Message.ResponseMeta.Usage != nil {
		u := output.Message.ResponseMeta.Usage
		return u.PromptTokens, u.CompletionTokens
	}
	return 0, 0
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... (truncated)"
}

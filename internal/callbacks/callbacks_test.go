package callbacks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/dohr-michael/tinychat/internal/events"
)

func waitForHistory(t *testing.T, bus *events.Bus, n int) []events.Event {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if h := bus.History(n); len(h) == n {
			return h
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d events, got %d", n, len(bus.History(n)))
	return nil
}

func runInfo() *callbacks.RunInfo {
	return &callbacks.RunInfo{Name: "nemotron", Type: "ollama", Component: components.ComponentOfChatModel}
}

func TestEventBusHandler_RequestAndResponse(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	ctx := callbacks.InitCallbacks(context.Background(), runInfo(), NewEventBusHandler(bus))
	ctx = callbacks.OnStart(ctx, &model.CallbackInput{Messages: []*schema.Message{schema.UserMessage("hi")}})
	callbacks.OnEnd(ctx, &model.CallbackOutput{
		Message:    schema.AssistantMessage("hello", nil),
		TokenUsage: &model.TokenUsage{PromptTokens: 3, CompletionTokens: 5},
	})

	history := waitForHistory(t, bus, 2)
	req, ok := events.ExtractPayload[events.ModelCallPayload](history[0])
	if !ok {
		t.Fatalf("expected model.call, got %s", history[0].Type)
	}
	if req.Phase != "request" || req.Model != "nemotron" || req.Provider != "ollama" || req.MessageCount != 1 {
		t.Errorf("unexpected request payload: %+v", req)
	}

	resp, _ := events.ExtractPayload[events.ModelCallPayload](history[1])
	if resp.Phase != "response" || resp.TokensInput != 3 || resp.TokensOutput != 5 {
		t.Errorf("unexpected response payload: %+v", resp)
	}
	if history[1].Source != events.SourceBackend {
		t.Errorf("expected source backend, got %s", history[1].Source)
	}
}

func TestEventBusHandler_Error(t *testing.T) {
	bus := events.NewBus(16)
	defer bus.Close()

	ctx := callbacks.InitCallbacks(context.Background(), runInfo(), NewEventBusHandler(bus))
	callbacks.OnError(ctx, errors.New(strings.Repeat("x", 600)))

	history := waitForHistory(t, bus, 1)
	p, _ := events.ExtractPayload[events.ModelCallPayload](history[0])
	if p.Phase != "error" {
		t.Fatalf("expected error phase, got %q", p.Phase)
	}
	if !strings.HasSuffix(p.Error, "... (truncated)") {
		t.Errorf("expected truncated error, got %d bytes", len(p.Error))
	}
}

func TestTokenUsage_FallsBackToResponseMeta(t *testing.T) {
	msg := schema.AssistantMessage("ok", nil)
	msg.ResponseMeta = &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 7, CompletionTokens: 2}}

	in, out := tokenUsage(&model.CallbackOutput{Message: msg})
	if in != 7 || out != 2 {
		t.Errorf("expected 7/2, got %d/%d", in, out)
	}
	if in, out := tokenUsage(nil); in != 0 || out != 0 {
		t.Errorf("expected zero usage for nil output, got %d/%d", in, out)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("hello", 100); got != "hello" {
		t.Errorf("expected unchanged, got %q", got)
	}
	if got := truncate("hello world", 0); got != "hello world" {
		t.Errorf("expected unchanged when max is 0, got %q", got)
	}
	got := truncate(strings.Repeat("a", 20), 10)
	if got != strings.Repeat("a", 10)+"... (truncated)" {
		t.Errorf("unexpected truncation %q", got)
	}
}

package models

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"google.golang.org/genai"

	"github.com/dohr-michael/tinychat/internal/config"
)

// GeminiChatModel implements Generator over the Gemini API.
type GeminiChatModel struct {
	client      *genai.Client
	modelName   string
	maxTokens   int
	temperature *float32
}

// NewGemini creates a Gemini Generator.
func NewGemini(ctx context.Context, cfg config.BackendConfig, modelName string, auth ResolvedAuth, hc *http.Client) (Generator, error) {
	clientConfig := &genai.ClientConfig{
		APIKey:     auth.Value,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: hc,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions.BaseURL = cfg.BaseURL
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	m := &GeminiChatModel{
		client:    client,
		modelName: modelName,
		maxTokens: cfg.MaxTokens,
	}
	if temp, ok := floatOption(cfg.Options, "temperature"); ok {
		t := float32(temp)
		m.temperature = &t
	}
	return m, nil
}

func (m *GeminiChatModel) Generate(ctx context.Context, messages []*schema.Message, opts ...model.Option) (outMsg *schema.Message, err error) {
	ctx = callbacks.EnsureRunInfo(ctx, "Gemini", components.ComponentOfChatModel)

	cbInput := &model.CallbackInput{
		Messages: messages,
		Config:   &model.Config{Model: m.modelName},
	}
	ctx = callbacks.OnStart(ctx, cbInput)
	defer func() {
		if err != nil {
			callbacks.OnError(ctx, err)
		}
	}()

	options := model.GetCommonOptions(&model.Options{
		Temperature: m.temperature,
		MaxTokens:   &m.maxTokens,
	}, opts...)

	genCfg := &genai.GenerateContentConfig{Temperature: options.Temperature}
	if options.MaxTokens != nil && *options.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(*options.MaxTokens)
	}

	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case schema.System:
			genCfg.SystemInstruction = genai.NewContentFromText(msg.Content, genai.RoleUser)
		case schema.Assistant:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(msg.Content, genai.RoleUser))
		}
	}

	res, err := m.client.Models.GenerateContent(ctx, m.modelName, contents, genCfg)
	if err != nil {
		return nil, err
	}
	outMsg = &schema.Message{Role: schema.Assistant, Content: res.Text()}

	cbOutput := &model.CallbackOutput{Message: outMsg, Config: cbInput.Config}
	if u := res.UsageMetadata; u != nil {
		cbOutput.TokenUsage = &model.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	callbacks.OnEnd(ctx, cbOutput)
	return outMsg, nil
}

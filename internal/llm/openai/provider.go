package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/sashabaranov/go-openai"
)

const contentFilterCode = "content_filter"

// Provider implements llm.Provider for OpenAI compatible chat APIs
type Provider struct {
	apiKey       string
	defaultModel string
	client       *openai.Client
}

// NewProvider creates a new OpenAI provider
func NewProvider(cfg config.OpenAIConfig) *Provider {
	defaultModel := cfg.Model
	if defaultModel == "" {
		defaultModel = openai.GPT4oMini
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Provider{
		apiKey:       cfg.APIKey,
		defaultModel: defaultModel,
		client:       openai.NewClientWithConfig(clientCfg),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "openai"
}

// AvailableModels returns list of supported models
func (p *Provider) AvailableModels() []string {
	return []string{
		"gpt-4o",
		"gpt-4o-mini",
		"gpt-4-turbo",
		"gpt-3.5-turbo",
	}
}

// DefaultModel returns the default model
func (p *Provider) DefaultModel() string {
	return p.defaultModel
}

// IsConfigured checks if provider has valid credentials
func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Chat sends the system prompt, the history and the new message
func (p *Provider) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return p.complete(ctx, req, buildMessages(req.System, req.History, req.Message))
}

// Generate sends a single user prompt
func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	return p.complete(ctx, req, buildMessages(req.System, nil, req.Message))
}

func (p *Provider) complete(ctx context.Context, req llm.Request, messages []openai.ChatCompletionMessage) (*llm.Response, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	start := time.Now()
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    model,
		Messages: messages,
	})
	latencyMs := time.Since(start).Milliseconds()

	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.Code == contentFilterCode {
			return &llm.Response{BlockReason: "SAFETY", Model: model, LatencyMs: latencyMs}, nil
		}
		return nil, fmt.Errorf("openai request failed: %w", err)
	}

	out := &llm.Response{
		Model:      resp.Model,
		TokensUsed: resp.Usage.TotalTokens,
		LatencyMs:  latencyMs,
	}
	for _, choice := range resp.Choices {
		out.Candidates = append(out.Candidates, llm.Candidate{
			Text:         choice.Message.Content,
			FinishReason: string(choice.FinishReason),
		})
	}

	return out, nil
}

func buildMessages(system string, history []llm.Turn, message string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, t := range history {
		role := openai.ChatMessageRoleUser
		if t.Role == llm.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: t.Text})
	}
	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})
}

package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-1.5-flash"

// Provider implements llm.Provider on top of the Gemini API.
// The client is shared by all turns and closed on shutdown.
type Provider struct {
	apiKey string
	model  string
	client *genai.Client
}

// NewProvider creates a provider. Without an API key it stays unconfigured and opens no client.
func NewProvider(ctx context.Context, cfg config.GeminiConfig) (*Provider, error) {
	p := &Provider{
		apiKey: cfg.APIKey,
		model:  cfg.Model,
	}
	if !p.IsConfigured() {
		return p, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(p.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	p.client = client

	return p, nil
}

func (p *Provider) Name() string {
	return "gemini"
}

func (p *Provider) AvailableModels() []string {
	return []string{
		"gemini-2.5-flash",
		"gemini-1.5-flash",
		"gemini-1.5-pro",
	}
}

func (p *Provider) DefaultModel() string {
	if p.model != "" {
		return p.model
	}
	return defaultModel
}

func (p *Provider) IsConfigured() bool {
	return p.apiKey != ""
}

// Close releases the underlying client
func (p *Provider) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func (p *Provider) Chat(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model, name, err := p.generativeModel(req)
	if err != nil {
		return nil, err
	}

	cs := model.StartChat()
	cs.History = toContents(req.History)

	start := time.Now()
	resp, err := cs.SendMessage(ctx, genai.Text(req.Message))
	return finish(resp, err, name, time.Since(start))
}

func (p *Provider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	model, name, err := p.generativeModel(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(req.Message))
	return finish(resp, err, name, time.Since(start))
}

func (p *Provider) generativeModel(req llm.Request) (*genai.GenerativeModel, string, error) {
	if p.client == nil {
		return nil, "", fmt.Errorf("gemini provider is not configured (missing API key)")
	}

	name := req.Model
	if name == "" {
		name = p.DefaultModel()
	}

	model := p.client.GenerativeModel(name)
	model.SafetySettings = safetySettings()
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	return model, name, nil
}

func safetySettings() []*genai.SafetySetting {
	categories := []genai.HarmCategory{
		genai.HarmCategoryHarassment,
		genai.HarmCategoryHateSpeech,
		genai.HarmCategorySexuallyExplicit,
		genai.HarmCategoryDangerousContent,
	}

	settings := make([]*genai.SafetySetting, 0, len(categories))
	for _, c := range categories {
		settings = append(settings, &genai.SafetySetting{
			Category:  c,
			Threshold: genai.HarmBlockMediumAndAbove,
		})
	}
	return settings
}

// finish turns a genai result into an llm.Response. Blocked prompts come back
// from the SDK as errors but are answers as far as callers are concerned.
func finish(resp *genai.GenerateContentResponse, err error, model string, latency time.Duration) (*llm.Response, error) {
	if err != nil {
		var blocked *genai.BlockedError
		if !errors.As(err, &blocked) {
			return nil, fmt.Errorf("gemini generation error: %w", err)
		}
		resp = &genai.GenerateContentResponse{PromptFeedback: blocked.PromptFeedback}
		if blocked.Candidate != nil {
			resp.Candidates = []*genai.Candidate{blocked.Candidate}
		}
	}

	out := fromResponse(resp)
	out.Model = model
	out.LatencyMs = latency.Milliseconds()
	return out, nil
}

func toContents(history []llm.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == llm.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Text)},
		})
	}
	return contents
}

func fromResponse(resp *genai.GenerateContentResponse) *llm.Response {
	out := &llm.Response{}
	if resp == nil {
		return out
	}

	for _, c := range resp.Candidates {
		if c == nil {
			continue
		}
		out.Candidates = append(out.Candidates, llm.Candidate{
			Text:         candidateText(c),
			FinishReason: c.FinishReason.String(),
		})
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		out.BlockReason = blockReasonName(resp.PromptFeedback.BlockReason)
	}

	if resp.UsageMetadata != nil {
		out.TokensUsed = int(resp.UsageMetadata.TotalTokenCount)
	}

	return out
}

func candidateText(c *genai.Candidate) string {
	if c.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range c.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

func blockReasonName(r genai.BlockReason) string {
	switch r {
	case genai.BlockReasonSafety:
		return "SAFETY"
	case genai.BlockReasonOther:
		return "OTHER"
	}
	return strings.ToUpper(strings.TrimPrefix(r.String(), "BlockReason"))
}

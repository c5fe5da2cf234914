package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/Sharadgup/AGI-Innovation/internal/llm/openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if got != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(got))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestProvider_Chat(t *testing.T) {
	var got chatRequest
	srv := newServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": "Hi there"}, "finish_reason": "stop"}],
		"usage": {"prompt_tokens": 5, "completion_tokens": 2, "total_tokens": 7}
	}`, &got)

	p := openai.NewProvider(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	resp, err := p.Chat(context.Background(), llm.Request{
		System:  "grounding",
		History: []llm.Turn{{Role: llm.RoleUser, Text: "q1"}, {Role: llm.RoleAssistant, Text: "a1"}},
		Message: "q2",
	})
	require.NoError(t, err)

	require.Len(t, resp.Candidates, 1)
	assert.Equal(t, "Hi there", resp.Candidates[0].Text)
	assert.Equal(t, 7, resp.TokensUsed)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "q2", got.Messages[3].Content)
}

func TestProvider_Generate_IgnoresHistory(t *testing.T) {
	var got chatRequest
	srv := newServer(t, http.StatusOK, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "ok"}}]}`, &got)

	p := openai.NewProvider(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	_, err := p.Generate(context.Background(), llm.Request{
		History: []llm.Turn{{Role: llm.RoleUser, Text: "old"}},
		Message: "prompt",
	})
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, "prompt", got.Messages[0].Content)
}

func TestProvider_ContentFilter(t *testing.T) {
	srv := newServer(t, http.StatusBadRequest, `{"error": {"message": "filtered", "type": "invalid_request_error", "code": "content_filter"}}`, nil)

	p := openai.NewProvider(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	resp, err := p.Chat(context.Background(), llm.Request{Message: "bad"})
	require.NoError(t, err)
	assert.Equal(t, llm.OutcomeBlocked, llm.Classify(resp).Kind)
	assert.Equal(t, "SAFETY", resp.BlockReason)
}

func TestProvider_ServerError(t *testing.T) {
	srv := newServer(t, http.StatusInternalServerError, `{"error": {"message": "boom", "type": "server_error"}}`, nil)

	p := openai.NewProvider(config.OpenAIConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})

	_, err := p.Chat(context.Background(), llm.Request{Message: "hi"})
	assert.Error(t, err)
}

func TestProvider_IsConfigured(t *testing.T) {
	assert.False(t, openai.NewProvider(config.OpenAIConfig{}).IsConfigured())
	assert.Equal(t, "gpt-4o-mini", openai.NewProvider(config.OpenAIConfig{}).DefaultModel())
}

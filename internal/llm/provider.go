package llm

import "context"

// Role is the speaker of a transcript turn as the model sees it
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a model-ready transcript
type Turn struct {
	Role Role
	Text string
}

// Request contains the input of a completion call
type Request struct {
	// System carries grounding text sent as a system instruction
	System string

	// History is the prior transcript, oldest first. Ignored in single-shot mode.
	History []Turn

	// Message is the new user message or the whole prompt in single-shot mode
	Message string

	Model string
}

// Candidate is one generated alternative
type Candidate struct {
	Text         string
	FinishReason string
}

// Response contains the raw result of a completion call
type Response struct {
	Candidates []Candidate

	// BlockReason is set when the prompt itself was refused
	BlockReason string

	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for completion providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Chat continues a conversation seeded with req.History
	Chat(ctx context.Context, req Request) (*Response, error)

	// Generate sends req.Message as a single prompt without history
	Generate(ctx context.Context, req Request) (*Response, error)
}

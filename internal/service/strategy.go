package service

import (
	"context"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
)

// User facing error texts
const (
	MsgAuthRequired       = "Auth required."
	MsgStoreUnavailable   = "Chat database service unavailable."
	MsgAIUnavailable      = "AI service unavailable."
	MsgInvalidFormat      = "Invalid format."
	MsgMissingText        = "Missing text or context ID."
	MsgInvalidContextID   = "Invalid context ID."
	MsgSessionError       = "Session error."
	MsgPDFContextError    = "PDF context error."
	MsgPDFContextRetrieve = "Error retrieving PDF context."
	MsgRateLimited        = "Rate limit exceeded."
	MsgServerError        = "Server error."
)

// RejectError stops a turn during validation. Message is shown to the caller.
type RejectError struct {
	Err     error
	Message string
}

func (e *RejectError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *RejectError) Unwrap() error {
	return e.Err
}

func reject(err error, message string) *RejectError {
	return &RejectError{Err: err, Message: message}
}

// Turn carries one user message through the engine
type Turn struct {
	Kind     domain.ContextKind
	Key      string
	Identity domain.Identity
	Text     string
	Lang     string

	// Grounding is the document excerpt resolved by Prepare
	Grounding string
}

// Ref addresses the conversation the turn belongs to
func (t *Turn) Ref() domain.ConversationRef {
	return domain.ConversationRef{
		Kind:     t.Kind,
		Key:      t.Key,
		UserID:   t.Identity.UserID,
		Username: t.Identity.Username,
	}
}

// Reply is the single AI payload emitted for a turn
type Reply struct {
	Text    string
	Lang    string
	Persist bool
	Outcome string
}

// Completer is the completion capability the engine calls
type Completer interface {
	Available() bool
	Complete(ctx context.Context, mode llm.Mode, req llm.Request) llm.Outcome
}

// TurnLimiter throttles turns per caller
type TurnLimiter interface {
	Allow(ctx context.Context, key string) (bool, int, time.Time, error)
}

// ContextStrategy holds everything that differs between the chat contexts
type ContextStrategy interface {
	Kind() domain.ContextKind

	// Window is the number of prior messages sent to the model
	Window() int

	// DeriveKey returns the conversation key for an inbound message
	DeriveKey(id domain.Identity, in domain.InboundMessage) (string, error)

	// Language returns the language tag recorded on the turn, empty when the context has none
	Language(in domain.InboundMessage) string

	// Prepare resolves grounding and access before anything is persisted
	Prepare(ctx context.Context, t *Turn) error

	// Seed returns the transcript used when the conversation has no history
	Seed(ctx context.Context, t *Turn) []llm.Turn

	// Request builds the primary completion request
	Request(t *Turn, history []llm.Turn) llm.Request

	// PostProcess turns the primary outcome into the reply, possibly calling the completer again
	PostProcess(ctx context.Context, c Completer, out llm.Outcome, t *Turn) Reply
}

// replyFor maps an outcome onto a reply; only successes are persisted
func replyFor(out llm.Outcome, lang string) Reply {
	switch out.Kind {
	case llm.OutcomeSuccess:
		return Reply{Text: out.Text, Lang: lang, Persist: true, Outcome: out.Kind.String()}
	case llm.OutcomeBlocked:
		return Reply{Text: domain.BlockedSentinel(out.Reason), Lang: lang, Outcome: out.Kind.String()}
	case llm.OutcomeEmpty:
		return Reply{Text: domain.SentinelEmpty, Lang: lang, Outcome: out.Kind.String()}
	default:
		return Reply{Text: domain.SentinelError, Lang: lang, Outcome: llm.OutcomeFailure.String()}
	}
}

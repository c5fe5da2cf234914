package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/metrics"
	"github.com/rs/zerolog/log"
)

// Mode selects how the provider is called
type Mode string

const (
	// ModeChat seeds the call with prior turns
	ModeChat Mode = "chat"
	// ModeSingleShot sends one prompt without history
	ModeSingleShot Mode = "single_shot"
)

// OutcomeKind is the normalized result of a completion call
type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	OutcomeBlocked
	OutcomeEmpty
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeEmpty:
		return "empty"
	default:
		return "failure"
	}
}

// Outcome is what callers get back from the Invoker. Exactly one variant is populated.
type Outcome struct {
	Kind   OutcomeKind
	Text   string
	Reason string
	Err    error

	// NoCandidates marks an Empty outcome where the provider returned no candidate at all
	NoCandidates bool
}

// Classify maps a provider response onto an outcome.
// Candidates win over prompt feedback; the first candidate is the answer.
func Classify(resp *Response) Outcome {
	if resp == nil {
		return Outcome{Kind: OutcomeEmpty, NoCandidates: true}
	}
	if len(resp.Candidates) > 0 {
		text := resp.Candidates[0].Text
		if strings.TrimSpace(text) == "" {
			return Outcome{Kind: OutcomeEmpty}
		}
		return Outcome{Kind: OutcomeSuccess, Text: text}
	}
	if resp.BlockReason != "" {
		return Outcome{Kind: OutcomeBlocked, Reason: resp.BlockReason}
	}
	return Outcome{Kind: OutcomeEmpty, NoCandidates: true}
}

// Invoker wraps a provider so that every call ends in one of four outcomes
type Invoker struct {
	provider Provider
	timeout  time.Duration
}

// NewInvoker creates an invoker enforcing timeout on every call
func NewInvoker(provider Provider, timeout time.Duration) *Invoker {
	return &Invoker{provider: provider, timeout: timeout}
}

// Available reports whether a configured provider backs the invoker
func (i *Invoker) Available() bool {
	return i != nil && i.provider != nil && i.provider.IsConfigured()
}

// ProviderName returns the backing provider name
func (i *Invoker) ProviderName() string {
	if i == nil || i.provider == nil {
		return ""
	}
	return i.provider.Name()
}

// Complete calls the provider and normalizes the result. It never panics and
// never returns an error; failures are reported as OutcomeFailure.
func (i *Invoker) Complete(ctx context.Context, mode Mode, req Request) (out Outcome) {
	if !i.Available() {
		return Outcome{Kind: OutcomeFailure, Err: errors.New("completion provider not configured")}
	}

	logger := log.Ctx(ctx)
	name := i.provider.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Str("provider", name).Msg("completion call panicked")
			out = Outcome{Kind: OutcomeFailure, Err: fmt.Errorf("completion panic: %v", r)}
		}
		metrics.RecordCompletion(name, string(mode), out.Kind.String(), time.Since(start).Seconds())
	}()

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	var (
		resp *Response
		err  error
	)
	switch mode {
	case ModeSingleShot:
		resp, err = i.provider.Generate(ctx, req)
	default:
		resp, err = i.provider.Chat(ctx, req)
	}
	if err != nil {
		logger.Error().Err(err).Str("provider", name).Str("mode", string(mode)).Msg("completion call failed")
		return Outcome{Kind: OutcomeFailure, Err: err}
	}

	out = Classify(resp)

	evt := logger.Info()
	if out.Kind == OutcomeBlocked {
		evt = logger.Warn().Str("block_reason", out.Reason)
	}
	evt = evt.Str("provider", name).
		Str("mode", string(mode)).
		Str("outcome", out.Kind.String())
	if resp != nil {
		evt = evt.Int("candidates", len(resp.Candidates)).
			Int("tokens", resp.TokensUsed).
			Int64("latency_ms", resp.LatencyMs)
	}
	evt.Msg("completion finished")

	return out
}

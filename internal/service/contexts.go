package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/rs/zerolog/log"
)

// DefaultVoiceLang is assumed when the client sends no language tag
const DefaultVoiceLang = "en-US"

// NewStrategies builds the four chat contexts
func NewStrategies(cfg config.ChatConfig, docs domain.DocumentRepository) []ContextStrategy {
	return []ContextStrategy{
		&ReportStrategy{window: cfg.ReportWindow, prefix: cfg.ContextPrefixChars, docs: docs},
		&DashboardStrategy{window: cfg.DashboardWindow},
		&PDFStrategy{window: cfg.PDFWindow, prefix: cfg.ContextPrefixChars, docs: docs},
		&VoiceStrategy{window: cfg.VoiceWindow},
	}
}

// base holds the behaviour shared by the chat contexts
type base struct{}

func (base) Language(domain.InboundMessage) string { return "" }

func (base) Prepare(context.Context, *Turn) error { return nil }

func (base) Seed(context.Context, *Turn) []llm.Turn { return nil }

func (base) Request(t *Turn, history []llm.Turn) llm.Request {
	return llm.Request{History: history, Message: t.Text}
}

func (base) PostProcess(_ context.Context, _ Completer, out llm.Outcome, t *Turn) Reply {
	return replyFor(out, t.Lang)
}

// documentKey reads the client supplied document id
func documentKey(in domain.InboundMessage) (string, error) {
	key := in.Key()
	if key == "" {
		return "", reject(domain.ErrInvalidPayload, MsgMissingText)
	}
	if !domain.IsValidID(key) {
		return "", reject(domain.ErrInvalidPayload, MsgInvalidContextID)
	}
	return key, nil
}

// ownerKey scopes the conversation to the caller
func ownerKey(id domain.Identity) (string, error) {
	if !domain.IsValidID(id.UserID) {
		return "", reject(domain.ErrAuthRequired, MsgSessionError)
	}
	return id.UserID, nil
}

// ReportStrategy chats about a generated report, keyed by documentation id
type ReportStrategy struct {
	base
	window int
	prefix int
	docs   domain.DocumentRepository
}

func (s *ReportStrategy) Kind() domain.ContextKind { return domain.KindReport }

func (s *ReportStrategy) Window() int { return s.window }

func (s *ReportStrategy) DeriveKey(_ domain.Identity, in domain.InboundMessage) (string, error) {
	return documentKey(in)
}

// Seed injects the head of the report ahead of the first question
func (s *ReportStrategy) Seed(ctx context.Context, t *Turn) []llm.Turn {
	html, err := s.docs.ReportContext(ctx, t.Key)
	if err != nil {
		if !errors.Is(err, domain.ErrContextNotFound) {
			log.Ctx(ctx).Warn().Err(err).Str("key", t.Key).Msg("failed to load report context")
		}
		return nil
	}
	if strings.TrimSpace(html) == "" {
		return nil
	}
	return llm.ReportSeed(llm.Truncate(html, s.prefix))
}

// DashboardStrategy is the general purpose chat, one conversation per user
type DashboardStrategy struct {
	base
	window int
}

func (s *DashboardStrategy) Kind() domain.ContextKind { return domain.KindDashboard }

func (s *DashboardStrategy) Window() int { return s.window }

func (s *DashboardStrategy) DeriveKey(id domain.Identity, _ domain.InboundMessage) (string, error) {
	return ownerKey(id)
}

// PDFStrategy chats about an analysed PDF owned by the caller
type PDFStrategy struct {
	base
	window int
	prefix int
	docs   domain.DocumentRepository
}

func (s *PDFStrategy) Kind() domain.ContextKind { return domain.KindPDF }

func (s *PDFStrategy) Window() int { return s.window }

func (s *PDFStrategy) DeriveKey(_ domain.Identity, in domain.InboundMessage) (string, error) {
	return documentKey(in)
}

// Prepare checks ownership and loads the extracted text
func (s *PDFStrategy) Prepare(ctx context.Context, t *Turn) error {
	text, err := s.docs.PDFContext(ctx, t.Key, t.Identity.UserID)
	switch {
	case err == nil:
		t.Grounding = llm.Truncate(text, s.prefix)
		return nil
	case errors.Is(err, domain.ErrContextNotFound):
		return reject(err, MsgPDFContextError)
	case errors.Is(err, domain.ErrInvalidPayload):
		return reject(err, MsgInvalidContextID)
	default:
		return reject(err, MsgPDFContextRetrieve)
	}
}

// Request sends the document excerpt as system instruction on every turn
func (s *PDFStrategy) Request(t *Turn, history []llm.Turn) llm.Request {
	return llm.Request{
		System:  llm.BuildPDFSystemPrompt(t.Grounding),
		History: history,
		Message: t.Text,
	}
}

// VoiceStrategy answers transcribed speech in the caller's language
type VoiceStrategy struct {
	base
	window int
}

func (s *VoiceStrategy) Kind() domain.ContextKind { return domain.KindVoice }

func (s *VoiceStrategy) Window() int { return s.window }

func (s *VoiceStrategy) DeriveKey(id domain.Identity, _ domain.InboundMessage) (string, error) {
	return ownerKey(id)
}

func (s *VoiceStrategy) Language(in domain.InboundMessage) string {
	if lang := strings.TrimSpace(in.Lang); lang != "" {
		return lang
	}
	return DefaultVoiceLang
}

func (s *VoiceStrategy) Request(t *Turn, history []llm.Turn) llm.Request {
	return llm.Request{
		History: history,
		Message: llm.BuildVoicePrompt(t.Text, llm.LanguageName(t.Lang)),
	}
}

func (s *VoiceStrategy) PostProcess(ctx context.Context, c Completer, out llm.Outcome, t *Turn) Reply {
	if !needsFallback(t.Lang, out) {
		return replyFor(out, t.Lang)
	}
	return languageFallback(ctx, c, t.Lang)
}

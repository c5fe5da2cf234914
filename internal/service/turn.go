package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/Sharadgup/AGI-Innovation/internal/metrics"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// Responder delivers turn events to the caller that sent the message
type Responder interface {
	Typing(isTyping bool)
	Reply(msg domain.OutboundMessage)
	Error(message string)
}

// TurnService runs one inbound message through the conversation turn state machine
type TurnService struct {
	store      domain.ConversationStore
	completer  Completer
	limiter    TurnLimiter
	history    *HistoryBuilder
	strategies map[domain.ContextKind]ContextStrategy
	validate   *validator.Validate
}

// NewTurnService creates a new turn service. store, completer and limiter may be nil.
func NewTurnService(
	store domain.ConversationStore,
	completer Completer,
	limiter TurnLimiter,
	strategies []ContextStrategy,
) *TurnService {
	byKind := make(map[domain.ContextKind]ContextStrategy, len(strategies))
	for _, s := range strategies {
		byKind[s.Kind()] = s
	}
	return &TurnService{
		store:      store,
		completer:  completer,
		limiter:    limiter,
		history:    NewHistoryBuilder(store),
		strategies: byKind,
		validate:   validator.New(),
	}
}

// Strategy returns the strategy registered for kind
func (s *TurnService) Strategy(kind domain.ContextKind) (ContextStrategy, bool) {
	st, ok := s.strategies[kind]
	return st, ok
}

// HandleMessage processes one user message. Failures are reported through r, never returned.
func (s *TurnService) HandleMessage(ctx context.Context, kind domain.ContextKind, id *domain.Identity, in domain.InboundMessage, r Responder) {
	var (
		turn   *Turn
		reply  Reply
		typing bool
	)
	logger := log.Ctx(ctx)

	defer func() {
		rec := recover()
		if rec != nil {
			logger.Error().Interface("panic", rec).Str("kind", string(kind)).Msg("turn panicked")
		}
		if turn == nil {
			// rejections already replied; a panic while validating becomes an error event
			if rec != nil {
				metrics.RecordTurn(string(kind), "rejected")
				r.Error(MsgServerError)
			}
			return
		}
		if rec != nil {
			reply = Reply{Text: domain.SentinelError, Lang: turn.Lang, Outcome: llm.OutcomeFailure.String()}
		}
		if typing {
			r.Typing(false)
		}
		r.Reply(domain.OutboundMessage{Role: domain.RoleAI, Text: reply.Text, Lang: reply.Lang})
		metrics.RecordTurn(string(turn.Kind), reply.Outcome)
		logger.Debug().Str("outcome", reply.Outcome).Msg("turn END")
	}()

	strategy, accepted, err := s.accept(ctx, kind, id, in)
	if err != nil {
		var rej *RejectError
		msg := MsgServerError
		if errors.As(err, &rej) {
			msg = rej.Message
		}
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("turn rejected")
		metrics.RecordTurn(string(kind), "rejected")
		r.Error(msg)
		return
	}

	turnLogger := logger.With().Str("kind", string(accepted.Kind)).Str("key", accepted.Key).Logger()
	logger = &turnLogger
	ctx = turnLogger.WithContext(ctx)
	turn = accepted
	logger.Debug().Msg("turn START")

	userMsg := domain.NewMessage(domain.RoleUser, turn.Text, turn.Lang)
	s.save(ctx, turn, userMsg)

	r.Typing(true)
	typing = true

	history := s.history.Build(ctx, strategy, turn, &userMsg)
	out := s.completer.Complete(ctx, llm.ModeChat, strategy.Request(turn, history))
	reply = strategy.PostProcess(ctx, s.completer, out, turn)

	if reply.Persist && !domain.IsSentinel(reply.Text) && strings.TrimSpace(reply.Text) != "" {
		s.save(ctx, turn, domain.NewMessage(domain.RoleAI, reply.Text, reply.Lang))
	}
}

// accept runs the Validating state
func (s *TurnService) accept(ctx context.Context, kind domain.ContextKind, id *domain.Identity, in domain.InboundMessage) (ContextStrategy, *Turn, error) {
	if id == nil || strings.TrimSpace(id.UserID) == "" {
		return nil, nil, reject(domain.ErrAuthRequired, MsgAuthRequired)
	}

	strategy, ok := s.strategies[kind]
	if !ok {
		return nil, nil, fmt.Errorf("unknown context kind %q", kind)
	}

	if s.store == nil {
		return nil, nil, reject(domain.ErrStoreUnavailable, MsgStoreUnavailable)
	}
	if s.completer == nil || !s.completer.Available() {
		return nil, nil, reject(domain.ErrServiceUnavailable, MsgAIUnavailable)
	}

	if err := s.validate.Struct(in); err != nil {
		return nil, nil, reject(fmt.Errorf("%w: %w", domain.ErrInvalidPayload, err), MsgInvalidFormat)
	}
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, nil, reject(domain.ErrInvalidPayload, MsgMissingText)
	}

	key, err := strategy.DeriveKey(*id, in)
	if err != nil {
		return nil, nil, err
	}

	if s.limiter != nil {
		allowed, _, _, err := s.limiter.Allow(ctx, string(kind)+":"+id.UserID)
		switch {
		case err != nil:
			log.Ctx(ctx).Warn().Err(err).Msg("rate limiter unavailable, allowing turn")
		case !allowed:
			return nil, nil, reject(domain.ErrRateLimited, MsgRateLimited)
		}
	}

	turn := &Turn{
		Kind:     kind,
		Key:      key,
		Identity: *id,
		Text:     text,
		Lang:     strategy.Language(in),
	}
	if err := strategy.Prepare(ctx, turn); err != nil {
		return nil, nil, err
	}
	return strategy, turn, nil
}

// save appends msg; failures, panics included, are logged and counted only
func (s *TurnService) save(ctx context.Context, t *Turn, msg domain.Message) {
	defer func() {
		if rec := recover(); rec != nil {
			s.saveFailed(ctx, t, msg, fmt.Errorf("append message panicked: %v", rec))
		}
	}()
	if err := s.store.AppendMessage(ctx, t.Ref(), msg); err != nil {
		s.saveFailed(ctx, t, msg, err)
	}
}

func (s *TurnService) saveFailed(ctx context.Context, t *Turn, msg domain.Message, err error) {
	log.Ctx(ctx).Error().Err(err).Str("role", string(msg.Role)).Msg("failed to save chat message")
	metrics.RecordStoreWriteFailure(string(t.Kind), string(msg.Role))
}

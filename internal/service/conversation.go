package service

import (
	"context"
	"fmt"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
)

// MaxHistoryLimit caps conversation reads over HTTP
const MaxHistoryLimit = 100

// ConversationService serves read-only conversation history
type ConversationService struct {
	store domain.ConversationStore
	turns *TurnService
}

// NewConversationService creates a new conversation service
func NewConversationService(store domain.ConversationStore, turns *TurnService) *ConversationService {
	return &ConversationService{store: store, turns: turns}
}

// Recent returns the trailing messages of a conversation the caller may access.
// limit <= 0 selects the context's history window.
func (s *ConversationService) Recent(ctx context.Context, kind domain.ContextKind, id domain.Identity, contextKey string, limit int) ([]domain.Message, error) {
	strategy, ok := s.turns.Strategy(kind)
	if !ok {
		return nil, reject(domain.ErrInvalidPayload, MsgInvalidContextID)
	}
	if s.store == nil {
		return nil, reject(domain.ErrStoreUnavailable, MsgStoreUnavailable)
	}

	key, err := strategy.DeriveKey(id, domain.InboundMessage{ContextKey: contextKey})
	if err != nil {
		return nil, err
	}

	// pdf conversations are only visible to the owner of the analysis
	turn := &Turn{Kind: kind, Key: key, Identity: id}
	if err := strategy.Prepare(ctx, turn); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = strategy.Window()
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	msgs, err := s.store.ReadRecentMessages(ctx, kind, key, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read conversation: %w", err)
	}
	return msgs, nil
}

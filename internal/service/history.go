package service

import (
	"context"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/rs/zerolog/log"
)

// HistoryBuilder turns stored messages into a model-ready transcript. It never writes.
type HistoryBuilder struct {
	store domain.ConversationStore
}

// NewHistoryBuilder creates a new history builder
func NewHistoryBuilder(store domain.ConversationStore) *HistoryBuilder {
	return &HistoryBuilder{store: store}
}

// Build returns up to strategy.Window() prior turns, oldest first. current is the
// message appended for this turn and is left out since it is sent separately.
// An empty conversation falls back to the strategy's seed.
func (b *HistoryBuilder) Build(ctx context.Context, strategy ContextStrategy, t *Turn, current *domain.Message) []llm.Turn {
	var history []llm.Turn

	if window := strategy.Window(); window > 0 {
		msgs, err := b.recent(ctx, t, window, current)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Str("kind", string(t.Kind)).Str("key", t.Key).Msg("failed to build chat history")
		}
		history = toTranscript(msgs)
	}

	if len(history) == 0 {
		return strategy.Seed(ctx, t)
	}
	return history
}

func (b *HistoryBuilder) recent(ctx context.Context, t *Turn, window int, current *domain.Message) ([]domain.Message, error) {
	limit := window
	if current != nil {
		limit++
	}

	msgs, err := b.store.ReadRecentMessages(ctx, t.Kind, t.Key, limit)
	if err != nil {
		return nil, err
	}

	if n := len(msgs); current != nil && n > 0 && msgs[n-1].Same(*current) {
		msgs = msgs[:n-1]
	}
	if len(msgs) > window {
		msgs = msgs[len(msgs)-window:]
	}
	return msgs, nil
}

func toTranscript(msgs []domain.Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(msgs))
	for _, m := range msgs {
		role := llm.RoleUser
		if m.Role == domain.RoleAI {
			role = llm.RoleAssistant
		}
		turns = append(turns, llm.Turn{Role: role, Text: m.Text})
	}
	return turns
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHistoryBuilder_Build(t *testing.T) {
	ctx := context.Background()
	dashboard := &DashboardStrategy{window: 2}
	turn := &Turn{Kind: domain.KindDashboard, Key: testUserID}

	t0 := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	msg := func(role domain.MessageRole, text string, offset int) domain.Message {
		return domain.Message{Role: role, Text: text, Timestamp: t0.Add(time.Duration(offset) * time.Second)}
	}
	current := msg(domain.RoleUser, "now", 10)

	t.Run("drops the current message and keeps the window", func(t *testing.T) {
		store := new(MockConversationStore)
		store.On("ReadRecentMessages", ctx, domain.KindDashboard, testUserID, 3).Return([]domain.Message{
			msg(domain.RoleUser, "q1", 1),
			msg(domain.RoleAI, "a1", 2),
			current,
		}, nil)

		got := NewHistoryBuilder(store).Build(ctx, dashboard, turn, &current)

		assert.Equal(t, []llm.Turn{
			{Role: llm.RoleUser, Text: "q1"},
			{Role: llm.RoleAssistant, Text: "a1"},
		}, got)
	})

	t.Run("current message missing from store", func(t *testing.T) {
		store := new(MockConversationStore)
		store.On("ReadRecentMessages", ctx, domain.KindDashboard, testUserID, 3).Return([]domain.Message{
			msg(domain.RoleUser, "q1", 1),
			msg(domain.RoleAI, "a1", 2),
			msg(domain.RoleUser, "q2", 3),
		}, nil)

		got := NewHistoryBuilder(store).Build(ctx, dashboard, turn, &current)

		assert.Equal(t, []llm.Turn{
			{Role: llm.RoleAssistant, Text: "a1"},
			{Role: llm.RoleUser, Text: "q2"},
		}, got)
	})

	t.Run("same text at another time is kept", func(t *testing.T) {
		store := new(MockConversationStore)
		repeat := msg(domain.RoleUser, "now", 5)
		store.On("ReadRecentMessages", ctx, domain.KindDashboard, testUserID, 3).Return([]domain.Message{repeat}, nil)

		got := NewHistoryBuilder(store).Build(ctx, dashboard, turn, &current)

		assert.Equal(t, []llm.Turn{{Role: llm.RoleUser, Text: "now"}}, got)
	})

	t.Run("read failure yields empty history", func(t *testing.T) {
		store := new(MockConversationStore)
		store.On("ReadRecentMessages", ctx, domain.KindDashboard, testUserID, 3).Return(nil, errors.New("timeout"))

		got := NewHistoryBuilder(store).Build(ctx, dashboard, turn, &current)

		assert.Empty(t, got)
	})

	t.Run("zero window never reads", func(t *testing.T) {
		store := new(MockConversationStore)

		got := NewHistoryBuilder(store).Build(ctx, &DashboardStrategy{}, turn, &current)

		assert.Empty(t, got)
		store.AssertNotCalled(t, "ReadRecentMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty report conversation is seeded", func(t *testing.T) {
		store := new(MockConversationStore)
		docs := new(MockDocumentRepository)
		report := &ReportStrategy{window: 6, prefix: 5, docs: docs}
		reportTurn := &Turn{Kind: domain.KindReport, Key: testDocID}

		store.On("ReadRecentMessages", ctx, domain.KindReport, testDocID, 6).Return([]domain.Message{}, nil)
		docs.On("ReportContext", ctx, testDocID).Return("abcdefghij", nil)

		got := NewHistoryBuilder(store).Build(ctx, report, reportTurn, nil)

		assert.Equal(t, llm.ReportSeed("abcde"), got)
	})

	t.Run("report seed skipped when document is missing", func(t *testing.T) {
		store := new(MockConversationStore)
		docs := new(MockDocumentRepository)
		report := &ReportStrategy{window: 6, prefix: 3000, docs: docs}
		reportTurn := &Turn{Kind: domain.KindReport, Key: testDocID}

		store.On("ReadRecentMessages", ctx, domain.KindReport, testDocID, 6).Return([]domain.Message{}, nil)
		docs.On("ReportContext", ctx, testDocID).Return("", domain.ErrContextNotFound)

		got := NewHistoryBuilder(store).Build(ctx, report, reportTurn, nil)

		assert.Empty(t, got)
	})
}

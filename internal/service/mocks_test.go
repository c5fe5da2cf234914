package service

import (
	"context"
	"sync"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockConversationStore mocks the ConversationStore interface
type MockConversationStore struct {
	mock.Mock
}

func (m *MockConversationStore) AppendMessage(ctx context.Context, ref domain.ConversationRef, msg domain.Message) error {
	args := m.Called(ctx, ref, msg)
	return args.Error(0)
}

func (m *MockConversationStore) ReadRecentMessages(ctx context.Context, kind domain.ContextKind, key string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, kind, key, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockConversationStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockCompleter mocks the Completer interface
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Available() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockCompleter) Complete(ctx context.Context, mode llm.Mode, req llm.Request) llm.Outcome {
	args := m.Called(ctx, mode, req)
	return args.Get(0).(llm.Outcome)
}

// MockDocumentRepository mocks the DocumentRepository interface
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) ReportContext(ctx context.Context, documentationID string) (string, error) {
	args := m.Called(ctx, documentationID)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentRepository) PDFContext(ctx context.Context, analysisID, userID string) (string, error) {
	args := m.Called(ctx, analysisID, userID)
	return args.String(0), args.Error(1)
}

// MockTurnLimiter mocks the TurnLimiter interface
type MockTurnLimiter struct {
	mock.Mock
}

func (m *MockTurnLimiter) Allow(ctx context.Context, key string) (bool, int, time.Time, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Int(1), args.Get(2).(time.Time), args.Error(3)
}

// MockUserRepository mocks the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// event is one call recorded by recordingResponder
type event struct {
	name   string
	typing bool
	reply  domain.OutboundMessage
	err    string
}

// recordingResponder captures emitted events in order
type recordingResponder struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingResponder) Typing(isTyping bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name: "typing", typing: isTyping})
}

func (r *recordingResponder) Reply(msg domain.OutboundMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name: "reply", reply: msg})
}

func (r *recordingResponder) Error(message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{name: "error", err: message})
}

func (r *recordingResponder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.name
	}
	return out
}

func (r *recordingResponder) replies() []domain.OutboundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.OutboundMessage
	for _, e := range r.events {
		if e.name == "reply" {
			out = append(out, e.reply)
		}
	}
	return out
}

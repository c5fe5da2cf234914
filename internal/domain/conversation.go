package domain

import (
	"context"
	"encoding/hex"
	"time"
)

// ContextKind identifies which chat feature a conversation belongs to
type ContextKind string

const (
	KindReport    ContextKind = "report"
	KindDashboard ContextKind = "dashboard"
	KindPDF       ContextKind = "pdf"
	KindVoice     ContextKind = "voice"
)

// Valid reports whether k is one of the known context kinds
func (k ContextKind) Valid() bool {
	switch k {
	case KindReport, KindDashboard, KindPDF, KindVoice:
		return true
	}
	return false
}

// IsValidID reports whether s is a 24 character hex document id
func IsValidID(s string) bool {
	if len(s) != 24 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser MessageRole = "user"
	RoleAI   MessageRole = "AI"
)

// Message is one side of a conversation turn. Messages are append-only.
type Message struct {
	Role      MessageRole `json:"role" bson:"role"`
	Text      string      `json:"text" bson:"text"`
	Lang      string      `json:"lang,omitempty" bson:"lang,omitempty"`
	Timestamp time.Time   `json:"timestamp" bson:"timestamp"`
}

// NewMessage stamps a message with the current time at the store's precision
func NewMessage(role MessageRole, text, lang string) Message {
	return Message{
		Role:      role,
		Text:      text,
		Lang:      lang,
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
}

// Same reports whether two messages are the same stored entry
func (m Message) Same(other Message) bool {
	return m.Role == other.Role && m.Text == other.Text && m.Timestamp.Equal(other.Timestamp)
}

// Conversation is the persisted history for one (kind, key) pair
type Conversation struct {
	Kind      ContextKind `json:"kind" bson:"-"`
	Key       string      `json:"context_key" bson:"-"`
	UserID    string      `json:"user_id,omitempty" bson:"-"`
	Username  string      `json:"username,omitempty" bson:"username,omitempty"`
	StartedAt time.Time   `json:"started_at" bson:"start_timestamp"`
	Messages  []Message   `json:"messages" bson:"messages"`
}

// ConversationRef addresses a conversation and carries the owner recorded on creation
type ConversationRef struct {
	Kind     ContextKind
	Key      string
	UserID   string
	Username string
}

// ConversationStore persists conversation documents.
// AppendMessage creates the conversation on first use; StartedAt is only set then.
type ConversationStore interface {
	AppendMessage(ctx context.Context, ref ConversationRef, msg Message) error
	ReadRecentMessages(ctx context.Context, kind ContextKind, key string, limit int) ([]Message, error)
	Ping(ctx context.Context) error
}

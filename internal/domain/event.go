package domain

import "strings"

// InboundMessage is the payload of a "send" event on any chat namespace
type InboundMessage struct {
	Text       string `json:"text" validate:"max=20000"`
	ContextKey string `json:"context_key,omitempty"`
	Lang       string `json:"lang,omitempty" validate:"omitempty,max=35"`

	// Aliases sent by the report and pdf pages
	DocumentationID string `json:"documentation_id,omitempty"`
	AnalysisID      string `json:"analysis_id,omitempty"`
}

// Key returns the context key, falling back to the legacy aliases
func (m InboundMessage) Key() string {
	for _, k := range []string{m.ContextKey, m.DocumentationID, m.AnalysisID} {
		if k = strings.TrimSpace(k); k != "" {
			return k
		}
	}
	return ""
}

// OutboundMessage is the single reply emitted per accepted turn
type OutboundMessage struct {
	Role MessageRole `json:"role"`
	Text string      `json:"text"`
	Lang string      `json:"lang,omitempty"`
}

// TypingEvent brackets the completion call
type TypingEvent struct {
	IsTyping bool `json:"isTyping"`
}

// ErrorEvent reports a validation or availability failure
type ErrorEvent struct {
	Message string `json:"message"`
}

// Identity is the authenticated caller of a turn
type Identity struct {
	UserID   string
	Username string
}

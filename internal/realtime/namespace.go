package realtime

import (
	"encoding/json"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
)

// Events shared by every namespace
const (
	EventTyping        = "typing_indicator"
	EventError         = "error"
	EventConnectionAck = "connection_ack"
)

// Namespace binds a websocket path to a chat context and its event names
type Namespace struct {
	Path     string
	Kind     domain.ContextKind
	Inbound  string
	Outbound string

	// Ack sends connection_ack right after the upgrade
	Ack bool
}

// Namespaces lists the chat endpoints served by the transport
var Namespaces = []Namespace{
	{Path: "/ws/report", Kind: domain.KindReport, Inbound: "send_message", Outbound: "receive_message"},
	{Path: "/ws/dashboard_chat", Kind: domain.KindDashboard, Inbound: "send_dashboard_message", Outbound: "receive_dashboard_message"},
	{Path: "/ws/pdf_chat", Kind: domain.KindPDF, Inbound: "send_pdf_chat_message", Outbound: "receive_pdf_chat_message"},
	{Path: "/ws/voice_chat", Kind: domain.KindVoice, Inbound: "send_voice_text", Outbound: "receive_ai_voice_text", Ack: true},
}

// Envelope is the frame exchanged on the wire
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AckEvent is the payload of connection_ack
type AckEvent struct {
	Message string `json:"message"`
}

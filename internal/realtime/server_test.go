package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/security"
	"github.com/Sharadgup/AGI-Innovation/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validToken = "good-token"

type fakeTokens struct{}

func (fakeTokens) ValidateAccessToken(token string) (*security.Claims, error) {
	if token != validToken {
		return nil, errors.New("invalid token")
	}
	return &security.Claims{UserID: "665f1c2a9b1e4a0012345678", Username: "alice"}, nil
}

// echoTurns replies with the inbound text and records what it saw
type echoTurns struct {
	mu    sync.Mutex
	kinds []domain.ContextKind
	ids   []domain.Identity
}

func (e *echoTurns) HandleMessage(_ context.Context, kind domain.ContextKind, id *domain.Identity, in domain.InboundMessage, r service.Responder) {
	e.mu.Lock()
	e.kinds = append(e.kinds, kind)
	e.ids = append(e.ids, *id)
	e.mu.Unlock()

	if in.Text == "panic" {
		panic("handler bug")
	}
	if in.Text == "fail" {
		r.Error(service.MsgMissingText)
		return
	}
	r.Typing(true)
	r.Typing(false)
	r.Reply(domain.OutboundMessage{Role: domain.RoleAI, Text: "echo: " + in.Text, Lang: in.Lang})
}

func newTestServer(t *testing.T) (*httptest.Server, *echoTurns) {
	t.Helper()
	ts, turns, _ := newServerHarness(t)
	return ts, turns
}

func newServerHarness(t *testing.T) (*httptest.Server, *echoTurns, *Server) {
	t.Helper()
	turns := &echoTurns{}
	srv := NewServer(turns, fakeTokens{}, config.ChatConfig{PingInterval: time.Second, PingTimeout: 5 * time.Second}, []string{"*"})

	r := chi.NewRouter()
	srv.Mount(r)
	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts, turns, srv
}

func dial(t *testing.T, ts *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + path
	header := http.Header{"Authorization": []string{"Bearer " + validToken}}

	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func send(t *testing.T, ws *websocket.Conn, event string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(Envelope{Event: event, Data: raw}))
}

func receive(t *testing.T, ws *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var env Envelope
	require.NoError(t, ws.ReadJSON(&env))
	return env
}

func TestServer_RejectsUnauthenticatedUpgrade(t *testing.T) {
	ts, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/dashboard_chat"

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=wrong", nil)
	require.ErrorIs(t, err, websocket.ErrBadHandshake)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_QueryToken(t *testing.T) {
	ts, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/report?token=" + validToken

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	ws.Close()
}

func TestServer_DashboardTurn(t *testing.T) {
	ts, turns := newTestServer(t)
	ws := dial(t, ts, "/ws/dashboard_chat")

	send(t, ws, "send_dashboard_message", map[string]string{"text": "hello"})

	assert.Equal(t, EventTyping, receive(t, ws).Event)
	assert.Equal(t, EventTyping, receive(t, ws).Event)

	env := receive(t, ws)
	require.Equal(t, "receive_dashboard_message", env.Event)
	var msg domain.OutboundMessage
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "echo: hello", msg.Text)
	assert.Equal(t, domain.RoleAI, msg.Role)

	turns.mu.Lock()
	defer turns.mu.Unlock()
	assert.Equal(t, []domain.ContextKind{domain.KindDashboard}, turns.kinds)
	assert.Equal(t, "alice", turns.ids[0].Username)
}

func TestServer_VoiceAck(t *testing.T) {
	ts, _ := newTestServer(t)
	ws := dial(t, ts, "/ws/voice_chat")

	env := receive(t, ws)
	require.Equal(t, EventConnectionAck, env.Event)
	var ack AckEvent
	require.NoError(t, json.Unmarshal(env.Data, &ack))
	assert.Equal(t, "Connected.", ack.Message)

	send(t, ws, "send_voice_text", map[string]string{"text": "hola", "lang": "es-ES"})
	receive(t, ws)
	receive(t, ws)
	env = receive(t, ws)
	require.Equal(t, "receive_ai_voice_text", env.Event)
	var msg domain.OutboundMessage
	require.NoError(t, json.Unmarshal(env.Data, &msg))
	assert.Equal(t, "es-ES", msg.Lang)
}

func TestServer_MalformedFrames(t *testing.T) {
	ts, _ := newTestServer(t)
	ws := dial(t, ts, "/ws/pdf_chat")

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("not json")))
	env := receive(t, ws)
	require.Equal(t, EventError, env.Event)
	var e domain.ErrorEvent
	require.NoError(t, json.Unmarshal(env.Data, &e))
	assert.Equal(t, service.MsgInvalidFormat, e.Message)

	// unknown events are ignored, the next valid frame is still served
	send(t, ws, "send_message", map[string]string{"text": "wrong namespace"})
	send(t, ws, "send_pdf_chat_message", map[string]string{"text": "fail"})
	env = receive(t, ws)
	require.Equal(t, EventError, env.Event)
	require.NoError(t, json.Unmarshal(env.Data, &e))
	assert.Equal(t, service.MsgMissingText, e.Message)
}

func TestServer_TurnPanicKeepsConnection(t *testing.T) {
	ts, _ := newTestServer(t)
	ws := dial(t, ts, "/ws/dashboard_chat")

	send(t, ws, "send_dashboard_message", map[string]string{"text": "panic"})
	send(t, ws, "send_dashboard_message", map[string]string{"text": "after"})

	var replies []string
	for len(replies) == 0 {
		env := receive(t, ws)
		if env.Event != "receive_dashboard_message" {
			continue
		}
		var msg domain.OutboundMessage
		require.NoError(t, json.Unmarshal(env.Data, &msg))
		replies = append(replies, msg.Text)
	}
	assert.Equal(t, []string{"echo: after"}, replies)
}

func TestServer_DrainRefusesNewTurns(t *testing.T) {
	ts, turns, srv := newServerHarness(t)
	ws := dial(t, ts, "/ws/dashboard_chat")

	srv.Drain()
	send(t, ws, "send_dashboard_message", map[string]string{"text": "hello"})

	env := receive(t, ws)
	require.Equal(t, EventError, env.Event)
	var e domain.ErrorEvent
	require.NoError(t, json.Unmarshal(env.Data, &e))
	assert.Equal(t, service.MsgServerError, e.Message)

	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := ws.ReadMessage()
	assert.Error(t, err)

	turns.mu.Lock()
	defer turns.mu.Unlock()
	assert.Empty(t, turns.kinds)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://studio.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws/report", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://studio.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))
}

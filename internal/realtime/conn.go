package realtime

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

const writeWait = 10 * time.Second

// Conn serializes writes to one websocket. gorilla allows a single concurrent writer.
type Conn struct {
	ws     *websocket.Conn
	mu     sync.Mutex
	logger zerolog.Logger
}

func newConn(ws *websocket.Conn, logger zerolog.Logger) *Conn {
	return &Conn{ws: ws, logger: logger}
}

// Emit writes one event frame
func (c *Conn) Emit(event string, data any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", event, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := c.ws.WriteJSON(Envelope{Event: event, Data: raw}); err != nil {
		c.logger.Warn().Err(err).Str("event", event).Msg("failed to write websocket frame")
		return err
	}
	return nil
}

// Ping sends a keepalive control frame
func (c *Conn) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// responder emits turn events back to the originating connection only
type responder struct {
	conn *Conn
	ns   Namespace
}

func (r responder) Typing(isTyping bool) {
	_ = r.conn.Emit(EventTyping, domain.TypingEvent{IsTyping: isTyping})
}

func (r responder) Reply(msg domain.OutboundMessage) {
	_ = r.conn.Emit(r.ns.Outbound, msg)
}

func (r responder) Error(message string) {
	_ = r.conn.Emit(EventError, domain.ErrorEvent{Message: message})
}

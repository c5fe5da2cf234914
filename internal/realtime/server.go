package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/api/response"
	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/metrics"
	"github.com/Sharadgup/AGI-Innovation/internal/security"
	"github.com/Sharadgup/AGI-Innovation/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const maxFrameSize = 64 * 1024

// TurnHandler runs one chat turn
type TurnHandler interface {
	HandleMessage(ctx context.Context, kind domain.ContextKind, id *domain.Identity, in domain.InboundMessage, r service.Responder)
}

// TokenValidator authenticates the upgrade request
type TokenValidator interface {
	ValidateAccessToken(token string) (*security.Claims, error)
}

// Server upgrades chat namespaces to websockets and feeds inbound messages to the turn engine
type Server struct {
	turns        TurnHandler
	tokens       TokenValidator
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	pingTimeout  time.Duration

	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

// NewServer creates a new websocket server
func NewServer(turns TurnHandler, tokens TokenValidator, cfg config.ChatConfig, allowedOrigins []string) *Server {
	pingInterval, pingTimeout := cfg.PingInterval, cfg.PingTimeout
	if pingInterval <= 0 {
		pingInterval = 10 * time.Second
	}
	if pingTimeout <= pingInterval {
		pingTimeout = 2 * pingInterval
	}

	return &Server{
		turns:  turns,
		tokens: tokens,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		pingInterval: pingInterval,
		pingTimeout:  pingTimeout,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Mount registers every namespace on r
func (s *Server) Mount(r chi.Router) {
	for _, ns := range Namespaces {
		r.Get(ns.Path, s.Handler(ns))
	}
}

// Drain stops accepting new turns and blocks until in-flight turns have finished
func (s *Server) Drain() {
	s.mu.Lock()
	s.draining = true
	s.mu.Unlock()
	s.wg.Wait()
}

// startTurn registers a turn unless the server is draining
func (s *Server) startTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.draining {
		return false
	}
	s.wg.Add(1)
	return true
}

// Handler serves one namespace
func (s *Server) Handler(ns Namespace) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, err := security.TokenFromRequest(r)
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}
		claims, err := s.tokens.ValidateAccessToken(token)
		if err != nil {
			response.Unauthorized(w, "invalid or expired token")
			return
		}

		ws, err := s.upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error().Err(err).Str("namespace", ns.Path).Msg("failed to upgrade the websocket")
			return
		}
		defer ws.Close()

		id := domain.Identity{UserID: claims.UserID, Username: claims.Username}
		sid := uuid.New().String()
		logger := log.With().
			Str("sid", sid).
			Str("namespace", ns.Path).
			Str("user_id", id.UserID).
			Logger()

		// turns outlive the connection so their writes complete
		ctx := logger.WithContext(context.WithoutCancel(r.Context()))

		gauge := metrics.WSConnectionsActive.WithLabelValues(ns.Path)
		gauge.Inc()
		defer gauge.Dec()

		logger.Info().Msg("websocket client connected")
		defer logger.Info().Msg("websocket client disconnected")

		conn := newConn(ws, logger)
		if ns.Ack {
			if err := conn.Emit(EventConnectionAck, AckEvent{Message: "Connected."}); err != nil {
				return
			}
		}

		done := make(chan struct{})
		defer close(done)
		go s.keepalive(conn, done)

		s.readLoop(ctx, ws, conn, ns, id)
	}
}

func (s *Server) keepalive(conn *Conn, done <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.Ping(); err != nil {
				return
			}
		}
	}
}

func (s *Server) readLoop(ctx context.Context, ws *websocket.Conn, conn *Conn, ns Namespace, id domain.Identity) {
	logger := log.Ctx(ctx)

	ws.SetReadLimit(maxFrameSize)
	_ = ws.SetReadDeadline(time.Now().Add(s.pingTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(s.pingTimeout))
	})

	resp := responder{conn: conn, ns: ns}

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(s.pingTimeout))

		var env Envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			resp.Error(service.MsgInvalidFormat)
			continue
		}
		if env.Event != ns.Inbound {
			logger.Debug().Str("event", env.Event).Msg("ignoring unknown event")
			continue
		}

		var in domain.InboundMessage
		if len(env.Data) == 0 || json.Unmarshal(env.Data, &in) != nil {
			resp.Error(service.MsgInvalidFormat)
			continue
		}

		if !s.startTurn() {
			logger.Info().Msg("server draining, closing connection")
			resp.Error(service.MsgServerError)
			return
		}
		caller := id
		go func() {
			defer s.wg.Done()
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error().Interface("panic", rec).Msg("chat turn panicked")
				}
			}()
			s.turns.HandleMessage(ctx, ns.Kind, &caller, in, resp)
		}()
	}
}

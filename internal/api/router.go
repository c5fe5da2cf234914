package api

import (
	"net/http"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/api/handler"
	customMiddleware "github.com/Sharadgup/AGI-Innovation/internal/api/middleware"
	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/Sharadgup/AGI-Innovation/internal/realtime"
	"github.com/Sharadgup/AGI-Innovation/internal/security"
	"github.com/Sharadgup/AGI-Innovation/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the components the router exposes
type Deps struct {
	JWT           *security.JWTManager
	Auth          *service.AuthService
	Conversations *service.ConversationService
	Realtime      *realtime.Server
	LLM           *llm.Router

	// DB backs the readiness check; nil reports not ready
	DB handler.Pinger
}

// NewRouter creates and configures the HTTP router
func NewRouter(cfg *config.Config, deps Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(deps.Auth)
	conversationHandler := handler.NewConversationHandler(deps.Conversations)
	authMiddleware := customMiddleware.NewAuthMiddleware(deps.JWT)

	// Websocket namespaces are long lived and stay outside the request timeout
	if deps.Realtime != nil {
		deps.Realtime.Mount(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

		if cfg.Metrics.Enabled {
			r.Handle(cfg.Metrics.Path, promhttp.Handler())
		}

		r.Route("/api/v1", func(r chi.Router) {
			// Health check
			r.Get("/health", handler.HealthCheck)
			r.Get("/ready", handler.ReadyCheck(deps.DB))

			// Auth routes (public)
			r.Route("/auth", func(r chi.Router) {
				r.With(httprate.LimitByIP(cfg.Security.AuthRequestsPerMinute, time.Minute)).Group(func(r chi.Router) {
					r.Post("/register", authHandler.Register)
					r.Post("/login", authHandler.Login)
					r.Post("/refresh", authHandler.Refresh)
				})
				r.With(authMiddleware.Authenticate).Get("/me", authHandler.Me)
			})

			// Protected routes
			r.Group(func(r chi.Router) {
				r.Use(authMiddleware.Authenticate)

				if deps.LLM != nil {
					r.Get("/llm-providers", handler.ListLLMProviders(deps.LLM))
				}
				r.Get("/conversations/{kind}/messages", conversationHandler.Messages)
			})
		})
	})

	return r
}

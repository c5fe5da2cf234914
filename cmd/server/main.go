package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sharadgup/AGI-Innovation/internal/api"
	"github.com/Sharadgup/AGI-Innovation/internal/api/handler"
	"github.com/Sharadgup/AGI-Innovation/internal/config"
	"github.com/Sharadgup/AGI-Innovation/internal/domain"
	"github.com/Sharadgup/AGI-Innovation/internal/llm"
	"github.com/Sharadgup/AGI-Innovation/internal/llm/gemini"
	"github.com/Sharadgup/AGI-Innovation/internal/llm/openai"
	"github.com/Sharadgup/AGI-Innovation/internal/logging"
	"github.com/Sharadgup/AGI-Innovation/internal/realtime"
	"github.com/Sharadgup/AGI-Innovation/internal/repository/mongo"
	"github.com/Sharadgup/AGI-Innovation/internal/repository/redis"
	"github.com/Sharadgup/AGI-Innovation/internal/security"
	"github.com/Sharadgup/AGI-Innovation/internal/service"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	envLoaded := false
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			fmt.Printf("Loaded .env from: %s\n", p)
			envLoaded = true
			break
		}
	}
	if !envLoaded {
		fmt.Println("Warning: .env file not found in any standard location")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	logFile, err := logging.Setup(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting Vision AI Studio server")

	ctx := context.Background()

	// Mongo is optional at startup; without it every turn is rejected as store unavailable
	var (
		store     domain.ConversationStore
		docs      domain.DocumentRepository
		users     domain.UserRepository
		readiness handler.Pinger
	)
	db, err := mongo.NewDB(ctx, cfg.Mongo)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB, chat persistence disabled")
	} else {
		defer func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := db.Close(closeCtx); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect MongoDB")
			}
		}()

		if cfg.Mongo.AutoMigrate {
			if err := mongo.RunMigrations(cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.MigrationsPath); err != nil {
				log.Fatal().Err(err).Msg("Failed to run migrations")
			}
		}

		store = mongo.NewConversationRepository(db)
		docs = mongo.NewDocumentRepository(db)
		users = mongo.NewUserRepository(db)
		readiness = db
	}

	// Initialize Redis
	var limiter service.TurnLimiter
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("Failed to connect to Redis, continuing without cache and rate limits")
		} else {
			defer redisClient.Close()
			if docs != nil {
				docs = redis.NewCachedDocuments(docs, redis.NewContextCache(redisClient, cfg.Chat.ContextCacheTTL))
			}
			limiter = redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.TurnsPerMinute, cfg.Security.RateLimit.Burst)
		}
	}

	// Initialize LLM Router with providers
	llmRouter := llm.NewRouter(cfg.LLM.DefaultProvider)
	log.Info().Msgf("Initializing LLM providers. Default: %s", cfg.LLM.DefaultProvider)

	geminiProvider, err := gemini.NewProvider(ctx, cfg.LLM.Gemini)
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client")
	} else {
		defer geminiProvider.Close()
		if geminiProvider.IsConfigured() {
			llmRouter.RegisterProvider(geminiProvider)
		} else {
			log.Warn().Msg("Gemini API Key is empty, skipping registration")
		}
	}
	if cfg.LLM.OpenAI.APIKey != "" {
		llmRouter.RegisterProvider(openai.NewProvider(cfg.LLM.OpenAI))
	}

	var completer service.Completer
	if provider, err := llmRouter.GetProvider(""); err != nil {
		log.Error().Err(err).Msg("No completion provider available, AI replies disabled")
	} else {
		invoker := llm.NewInvoker(provider, cfg.LLM.Timeout)
		log.Info().Str("provider", invoker.ProviderName()).Msg("Completion provider ready")
		completer = invoker
	}

	// Initialize services
	jwtManager := security.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	if docs == nil {
		docs = unavailableDocuments{}
	}
	if users == nil {
		users = unavailableUsers{}
	}

	turns := service.NewTurnService(store, completer, limiter, service.NewStrategies(cfg.Chat, docs))
	authService := service.NewAuthService(users, jwtManager)
	conversations := service.NewConversationService(store, turns)
	ws := realtime.NewServer(turns, jwtManager, cfg.Chat, cfg.Server.AllowedOrigins)

	router := api.NewRouter(cfg, api.Deps{
		JWT:           jwtManager,
		Auth:          authService,
		Conversations: conversations,
		Realtime:      ws,
		LLM:           llmRouter,
		DB:            readiness,
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Hijacked websocket connections are not tracked by Shutdown
	finished := make(chan struct{})
	go func() {
		ws.Drain()
		close(finished)
	}()
	select {
	case <-finished:
	case <-shutdownCtx.Done():
		log.Warn().Msg("Timed out waiting for in-flight chat turns")
	}

	log.Info().Msg("Server stopped")
}

// unavailableDocuments stands in when Mongo could not be reached
type unavailableDocuments struct{}

func (unavailableDocuments) ReportContext(context.Context, string) (string, error) {
	return "", domain.ErrStoreUnavailable
}

func (unavailableDocuments) PDFContext(context.Context, string, string) (string, error) {
	return "", domain.ErrStoreUnavailable
}

// unavailableUsers stands in when Mongo could not be reached
type unavailableUsers struct{}

func (unavailableUsers) Create(context.Context, *domain.User) error {
	return domain.ErrStoreUnavailable
}

func (unavailableUsers) GetByID(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrStoreUnavailable
}

func (unavailableUsers) GetByUsername(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrStoreUnavailable
}

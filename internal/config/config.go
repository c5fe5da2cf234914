package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Mongo    MongoConfig    `mapstructure:"mongo"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
	MiddlewareTimeout time.Duration `mapstructure:"middleware_timeout"`
	AllowedOrigins    []string      `mapstructure:"allowed_origins"`
}

type MongoConfig struct {
	URI              string        `mapstructure:"uri"`
	Database         string        `mapstructure:"database"`
	AppName          string        `mapstructure:"app_name"`
	ConnectTimeout   time.Duration `mapstructure:"connect_timeout"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout"`
	AutoMigrate      bool          `mapstructure:"auto_migrate"`
	MigrationsPath   string        `mapstructure:"migrations_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret       string        `mapstructure:"jwt_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type LLMConfig struct {
	DefaultProvider string        `mapstructure:"default_provider"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Gemini          GeminiConfig  `mapstructure:"gemini"`
	OpenAI          OpenAIConfig  `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ChatConfig tunes the conversation turn engine
type ChatConfig struct {
	ReportWindow       int           `mapstructure:"report_window"`
	DashboardWindow    int           `mapstructure:"dashboard_window"`
	PDFWindow          int           `mapstructure:"pdf_window"`
	VoiceWindow        int           `mapstructure:"voice_window"`
	ContextPrefixChars int           `mapstructure:"context_prefix_chars"`
	ContextCacheTTL    time.Duration `mapstructure:"context_cache_ttl"`
	PingInterval       time.Duration `mapstructure:"ping_interval"`
	PingTimeout        time.Duration `mapstructure:"ping_timeout"`
}

type SecurityConfig struct {
	RateLimit             RateLimitConfig `mapstructure:"rate_limit"`
	AuthRequestsPerMinute int             `mapstructure:"auth_requests_per_minute"`
}

type RateLimitConfig struct {
	TurnsPerMinute int `mapstructure:"turns_per_minute"`
	Burst          int `mapstructure:"burst"`
}

type LoggingConfig struct {
	Level        string        `mapstructure:"level"`
	Format       string        `mapstructure:"format"`
	File         string        `mapstructure:"file"`
	MaxAge       time.Duration `mapstructure:"max_age"`
	RotationTime time.Duration `mapstructure:"rotation_time"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	v := viper.New()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./configs/config.yaml"
	}

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	v.AutomaticEnv()
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the turn engine cannot run with
func (c *Config) Validate() error {
	if c.Mongo.OperationTimeout <= 0 {
		return errors.New("mongo.operation_timeout must be positive")
	}
	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	for name, w := range map[string]int{
		"chat.report_window":    c.Chat.ReportWindow,
		"chat.dashboard_window": c.Chat.DashboardWindow,
		"chat.pdf_window":       c.Chat.PDFWindow,
		"chat.voice_window":     c.Chat.VoiceWindow,
	} {
		if w < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.middleware_timeout", "60s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Mongo
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "vision_ai_studio")
	v.SetDefault("mongo.app_name", "VisionAIStudio")
	v.SetDefault("mongo.connect_timeout", "10s")
	v.SetDefault("mongo.operation_timeout", "15s")
	v.SetDefault("mongo.auto_migrate", true)
	v.SetDefault("mongo.migrations_path", "file://migrations")

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	// Auth
	v.SetDefault("auth.access_token_ttl", "24h")
	v.SetDefault("auth.refresh_token_ttl", "168h") // 7 days

	// LLM
	v.SetDefault("llm.default_provider", "gemini")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.gemini.model", "gemini-1.5-flash")
	v.SetDefault("llm.openai.model", "gpt-4o-mini")

	// Chat
	v.SetDefault("chat.report_window", 6)
	v.SetDefault("chat.dashboard_window", 8)
	v.SetDefault("chat.pdf_window", 6)
	v.SetDefault("chat.voice_window", 4)
	v.SetDefault("chat.context_prefix_chars", 3000)
	v.SetDefault("chat.context_cache_ttl", "5m")
	v.SetDefault("chat.ping_interval", "10s")
	v.SetDefault("chat.ping_timeout", "20s")

	// Security
	v.SetDefault("security.rate_limit.turns_per_minute", 30)
	v.SetDefault("security.rate_limit.burst", 5)
	v.SetDefault("security.auth_requests_per_minute", 20)

	// Logging
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.max_age", "168h")
	v.SetDefault("logging.rotation_time", "24h")

	// Metrics
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

func bindEnvVars(v *viper.Viper) {
	// Mongo
	v.BindEnv("mongo.uri", "MONGODB_URI")
	v.BindEnv("mongo.database", "MONGODB_DB_NAME")

	// Redis
	v.BindEnv("redis.password", "REDIS_PASSWORD")

	// Auth
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")

	// LLM API Keys
	v.BindEnv("llm.gemini.api_key", "GEMINI_API_KEY")
	v.BindEnv("llm.gemini.model", "GEMINI_MODEL_NAME")
	v.BindEnv("llm.openai.api_key", "OPENAI_API_KEY")
	v.BindEnv("llm.default_provider", "LLM_PROVIDER")
}

package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Sharadgup/AGI-Innovation/internal/config"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger. The returned closer flushes the file sink, if any.
func Setup(cfg config.LoggingConfig) (io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.DefaultContextLogger = &log.Logger

	var console io.Writer = os.Stderr
	if useConsole(cfg.Format) {
		console = zerolog.ConsoleWriter{Out: os.Stderr}
	}

	if cfg.File == "" {
		log.Logger = zerolog.New(console).With().Timestamp().Logger()
		return nopCloser{}, nil
	}

	opts := []rotatelogs.Option{rotatelogs.WithLinkName(cfg.File)}
	if cfg.MaxAge > 0 {
		opts = append(opts, rotatelogs.WithMaxAge(cfg.MaxAge))
	}
	if cfg.RotationTime > 0 {
		opts = append(opts, rotatelogs.WithRotationTime(cfg.RotationTime))
	}

	rl, err := rotatelogs.New(cfg.File+".%Y%m%d", opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, rl)).With().Timestamp().Logger()
	return rl, nil
}

func useConsole(format string) bool {
	switch strings.ToLower(format) {
	case "console":
		return true
	case "json":
		return false
	}
	return os.Getenv("ENV") != "production"
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

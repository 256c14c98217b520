package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// NewLogger builds the process root logger. Format "console" renders
// human-readable output for local development; anything else emits JSON
// lines. An unknown level falls back to info rather than failing startup.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(cfg.Level)); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}

	logger := zerolog.New(logOutput(cfg.Format)).
		Level(level).
		With().
		Timestamp().
		Str("service", "schoolcms").
		Logger()
	log.Logger = logger
	return logger
}

func logOutput(format string) io.Writer {
	if strings.EqualFold(format, "console") {
		return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	return os.Stdout
}

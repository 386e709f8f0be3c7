// Package logging configures the process-wide slog logger.
//
// Development uses colored output via tint; every other environment
// writes JSON to stdout for the log collector.
//
//	logger := logging.Setup(cfg.Server.Env)
//
// Environment variables:
//
//	LOG_LEVEL: debug, info, warn, error (default: info)
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Setup installs the default logger for env at the level from LOG_LEVEL
// and returns it.
func Setup(env string) *slog.Logger {
	logger := New(os.Stdout, env, LevelFromEnv())
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w
func New(w io.Writer, env string, level slog.Level) *slog.Logger {
	if env == "development" {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// LevelFromEnv reads LOG_LEVEL
func LevelFromEnv() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel maps a level name to a slog level, defaulting to info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

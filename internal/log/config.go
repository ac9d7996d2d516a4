package log

import (
	"log/slog"
	"strings"
)

// Config represents logging configuration.
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	// Redact hides constant values when expressions are logged.
	Redact bool `json:"redact" yaml:"redact"`
}

// DefaultConfig returns default logging configuration.
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "text",
	}
}

// ParseLevel parses string log level to slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// FromConfig builds a stderr logger with the configured level and format.
func FromConfig(cfg Config) Logger {
	level := ParseLevel(cfg.Level)
	if strings.ToLower(cfg.Format) == "json" {
		return NewJSONLogger(level)
	}
	return NewTextLogger(level)
}

// Configure sets up the default logger based on config.
func Configure(cfg Config) {
	SetDefault(FromConfig(cfg))
	SetRedaction(cfg.Redact)
}

package log

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/redact"
)

// Logger is the logging interface used across the expression engine
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Enabled(level slog.Level) bool
	With(args ...any) Logger
	WithContext(ctx context.Context) Logger
}

// logger wraps slog.Logger
type logger struct {
	slog *slog.Logger
	ctx  context.Context
}

var (
	defaultLogger atomic.Value // Logger
	redactValues  atomic.Bool
)

func init() {
	// The engine is a library: stay quiet below warn until configured.
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	defaultLogger.Store(loggerHolder{New(slog.NewTextHandler(os.Stderr, opts))})
}

type loggerHolder struct{ Logger }

// SetDefault sets the default logger
func SetDefault(l Logger) {
	defaultLogger.Store(loggerHolder{l})
}

// Default returns the default logger
func Default() Logger {
	return defaultLogger.Load().(loggerHolder).Logger
}

// OrDefault returns l, or the default logger when l is nil
func OrDefault(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}

// New creates a new logger with the given handler
func New(handler slog.Handler) Logger {
	return &logger{slog: slog.New(handler), ctx: context.Background()}
}

// NewTextLogger creates a new text logger writing to stderr
func NewTextLogger(level slog.Level) Logger {
	return New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a new JSON logger writing to stderr
func NewJSONLogger(level slog.Level) Logger {
	return New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func (l *logger) Debug(msg string, args ...any) {
	l.slog.DebugContext(l.ctx, msg, args...)
}

func (l *logger) Info(msg string, args ...any) {
	l.slog.InfoContext(l.ctx, msg, args...)
}

func (l *logger) Warn(msg string, args ...any) {
	l.slog.WarnContext(l.ctx, msg, args...)
}

func (l *logger) Error(msg string, args ...any) {
	l.slog.ErrorContext(l.ctx, msg, args...)
}

func (l *logger) Enabled(level slog.Level) bool {
	return l.slog.Enabled(l.ctx, level)
}

func (l *logger) With(args ...any) Logger {
	return &logger{slog: l.slog.With(args...), ctx: l.ctx}
}

// WithContext returns a logger that hands ctx to the handler on every record
func (l *logger) WithContext(ctx context.Context) Logger {
	return &logger{slog: l.slog, ctx: ctx}
}

// Helper functions for structured logging

// String returns a string attribute
func String(key, value string) slog.Attr {
	return slog.String(key, value)
}

// Int returns an int attribute
func Int(key string, value int) slog.Attr {
	return slog.Int(key, value)
}

// Float64 returns a float64 attribute
func Float64(key string, value float64) slog.Attr {
	return slog.Float64(key, value)
}

// Bool returns a bool attribute
func Bool(key string, value bool) slog.Attr {
	return slog.Bool(key, value)
}

// Duration returns a duration attribute
func Duration(key string, value time.Duration) slog.Attr {
	return slog.Duration(key, value)
}

// Any returns an any attribute
func Any(key string, value any) slog.Attr {
	return slog.Any(key, value)
}

// Redactable renders v through redact. When redaction is enabled, unsafe
// parts such as constant values are replaced by a marker; otherwise the
// markers are stripped.
func Redactable(key string, v redact.SafeFormatter) slog.Attr {
	s := redact.Sprint(v)
	if redactValues.Load() {
		return slog.String(key, string(s.Redact()))
	}
	return slog.String(key, s.StripMarkers())
}

// SetRedaction toggles redaction of unsafe values in Redactable attributes
func SetRedaction(enabled bool) {
	redactValues.Store(enabled)
}

// Package-level convenience functions

func Debug(msg string, args ...any) {
	Default().Debug(msg, args...)
}

func Info(msg string, args ...any) {
	Default().Info(msg, args...)
}

func Warn(msg string, args ...any) {
	Default().Warn(msg, args...)
}

func Error(msg string, args ...any) {
	Default().Error(msg, args...)
}

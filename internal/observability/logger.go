// Package observability provides structured logging, request IDs and tracing
// for calls made to the evaluation backend.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger wraps slog.Logger with redaction and request ID support.
type Logger struct {
	*slog.Logger
	redactor *Redactor
}

// LoggerConfig contains configuration for the logger.
type LoggerConfig struct {
	Level      slog.Level
	Output     io.Writer
	AddSource  bool
	JSONFormat bool
}

// ParseLevel maps a config string to a slog level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a new logger with redaction support.
// A nil Output writes to stderr.
func NewLogger(cfg LoggerConfig, redactor *Redactor) *Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	var handler slog.Handler
	if cfg.JSONFormat {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	return &Logger{
		Logger:   slog.New(handler),
		redactor: redactor,
	}
}

// Wrap adapts an existing slog.Logger. A nil logger discards output.
func Wrap(logger *slog.Logger, redactor *Redactor) *Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Logger{Logger: logger, redactor: redactor}
}

// WithRequestID returns a logger with the request ID from context.
func (l *Logger) WithRequestID(ctx context.Context) *Logger {
	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		return l
	}
	return &Logger{
		Logger:   l.Logger.With("request_id", requestID),
		redactor: l.redactor,
	}
}

// WithFields returns a logger with additional fields.
func (l *Logger) WithFields(args ...any) *Logger {
	return &Logger{
		Logger:   l.Logger.With(args...),
		redactor: l.redactor,
	}
}

// RedactedLog logs at level after running message and string args through the redactor.
func (l *Logger) RedactedLog(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !l.Logger.Enabled(ctx, level) {
		return
	}
	if l.redactor != nil {
		msg = l.redactor.Redact(msg)
		args = l.redactArgs(args)
	}
	l.Logger.Log(ctx, level, msg, args...)
}

// RedactedInfo logs at INFO level with redacted message.
func (l *Logger) RedactedInfo(msg string, args ...any) {
	l.RedactedLog(context.Background(), slog.LevelInfo, msg, args...)
}

// RedactedWarn logs at WARN level with redacted message.
func (l *Logger) RedactedWarn(msg string, args ...any) {
	l.RedactedLog(context.Background(), slog.LevelWarn, msg, args...)
}

func (l *Logger) redactArgs(args []any) []any {
	if l.redactor == nil {
		return args
	}

	result := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			result[i] = l.redactor.Redact(v)
		case error:
			result[i] = l.redactor.Redact(v.Error())
		default:
			result[i] = arg
		}
	}
	return result
}

// Slog returns the underlying slog.Logger for compatibility.
func (l *Logger) Slog() *slog.Logger {
	return l.Logger
}

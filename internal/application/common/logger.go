package common

import (
	"context"
	"time"
)

// Log levels understood by Logger implementations
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger provides structured logging for handlers and adapters
type Logger interface {
	Log(level, message string, metadata map[string]interface{})
}

// Context keys for passing logger through context
type contextKey int

const (
	loggerKey contextKey = iota
)

// WithLogger adds a logger to the context
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// LoggerFromContext extracts the logger from context, or returns a no-op logger if not found
func LoggerFromContext(ctx context.Context) Logger {
	if logger, ok := ctx.Value(loggerKey).(Logger); ok {
		return logger
	}
	return &noOpLogger{}
}

type noOpLogger struct{}

func (l *noOpLogger) Log(level, message string, metadata map[string]interface{}) {}

// LoggingMiddleware logs every request at DEBUG with its duration, and failures at WARN
func LoggingMiddleware(ctx context.Context, request Request, next HandlerFunc) (Response, error) {
	logger := LoggerFromContext(ctx)
	start := time.Now()

	resp, err := next(ctx, request)

	fields := map[string]interface{}{
		"request":     RequestName(request),
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.Log(LevelWarn, "Request failed", fields)
		return nil, err
	}
	logger.Log(LevelDebug, "Request handled", fields)
	return resp, nil
}

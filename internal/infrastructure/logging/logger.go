package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/andrescamacho/industry-go/internal/application/common"
	"github.com/andrescamacho/industry-go/internal/infrastructure/config"
)

// Logger adapts slog to the application logger interface
type Logger struct {
	slog   *slog.Logger
	closer io.Closer
}

// New builds a logger from the logging configuration. Close releases the log file, if any.
func New(cfg config.LoggingConfig) (*Logger, error) {
	var out io.Writer
	var closer io.Closer

	switch cfg.Output {
	case "", "stderr":
		out = os.Stderr
	case "stdout":
		out = os.Stdout
	case "file":
		f, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	default:
		return nil, fmt.Errorf("unsupported log output: %s", cfg.Output)
	}

	return NewWithWriter(out, cfg, closer), nil
}

// NewWithWriter builds a logger writing to w
func NewWithWriter(w io.Writer, cfg config.LoggingConfig, closer io.Closer) *Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(cfg.Level),
		AddSource: cfg.IncludeCaller,
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{slog: slog.New(handler), closer: closer}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case common.LevelDebug:
		return slog.LevelDebug
	case common.LevelWarn:
		return slog.LevelWarn
	case common.LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Log writes one entry with metadata as attributes in key order
func (l *Logger) Log(level, message string, metadata map[string]interface{}) {
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, metadata[k]))
	}

	l.slog.LogAttrs(context.Background(), parseLevel(level), message, attrs...)
}

// With returns a logger that adds the given fields to every entry
func (l *Logger) With(fields map[string]interface{}) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{slog: l.slog.With(args...), closer: l.closer}
}

// Slog exposes the underlying slog logger
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

var _ common.Logger = (*Logger)(nil)

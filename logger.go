package semsearch

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with semsearch-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithQuery adds the query triples and root to the logger.
func (l *Logger) WithQuery(triples, root string) *Logger {
	return &Logger{
		Logger: l.Logger.With("triples", triples, "root", root),
	}
}

// LogQuery logs an evaluated query.
func (l *Logger) LogQuery(ctx context.Context, triples string, entities int, d time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"triples", triples,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "query completed",
		"triples", triples,
		"entities", entities,
		"duration", d,
	)
}

// LogRegister logs the registration of an index file.
func (l *Logger) LogRegister(ctx context.Context, kind, baseName string, err error) {
	if err != nil {
		l.ErrorContext(ctx, "register failed",
			"kind", kind,
			"name", baseName,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "registered",
		"kind", kind,
		"name", baseName,
	)
}

// LogCache logs the result cache counters.
func (l *Logger) LogCache(ctx context.Context, stats CacheStats) {
	l.DebugContext(ctx, "result cache",
		"entries", stats.Entries,
		"hits", stats.Hits,
		"misses", stats.Misses,
		"evictions", stats.Evictions,
		"computations", stats.Computations,
	)
}

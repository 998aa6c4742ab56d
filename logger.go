package tessera

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with tessera-specific context.
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
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithTable adds the table name to the logger.
func (l *Logger) WithTable(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("table", name),
	}
}

// LogFind logs a first-match search.
func (l *Logger) LogFind(found bool, err error) {
	if err != nil {
		l.Error("find failed", "error", err)
	} else {
		l.Debug("find completed", "found", found)
	}
}

// LogFindAll logs a find-all execution.
func (l *Logger) LogFindAll(matches int, err error) {
	if err != nil {
		l.Error("find all failed", "error", err)
	} else {
		l.Debug("find all completed", "matches", matches)
	}
}

// LogCount logs a count execution.
func (l *Logger) LogCount(count int, err error) {
	if err != nil {
		l.Error("count failed", "error", err)
	} else {
		l.Debug("count completed", "count", count)
	}
}

// LogAggregate logs an aggregate execution.
func (l *Logger) LogAggregate(op string, matches int, err error) {
	if err != nil {
		l.Error("aggregate failed", "op", op, "error", err)
	} else {
		l.Debug("aggregate completed", "op", op, "matches", matches)
	}
}

// LogRemove logs a remove execution.
func (l *Logger) LogRemove(removed int, err error) {
	if err != nil {
		l.Error("remove failed", "error", err)
	} else {
		l.Debug("remove completed", "removed", removed)
	}
}

package arrayseq

import (
	"context"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with sequence-specific helpers.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithShape adds the common shape and dtype to the logger.
func (l *Logger) WithShape(shape []int, dtype DType) *Logger {
	return &Logger{
		Logger: l.Logger.With("common_shape", formatShape(shape), "dtype", dtype.String()),
	}
}

// LogGrow logs a backing-store reallocation.
func (l *Logger) LogGrow(ctx context.Context, fromRows, toRows int, err error) {
	if err != nil {
		l.WarnContext(ctx, "backing store reallocation failed",
			"from_rows", fromRows,
			"to_rows", toRows,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "backing store reallocated",
			"from_rows", fromRows,
			"to_rows", toRows,
		)
	}
}

// LogFlush logs a buffered-build flush.
func (l *Logger) LogFlush(ctx context.Context, elements, rows int) {
	l.DebugContext(ctx, "buffered batch flushed",
		"elements", elements,
		"rows", rows,
	)
}

// LogSave logs an archive write.
func (l *Logger) LogSave(ctx context.Context, target string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "save failed",
			"target", target,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "sequence saved",
			"target", target,
			"bytes", bytes,
		)
	}
}

// LogLoad logs an archive read.
func (l *Logger) LogLoad(ctx context.Context, source string, bytes int64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "load failed",
			"source", source,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "sequence loaded",
			"source", source,
			"bytes", bytes,
		)
	}
}

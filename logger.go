package imdf

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger with imdf-specific context.
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
	return newWriterLogger(os.Stderr, level, true)
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return newWriterLogger(os.Stderr, level, false)
}

func newWriterLogger(w io.Writer, level slog.Level, json bool) *Logger {
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return &Logger{Logger: slog.New(slog.NewJSONHandler(w, opts))}
	}
	return &Logger{Logger: slog.New(slog.NewTextHandler(w, opts))}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithDirectory adds the archive directory to the logger.
func (l *Logger) WithDirectory(dir string) *Logger {
	return &Logger{
		Logger: l.Logger.With("dir", dir),
	}
}

// LogFileDecoded logs the decode of one feature file.
func (l *Logger) LogFileDecoded(ctx context.Context, file string, features int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "file decode failed",
			"file", file,
			"duration", duration,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "file decoded",
			"file", file,
			"features", features,
			"duration", duration,
		)
	}
}

// LogDecode logs a complete archive decode.
func (l *Logger) LogDecode(ctx context.Context, stats LinkStats, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "decode failed",
			"duration", duration,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "venue decoded",
			"levels", stats.Levels,
			"units", stats.Units,
			"openings", stats.Openings,
			"amenities", stats.Amenities,
			"occupants", stats.Occupants,
			"anchors", stats.Anchors,
			"duration", duration,
		)
	}
}

// LogSkippedReference logs a cross-reference that points at a feature
// missing from the archive.
func (l *Logger) LogSkippedReference(ctx context.Context, relation string, from, to uuid.UUID) {
	l.DebugContext(ctx, "reference skipped",
		"relation", relation,
		"from", from,
		"to", to,
	)
}

// Package observability provides structured logging for the client.
package observability

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger wraps slog.Logger to provide specialized logging methods.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a JSON logger writing to w at the given level.
func NewLogger(w io.Writer, level slog.Level) *Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{Logger: slog.New(handler)}
}

// GlobalLogger is the default logger instance for the application.
var GlobalLogger *Logger

func init() {
	GlobalLogger = NewLogger(os.Stderr, slog.LevelInfo)
}

// APILogger provides structured logging for outbound API operations.
type APILogger struct {
	logger *Logger
}

// NewAPILogger creates a new APILogger backed by the given logger.
// A nil logger falls back to the global instance.
func NewAPILogger(logger *Logger) *APILogger {
	if logger == nil {
		logger = GlobalLogger
	}
	return &APILogger{logger: logger}
}

// LogRequest logs an outbound API request.
func (l *APILogger) LogRequest(ctx context.Context, method, path string) {
	l.logger.DebugContext(ctx, "api request",
		slog.String("method", method),
		slog.String("path", path),
	)
}

// LogResponse logs the outcome of an API request.
func (l *APILogger) LogResponse(ctx context.Context, method, path string, status int) {
	l.logger.DebugContext(ctx, "api response",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
	)
}

// LogError logs a failed API request. No failure is dropped without at
// least this diagnostic record.
func (l *APILogger) LogError(ctx context.Context, method, path string, err error) {
	l.logger.WarnContext(ctx, "api error",
		slog.String("method", method),
		slog.String("path", path),
		slog.String("error", err.Error()),
	)
}

// LogAction logs a user-initiated action on a screen controller.
func (l *APILogger) LogAction(ctx context.Context, action, entityID string) {
	l.logger.InfoContext(ctx, "user action",
		slog.String("action", action),
		slog.String("entity_id", entityID),
	)
}

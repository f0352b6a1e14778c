package http

import (
	"context"
	"log/slog"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// handlerLogger resolves the request scoped logger, falling back to the
// handler's own, and tags it with the handler and operation names.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	logger := LoggerFromContext(ctx)
	if logger == nil {
		logger = defaultLogger(fallback)
	}

	pairs := append([]any{"handler", handlerName}, attrs...)
	if operation != "" {
		pairs = append([]any{"handler", handlerName, "operation", operation}, attrs...)
	}
	return logger.With(pairs...)
}

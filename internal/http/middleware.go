package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/example/band-rehearsal/internal/application"
)

// TokenVerifier resolves a bearer token into the principal it was issued for.
type TokenVerifier interface {
	ResolvePrincipal(ctx context.Context, token string) (application.Principal, error)
}

// RequireToken rejects requests without a valid bearer token and attaches the
// resolved principal to the request context.
func RequireToken(verifier TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	responder := newResponder(logger)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractTokenFromRequest(r)
			if token == "" {
				responder.writeError(r.Context(), w, http.StatusUnauthorized, errMissingBearerToken)
				return
			}

			principal, err := verifier.ResolvePrincipal(r.Context(), token)
			if err != nil {
				switch {
				case errors.Is(err, application.ErrUnauthorized), errors.Is(err, application.ErrNotFound):
					responder.writeJSON(r.Context(), w, http.StatusUnauthorized, errorResponse{
						ErrorCode: "AUTH_TOKEN_INVALID",
						Message:   "the token is invalid or expired, please log in again",
					})
				default:
					responder.writeJSON(r.Context(), w, http.StatusInternalServerError, errorResponse{Message: "token verification failed"})
				}
				return
			}

			ctx := ContextWithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestLogger attaches a request scoped logger carrying a sequential request
// id and emits start and completion records.
func RequestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	if base == nil {
		base = slog.Default()
	}
	var counter atomic.Uint64

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := counter.Add(1)
			logger := base.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)

			ctx := ContextWithLogger(r.Context(), logger)
			start := time.Now()
			logger.InfoContext(ctx, "request started")
			next.ServeHTTP(w, r.WithContext(ctx))
			logger.InfoContext(ctx, "request completed", "duration", time.Since(start))
		})
	}
}

func extractTokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		const prefix = "Bearer "
		if strings.HasPrefix(header, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(header, prefix))
		}
	}
	return ""
}

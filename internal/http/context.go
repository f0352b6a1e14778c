package http

import (
	"context"
	"log/slog"

	"github.com/example/band-rehearsal/internal/application"
	"github.com/example/band-rehearsal/internal/logging"
)

type contextKey string

const (
	principalContextKey    contextKey = "principal"
	userIDContextKey       contextKey = "user_id"
	rehearsalIDContextKey  contextKey = "rehearsal_id"
	responseIDContextKey   contextKey = "response_id"
	bandIDContextKey       contextKey = "band_id"
	invitationIDContextKey contextKey = "invitation_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithRehearsalID injects the rehearsal identifier resolved from the request path.
func ContextWithRehearsalID(ctx context.Context, rehearsalID string) context.Context {
	return context.WithValue(ctx, rehearsalIDContextKey, rehearsalID)
}

// RehearsalIDFromContext extracts a rehearsal identifier previously associated with the context.
func RehearsalIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(rehearsalIDContextKey).(string)
	return id, ok
}

// ContextWithResponseID injects the response identifier resolved from the request path.
func ContextWithResponseID(ctx context.Context, responseID string) context.Context {
	return context.WithValue(ctx, responseIDContextKey, responseID)
}

// ResponseIDFromContext extracts a response identifier previously associated with the context.
func ResponseIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(responseIDContextKey).(string)
	return id, ok
}

// ContextWithBandID injects the band identifier resolved from the request path.
func ContextWithBandID(ctx context.Context, bandID string) context.Context {
	return context.WithValue(ctx, bandIDContextKey, bandID)
}

// BandIDFromContext extracts a band identifier previously associated with the context.
func BandIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(bandIDContextKey).(string)
	return id, ok
}

// ContextWithInvitationID injects the invitation identifier resolved from the request path.
func ContextWithInvitationID(ctx context.Context, invitationID string) context.Context {
	return context.WithValue(ctx, invitationIDContextKey, invitationID)
}

// InvitationIDFromContext extracts an invitation identifier previously associated with the context.
func InvitationIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(invitationIDContextKey).(string)
	return id, ok
}

// ContextWithLogger attaches a request scoped logger to the context.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts a request scoped logger from the context if present.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

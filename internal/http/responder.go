package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/band-rehearsal/internal/application"
)

var (
	errBadRequestBody           = errors.New("the request body could not be parsed")
	errInvalidDate              = errors.New("dates must be formatted as YYYY-MM-DD")
	errInvalidUserID            = errors.New("a user id is required")
	errInvalidRehearsalID       = errors.New("a rehearsal id is required")
	errInvalidResponseID        = errors.New("a response id is required")
	errInvalidBandID            = errors.New("a band id is required")
	errInvalidInvitationID      = errors.New("an invitation id is required")
	errMissingBearerToken       = errors.New("an authorization token is required")
	errInvalidRegistrationToken = errors.New("a registration token is required")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "you are not allowed to perform this operation",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "the username or password is incorrect",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	case errors.Is(err, application.ErrSelfDeletion):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "you cannot delete your own account"})
	case errors.Is(err, application.ErrConflict):
		message := "the request conflicts with the current state"
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: message})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "the submitted values are invalid",
				Errors:  validationDetails(vErr),
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "an internal error occurred"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func validationDetails(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	details := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		details[field] = msg
	}
	return details
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

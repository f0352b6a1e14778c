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

type authService interface {
	Authenticate(ctx context.Context, params application.LoginParams) (application.LoginResult, error)
}

type AuthHandler struct {
	service   authService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service authService, logger *slog.Logger) *AuthHandler {
	base := defaultLogger(logger)
	return &AuthHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "AuthHandler", operation, attrs...)
}

// Login exchanges a username and password for a signed bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Login", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode login request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	username := strings.TrimSpace(req.Username)
	logger := h.log(r.Context(), "Login", "username", username)

	result, err := h.service.Authenticate(r.Context(), application.LoginParams{
		Username: username,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			logger.ErrorContext(r.Context(), "authentication rejected", "error", err, "error_kind", application.ErrorKind(err))
		} else {
			logger.ErrorContext(r.Context(), "authentication failed", "error", err, "error_kind", application.ErrorKind(err))
		}
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", result.User.ID).InfoContext(r.Context(), "user authenticated")

	h.responder.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  toUserDTO(result.User),
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  userDTO `json:"user"`
}

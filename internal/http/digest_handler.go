package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/example/band-rehearsal/internal/application"
)

type digestService interface {
	Trigger(ctx context.Context, principal application.Principal) error
}

type DigestHandler struct {
	service   digestService
	responder responder
	logger    *slog.Logger
}

func NewDigestHandler(service digestService, logger *slog.Logger) *DigestHandler {
	base := defaultLogger(logger)
	return &DigestHandler{service: service, responder: newResponder(base), logger: base}
}

// Send triggers the weekly digest delivery on demand.
func (h *DigestHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := handlerLogger(r.Context(), h.logger, "DigestHandler", "Send", "principal_id", principal.UserID)

	if err := h.service.Trigger(r.Context(), principal); err != nil {
		logger.ErrorContext(r.Context(), "digest trigger failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "digest triggered")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, digestTriggerResponse{Message: "digest delivery triggered"})
}

type digestTriggerResponse struct {
	Message string `json:"message"`
}

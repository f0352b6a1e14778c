package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/band-rehearsal/internal/application"
)

type responseService interface {
	CreateResponse(ctx context.Context, params application.CreateResponseParams) (application.Response, error)
	UpdateResponse(ctx context.Context, params application.UpdateResponseParams) (application.Response, error)
	GetResponse(ctx context.Context, principal application.Principal, responseID string) (application.Response, error)
	ListResponses(ctx context.Context, params application.ListResponsesParams) ([]application.Response, error)
}

type ResponseHandler struct {
	service   responseService
	responder responder
	logger    *slog.Logger
}

func NewResponseHandler(service responseService, logger *slog.Logger) *ResponseHandler {
	base := defaultLogger(logger)
	return &ResponseHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ResponseHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ResponseHandler", operation, attrs...)
}

func (h *ResponseHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req createResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode response request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "rehearsal_id", req.RehearsalID)

	response, err := h.service.CreateResponse(r.Context(), application.CreateResponseParams{
		Principal: principal,
		Input: application.ResponseInput{
			UserID:      strings.TrimSpace(req.UserID),
			RehearsalID: strings.TrimSpace(req.RehearsalID),
			Attending:   req.Attending,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "response creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("response_id", response.ID).InfoContext(r.Context(), "response recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, responsePayload{Response: toResponseDTO(response)})
}

func (h *ResponseHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	responseID, ok := ResponseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(responseID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResponseID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "response_id", responseID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode response update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "response_id", responseID)

	response, err := h.service.UpdateResponse(r.Context(), application.UpdateResponseParams{
		Principal:  principal,
		ResponseID: responseID,
		Input: application.ResponseUpdateInput{
			Attending: req.Attending,
			Comment:   req.Comment,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "response update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "response updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, responsePayload{Response: toResponseDTO(response)})
}

func (h *ResponseHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	responseID, ok := ResponseIDFromContext(r.Context())
	if !ok || strings.TrimSpace(responseID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidResponseID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	response, err := h.service.GetResponse(r.Context(), principal, responseID)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "response_id", responseID).ErrorContext(r.Context(), "response fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, responsePayload{Response: toResponseDTO(response)})
}

func (h *ResponseHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := application.ListResponsesParams{Principal: principal}
	if rehearsalID := strings.TrimSpace(r.URL.Query().Get("rehearsal_id")); rehearsalID != "" {
		params.RehearsalID = &rehearsalID
	}

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	responses, err := h.service.ListResponses(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "response list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(responses)).InfoContext(r.Context(), "responses listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listResponsesPayload{Responses: toResponseDTOs(responses)})
}

type createResponseRequest struct {
	UserID      string `json:"user_id"`
	RehearsalID string `json:"rehearsal_id"`
	Attending   bool   `json:"attending"`
}

type updateResponseRequest struct {
	Attending *bool   `json:"attending"`
	Comment   *string `json:"comment"`
}

type responsePayload struct {
	Response responseDTO `json:"response"`
}

type listResponsesPayload struct {
	Responses []responseDTO `json:"responses"`
}

type responseDTO struct {
	ID          string  `json:"id"`
	UserID      string  `json:"user_id"`
	RehearsalID string  `json:"rehearsal_id"`
	Attending   bool    `json:"attending"`
	Comment     *string `json:"comment,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

func toResponseDTO(response application.Response) responseDTO {
	return responseDTO{
		ID:          response.ID,
		UserID:      response.UserID,
		RehearsalID: response.RehearsalID,
		Attending:   response.Attending,
		Comment:     response.Comment,
		UpdatedAt:   response.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toResponseDTOs(responses []application.Response) []responseDTO {
	if len(responses) == 0 {
		return nil
	}
	out := make([]responseDTO, 0, len(responses))
	for _, response := range responses {
		out = append(out, toResponseDTO(response))
	}
	return out
}

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

type invitationService interface {
	CreateInvitation(ctx context.Context, params application.CreateInvitationParams) (application.Invitation, error)
	ListInvitations(ctx context.Context, principal application.Principal) ([]application.Invitation, error)
	DeleteInvitation(ctx context.Context, principal application.Principal, invitationID string) error
	Register(ctx context.Context, params application.RegisterParams) (application.User, error)
}

type InvitationHandler struct {
	service   invitationService
	responder responder
	logger    *slog.Logger
}

func NewInvitationHandler(service invitationService, logger *slog.Logger) *InvitationHandler {
	base := defaultLogger(logger)
	return &InvitationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *InvitationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "InvitationHandler", operation, attrs...)
}

func (h *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req invitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode invitation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	invitation, err := h.service.CreateInvitation(r.Context(), application.CreateInvitationParams{
		Principal: principal,
		Email:     strings.TrimSpace(req.Email),
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "invitation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("invitation_id", invitation.ID).InfoContext(r.Context(), "invitation created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, invitationResponse{Invitation: toInvitationDTO(invitation)})
}

func (h *InvitationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	invitations, err := h.service.ListInvitations(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "invitation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(invitations)).InfoContext(r.Context(), "invitations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listInvitationsResponse{Invitations: toInvitationDTOs(invitations)})
}

func (h *InvitationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	invitationID, ok := InvitationIDFromContext(r.Context())
	if !ok || strings.TrimSpace(invitationID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidInvitationID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "invitation_id", invitationID)
	if err := h.service.DeleteInvitation(r.Context(), principal, invitationID); err != nil {
		logger.ErrorContext(r.Context(), "invitation delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "invitation deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// Register consumes an invitation token and creates the member account. The
// route is public, the token itself is the credential.
func (h *InvitationHandler) Register(w http.ResponseWriter, r *http.Request, token string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRegistrationToken)
		return
	}

	var req registrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Register", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode registration request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Register")

	user, err := h.service.Register(r.Context(), application.RegisterParams{
		Token: trimmed,
		Input: application.RegistrationInput{
			Username:  strings.TrimSpace(req.Username),
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "registration failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", user.ID).InfoContext(r.Context(), "member registered")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, userResponse{User: toUserDTO(user)})
}

type invitationRequest struct {
	Email string `json:"email"`
}

type registrationRequest struct {
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type invitationResponse struct {
	Invitation invitationDTO `json:"invitation"`
}

type listInvitationsResponse struct {
	Invitations []invitationDTO `json:"invitations"`
}

type invitationDTO struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	CreatedBy  string `json:"created_by"`
	CreatedAt  string `json:"created_at"`
	ExpiresAt  string `json:"expires_at"`
	IsAccepted bool   `json:"is_accepted"`
}

// The token is deliberately absent from the DTO, it only travels by email.
func toInvitationDTO(invitation application.Invitation) invitationDTO {
	return invitationDTO{
		ID:         invitation.ID,
		Email:      invitation.Email,
		CreatedBy:  invitation.CreatedBy,
		CreatedAt:  invitation.CreatedAt.UTC().Format(time.RFC3339),
		ExpiresAt:  invitation.ExpiresAt.UTC().Format(time.RFC3339),
		IsAccepted: invitation.IsAccepted,
	}
}

func toInvitationDTOs(invitations []application.Invitation) []invitationDTO {
	if len(invitations) == 0 {
		return nil
	}
	out := make([]invitationDTO, 0, len(invitations))
	for _, invitation := range invitations {
		out = append(out, toInvitationDTO(invitation))
	}
	return out
}

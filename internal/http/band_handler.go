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

type bandService interface {
	CreateBand(ctx context.Context, params application.CreateBandParams) (application.Band, error)
	GetBand(ctx context.Context, principal application.Principal, bandID string) (application.Band, error)
	ListBands(ctx context.Context, principal application.Principal) ([]application.Band, error)
	AddMember(ctx context.Context, params application.AddBandMemberParams) (application.BandMembership, error)
	ListMembers(ctx context.Context, principal application.Principal, bandID string) ([]application.BandMembership, error)
}

type BandHandler struct {
	service   bandService
	responder responder
	logger    *slog.Logger
}

func NewBandHandler(service bandService, logger *slog.Logger) *BandHandler {
	base := defaultLogger(logger)
	return &BandHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *BandHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "BandHandler", operation, attrs...)
}

func (h *BandHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode band request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID)

	band, err := h.service.CreateBand(r.Context(), application.CreateBandParams{
		Principal: principal,
		Input: application.BandInput{
			Name:        strings.TrimSpace(req.Name),
			Description: req.Description,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "band creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("band_id", band.ID).InfoContext(r.Context(), "band created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bandResponse{Band: toBandDTO(band)})
}

func (h *BandHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bandID, ok := BandIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bandID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBandID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	band, err := h.service.GetBand(r.Context(), principal, bandID)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "band_id", bandID).ErrorContext(r.Context(), "band fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bandResponse{Band: toBandDTO(band)})
}

func (h *BandHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	bands, err := h.service.ListBands(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "band list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(bands)).InfoContext(r.Context(), "bands listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listBandsResponse{Bands: toBandDTOs(bands)})
}

func (h *BandHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bandID, ok := BandIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bandID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBandID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req membershipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "AddMember", "principal_id", principal.UserID, "band_id", bandID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode membership request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "AddMember", "principal_id", principal.UserID, "band_id", bandID)

	membership, err := h.service.AddMember(r.Context(), application.AddBandMemberParams{
		Principal: principal,
		BandID:    bandID,
		Input: application.MembershipInput{
			UserID: strings.TrimSpace(req.UserID),
			Role:   strings.TrimSpace(req.Role),
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "membership creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("user_id", membership.UserID).InfoContext(r.Context(), "member enrolled")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, membershipResponse{Membership: toMembershipDTO(membership)})
}

func (h *BandHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	bandID, ok := BandIDFromContext(r.Context())
	if !ok || strings.TrimSpace(bandID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidBandID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "ListMembers", "principal_id", principal.UserID, "band_id", bandID)
	members, err := h.service.ListMembers(r.Context(), principal, bandID)
	if err != nil {
		logger.ErrorContext(r.Context(), "membership list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(members)).InfoContext(r.Context(), "members listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listMembershipsResponse{Members: toMembershipDTOs(members)})
}

type bandRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type membershipRequest struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

type bandResponse struct {
	Band bandDTO `json:"band"`
}

type listBandsResponse struct {
	Bands []bandDTO `json:"bands"`
}

type membershipResponse struct {
	Membership membershipDTO `json:"membership"`
}

type listMembershipsResponse struct {
	Members []membershipDTO `json:"members"`
}

type bandDTO struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	CreatedBy   string  `json:"created_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toBandDTO(band application.Band) bandDTO {
	return bandDTO{
		ID:          band.ID,
		Name:        band.Name,
		Description: band.Description,
		CreatedBy:   band.CreatedBy,
		CreatedAt:   band.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   band.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toBandDTOs(bands []application.Band) []bandDTO {
	if len(bands) == 0 {
		return nil
	}
	out := make([]bandDTO, 0, len(bands))
	for _, band := range bands {
		out = append(out, toBandDTO(band))
	}
	return out
}

type membershipDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	BandID    string `json:"band_id"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

func toMembershipDTO(membership application.BandMembership) membershipDTO {
	return membershipDTO{
		ID:        membership.ID,
		UserID:    membership.UserID,
		BandID:    membership.BandID,
		Role:      membership.Role,
		CreatedAt: membership.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toMembershipDTOs(memberships []application.BandMembership) []membershipDTO {
	if len(memberships) == 0 {
		return nil
	}
	out := make([]membershipDTO, 0, len(memberships))
	for _, membership := range memberships {
		out = append(out, toMembershipDTO(membership))
	}
	return out
}

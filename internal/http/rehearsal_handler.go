package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/band-rehearsal/internal/application"
)

type rehearsalService interface {
	CreateRehearsal(ctx context.Context, params application.CreateRehearsalParams) (application.CreateRehearsalResult, error)
	BulkCreateRehearsals(ctx context.Context, params application.BulkCreateRehearsalsParams) (application.BulkCreateRehearsalsResult, error)
	UpdateRehearsal(ctx context.Context, params application.UpdateRehearsalParams) ([]application.Rehearsal, error)
	DeleteRehearsal(ctx context.Context, params application.DeleteRehearsalParams) error
	GetRehearsal(ctx context.Context, principal application.Principal, rehearsalID string) (application.Rehearsal, error)
	ListRehearsals(ctx context.Context, params application.ListRehearsalsParams) ([]application.Rehearsal, error)
	Rollover(ctx context.Context, principal application.Principal) (application.RolloverResult, error)
}

type RehearsalHandler struct {
	service   rehearsalService
	responder responder
	logger    *slog.Logger
}

func NewRehearsalHandler(service rehearsalService, logger *slog.Logger) *RehearsalHandler {
	base := defaultLogger(logger)
	return &RehearsalHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *RehearsalHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "RehearsalHandler", operation, attrs...)
}

func (h *RehearsalHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req createRehearsalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rehearsal request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Create", "principal_id", principal.UserID, "recurring", req.IsRecurring)

	result, err := h.service.CreateRehearsal(r.Context(), application.CreateRehearsalParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "rehearsal creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("created_count", len(result.Created)).InfoContext(r.Context(), "rehearsals created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, createRehearsalResponse{
		Rehearsals:  toRehearsalDTOs(result.Created),
		RecurringID: result.RecurringID,
	})
}

func (h *RehearsalHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req bulkCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "BulkCreate", "principal_id", principal.UserID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode bulk request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "BulkCreate", "principal_id", principal.UserID, "date_count", len(req.Dates))

	result, err := h.service.BulkCreateRehearsals(r.Context(), application.BulkCreateRehearsalsParams{
		Principal: principal,
		Input: application.BulkRehearsalInput{
			Dates:     append([]string(nil), req.Dates...),
			StartTime: req.StartTime,
			EndTime:   req.EndTime,
			Title:     req.Title,
			BandID:    req.BandID,
		},
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "bulk creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("created_count", len(result.Created), "skipped_count", len(result.Skipped)).InfoContext(r.Context(), "bulk rehearsals created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, bulkCreateResponse{
		Rehearsals: toRehearsalDTOs(result.Created),
		Skipped:    result.Skipped,
	})
}

func (h *RehearsalHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rehearsalID, ok := RehearsalIDFromContext(r.Context())
	if !ok || strings.TrimSpace(rehearsalID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRehearsalID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var req updateRehearsalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "principal_id", principal.UserID, "rehearsal_id", rehearsalID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rehearsal update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	logger := h.log(r.Context(), "Update", "principal_id", principal.UserID, "rehearsal_id", rehearsalID, "all_recurring", req.UpdateAllRecurring)

	updated, err := h.service.UpdateRehearsal(r.Context(), application.UpdateRehearsalParams{
		Principal:   principal,
		RehearsalID: rehearsalID,
		Input:       input,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "rehearsal update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("updated_count", len(updated)).InfoContext(r.Context(), "rehearsals updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRehearsalsResponse{Rehearsals: toRehearsalDTOs(updated)})
}

func (h *RehearsalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rehearsalID, ok := RehearsalIDFromContext(r.Context())
	if !ok || strings.TrimSpace(rehearsalID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRehearsalID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	deleteAll := parseBoolQuery(r.URL.Query(), "all")
	logger := h.log(r.Context(), "Delete", "principal_id", principal.UserID, "rehearsal_id", rehearsalID, "all_recurring", deleteAll)

	if err := h.service.DeleteRehearsal(r.Context(), application.DeleteRehearsalParams{
		Principal:          principal,
		RehearsalID:        rehearsalID,
		DeleteAllRecurring: deleteAll,
	}); err != nil {
		logger.ErrorContext(r.Context(), "rehearsal delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "rehearsal deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RehearsalHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	rehearsalID, ok := RehearsalIDFromContext(r.Context())
	if !ok || strings.TrimSpace(rehearsalID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRehearsalID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	rehearsal, err := h.service.GetRehearsal(r.Context(), principal, rehearsalID)
	if err != nil {
		h.log(r.Context(), "Get", "principal_id", principal.UserID, "rehearsal_id", rehearsalID).ErrorContext(r.Context(), "rehearsal fetch failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, rehearsalResponse{Rehearsal: toRehearsalDTO(rehearsal)})
}

func (h *RehearsalHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	params := buildListRehearsalParams(r.URL.Query(), principal)

	logger := h.log(r.Context(), "List", "principal_id", principal.UserID)
	rehearsals, err := h.service.ListRehearsals(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "rehearsal list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(rehearsals)).InfoContext(r.Context(), "rehearsals listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listRehearsalsResponse{Rehearsals: toRehearsalDTOs(rehearsals)})
}

// Manage purges past rehearsals and appends one new occurrence a week after
// the latest remaining one.
func (h *RehearsalHandler) Manage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	logger := h.log(r.Context(), "Manage", "principal_id", principal.UserID)

	result, err := h.service.Rollover(r.Context(), principal)
	if err != nil {
		logger.ErrorContext(r.Context(), "rollover failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	payload := rolloverResponse{Deleted: result.Deleted}
	if result.Created != nil {
		dto := toRehearsalDTO(*result.Created)
		payload.Created = &dto
	}

	logger.With("deleted_count", result.Deleted).InfoContext(r.Context(), "rollover completed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

type createRehearsalRequest struct {
	Date           string  `json:"date"`
	StartTime      *string `json:"start_time"`
	EndTime        *string `json:"end_time"`
	Title          *string `json:"title"`
	BandID         *string `json:"band_id"`
	IsRecurring    bool    `json:"is_recurring"`
	RecurrenceType string  `json:"recurrence_type"`
	DurationMonths int     `json:"duration_months"`
	DayOfWeek      *string `json:"day_of_week"`
}

func (r createRehearsalRequest) toInput() (application.RehearsalInput, error) {
	var date time.Time
	if strings.TrimSpace(r.Date) != "" {
		parsed, err := parseDay(r.Date)
		if err != nil {
			return application.RehearsalInput{}, err
		}
		date = parsed
	}
	return application.RehearsalInput{
		Date:           date,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		Title:          r.Title,
		BandID:         r.BandID,
		IsRecurring:    r.IsRecurring,
		RecurrenceType: strings.TrimSpace(r.RecurrenceType),
		DurationMonths: r.DurationMonths,
		DayOfWeek:      r.DayOfWeek,
	}, nil
}

type updateRehearsalRequest struct {
	Date               *string `json:"date"`
	StartTime          *string `json:"start_time"`
	EndTime            *string `json:"end_time"`
	Title              *string `json:"title"`
	UpdateAllRecurring bool    `json:"update_all_recurring"`
}

func (r updateRehearsalRequest) toInput() (application.RehearsalUpdateInput, error) {
	input := application.RehearsalUpdateInput{
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		Title:              r.Title,
		UpdateAllRecurring: r.UpdateAllRecurring,
	}
	if r.Date != nil {
		date, err := parseDay(*r.Date)
		if err != nil {
			return application.RehearsalUpdateInput{}, err
		}
		input.Date = &date
	}
	return input, nil
}

type bulkCreateRequest struct {
	Dates     []string `json:"dates"`
	StartTime *string  `json:"start_time"`
	EndTime   *string  `json:"end_time"`
	Title     *string  `json:"title"`
	BandID    *string  `json:"band_id"`
}

type createRehearsalResponse struct {
	Rehearsals  []rehearsalDTO `json:"rehearsals"`
	RecurringID *string        `json:"recurring_id,omitempty"`
}

type bulkCreateResponse struct {
	Rehearsals []rehearsalDTO `json:"rehearsals"`
	Skipped    []string       `json:"skipped,omitempty"`
}

type rehearsalResponse struct {
	Rehearsal rehearsalDTO `json:"rehearsal"`
}

type listRehearsalsResponse struct {
	Rehearsals []rehearsalDTO `json:"rehearsals"`
}

type rolloverResponse struct {
	Deleted int           `json:"deleted"`
	Created *rehearsalDTO `json:"created,omitempty"`
}

type rehearsalDTO struct {
	ID          string  `json:"id"`
	Date        string  `json:"date"`
	StartTime   *string `json:"start_time,omitempty"`
	EndTime     *string `json:"end_time,omitempty"`
	Title       *string `json:"title,omitempty"`
	RecurringID *string `json:"recurring_id,omitempty"`
	BandID      *string `json:"band_id,omitempty"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toRehearsalDTO(rehearsal application.Rehearsal) rehearsalDTO {
	return rehearsalDTO{
		ID:          rehearsal.ID,
		Date:        rehearsal.Date.Format("2006-01-02"),
		StartTime:   rehearsal.StartTime,
		EndTime:     rehearsal.EndTime,
		Title:       rehearsal.Title,
		RecurringID: rehearsal.RecurringID,
		BandID:      rehearsal.BandID,
		CreatedAt:   rehearsal.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   rehearsal.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func toRehearsalDTOs(rehearsals []application.Rehearsal) []rehearsalDTO {
	if len(rehearsals) == 0 {
		return nil
	}
	out := make([]rehearsalDTO, 0, len(rehearsals))
	for _, rehearsal := range rehearsals {
		out = append(out, toRehearsalDTO(rehearsal))
	}
	return out
}

func buildListRehearsalParams(values url.Values, principal application.Principal) application.ListRehearsalsParams {
	params := application.ListRehearsalsParams{Principal: principal}

	if from := strings.TrimSpace(values.Get("from")); from != "" {
		if day, err := parseDay(from); err == nil {
			params.From = &day
		}
	}
	if to := strings.TrimSpace(values.Get("to")); to != "" {
		if day, err := parseDay(to); err == nil {
			params.To = &day
		}
	}
	if bandID := strings.TrimSpace(values.Get("band_id")); bandID != "" {
		params.BandID = &bandID
	}

	return params
}

func parseDay(value string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, errInvalidDate
	}
	return day, nil
}

func parseBoolQuery(values url.Values, key string) bool {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return false
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return false
	}
	return parsed
}

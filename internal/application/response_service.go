package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ResponseService governs attendance records: idempotent creation and
// policy-checked mutation.
type ResponseService struct {
	responses   ResponseRepository
	users       UserDirectory
	rehearsals  RehearsalDirectory
	memberships MembershipDirectory
	logs        LogRecorder
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewResponseService wires dependencies for the response service.
func NewResponseService(responses ResponseRepository, users UserDirectory, rehearsals RehearsalDirectory, memberships MembershipDirectory, logs LogRecorder, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ResponseService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ResponseService{
		responses:   responses,
		users:       users,
		rehearsals:  rehearsals,
		memberships: memberships,
		logs:        logs,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *ResponseService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ResponseService", operation, attrs...)
}

// CreateResponse records attendance for a (user, rehearsal) pair. When a
// response already exists for the pair it is returned unchanged.
func (s *ResponseService) CreateResponse(ctx context.Context, params CreateResponseParams) (Response, error) {
	if s == nil {
		return Response{}, fmt.Errorf("ResponseService is nil")
	}
	if !params.Principal.isAuthenticated() {
		return Response{}, ErrUnauthorized
	}
	if s.responses == nil {
		return Response{}, fmt.Errorf("response repository not configured")
	}

	input := params.Input
	vErr := &ValidationError{}
	if input.UserID == "" {
		vErr.add("user_id", "user_id is required")
	}
	if input.RehearsalID == "" {
		vErr.add("rehearsal_id", "rehearsal_id is required")
	}
	if vErr.HasErrors() {
		return Response{}, vErr
	}

	existing, err := s.responses.GetResponseForPair(ctx, input.UserID, input.RehearsalID)
	if err == nil {
		return existing, nil
	}
	if !isNotFoundError(err) {
		return Response{}, mapRepoError(err)
	}

	if s.users != nil {
		if _, err := s.users.GetUser(ctx, input.UserID); err != nil {
			return Response{}, mapRepoError(err)
		}
	}
	if s.rehearsals != nil {
		if _, err := s.rehearsals.GetRehearsal(ctx, input.RehearsalID); err != nil {
			return Response{}, mapRepoError(err)
		}
	}

	response := Response{
		ID:          s.idGenerator(),
		UserID:      input.UserID,
		RehearsalID: input.RehearsalID,
		Attending:   input.Attending,
		UpdatedAt:   s.now(),
	}
	created, err := s.responses.CreateResponse(ctx, response)
	if err != nil {
		return Response{}, mapRepoError(err)
	}
	return created, nil
}

// UpdateResponse applies a partial update to an existing response. Allowed for
// the owning user, an admin of the rehearsal's band, or a global admin.
func (s *ResponseService) UpdateResponse(ctx context.Context, params UpdateResponseParams) (Response, error) {
	if s == nil {
		return Response{}, fmt.Errorf("ResponseService is nil")
	}
	if !params.Principal.isAuthenticated() {
		return Response{}, ErrUnauthorized
	}
	if s.responses == nil {
		return Response{}, fmt.Errorf("response repository not configured")
	}

	existing, err := s.responses.GetResponse(ctx, params.ResponseID)
	if err != nil {
		return Response{}, mapRepoError(err)
	}

	allowed, err := s.canMutate(ctx, params.Principal, existing)
	if err != nil {
		return Response{}, err
	}
	if !allowed {
		return Response{}, ErrUnauthorized
	}

	updated := existing
	if params.Input.Attending != nil {
		updated.Attending = *params.Input.Attending
	}
	if params.Input.Comment != nil {
		updated.Comment = params.Input.Comment
	}
	updated.UpdatedAt = s.now()

	persisted, err := s.responses.UpdateResponse(ctx, updated)
	if err != nil {
		return Response{}, mapRepoError(err)
	}

	oldValue := formatResponseAudit(existing)
	newValue := formatResponseAudit(persisted)
	recordAudit(ctx, s.loggerWith(ctx, "UpdateResponse"), s.logs, LogEntry{
		ID:         s.idGenerator(),
		UserID:     params.Principal.UserID,
		Action:     "update",
		EntityType: "response",
		EntityID:   existing.ID,
		OldValue:   &oldValue,
		NewValue:   &newValue,
		Timestamp:  updated.UpdatedAt,
	})

	return persisted, nil
}

// GetResponse returns one response by id for any authenticated user.
func (s *ResponseService) GetResponse(ctx context.Context, principal Principal, responseID string) (Response, error) {
	if s == nil {
		return Response{}, fmt.Errorf("ResponseService is nil")
	}
	if !principal.isAuthenticated() {
		return Response{}, ErrUnauthorized
	}
	if s.responses == nil {
		return Response{}, fmt.Errorf("response repository not configured")
	}

	response, err := s.responses.GetResponse(ctx, responseID)
	if err != nil {
		return Response{}, mapRepoError(err)
	}
	return response, nil
}

// ListResponses returns responses, optionally narrowed to one rehearsal.
func (s *ResponseService) ListResponses(ctx context.Context, params ListResponsesParams) ([]Response, error) {
	if s == nil {
		return nil, fmt.Errorf("ResponseService is nil")
	}
	if !params.Principal.isAuthenticated() {
		return nil, ErrUnauthorized
	}
	if s.responses == nil {
		return nil, nil
	}

	responses, err := s.responses.ListResponses(ctx, params.RehearsalID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return responses, nil
}

func (s *ResponseService) canMutate(ctx context.Context, principal Principal, response Response) (bool, error) {
	if principal.UserID == response.UserID || principal.isGlobalAdmin() {
		return true, nil
	}
	if s.rehearsals == nil || s.memberships == nil {
		return false, nil
	}

	rehearsal, err := s.rehearsals.GetRehearsal(ctx, response.RehearsalID)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, mapRepoError(err)
	}
	if rehearsal.BandID == nil {
		return false, nil
	}

	membership, err := s.memberships.GetMembership(ctx, principal.UserID, *rehearsal.BandID)
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, mapRepoError(err)
	}
	return membership.Role == RoleAdmin, nil
}

// formatResponseAudit renders a response the way operators read the audit
// trail, attendance in Swedish.
func formatResponseAudit(response Response) string {
	attending := "Nej"
	if response.Attending {
		attending = "Ja"
	}
	return fmt.Sprintf("Attending: %s, Comment: %s", attending, derefOr(response.Comment, ""))
}

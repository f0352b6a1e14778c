package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/example/band-rehearsal/internal/application"
)

type stubAuthService struct {
	result application.LoginResult
	err    error
}

func (s *stubAuthService) Authenticate(ctx context.Context, params application.LoginParams) (application.LoginResult, error) {
	if s.err != nil {
		return application.LoginResult{}, s.err
	}
	return s.result, nil
}

type stubRehearsalService struct {
	createResult application.CreateRehearsalResult
	bulkResult   application.BulkCreateRehearsalsResult
	updated      []application.Rehearsal
	rehearsal    application.Rehearsal
	listed       []application.Rehearsal
	rollover     application.RolloverResult
	err          error

	deleteParams application.DeleteRehearsalParams
	updateParams application.UpdateRehearsalParams
	manageCalls  int
	bulkCalls    int
}

func (s *stubRehearsalService) CreateRehearsal(ctx context.Context, params application.CreateRehearsalParams) (application.CreateRehearsalResult, error) {
	return s.createResult, s.err
}

func (s *stubRehearsalService) BulkCreateRehearsals(ctx context.Context, params application.BulkCreateRehearsalsParams) (application.BulkCreateRehearsalsResult, error) {
	s.bulkCalls++
	return s.bulkResult, s.err
}

func (s *stubRehearsalService) UpdateRehearsal(ctx context.Context, params application.UpdateRehearsalParams) ([]application.Rehearsal, error) {
	s.updateParams = params
	return s.updated, s.err
}

func (s *stubRehearsalService) DeleteRehearsal(ctx context.Context, params application.DeleteRehearsalParams) error {
	s.deleteParams = params
	return s.err
}

func (s *stubRehearsalService) GetRehearsal(ctx context.Context, principal application.Principal, rehearsalID string) (application.Rehearsal, error) {
	return s.rehearsal, s.err
}

func (s *stubRehearsalService) ListRehearsals(ctx context.Context, params application.ListRehearsalsParams) ([]application.Rehearsal, error) {
	return s.listed, s.err
}

func (s *stubRehearsalService) Rollover(ctx context.Context, principal application.Principal) (application.RolloverResult, error) {
	s.manageCalls++
	return s.rollover, s.err
}

type stubUserService struct {
	user  application.User
	users []application.User
	err   error
}

func (s *stubUserService) CreateUser(ctx context.Context, params application.CreateUserParams) (application.User, error) {
	return s.user, s.err
}

func (s *stubUserService) UpdateUser(ctx context.Context, params application.UpdateUserParams) (application.User, error) {
	return s.user, s.err
}

func (s *stubUserService) DeleteUser(ctx context.Context, principal application.Principal, userID string) error {
	return s.err
}

func (s *stubUserService) GetUser(ctx context.Context, principal application.Principal, userID string) (application.User, error) {
	return s.user, s.err
}

func (s *stubUserService) ListUsers(ctx context.Context, principal application.Principal) ([]application.User, error) {
	return s.users, s.err
}

type stubInvitationService struct {
	invitation application.Invitation
	list       []application.Invitation
	user       application.User
	err        error

	registerToken string
}

func (s *stubInvitationService) CreateInvitation(ctx context.Context, params application.CreateInvitationParams) (application.Invitation, error) {
	return s.invitation, s.err
}

func (s *stubInvitationService) ListInvitations(ctx context.Context, principal application.Principal) ([]application.Invitation, error) {
	return s.list, s.err
}

func (s *stubInvitationService) DeleteInvitation(ctx context.Context, principal application.Principal, invitationID string) error {
	return s.err
}

func (s *stubInvitationService) Register(ctx context.Context, params application.RegisterParams) (application.User, error) {
	s.registerToken = params.Token
	return s.user, s.err
}

func passthroughAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ContextWithPrincipal(r.Context(), application.Principal{UserID: "admin-1", IsAdmin: true})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func rejectAllAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Parallel()

	t.Run("issues a token for valid credentials", func(t *testing.T) {
		t.Parallel()

		service := &stubAuthService{result: application.LoginResult{
			Token: "signed-token",
			User:  application.User{ID: "user-1", Username: "anna", IsAdmin: true},
		}}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"anna","password":"secret"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Fatalf("expected status 200, got %d", recorder.Code)
		}

		var payload loginResponse
		if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload.Token != "signed-token" {
			t.Fatalf("expected token in response, got %+v", payload)
		}
		if payload.User.ID != "user-1" || !payload.User.IsAdmin {
			t.Fatalf("expected user details in response, got %+v", payload.User)
		}
	})

	t.Run("rejects invalid credentials with 401", func(t *testing.T) {
		t.Parallel()

		service := &stubAuthService{err: application.ErrInvalidCredentials}
		router := NewRouter(RouterConfig{Auth: NewAuthHandler(service, nil)})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"anna","password":"wrong"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("expected status 401, got %d", recorder.Code)
		}

		var payload errorResponse
		if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if payload.ErrorCode != "AUTH_INVALID_CREDENTIALS" {
			t.Fatalf("expected credential error code, got %+v", payload)
		}
	})

	t.Run("rejects malformed bodies with 400", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{Auth: NewAuthHandler(&stubAuthService{}, nil)})

		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("not json"))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected status 400, got %d", recorder.Code)
		}
	})
}

func TestRouter_ProtectedRoutesRequireAuthentication(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{
		Users:        NewUserHandler(&stubUserService{}, nil),
		Authenticate: rejectAllAuth,
	})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", recorder.Code)
	}
}

func TestRouter_RegistrationBypassesAuthentication(t *testing.T) {
	t.Parallel()

	service := &stubInvitationService{user: application.User{ID: "user-9", Username: "nils"}}
	router := NewRouter(RouterConfig{
		Invitations:  NewInvitationHandler(service, nil),
		Authenticate: rejectAllAuth,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register/token-123", strings.NewReader(`{"username":"nils","password":"secret"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", recorder.Code)
	}
	if service.registerToken != "token-123" {
		t.Fatalf("expected path token forwarded to the service, got %q", service.registerToken)
	}
}

func TestRehearsalHandler_DeleteForwardsSeriesFlag(t *testing.T) {
	t.Parallel()

	service := &stubRehearsalService{}
	router := NewRouter(RouterConfig{
		Rehearsals:   NewRehearsalHandler(service, nil),
		Authenticate: passthroughAuth,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/rehearsals/r-1?all=true", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recorder.Code)
	}
	if service.deleteParams.RehearsalID != "r-1" || !service.deleteParams.DeleteAllRecurring {
		t.Fatalf("expected series delete for r-1, got %+v", service.deleteParams)
	}
}

func TestRehearsalHandler_DeleteDefaultsToSingleRow(t *testing.T) {
	t.Parallel()

	service := &stubRehearsalService{}
	router := NewRouter(RouterConfig{
		Rehearsals:   NewRehearsalHandler(service, nil),
		Authenticate: passthroughAuth,
	})

	req := httptest.NewRequest(http.MethodDelete, "/api/rehearsals/r-1", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", recorder.Code)
	}
	if service.deleteParams.DeleteAllRecurring {
		t.Fatal("series flag must default to false")
	}
}

func TestRehearsalHandler_UpdateForwardsRecurringFlag(t *testing.T) {
	t.Parallel()

	service := &stubRehearsalService{updated: []application.Rehearsal{{ID: "r-1", Date: time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)}}}
	router := NewRouter(RouterConfig{
		Rehearsals:   NewRehearsalHandler(service, nil),
		Authenticate: passthroughAuth,
	})

	body := `{"date":"2025-01-09","update_all_recurring":true}`
	req := httptest.NewRequest(http.MethodPut, "/api/rehearsals/r-1", strings.NewReader(body))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", recorder.Code)
	}
	if !service.updateParams.Input.UpdateAllRecurring {
		t.Fatal("expected the recurring flag forwarded to the service")
	}
	if service.updateParams.Input.Date == nil || service.updateParams.Input.Date.Format("2006-01-02") != "2025-01-09" {
		t.Fatalf("expected parsed date forwarded, got %+v", service.updateParams.Input.Date)
	}
}

func TestRehearsalHandler_UpdateRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	service := &stubRehearsalService{}
	router := NewRouter(RouterConfig{
		Rehearsals:   NewRehearsalHandler(service, nil),
		Authenticate: passthroughAuth,
	})

	req := httptest.NewRequest(http.MethodPut, "/api/rehearsals/r-1", strings.NewReader(`{"date":"09/01/2025"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", recorder.Code)
	}
}

func TestRehearsalHandler_BulkAndManageRoutes(t *testing.T) {
	t.Parallel()

	service := &stubRehearsalService{
		bulkResult: application.BulkCreateRehearsalsResult{Skipped: []string{"bad-date"}},
		rollover:   application.RolloverResult{Deleted: 2},
	}
	router := NewRouter(RouterConfig{
		Rehearsals:   NewRehearsalHandler(service, nil),
		Authenticate: passthroughAuth,
	})

	bulkReq := httptest.NewRequest(http.MethodPost, "/api/rehearsals/bulk", strings.NewReader(`{"dates":["2025-01-06","bad-date"]}`))
	bulkRec := httptest.NewRecorder()
	router.ServeHTTP(bulkRec, bulkReq)

	if bulkRec.Code != http.StatusCreated {
		t.Fatalf("expected status 201 from bulk, got %d", bulkRec.Code)
	}
	if service.bulkCalls != 1 {
		t.Fatalf("expected one bulk call, got %d", service.bulkCalls)
	}

	manageReq := httptest.NewRequest(http.MethodPost, "/api/rehearsals/manage", nil)
	manageRec := httptest.NewRecorder()
	router.ServeHTTP(manageRec, manageReq)

	if manageRec.Code != http.StatusOK {
		t.Fatalf("expected status 200 from manage, got %d", manageRec.Code)
	}
	if service.manageCalls != 1 {
		t.Fatalf("expected one rollover call, got %d", service.manageCalls)
	}

	var payload rolloverResponse
	if err := json.NewDecoder(manageRec.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode rollover response: %v", err)
	}
	if payload.Deleted != 2 {
		t.Fatalf("expected 2 deletions reported, got %d", payload.Deleted)
	}
}

func TestUserHandler_MapsServiceErrorsToStatusCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "forbidden", err: application.ErrUnauthorized, expectedStatus: http.StatusForbidden},
		{name: "not found", err: application.ErrNotFound, expectedStatus: http.StatusNotFound},
		{name: "conflict", err: application.ErrConflict, expectedStatus: http.StatusConflict},
		{name: "self deletion", err: application.ErrSelfDeletion, expectedStatus: http.StatusConflict},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			router := NewRouter(RouterConfig{
				Users:        NewUserHandler(&stubUserService{err: tc.err}, nil),
				Authenticate: passthroughAuth,
			})

			req := httptest.NewRequest(http.MethodDelete, "/api/users/user-2", nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			if recorder.Code != tc.expectedStatus {
				t.Fatalf("expected status %d, got %d", tc.expectedStatus, recorder.Code)
			}
		})
	}
}

func TestUserHandler_RendersValidationErrorsAs422(t *testing.T) {
	t.Parallel()

	vErr := &application.ValidationError{FieldErrors: map[string]string{
		"username": "username is required",
		"password": "password must be at least 8 characters",
	}}
	router := NewRouter(RouterConfig{
		Users:        NewUserHandler(&stubUserService{err: vErr}, nil),
		Authenticate: passthroughAuth,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{"username":""}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	if recorder.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", recorder.Code)
	}

	var payload errorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Errors["username"] != "username is required" {
		t.Fatalf("expected field errors in payload, got %+v", payload.Errors)
	}
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

const invitationTTL = 7 * 24 * time.Hour

// InvitationService manages email invitations and token registration.
type InvitationService struct {
	invitations InvitationRepository
	mailer      InvitationMailer
	hashParams  Argon2idParams
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewInvitationService wires dependencies for the invitation service.
func NewInvitationService(invitations InvitationRepository, mailer InvitationMailer, idGenerator func() string, now func() time.Time, logger *slog.Logger) *InvitationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &InvitationService{
		invitations: invitations,
		mailer:      mailer,
		hashParams:  DefaultArgon2idParams,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *InvitationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "InvitationService", operation, attrs...)
}

// CreateInvitation records a single-use invitation for the address and sends
// the invitation email. A pending unexpired invitation for the same address
// is a conflict. Delivery failure does not roll back the stored invitation.
func (s *InvitationService) CreateInvitation(ctx context.Context, params CreateInvitationParams) (Invitation, error) {
	if s == nil {
		return Invitation{}, fmt.Errorf("InvitationService is nil")
	}
	if !params.Principal.isGlobalAdmin() {
		return Invitation{}, ErrUnauthorized
	}
	if s.invitations == nil {
		return Invitation{}, fmt.Errorf("invitation repository not configured")
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" {
		vErr := &ValidationError{}
		vErr.add("email", "email is required")
		return Invitation{}, vErr
	}
	if _, err := mail.ParseAddress(email); err != nil {
		vErr := &ValidationError{}
		vErr.add("email", "email is invalid")
		return Invitation{}, vErr
	}

	now := s.now()
	pending, err := s.invitations.HasPendingInvitation(ctx, email, now)
	if err != nil {
		return Invitation{}, mapRepoError(err)
	}
	if pending {
		return Invitation{}, fmt.Errorf("invitation already pending for %s: %w", email, ErrConflict)
	}

	invitation := Invitation{
		ID:        s.idGenerator(),
		Email:     email,
		Token:     s.idGenerator(),
		CreatedBy: params.Principal.UserID,
		CreatedAt: now,
		ExpiresAt: now.Add(invitationTTL),
	}
	persisted, err := s.invitations.CreateInvitation(ctx, invitation)
	if err != nil {
		return Invitation{}, mapRepoError(err)
	}

	logger := s.loggerWith(ctx, "CreateInvitation", "email", email)
	if s.mailer != nil {
		if err := s.mailer.SendInvitation(ctx, persisted.Email, persisted.Token); err != nil {
			// The invitation stays valid; an admin can resend or share the link.
			logger.ErrorContext(ctx, "invitation email not delivered", "error", err)
		}
	}

	logger.InfoContext(ctx, "invitation created", "invitation_id", persisted.ID)
	return persisted, nil
}

// ListInvitations returns all invitations for administrators.
func (s *InvitationService) ListInvitations(ctx context.Context, principal Principal) ([]Invitation, error) {
	if s == nil {
		return nil, fmt.Errorf("InvitationService is nil")
	}
	if !principal.isGlobalAdmin() {
		return nil, ErrUnauthorized
	}
	if s.invitations == nil {
		return nil, nil
	}

	invitations, err := s.invitations.ListInvitations(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return invitations, nil
}

// DeleteInvitation removes an invitation for administrators.
func (s *InvitationService) DeleteInvitation(ctx context.Context, principal Principal, invitationID string) error {
	if s == nil {
		return fmt.Errorf("InvitationService is nil")
	}
	if !principal.isGlobalAdmin() {
		return ErrUnauthorized
	}
	if s.invitations == nil {
		return fmt.Errorf("invitation repository not configured")
	}

	if err := s.invitations.DeleteInvitation(ctx, invitationID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// Register consumes an invitation token and creates the account carrying the
// invitation's email address. A token is single-use: an accepted or expired
// invitation is a conflict, an unknown token is not found.
func (s *InvitationService) Register(ctx context.Context, params RegisterParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("InvitationService is nil")
	}
	if s.invitations == nil {
		return User{}, fmt.Errorf("invitation repository not configured")
	}

	invitation, err := s.invitations.GetInvitationByToken(ctx, params.Token)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	if invitation.IsAccepted {
		return User{}, fmt.Errorf("invitation already used: %w", ErrConflict)
	}
	if !invitation.ExpiresAt.After(s.now()) {
		return User{}, fmt.Errorf("invitation expired: %w", ErrConflict)
	}

	input := params.Input
	vErr := &ValidationError{}
	username := strings.TrimSpace(input.Username)
	if username == "" {
		vErr.add("username", "username is required")
	}
	if input.Password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := CreatePasswordHash(input.Password, s.hashParams)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	user := User{
		ID:        s.idGenerator(),
		Username:  username,
		Email:     invitation.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	persisted, err := s.invitations.AcceptInvitation(ctx, invitation.ID, user, hash)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	s.loggerWith(ctx, "Register").InfoContext(ctx, "invitation consumed", "invitation_id", invitation.ID, "user_id", persisted.ID)
	return persisted, nil
}

package application

import (
	"context"
	"errors"
	"testing"
	"time"
)

type invitationRepoStub struct {
	invitations map[string]Invitation
	pending     bool
	err         error

	created   *Invitation
	deletedID string

	acceptedID   string
	acceptedUser *User
	acceptedHash string
}

func (i *invitationRepoStub) CreateInvitation(ctx context.Context, invitation Invitation) (Invitation, error) {
	if i.err != nil {
		return Invitation{}, i.err
	}
	i.created = &invitation
	return invitation, nil
}

func (i *invitationRepoStub) GetInvitationByToken(ctx context.Context, token string) (Invitation, error) {
	if i.err != nil {
		return Invitation{}, i.err
	}
	for _, invitation := range i.invitations {
		if invitation.Token == token {
			return invitation, nil
		}
	}
	return Invitation{}, ErrNotFound
}

func (i *invitationRepoStub) ListInvitations(ctx context.Context) ([]Invitation, error) {
	if i.err != nil {
		return nil, i.err
	}
	out := make([]Invitation, 0, len(i.invitations))
	for _, invitation := range i.invitations {
		out = append(out, invitation)
	}
	return out, nil
}

func (i *invitationRepoStub) DeleteInvitation(ctx context.Context, id string) error {
	if i.err != nil {
		return i.err
	}
	if _, ok := i.invitations[id]; !ok {
		return ErrNotFound
	}
	i.deletedID = id
	return nil
}

func (i *invitationRepoStub) HasPendingInvitation(ctx context.Context, email string, now time.Time) (bool, error) {
	if i.err != nil {
		return false, i.err
	}
	return i.pending, nil
}

func (i *invitationRepoStub) AcceptInvitation(ctx context.Context, invitationID string, user User, passwordHash string) (User, error) {
	if i.err != nil {
		return User{}, i.err
	}
	i.acceptedID = invitationID
	i.acceptedUser = &user
	i.acceptedHash = passwordHash
	return user, nil
}

type invitationMailerStub struct {
	email string
	token string
	err   error
}

func (m *invitationMailerStub) SendInvitation(ctx context.Context, email, token string) error {
	m.email = email
	m.token = token
	return m.err
}

func newInvitationService(repo *invitationRepoStub, mailer *invitationMailerStub) *InvitationService {
	svc := NewInvitationService(repo, mailer, sequenceIDs("inv"), fixedClock("2025-01-01T12:00:00Z"), nil)
	svc.hashParams = Argon2idParams{Memory: 8, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}
	return svc
}

func TestInvitationService_CreateInvitation_RequiresAdmin(t *testing.T) {
	t.Parallel()

	svc := newInvitationService(&invitationRepoStub{}, &invitationMailerStub{})
	_, err := svc.CreateInvitation(context.Background(), CreateInvitationParams{
		Principal: Principal{UserID: "user-1"},
		Email:     "new@example.com",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestInvitationService_CreateInvitation_SendsMailAndSetsExpiry(t *testing.T) {
	t.Parallel()

	repo := &invitationRepoStub{}
	mailer := &invitationMailerStub{}
	svc := newInvitationService(repo, mailer)

	invitation, err := svc.CreateInvitation(context.Background(), CreateInvitationParams{
		Principal: admin(),
		Email:     "New@Example.com",
	})
	if err != nil {
		t.Fatalf("CreateInvitation returned error: %v", err)
	}
	if invitation.Email != "new@example.com" {
		t.Fatalf("expected normalized email, got %q", invitation.Email)
	}
	if got := invitation.ExpiresAt.Sub(invitation.CreatedAt); got != 7*24*time.Hour {
		t.Fatalf("expected 7 day expiry, got %v", got)
	}
	if mailer.email != "new@example.com" || mailer.token != invitation.Token {
		t.Fatalf("mailer called with %q/%q", mailer.email, mailer.token)
	}
}

func TestInvitationService_CreateInvitation_PendingIsConflict(t *testing.T) {
	t.Parallel()

	svc := newInvitationService(&invitationRepoStub{pending: true}, &invitationMailerStub{})
	_, err := svc.CreateInvitation(context.Background(), CreateInvitationParams{
		Principal: admin(),
		Email:     "new@example.com",
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestInvitationService_CreateInvitation_DeliveryFailureKeepsInvitation(t *testing.T) {
	t.Parallel()

	repo := &invitationRepoStub{}
	mailer := &invitationMailerStub{err: errors.New("smtp down")}
	svc := newInvitationService(repo, mailer)

	invitation, err := svc.CreateInvitation(context.Background(), CreateInvitationParams{
		Principal: admin(),
		Email:     "new@example.com",
	})
	if err != nil {
		t.Fatalf("expected delivery failure to be swallowed, got %v", err)
	}
	if repo.created == nil || repo.created.ID != invitation.ID {
		t.Fatal("invitation must stay recorded")
	}
}

func TestInvitationService_Register_ConsumesToken(t *testing.T) {
	t.Parallel()

	repo := &invitationRepoStub{invitations: map[string]Invitation{
		"inv-1": {
			ID:        "inv-1",
			Email:     "new@example.com",
			Token:     "token-1",
			ExpiresAt: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := newInvitationService(repo, &invitationMailerStub{})

	user, err := svc.Register(context.Background(), RegisterParams{
		Token: "token-1",
		Input: RegistrationInput{Username: "newbie", Password: "secret"},
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "new@example.com" {
		t.Fatalf("expected the invitation's email, got %q", user.Email)
	}
	if user.IsAdmin || user.IsSuperAdmin {
		t.Fatal("registered users must not be administrators")
	}
	if repo.acceptedID != "inv-1" {
		t.Fatalf("expected invitation inv-1 consumed, got %q", repo.acceptedID)
	}
	if err := VerifyPassword(repo.acceptedHash, "secret"); err != nil {
		t.Fatalf("stored hash does not verify: %v", err)
	}
}

func TestInvitationService_Register_RejectsUnknownAcceptedAndExpired(t *testing.T) {
	t.Parallel()

	repo := &invitationRepoStub{invitations: map[string]Invitation{
		"inv-used": {
			ID:         "inv-used",
			Token:      "token-used",
			IsAccepted: true,
			ExpiresAt:  time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		"inv-old": {
			ID:        "inv-old",
			Token:     "token-old",
			ExpiresAt: time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC),
		},
	}}
	svc := newInvitationService(repo, &invitationMailerStub{})

	input := RegistrationInput{Username: "newbie", Password: "secret"}

	if _, err := svc.Register(context.Background(), RegisterParams{Token: "nope", Input: input}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown token, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterParams{Token: "token-used", Input: input}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for consumed token, got %v", err)
	}
	if _, err := svc.Register(context.Background(), RegisterParams{Token: "token-old", Input: input}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict for expired token, got %v", err)
	}
	if repo.acceptedID != "" {
		t.Fatal("no invitation may be consumed")
	}
}

package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/example/band-rehearsal/internal/persistence"
)

// UserRepository captures the persistence operations needed by the user service.
type UserRepository interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	UpdateUser(ctx context.Context, user User, passwordHash *string) (User, error)
	DeleteUser(ctx context.Context, id string) error
	ListUsers(ctx context.Context) ([]User, error)
}

// UserDirectory exposes read-only user lookups to the other services.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
}

// CredentialStore exposes credential lookup for authentication.
type CredentialStore interface {
	GetUserCredentialsByUsername(ctx context.Context, username string) (UserCredentials, error)
	GetUser(ctx context.Context, id string) (User, error)
}

// RehearsalRepository captures the persistence operations needed by the
// rehearsal service. Creation and rollover are composite: the store applies
// each call as one transaction.
type RehearsalRepository interface {
	CreateRehearsals(ctx context.Context, seeds []RehearsalSeed) ([]Rehearsal, error)
	GetRehearsal(ctx context.Context, id string) (Rehearsal, error)
	ListRehearsals(ctx context.Context, filter RehearsalFilter) ([]Rehearsal, error)
	ExistsOnDate(ctx context.Context, date time.Time, bandID *string) (bool, error)
	UpdateRehearsals(ctx context.Context, rehearsals []Rehearsal) error
	DeleteRehearsal(ctx context.Context, id string) error
	DeleteRehearsalSeries(ctx context.Context, recurringID string) error
	ApplyRollover(ctx context.Context, deleteIDs []string, seed *RehearsalSeed) error
}

// RehearsalDirectory exposes read-only rehearsal lookups to the other services.
type RehearsalDirectory interface {
	GetRehearsal(ctx context.Context, id string) (Rehearsal, error)
	ListRehearsals(ctx context.Context, filter RehearsalFilter) ([]Rehearsal, error)
}

// ResponseRepository captures the persistence operations needed by the
// response service.
type ResponseRepository interface {
	CreateResponse(ctx context.Context, response Response) (Response, error)
	GetResponse(ctx context.Context, id string) (Response, error)
	GetResponseForPair(ctx context.Context, userID, rehearsalID string) (Response, error)
	ListResponses(ctx context.Context, rehearsalID *string) ([]Response, error)
	UpdateResponse(ctx context.Context, response Response) (Response, error)
}

// BandRepository captures the persistence operations needed by the band service.
type BandRepository interface {
	CreateBand(ctx context.Context, band Band, creatorMembership BandMembership) (Band, error)
	GetBand(ctx context.Context, id string) (Band, error)
	ListBands(ctx context.Context) ([]Band, error)
	ListBandsForUser(ctx context.Context, userID string) ([]Band, error)
	CreateMembership(ctx context.Context, membership BandMembership) (BandMembership, error)
	GetMembership(ctx context.Context, userID, bandID string) (BandMembership, error)
	ListMemberships(ctx context.Context, bandID string) ([]BandMembership, error)
}

// MembershipDirectory exposes the role lookup feeding the access policy.
type MembershipDirectory interface {
	GetMembership(ctx context.Context, userID, bandID string) (BandMembership, error)
}

// InvitationRepository captures the persistence operations needed by the
// invitation service. AcceptInvitation consumes the invitation and creates the
// registered user in one transaction.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, invitation Invitation) (Invitation, error)
	GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
	ListInvitations(ctx context.Context) ([]Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error
	HasPendingInvitation(ctx context.Context, email string, now time.Time) (bool, error)
	AcceptInvitation(ctx context.Context, invitationID string, user User, passwordHash string) (User, error)
}

// LogRecorder appends audit entries. Entries are write-only from the services'
// perspective.
type LogRecorder interface {
	AppendLogEntry(ctx context.Context, entry LogEntry) error
}

// InvitationMailer composes and sends one invitation message.
type InvitationMailer interface {
	SendInvitation(ctx context.Context, email, token string) error
}

// DigestMailer renders and delivers the weekly digest to the recipient list.
type DigestMailer interface {
	SendDigest(ctx context.Context, recipients []string, entries []DigestEntry) error
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrConflict
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("input", "input violates a storage constraint")
		return vErr
	}
	return err
}

func isNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

// recordAudit appends an audit entry. Audit failures are logged and swallowed
// so a completed mutation is never reported as failed.
func recordAudit(ctx context.Context, logger *slog.Logger, logs LogRecorder, entry LogEntry) {
	if logs == nil {
		return
	}
	if err := logs.AppendLogEntry(ctx, entry); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.WarnContext(ctx, "audit entry not recorded", "error", err, "action", entry.Action, "entity_type", entry.EntityType)
	}
}

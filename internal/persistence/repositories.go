package persistence

import (
	"context"
	"time"
)

// UserRepository exposes CRUD operations for users.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	UpdateUser(ctx context.Context, user User) error
	GetUser(ctx context.Context, id string) (User, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	ListUsers(ctx context.Context) ([]User, error)
	DeleteUser(ctx context.Context, id string) error
}

// BandRepository stores bands and their memberships.
type BandRepository interface {
	// CreateBand stores the band and the creator's admin membership in one
	// transaction.
	CreateBand(ctx context.Context, band Band, creatorMembership BandMembership) error
	GetBand(ctx context.Context, id string) (Band, error)
	ListBands(ctx context.Context) ([]Band, error)
	ListBandsForUser(ctx context.Context, userID string) ([]Band, error)
	CreateMembership(ctx context.Context, membership BandMembership) error
	GetMembership(ctx context.Context, userID, bandID string) (BandMembership, error)
	ListMemberships(ctx context.Context, bandID string) ([]BandMembership, error)
}

// RehearsalFilter narrows rehearsal queries. Date bounds are inclusive and
// compared on the calendar day.
type RehearsalFilter struct {
	FromDate    *time.Time
	ToDate      *time.Time
	BandID      *string
	RecurringID *string
}

// RehearsalSeed couples a rehearsal with the responses that must exist the
// moment it does.
type RehearsalSeed struct {
	Rehearsal Rehearsal
	Responses []Response
}

// RehearsalRepository stores rehearsal occurrences and applies the composite
// mutations that must be atomic.
type RehearsalRepository interface {
	// CreateRehearsals inserts every seed (occurrence plus its default
	// responses) in one transaction.
	CreateRehearsals(ctx context.Context, seeds []RehearsalSeed) error
	GetRehearsal(ctx context.Context, id string) (Rehearsal, error)
	ListRehearsals(ctx context.Context, filter RehearsalFilter) ([]Rehearsal, error)
	ExistsOnDate(ctx context.Context, date time.Time, bandID *string) (bool, error)
	// UpdateRehearsals applies every update in one transaction.
	UpdateRehearsals(ctx context.Context, rehearsals []Rehearsal) error
	DeleteRehearsal(ctx context.Context, id string) error
	DeleteRehearsalSeries(ctx context.Context, recurringID string) error
	// ApplyRollover deletes the given occurrences and, when seed is non-nil,
	// inserts the replacement occurrence, all in one transaction.
	ApplyRollover(ctx context.Context, deleteIDs []string, seed *RehearsalSeed) error
}

// ResponseFilter narrows response queries.
type ResponseFilter struct {
	RehearsalID *string
	UserID      *string
}

// ResponseRepository stores attendance responses.
type ResponseRepository interface {
	CreateResponse(ctx context.Context, response Response) error
	GetResponse(ctx context.Context, id string) (Response, error)
	GetResponseForPair(ctx context.Context, userID, rehearsalID string) (Response, error)
	ListResponses(ctx context.Context, filter ResponseFilter) ([]Response, error)
	UpdateResponse(ctx context.Context, response Response) error
}

// InvitationRepository stores registration invitations.
type InvitationRepository interface {
	CreateInvitation(ctx context.Context, invitation Invitation) error
	GetInvitationByToken(ctx context.Context, token string) (Invitation, error)
	ListInvitations(ctx context.Context) ([]Invitation, error)
	DeleteInvitation(ctx context.Context, id string) error
	HasPendingInvitation(ctx context.Context, email string, now time.Time) (bool, error)
	// AcceptInvitation marks the invitation accepted and creates the
	// registered user in one transaction.
	AcceptInvitation(ctx context.Context, invitationID string, user User) error
}

// LogRepository appends audit entries.
type LogRepository interface {
	AppendLogEntry(ctx context.Context, entry LogEntry) error
}

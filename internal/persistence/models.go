package persistence

import "time"

// User represents a band member account.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	FirstName    *string
	LastName     *string
	IsAdmin      bool
	IsSuperAdmin bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Band represents a tenant grouping of users and rehearsals.
type Band struct {
	ID          string
	Name        string
	Description *string
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BandMembership links a user to a band with a role.
// Role is one of "member" or "admin"; (UserID, BandID) is unique.
type BandMembership struct {
	ID        string
	UserID    string
	BandID    string
	Role      string
	CreatedAt time.Time
}

// Rehearsal represents one concrete occurrence on a calendar day.
// RecurringID is an opaque token shared by every occurrence generated from one
// recurring request; nil for standalone events. It is deliberately not a
// foreign key to a series table.
type Rehearsal struct {
	ID          string
	Date        time.Time
	StartTime   *string
	EndTime     *string
	Title       *string
	RecurringID *string
	BandID      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Response records one user's attendance answer for one rehearsal.
// (UserID, RehearsalID) is unique.
type Response struct {
	ID          string
	UserID      string
	RehearsalID string
	Attending   bool
	Comment     *string
	UpdatedAt   time.Time
}

// Invitation is a single-use registration token mailed to an address.
type Invitation struct {
	ID         string
	Email      string
	Token      string
	CreatedBy  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	IsAccepted bool
}

// LogEntry is an append-only audit record. It is written by the application
// and only ever read by operators.
type LogEntry struct {
	ID         string
	UserID     string
	Action     string
	EntityType string
	EntityID   string
	OldValue   *string
	NewValue   *string
	Timestamp  time.Time
}

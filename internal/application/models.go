package application

import "time"

// Principal represents the authenticated user invoking a service method.
type Principal struct {
	UserID       string
	IsAdmin      bool
	IsSuperAdmin bool
}

// isGlobalAdmin reports whether the principal may perform admin-only mutations.
func (p Principal) isGlobalAdmin() bool {
	return p.IsAdmin || p.IsSuperAdmin
}

// isAuthenticated reports whether the principal carries a resolved identity.
func (p Principal) isAuthenticated() bool {
	return p.UserID != ""
}

// User represents a member account exposed by the application services.
type User struct {
	ID           string
	Username     string
	Email        string
	FirstName    *string
	LastName     *string
	IsAdmin      bool
	IsSuperAdmin bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DisplayName returns the first name when present, falling back to the username.
func (u User) DisplayName() string {
	if u.FirstName != nil && *u.FirstName != "" {
		return *u.FirstName
	}
	return u.Username
}

// UserCredentials models the authentication attributes persisted for a user.
type UserCredentials struct {
	User         User
	PasswordHash string
}

// UserInput captures caller provided user attributes for creation.
type UserInput struct {
	Username  string
	Email     string
	Password  string
	FirstName *string
	LastName  *string
	IsAdmin   bool
}

// UserUpdateInput captures a partial user update; nil fields are left untouched.
type UserUpdateInput struct {
	Username  *string
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	IsAdmin   *bool
}

// CreateUserParams wraps the data required to create a user.
type CreateUserParams struct {
	Principal Principal
	Input     UserInput
}

// UpdateUserParams wraps the data required to update an existing user.
type UpdateUserParams struct {
	Principal Principal
	UserID    string
	Input     UserUpdateInput
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

// Membership roles recognized by the access policy.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// BandMembership enrolls one user in one band with a role.
type BandMembership struct {
	ID        string
	UserID    string
	BandID    string
	Role      string
	CreatedAt time.Time
}

// BandInput captures caller provided band fields.
type BandInput struct {
	Name        string
	Description *string
}

// CreateBandParams wraps the data required to create a band.
type CreateBandParams struct {
	Principal Principal
	Input     BandInput
}

// MembershipInput captures caller provided membership fields.
type MembershipInput struct {
	UserID string
	Role   string
}

// AddBandMemberParams wraps the data required to enroll a user in a band.
type AddBandMemberParams struct {
	Principal Principal
	BandID    string
	Input     MembershipInput
}

// Rehearsal represents one concrete occurrence on the calendar.
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

// RehearsalSeed bundles a rehearsal with the default responses created
// alongside it in one transaction.
type RehearsalSeed struct {
	Rehearsal Rehearsal
	Responses []Response
}

// RehearsalFilter narrows rehearsal listings.
type RehearsalFilter struct {
	From        *time.Time
	To          *time.Time
	BandID      *string
	RecurringID *string
}

// RehearsalInput captures caller provided fields for rehearsal creation.
type RehearsalInput struct {
	Date           time.Time
	StartTime      *string
	EndTime        *string
	Title          *string
	BandID         *string
	IsRecurring    bool
	RecurrenceType string
	DurationMonths int
	DayOfWeek      *string
}

// CreateRehearsalParams wraps the data required to create one rehearsal or a
// recurring series.
type CreateRehearsalParams struct {
	Principal Principal
	Input     RehearsalInput
}

// CreateRehearsalResult reports the outcome of a creation call.
type CreateRehearsalResult struct {
	Created     []Rehearsal
	RecurringID *string
}

// RehearsalUpdateInput captures a partial rehearsal update; nil fields are
// left untouched.
type RehearsalUpdateInput struct {
	Date               *time.Time
	StartTime          *string
	EndTime            *string
	Title              *string
	UpdateAllRecurring bool
}

// UpdateRehearsalParams wraps the data required to update one occurrence or a
// whole series.
type UpdateRehearsalParams struct {
	Principal   Principal
	RehearsalID string
	Input       RehearsalUpdateInput
}

// DeleteRehearsalParams wraps the data required to delete one occurrence or a
// whole series.
type DeleteRehearsalParams struct {
	Principal          Principal
	RehearsalID        string
	DeleteAllRecurring bool
}

// BulkRehearsalInput captures an explicit date list sharing one time window
// and title.
type BulkRehearsalInput struct {
	Dates     []string
	StartTime *string
	EndTime   *string
	Title     *string
	BandID    *string
}

// BulkCreateRehearsalsParams wraps the data required for a bulk creation call.
type BulkCreateRehearsalsParams struct {
	Principal Principal
	Input     BulkRehearsalInput
}

// BulkCreateRehearsalsResult reports which dates were created and which were
// skipped as invalid or occupied.
type BulkCreateRehearsalsResult struct {
	Created []Rehearsal
	Skipped []string
}

// ListRehearsalsParams wraps the data required to list rehearsals.
type ListRehearsalsParams struct {
	Principal Principal
	From      *time.Time
	To        *time.Time
	BandID    *string
}

// RolloverResult reports the outcome of the rollover maintenance operation.
type RolloverResult struct {
	Deleted int
	Created *Rehearsal
}

// Response records one user's attendance for one rehearsal.
type Response struct {
	ID          string
	UserID      string
	RehearsalID string
	Attending   bool
	Comment     *string
	UpdatedAt   time.Time
}

// ResponseInput captures caller provided fields for response creation.
type ResponseInput struct {
	UserID      string
	RehearsalID string
	Attending   bool
}

// CreateResponseParams wraps the data required to create a response.
type CreateResponseParams struct {
	Principal Principal
	Input     ResponseInput
}

// ResponseUpdateInput captures a partial response update; nil fields are left
// untouched.
type ResponseUpdateInput struct {
	Attending *bool
	Comment   *string
}

// UpdateResponseParams wraps the data required to update a response.
type UpdateResponseParams struct {
	Principal  Principal
	ResponseID string
	Input      ResponseUpdateInput
}

// ListResponsesParams wraps the data required to list responses.
type ListResponsesParams struct {
	Principal   Principal
	RehearsalID *string
}

// Invitation represents a pending or consumed email invitation.
type Invitation struct {
	ID         string
	Email      string
	Token      string
	CreatedBy  string
	CreatedAt  time.Time
	ExpiresAt  time.Time
	IsAccepted bool
}

// CreateInvitationParams wraps the data required to invite an email address.
type CreateInvitationParams struct {
	Principal Principal
	Email     string
}

// RegistrationInput captures the fields submitted when consuming an invitation.
type RegistrationInput struct {
	Username  string
	Password  string
	FirstName *string
	LastName  *string
}

// RegisterParams wraps the data required to register via an invitation token.
type RegisterParams struct {
	Token string
	Input RegistrationInput
}

// LoginParams captures the data required to authenticate a user.
type LoginParams struct {
	Username string
	Password string
}

// LoginResult captures the outcome of a successful authentication attempt.
type LoginResult struct {
	Token string
	User  User
}

// LogEntry is an append-only audit record of one mutation.
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

// DigestDecliner names one user who declined a rehearsal, with their comment.
type DigestDecliner struct {
	Name    string
	Comment string
}

// DigestEntry is one rehearsal row of the weekly digest.
type DigestEntry struct {
	Date      time.Time
	StartTime *string
	EndTime   *string
	Title     *string
	Decliners []DigestDecliner
}

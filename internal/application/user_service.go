package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
)

// UserService orchestrates validation, authorization, and persistence for
// member accounts.
type UserService struct {
	users       UserRepository
	hashParams  Argon2idParams
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewUserService wires dependencies for the user service.
func NewUserService(users UserRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *UserService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &UserService{
		users:       users,
		hashParams:  DefaultArgon2idParams,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *UserService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "UserService", operation, attrs...)
}

// CreateUser validates input and persists a new account for administrators.
func (s *UserService) CreateUser(ctx context.Context, params CreateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.isGlobalAdmin() {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	input := normalizeUserInput(params.Input)
	if vErr := validateUserInput(input); vErr.HasErrors() {
		return User{}, vErr
	}

	hash, err := CreatePasswordHash(input.Password, s.hashParams)
	if err != nil {
		return User{}, err
	}

	now := s.now()
	user := User{
		ID:        s.idGenerator(),
		Username:  input.Username,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		IsAdmin:   input.IsAdmin,
		CreatedAt: now,
		UpdatedAt: now,
	}

	persisted, err := s.users.CreateUser(ctx, user, hash)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	s.loggerWith(ctx, "CreateUser").InfoContext(ctx, "user created", "user_id", persisted.ID)
	return persisted, nil
}

// UpdateUser applies a partial update to an existing account for
// administrators. The password hash changes only when a password is provided.
func (s *UserService) UpdateUser(ctx context.Context, params UpdateUserParams) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !params.Principal.isGlobalAdmin() {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	existing, err := s.users.GetUser(ctx, params.UserID)
	if err != nil {
		return User{}, mapRepoError(err)
	}

	input := params.Input
	vErr := &ValidationError{}

	updated := existing
	if input.Username != nil {
		updated.Username = strings.TrimSpace(*input.Username)
		if updated.Username == "" {
			vErr.add("username", "username must not be empty")
		}
	}
	if input.Email != nil {
		updated.Email = strings.ToLower(strings.TrimSpace(*input.Email))
		if _, err := mail.ParseAddress(updated.Email); err != nil {
			vErr.add("email", "email is invalid")
		}
	}
	if input.FirstName != nil {
		updated.FirstName = input.FirstName
	}
	if input.LastName != nil {
		updated.LastName = input.LastName
	}
	if input.IsAdmin != nil {
		updated.IsAdmin = *input.IsAdmin
	}

	var passwordHash *string
	if input.Password != nil {
		if *input.Password == "" {
			vErr.add("password", "password must not be empty")
		} else {
			hash, err := CreatePasswordHash(*input.Password, s.hashParams)
			if err != nil {
				return User{}, err
			}
			passwordHash = &hash
		}
	}

	if vErr.HasErrors() {
		return User{}, vErr
	}

	updated.UpdatedAt = s.now()
	persisted, err := s.users.UpdateUser(ctx, updated, passwordHash)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return persisted, nil
}

// DeleteUser removes an account for administrators. Administrators cannot
// delete their own account; responses are removed by the store's cascade rule.
func (s *UserService) DeleteUser(ctx context.Context, principal Principal, userID string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if !principal.isGlobalAdmin() {
		return ErrUnauthorized
	}
	if principal.UserID == userID {
		return ErrSelfDeletion
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	if err := s.users.DeleteUser(ctx, userID); err != nil {
		return mapRepoError(err)
	}

	s.loggerWith(ctx, "DeleteUser").InfoContext(ctx, "user deleted", "user_id", userID)
	return nil
}

// GetUser returns one account for administrators, or the caller's own account.
func (s *UserService) GetUser(ctx context.Context, principal Principal, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("UserService is nil")
	}
	if !principal.isGlobalAdmin() && principal.UserID != userID {
		return User{}, ErrUnauthorized
	}
	if s.users == nil {
		return User{}, fmt.Errorf("user repository not configured")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return User{}, mapRepoError(err)
	}
	return user, nil
}

// ListUsers returns all accounts for administrators.
func (s *UserService) ListUsers(ctx context.Context, principal Principal) ([]User, error) {
	if s == nil {
		return nil, fmt.Errorf("UserService is nil")
	}
	if !principal.isGlobalAdmin() {
		return nil, ErrUnauthorized
	}
	if s.users == nil {
		return nil, nil
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return users, nil
}

// EnsureSeedAdmin creates the bootstrap administrator account when no account
// with the username exists yet. Invoked once at startup, before serving.
func (s *UserService) EnsureSeedAdmin(ctx context.Context, username, email, password string) error {
	if s == nil {
		return fmt.Errorf("UserService is nil")
	}
	if s.users == nil {
		return fmt.Errorf("user repository not configured")
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return mapRepoError(err)
	}
	for _, user := range users {
		if strings.EqualFold(user.Username, username) {
			return nil
		}
	}

	hash, err := CreatePasswordHash(password, s.hashParams)
	if err != nil {
		return err
	}

	now := s.now()
	admin := User{
		ID:        s.idGenerator(),
		Username:  username,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		IsAdmin:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.users.CreateUser(ctx, admin, hash); err != nil {
		return mapRepoError(err)
	}

	s.loggerWith(ctx, "EnsureSeedAdmin").InfoContext(ctx, "seed admin created", "username", username)
	return nil
}

func normalizeUserInput(input UserInput) UserInput {
	out := input
	out.Username = strings.TrimSpace(out.Username)
	out.Email = strings.ToLower(strings.TrimSpace(out.Email))
	return out
}

func validateUserInput(input UserInput) *ValidationError {
	vErr := &ValidationError{}

	if input.Username == "" {
		vErr.add("username", "username is required")
	}
	if input.Email == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "email is invalid")
	}
	if input.Password == "" {
		vErr.add("password", "password is required")
	}

	return vErr
}

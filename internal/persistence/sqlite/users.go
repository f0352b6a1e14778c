package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/example/band-rehearsal/internal/persistence"
)

const userColumns = "id, username, email, password_hash, first_name, last_name, is_admin, is_super_admin, created_at, updated_at"

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user persistence.User) error {
	if user.ID == "" || user.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		normalizeEmail(user.Email),
		user.PasswordHash,
		nullString(user.FirstName),
		nullString(user.LastName),
		user.IsAdmin,
		user.IsSuperAdmin,
		formatTimestamp(user.CreatedAt),
		formatTimestamp(user.UpdatedAt),
	)
	return mapError(err)
}

// UpdateUser updates an existing user.
func (s *Store) UpdateUser(ctx context.Context, user persistence.User) error {
	query := `
		UPDATE users
		SET username = ?, email = ?, password_hash = ?, first_name = ?, last_name = ?, is_admin = ?, is_super_admin = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		user.Username,
		normalizeEmail(user.Email),
		user.PasswordHash,
		nullString(user.FirstName),
		nullString(user.LastName),
		user.IsAdmin,
		user.IsSuperAdmin,
		formatTimestamp(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (persistence.User, error) {
	if id == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (persistence.User, error) {
	if username == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	return scanUser(row)
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (persistence.User, error) {
	if email == "" {
		return persistence.User{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, normalizeEmail(email))
	return scanUser(row)
}

// ListUsers returns all users ordered by creation time then ID.
func (s *Store) ListUsers(ctx context.Context) ([]persistence.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var users []persistence.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return users, nil
}

// DeleteUser removes a user by ID. Responses cascade via the schema.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return mapError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (persistence.User, error) {
	var (
		user                   persistence.User
		firstName, lastName    sql.NullString
		createdAt, updatedAt   string
	)
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&firstName,
		&lastName,
		&user.IsAdmin,
		&user.IsSuperAdmin,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.User{}, mapError(err)
	}
	user.FirstName = fromNullString(firstName)
	user.LastName = fromNullString(lastName)
	if user.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.User{}, err
	}
	if user.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.User{}, err
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Package sqlite implements the persistence repositories on SQLite using the
// cgo-free modernc.org driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/example/band-rehearsal/internal/persistence"
)

// Store implements every repository interface in the persistence package on a
// single SQLite database handle.
type Store struct {
	db *sql.DB
}

// Open connects to the SQLite database identified by dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	first_name TEXT,
	last_name TEXT,
	is_admin INTEGER NOT NULL DEFAULT 0,
	is_super_admin INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS bands (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT,
	created_by TEXT NOT NULL REFERENCES users(id),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS band_memberships (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	band_id TEXT NOT NULL REFERENCES bands(id) ON DELETE CASCADE,
	role TEXT NOT NULL DEFAULT 'member',
	created_at TEXT NOT NULL,
	UNIQUE(user_id, band_id)
);

CREATE TABLE IF NOT EXISTS rehearsals (
	id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	start_time TEXT,
	end_time TEXT,
	title TEXT,
	recurring_id TEXT,
	band_id TEXT REFERENCES bands(id),
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_rehearsals_date ON rehearsals(date);
CREATE INDEX IF NOT EXISTS idx_rehearsals_recurring_id ON rehearsals(recurring_id);

CREATE TABLE IF NOT EXISTS responses (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	rehearsal_id TEXT NOT NULL REFERENCES rehearsals(id) ON DELETE CASCADE,
	attending INTEGER NOT NULL DEFAULT 1,
	comment TEXT,
	updated_at TEXT NOT NULL,
	UNIQUE(user_id, rehearsal_id)
);

CREATE TABLE IF NOT EXISTS invitations (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL,
	token TEXT NOT NULL UNIQUE,
	created_by TEXT NOT NULL REFERENCES users(id),
	created_at TEXT NOT NULL,
	expires_at TEXT NOT NULL,
	is_accepted INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS log_entries (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	action TEXT NOT NULL,
	entity_type TEXT NOT NULL,
	entity_id TEXT,
	old_value TEXT,
	new_value TEXT,
	timestamp TEXT NOT NULL
);
`

// Migrate applies the schema. The statements are idempotent so repeated calls
// are safe.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}

// withTransaction runs fn inside a transaction, rolling back on error.
func (s *Store) withTransaction(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}

// mapError translates driver errors into persistence sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return persistence.ErrDuplicate
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return persistence.ErrForeignKeyViolation
	case strings.Contains(msg, "CHECK constraint failed"), strings.Contains(msg, "NOT NULL constraint failed"):
		return persistence.ErrConstraintViolation
	}
	return err
}

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse date %q: %w", value, err)
	}
	return t, nil
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimestamp(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parse timestamp %q: %w", value, err)
	}
	return t, nil
}

func nullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	clone := value.String
	return &clone
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/band-rehearsal/internal/persistence"
)

const invitationColumns = "id, email, token, created_by, created_at, expires_at, is_accepted"

// CreateInvitation inserts a new invitation.
func (s *Store) CreateInvitation(ctx context.Context, invitation persistence.Invitation) error {
	query := `
		INSERT INTO invitations (` + invitationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		invitation.ID,
		normalizeEmail(invitation.Email),
		invitation.Token,
		invitation.CreatedBy,
		formatTimestamp(invitation.CreatedAt),
		formatTimestamp(invitation.ExpiresAt),
		invitation.IsAccepted,
	)
	return mapError(err)
}

// GetInvitationByToken retrieves an invitation by its token.
func (s *Store) GetInvitationByToken(ctx context.Context, token string) (persistence.Invitation, error) {
	if token == "" {
		return persistence.Invitation{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+invitationColumns+` FROM invitations WHERE token = ?`, token)
	return scanInvitation(row)
}

// ListInvitations returns all invitations, newest first.
func (s *Store) ListInvitations(ctx context.Context) ([]persistence.Invitation, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+invitationColumns+` FROM invitations ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var invitations []persistence.Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return invitations, nil
}

// DeleteInvitation removes an invitation by ID.
func (s *Store) DeleteInvitation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM invitations WHERE id = ?`, id)
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

// HasPendingInvitation reports whether an unaccepted, unexpired invitation
// already exists for the address.
func (s *Store) HasPendingInvitation(ctx context.Context, email string, now time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM invitations
		WHERE email = ? AND is_accepted = 0 AND expires_at > ?
	`
	var count int
	if err := s.db.QueryRowContext(ctx, query, normalizeEmail(email), formatTimestamp(now)).Scan(&count); err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// AcceptInvitation marks the invitation accepted and creates the registered
// user in one transaction.
func (s *Store) AcceptInvitation(ctx context.Context, invitationID string, user persistence.User) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE invitations SET is_accepted = 1 WHERE id = ? AND is_accepted = 0`,
			invitationID,
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

		_, err = tx.ExecContext(ctx,
			`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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
	})
}

func scanInvitation(row rowScanner) (persistence.Invitation, error) {
	var (
		invitation           persistence.Invitation
		createdAt, expiresAt string
	)
	err := row.Scan(
		&invitation.ID,
		&invitation.Email,
		&invitation.Token,
		&invitation.CreatedBy,
		&createdAt,
		&expiresAt,
		&invitation.IsAccepted,
	)
	if err != nil {
		return persistence.Invitation{}, mapError(err)
	}
	if invitation.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Invitation{}, err
	}
	if invitation.ExpiresAt, err = parseTimestamp(expiresAt); err != nil {
		return persistence.Invitation{}, err
	}
	return invitation, nil
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/band-rehearsal/internal/persistence"
)

const responseColumns = "id, user_id, rehearsal_id, attending, comment, updated_at"

// CreateResponse inserts a new response.
func (s *Store) CreateResponse(ctx context.Context, response persistence.Response) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		return insertResponseTx(ctx, tx, response)
	})
}

// GetResponse retrieves a response by ID.
func (s *Store) GetResponse(ctx context.Context, id string) (persistence.Response, error) {
	if id == "" {
		return persistence.Response{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE id = ?`, id)
	return scanResponse(row)
}

// GetResponseForPair retrieves the response for a (user, rehearsal) pair.
func (s *Store) GetResponseForPair(ctx context.Context, userID, rehearsalID string) (persistence.Response, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+responseColumns+` FROM responses WHERE user_id = ? AND rehearsal_id = ?`,
		userID, rehearsalID,
	)
	return scanResponse(row)
}

// ListResponses returns responses matching the filter.
func (s *Store) ListResponses(ctx context.Context, filter persistence.ResponseFilter) ([]persistence.Response, error) {
	query := `SELECT ` + responseColumns + ` FROM responses`
	var args []any
	switch {
	case filter.RehearsalID != nil && filter.UserID != nil:
		query += ` WHERE rehearsal_id = ? AND user_id = ?`
		args = append(args, *filter.RehearsalID, *filter.UserID)
	case filter.RehearsalID != nil:
		query += ` WHERE rehearsal_id = ?`
		args = append(args, *filter.RehearsalID)
	case filter.UserID != nil:
		query += ` WHERE user_id = ?`
		args = append(args, *filter.UserID)
	}
	query += ` ORDER BY updated_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var responses []persistence.Response
	for rows.Next() {
		response, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		responses = append(responses, response)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return responses, nil
}

// UpdateResponse updates the attendance flag and comment of a response.
func (s *Store) UpdateResponse(ctx context.Context, response persistence.Response) error {
	query := `
		UPDATE responses
		SET attending = ?, comment = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		response.Attending,
		nullString(response.Comment),
		formatTimestamp(response.UpdatedAt),
		response.ID,
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

func insertResponseTx(ctx context.Context, tx *sql.Tx, response persistence.Response) error {
	query := `
		INSERT INTO responses (` + responseColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		response.ID,
		response.UserID,
		response.RehearsalID,
		response.Attending,
		nullString(response.Comment),
		formatTimestamp(response.UpdatedAt),
	)
	return mapError(err)
}

func scanResponse(row rowScanner) (persistence.Response, error) {
	var (
		response  persistence.Response
		comment   sql.NullString
		updatedAt string
	)
	err := row.Scan(
		&response.ID,
		&response.UserID,
		&response.RehearsalID,
		&response.Attending,
		&comment,
		&updatedAt,
	)
	if err != nil {
		return persistence.Response{}, mapError(err)
	}
	response.Comment = fromNullString(comment)
	if response.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Response{}, err
	}
	return response, nil
}

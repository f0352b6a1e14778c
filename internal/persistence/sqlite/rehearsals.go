package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/band-rehearsal/internal/persistence"
)

const rehearsalColumns = "id, date, start_time, end_time, title, recurring_id, band_id, created_at, updated_at"

// CreateRehearsals inserts every seed (occurrence plus its default responses)
// in one transaction.
func (s *Store) CreateRehearsals(ctx context.Context, seeds []persistence.RehearsalSeed) error {
	if len(seeds) == 0 {
		return nil
	}
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		for _, seed := range seeds {
			if err := insertRehearsalTx(ctx, tx, seed.Rehearsal); err != nil {
				return err
			}
			for _, response := range seed.Responses {
				if err := insertResponseTx(ctx, tx, response); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// GetRehearsal retrieves a rehearsal by ID.
func (s *Store) GetRehearsal(ctx context.Context, id string) (persistence.Rehearsal, error) {
	if id == "" {
		return persistence.Rehearsal{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+rehearsalColumns+` FROM rehearsals WHERE id = ?`, id)
	return scanRehearsal(row)
}

// ListRehearsals returns rehearsals matching the filter ordered by date.
func (s *Store) ListRehearsals(ctx context.Context, filter persistence.RehearsalFilter) ([]persistence.Rehearsal, error) {
	query := `SELECT ` + rehearsalColumns + ` FROM rehearsals`
	var (
		clauses []string
		args    []any
	)
	if filter.FromDate != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, formatDate(*filter.FromDate))
	}
	if filter.ToDate != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, formatDate(*filter.ToDate))
	}
	if filter.BandID != nil {
		clauses = append(clauses, "band_id = ?")
		args = append(args, *filter.BandID)
	}
	if filter.RecurringID != nil {
		clauses = append(clauses, "recurring_id = ?")
		args = append(args, *filter.RecurringID)
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY date ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var rehearsals []persistence.Rehearsal
	for rows.Next() {
		rehearsal, err := scanRehearsal(rows)
		if err != nil {
			return nil, err
		}
		rehearsals = append(rehearsals, rehearsal)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return rehearsals, nil
}

// ExistsOnDate reports whether a rehearsal already occupies the calendar day.
// The check is advisory; it is not backed by a uniqueness constraint.
func (s *Store) ExistsOnDate(ctx context.Context, date time.Time, bandID *string) (bool, error) {
	query := `SELECT COUNT(*) FROM rehearsals WHERE date = ?`
	args := []any{formatDate(date)}
	if bandID != nil {
		query += ` AND band_id = ?`
		args = append(args, *bandID)
	} else {
		query += ` AND band_id IS NULL`
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, mapError(err)
	}
	return count > 0, nil
}

// UpdateRehearsals applies every update in one transaction.
func (s *Store) UpdateRehearsals(ctx context.Context, rehearsals []persistence.Rehearsal) error {
	if len(rehearsals) == 0 {
		return nil
	}
	query := `
		UPDATE rehearsals
		SET date = ?, start_time = ?, end_time = ?, title = ?, updated_at = ?
		WHERE id = ?
	`
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		for _, rehearsal := range rehearsals {
			result, err := tx.ExecContext(ctx, query,
				formatDate(rehearsal.Date),
				nullString(rehearsal.StartTime),
				nullString(rehearsal.EndTime),
				nullString(rehearsal.Title),
				formatTimestamp(rehearsal.UpdatedAt),
				rehearsal.ID,
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
		}
		return nil
	})
}

// DeleteRehearsal removes one occurrence. Responses cascade via the schema.
func (s *Store) DeleteRehearsal(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := s.db.ExecContext(ctx, `DELETE FROM rehearsals WHERE id = ?`, id)
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

// DeleteRehearsalSeries removes every occurrence sharing the recurrence token.
func (s *Store) DeleteRehearsalSeries(ctx context.Context, recurringID string) error {
	if recurringID == "" {
		return persistence.ErrNotFound
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM rehearsals WHERE recurring_id = ?`, recurringID)
	return mapError(err)
}

// ApplyRollover deletes the given occurrences and, when seed is non-nil,
// inserts the replacement occurrence, all in one transaction.
func (s *Store) ApplyRollover(ctx context.Context, deleteIDs []string, seed *persistence.RehearsalSeed) error {
	if len(deleteIDs) == 0 && seed == nil {
		return nil
	}
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		for _, id := range deleteIDs {
			if _, err := tx.ExecContext(ctx, `DELETE FROM rehearsals WHERE id = ?`, id); err != nil {
				return mapError(err)
			}
		}
		if seed != nil {
			if err := insertRehearsalTx(ctx, tx, seed.Rehearsal); err != nil {
				return err
			}
			for _, response := range seed.Responses {
				if err := insertResponseTx(ctx, tx, response); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func insertRehearsalTx(ctx context.Context, tx *sql.Tx, rehearsal persistence.Rehearsal) error {
	query := `
		INSERT INTO rehearsals (` + rehearsalColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		rehearsal.ID,
		formatDate(rehearsal.Date),
		nullString(rehearsal.StartTime),
		nullString(rehearsal.EndTime),
		nullString(rehearsal.Title),
		nullString(rehearsal.RecurringID),
		nullString(rehearsal.BandID),
		formatTimestamp(rehearsal.CreatedAt),
		formatTimestamp(rehearsal.UpdatedAt),
	)
	return mapError(err)
}

func scanRehearsal(row rowScanner) (persistence.Rehearsal, error) {
	var (
		rehearsal                                   persistence.Rehearsal
		dateStr, createdAt, updatedAt               string
		startTime, endTime, title, recurring, band  sql.NullString
	)
	err := row.Scan(
		&rehearsal.ID,
		&dateStr,
		&startTime,
		&endTime,
		&title,
		&recurring,
		&band,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.Rehearsal{}, mapError(err)
	}
	if rehearsal.Date, err = parseDate(dateStr); err != nil {
		return persistence.Rehearsal{}, err
	}
	rehearsal.StartTime = fromNullString(startTime)
	rehearsal.EndTime = fromNullString(endTime)
	rehearsal.Title = fromNullString(title)
	rehearsal.RecurringID = fromNullString(recurring)
	rehearsal.BandID = fromNullString(band)
	if rehearsal.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Rehearsal{}, err
	}
	if rehearsal.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Rehearsal{}, err
	}
	return rehearsal, nil
}

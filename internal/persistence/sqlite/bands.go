package sqlite

import (
	"context"
	"database/sql"

	"github.com/example/band-rehearsal/internal/persistence"
)

const bandColumns = "id, name, description, created_by, created_at, updated_at"
const membershipColumns = "id, user_id, band_id, role, created_at"

// CreateBand stores the band and the creator's admin membership in one
// transaction.
func (s *Store) CreateBand(ctx context.Context, band persistence.Band, creatorMembership persistence.BandMembership) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO bands (`+bandColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			band.ID,
			band.Name,
			nullString(band.Description),
			band.CreatedBy,
			formatTimestamp(band.CreatedAt),
			formatTimestamp(band.UpdatedAt),
		)
		if err != nil {
			return mapError(err)
		}
		return insertMembershipTx(ctx, tx, creatorMembership)
	})
}

// GetBand retrieves a band by ID.
func (s *Store) GetBand(ctx context.Context, id string) (persistence.Band, error) {
	if id == "" {
		return persistence.Band{}, persistence.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+bandColumns+` FROM bands WHERE id = ?`, id)
	return scanBand(row)
}

// ListBands returns all bands ordered by name.
func (s *Store) ListBands(ctx context.Context) ([]persistence.Band, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bandColumns+` FROM bands ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectBands(rows)
}

// ListBandsForUser returns the bands the user is a member of.
func (s *Store) ListBandsForUser(ctx context.Context, userID string) ([]persistence.Band, error) {
	query := `
		SELECT b.id, b.name, b.description, b.created_by, b.created_at, b.updated_at
		FROM bands b
		JOIN band_memberships m ON m.band_id = b.id
		WHERE m.user_id = ?
		ORDER BY b.name ASC, b.id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()
	return collectBands(rows)
}

// CreateMembership enrolls a user in a band.
func (s *Store) CreateMembership(ctx context.Context, membership persistence.BandMembership) error {
	return s.withTransaction(ctx, func(tx *sql.Tx) error {
		return insertMembershipTx(ctx, tx, membership)
	})
}

// GetMembership retrieves the membership for a (user, band) pair.
func (s *Store) GetMembership(ctx context.Context, userID, bandID string) (persistence.BandMembership, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+membershipColumns+` FROM band_memberships WHERE user_id = ? AND band_id = ?`,
		userID, bandID,
	)
	return scanMembership(row)
}

// ListMemberships returns the memberships of a band.
func (s *Store) ListMemberships(ctx context.Context, bandID string) ([]persistence.BandMembership, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+membershipColumns+` FROM band_memberships WHERE band_id = ? ORDER BY created_at ASC, id ASC`,
		bandID,
	)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var memberships []persistence.BandMembership
	for rows.Next() {
		membership, err := scanMembership(rows)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, membership)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return memberships, nil
}

func insertMembershipTx(ctx context.Context, tx *sql.Tx, membership persistence.BandMembership) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO band_memberships (`+membershipColumns+`) VALUES (?, ?, ?, ?, ?)`,
		membership.ID,
		membership.UserID,
		membership.BandID,
		membership.Role,
		formatTimestamp(membership.CreatedAt),
	)
	return mapError(err)
}

func scanBand(row rowScanner) (persistence.Band, error) {
	var (
		band                 persistence.Band
		description          sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&band.ID, &band.Name, &description, &band.CreatedBy, &createdAt, &updatedAt)
	if err != nil {
		return persistence.Band{}, mapError(err)
	}
	band.Description = fromNullString(description)
	if band.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.Band{}, err
	}
	if band.UpdatedAt, err = parseTimestamp(updatedAt); err != nil {
		return persistence.Band{}, err
	}
	return band, nil
}

func collectBands(rows *sql.Rows) ([]persistence.Band, error) {
	var bands []persistence.Band
	for rows.Next() {
		band, err := scanBand(rows)
		if err != nil {
			return nil, err
		}
		bands = append(bands, band)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return bands, nil
}

func scanMembership(row rowScanner) (persistence.BandMembership, error) {
	var (
		membership persistence.BandMembership
		createdAt  string
	)
	err := row.Scan(&membership.ID, &membership.UserID, &membership.BandID, &membership.Role, &createdAt)
	if err != nil {
		return persistence.BandMembership{}, mapError(err)
	}
	if membership.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return persistence.BandMembership{}, err
	}
	return membership, nil
}

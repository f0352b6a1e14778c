package sqlite

import (
	"context"

	"github.com/example/band-rehearsal/internal/persistence"
)

// AppendLogEntry writes one audit row. Entries are append-only.
func (s *Store) AppendLogEntry(ctx context.Context, entry persistence.LogEntry) error {
	query := `
		INSERT INTO log_entries (id, user_id, action, entity_type, entity_id, old_value, new_value, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID,
		entry.UserID,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		nullString(entry.OldValue),
		nullString(entry.NewValue),
		formatTimestamp(entry.Timestamp),
	)
	return mapError(err)
}

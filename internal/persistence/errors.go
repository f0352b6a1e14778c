package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a uniqueness constraint is violated.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned for other constraint failures.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

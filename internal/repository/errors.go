package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound means no row matched the lookup or update.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means an insert hit a primary key or unique constraint.
	ErrDuplicate = errors.New("duplicate")
)

// mapWriteError converts a unique_violation into ErrDuplicate and leaves
// other errors untouched.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

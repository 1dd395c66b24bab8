package repository

import "context"

// DB checks that the database connection is alive.
type DB interface {
	Ping(ctx context.Context) error
}

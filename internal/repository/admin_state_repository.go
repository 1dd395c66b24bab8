package repository

import "context"

// AdminStateRepository stores the admin token generation. Tokens minted for an
// older generation are rejected.
type AdminStateRepository interface {
	Generation(ctx context.Context) (int64, error)
	IncrementGeneration(ctx context.Context) (int64, error)
}

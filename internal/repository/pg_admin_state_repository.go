package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgAdminStateRepository struct {
	pool *pgxpool.Pool
}

// NewPgAdminStateRepository returns a PostgreSQL-backed AdminStateRepository.
// admin_state is a singleton row (id = 1).
func NewPgAdminStateRepository(pool *pgxpool.Pool) AdminStateRepository {
	return &pgAdminStateRepository{pool: pool}
}

func (r *pgAdminStateRepository) Generation(ctx context.Context) (int64, error) {
	var gen int64
	err := r.pool.QueryRow(ctx, `SELECT token_generation FROM admin_state WHERE id = 1`).Scan(&gen)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	return gen, err
}

func (r *pgAdminStateRepository) IncrementGeneration(ctx context.Context) (int64, error) {
	var gen int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO admin_state (id, token_generation, reset_at) VALUES (1, 1, NOW())
		 ON CONFLICT (id) DO UPDATE
		 SET token_generation = admin_state.token_generation + 1, reset_at = NOW()
		 RETURNING token_generation`).Scan(&gen)
	return gen, err
}

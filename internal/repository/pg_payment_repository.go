package repository

import (
	"context"

	"github.com/folio/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPgPaymentRepository returns a PostgreSQL-backed PaymentRepository.
func NewPgPaymentRepository(pool *pgxpool.Pool) PaymentRepository {
	return &pgPaymentRepository{pool: pool}
}

func (r *pgPaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO payments
		 (id, method, provider, amount, currency, email, item, status, masked_account, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8, NULLIF($9, ''), $10, $11)`,
		p.ID, p.Method, p.Provider, p.Amount, p.Currency, p.Email, p.Item,
		p.Status, p.MaskedAccount, p.CreatedAt, p.UpdatedAt,
	)
	return mapWriteError(err)
}

func (r *pgPaymentRepository) UpdateResult(ctx context.Context, id string, status model.PaymentStatus, reference, failureReason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments
		 SET status = $2, reference = NULLIF($3, ''), failure_reason = NULLIF($4, ''), updated_at = NOW()
		 WHERE id = $1`,
		id, status, reference, failureReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgPaymentRepository) UpdateStatusByReference(ctx context.Context, reference string, status model.PaymentStatus, failureReason string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments
		 SET status = $2, failure_reason = NULLIF($3, ''), updated_at = NOW()
		 WHERE reference = $1`,
		reference, status, failureReason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

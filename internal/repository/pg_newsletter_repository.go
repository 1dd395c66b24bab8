package repository

import (
	"context"

	"github.com/folio/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgNewsletterRepository struct {
	pool *pgxpool.Pool
}

// NewPgNewsletterRepository returns a PostgreSQL-backed NewsletterRepository.
func NewPgNewsletterRepository(pool *pgxpool.Pool) NewsletterRepository {
	return &pgNewsletterRepository{pool: pool}
}

func (r *pgNewsletterRepository) Create(ctx context.Context, n *model.Newsletter) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO newsletters
		 (id, subject, content, preview_text, sent_at, subscriber_count, success_count, fail_count, status)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, $8, $9)`,
		n.ID, n.Subject, n.Content, n.PreviewText, n.SentAt,
		n.SubscriberCount, n.SuccessCount, n.FailCount, n.Status,
	)
	return err
}

func (r *pgNewsletterRepository) List(ctx context.Context, limit, offset int) ([]*model.Newsletter, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, subject, content, COALESCE(preview_text, ''), sent_at,
		        subscriber_count, success_count, fail_count, status
		 FROM newsletters
		 ORDER BY sent_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Newsletter
	for rows.Next() {
		n := &model.Newsletter{}
		if err := rows.Scan(&n.ID, &n.Subject, &n.Content, &n.PreviewText, &n.SentAt,
			&n.SubscriberCount, &n.SuccessCount, &n.FailCount, &n.Status); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

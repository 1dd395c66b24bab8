package repository

import (
	"context"
	"strings"

	"github.com/folio/backend/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgSubscriberRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubscriberRepository returns a PostgreSQL-backed SubscriberRepository.
func NewPgSubscriberRepository(pool *pgxpool.Pool) SubscriberRepository {
	return &pgSubscriberRepository{pool: pool}
}

func (r *pgSubscriberRepository) Upsert(ctx context.Context, s *model.Subscriber) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO subscribers (id, email, name, source, status, subscribed_at)
		 VALUES ($1, LOWER($2), NULLIF($3, ''), NULLIF($4, ''), 'active', $5)
		 ON CONFLICT (email) DO UPDATE
		 SET status = 'active',
		     name = COALESCE(EXCLUDED.name, subscribers.name),
		     subscribed_at = CASE WHEN subscribers.status = 'active'
		                          THEN subscribers.subscribed_at ELSE EXCLUDED.subscribed_at END,
		     unsubscribed_at = NULL
		 RETURNING id, email, COALESCE(name, ''), COALESCE(source, ''), status, subscribed_at`,
		s.ID, s.Email, s.Name, s.Source, s.SubscribedAt,
	).Scan(&s.ID, &s.Email, &s.Name, &s.Source, &s.Status, &s.SubscribedAt)
}

func (r *pgSubscriberRepository) List(ctx context.Context, status string) ([]*model.Subscriber, error) {
	query := `SELECT id, email, COALESCE(name, ''), COALESCE(source, ''), status, subscribed_at, unsubscribed_at
	          FROM subscribers`
	var args []any
	status = strings.TrimSpace(status)
	if status != "" && status != "all" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY subscribed_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*model.Subscriber
	for rows.Next() {
		s := &model.Subscriber{}
		if err := rows.Scan(&s.ID, &s.Email, &s.Name, &s.Source, &s.Status, &s.SubscribedAt, &s.UnsubscribedAt); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

func (r *pgSubscriberRepository) Unsubscribe(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE subscribers SET status = 'unsubscribed', unsubscribed_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type pgAnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewPgAnalyticsRepository returns a PostgreSQL-backed AnalyticsRepository.
func NewPgAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &pgAnalyticsRepository{pool: pool}
}

// InsertBatch writes all events in a single round trip.
func (r *pgAnalyticsRepository) InsertBatch(ctx context.Context, events []*model.AnalyticsEvent) error {
	batch := &pgx.Batch{}
	for _, e := range events {
		var props []byte
		if len(e.Properties) > 0 {
			props = e.Properties
		}
		batch.Queue(
			`INSERT INTO analytics_events (id, session_id, name, path, properties, occurred_at, received_at)
			 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)`,
			e.ID, e.SessionID, e.Name, e.Path, props, e.OccurredAt, e.ReceivedAt)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *pgAnalyticsRepository) CountByName(ctx context.Context, since time.Time) ([]model.EventCount, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT name, COUNT(*) FROM analytics_events
		 WHERE occurred_at >= $1
		 GROUP BY name
		 ORDER BY COUNT(*) DESC, name`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []model.EventCount
	for rows.Next() {
		var c model.EventCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

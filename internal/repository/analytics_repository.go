package repository

import (
	"context"
	"time"

	"github.com/folio/backend/internal/model"
)

// AnalyticsRepository stores tracked events and aggregates them.
type AnalyticsRepository interface {
	InsertBatch(ctx context.Context, events []*model.AnalyticsEvent) error
	CountByName(ctx context.Context, since time.Time) ([]model.EventCount, error)
}

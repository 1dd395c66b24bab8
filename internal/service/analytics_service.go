package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/google/uuid"
)

// MaxAnalyticsBatch is the largest batch the tracker sends and the API accepts.
const MaxAnalyticsBatch = 20

// ErrInvalidBatch is returned for empty, oversized or malformed event batches.
var ErrInvalidBatch = errors.New("invalid analytics batch")

// AnalyticsService ingests tracked events and summarises them.
type AnalyticsService interface {
	Ingest(ctx context.Context, events []*model.AnalyticsEvent) (int, error)
	Summary(ctx context.Context, since time.Time) ([]model.EventCount, error)
}

type analyticsService struct {
	repo repository.AnalyticsRepository
	now  func() time.Time
}

// NewAnalyticsService creates an AnalyticsService.
func NewAnalyticsService(repo repository.AnalyticsRepository) AnalyticsService {
	return &analyticsService{repo: repo, now: time.Now}
}

// Ingest stamps and stores a batch of 1..MaxAnalyticsBatch events.
// Events missing a name or session are rejected as a whole batch.
func (s *analyticsService) Ingest(ctx context.Context, events []*model.AnalyticsEvent) (int, error) {
	if len(events) == 0 || len(events) > MaxAnalyticsBatch {
		return 0, ErrInvalidBatch
	}
	received := s.now().UTC()
	for _, e := range events {
		if e == nil || strings.TrimSpace(e.Name) == "" || strings.TrimSpace(e.SessionID) == "" {
			return 0, ErrInvalidBatch
		}
		e.ID = uuid.NewString()
		e.ReceivedAt = received
		if e.OccurredAt.IsZero() || e.OccurredAt.After(received) {
			e.OccurredAt = received
		}
	}
	if err := s.repo.InsertBatch(ctx, events); err != nil {
		return 0, err
	}
	return len(events), nil
}

func (s *analyticsService) Summary(ctx context.Context, since time.Time) ([]model.EventCount, error) {
	return s.repo.CountByName(ctx, since)
}

package repository

import (
	"context"

	"github.com/folio/backend/internal/model"
)

// SubscriberRepository handles persistence for newsletter subscribers.
type SubscriberRepository interface {
	// Upsert inserts a subscriber or re-activates an existing one with the same email.
	Upsert(ctx context.Context, s *model.Subscriber) error
	List(ctx context.Context, status string) ([]*model.Subscriber, error)
	Unsubscribe(ctx context.Context, id string) error
}

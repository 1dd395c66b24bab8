package repository

import (
	"context"

	"github.com/folio/backend/internal/model"
)

// PaymentRepository persists payment attempts.
type PaymentRepository interface {
	// Create inserts a new attempt. A reused ID yields ErrDuplicate.
	Create(ctx context.Context, p *model.Payment) error
	// UpdateResult stores the gateway outcome for a payment by its ID.
	UpdateResult(ctx context.Context, id string, status model.PaymentStatus, reference, failureReason string) error
	// UpdateStatusByReference is used by asynchronous gateway notifications.
	UpdateStatusByReference(ctx context.Context, reference string, status model.PaymentStatus, failureReason string) error
}

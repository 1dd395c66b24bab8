package service

import (
	"context"

	"github.com/folio/backend/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit stores a new submission with status "new". ID and timestamps are
	// populated by the implementation.
	Submit(ctx context.Context, c *model.ContactSubmission) error

	// List returns submissions according to the given options.
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error)

	// Update changes the status and/or notes of a submission.
	Update(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error)
}

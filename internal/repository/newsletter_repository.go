package repository

import (
	"context"

	"github.com/folio/backend/internal/model"
)

// NewsletterRepository stores sent newsletters. There is no update path.
type NewsletterRepository interface {
	Create(ctx context.Context, n *model.Newsletter) error
	List(ctx context.Context, limit, offset int) ([]*model.Newsletter, error)
}

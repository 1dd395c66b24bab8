package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/pkg/mailer"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// NewsletterDraft is what an admin submits to send.
type NewsletterDraft struct {
	Subject     string
	Content     string
	PreviewText string
}

// NewsletterService sends newsletters and lists past issues.
type NewsletterService interface {
	Send(ctx context.Context, draft NewsletterDraft) (*model.Newsletter, error)
	List(ctx context.Context, limit, offset int) ([]*model.Newsletter, error)
}

type newsletterService struct {
	subscribers repository.SubscriberRepository
	newsletters repository.NewsletterRepository
	sender      mailer.Sender
	concurrency int
}

// NewNewsletterService creates a NewsletterService delivering through sender
// with at most concurrency messages in flight.
func NewNewsletterService(subscribers repository.SubscriberRepository, newsletters repository.NewsletterRepository, sender mailer.Sender, concurrency int) NewsletterService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &newsletterService{
		subscribers: subscribers,
		newsletters: newsletters,
		sender:      sender,
		concurrency: concurrency,
	}
}

// Send delivers draft to every active subscriber and stores the result.
// A failed recipient is counted, never fatal. Once delivery starts it runs
// to completion and the issue is stored even if ctx is cancelled, so the
// stored record always matches the mail that went out.
func (s *newsletterService) Send(ctx context.Context, draft NewsletterDraft) (*model.Newsletter, error) {
	subject := strings.TrimSpace(draft.Subject)
	content := strings.TrimSpace(draft.Content)
	if subject == "" || content == "" {
		return nil, ErrEmptyNewsletter
	}

	recipients, err := s.subscribers.List(ctx, string(model.SubscriberActive))
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}

	// Each message is bounded by the mailer's own timeout.
	ctx = context.WithoutCancel(ctx)

	var headers map[string]string
	if preview := strings.TrimSpace(draft.PreviewText); preview != "" {
		headers = map[string]string{"X-Preview-Text": preview}
	}

	var success, fail atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, sub := range recipients {
		g.Go(func() error {
			err := s.sender.Send(gctx, mailer.Message{
				To:      []string{sub.Email},
				Subject: subject,
				HTML:    content,
				Headers: headers,
			})
			if err != nil {
				fail.Add(1)
				slog.WarnContext(gctx, "newsletter delivery failed", "subscriber_id", sub.ID, "error", err)
				return nil
			}
			success.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := &model.Newsletter{
		ID:              uuid.NewString(),
		Subject:         subject,
		Content:         content,
		PreviewText:     strings.TrimSpace(draft.PreviewText),
		SentAt:          time.Now().UTC(),
		SubscriberCount: len(recipients),
		SuccessCount:    int(success.Load()),
		FailCount:       int(fail.Load()),
	}
	n.Status = model.DeliveryStatus(n.SuccessCount, n.FailCount)

	if err := s.newsletters.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("store newsletter: %w", err)
	}
	slog.InfoContext(ctx, "newsletter sent",
		"newsletter_id", n.ID,
		"recipients", n.SubscriberCount,
		"success", n.SuccessCount,
		"failed", n.FailCount,
	)
	return n, nil
}

func (s *newsletterService) List(ctx context.Context, limit, offset int) ([]*model.Newsletter, error) {
	return s.newsletters.List(ctx, limit, offset)
}

package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/pkg/mailer"
	"github.com/google/uuid"
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo       repository.ContactRepository
	sender     mailer.Sender // optional, nil = no owner notification
	ownerEmail string
}

// NewContactService creates a ContactService backed by the given repository.
// When sender and ownerEmail are set, each submission is forwarded to the owner.
func NewContactService(repo repository.ContactRepository, sender mailer.Sender, ownerEmail string) ContactService {
	return &contactServiceImpl{repo: repo, sender: sender, ownerEmail: ownerEmail}
}

func (s *contactServiceImpl) Submit(ctx context.Context, c *model.ContactSubmission) error {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)
	if c.Name == "" || c.Email == "" || c.Message == "" {
		return ErrMissingFields
	}
	if !ValidEmail(c.Email) {
		return ErrInvalidEmail
	}

	now := time.Now().UTC()
	c.ID = uuid.NewString()
	c.Status = model.ContactNew
	c.EmailSent = false
	c.SubmittedAt = now
	c.UpdatedAt = now
	if err := s.repo.Save(ctx, c); err != nil {
		return fmt.Errorf("save contact: %w", err)
	}

	s.notifyOwner(ctx, c)
	return nil
}

// notifyOwner forwards the submission by email. Failures are logged only.
func (s *contactServiceImpl) notifyOwner(ctx context.Context, c *model.ContactSubmission) {
	if s.sender == nil || s.ownerEmail == "" {
		return
	}
	err := s.sender.Send(ctx, mailer.Message{
		To:      []string{s.ownerEmail},
		ReplyTo: c.Email,
		Subject: "New inquiry from " + c.Name,
		Text:    contactEmailBody(c),
	})
	if err != nil {
		slog.WarnContext(ctx, "contact notification failed", "contact_id", c.ID, "error", err)
		return
	}
	if err := s.repo.MarkEmailSent(ctx, c.ID); err != nil {
		slog.WarnContext(ctx, "mark contact email sent failed", "contact_id", c.ID, "error", err)
		return
	}
	c.EmailSent = true
}

func contactEmailBody(c *model.ContactSubmission) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name: %s\nEmail: %s\n", c.Name, c.Email)
	for _, f := range []struct{ label, value string }{
		{"Company", c.Company},
		{"Service", c.Service},
		{"Budget", c.Budget},
		{"Timeline", c.Timeline},
	} {
		if f.value != "" {
			fmt.Fprintf(&b, "%s: %s\n", f.label, f.value)
		}
	}
	b.WriteString("\n")
	b.WriteString(c.Message)
	b.WriteString("\n")
	return b.String()
}

func (s *contactServiceImpl) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
	return s.repo.List(ctx, opts)
}

func (s *contactServiceImpl) Update(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error) {
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.Update(ctx, id, patch)
}

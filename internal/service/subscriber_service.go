package service

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/google/uuid"
)

// SubscriberService manages the newsletter audience.
type SubscriberService interface {
	// Subscribe adds email to the list, re-activating it if it had unsubscribed.
	Subscribe(ctx context.Context, email, name, source string) (*model.Subscriber, error)
	List(ctx context.Context, status string) ([]*model.Subscriber, error)
	Unsubscribe(ctx context.Context, id string) error
}

type subscriberService struct {
	repo repository.SubscriberRepository
}

// NewSubscriberService creates a SubscriberService.
func NewSubscriberService(repo repository.SubscriberRepository) SubscriberService {
	return &subscriberService{repo: repo}
}

func (s *subscriberService) Subscribe(ctx context.Context, email, name, source string) (*model.Subscriber, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	sub := &model.Subscriber{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Source:       source,
		Status:       model.SubscriberActive,
		SubscribedAt: time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *subscriberService) List(ctx context.Context, status string) ([]*model.Subscriber, error) {
	return s.repo.List(ctx, status)
}

func (s *subscriberService) Unsubscribe(ctx context.Context, id string) error {
	return s.repo.Unsubscribe(ctx, id)
}

// ValidEmail reports whether s is a bare address such as "a@b.co".
func ValidEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

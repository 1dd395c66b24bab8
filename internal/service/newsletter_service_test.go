package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/pkg/mailer"
)

type mockNewsletterRepository struct {
	createFunc func(ctx context.Context, n *model.Newsletter) error
	listFunc   func(ctx context.Context, limit, offset int) ([]*model.Newsletter, error)
}

func (m *mockNewsletterRepository) Create(ctx context.Context, n *model.Newsletter) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	return nil
}

func (m *mockNewsletterRepository) List(ctx context.Context, limit, offset int) ([]*model.Newsletter, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

func activeSubscribers(emails ...string) *mockSubscriberRepository {
	return &mockSubscriberRepository{
		listFunc: func(ctx context.Context, status string) ([]*model.Subscriber, error) {
			subs := make([]*model.Subscriber, 0, len(emails))
			for i, e := range emails {
				subs = append(subs, &model.Subscriber{ID: string(rune('a' + i)), Email: e, Status: model.SubscriberActive})
			}
			return subs, nil
		},
	}
}

func TestNewsletterService_Send_EmptyRejectedWithoutSending(t *testing.T) {
	var listCalls, sendCalls atomic.Int32
	subs := &mockSubscriberRepository{
		listFunc: func(ctx context.Context, status string) ([]*model.Subscriber, error) {
			listCalls.Add(1)
			return nil, nil
		},
	}
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			sendCalls.Add(1)
			return nil
		},
	}
	svc := NewNewsletterService(subs, &mockNewsletterRepository{}, sender, 2)

	for _, d := range []NewsletterDraft{
		{Subject: "", Content: "body"},
		{Subject: "Hello", Content: "   "},
		{Subject: " \t", Content: "\n"},
	} {
		if _, err := svc.Send(context.Background(), d); !errors.Is(err, ErrEmptyNewsletter) {
			t.Errorf("Send(%+v): expected ErrEmptyNewsletter, got %v", d, err)
		}
	}
	if listCalls.Load() != 0 || sendCalls.Load() != 0 {
		t.Errorf("expected no repository or mail calls, got list=%d send=%d", listCalls.Load(), sendCalls.Load())
	}
}

func TestNewsletterService_Send_AllDelivered(t *testing.T) {
	var mu sync.Mutex
	var recipients []string
	var stored *model.Newsletter
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			mu.Lock()
			defer mu.Unlock()
			recipients = append(recipients, msg.To...)
			if msg.Headers["X-Preview-Text"] != "Short teaser" {
				t.Errorf("expected preview header, got %v", msg.Headers)
			}
			return nil
		},
	}
	repo := &mockNewsletterRepository{
		createFunc: func(ctx context.Context, n *model.Newsletter) error {
			stored = n
			return nil
		},
	}
	svc := NewNewsletterService(activeSubscribers("a@x.co", "b@x.co", "c@x.co"), repo, sender, 2)

	n, err := svc.Send(context.Background(), NewsletterDraft{Subject: " March notes ", Content: "<p>Hi</p>", PreviewText: "Short teaser"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored != n {
		t.Fatal("expected the newsletter to be stored")
	}
	if n.Subject != "March notes" {
		t.Errorf("expected trimmed subject, got %q", n.Subject)
	}
	if n.SubscriberCount != 3 || n.SuccessCount != 3 || n.FailCount != 0 {
		t.Errorf("unexpected counts: %+v", n)
	}
	if n.Status != model.NewsletterSent {
		t.Errorf("expected sent, got %q", n.Status)
	}
	if len(recipients) != 3 {
		t.Errorf("expected 3 mails, got %d", len(recipients))
	}
}

func TestNewsletterService_Send_PartialFailure(t *testing.T) {
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			if msg.To[0] == "bounce@x.co" {
				return errors.New("mailbox unavailable")
			}
			if len(msg.Headers) != 0 {
				t.Errorf("expected no headers without preview text, got %v", msg.Headers)
			}
			return nil
		},
	}
	svc := NewNewsletterService(activeSubscribers("a@x.co", "bounce@x.co"), &mockNewsletterRepository{}, sender, 5)

	n, err := svc.Send(context.Background(), NewsletterDraft{Subject: "S", Content: "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.SuccessCount != 1 || n.FailCount != 1 {
		t.Errorf("expected 1/1, got %d/%d", n.SuccessCount, n.FailCount)
	}
	if n.Status != model.NewsletterPartial {
		t.Errorf("expected partial, got %q", n.Status)
	}
}

func TestNewsletterService_Send_AllFailed(t *testing.T) {
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			return errors.New("provider down")
		},
	}
	svc := NewNewsletterService(activeSubscribers("a@x.co", "b@x.co"), &mockNewsletterRepository{}, sender, 0)

	n, err := svc.Send(context.Background(), NewsletterDraft{Subject: "S", Content: "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Status != model.NewsletterFailed || n.FailCount != 2 {
		t.Errorf("expected failed with 2 failures, got %q %d", n.Status, n.FailCount)
	}
}

func TestNewsletterService_Send_NoRecipients(t *testing.T) {
	svc := NewNewsletterService(activeSubscribers(), &mockNewsletterRepository{}, &mockSender{}, 5)

	n, err := svc.Send(context.Background(), NewsletterDraft{Subject: "S", Content: "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Status != model.NewsletterSent || n.SubscriberCount != 0 {
		t.Errorf("expected sent with 0 recipients, got %q %d", n.Status, n.SubscriberCount)
	}
}

func TestNewsletterService_Send_ListsActiveOnly(t *testing.T) {
	var gotStatus string
	subs := &mockSubscriberRepository{
		listFunc: func(ctx context.Context, status string) ([]*model.Subscriber, error) {
			gotStatus = status
			return nil, nil
		},
	}
	svc := NewNewsletterService(subs, &mockNewsletterRepository{}, &mockSender{}, 1)
	if _, err := svc.Send(context.Background(), NewsletterDraft{Subject: "S", Content: "C"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotStatus != string(model.SubscriberActive) {
		t.Errorf("expected status filter %q, got %q", model.SubscriberActive, gotStatus)
	}
}

func TestNewsletterService_Send_CancelledMidwayStillStores(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sent atomic.Int32
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if sent.Add(1) == 2 {
				cancel()
			}
			return nil
		},
	}
	var stored *model.Newsletter
	repo := &mockNewsletterRepository{
		createFunc: func(ctx context.Context, n *model.Newsletter) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			stored = n
			return nil
		},
	}
	svc := NewNewsletterService(activeSubscribers("a@x.co", "b@x.co", "c@x.co"), repo, sender, 1)

	n, err := svc.Send(ctx, NewsletterDraft{Subject: "S", Content: "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored == nil || stored.ID != n.ID {
		t.Fatal("expected the newsletter to be stored")
	}
	if n.SuccessCount != 3 || n.FailCount != 0 || n.Status != model.NewsletterSent {
		t.Errorf("expected 3 delivered and sent, got %d/%d %q", n.SuccessCount, n.FailCount, n.Status)
	}
}

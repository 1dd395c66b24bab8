package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/pkg/mailer"
)

// ---------------------------------------------------------------------------
// mockContactRepository is an in-memory ContactRepository.
// ---------------------------------------------------------------------------

type mockContactRepository struct {
	saveFunc          func(ctx context.Context, c *model.ContactSubmission) error
	listFunc          func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error)
	getByIDFunc       func(ctx context.Context, id string) (*model.ContactSubmission, error)
	updateFunc        func(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error)
	markEmailSentFunc func(ctx context.Context, id string) error
}

func (m *mockContactRepository) Save(ctx context.Context, c *model.ContactSubmission) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	return nil
}

func (m *mockContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockContactRepository) GetByID(ctx context.Context, id string) (*model.ContactSubmission, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockContactRepository) Update(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return &model.ContactSubmission{ID: id}, nil
}

func (m *mockContactRepository) MarkEmailSent(ctx context.Context, id string) error {
	if m.markEmailSentFunc != nil {
		return m.markEmailSentFunc(ctx, id)
	}
	return nil
}

// mockSender records outgoing mail.
type mockSender struct {
	sendFunc func(ctx context.Context, msg mailer.Message) error
}

func (m *mockSender) Send(ctx context.Context, msg mailer.Message) error {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, msg)
	}
	return nil
}

func validContact() *model.ContactSubmission {
	return &model.ContactSubmission{
		Name:    "Amina Juma",
		Email:   "amina@example.com",
		Company: "Juma Logistics",
		Service: "consulting",
		Message: "We need help with our data platform.",
	}
}

// ---------------------------------------------------------------------------
// Submit tests
// ---------------------------------------------------------------------------

func TestContactService_Submit_SetsNewStatus(t *testing.T) {
	var saved *model.ContactSubmission
	repo := &mockContactRepository{
		saveFunc: func(ctx context.Context, c *model.ContactSubmission) error {
			saved = c
			return nil
		},
	}
	svc := NewContactService(repo, nil, "")

	before := time.Now().UTC()
	if err := svc.Submit(context.Background(), validContact()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved == nil {
		t.Fatal("expected Save to be called")
	}
	if saved.Status != model.ContactNew {
		t.Errorf("expected status=new, got %q", saved.Status)
	}
	if saved.ID == "" {
		t.Error("expected ID to be set")
	}
	if saved.SubmittedAt.Before(before) {
		t.Errorf("SubmittedAt %v should be >= %v", saved.SubmittedAt, before)
	}
	if !saved.UpdatedAt.Equal(saved.SubmittedAt) {
		t.Error("expected UpdatedAt == SubmittedAt on create")
	}
	if saved.EmailSent {
		t.Error("expected EmailSent=false without a mailer")
	}
}

func TestContactService_Submit_IgnoresClientStatus(t *testing.T) {
	svc := NewContactService(&mockContactRepository{}, nil, "")
	c := validContact()
	c.Status = model.ContactCompleted
	c.EmailSent = true

	if err := svc.Submit(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Status != model.ContactNew || c.EmailSent {
		t.Errorf("client-provided state should be overwritten, got status=%q emailSent=%v", c.Status, c.EmailSent)
	}
}

func TestContactService_Submit_MissingFields(t *testing.T) {
	called := false
	repo := &mockContactRepository{
		saveFunc: func(ctx context.Context, c *model.ContactSubmission) error {
			called = true
			return nil
		},
	}
	svc := NewContactService(repo, nil, "")

	c := validContact()
	c.Message = "   "
	if err := svc.Submit(context.Background(), c); !errors.Is(err, ErrMissingFields) {
		t.Fatalf("expected ErrMissingFields, got %v", err)
	}
	if called {
		t.Error("Save must not be called for invalid input")
	}
}

func TestContactService_Submit_InvalidEmail(t *testing.T) {
	svc := NewContactService(&mockContactRepository{}, nil, "")
	c := validContact()
	c.Email = "not-an-email"
	if err := svc.Submit(context.Background(), c); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestContactService_Submit_NotifiesOwner(t *testing.T) {
	var sent mailer.Message
	var marked string
	repo := &mockContactRepository{
		markEmailSentFunc: func(ctx context.Context, id string) error {
			marked = id
			return nil
		},
	}
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			sent = msg
			return nil
		},
	}
	svc := NewContactService(repo, sender, "owner@example.com")

	c := validContact()
	if err := svc.Submit(context.Background(), c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(sent.To) != 1 || sent.To[0] != "owner@example.com" {
		t.Errorf("expected mail to owner, got %v", sent.To)
	}
	if sent.ReplyTo != c.Email {
		t.Errorf("expected ReplyTo=%q, got %q", c.Email, sent.ReplyTo)
	}
	if !strings.Contains(sent.Text, "Company: Juma Logistics") {
		t.Errorf("expected company line in body, got %q", sent.Text)
	}
	if strings.Contains(sent.Text, "Budget:") {
		t.Error("empty fields should be omitted from the body")
	}
	if marked != c.ID {
		t.Errorf("expected MarkEmailSent(%q), got %q", c.ID, marked)
	}
	if !c.EmailSent {
		t.Error("expected EmailSent=true")
	}
}

func TestContactService_Submit_MailFailureIsNotFatal(t *testing.T) {
	markCalled := false
	repo := &mockContactRepository{
		markEmailSentFunc: func(ctx context.Context, id string) error {
			markCalled = true
			return nil
		},
	}
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			return errors.New("smtp down")
		},
	}
	svc := NewContactService(repo, sender, "owner@example.com")

	c := validContact()
	if err := svc.Submit(context.Background(), c); err != nil {
		t.Fatalf("mail failure must not fail submission: %v", err)
	}
	if markCalled {
		t.Error("MarkEmailSent must not be called when sending fails")
	}
	if c.EmailSent {
		t.Error("expected EmailSent=false")
	}
}

func TestContactService_Submit_SaveError(t *testing.T) {
	repo := &mockContactRepository{
		saveFunc: func(ctx context.Context, c *model.ContactSubmission) error {
			return errors.New("db down")
		},
	}
	sendCalled := false
	sender := &mockSender{
		sendFunc: func(ctx context.Context, msg mailer.Message) error {
			sendCalled = true
			return nil
		},
	}
	svc := NewContactService(repo, sender, "owner@example.com")

	if err := svc.Submit(context.Background(), validContact()); err == nil {
		t.Fatal("expected error")
	}
	if sendCalled {
		t.Error("owner must not be notified about an unsaved submission")
	}
}

// ---------------------------------------------------------------------------
// List / Update tests
// ---------------------------------------------------------------------------

func TestContactService_List_PassesOptions(t *testing.T) {
	var got model.ContactListOptions
	repo := &mockContactRepository{
		listFunc: func(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactSubmission, error) {
			got = opts
			return []*model.ContactSubmission{{ID: "c1"}}, nil
		},
	}
	svc := NewContactService(repo, nil, "")

	list, err := svc.List(context.Background(), model.ContactListOptions{Status: "new", Limit: 10, Offset: 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 result, got %d", len(list))
	}
	if got.Status != "new" || got.Limit != 10 || got.Offset != 20 {
		t.Errorf("options not forwarded: %+v", got)
	}
}

func TestContactService_Update_InvalidStatus(t *testing.T) {
	called := false
	repo := &mockContactRepository{
		updateFunc: func(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error) {
			called = true
			return nil, nil
		},
	}
	svc := NewContactService(repo, nil, "")

	bad := model.ContactStatus("spam")
	_, err := svc.Update(context.Background(), "c1", model.ContactPatch{Status: &bad})
	if !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if called {
		t.Error("repository must not be called with an invalid status")
	}
}

func TestContactService_Update_NotesOnly(t *testing.T) {
	var gotPatch model.ContactPatch
	repo := &mockContactRepository{
		updateFunc: func(ctx context.Context, id string, patch model.ContactPatch) (*model.ContactSubmission, error) {
			gotPatch = patch
			return &model.ContactSubmission{ID: id, Notes: *patch.Notes}, nil
		},
	}
	svc := NewContactService(repo, nil, "")

	notes := "called back on Monday"
	c, err := svc.Update(context.Background(), "c1", model.ContactPatch{Notes: &notes})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPatch.Status != nil {
		t.Error("expected nil status in patch")
	}
	if c.Notes != notes {
		t.Errorf("expected notes=%q, got %q", notes, c.Notes)
	}
}

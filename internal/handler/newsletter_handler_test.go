package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/service"
)

type mockNewsletterService struct {
	sendFunc func(ctx context.Context, d service.NewsletterDraft) (*model.Newsletter, error)
	listFunc func(ctx context.Context, limit, offset int) ([]*model.Newsletter, error)
}

func (m *mockNewsletterService) Send(ctx context.Context, d service.NewsletterDraft) (*model.Newsletter, error) {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, d)
	}
	return &model.Newsletter{ID: "n1", Status: model.NewsletterSent}, nil
}

func (m *mockNewsletterService) List(ctx context.Context, limit, offset int) ([]*model.Newsletter, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, limit, offset)
	}
	return nil, nil
}

func TestNewsletterHandler_Send_Success(t *testing.T) {
	var got service.NewsletterDraft
	h := NewNewsletterHandler(&mockNewsletterService{
		sendFunc: func(ctx context.Context, d service.NewsletterDraft) (*model.Newsletter, error) {
			got = d
			return &model.Newsletter{ID: "n1", SubscriberCount: 3, SuccessCount: 2, FailCount: 1, Status: model.NewsletterPartial}, nil
		},
	})
	body := `{"subject":"Hello","content":"<p>Hi</p>","previewText":"teaser"}`
	req := httptest.NewRequest(http.MethodPost, apiBase+"send-newsletter", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.Subject != "Hello" || got.PreviewText != "teaser" {
		t.Errorf("unexpected draft %+v", got)
	}
	var resp struct {
		Success      bool `json:"success"`
		SuccessCount int  `json:"successCount"`
		FailCount    int  `json:"failCount"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.SuccessCount != 2 || resp.FailCount != 1 {
		t.Errorf("unexpected response %+v", resp)
	}
}

func TestNewsletterHandler_Send_Empty(t *testing.T) {
	h := NewNewsletterHandler(&mockNewsletterService{
		sendFunc: func(ctx context.Context, d service.NewsletterDraft) (*model.Newsletter, error) {
			return nil, service.ErrEmptyNewsletter
		},
	})
	req := httptest.NewRequest(http.MethodPost, apiBase+"send-newsletter", strings.NewReader(`{"subject":"","content":""}`))
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "empty_newsletter") {
		t.Errorf("expected 400 empty_newsletter, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestNewsletterHandler_Send_AllFailedReportsUnsuccessful(t *testing.T) {
	h := NewNewsletterHandler(&mockNewsletterService{
		sendFunc: func(ctx context.Context, d service.NewsletterDraft) (*model.Newsletter, error) {
			return &model.Newsletter{FailCount: 2, SubscriberCount: 2, Status: model.NewsletterFailed}, nil
		},
	})
	req := httptest.NewRequest(http.MethodPost, apiBase+"send-newsletter", strings.NewReader(`{"subject":"S","content":"C"}`))
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	if !strings.Contains(rec.Body.String(), `"success":false`) {
		t.Errorf("expected success=false, got %s", rec.Body.String())
	}
}

func TestNewsletterHandler_Send_StoreError(t *testing.T) {
	h := NewNewsletterHandler(&mockNewsletterService{
		sendFunc: func(ctx context.Context, d service.NewsletterDraft) (*model.Newsletter, error) {
			return nil, errors.New("db down")
		},
	})
	req := httptest.NewRequest(http.MethodPost, apiBase+"send-newsletter", strings.NewReader(`{"subject":"S","content":"C"}`))
	rec := httptest.NewRecorder()
	h.Send(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
}

func TestNewsletterHandler_List(t *testing.T) {
	var gotLimit, gotOffset int
	h := NewNewsletterHandler(&mockNewsletterService{
		listFunc: func(ctx context.Context, limit, offset int) ([]*model.Newsletter, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.Newsletter{{ID: "n2"}, {ID: "n1"}}, nil
		},
	})
	req := httptest.NewRequest(http.MethodGet, apiBase+"newsletters?limit=5&offset=5", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotLimit != 5 || gotOffset != 5 {
		t.Errorf("expected 5/5, got %d/%d", gotLimit, gotOffset)
	}
	if !strings.Contains(rec.Body.String(), `"id":"n2"`) {
		t.Errorf("expected newsletters in body, got %s", rec.Body.String())
	}
}

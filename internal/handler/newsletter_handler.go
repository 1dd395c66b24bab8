package handler

import (
	"errors"
	"net/http"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/service"
)

// NewsletterHandler sends newsletters and lists past issues.
type NewsletterHandler struct {
	svc service.NewsletterService
}

// NewNewsletterHandler creates a NewsletterHandler.
func NewNewsletterHandler(svc service.NewsletterService) *NewsletterHandler {
	return &NewsletterHandler{svc: svc}
}

type sendNewsletterRequest struct {
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	PreviewText string `json:"previewText"`
}

// Send handles POST send-newsletter (admin).
// Individual delivery failures are reported in the counts, not as an error status.
func (h *NewsletterHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendNewsletterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	n, err := h.svc.Send(r.Context(), service.NewsletterDraft{
		Subject:     req.Subject,
		Content:     req.Content,
		PreviewText: req.PreviewText,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmptyNewsletter) {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":   "empty_newsletter",
				"message": "Subject and content are required",
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "send_failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      n.Status != model.NewsletterFailed,
		"newsletter":   n,
		"successCount": n.SuccessCount,
		"failCount":    n.FailCount,
	})
}

// List handles GET newsletters (admin), newest first.
func (h *NewsletterHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pageParams(r)
	list, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}
	if list == nil {
		list = []*model.Newsletter{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"newsletters": list})
}

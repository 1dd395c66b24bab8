package handler

import (
	"errors"
	"net/http"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/internal/service"
)

// SubscriberHandler handles newsletter sign-ups and the admin subscriber list.
type SubscriberHandler struct {
	svc service.SubscriberService
}

// NewSubscriberHandler creates a SubscriberHandler.
func NewSubscriberHandler(svc service.SubscriberService) *SubscriberHandler {
	return &SubscriberHandler{svc: svc}
}

// Subscribe handles POST subscribers. Subscribing an existing address is not an error.
func (h *SubscriberHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email  string `json:"email"`
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	sub, err := h.svc.Subscribe(r.Context(), req.Email, req.Name, req.Source)
	if err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			writeError(w, http.StatusBadRequest, "invalid_email")
			return
		}
		writeError(w, http.StatusInternalServerError, "subscribe_failed")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "subscriber": sub})
}

// List handles GET subscribers (admin). Optional query param: status.
func (h *SubscriberHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	switch model.SubscriberStatus(status) {
	case "", model.SubscriberActive, model.SubscriberUnsubscribed:
	default:
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}

	subs, err := h.svc.List(r.Context(), status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}
	if subs == nil {
		subs = []*model.Subscriber{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"subscribers": subs})
}

// Unsubscribe handles DELETE subscribers/{id} (admin).
func (h *SubscriberHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Unsubscribe(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found")
			return
		}
		writeError(w, http.StatusInternalServerError, "unsubscribe_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

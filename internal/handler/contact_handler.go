package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/internal/service"
)

const (
	maxMessageLength = 5000
	maxNotesLength   = 5000
	defaultListLimit = 50
	maxListLimit     = 100
)

// ContactHandler handles contact form submissions and the admin inbox.
type ContactHandler struct {
	contactService service.ContactService
}

// NewContactHandler creates a ContactHandler with the given service.
func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// submitRequest is the expected JSON body for POST contacts.
type submitRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Service  string `json:"service"`
	Budget   string `json:"budget"`
	Timeline string `json:"timeline"`
	Message  string `json:"message"`
}

// Submit handles POST contacts.
// name, email and message are required; message max 5000 chars.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if len([]rune(req.Message)) > maxMessageLength {
		writeError(w, http.StatusBadRequest, "message_too_long")
		return
	}

	c := &model.ContactSubmission{
		Name:     req.Name,
		Email:    req.Email,
		Company:  req.Company,
		Service:  req.Service,
		Budget:   req.Budget,
		Timeline: req.Timeline,
		Message:  req.Message,
	}

	if err := h.contactService.Submit(r.Context(), c); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "missing_fields")
		case errors.Is(err, service.ErrInvalidEmail):
			writeError(w, http.StatusBadRequest, "invalid_email")
		default:
			writeError(w, http.StatusInternalServerError, "submit_failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":   true,
		"id":        c.ID,
		"emailSent": c.EmailSent,
	})
}

// contactListResponse is the JSON response for GET contacts.
type contactListResponse struct {
	Contacts []*model.ContactSubmission `json:"contacts"`
}

// List handles GET contacts (admin).
// Supports query params: status, limit (1..100), offset.
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := model.ContactListOptions{
		Status: q.Get("status"),
		Limit:  defaultListLimit,
	}
	if opts.Status != "" && !model.ContactStatus(opts.Status).Valid() {
		writeError(w, http.StatusBadRequest, "invalid_status")
		return
	}
	opts.Limit, opts.Offset = pageParams(r)

	contacts, err := h.contactService.List(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed")
		return
	}

	// Return [] not null for empty lists
	if contacts == nil {
		contacts = []*model.ContactSubmission{}
	}
	writeJSON(w, http.StatusOK, contactListResponse{Contacts: contacts})
}

// updateContactRequest is the JSON body for PATCH contacts/{id}.
type updateContactRequest struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes"`
}

// Update handles PATCH contacts/{id} (admin).
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id_required")
		return
	}

	var req updateContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Status == nil && req.Notes == nil {
		writeError(w, http.StatusBadRequest, "nothing_to_update")
		return
	}
	if req.Notes != nil && len([]rune(*req.Notes)) > maxNotesLength {
		writeError(w, http.StatusBadRequest, "notes_too_long")
		return
	}

	var patch model.ContactPatch
	if req.Status != nil {
		s := model.ContactStatus(*req.Status)
		patch.Status = &s
	}
	patch.Notes = req.Notes

	c, err := h.contactService.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidStatus):
			writeError(w, http.StatusBadRequest, "invalid_status")
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found")
		default:
			writeError(w, http.StatusInternalServerError, "update_failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "contact": c})
}

// pageParams parses limit and offset, falling back to defaults on bad input.
func pageParams(r *http.Request) (limit, offset int) {
	limit = defaultListLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= maxListLimit {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/service"
)

const defaultSummaryWindow = 30 * 24 * time.Hour

// AnalyticsHandler ingests tracker batches and serves the admin summary.
type AnalyticsHandler struct {
	svc service.AnalyticsService
	now func() time.Time
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(svc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, now: time.Now}
}

// Ingest handles POST analytics with body {"events":[...]}.
func (h *AnalyticsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Events []*model.AnalyticsEvent `json:"events"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	n, err := h.svc.Ingest(r.Context(), req.Events)
	if err != nil {
		if errors.Is(err, service.ErrInvalidBatch) {
			writeError(w, http.StatusBadRequest, "invalid_batch")
			return
		}
		writeError(w, http.StatusInternalServerError, "ingest_failed")
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]int{"accepted": n})
}

// Summary handles GET analytics/summary (admin). since is RFC 3339 and
// defaults to 30 days ago.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	since := h.now().Add(-defaultSummaryWindow)
	if s := r.URL.Query().Get("since"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_since")
			return
		}
		since = t
	}

	counts, err := h.svc.Summary(r.Context(), since)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "summary_failed")
		return
	}
	if counts == nil {
		counts = []model.EventCount{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"since":  since.UTC(),
		"counts": counts,
	})
}

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/folio/backend/internal/service"
	"github.com/folio/backend/pkg/auth"
)

// AdminHandler handles admin authentication and session checks.
type AdminHandler struct {
	svc service.AdminAuthenticator
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(svc service.AdminAuthenticator) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Authenticate handles POST admin/authenticate.
func (h *AdminHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	sess, err := h.svc.Authenticate(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPassword) {
			writeJSON(w, http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   "invalid_password",
			})
			return
		}
		slog.ErrorContext(r.Context(), "admin authenticate failed", "error", err)
		writeError(w, http.StatusInternalServerError, "authentication_failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"token":     sess.Token,
		"expiresAt": sess.ExpiresAt,
	})
}

// Session handles GET admin/session. RequireAdmin has already validated the token.
func (h *AdminHandler) Session(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.AdminClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "session_expired")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":     true,
		"expiresAt": claims.ExpiresAt,
	})
}

// EmergencyReset handles POST admin/emergency-reset. A matching reset key
// revokes every admin token issued so far.
func (h *AdminHandler) EmergencyReset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ResetKey string `json:"resetKey"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	if err := h.svc.EmergencyReset(r.Context(), req.ResetKey); err != nil {
		if errors.Is(err, service.ErrInvalidResetKey) {
			writeError(w, http.StatusForbidden, "invalid_reset_key")
			return
		}
		slog.ErrorContext(r.Context(), "admin emergency reset failed", "error", err)
		writeError(w, http.StatusInternalServerError, "reset_failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

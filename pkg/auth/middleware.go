package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// AdminSessionHeader carries the admin token on protected calls.
const AdminSessionHeader = "X-Admin-Session"

type contextKey string

const adminClaimsKey contextKey = "admin_claims"

// WithAdminClaims stores validated admin claims in the context.
func WithAdminClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, adminClaimsKey, c)
}

// AdminClaimsFromContext returns the admin claims set by RequireAdmin.
func AdminClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(adminClaimsKey).(Claims)
	return c, ok
}

// SessionValidator validates an admin token, including server-side revocation.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (Claims, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return ""
}

// RequireAPIKey rejects requests whose bearer token is not the public anon key.
func RequireAPIKey(anonKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := BearerToken(r)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(anonKey)) != 1 {
				writeUnauthorized(w, "invalid_api_key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin validates the admin session header and stores its claims in the context.
// Missing, invalid, expired and revoked tokens are reported as 401 session_expired,
// which makes clients drop the session. Any other validator error is a server
// fault and yields 503 so the stored session survives the outage.
func RequireAdmin(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(AdminSessionHeader))
			if token == "" {
				writeUnauthorized(w, "session_expired")
				return
			}
			claims, err := v.ValidateSession(r.Context(), token)
			switch {
			case err == nil:
			case errors.Is(err, ErrInvalidToken), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrSessionRevoked):
				writeUnauthorized(w, "session_expired")
				return
			default:
				slog.ErrorContext(r.Context(), "admin session check failed", "error", err)
				writeJSONError(w, http.StatusServiceUnavailable, "session_check_unavailable")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithAdminClaims(r.Context(), claims)))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, code string) {
	writeJSONError(w, http.StatusUnauthorized, code)
}

func writeJSONError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

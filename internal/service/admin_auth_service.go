package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/pkg/auth"
)

// AdminAuthenticator is the admin session API used by handlers.
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, password string) (*model.AdminSession, error)
	ValidateSession(ctx context.Context, token string) (auth.Claims, error)
	EmergencyReset(ctx context.Context, resetKey string) error
}

// AdminAuthService authenticates the site owner and validates admin tokens.
// Implements auth.SessionValidator.
type AdminAuthService struct {
	passwords *auth.PasswordChecker
	issuer    *auth.Issuer
	state     repository.AdminStateRepository
	resetKey  string
}

// NewAdminAuthService creates an AdminAuthService. An empty resetKey disables emergency reset.
func NewAdminAuthService(passwords *auth.PasswordChecker, issuer *auth.Issuer, state repository.AdminStateRepository, resetKey string) *AdminAuthService {
	return &AdminAuthService{passwords: passwords, issuer: issuer, state: state, resetKey: resetKey}
}

var (
	_ auth.SessionValidator = (*AdminAuthService)(nil)
	_ AdminAuthenticator    = (*AdminAuthService)(nil)
)

// Authenticate checks password and issues a token valid for the issuer's TTL.
func (s *AdminAuthService) Authenticate(ctx context.Context, password string) (*model.AdminSession, error) {
	if !s.passwords.Check(password) {
		slog.WarnContext(ctx, "admin authentication failed")
		return nil, ErrInvalidPassword
	}
	gen, err := s.state.Generation(ctx)
	if err != nil {
		return nil, fmt.Errorf("load token generation: %w", err)
	}
	token, claims, err := s.issuer.Issue(gen)
	if err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "admin authenticated", "jti", claims.ID, "expires_at", claims.ExpiresAt)
	return &model.AdminSession{Token: token, ExpiresAt: claims.ExpiresAt}, nil
}

// ValidateSession verifies token and rejects tokens issued before the last emergency reset.
func (s *AdminAuthService) ValidateSession(ctx context.Context, token string) (auth.Claims, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		return auth.Claims{}, err
	}
	gen, err := s.state.Generation(ctx)
	if err != nil {
		return auth.Claims{}, fmt.Errorf("load token generation: %w", err)
	}
	if claims.Generation != gen {
		return auth.Claims{}, ErrSessionRevoked
	}
	return claims, nil
}

// EmergencyReset revokes every outstanding admin token.
func (s *AdminAuthService) EmergencyReset(ctx context.Context, resetKey string) error {
	if s.resetKey == "" || resetKey == "" ||
		subtle.ConstantTimeCompare([]byte(s.resetKey), []byte(resetKey)) != 1 {
		slog.WarnContext(ctx, "admin emergency reset rejected")
		return ErrInvalidResetKey
	}
	gen, err := s.state.IncrementGeneration(ctx)
	if err != nil {
		return fmt.Errorf("increment token generation: %w", err)
	}
	slog.WarnContext(ctx, "admin sessions revoked", "generation", gen)
	return nil
}

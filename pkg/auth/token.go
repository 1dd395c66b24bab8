package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultSessionTTL is how long an admin token stays valid after issue.
const DefaultSessionTTL = 4 * time.Hour

const (
	adminSubject = "admin"
	tokenIssuer  = "folio"
	minSecretLen = 32
)

var (
	// ErrInvalidToken is returned for malformed, unsigned or tampered tokens.
	ErrInvalidToken = errors.New("auth: invalid token")
	// ErrTokenExpired is returned when a well-formed token is past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
	// ErrSessionRevoked is returned by validators for a token minted before
	// the last emergency reset.
	ErrSessionRevoked = errors.New("auth: session revoked")
)

// Claims are the validated contents of an admin token.
type Claims struct {
	ID         string
	IssuedAt   time.Time
	ExpiresAt  time.Time
	Generation int64
}

type adminClaims struct {
	jwt.RegisteredClaims
	Generation int64 `json:"gen"`
}

// Issuer mints and verifies HS256 admin tokens.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer creates an Issuer. A zero ttl means DefaultSessionTTL; a nil now means time.Now.
func NewIssuer(secret string, ttl time.Duration, now func() time.Time) *Issuer {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Issuer{secret: SessionSecretBytes(secret), ttl: ttl, now: now}
}

// TTL returns the lifetime of issued tokens.
func (i *Issuer) TTL() time.Duration { return i.ttl }

// Issue signs a token for the given revocation generation.
func (i *Issuer) Issue(generation int64) (string, Claims, error) {
	now := i.now().UTC().Truncate(time.Second)
	claims := adminClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    tokenIssuer,
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		Generation: generation,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign admin token: %w", err)
	}
	return signed, Claims{
		ID:         claims.ID,
		IssuedAt:   now,
		ExpiresAt:  now.Add(i.ttl),
		Generation: generation,
	}, nil
}

// Verify checks the signature, issuer, subject and expiry of token.
func (i *Issuer) Verify(token string) (Claims, error) {
	var parsed adminClaims
	_, err := jwt.ParseWithClaims(token, &parsed, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithSubject(adminSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrInvalidToken
	}

	claims := Claims{
		ID:         parsed.ID,
		ExpiresAt:  parsed.ExpiresAt.Time.UTC(),
		Generation: parsed.Generation,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// SessionSecretBytes pads s to at least 32 bytes for HMAC signing.
func SessionSecretBytes(s string) []byte {
	b := []byte(s)
	if len(b) < minSecretLen {
		out := make([]byte, minSecretLen)
		copy(out, b)
		return out
	}
	return b
}

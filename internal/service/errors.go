package service

import (
	"errors"

	"github.com/folio/backend/pkg/auth"
)

var (
	// ErrInvalidStatus is returned when a contact status is not one of the enumerated values.
	ErrInvalidStatus = errors.New("invalid status")
	// ErrEmptyNewsletter is returned when a newsletter has no subject or content.
	ErrEmptyNewsletter = errors.New("newsletter subject and content are required")
	// ErrInvalidPassword is returned by Authenticate for a wrong admin password.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidResetKey is returned by EmergencyReset for a wrong or unconfigured key.
	ErrInvalidResetKey = errors.New("invalid reset key")
	// ErrSessionRevoked is returned for a token minted before the last emergency reset.
	ErrSessionRevoked = auth.ErrSessionRevoked
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrMissingFields is returned when a contact submission lacks name, email or message.
	ErrMissingFields = errors.New("name, email and message are required")
)

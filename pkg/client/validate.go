package client

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/folio/backend/pkg/payment"
)

var (
	// ErrEmptyNewsletter is returned before sending a newsletter without subject or content.
	ErrEmptyNewsletter = errors.New("client: newsletter subject and content are required")
	// ErrMissingFields is returned before submitting a contact form without name, email or message.
	ErrMissingFields = errors.New("client: name, email and message are required")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("client: invalid email address")
)

// ValidateContact checks a contact form locally.
func ValidateContact(f ContactForm) error {
	if strings.TrimSpace(f.Name) == "" || strings.TrimSpace(f.Email) == "" || strings.TrimSpace(f.Message) == "" {
		return ErrMissingFields
	}
	if !validEmail(strings.TrimSpace(f.Email)) {
		return ErrInvalidEmail
	}
	return nil
}

// ValidateNewsletter checks a newsletter draft locally.
func ValidateNewsletter(d NewsletterDraft) error {
	if strings.TrimSpace(d.Subject) == "" || strings.TrimSpace(d.Content) == "" {
		return ErrEmptyNewsletter
	}
	return nil
}

// ValidatePayment applies the same rules the server does, at now.
func ValidatePayment(in PaymentInput, now time.Time) error {
	if err := payment.ValidateAmount(in.Amount); err != nil {
		return err
	}
	switch in.Method {
	case MethodMobile:
		_, err := payment.NormalizePhone(in.Provider, in.Phone)
		return err
	case MethodCard:
		return payment.ValidateCard(in.Card, now)
	default:
		return fmt.Errorf("client: unknown payment method %q", in.Method)
	}
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return at > 0 && strings.Contains(s[at+1:], ".")
}

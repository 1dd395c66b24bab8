// Package mailer sends transactional email through an HTTP email API.
package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Message is a single outgoing email.
type Message struct {
	To      []string          `json:"to"`
	Subject string            `json:"subject"`
	HTML    string            `json:"html,omitempty"`
	Text    string            `json:"text,omitempty"`
	ReplyTo string            `json:"reply_to,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}

// Sender delivers email.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("mailer: not configured")

// HTTPSender posts messages as JSON to an email API endpoint.
type HTTPSender struct {
	APIKey     string
	Endpoint   string
	From       string
	httpClient *http.Client
}

// NewHTTPSender creates an HTTPSender.
func NewHTTPSender(apiKey, endpoint, from string) *HTTPSender {
	return &HTTPSender{
		APIKey:     apiKey,
		Endpoint:   endpoint,
		From:       from,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Send delivers msg. Any non-2xx answer is an error carrying the API's message.
func (s *HTTPSender) Send(ctx context.Context, msg Message) error {
	if s.APIKey == "" {
		return ErrNotConfigured
	}
	if len(msg.To) == 0 {
		return errors.New("mailer: no recipients")
	}

	payload := struct {
		From string `json:"from"`
		Message
	}{From: s.From, Message: msg}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.APIKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var errResp struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		if errResp.Message == "" {
			errResp.Message = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("mailer send: %s", errResp.Message)
	}
	return nil
}

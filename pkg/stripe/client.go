// Package stripe provides a lightweight Stripe API client for card payments.
// Uses raw HTTP calls (no SDK) to minimize external dependencies.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the Stripe REST API root.
const DefaultBaseURL = "https://api.stripe.com"

// ChargeParams are the inputs for a single confirmed card charge.
type ChargeParams struct {
	Amount      int64  // smallest currency unit
	Currency    string // "usd", "tzs", ...
	CardNumber  string
	ExpMonth    int
	ExpYear     int
	CVC         string
	Holder      string
	Email       string
	Description string
	PaymentID   string // stored as metadata[payment_id]
}

// PaymentError describes why a charge failed.
type PaymentError struct {
	Message string `json:"message"`
}

// PaymentIntent is the subset of a Stripe PaymentIntent the service uses.
type PaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"` // succeeded, requires_action, requires_payment_method, ...
	// LastError is set when the card was declined.
	LastError *PaymentError `json:"last_payment_error"`
}

// Succeeded reports whether the intent captured funds.
func (p PaymentIntent) Succeeded() bool { return p.Status == "succeeded" }

// WebhookEventObject is the data.object of a payment_intent event.
type WebhookEventObject struct {
	ID       string            `json:"id"`
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Metadata map[string]string `json:"metadata"`
	// LastError is set on payment_intent.payment_failed.
	LastError *PaymentError `json:"last_payment_error"`
}

// WebhookEvent is a Stripe webhook event.
type WebhookEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Data struct {
		Object WebhookEventObject `json:"object"`
	} `json:"data"`
}

// Client is the Stripe operations the payment service needs.
type Client interface {
	// CreatePaymentIntent creates and confirms a card PaymentIntent in one call.
	CreatePaymentIntent(ctx context.Context, params ChargeParams) (PaymentIntent, error)
	// VerifyWebhookSignature checks the Stripe-Signature header.
	VerifyWebhookSignature(payload []byte, sigHeader string) error
	// ParseWebhookEvent decodes a webhook payload.
	ParseWebhookEvent(payload []byte) (WebhookEvent, error)
}

// RealClient is the raw HTTP implementation of Client.
type RealClient struct {
	SecretKey     string
	WebhookSecret string // whsec_...
	BaseURL       string
	httpClient    *http.Client
	now           func() time.Time
}

// NewClient creates a RealClient against the public Stripe API.
func NewClient(secretKey, webhookSecret string) *RealClient {
	return &RealClient{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		BaseURL:       DefaultBaseURL,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		now:           time.Now,
	}
}

// ErrNotConfigured is returned when Stripe keys are not set.
var ErrNotConfigured = errors.New("stripe: not configured")

// CreatePaymentIntent confirms a card charge. A declined card is not an
// error: the returned intent carries the decline in LastError.
func (c *RealClient) CreatePaymentIntent(ctx context.Context, params ChargeParams) (PaymentIntent, error) {
	if c.SecretKey == "" {
		return PaymentIntent{}, ErrNotConfigured
	}

	data := url.Values{}
	data.Set("amount", strconv.FormatInt(params.Amount, 10))
	data.Set("currency", strings.ToLower(params.Currency))
	data.Set("confirm", "true")
	data.Set("payment_method_types[]", "card")
	data.Set("payment_method_data[type]", "card")
	data.Set("payment_method_data[card][number]", params.CardNumber)
	data.Set("payment_method_data[card][exp_month]", strconv.Itoa(params.ExpMonth))
	data.Set("payment_method_data[card][exp_year]", strconv.Itoa(params.ExpYear))
	data.Set("payment_method_data[card][cvc]", params.CVC)
	if params.Holder != "" {
		data.Set("payment_method_data[billing_details][name]", params.Holder)
	}
	if params.Email != "" {
		data.Set("receipt_email", params.Email)
	}
	if params.Description != "" {
		data.Set("description", params.Description)
	}
	if params.PaymentID != "" {
		data.Set("metadata[payment_id]", params.PaymentID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.BaseURL+"/v1/payment_intents",
		strings.NewReader(data.Encode()))
	if err != nil {
		return PaymentIntent{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.SecretKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PaymentIntent{}, err
	}
	defer resp.Body.Close()

	var result struct {
		PaymentIntent
		Error *struct {
			Type          string         `json:"type"`
			Message       string         `json:"message"`
			PaymentIntent *PaymentIntent `json:"payment_intent"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return PaymentIntent{}, err
	}
	if result.Error != nil {
		// Card declines come back as 402 card_error with the failed intent attached.
		if result.Error.Type == "card_error" {
			pi := PaymentIntent{Status: "requires_payment_method"}
			if result.Error.PaymentIntent != nil {
				pi = *result.Error.PaymentIntent
			}
			if pi.LastError == nil {
				pi.LastError = &PaymentError{Message: result.Error.Message}
			}
			return pi, nil
		}
		return PaymentIntent{}, fmt.Errorf("stripe create payment intent: %s", result.Error.Message)
	}
	if result.ID == "" {
		return PaymentIntent{}, errors.New("stripe create payment intent: empty ID in response")
	}
	return result.PaymentIntent, nil
}

// VerifyWebhookSignature verifies the Stripe-Signature header with HMAC-SHA256.
func (c *RealClient) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if c.WebhookSecret == "" {
		return ErrNotConfigured
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("stripe: invalid signature header format")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.New("stripe: invalid timestamp in signature header")
	}
	if c.now().Sub(time.Unix(ts, 0)) > 5*time.Minute {
		return errors.New("stripe: webhook timestamp too old (replay attack protection)")
	}

	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errors.New("stripe: signature verification failed")
}

// ParseWebhookEvent decodes the event type, ID and object.
func (c *RealClient) ParseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WebhookEvent{}, err
	}
	return event, nil
}

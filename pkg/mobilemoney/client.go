// Package mobilemoney is a raw HTTP client for a mobile-money collection gateway
// (USSD push to the customer's handset).
package mobilemoney

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ChargeRequest asks the gateway to collect amount from msisdn.
type ChargeRequest struct {
	Provider    string `json:"provider"`
	MSISDN      string `json:"msisdn"` // 255XXXXXXXXX
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Reference   string `json:"reference"` // our payment ID
	Description string `json:"description,omitempty"`
}

// ChargeResult is the gateway's answer to a collection request.
type ChargeResult struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"` // SUCCESSFUL | FAILED | PENDING
	Message       string `json:"message"`
}

// Succeeded reports whether the customer approved the collection.
func (r ChargeResult) Succeeded() bool { return strings.EqualFold(r.Status, "SUCCESSFUL") }

// Client collects mobile-money payments.
type Client interface {
	Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error)
}

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("mobilemoney: not configured")

// RealClient is the HTTP implementation of Client.
type RealClient struct {
	APIKey     string
	BaseURL    string
	httpClient *http.Client
}

// NewClient creates a RealClient. The gateway holds the request open until the
// customer answers the USSD prompt, hence the long timeout.
func NewClient(apiKey, baseURL string) *RealClient {
	return &RealClient{
		APIKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 90 * time.Second},
	}
}

// Charge posts a collection request and returns the terminal result.
func (c *RealClient) Charge(ctx context.Context, creq ChargeRequest) (ChargeResult, error) {
	if c.APIKey == "" {
		return ChargeResult{}, ErrNotConfigured
	}

	body, err := json.Marshal(creq)
	if err != nil {
		return ChargeResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/collections", bytes.NewReader(body))
	if err != nil {
		return ChargeResult{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ChargeResult{}, err
	}
	defer resp.Body.Close()

	var result struct {
		ChargeResult
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return ChargeResult{}, fmt.Errorf("mobilemoney charge: decode response: %w", err)
	}
	if result.Error != nil {
		return ChargeResult{}, fmt.Errorf("mobilemoney charge: %s", result.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return ChargeResult{}, fmt.Errorf("mobilemoney charge: unexpected status %d", resp.StatusCode)
	}
	return result.ChargeResult, nil
}

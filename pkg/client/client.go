// Package client is a Go client for the folio API. It owns the admin session
// lifecycle, validates input before anything is sent, and batches analytics.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// BasePath is the function namespace every endpoint lives under.
const BasePath = "/functions/v1/make-server-4d80a1b0/"

// DefaultTimeout bounds a single request when the caller's context has no deadline.
const DefaultTimeout = 15 * time.Second

// adminSessionHeader mirrors auth.AdminSessionHeader on the server.
const adminSessionHeader = "X-Admin-Session"

var (
	// ErrSessionExpired is returned when an admin call has no valid session or
	// the server rejected it. The local session is cleared.
	ErrSessionExpired = errors.New("client: admin session expired")
	// ErrInvalidPassword is returned by Login for a wrong password.
	ErrInvalidPassword = errors.New("client: invalid password")
)

// APIError is a non-2xx response.
type APIError struct {
	StatusCode int
	Code       string // "error" field of the body
	Message    string // "message" field of the body, if any

	body []byte
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d %s", e.StatusCode, e.Code)
}

// Config configures a Client.
type Config struct {
	// BaseURL is the server origin, e.g. "https://folio.example". BasePath is appended.
	BaseURL string
	// AnonKey is the public API key sent as a bearer token on every call.
	AnonKey string
	// Store holds the admin session. Defaults to a MemoryStore.
	Store      SessionStore
	HTTPClient *http.Client
	Timeout    time.Duration
	Now        func() time.Time
}

// Client calls the folio API.
type Client struct {
	base    *url.URL
	anonKey string
	http    *http.Client
	timeout time.Duration
	now     func() time.Time
	session *Session
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("client: BaseURL is required")
	}
	if cfg.AnonKey == "" {
		return nil, errors.New("client: AnonKey is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/") + BasePath)
	if err != nil {
		return nil, fmt.Errorf("client: parse base URL: %w", err)
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Client{
		base:    base,
		anonKey: cfg.AnonKey,
		http:    cfg.HTTPClient,
		timeout: cfg.Timeout,
		now:     cfg.Now,
		session: NewSession(cfg.Store, cfg.Now),
	}, nil
}

// Session returns the admin session shared by every admin call.
func (c *Client) Session() *Session { return c.session }

// access says whether a call needs the admin session.
type access int

const (
	public access = iota
	admin
)

// do is the single request helper. It returns *APIError for non-2xx
// responses and ErrSessionExpired for a rejected admin call.
func (c *Client) do(ctx context.Context, method, path string, acc access, in, out any) error {
	var token string
	if acc == admin {
		t, ok := c.session.Token()
		if !ok {
			return ErrSessionExpired
		}
		token = t
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("client: encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	p, query, _ := strings.Cut(path, "?")
	u := c.base.JoinPath(p)
	u.RawQuery = query

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.anonKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(adminSessionHeader, token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if acc == admin && resp.StatusCode == http.StatusUnauthorized {
			c.session.Expire()
			return ErrSessionExpired
		}
		return newAPIError(resp.StatusCode, raw)
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
	}
	return nil
}

func newAPIError(status int, raw []byte) *APIError {
	e := &APIError{StatusCode: status, body: raw}
	var parsed struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &parsed) == nil {
		e.Code, e.Message = parsed.Error, parsed.Message
	}
	if e.Code == "" {
		e.Code = strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
	return e
}

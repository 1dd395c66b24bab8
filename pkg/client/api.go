package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/folio/backend/pkg/payment"
)

// Health is the health endpoint's response.
type Health struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health reports whether the server and its database are up.
// A 503 is returned as a Health with Status "unhealthy", not an error.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	err := c.do(ctx, http.MethodGet, "health", public, nil, &h)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable {
		if json.Unmarshal(apiErr.body, &h) == nil {
			return &h, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Login authenticates with the admin password and stores the session.
func (c *Client) Login(ctx context.Context, password string) error {
	c.session.beginLogin()
	var resp struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	err := c.do(ctx, http.MethodPost, "admin/authenticate", public, map[string]string{"password": password}, &resp)
	if err != nil {
		c.session.failLogin()
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return ErrInvalidPassword
		}
		return err
	}
	if resp.Token == "" {
		c.session.failLogin()
		return errors.New("client: authenticate returned no token")
	}
	return c.session.completeLogin(resp.Token, resp.ExpiresAt)
}

// Logout clears the local session.
func (c *Client) Logout() error { return c.session.Logout() }

// VerifySession asks the server whether the stored token is still accepted and
// returns the server's expiry.
func (c *Client) VerifySession(ctx context.Context) (time.Time, error) {
	var resp struct {
		Valid     bool      `json:"valid"`
		ExpiresAt time.Time `json:"expiresAt"`
	}
	if err := c.do(ctx, http.MethodGet, "admin/session", admin, nil, &resp); err != nil {
		return time.Time{}, err
	}
	return resp.ExpiresAt, nil
}

// EmergencyReset revokes every admin token on the server, including this client's.
func (c *Client) EmergencyReset(ctx context.Context, resetKey string) error {
	if err := c.do(ctx, http.MethodPost, "admin/emergency-reset", public, map[string]string{"resetKey": resetKey}, nil); err != nil {
		return err
	}
	return c.session.Logout()
}

// ContactForm is a visitor's inquiry.
type ContactForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company,omitempty"`
	Service  string `json:"service,omitempty"`
	Budget   string `json:"budget,omitempty"`
	Timeline string `json:"timeline,omitempty"`
	Message  string `json:"message"`
}

// ContactReceipt confirms a stored contact submission.
type ContactReceipt struct {
	ID        string `json:"id"`
	EmailSent bool   `json:"emailSent"`
}

// Contact is a stored contact submission as seen by the admin.
type Contact struct {
	ContactForm
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes"`
	EmailSent   bool      `json:"emailSent"`
	SubmittedAt time.Time `json:"submittedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// SubmitContact validates f and sends it.
func (c *Client) SubmitContact(ctx context.Context, f ContactForm) (*ContactReceipt, error) {
	if err := ValidateContact(f); err != nil {
		return nil, err
	}
	var r ContactReceipt
	if err := c.do(ctx, http.MethodPost, "contacts", public, f, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ContactFilter narrows ListContacts. Zero values mean server defaults.
type ContactFilter struct {
	Status string
	Limit  int
	Offset int
}

// ListContacts returns contact submissions (admin).
func (c *Client) ListContacts(ctx context.Context, f ContactFilter) ([]Contact, error) {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Offset > 0 {
		q.Set("offset", strconv.Itoa(f.Offset))
	}
	var resp struct {
		Contacts []Contact `json:"contacts"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("contacts", q), admin, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Contacts, nil
}

// UpdateContact changes the status and/or notes of a submission (admin).
func (c *Client) UpdateContact(ctx context.Context, id string, status, notes *string) (*Contact, error) {
	body := map[string]*string{}
	if status != nil {
		body["status"] = status
	}
	if notes != nil {
		body["notes"] = notes
	}
	var resp struct {
		Contact Contact `json:"contact"`
	}
	if err := c.do(ctx, http.MethodPatch, "contacts/"+url.PathEscape(id), admin, body, &resp); err != nil {
		return nil, err
	}
	return &resp.Contact, nil
}

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name,omitempty"`
	Source         string     `json:"source,omitempty"`
	Status         string     `json:"status"`
	SubscribedAt   time.Time  `json:"subscribedAt"`
	UnsubscribedAt *time.Time `json:"unsubscribedAt,omitempty"`
}

// Subscribe adds email to the newsletter.
func (c *Client) Subscribe(ctx context.Context, email, name, source string) (*Subscriber, error) {
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	var resp struct {
		Subscriber Subscriber `json:"subscriber"`
	}
	in := map[string]string{"email": email, "name": name, "source": source}
	if err := c.do(ctx, http.MethodPost, "subscribers", public, in, &resp); err != nil {
		return nil, err
	}
	return &resp.Subscriber, nil
}

// ListSubscribers returns subscribers, optionally filtered by status (admin).
func (c *Client) ListSubscribers(ctx context.Context, status string) ([]Subscriber, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var resp struct {
		Subscribers []Subscriber `json:"subscribers"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("subscribers", q), admin, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Subscribers, nil
}

// Unsubscribe marks a subscriber as unsubscribed (admin).
func (c *Client) Unsubscribe(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "subscribers/"+url.PathEscape(id), admin, nil, nil)
}

// NewsletterDraft is a newsletter to send.
type NewsletterDraft struct {
	Subject     string `json:"subject"`
	Content     string `json:"content"`
	PreviewText string `json:"previewText,omitempty"`
}

// Newsletter is a sent issue.
type Newsletter struct {
	ID              string    `json:"id"`
	Subject         string    `json:"subject"`
	Content         string    `json:"content"`
	PreviewText     string    `json:"previewText,omitempty"`
	SentAt          time.Time `json:"sentAt"`
	SubscriberCount int       `json:"subscriberCount"`
	SuccessCount    int       `json:"successCount"`
	FailCount       int       `json:"failCount"`
	Status          string    `json:"status"`
}

// SendNewsletter validates d and sends it to every active subscriber (admin).
// An empty subject or content is rejected without contacting the server.
func (c *Client) SendNewsletter(ctx context.Context, d NewsletterDraft) (*Newsletter, error) {
	if err := ValidateNewsletter(d); err != nil {
		return nil, err
	}
	var resp struct {
		Newsletter Newsletter `json:"newsletter"`
	}
	if err := c.do(ctx, http.MethodPost, "send-newsletter", admin, d, &resp); err != nil {
		return nil, err
	}
	return &resp.Newsletter, nil
}

// ListNewsletters returns sent issues, newest first (admin).
func (c *Client) ListNewsletters(ctx context.Context) ([]Newsletter, error) {
	var resp struct {
		Newsletters []Newsletter `json:"newsletters"`
	}
	if err := c.do(ctx, http.MethodGet, "newsletters", admin, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Newsletters, nil
}

// Payment methods.
const (
	MethodMobile = "mobile"
	MethodCard   = "card"
)

// PaymentInput is what the customer entered.
type PaymentInput struct {
	Method   string       `json:"method"`
	Provider string       `json:"provider,omitempty"`
	Phone    string       `json:"phone,omitempty"`
	Card     payment.Card `json:"card"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency,omitempty"`
	Email    string       `json:"email,omitempty"`
	Item     string       `json:"item,omitempty"`
}

// PaymentResult is the terminal outcome of a payment.
type PaymentResult struct {
	Success   bool   `json:"success"`
	PaymentID string `json:"paymentId"`
	Status    string `json:"status"`
	Reference string `json:"reference"`
	Message   string `json:"message"`
}

// ProcessPayment validates in and submits it once. A declined payment is a
// result with Success false, not an error. There is no retry.
func (c *Client) ProcessPayment(ctx context.Context, in PaymentInput) (*PaymentResult, error) {
	if err := ValidatePayment(in, c.now()); err != nil {
		return nil, err
	}
	var r PaymentResult
	err := c.do(ctx, http.MethodPost, "process-payment", public, in, &r)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusPaymentRequired {
		if json.Unmarshal(apiErr.body, &r) == nil {
			return &r, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Event is a tracked interaction.
type Event struct {
	SessionID  string         `json:"sessionId"`
	Name       string         `json:"name"`
	Path       string         `json:"path,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// SendEvents posts a batch of analytics events.
func (c *Client) SendEvents(ctx context.Context, events []Event) error {
	return c.do(ctx, http.MethodPost, "analytics", public, map[string][]Event{"events": events}, nil)
}

// EventCount is one row of the analytics summary.
type EventCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// AnalyticsSummary returns event counts since the given time (admin).
// A zero since uses the server default.
func (c *Client) AnalyticsSummary(ctx context.Context, since time.Time) ([]EventCount, error) {
	q := url.Values{}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	var resp struct {
		Counts []EventCount `json:"counts"`
	}
	if err := c.do(ctx, http.MethodGet, withQuery("analytics/summary", q), admin, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Counts, nil
}

func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

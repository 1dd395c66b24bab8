package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/pkg/mobilemoney"
	"github.com/folio/backend/pkg/payment"
	pkgstripe "github.com/folio/backend/pkg/stripe"
	"github.com/google/uuid"
)

var (
	// ErrInvalidPayment wraps every input validation failure.
	ErrInvalidPayment = errors.New("invalid payment")
	// ErrGatewayUnavailable means the provider could not be reached or answered with an error.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	// ErrWebhookSignature is returned when a webhook fails signature verification.
	ErrWebhookSignature = errors.New("webhook signature verification failed")
)

// PaymentRequest is a customer's payment submission.
type PaymentRequest struct {
	Method   model.PaymentMethod
	Provider string // mobile only
	Phone    string // mobile only
	Card     payment.Card
	Amount   int64
	Currency string
	Email    string
	Item     string
}

// PaymentService charges customers and reconciles gateway notifications.
type PaymentService interface {
	// Process validates req, charges it once and returns the stored payment.
	// A declined charge is returned with status failed and a nil error.
	Process(ctx context.Context, req PaymentRequest) (*model.Payment, error)
	// ProcessWebhook verifies and applies a Stripe webhook event.
	ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// PaymentServiceImpl is the PaymentService implementation.
type PaymentServiceImpl struct {
	repo   repository.PaymentRepository
	stripe pkgstripe.Client
	mobile mobilemoney.Client
	now    func() time.Time
}

// NewPaymentService creates a PaymentService.
func NewPaymentService(repo repository.PaymentRepository, stripe pkgstripe.Client, mobile mobilemoney.Client) PaymentService {
	return &PaymentServiceImpl{repo: repo, stripe: stripe, mobile: mobile, now: time.Now}
}

func (s *PaymentServiceImpl) Process(ctx context.Context, req PaymentRequest) (*model.Payment, error) {
	if err := payment.ValidateAmount(req.Amount); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
	}

	now := s.now().UTC()
	p := &model.Payment{
		ID:        uuid.NewString(),
		Method:    req.Method,
		Amount:    req.Amount,
		Currency:  strings.ToUpper(strings.TrimSpace(req.Currency)),
		Email:     strings.TrimSpace(req.Email),
		Item:      req.Item,
		Status:    model.PaymentPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var charge func() (status model.PaymentStatus, reference, reason string, err error)
	switch req.Method {
	case model.PaymentMobile:
		msisdn, err := payment.NormalizePhone(req.Provider, req.Phone)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
		}
		p.Provider = strings.ToLower(req.Provider)
		p.MaskedAccount = payment.MaskPhone(msisdn)
		if p.Currency == "" {
			p.Currency = "TZS"
		}
		charge = func() (model.PaymentStatus, string, string, error) {
			return s.chargeMobile(ctx, p, msisdn)
		}
	case model.PaymentCard:
		if err := payment.ValidateCard(req.Card, now); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
		}
		p.Provider = "stripe"
		p.MaskedAccount = payment.MaskCard(req.Card.Number)
		if p.Currency == "" {
			p.Currency = "USD"
		}
		charge = func() (model.PaymentStatus, string, string, error) {
			return s.chargeCard(ctx, p, req.Card)
		}
	default:
		return nil, fmt.Errorf("%w: unknown method %q", ErrInvalidPayment, req.Method)
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("store payment: %w", err)
	}

	status, reference, reason, chargeErr := charge()
	if chargeErr != nil {
		slog.ErrorContext(ctx, "payment gateway error", "payment_id", p.ID, "method", p.Method, "error", chargeErr)
		status, reason = model.PaymentFailed, "gateway unavailable"
	}
	p.Status, p.Reference, p.FailureReason = status, reference, reason
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateResult(ctx, p.ID, status, reference, reason); err != nil {
		slog.ErrorContext(ctx, "store payment result failed", "payment_id", p.ID, "error", err)
	}
	slog.InfoContext(ctx, "payment processed", "payment_id", p.ID, "method", p.Method, "status", p.Status)

	if chargeErr != nil {
		return p, fmt.Errorf("%w: %w", ErrGatewayUnavailable, chargeErr)
	}
	return p, nil
}

func (s *PaymentServiceImpl) chargeMobile(ctx context.Context, p *model.Payment, msisdn string) (model.PaymentStatus, string, string, error) {
	res, err := s.mobile.Charge(ctx, mobilemoney.ChargeRequest{
		Provider:    p.Provider,
		MSISDN:      msisdn,
		Amount:      p.Amount,
		Currency:    p.Currency,
		Reference:   p.ID,
		Description: p.Item,
	})
	if err != nil {
		return "", "", "", err
	}
	switch {
	case res.Succeeded():
		return model.PaymentCompleted, res.TransactionID, "", nil
	case strings.EqualFold(res.Status, "PENDING"):
		return model.PaymentPending, res.TransactionID, "", nil
	default:
		return model.PaymentFailed, res.TransactionID, res.Message, nil
	}
}

func (s *PaymentServiceImpl) chargeCard(ctx context.Context, p *model.Payment, card payment.Card) (model.PaymentStatus, string, string, error) {
	month, year := parseExpiry(card.Expiry)
	pi, err := s.stripe.CreatePaymentIntent(ctx, pkgstripe.ChargeParams{
		Amount:      p.Amount,
		Currency:    p.Currency,
		CardNumber:  payment.CardNumber(card),
		ExpMonth:    month,
		ExpYear:     year,
		CVC:         strings.TrimSpace(card.CVV),
		Holder:      strings.TrimSpace(card.Holder),
		Email:       p.Email,
		Description: p.Item,
		PaymentID:   p.ID,
	})
	if err != nil {
		return "", "", "", err
	}
	if pi.Succeeded() {
		return model.PaymentCompleted, pi.ID, "", nil
	}
	reason := "card declined"
	if pi.LastError != nil && pi.LastError.Message != "" {
		reason = pi.LastError.Message
	}
	return model.PaymentFailed, pi.ID, reason, nil
}

// parseExpiry splits an already validated MM/YY expiry.
func parseExpiry(expiry string) (month, year int) {
	parts := strings.SplitN(strings.TrimSpace(expiry), "/", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	month, _ = strconv.Atoi(parts[0])
	yy, _ := strconv.Atoi(parts[1])
	return month, 2000 + yy
}

// ProcessWebhook verifies the signature and reconciles the payment referenced by the event.
func (s *PaymentServiceImpl) ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if err := s.stripe.VerifyWebhookSignature(payload, sigHeader); err != nil {
		return fmt.Errorf("%w: %w", ErrWebhookSignature, err)
	}
	event, err := s.stripe.ParseWebhookEvent(payload)
	if err != nil {
		return err
	}

	obj := event.Data.Object
	var status model.PaymentStatus
	var reason string
	switch event.Type {
	case "payment_intent.succeeded":
		status = model.PaymentCompleted
	case "payment_intent.payment_failed":
		status = model.PaymentFailed
		reason = "card declined"
		if obj.LastError != nil && obj.LastError.Message != "" {
			reason = obj.LastError.Message
		}
	default:
		return nil
	}
	if obj.ID == "" {
		return errors.New("stripe webhook: " + event.Type + " missing payment intent ID")
	}

	err = s.repo.UpdateStatusByReference(ctx, obj.ID, status, reason)
	if errors.Is(err, repository.ErrNotFound) {
		slog.WarnContext(ctx, "stripe webhook for unknown payment", "payment_intent", obj.ID, "type", event.Type)
		return nil
	}
	return err
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/repository"
	"github.com/folio/backend/pkg/mobilemoney"
	"github.com/folio/backend/pkg/payment"
	pkgstripe "github.com/folio/backend/pkg/stripe"
)

// ---------------------------------------------------------------------------
// mocks
// ---------------------------------------------------------------------------

type mockPaymentRepository struct {
	created      *model.Payment
	createFunc   func(ctx context.Context, p *model.Payment) error
	updateResult func(ctx context.Context, id string, status model.PaymentStatus, reference, reason string) error
	updateByRef  func(ctx context.Context, reference string, status model.PaymentStatus, reason string) error
}

func (m *mockPaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	cp := *p
	m.created = &cp
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	return nil
}

func (m *mockPaymentRepository) UpdateResult(ctx context.Context, id string, status model.PaymentStatus, reference, reason string) error {
	if m.updateResult != nil {
		return m.updateResult(ctx, id, status, reference, reason)
	}
	return nil
}

func (m *mockPaymentRepository) UpdateStatusByReference(ctx context.Context, reference string, status model.PaymentStatus, reason string) error {
	if m.updateByRef != nil {
		return m.updateByRef(ctx, reference, status, reason)
	}
	return nil
}

type mockStripeClient struct {
	createFunc func(ctx context.Context, params pkgstripe.ChargeParams) (pkgstripe.PaymentIntent, error)
	verifyFunc func(payload []byte, sig string) error
	parseFunc  func(payload []byte) (pkgstripe.WebhookEvent, error)
}

func (m *mockStripeClient) CreatePaymentIntent(ctx context.Context, params pkgstripe.ChargeParams) (pkgstripe.PaymentIntent, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, params)
	}
	return pkgstripe.PaymentIntent{ID: "pi_default", Status: "succeeded"}, nil
}

func (m *mockStripeClient) VerifyWebhookSignature(payload []byte, sig string) error {
	if m.verifyFunc != nil {
		return m.verifyFunc(payload, sig)
	}
	return nil
}

func (m *mockStripeClient) ParseWebhookEvent(payload []byte) (pkgstripe.WebhookEvent, error) {
	if m.parseFunc != nil {
		return m.parseFunc(payload)
	}
	return pkgstripe.WebhookEvent{}, nil
}

type mockMobileClient struct {
	chargeFunc func(ctx context.Context, req mobilemoney.ChargeRequest) (mobilemoney.ChargeResult, error)
}

func (m *mockMobileClient) Charge(ctx context.Context, req mobilemoney.ChargeRequest) (mobilemoney.ChargeResult, error) {
	if m.chargeFunc != nil {
		return m.chargeFunc(ctx, req)
	}
	return mobilemoney.ChargeResult{TransactionID: "mm_default", Status: "SUCCESSFUL"}, nil
}

var paymentNow = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

func newTestPaymentService(repo *mockPaymentRepository, sc *mockStripeClient, mc *mockMobileClient) *PaymentServiceImpl {
	return &PaymentServiceImpl{repo: repo, stripe: sc, mobile: mc, now: func() time.Time { return paymentNow }}
}

func cardRequest() PaymentRequest {
	return PaymentRequest{
		Method: model.PaymentCard,
		Card: payment.Card{
			Number: "4242 4242 4242 4242",
			Expiry: "12/28",
			CVV:    "123",
			Holder: "Amina Juma",
		},
		Amount: 2500,
		Email:  "amina@example.com",
		Item:   "resume-template-pro",
	}
}

// ---------------------------------------------------------------------------
// Process
// ---------------------------------------------------------------------------

func TestPaymentService_Process_MobileSuccess(t *testing.T) {
	repo := &mockPaymentRepository{}
	var got mobilemoney.ChargeRequest
	mc := &mockMobileClient{
		chargeFunc: func(ctx context.Context, req mobilemoney.ChargeRequest) (mobilemoney.ChargeResult, error) {
			got = req
			return mobilemoney.ChargeResult{TransactionID: "MP123", Status: "SUCCESSFUL"}, nil
		},
	}
	var updStatus model.PaymentStatus
	var updRef string
	repo.updateResult = func(ctx context.Context, id string, status model.PaymentStatus, reference, reason string) error {
		updStatus, updRef = status, reference
		return nil
	}
	svc := newTestPaymentService(repo, &mockStripeClient{}, mc)

	p, err := svc.Process(context.Background(), PaymentRequest{
		Method:   model.PaymentMobile,
		Provider: "mpesa",
		Phone:    "0754123456",
		Amount:   15000,
		Item:     "consultation",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if repo.created == nil || repo.created.Status != model.PaymentPending {
		t.Fatalf("expected a pending record before charging, got %+v", repo.created)
	}
	if got.MSISDN != "255754123456" {
		t.Errorf("expected normalised MSISDN, got %q", got.MSISDN)
	}
	if got.Reference != p.ID {
		t.Errorf("expected gateway reference to be the payment ID")
	}
	if p.Currency != "TZS" {
		t.Errorf("expected default currency TZS, got %q", p.Currency)
	}
	if p.Status != model.PaymentCompleted || p.Reference != "MP123" {
		t.Errorf("unexpected result: status=%q ref=%q", p.Status, p.Reference)
	}
	if updStatus != model.PaymentCompleted || updRef != "MP123" {
		t.Errorf("expected stored result completed/MP123, got %q/%q", updStatus, updRef)
	}
	if p.MaskedAccount != "255******456" {
		t.Errorf("unexpected mask %q", p.MaskedAccount)
	}
}

func TestPaymentService_Process_MobileWrongNetwork(t *testing.T) {
	repo := &mockPaymentRepository{}
	charged := false
	mc := &mockMobileClient{
		chargeFunc: func(ctx context.Context, req mobilemoney.ChargeRequest) (mobilemoney.ChargeResult, error) {
			charged = true
			return mobilemoney.ChargeResult{}, nil
		},
	}
	svc := newTestPaymentService(repo, &mockStripeClient{}, mc)

	_, err := svc.Process(context.Background(), PaymentRequest{
		Method: model.PaymentMobile, Provider: "tigopesa", Phone: "0754123456", Amount: 100,
	})
	if !errors.Is(err, ErrInvalidPayment) || !errors.Is(err, payment.ErrProviderNetwork) {
		t.Fatalf("expected ErrInvalidPayment wrapping ErrProviderNetwork, got %v", err)
	}
	if charged || repo.created != nil {
		t.Error("invalid input must not reach the store or the gateway")
	}
}

func TestPaymentService_Process_MobilePending(t *testing.T) {
	mc := &mockMobileClient{
		chargeFunc: func(ctx context.Context, req mobilemoney.ChargeRequest) (mobilemoney.ChargeResult, error) {
			return mobilemoney.ChargeResult{TransactionID: "T9", Status: "PENDING"}, nil
		},
	}
	svc := newTestPaymentService(&mockPaymentRepository{}, &mockStripeClient{}, mc)

	p, err := svc.Process(context.Background(), PaymentRequest{
		Method: model.PaymentMobile, Provider: "airtelmoney", Phone: "+255 68 1234567", Amount: 100,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != model.PaymentPending {
		t.Errorf("expected pending, got %q", p.Status)
	}
}

func TestPaymentService_Process_CardSuccess(t *testing.T) {
	var got pkgstripe.ChargeParams
	sc := &mockStripeClient{
		createFunc: func(ctx context.Context, params pkgstripe.ChargeParams) (pkgstripe.PaymentIntent, error) {
			got = params
			return pkgstripe.PaymentIntent{ID: "pi_1", Status: "succeeded"}, nil
		},
	}
	svc := newTestPaymentService(&mockPaymentRepository{}, sc, &mockMobileClient{})

	p, err := svc.Process(context.Background(), cardRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CardNumber != "4242424242424242" || got.ExpMonth != 12 || got.ExpYear != 2028 {
		t.Errorf("unexpected charge params: %+v", got)
	}
	if got.PaymentID != p.ID || got.Currency != "USD" {
		t.Errorf("expected payment ID metadata and USD, got %q %q", got.PaymentID, got.Currency)
	}
	if p.Status != model.PaymentCompleted || p.Reference != "pi_1" {
		t.Errorf("unexpected result %q %q", p.Status, p.Reference)
	}
	if p.MaskedAccount != "**** 4242" || p.Provider != "stripe" {
		t.Errorf("unexpected mask/provider %q %q", p.MaskedAccount, p.Provider)
	}
}

func TestPaymentService_Process_CardDeclined(t *testing.T) {
	sc := &mockStripeClient{
		createFunc: func(ctx context.Context, params pkgstripe.ChargeParams) (pkgstripe.PaymentIntent, error) {
			return pkgstripe.PaymentIntent{
				ID:        "pi_2",
				Status:    "requires_payment_method",
				LastError: &pkgstripe.PaymentError{Message: "Your card was declined."},
			}, nil
		},
	}
	svc := newTestPaymentService(&mockPaymentRepository{}, sc, &mockMobileClient{})

	p, err := svc.Process(context.Background(), cardRequest())
	if err != nil {
		t.Fatalf("a decline is not an error: %v", err)
	}
	if p.Status != model.PaymentFailed || p.FailureReason != "Your card was declined." {
		t.Errorf("unexpected result %q %q", p.Status, p.FailureReason)
	}
}

func TestPaymentService_Process_CardExpired(t *testing.T) {
	req := cardRequest()
	req.Card.Expiry = "05/26"
	svc := newTestPaymentService(&mockPaymentRepository{}, &mockStripeClient{}, &mockMobileClient{})

	if _, err := svc.Process(context.Background(), req); !errors.Is(err, payment.ErrCardExpired) {
		t.Fatalf("expected ErrCardExpired, got %v", err)
	}
}

func TestPaymentService_Process_GatewayError(t *testing.T) {
	var storedStatus model.PaymentStatus
	repo := &mockPaymentRepository{
		updateResult: func(ctx context.Context, id string, status model.PaymentStatus, reference, reason string) error {
			storedStatus = status
			return nil
		},
	}
	sc := &mockStripeClient{
		createFunc: func(ctx context.Context, params pkgstripe.ChargeParams) (pkgstripe.PaymentIntent, error) {
			return pkgstripe.PaymentIntent{}, errors.New("connection reset")
		},
	}
	svc := newTestPaymentService(repo, sc, &mockMobileClient{})

	p, err := svc.Process(context.Background(), cardRequest())
	if !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("expected ErrGatewayUnavailable, got %v", err)
	}
	if p == nil || p.Status != model.PaymentFailed {
		t.Fatalf("expected failed payment to be returned, got %+v", p)
	}
	if storedStatus != model.PaymentFailed {
		t.Errorf("expected failed status stored, got %q", storedStatus)
	}
}

func TestPaymentService_Process_InvalidAmountAndMethod(t *testing.T) {
	svc := newTestPaymentService(&mockPaymentRepository{}, &mockStripeClient{}, &mockMobileClient{})

	req := cardRequest()
	req.Amount = 0
	if _, err := svc.Process(context.Background(), req); !errors.Is(err, payment.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	req = cardRequest()
	req.Method = "bank"
	if _, err := svc.Process(context.Background(), req); !errors.Is(err, ErrInvalidPayment) {
		t.Errorf("expected ErrInvalidPayment, got %v", err)
	}
}

// ---------------------------------------------------------------------------
// ProcessWebhook
// ---------------------------------------------------------------------------

func webhookEvent(typ, id, failure string) pkgstripe.WebhookEvent {
	var ev pkgstripe.WebhookEvent
	ev.Type = typ
	ev.Data.Object.ID = id
	if failure != "" {
		ev.Data.Object.LastError = &pkgstripe.PaymentError{Message: failure}
	}
	return ev
}

func TestPaymentService_ProcessWebhook_Succeeded(t *testing.T) {
	var ref string
	var status model.PaymentStatus
	repo := &mockPaymentRepository{
		updateByRef: func(ctx context.Context, reference string, s model.PaymentStatus, reason string) error {
			ref, status = reference, s
			return nil
		},
	}
	sc := &mockStripeClient{
		parseFunc: func(payload []byte) (pkgstripe.WebhookEvent, error) {
			return webhookEvent("payment_intent.succeeded", "pi_9", ""), nil
		},
	}
	svc := newTestPaymentService(repo, sc, &mockMobileClient{})

	if err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref != "pi_9" || status != model.PaymentCompleted {
		t.Errorf("expected pi_9 completed, got %q %q", ref, status)
	}
}

func TestPaymentService_ProcessWebhook_Failed(t *testing.T) {
	var reason string
	repo := &mockPaymentRepository{
		updateByRef: func(ctx context.Context, reference string, s model.PaymentStatus, r string) error {
			reason = r
			return nil
		},
	}
	sc := &mockStripeClient{
		parseFunc: func(payload []byte) (pkgstripe.WebhookEvent, error) {
			return webhookEvent("payment_intent.payment_failed", "pi_9", "insufficient funds"), nil
		},
	}
	svc := newTestPaymentService(repo, sc, &mockMobileClient{})

	if err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != "insufficient funds" {
		t.Errorf("expected failure reason, got %q", reason)
	}
}

func TestPaymentService_ProcessWebhook_BadSignature(t *testing.T) {
	parsed := false
	sc := &mockStripeClient{
		verifyFunc: func(payload []byte, sig string) error { return errors.New("bad sig") },
		parseFunc: func(payload []byte) (pkgstripe.WebhookEvent, error) {
			parsed = true
			return pkgstripe.WebhookEvent{}, nil
		},
	}
	svc := newTestPaymentService(&mockPaymentRepository{}, sc, &mockMobileClient{})

	if err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig"); !errors.Is(err, ErrWebhookSignature) {
		t.Fatalf("expected ErrWebhookSignature, got %v", err)
	}
	if parsed {
		t.Error("payload must not be parsed before verification")
	}
}

func TestPaymentService_ProcessWebhook_UnknownPaymentIgnored(t *testing.T) {
	repo := &mockPaymentRepository{
		updateByRef: func(ctx context.Context, reference string, s model.PaymentStatus, r string) error {
			return repository.ErrNotFound
		},
	}
	sc := &mockStripeClient{
		parseFunc: func(payload []byte) (pkgstripe.WebhookEvent, error) {
			return webhookEvent("payment_intent.succeeded", "pi_unknown", ""), nil
		},
	}
	svc := newTestPaymentService(repo, sc, &mockMobileClient{})

	if err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unknown payments should be acknowledged, got %v", err)
	}
}

func TestPaymentService_ProcessWebhook_IgnoresOtherEvents(t *testing.T) {
	called := false
	repo := &mockPaymentRepository{
		updateByRef: func(ctx context.Context, reference string, s model.PaymentStatus, r string) error {
			called = true
			return nil
		},
	}
	sc := &mockStripeClient{
		parseFunc: func(payload []byte) (pkgstripe.WebhookEvent, error) {
			return webhookEvent("charge.refunded", "ch_1", ""), nil
		},
	}
	svc := newTestPaymentService(repo, sc, &mockMobileClient{})

	if err := svc.ProcessWebhook(context.Background(), []byte(`{}`), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("unrelated events must not touch payments")
	}
}

package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/folio/backend/internal/model"
	"github.com/folio/backend/internal/service"
	"github.com/folio/backend/pkg/payment"
)

// PaymentHandler handles customer payments and Stripe webhooks.
type PaymentHandler struct {
	svc service.PaymentService
}

// NewPaymentHandler creates a PaymentHandler.
func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

type processPaymentRequest struct {
	Method   string       `json:"method"`
	Provider string       `json:"provider"`
	Phone    string       `json:"phone"`
	Card     payment.Card `json:"card"`
	Amount   int64        `json:"amount"`
	Currency string       `json:"currency"`
	Email    string       `json:"email"`
	Item     string       `json:"item"`
}

type paymentResponse struct {
	Success   bool                `json:"success"`
	PaymentID string              `json:"paymentId,omitempty"`
	Status    model.PaymentStatus `json:"status,omitempty"`
	Reference string              `json:"reference,omitempty"`
	Message   string              `json:"message"`
	Error     string              `json:"error,omitempty"`
}

// Process handles POST process-payment. The response is terminal: the client
// neither polls nor retries.
func (h *PaymentHandler) Process(w http.ResponseWriter, r *http.Request) {
	var req processPaymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	p, err := h.svc.Process(r.Context(), service.PaymentRequest{
		Method:   model.PaymentMethod(req.Method),
		Provider: req.Provider,
		Phone:    req.Phone,
		Card:     req.Card,
		Amount:   req.Amount,
		Currency: req.Currency,
		Email:    req.Email,
		Item:     req.Item,
	})
	switch {
	case errors.Is(err, service.ErrInvalidPayment):
		writeJSON(w, http.StatusBadRequest, paymentResponse{
			Error:   "invalid_payment",
			Message: validationMessage(err),
		})
		return
	case errors.Is(err, service.ErrGatewayUnavailable):
		writeJSON(w, http.StatusBadGateway, paymentResponse{
			PaymentID: p.ID,
			Status:    p.Status,
			Error:     "gateway_unavailable",
			Message:   "The payment provider could not be reached. You have not been charged.",
		})
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "process payment failed", "error", err)
		writeError(w, http.StatusInternalServerError, "payment_failed")
		return
	}

	resp := paymentResponse{
		PaymentID: p.ID,
		Status:    p.Status,
		Reference: p.Reference,
	}
	status := http.StatusOK
	switch p.Status {
	case model.PaymentCompleted:
		resp.Success = true
		resp.Message = "Payment completed"
	case model.PaymentPending:
		status = http.StatusAccepted
		resp.Message = "Payment is awaiting confirmation on your phone"
	default:
		status = http.StatusPaymentRequired
		resp.Error = "payment_declined"
		resp.Message = p.FailureReason
	}
	writeJSON(w, status, resp)
}

// validationMessage turns a wrapped payment validation error into a user-facing sentence.
func validationMessage(err error) string {
	for _, e := range []error{
		payment.ErrUnknownProvider, payment.ErrInvalidPhone, payment.ErrProviderNetwork,
		payment.ErrInvalidCard, payment.ErrCardChecksum, payment.ErrInvalidExpiry,
		payment.ErrCardExpired, payment.ErrInvalidCVV, payment.ErrHolderRequired,
		payment.ErrInvalidAmount,
	} {
		if errors.Is(err, e) {
			msg := strings.TrimPrefix(e.Error(), "payment: ")
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return "Invalid payment details"
}

// StripeWebhook handles POST webhooks/stripe.
// The Stripe signature replaces the anon key on this route.
func (h *PaymentHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	sigHeader := r.Header.Get("Stripe-Signature")
	if sigHeader == "" {
		writeError(w, http.StatusBadRequest, "missing_signature")
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read_body_failed")
		return
	}

	if err := h.svc.ProcessWebhook(r.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, service.ErrWebhookSignature) {
			writeError(w, http.StatusUnauthorized, "signature_verification_failed")
			return
		}
		slog.ErrorContext(r.Context(), "stripe webhook failed", "error", err)
		writeError(w, http.StatusInternalServerError, "webhook_processing_failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

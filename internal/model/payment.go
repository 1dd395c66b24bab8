package model

import "time"

// PaymentMethod is how a customer pays.
type PaymentMethod string

const (
	PaymentMobile PaymentMethod = "mobile"
	PaymentCard   PaymentMethod = "card"
)

// PaymentStatus is the terminal or pending state of a payment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// Payment records a single charge attempt.
type Payment struct {
	ID            string        `json:"id"`
	Method        PaymentMethod `json:"method"`
	Provider      string        `json:"provider"`
	Amount        int64         `json:"amount"`
	Currency      string        `json:"currency"`
	Email         string        `json:"email,omitempty"`
	Item          string        `json:"item,omitempty"`
	Status        PaymentStatus `json:"status"`
	Reference     string        `json:"reference,omitempty"`
	MaskedAccount string        `json:"maskedAccount,omitempty"`
	FailureReason string        `json:"failureReason,omitempty"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

package model

import "time"

// NewsletterStatus summarises the delivery outcome of a newsletter.
type NewsletterStatus string

const (
	NewsletterSent    NewsletterStatus = "sent"
	NewsletterPartial NewsletterStatus = "partial"
	NewsletterFailed  NewsletterStatus = "failed"
)

// Newsletter is an issue that has been sent to subscribers. It is immutable once stored.
type Newsletter struct {
	ID              string           `json:"id"`
	Subject         string           `json:"subject"`
	Content         string           `json:"content"`
	PreviewText     string           `json:"previewText,omitempty"`
	SentAt          time.Time        `json:"sentAt"`
	SubscriberCount int              `json:"subscriberCount"`
	SuccessCount    int              `json:"successCount"`
	FailCount       int              `json:"failCount"`
	Status          NewsletterStatus `json:"status"`
}

// DeliveryStatus derives the newsletter status from per-recipient results.
func DeliveryStatus(success, fail int) NewsletterStatus {
	switch {
	case fail == 0:
		return NewsletterSent
	case success == 0:
		return NewsletterFailed
	default:
		return NewsletterPartial
	}
}

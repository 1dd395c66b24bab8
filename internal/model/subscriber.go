package model

import "time"

// SubscriberStatus enumerates the states a newsletter subscriber can be in.
type SubscriberStatus string

const (
	SubscriberActive       SubscriberStatus = "active"
	SubscriberUnsubscribed SubscriberStatus = "unsubscribed"
)

// Subscriber is a newsletter recipient.
type Subscriber struct {
	ID             string           `json:"id"`
	Email          string           `json:"email"`
	Name           string           `json:"name,omitempty"`
	Source         string           `json:"source,omitempty"`
	Status         SubscriberStatus `json:"status"`
	SubscribedAt   time.Time        `json:"subscribedAt"`
	UnsubscribedAt *time.Time       `json:"unsubscribedAt,omitempty"`
}

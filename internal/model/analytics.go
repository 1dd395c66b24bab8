package model

import (
	"encoding/json"
	"time"
)

// AnalyticsEvent is a single tracked interaction from the site.
type AnalyticsEvent struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"sessionId"`
	Name       string          `json:"name"`
	Path       string          `json:"path,omitempty"`
	Properties json.RawMessage `json:"properties,omitempty"`
	OccurredAt time.Time       `json:"occurredAt"`
	ReceivedAt time.Time       `json:"receivedAt"`
}

// EventCount is one row of an analytics summary.
type EventCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

package client

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MaxQueuedEvents is the tracker's queue size and the largest batch it sends.
const MaxQueuedEvents = 20

// EventSender delivers a batch of events. *Client implements it.
type EventSender interface {
	SendEvents(ctx context.Context, events []Event) error
}

// TrackerOptions configures a Tracker.
type TrackerOptions struct {
	// Enabled turns tracking on. A disabled tracker records and sends nothing.
	Enabled bool
	// SessionID identifies the visitor session. Generated when empty.
	SessionID string
	Now       func() time.Time
}

// Tracker queues analytics events and sends them in batches.
type Tracker struct {
	enabled   bool
	sender    EventSender
	sessionID string
	now       func() time.Time

	mu    sync.Mutex
	queue []Event
}

// NewTracker creates a Tracker delivering through sender.
func NewTracker(sender EventSender, opts TrackerOptions) *Tracker {
	if opts.SessionID == "" {
		opts.SessionID = uuid.NewString()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Tracker{
		enabled:   opts.Enabled,
		sender:    sender,
		sessionID: opts.SessionID,
		now:       opts.Now,
	}
}

// Enabled reports whether the tracker records events.
func (t *Tracker) Enabled() bool { return t.enabled }

// SessionID returns the visitor session identifier attached to every event.
func (t *Tracker) SessionID() string { return t.sessionID }

// Track queues an event. When the queue is full the oldest event is dropped.
func (t *Tracker) Track(name, path string, props map[string]any) {
	if !t.enabled || name == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.queue = append(t.queue, Event{
		SessionID:  t.sessionID,
		Name:       name,
		Path:       path,
		Properties: props,
		OccurredAt: t.now().UTC(),
	})
	if over := len(t.queue) - MaxQueuedEvents; over > 0 {
		t.queue = append(t.queue[:0:0], t.queue[over:]...)
	}
}

// Pending returns the number of queued events.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.queue)
}

// Flush sends the queued events. Delivery failures are logged at DEBUG and
// the batch is dropped; analytics never surfaces an error to the caller.
func (t *Tracker) Flush(ctx context.Context) {
	if !t.enabled {
		return
	}
	t.mu.Lock()
	batch := t.queue
	t.queue = nil
	t.mu.Unlock()

	if len(batch) == 0 {
		return
	}
	if err := t.sender.SendEvents(ctx, batch); err != nil {
		slog.Debug("analytics flush failed", "events", len(batch), "error", err)
	}
}

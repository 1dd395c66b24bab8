package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// State is where the admin session is in its lifecycle.
type State string

const (
	StateAnonymous      State = "anonymous"
	StateAuthenticating State = "authenticating"
	StateAuthenticated  State = "authenticated"
	StateExpiringSoon   State = "expiring-soon"
	// StateExpired is transient: observers see it, then the session returns to anonymous.
	StateExpired State = "expired"
)

const (
	// ExpiryWarning is how long before expiry the session reports expiring-soon.
	ExpiryWarning = 30 * time.Minute
	// DefaultPollInterval is how often Watch re-checks expiry.
	DefaultPollInterval = 60 * time.Second
)

// StoredSession is what a SessionStore persists.
type StoredSession struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionStore persists the admin session between calls.
// Load returns (nil, nil) when nothing is stored.
type SessionStore interface {
	Load() (*StoredSession, error)
	Save(s *StoredSession) error
	Clear() error
}

// MemoryStore keeps the session for the life of the process.
type MemoryStore struct {
	mu sync.Mutex
	s  *StoredSession
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (*StoredSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s == nil {
		return nil, nil
	}
	cp := *m.s
	return &cp, nil
}

func (m *MemoryStore) Save(s *StoredSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.s = &cp
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = nil
	return nil
}

// FileStore keeps the session in a JSON file readable only by the owner.
type FileStore struct {
	Path string
}

func (f FileStore) Load() (*StoredSession, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s StoredSession
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("session file %s: %w", f.Path, err)
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

func (f FileStore) Save(s *StoredSession) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}
	b, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.Path, b, 0o600)
}

func (f FileStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Session tracks the admin token and its expiry. The server is the authority
// on validity; Session only mirrors it so callers can warn before it lapses.
type Session struct {
	mu        sync.Mutex
	store     SessionStore
	now       func() time.Time
	state     State
	observers []func(State)
}

// NewSession creates a Session over store. A nil now means time.Now.
func NewSession(store SessionStore, now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{store: store, now: now, state: StateAnonymous}
}

// OnChange registers fn to be called on every state transition.
// fn runs synchronously and must not call back into the Session.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, fn)
}

// State returns the last observed state without re-checking expiry.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ExpiresAt returns the stored expiry, or the zero time when signed out.
func (s *Session) ExpiresAt() time.Time {
	stored, _ := s.store.Load()
	if stored == nil {
		return time.Time{}
	}
	return stored.ExpiresAt
}

// Token returns the stored token if it has not expired locally.
func (s *Session) Token() (string, bool) {
	if st := s.Check(s.now()); st != StateAuthenticated && st != StateExpiringSoon {
		return "", false
	}
	stored, err := s.store.Load()
	if err != nil || stored == nil {
		return "", false
	}
	return stored.Token, true
}

// Check recomputes the state at now. A session at or past its expiry is
// cleared and reported as expired once before returning to anonymous.
func (s *Session) Check(now time.Time) State {
	s.mu.Lock()
	if s.state == StateAuthenticating {
		s.mu.Unlock()
		return StateAuthenticating
	}
	stored, err := s.store.Load()
	if err != nil || stored == nil {
		s.mu.Unlock()
		s.transition(StateAnonymous)
		return StateAnonymous
	}
	remaining := stored.ExpiresAt.Sub(now)
	s.mu.Unlock()

	switch {
	case remaining <= 0:
		s.Expire()
		return StateExpired
	case remaining < ExpiryWarning:
		s.transition(StateExpiringSoon)
		return StateExpiringSoon
	default:
		s.transition(StateAuthenticated)
		return StateAuthenticated
	}
}

// Remaining returns the time left on the session at now, or 0 when signed out.
func (s *Session) Remaining(now time.Time) time.Duration {
	exp := s.ExpiresAt()
	if exp.IsZero() || !exp.After(now) {
		return 0
	}
	return exp.Sub(now)
}

// Expire clears the stored session and notifies observers of the expiry.
func (s *Session) Expire() {
	_ = s.store.Clear()
	s.transition(StateExpired)
	s.transition(StateAnonymous)
}

// Logout clears the local session. The token stays valid on the server until
// it expires; use an emergency reset to revoke it.
func (s *Session) Logout() error {
	if err := s.store.Clear(); err != nil {
		return err
	}
	s.transition(StateAnonymous)
	return nil
}

// Watch calls Check every interval until ctx is done. A non-positive
// interval means DefaultPollInterval.
func (s *Session) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(s.now())
		}
	}
}

func (s *Session) beginLogin() {
	s.transition(StateAuthenticating)
}

func (s *Session) completeLogin(token string, expiresAt time.Time) error {
	if err := s.store.Save(&StoredSession{Token: token, ExpiresAt: expiresAt}); err != nil {
		s.transition(StateAnonymous)
		return fmt.Errorf("client: save session: %w", err)
	}
	s.mu.Lock()
	s.state = StateAnonymous // let Check compute the real state
	s.mu.Unlock()
	s.Check(s.now())
	return nil
}

func (s *Session) failLogin() {
	s.transition(StateAnonymous)
}

func (s *Session) transition(next State) {
	s.mu.Lock()
	if s.state == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	observers := append([]func(State){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(next)
	}
}

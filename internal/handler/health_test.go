package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type mockDB struct {
	pingFunc func(ctx context.Context) error
}

func (m *mockDB) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

func getHealth(t *testing.T, db *mockDB) (int, healthResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	New(db, "https://folio.example").Health(rec, httptest.NewRequest("GET", apiBase+"health", nil))

	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, resp
}

func TestHealth_OK(t *testing.T) {
	code, resp := getHealth(t, &mockDB{})
	if code != http.StatusOK {
		t.Errorf("expected 200, got %d", code)
	}
	if resp.Status != "ok" || resp.Message != "folio API" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	code, resp := getHealth(t, &mockDB{
		pingFunc: func(ctx context.Context) error { return errors.New("connection refused") },
	})
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if resp.Status != "unhealthy" || resp.Message != "connection refused" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestHealth_PingTimeout(t *testing.T) {
	old := healthTimeout
	healthTimeout = 10 * time.Millisecond
	defer func() { healthTimeout = old }()

	code, resp := getHealth(t, &mockDB{
		pingFunc: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	if code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", code)
	}
	if resp.Message != context.DeadlineExceeded.Error() {
		t.Errorf("expected deadline error, got %q", resp.Message)
	}
}

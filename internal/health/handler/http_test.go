package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mockPinger implements Pinger for tests.
type mockPinger struct {
	pingErr error
}

func (m *mockPinger) PingContext(context.Context) error {
	return m.pingErr
}

// mockPolicyChecker implements PolicyChecker for tests.
type mockPolicyChecker struct {
	healthErr error
}

func (m *mockPolicyChecker) HealthCheck(context.Context) error {
	return m.healthErr
}

func check(t *testing.T, h *Handler) (int, Status) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	var s Status
	if err := json.Unmarshal(rec.Body.Bytes(), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, s
}

func TestHealthCheck_NoDependencies(t *testing.T) {
	code, s := check(t, NewHandler(nil, nil))
	if code != http.StatusOK || s.Status != "serving" {
		t.Errorf("got %d %+v, want 200 serving", code, s)
	}
}

func TestHealthCheck_AllHealthy(t *testing.T) {
	code, s := check(t, NewHandler(&mockPinger{}, &mockPolicyChecker{}))
	if code != http.StatusOK || s.Status != "serving" {
		t.Errorf("got %d %+v, want 200 serving", code, s)
	}
	if s.Checks["database"] != "ok" || s.Checks["policy"] != "ok" {
		t.Errorf("checks = %v", s.Checks)
	}
}

func TestHealthCheck_PingerFailure(t *testing.T) {
	code, s := check(t, NewHandler(&mockPinger{pingErr: errors.New("connection refused")}, &mockPolicyChecker{}))
	if code != http.StatusServiceUnavailable || s.Status != "not_serving" {
		t.Errorf("got %d %+v, want 503 not_serving", code, s)
	}
	if s.Checks["database"] != "unavailable" {
		t.Errorf("database check = %q", s.Checks["database"])
	}
}

func TestHealthCheck_PolicyFailure(t *testing.T) {
	code, s := check(t, NewHandler(&mockPinger{}, &mockPolicyChecker{healthErr: errors.New("compile")}))
	if code != http.StatusServiceUnavailable {
		t.Errorf("status code = %d, want 503", code)
	}
	if s.Checks["policy"] != "unavailable" {
		t.Errorf("policy check = %q", s.Checks["policy"])
	}
}

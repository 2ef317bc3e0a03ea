// Package handler reports service readiness over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"soundvault/internal/server/httpx"
)

const checkTimeout = 2 * time.Second

// Pinger checks database connectivity.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PolicyChecker checks that the policy engine can evaluate.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves /health.
type Handler struct {
	db     Pinger
	policy PolicyChecker
}

// NewHandler returns a health handler. Nil dependencies are skipped.
func NewHandler(db Pinger, policy PolicyChecker) *Handler {
	return &Handler{db: db, policy: policy}
}

// Register mounts the route on r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HealthCheck)
}

// Status is the health response body.
type Status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// HealthCheck returns 200 when every dependency answers and 503 otherwise.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	checks := map[string]string{}
	healthy := true
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			checks["database"] = "unavailable"
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			checks["policy"] = "unavailable"
			healthy = false
		} else {
			checks["policy"] = "ok"
		}
	}

	if !healthy {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, Status{Status: "not_serving", Checks: checks})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, Status{Status: "serving", Checks: checks})
}

// Package server assembles the HTTP API from the domain handlers.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	audiohandler "soundvault/internal/audio/handler"
	healthhandler "soundvault/internal/health/handler"
	"soundvault/internal/security"
	"soundvault/internal/server/httpx"
	"soundvault/internal/server/middleware"
	sessionhandler "soundvault/internal/session/handler"
	userhandler "soundvault/internal/user/handler"
)

// APIPrefix is the path prefix every route is mounted under.
const APIPrefix = "/api"

// Deps holds the handlers and cross-cutting dependencies of the router.
type Deps struct {
	Logger *zap.Logger
	// Tracer starts request spans. If nil, the global tracer provider is used.
	Tracer trace.Tracer
	// Tokens validates access tokens on protected routes. Required when Users or Audio is set.
	Tokens *security.TokenCodec

	// Health serves /api/health. If nil, the route is not mounted.
	Health *healthhandler.Handler
	// Sessions serves PATCH /api/tokens. If nil, the route is not mounted.
	Sessions *sessionhandler.Handler
	// Users serves the Yandex login flow and the user administration routes. If nil, they are not mounted.
	Users *userhandler.Handler
	// Audio serves /api/audio-files. If nil, the routes are not mounted.
	Audio *audiohandler.Handler
}

// NewRouter returns the API router.
//
// Route map:
//   - GET    /api/health                 → health
//   - PATCH  /api/tokens                 → session rotation
//   - GET    /api/users/yandex/login     → users (public)
//   - GET    /api/users/yandex/callback  → users (public)
//   - GET    /api/users/me, /api/users/{id}, PATCH/DELETE /api/users/{id} → users (bearer)
//   - POST/GET /api/audio-files          → audio (bearer)
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.Tracing(d.Tracer))
	r.Use(chimw.Recoverer)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Route(APIPrefix, func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if d.Health != nil {
				d.Health.Register(r)
			}
			if d.Sessions != nil {
				d.Sessions.Register(r)
			}
			if d.Users != nil {
				d.Users.RegisterPublic(r)
			}
		})
		if d.Users == nil && d.Audio == nil {
			return
		}
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Tokens))
			if d.Users != nil {
				d.Users.RegisterProtected(r)
			}
			if d.Audio != nil {
				d.Audio.Register(r)
			}
		})
	})
	return r
}

// Package handler exposes refresh token rotation over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"soundvault/internal/server/httpx"
	"soundvault/internal/server/middleware"
	"soundvault/internal/session/domain"
	"soundvault/internal/session/service"
)

// Rotator is the part of the session service the handler needs.
type Rotator interface {
	RotateSession(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// Handler serves /tokens.
type Handler struct {
	sessions Rotator
	logger   *zap.Logger
}

// NewHandler returns a session handler. A nil logger uses the global zap logger.
func NewHandler(sessions Rotator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{sessions: sessions, logger: logger}
}

// Register mounts the routes on r.
func (h *Handler) Register(r chi.Router) {
	r.Patch("/tokens", h.RefreshTokens)
}

// RefreshRequest is the body of PATCH /tokens.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse carries the new refresh token; the access token goes in the Authorization header.
type RefreshResponse struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshTokens rotates the presented refresh token.
func (h *Handler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "refresh_token is required")
		return
	}
	pair, err := h.sessions.RotateSession(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
			return
		}
		h.logger.Error("rotate session failed",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.Error(err),
		)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.MsgInternal)
		return
	}
	w.Header().Set("Authorization", "Bearer "+pair.AccessToken)
	httpx.WriteJSON(w, http.StatusOK, RefreshResponse{RefreshToken: pair.RefreshToken})
}

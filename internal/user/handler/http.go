// Package handler exposes Yandex sign-in and user administration over HTTP.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	identitydomain "soundvault/internal/identity/domain"
	"soundvault/internal/identity/state"
	policyengine "soundvault/internal/policy/engine"
	"soundvault/internal/server/httpx"
	"soundvault/internal/server/middleware"
	sessiondomain "soundvault/internal/session/domain"
	"soundvault/internal/user/domain"
	"soundvault/internal/user/service"
)

// Users is the part of the user service the handler needs.
type Users interface {
	AuthenticateWithYandex(ctx context.Context, code string) (*domain.User, error)
	Get(ctx context.Context, actor policyengine.Actor, id int64) (*domain.User, error)
	Update(ctx context.Context, actor policyengine.Actor, id int64, patch domain.Patch) (*domain.User, error)
	Delete(ctx context.Context, actor policyengine.Actor, id int64) error
}

// SessionIssuer starts a session for a freshly authenticated user.
type SessionIssuer interface {
	IssueSession(ctx context.Context, userID int64, isSuperuser bool) (*sessiondomain.TokenPair, error)
}

// LoginURL builds the provider authorize URL.
type LoginURL interface {
	AuthCodeURL(state string) string
}

// Handler serves /users.
type Handler struct {
	users    Users
	sessions SessionIssuer
	login    LoginURL
	states   state.Store
	logger   *zap.Logger
}

// NewHandler returns a user handler. A nil state store disables state checks; a nil logger uses the global zap logger.
func NewHandler(users Users, sessions SessionIssuer, login LoginURL, states state.Store, logger *zap.Logger) *Handler {
	if states == nil {
		states = state.NopStore{}
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Handler{users: users, sessions: sessions, login: login, states: states, logger: logger}
}

// RegisterPublic mounts the sign-in routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/users/yandex/login", h.YandexLogin)
	r.Get("/users/yandex/callback", h.YandexCallback)
}

// RegisterProtected mounts the routes that need an authenticated caller.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/users/me", h.Me)
	r.Get("/users/{id}", h.GetUser)
	r.Patch("/users/{id}", h.UpdateUser)
	r.Delete("/users/{id}", h.DeleteUser)
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	PhoneNumber string    `json:"phone_number"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
}

func toResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Username:    u.Username,
		PhoneNumber: u.PhoneNumber,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
	}
}

// CallbackResponse carries the refresh token; the access token goes in the Authorization header.
type CallbackResponse struct {
	RefreshToken string `json:"refresh_token"`
}

// YandexLogin redirects the browser to the Yandex authorize page.
func (h *Handler) YandexLogin(w http.ResponseWriter, r *http.Request) {
	st, err := h.states.Issue(r.Context())
	if err != nil {
		h.internal(w, r, "issue oauth state failed", err)
		return
	}
	http.Redirect(w, r, h.login.AuthCodeURL(st), http.StatusTemporaryRedirect)
}

// YandexCallback completes sign-in and starts a session.
func (h *Handler) YandexCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	code := q.Get("code")
	if code == "" {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "code is required")
		return
	}
	if err := h.states.Consume(r.Context(), q.Get("state")); err != nil {
		if errors.Is(err, identitydomain.ErrInvalidState) {
			httpx.WriteError(w, http.StatusBadRequest, "invalid state")
			return
		}
		h.internal(w, r, "consume oauth state failed", err)
		return
	}

	user, err := h.users.AuthenticateWithYandex(r.Context(), code)
	if err != nil {
		h.internal(w, r, "yandex authentication failed", err)
		return
	}
	pair, err := h.sessions.IssueSession(r.Context(), user.ID, user.IsSuperuser)
	if err != nil {
		h.internal(w, r, "issue session failed", err)
		return
	}
	w.Header().Set("Authorization", "Bearer "+pair.AccessToken)
	httpx.WriteJSON(w, http.StatusOK, CallbackResponse{RefreshToken: pair.RefreshToken})
}

// Me returns the authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
		return
	}
	u, err := h.users.Get(r.Context(), actor, actor.ID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(u))
}

// GetUser returns the user named in the path.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	u, err := h.users.Get(r.Context(), actor, id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(u))
}

// UpdateUser applies a partial update to the user named in the path.
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	var patch domain.Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	u, err := h.users.Update(r.Context(), actor, id, patch)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toResponse(u))
}

// DeleteUser removes the user named in the path.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := h.actorAndTarget(w, r)
	if !ok {
		return
	}
	if err := h.users.Delete(r.Context(), actor, id); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func actorFrom(r *http.Request) (policyengine.Actor, bool) {
	id, ok := middleware.GetUserID(r.Context())
	if !ok {
		return policyengine.Actor{}, false
	}
	return policyengine.Actor{ID: id, IsSuperuser: middleware.IsSuperuser(r.Context())}, true
}

func (h *Handler) actorAndTarget(w http.ResponseWriter, r *http.Request) (policyengine.Actor, int64, bool) {
	actor, ok := actorFrom(r)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
		return policyengine.Actor{}, 0, false
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.WriteError(w, http.StatusUnprocessableEntity, "invalid user id")
		return policyengine.Actor{}, 0, false
	}
	return actor, id, true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "user not found")
	case errors.Is(err, service.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, service.ErrConflict):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrBadRequest):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.internal(w, r, "user request failed", err)
	}
}

func (h *Handler) internal(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg,
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.Error(err),
	)
	httpx.WriteError(w, http.StatusInternalServerError, httpx.MsgInternal)
}

package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"soundvault/internal/db/uow"
	"soundvault/internal/security"
	"soundvault/internal/session/domain"
	"soundvault/internal/session/service"
	userdomain "soundvault/internal/user/domain"
)

type stubRotator struct {
	pair *domain.TokenPair
	err  error
	got  string
}

func (s *stubRotator) RotateSession(ctx context.Context, token string) (*domain.TokenPair, error) {
	s.got = token
	return s.pair, s.err
}

func serve(h *Handler, body string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.Register(r)
	req := httptest.NewRequest(http.MethodPatch, "/tokens", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRefreshTokens_OK(t *testing.T) {
	stub := &stubRotator{pair: &domain.TokenPair{AccessToken: "acc", RefreshToken: "new"}}
	rec := serve(NewHandler(stub, zap.NewNop()), `{"refresh_token":"old"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old", stub.got)
	assert.Equal(t, "Bearer acc", rec.Header().Get("Authorization"))
	assert.JSONEq(t, `{"refresh_token":"new"}`, rec.Body.String())
}

func TestRefreshTokens_Unauthorized(t *testing.T) {
	stub := &stubRotator{err: service.ErrUnauthorized}
	rec := serve(NewHandler(stub, zap.NewNop()), `{"refresh_token":"old"}`)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Header().Get("Authorization"))
	assert.JSONEq(t, `{"detail":{"msg":"unauthorized"}}`, rec.Body.String())
}

func TestRefreshTokens_InternalHidesCause(t *testing.T) {
	stub := &stubRotator{err: fmt.Errorf("%w: update session: %w", service.ErrInternal, errors.New("pq: secret detail"))}
	rec := serve(NewHandler(stub, zap.NewNop()), `{"refresh_token":"old"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"detail":{"msg":"Internal server error"}}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "secret detail")
}

func TestRefreshTokens_BadBody(t *testing.T) {
	stub := &stubRotator{}
	rec := serve(NewHandler(stub, zap.NewNop()), `not json`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Empty(t, stub.got)
}

func TestRefreshTokens_EndToEnd(t *testing.T) {
	store := uow.NewMemory()
	store.AddUser(&userdomain.User{ID: 42, YandexID: "y", Username: "u", PhoneNumber: "p"})
	codec := security.NewTestTokenCodec()
	svc, err := service.NewService(store, codec, 15*time.Minute, nil)
	require.NoError(t, err)
	issued, err := svc.IssueSession(context.Background(), 42, false)
	require.NoError(t, err)

	h := NewHandler(svc, zap.NewNop())
	rec := serve(h, fmt.Sprintf(`{"refresh_token":%q}`, issued.RefreshToken))
	require.Equal(t, http.StatusOK, rec.Code)

	access := strings.TrimPrefix(rec.Header().Get("Authorization"), "Bearer ")
	claims, err := codec.Validate(access)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)

	// The old token is dead after rotation.
	rec = serve(h, fmt.Sprintf(`{"refresh_token":%q}`, issued.RefreshToken))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

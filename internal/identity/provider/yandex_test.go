package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundvault/internal/identity/domain"
)

type fakeYandex struct {
	tokenStatus    int
	userInfoStatus int
	userInfo       any
	gotForm        url.Values
	gotAuth        string
}

func (f *fakeYandex) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.gotForm = r.PostForm
		if f.tokenStatus != 0 {
			w.WriteHeader(f.tokenStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/info", func(w http.ResponseWriter, r *http.Request) {
		f.gotAuth = r.Header.Get("Authorization")
		if f.userInfoStatus != 0 {
			w.WriteHeader(f.userInfoStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(f.userInfo)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newVerifier(srv *httptest.Server) *Yandex {
	return NewYandex(YandexConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		AuthorizeURL: srv.URL + "/authorize",
		TokenURL:     srv.URL + "/token",
		UserInfoURL:  srv.URL + "/info",
		RedirectURL:  "http://localhost:8000/api/users/yandex/callback",
	}, srv.Client())
}

func validInfo() map[string]any {
	return map[string]any{
		"id":            "1001",
		"login":         "alice",
		"default_phone": map[string]any{"id": 1, "number": "+79990001122"},
	}
}

func TestYandex_Verify(t *testing.T) {
	f := &fakeYandex{userInfo: validInfo()}
	v := newVerifier(f.server(t))

	p, err := v.Verify(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, &domain.Profile{YandexID: "1001", Username: "alice", PhoneNumber: "+79990001122"}, p)

	assert.Equal(t, "authorization_code", f.gotForm.Get("grant_type"))
	assert.Equal(t, "the-code", f.gotForm.Get("code"))
	assert.Equal(t, "client", f.gotForm.Get("client_id"))
	assert.Equal(t, "secret", f.gotForm.Get("client_secret"))
	assert.Equal(t, "OAuth ya-token", f.gotAuth)
}

func TestYandex_VerifyFailures(t *testing.T) {
	tests := []struct {
		name string
		f    *fakeYandex
		code string
	}{
		{"empty code", &fakeYandex{userInfo: validInfo()}, ""},
		{"token endpoint error", &fakeYandex{tokenStatus: http.StatusBadRequest}, "c"},
		{"userinfo error", &fakeYandex{userInfoStatus: http.StatusUnauthorized}, "c"},
		{"userinfo not json", &fakeYandex{userInfo: "nope"}, "c"},
		{"missing phone", &fakeYandex{userInfo: map[string]any{"id": "1", "login": "a"}}, "c"},
		{"missing login", &fakeYandex{userInfo: map[string]any{"id": "1", "default_phone": map[string]any{"number": "+7"}}}, "c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newVerifier(tt.f.server(t))
			p, err := v.Verify(context.Background(), tt.code)
			assert.Nil(t, p)
			assert.True(t, errors.Is(err, domain.ErrProviderFailure), "err = %v", err)
		})
	}
}

func TestYandex_AuthCodeURL(t *testing.T) {
	v := NewYandex(YandexConfig{
		ClientID:     "client",
		AuthorizeURL: "https://oauth.yandex.ru/authorize",
		RedirectURL:  "http://localhost:8000/api/users/yandex/callback",
	}, nil)

	u, err := url.Parse(v.AuthCodeURL("st"))
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "oauth.yandex.ru", u.Host)
	assert.Equal(t, "/authorize", u.Path)
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "http://localhost:8000/api/users/yandex/callback", q.Get("redirect_uri"))
	assert.Equal(t, "false", q.Get("force_confirm"))
	assert.Equal(t, "st", q.Get("state"))

	u, err = url.Parse(v.AuthCodeURL(""))
	require.NoError(t, err)
	_, hasState := u.Query()["state"]
	assert.False(t, hasState)
}

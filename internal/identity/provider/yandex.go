// Package provider verifies OAuth authorization codes against Yandex ID.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"soundvault/internal/identity/domain"
)

const defaultHTTPTimeout = 10 * time.Second

// YandexConfig configures the Yandex verifier.
type YandexConfig struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
}

// Yandex exchanges authorization codes for access tokens and reads the user's profile.
type Yandex struct {
	oauth       *oauth2.Config
	userInfoURL string
	client      *http.Client
}

// NewYandex returns a verifier. A nil client uses an http.Client with a 10s timeout.
func NewYandex(cfg YandexConfig, client *http.Client) *Yandex {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Yandex{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthorizeURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		client:      client,
	}
}

// AuthCodeURL returns the authorize URL the browser is redirected to. An empty state is omitted.
func (y *Yandex) AuthCodeURL(state string) string {
	return y.oauth.AuthCodeURL(state, oauth2.SetAuthURLParam("force_confirm", "false"))
}

type userInfo struct {
	ID           string `json:"id"`
	Login        string `json:"login"`
	DefaultPhone *struct {
		Number string `json:"number"`
	} `json:"default_phone"`
}

// Verify exchanges code and fetches the profile. Every failure wraps domain.ErrProviderFailure.
func (y *Yandex) Verify(ctx context.Context, code string) (*domain.Profile, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", domain.ErrProviderFailure)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, y.client)
	tok, err := y.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %w", domain.ErrProviderFailure, err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", domain.ErrProviderFailure)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build userinfo request: %w", domain.ErrProviderFailure, err)
	}
	req.Header.Set("Authorization", "OAuth "+tok.AccessToken)
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: userinfo: %w", domain.ErrProviderFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: userinfo status %d", domain.ErrProviderFailure, resp.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: decode userinfo: %w", domain.ErrProviderFailure, err)
	}
	if info.ID == "" || info.Login == "" || info.DefaultPhone == nil || info.DefaultPhone.Number == "" {
		return nil, fmt.Errorf("%w: userinfo missing id, login or default phone", domain.ErrProviderFailure)
	}
	return &domain.Profile{
		YandexID:    info.ID,
		Username:    info.Login,
		PhoneNumber: info.DefaultPhone.Number,
	}, nil
}

package middleware

import (
	"net/http"
	"strings"

	"soundvault/internal/security"
	"soundvault/internal/server/httpx"
)

const bearerPrefix = "bearer "

// RequireAuth validates the Bearer access token and puts the caller's identity in the request context.
// Validation is local to the token; the session store is never consulted.
func RequireAuth(tokens *security.TokenCodec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearer(r.Header.Get("Authorization"))
			if token == "" {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
				return
			}
			claims, err := tokens.Validate(token)
			if err != nil {
				httpx.WriteError(w, http.StatusUnauthorized, httpx.MsgUnauthorized)
				return
			}
			ctx := WithIdentity(r.Context(), claims.UserID, claims.IsSuperuser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearer returns the token from an Authorization header value, or "" if missing or malformed.
func extractBearer(v string) string {
	v = strings.TrimSpace(v)
	if len(v) < len(bearerPrefix) {
		return ""
	}
	if !strings.EqualFold(v[:len(bearerPrefix)], bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(v[len(bearerPrefix):])
}

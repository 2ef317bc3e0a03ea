package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, tampered with, signed with another
	// algorithm or key, or expired. Callers must not distinguish between these causes.
	ErrInvalidToken = errors.New("invalid token")
	// ErrEmptySecret is returned by NewTokenCodec when no signing secret is provided.
	ErrEmptySecret = errors.New("empty signing secret")
)

// DefaultAccessTTL is the access token lifetime used when none is configured.
const DefaultAccessTTL = 15 * time.Minute

// AccessClaims holds JWT claims for the access token. The claim set is a snapshot of the
// user record at issuance; it carries no session linkage.
type AccessClaims struct {
	UserID      int64 `json:"id"`
	IsSuperuser bool  `json:"is_superuser"`
	jwt.RegisteredClaims
}

// TokenCodec issues and validates HS256 access tokens with a single symmetric secret.
// Validation is self-contained and never consults a store.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenCodec returns a TokenCodec that signs with secret. A non-positive ttl falls back to DefaultAccessTTL.
// The secret is copied so later mutation by the caller has no effect.
func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if ttl <= 0 {
		ttl = DefaultAccessTTL
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenCodec{
		secret: key,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}, nil
}

// TTL returns the access token lifetime.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs an access token for userID with iat = now and exp = now + TTL.
func (c *TokenCodec) Issue(userID int64, isSuperuser bool) (string, error) {
	now := c.now()
	claims := AccessClaims{
		UserID:      userID,
		IsSuperuser: isSuperuser,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(c.secret)
}

// Validate parses tokenString and verifies its signature and exp claim.
// Returns ErrInvalidToken on any failure.
func (c *TokenCodec) Validate(tokenString string) (*AccessClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}
	claims := &AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

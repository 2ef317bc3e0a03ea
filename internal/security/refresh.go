package security

import "github.com/google/uuid"

// NewRefreshToken returns a new opaque refresh token: a random (v4) UUID string.
// The value carries no structure or metadata; it is only a lookup key and bearer credential.
func NewRefreshToken() string {
	return uuid.NewString()
}

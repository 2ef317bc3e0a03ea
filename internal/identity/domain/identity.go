package domain

import "errors"

// ErrProviderFailure is returned when the identity provider cannot be reached or returns an unusable answer.
var ErrProviderFailure = errors.New("identity provider failure")

// ErrInvalidState is returned when an OAuth callback carries a state that was never issued or already used.
var ErrInvalidState = errors.New("invalid oauth state")

// Profile is the verified identity returned by the provider after a successful code exchange.
type Profile struct {
	YandexID    string
	Username    string
	PhoneNumber string
}

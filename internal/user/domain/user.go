package domain

import (
	"errors"
	"time"
)

// User is the core user entity. Users are created on first OAuth login and keyed by their provider id.
type User struct {
	ID          int64
	YandexID    string
	Username    string
	PhoneNumber string
	IsSuperuser bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.YandexID == "" {
		return errors.New("yandex id is required")
	}
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.PhoneNumber == "" {
		return errors.New("phone number is required")
	}
	return nil
}

// Patch holds the fields of a partial user update; nil fields are left unchanged.
type Patch struct {
	Username    *string `json:"username,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Username == nil && p.PhoneNumber == nil && p.IsSuperuser == nil
}

// Apply copies the set fields of p onto u.
func (p Patch) Apply(u *User) {
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.IsSuperuser != nil {
		u.IsSuperuser = *p.IsSuperuser
	}
}

// Package service implements OAuth sign-in and user administration.
package service

import (
	"context"
	"errors"
	"fmt"

	"soundvault/internal/db/uow"
	identitydomain "soundvault/internal/identity/domain"
	policyengine "soundvault/internal/policy/engine"
	"soundvault/internal/user/domain"
	userrepo "soundvault/internal/user/repository"
)

// Sentinel errors for user service; handler maps them to HTTP status codes.
var (
	ErrNotFound   = errors.New("user not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("username or phone number already taken")
	ErrBadRequest = errors.New("invalid user update")
	ErrInternal   = errors.New("internal error")
)

// Verifier turns an OAuth authorization code into a verified profile.
type Verifier interface {
	Verify(ctx context.Context, code string) (*identitydomain.Profile, error)
}

// Service signs users in with Yandex and lets them manage their own record.
type Service struct {
	uow      uow.Runner
	verifier Verifier
	authz    policyengine.Authorizer
}

// NewService returns a user service.
func NewService(runner uow.Runner, verifier Verifier, authz policyengine.Authorizer) *Service {
	return &Service{uow: runner, verifier: verifier, authz: authz}
}

// AuthenticateWithYandex verifies code and returns the matching user, creating it on first login
// and refreshing username and phone number when they changed at the provider.
func (s *Service) AuthenticateWithYandex(ctx context.Context, code string) (*domain.User, error) {
	profile, err := s.verifier.Verify(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	var out *domain.User
	err = s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		u, err := repos.Users.GetByYandexID(ctx, profile.YandexID)
		if err != nil {
			return err
		}
		if u == nil {
			u = &domain.User{
				YandexID:    profile.YandexID,
				Username:    profile.Username,
				PhoneNumber: profile.PhoneNumber,
			}
			if err := u.Validate(); err != nil {
				return err
			}
			if err := repos.Users.Create(ctx, u); err != nil {
				return fmt.Errorf("create user: %w", err)
			}
			out = u
			return nil
		}
		if u.Username != profile.Username || u.PhoneNumber != profile.PhoneNumber {
			u.Username = profile.Username
			u.PhoneNumber = profile.PhoneNumber
			if err := repos.Users.Update(ctx, u); err != nil {
				return fmt.Errorf("update user: %w", err)
			}
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}
	return out, nil
}

// Get returns the user with id if actor may read it.
func (s *Service) Get(ctx context.Context, actor policyengine.Actor, id int64) (*domain.User, error) {
	if err := s.authorize(ctx, policyengine.Request{Actor: actor, Action: policyengine.ActionRead, TargetID: id}); err != nil {
		return nil, err
	}
	var out *domain.User
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		u, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if u == nil {
			return ErrNotFound
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return out, nil
}

// Update applies patch to the user with id if actor may change it.
func (s *Service) Update(ctx context.Context, actor policyengine.Actor, id int64, patch domain.Patch) (*domain.User, error) {
	if patch.Empty() {
		return nil, ErrBadRequest
	}
	if (patch.Username != nil && *patch.Username == "") || (patch.PhoneNumber != nil && *patch.PhoneNumber == "") {
		return nil, ErrBadRequest
	}
	req := policyengine.Request{
		Actor:            actor,
		Action:           policyengine.ActionUpdate,
		TargetID:         id,
		ChangesSuperuser: patch.IsSuperuser != nil,
	}
	if err := s.authorize(ctx, req); err != nil {
		return nil, err
	}
	var out *domain.User
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		u, err := repos.Users.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if u == nil {
			return ErrNotFound
		}
		patch.Apply(u)
		if err := repos.Users.Update(ctx, u); err != nil {
			return err
		}
		out = u
		return nil
	})
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return out, nil
}

// Delete removes the user with id if actor may delete it. Sessions and audio records go with it.
func (s *Service) Delete(ctx context.Context, actor policyengine.Actor, id int64) error {
	if err := s.authorize(ctx, policyengine.Request{Actor: actor, Action: policyengine.ActionDelete, TargetID: id}); err != nil {
		return err
	}
	err := s.uow.Do(ctx, func(ctx context.Context, repos uow.Repositories) error {
		return repos.Users.Delete(ctx, id)
	})
	return mapRepoErr(err)
}

func (s *Service) authorize(ctx context.Context, req policyengine.Request) error {
	ok, err := s.authz.Allow(ctx, req)
	if err != nil {
		return fmt.Errorf("%w: authorize: %w", ErrInternal, err)
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func mapRepoErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInternal):
		return err
	case errors.Is(err, userrepo.ErrUserNotFound):
		return ErrNotFound
	case errors.Is(err, userrepo.ErrDuplicateUser):
		return ErrConflict
	default:
		return fmt.Errorf("%w: %w", ErrInternal, err)
	}
}

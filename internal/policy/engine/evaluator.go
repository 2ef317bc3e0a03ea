package engine

import "context"

// User administration actions checked by the authorizer.
const (
	ActionRead   = "read"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Actor is the authenticated caller, taken from the access token claims.
type Actor struct {
	ID          int64
	IsSuperuser bool
}

// Request describes one user administration attempt.
type Request struct {
	Actor    Actor
	Action   string
	TargetID int64
	// ChangesSuperuser is set when an update touches the is_superuser flag.
	ChangesSuperuser bool
}

// Authorizer decides whether a user administration request is allowed.
type Authorizer interface {
	Allow(ctx context.Context, req Request) (bool, error)
}

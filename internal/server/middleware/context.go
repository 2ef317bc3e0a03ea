package middleware

import "context"

type contextKey struct{ name string }

var (
	userIDKey      = contextKey{"user_id"}
	isSuperuserKey = contextKey{"is_superuser"}
	requestIDKey   = contextKey{"request_id"}
)

// WithIdentity returns a context carrying the authenticated user id and superuser flag.
// Handlers read them back with GetUserID and IsSuperuser.
func WithIdentity(ctx context.Context, userID int64, isSuperuser bool) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, isSuperuserKey, isSuperuser)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise 0, false.
func GetUserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	return v, ok
}

// IsSuperuser reports whether the authenticated caller is a superuser.
func IsSuperuser(ctx context.Context) bool {
	v, _ := ctx.Value(isSuperuserKey).(bool)
	return v
}

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID returns the request id from context, or "".
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

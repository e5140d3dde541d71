package middleware

import (
	"context"

	"github.com/bittyphp/bitty-security/pkg/security"
)

type userContextKey struct{}

// SetUserContext stores the authenticated user on the context for downstream
// handlers.
func SetUserContext(ctx context.Context, user *security.User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// CurrentUser retrieves the authenticated user from the context.
func CurrentUser(ctx context.Context) (*security.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(*security.User)
	return user, ok && user != nil
}

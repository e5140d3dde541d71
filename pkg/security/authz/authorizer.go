// Package authz decides whether an authenticated user may proceed with a
// request that requires a role set. Policy is pluggable: the engine only
// enforces the contract that an error is a deny.
package authz

import (
	"context"

	"github.com/bittyphp/bitty-security/pkg/security"
)

// Authorizer decides whether the user satisfies the required roles.
// A returned error is treated by shields exactly like a deny: it is surfaced
// to the host after the failure event fires, never swallowed.
type Authorizer interface {
	Authorize(ctx context.Context, user *security.User, roles []string) (bool, error)
}

// AllowAll is the permissive reference authorizer: every authenticated user
// passes. Deployments are expected to swap in a real policy.
type AllowAll struct{}

// NewAllowAll returns the permissive authorizer.
func NewAllowAll() *AllowAll { return &AllowAll{} }

// Authorize always grants.
func (a *AllowAll) Authorize(context.Context, *security.User, []string) (bool, error) {
	return true, nil
}

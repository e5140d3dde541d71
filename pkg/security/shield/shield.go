// Package shield implements the per-request security state machines. A
// shield inspects one request and answers with a response (redirect,
// challenge) or nil to pass the request through; authentication and
// authorization attempts fire start/success/failure events around the calls.
package shield

import (
	"context"
	"errors"
	"net/http"

	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/authn"
	"github.com/bittyphp/bitty-security/pkg/security/authz"
	"github.com/bittyphp/bitty-security/pkg/security/zone"
)

// Shield decides, for one request, whether to authenticate, challenge,
// redirect, authorize, or pass through.
//
// Return values:
//   - (response, nil): terminal answer, written to the client as-is
//   - (nil, nil):      pass through to the next handler
//   - (nil, error):    authentication/authorization/security fault; the
//     host renders a generic failure response
type Shield interface {
	Handle(r *http.Request) (*security.Response, error)

	// Context exposes the shield's zone context so it can be merged into
	// collections and context maps.
	Context() zone.Context
}

// base carries the collaborators shared by the concrete shields and the
// event-wrapped authenticate/authorize helpers.
type base struct {
	context       zone.Context
	authenticator *authn.Authenticator
	authorizer    authz.Authorizer
	events        security.Sink
}

// authenticate validates credentials, stores the user on the zone context
// (running the login protocol), and fires authentication events around the
// attempt. Failures re-surface after the failure event.
func (b *base) authenticate(ctx context.Context, username, password string) (*security.User, error) {
	security.Emit(b.events, security.EventAuthenticationStart, nil, map[string]any{
		"username": username,
	})

	user, err := b.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		security.Emit(b.events, security.EventAuthenticationFailure, nil, map[string]any{
			"username": username,
			"error":    err.Error(),
		})
		return nil, err
	}

	b.context.Set(zone.UserKey, user)
	security.Emit(b.events, security.EventAuthenticationSuccess, user, nil)

	return user, nil
}

// authorize runs the authorizer with authorization events around the call.
// An authorizer error is a deny: it fires the failure event and re-surfaces
// as an AuthorizationError. The boolean verdict itself is advisory and does
// not fail the request.
func (b *base) authorize(ctx context.Context, user *security.User, roles []string) error {
	security.Emit(b.events, security.EventAuthorizationStart, user, nil)

	_, err := b.authorizer.Authorize(ctx, user, roles)
	if err != nil {
		var authzErr *security.AuthorizationError
		if !errors.As(err, &authzErr) {
			err = security.NewAuthorizationError("%v", err)
		}
		security.Emit(b.events, security.EventAuthorizationFailure, user, map[string]any{
			"error": err.Error(),
		})
		return err
	}

	security.Emit(b.events, security.EventAuthorizationSuccess, user, nil)
	return nil
}

// currentUser reads the user from the zone context (running the liveness
// check) and, when one is present, reloads it through the authenticator to
// refresh roles and detect credential drift.
func (b *base) currentUser(ctx context.Context) (*security.User, error) {
	user := security.UserFromValue(b.context.Get(zone.UserKey, nil))
	if user == nil {
		return nil, nil
	}
	return b.authenticator.ReloadUser(ctx, user)
}

// Package authn validates credentials against a user provider and the
// encoder registered for the record's type.
package authn

import (
	"context"

	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/encoder"
	"github.com/bittyphp/bitty-security/pkg/security/provider"
)

// Authenticator orchestrates the provider lookup and the hash verification.
type Authenticator struct {
	users    provider.UserProvider
	encoders *encoder.Collection
}

// New builds an authenticator over a provider and an encoder collection.
func New(users provider.UserProvider, encoders *encoder.Collection) *Authenticator {
	return &Authenticator{users: users, encoders: encoders}
}

// Authenticate validates the username/password pair and returns the matching
// user. Unknown usernames fail with the same generic error class as bad
// passwords so the authenticator alone never confirms account existence.
func (a *Authenticator) Authenticate(ctx context.Context, username, password string) (*security.User, error) {
	user, err := a.users.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, security.ErrInvalidUsername
	}

	enc, err := a.encoders.ForUser(user)
	if err != nil {
		return nil, err
	}

	ok, err := enc.Verify(user.PasswordHash, password, user.Salt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, security.ErrInvalidPassword
	}

	return user, nil
}

// ReloadUser re-fetches a previously authenticated user to refresh its role
// set and confirm the stored credentials still match. Any drift — record
// gone, salt changed, hash changed — returns nil so the caller invalidates
// the session silently.
func (a *Authenticator) ReloadUser(ctx context.Context, user *security.User) (*security.User, error) {
	fresh, err := a.users.GetUser(ctx, user.Username)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, nil
	}
	if fresh.Salt != user.Salt {
		return nil, nil
	}
	if fresh.PasswordHash != user.PasswordHash {
		return nil, nil
	}
	return fresh, nil
}

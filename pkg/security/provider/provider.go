// Package provider implements username → user record lookups. Providers are
// independent data sources; "not found" is a nil user, never an error.
package provider

import (
	"context"

	"github.com/bittyphp/bitty-security/pkg/security"
)

// UserProvider looks up a user record by username.
//
// Return values:
//   - (user, nil): record found
//   - (nil, nil):  no such user (normal state-machine branch, not an error)
//   - (nil, error): lookup fault (over-long username, backing store failure)
type UserProvider interface {
	GetUser(ctx context.Context, username string) (*security.User, error)
}

// checkUsername rejects over-long usernames before touching a backing store.
func checkUsername(username string) error {
	if len(username) > security.MaxUsernameLen {
		return security.ErrUsernameTooLong
	}
	return nil
}

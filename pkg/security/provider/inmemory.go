package provider

import (
	"context"

	"github.com/bittyphp/bitty-security/pkg/security"
)

// Record is the configuration shape for one in-memory user entry.
type Record struct {
	Password string            `json:"password" mapstructure:"password"`
	Salt     string            `json:"salt" mapstructure:"salt"`
	Roles    []string          `json:"roles" mapstructure:"roles"`
	Type     security.UserType `json:"type" mapstructure:"type"`
}

// InMemory serves user records from a static map, typically seeded from
// configuration. Records without a password are unusable and treated as
// absent.
type InMemory struct {
	users map[string]Record
}

// NewInMemory builds an in-memory provider over the given records.
func NewInMemory(users map[string]Record) *InMemory {
	if users == nil {
		users = map[string]Record{}
	}
	return &InMemory{users: users}
}

// GetUser returns the record for the username, or nil when missing.
func (p *InMemory) GetUser(_ context.Context, username string) (*security.User, error) {
	if err := checkUsername(username); err != nil {
		return nil, err
	}

	rec, ok := p.users[username]
	if !ok || rec.Password == "" {
		return nil, nil
	}

	user := security.NewUser(username, rec.Password, rec.Salt, rec.Roles)
	if rec.Type != "" {
		user.Type = rec.Type
	}
	return user, nil
}

package security

import (
	"github.com/mitchellh/mapstructure"
)

// UserType is an explicit discriminant carried by every User record. Encoders
// are registered against a type tag, so the hashing strategy for a record is
// resolved by an ordered lookup instead of runtime type inspection.
type UserType string

const (
	// UserTypeDefault is the tag assigned to records that do not declare one.
	UserTypeDefault UserType = "user"

	// UserTypeAny matches every record during encoder resolution.
	UserTypeAny UserType = "*"
)

// User is an immutable account record produced by a provider.
// The password hash is opaque to the engine and must never be logged.
type User struct {
	Username     string   `json:"username" mapstructure:"username"`
	PasswordHash string   `json:"password_hash" mapstructure:"password_hash"`
	Salt         string   `json:"salt,omitempty" mapstructure:"salt"`
	Roles        []string `json:"roles,omitempty" mapstructure:"roles"`
	Type         UserType `json:"type,omitempty" mapstructure:"type"`
}

// NewUser builds a User with the default type tag.
func NewUser(username, passwordHash, salt string, roles []string) *User {
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Salt:         salt,
		Roles:        roles,
		Type:         UserTypeDefault,
	}
}

// TypeTag returns the record's type discriminant, falling back to the default
// tag for records that never set one.
func (u *User) TypeTag() UserType {
	if u == nil || u.Type == "" {
		return UserTypeDefault
	}
	return u.Type
}

// UserFromValue converts a value read back from a session store into a *User.
// In-memory stores return the *User unchanged; persistent stores round-trip
// through JSON and hand back a generic map, which is decoded field by field.
// Returns nil when the value cannot represent a user.
func UserFromValue(v any) *User {
	switch u := v.(type) {
	case nil:
		return nil
	case *User:
		return u
	case User:
		return &u
	case map[string]any:
		user := new(User)
		if err := mapstructure.Decode(u, user); err != nil {
			return nil
		}
		if user.Username == "" {
			return nil
		}
		return user
	default:
		return nil
	}
}

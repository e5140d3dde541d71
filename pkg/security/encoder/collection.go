package encoder

import (
	"github.com/bittyphp/bitty-security/pkg/security"
)

// Collection resolves the encoder for a user record by its type tag. Entries
// are consulted in registration order; the first entry whose tag equals the
// record's tag, or the wildcard tag, wins.
type Collection struct {
	entries []collectionEntry
}

type collectionEntry struct {
	userType security.UserType
	encoder  Encoder
}

// NewCollection builds a collection. When a single encoder is given it is
// registered under the wildcard tag so it covers every user type.
func NewCollection(encoders ...Encoder) *Collection {
	c := &Collection{}
	if len(encoders) == 1 {
		_ = c.Add(security.UserTypeAny, encoders[0])
		return c
	}
	for _, e := range encoders {
		_ = c.Add(security.UserTypeAny, e)
	}
	return c
}

// Add registers an encoder for a user type tag.
func (c *Collection) Add(userType security.UserType, e Encoder) error {
	if userType == "" {
		return security.NewSecurityError("cannot register encoder for an empty user type")
	}
	c.entries = append(c.entries, collectionEntry{userType: userType, encoder: e})
	return nil
}

// ForUser returns the encoder responsible for the user's type tag.
func (c *Collection) ForUser(user *security.User) (Encoder, error) {
	tag := user.TypeTag()
	for _, entry := range c.entries {
		if entry.userType == tag || entry.userType == security.UserTypeAny {
			return entry.encoder, nil
		}
	}
	return nil, security.NewSecurityError("unable to determine encoder for user type %q", tag)
}

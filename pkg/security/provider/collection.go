package provider

import (
	"context"

	"github.com/bittyphp/bitty-security/pkg/security"
)

// Collection chains providers in registration order; the first provider to
// return a record wins. Providers are independent sources, so a lookup fault
// in one aborts the chain instead of falling through.
type Collection struct {
	providers []UserProvider
}

// NewCollection builds a provider chain.
func NewCollection(providers ...UserProvider) *Collection {
	c := &Collection{}
	for _, p := range providers {
		c.Add(p)
	}
	return c
}

// Add appends a provider to the chain.
func (c *Collection) Add(p UserProvider) {
	c.providers = append(c.providers, p)
}

// GetUser returns the first record found across the chain, or nil.
func (c *Collection) GetUser(ctx context.Context, username string) (*security.User, error) {
	for _, p := range c.providers {
		user, err := p.GetUser(ctx, username)
		if err != nil {
			return nil, err
		}
		if user != nil {
			return user, nil
		}
	}
	return nil, nil
}

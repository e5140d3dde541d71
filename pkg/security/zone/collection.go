package zone

import "net/http"

// Collection composes several zone contexts behind the Context interface.
//
// Routing calls (IsDefault, IsShielded, Match) scan zones in add-order,
// short-circuit on the first answer, and pin that zone as the active context
// so a following Get reads from the zone that answered. Every mutating call
// and every routing call drops the previous pin first, preventing a decision
// computed for one dimension from leaking into another.
//
// A Collection is built per request and never shared across requests.
type Collection struct {
	contexts []Context
	active   Context
}

// NewCollection builds a collection over the given contexts.
func NewCollection(contexts ...Context) *Collection {
	c := &Collection{}
	for _, ctx := range contexts {
		c.Add(ctx)
	}
	return c
}

// Add appends a context. Adding does not touch the active pin.
func (c *Collection) Add(ctx Context) {
	c.contexts = append(c.contexts, ctx)
}

// ClearActive drops the active context pin.
func (c *Collection) ClearActive() {
	c.active = nil
}

// IsDefault reports whether any zone is the default, pinning the first one
// that is.
func (c *Collection) IsDefault() bool {
	c.active = nil
	for _, ctx := range c.contexts {
		if ctx.IsDefault() {
			c.active = ctx
			return true
		}
	}
	return false
}

// Set writes through to every zone.
func (c *Collection) Set(name string, value any) {
	c.active = nil
	for _, ctx := range c.contexts {
		ctx.Set(name, value)
	}
}

// Get reads from the pinned zone when a routing call established one;
// otherwise it returns the first non-nil value across all zones, which is
// not necessarily the zone routing would have picked.
func (c *Collection) Get(name string, def any) any {
	if c.active != nil {
		return c.active.Get(name, def)
	}

	for _, ctx := range c.contexts {
		if v := ctx.Get(name, nil); v != nil {
			return v
		}
	}
	return def
}

// Remove deletes the key from every zone.
func (c *Collection) Remove(name string) {
	c.active = nil
	for _, ctx := range c.contexts {
		ctx.Remove(name)
	}
}

// Clear wipes every zone.
func (c *Collection) Clear() {
	c.active = nil
	for _, ctx := range c.contexts {
		ctx.Clear()
	}
}

// IsShielded reports whether any zone shields the request, pinning the first
// one that does.
func (c *Collection) IsShielded(r *http.Request) bool {
	c.active = nil
	for _, ctx := range c.contexts {
		if ctx.IsShielded(r) {
			c.active = ctx
			return true
		}
	}
	return false
}

// Match returns the first zone's match for the request, pinning that zone.
func (c *Collection) Match(r *http.Request) *RoleMatch {
	c.active = nil
	for _, ctx := range c.contexts {
		if match := ctx.Match(r); match != nil {
			c.active = ctx
			return match
		}
	}
	return nil
}

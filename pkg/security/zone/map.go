package zone

import (
	"net/http"

	"github.com/bittyphp/bitty-security/pkg/security"
)

// Map is a read-only view over registered contexts used to answer "who is
// the current user" outside the shield pipeline, e.g. by request handlers
// after the security middleware has passed a request through.
type Map struct {
	contexts []Context
}

// NewMap builds a map over the given contexts.
func NewMap(contexts ...Context) *Map {
	m := &Map{}
	for _, ctx := range contexts {
		m.Add(ctx)
	}
	return m
}

// Add registers a context. Registration order is the fallback resolution
// order.
func (m *Map) Add(ctx Context) {
	m.contexts = append(m.contexts, ctx)
}

// GetUser resolves the current user for the request: the first zone
// shielding the request wins, then the first default zone, then the first
// registered zone, and nil when no zones are registered. Reading the user
// key carries the usual liveness side effects.
func (m *Map) GetUser(r *http.Request) *security.User {
	for _, ctx := range m.contexts {
		if ctx.IsShielded(r) {
			return security.UserFromValue(ctx.Get(UserKey, nil))
		}
	}

	for _, ctx := range m.contexts {
		if ctx.IsDefault() {
			return security.UserFromValue(ctx.Get(UserKey, nil))
		}
	}

	if len(m.contexts) > 0 {
		return security.UserFromValue(m.contexts[0].Get(UserKey, nil))
	}

	return nil
}

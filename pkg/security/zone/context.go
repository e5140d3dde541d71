package zone

import (
	"math"
	"net/http"
	"time"

	"github.com/bittyphp/bitty-security/pkg/security/session"
)

// UserKey is the reserved key whose reads and writes carry the login
// protocol and liveness check side effects.
const UserKey = "user"

// Session-internal bookkeeping keys written by the login protocol.
const (
	loginKey   = "login"
	activeKey  = "active"
	expiresKey = "expires"
	destroyKey = "destroy"
)

// SessionContext stores one zone's authentication state in a session store,
// namespacing every key as "<zone>/<key>" so zones sharing a session never
// collide.
type SessionContext struct {
	store  session.Store
	name   string
	rules  []PathRule
	config Config
	now    func() time.Time
}

// ContextOption customizes a SessionContext.
type ContextOption func(*SessionContext)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) ContextOption {
	return func(c *SessionContext) { c.now = now }
}

// NewContext builds a zone context over a session store.
func NewContext(store session.Store, name string, rules []PathRule, config Config, opts ...ContextOption) *SessionContext {
	c := &SessionContext{
		store:  store,
		name:   name,
		rules:  rules,
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the zone identifier, which doubles as the storage key prefix.
func (c *SessionContext) Name() string { return c.name }

// IsDefault reports whether this is the default zone.
func (c *SessionContext) IsDefault() bool { return c.config.Default }

// Set stores a value. Writing the user key runs the login protocol first:
// the old session data is flagged with a destroy deadline, the session ID is
// regenerated, the flag is dropped, and the login/active/expires timestamps
// are written. The destroy window lets in-flight requests that still present
// the pre-regeneration identity finish normally.
func (c *SessionContext) Set(name string, value any) {
	if name == UserKey {
		now := c.now().Unix()
		c.Set(destroyKey, now+c.config.DestroyDelay)
		_ = c.store.Regenerate()
		c.Remove(destroyKey)
		c.Set(loginKey, now)
		c.Set(activeKey, now)
		c.Set(expiresKey, now+c.config.TTL)
	}

	c.store.Set(c.name+"/"+name, value)
}

// Get returns the value under name, or def. Reading the user key first runs
// the liveness check: the session is wiped once the earliest of the absolute
// expiry, the destroy deadline, and the inactivity deadline has passed;
// otherwise the activity timestamp is refreshed. Every read of the user key
// therefore either destroys the session or extends it.
func (c *SessionContext) Get(name string, def any) any {
	if name == UserKey {
		now := c.now().Unix()
		expires := asInt64(c.Get(expiresKey, nil), 0)
		destroy := asInt64(c.Get(destroyKey, nil), math.MaxInt64)
		activeDeadline := int64(math.MaxInt64)
		if c.config.Timeout > 0 {
			activeDeadline = asInt64(c.Get(activeKey, nil), 0) + c.config.Timeout
		}

		clearAt := min(expires, destroy, activeDeadline)
		if now > clearAt {
			// Session is past one of its deadlines. Wipe everything so
			// stale or hijacked state cannot be reused.
			c.Clear()
		} else {
			c.Set(activeKey, now)
		}
	}

	if v, ok := c.store.Get(c.name + "/" + name); ok {
		return v
	}
	return def
}

// Remove deletes the value under name.
func (c *SessionContext) Remove(name string) {
	c.store.Remove(c.name + "/" + name)
}

// Clear removes every key in this zone's namespace. Other zones sharing the
// session store are untouched.
func (c *SessionContext) Clear() {
	prefix := c.name + "/"
	for key := range c.store.All() {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			c.store.Remove(key)
		}
	}
}

// IsShielded reports whether the request path matches a rule with roles.
func (c *SessionContext) IsShielded(r *http.Request) bool {
	match := c.Match(r)
	return match != nil && len(match.Roles) > 0
}

// Match evaluates the path rules in declared order against the request path.
func (c *SessionContext) Match(r *http.Request) *RoleMatch {
	path := r.URL.Path
	for _, rule := range c.rules {
		if rule.Pattern.MatchString(path) {
			return &RoleMatch{
				Shield:  c.name,
				Pattern: rule.Pattern.String(),
				Roles:   rule.Roles,
			}
		}
	}
	return nil
}

// asInt64 coerces a stored timestamp back to int64. Persistent stores
// round-trip values through JSON, which turns numbers into float64.
func asInt64(v any, def int64) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	default:
		return def
	}
}

// Package zone implements per-zone security contexts: the namespaced
// key/value bag holding one guarded area's authentication state, the
// aggregation of several zones, and the read-only map used to answer "who is
// the current user."
package zone

import (
	"fmt"
	"net/http"
	"regexp"

	"github.com/mitchellh/mapstructure"
)

// Context is the state container for one zone's authentication data.
//
// The "user" key is special on both paths: writing it runs the login
// protocol (session regeneration, timestamp bookkeeping) and reading it runs
// the liveness check, which either wipes the zone or refreshes its activity
// window. There is no side-effect-free peek for the user key.
type Context interface {
	// IsDefault reports whether this zone answers for unguarded requests.
	IsDefault() bool

	// Set stores a value under name within the zone's namespace.
	Set(name string, value any)

	// Get returns the value under name, or def when absent.
	Get(name string, def any) any

	// Remove deletes the value under name.
	Remove(name string)

	// Clear wipes every key in this zone's namespace, leaving other zones
	// untouched.
	Clear()

	// IsShielded reports whether the request path matches a rule that
	// requires roles. A matched rule with no roles is routed but public.
	IsShielded(r *http.Request) bool

	// Match returns the first rule matching the request path, or nil.
	Match(r *http.Request) *RoleMatch
}

// RoleMatch is the explicit result of routing a request against a zone's
// path rules. It is threaded through shield decisions instead of being
// re-derived, so one request never mixes decisions from different zones.
type RoleMatch struct {
	// Shield names the zone that matched.
	Shield string

	// Pattern is the matching rule's source pattern.
	Pattern string

	// Roles are the roles the matched rule requires; empty means public.
	Roles []string
}

// PathRule binds a path pattern to the roles it requires. Rules are
// evaluated in declared order; the first match wins.
type PathRule struct {
	Pattern *regexp.Regexp
	Roles   []string
}

// NewRule compiles a path rule.
func NewRule(pattern string, roles ...string) (PathRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return PathRule{}, fmt.Errorf("compile path rule %q: %w", pattern, err)
	}
	return PathRule{Pattern: re, Roles: roles}, nil
}

// MustRule compiles a path rule, panicking on an invalid pattern. Intended
// for static configuration.
func MustRule(pattern string, roles ...string) PathRule {
	rule, err := NewRule(pattern, roles...)
	if err != nil {
		panic(err)
	}
	return rule
}

// Config carries a zone's lifecycle settings. Durations are in seconds.
type Config struct {
	// Default marks the zone that answers for unguarded requests.
	Default bool `mapstructure:"default"`

	// TTL is the absolute session lifetime from login.
	TTL int64 `mapstructure:"ttl"`

	// Timeout invalidates a session after this much inactivity; zero
	// disables the check.
	Timeout int64 `mapstructure:"timeout"`

	// DestroyDelay keeps pre-regeneration session data valid for this long
	// so in-flight requests racing a re-authentication are not rejected.
	DestroyDelay int64 `mapstructure:"destroy.delay"`
}

// DefaultConfig returns the standard zone settings: default zone, 24 hour
// TTL, inactivity timeout disabled, 5 minute destroy delay.
func DefaultConfig() Config {
	return Config{
		Default:      true,
		TTL:          86400,
		Timeout:      0,
		DestroyDelay: 300,
	}
}

// ConfigFromMap overlays an option map onto the default settings. Decoding
// is weakly typed, so truthy scalars ("1", 1, "yes") count as default while
// 0, false, and nil do not.
func ConfigFromMap(options map[string]any) (Config, error) {
	cfg := DefaultConfig()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &cfg,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return Config{}, fmt.Errorf("build zone config decoder: %w", err)
	}
	if err := decoder.Decode(options); err != nil {
		return Config{}, fmt.Errorf("decode zone config: %w", err)
	}
	return cfg, nil
}

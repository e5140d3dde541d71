// Package session defines the raw session storage port consumed by security
// contexts, plus its in-memory and database-backed implementations.
//
// The store is the engine's only shared mutable resource: many concurrent
// requests may reference the same session identity, so implementations must
// make Get/Set/Remove/Regenerate safe for concurrent use.
package session

// CookieName is the cookie carrying the session identifier.
const CookieName = "bitty.session"

// Store is one logical session: a flat key/value bag plus an identity that
// can be regenerated during re-authentication. Keys are namespaced by the
// zone contexts layered on top; the store itself is oblivious to zones.
type Store interface {
	// ID returns the current session identifier.
	ID() string

	// Get returns the value stored under key, reporting whether it exists.
	Get(key string) (any, bool)

	// Set stores a value under key.
	Set(key string, value any)

	// Remove deletes the value under key, if any.
	Remove(key string)

	// All returns a snapshot of every key/value pair in the session.
	All() map[string]any

	// Regenerate assigns the session a fresh identifier while keeping its
	// data. Called during the login protocol to defeat session fixation.
	Regenerate() error
}

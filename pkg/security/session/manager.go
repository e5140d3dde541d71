package session

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultMaxSessions bounds the in-memory registry; the oldest idle sessions
// are evicted once the bound is reached.
const DefaultMaxSessions = 16384

// Manager is an in-process session registry keyed by session ID. Entries are
// held in an expirable LRU so abandoned sessions age out without a sweeper
// goroutine; the security contexts layered on top enforce the precise
// expiry/inactivity deadlines themselves.
type Manager struct {
	cache *expirable.LRU[string, *Memory]
}

// NewManager builds a registry bounded to maxSessions entries, each evicted
// after idleTTL without access. Zero values select DefaultMaxSessions and no
// time-based eviction.
func NewManager(maxSessions int, idleTTL time.Duration) *Manager {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Manager{
		cache: expirable.NewLRU[string, *Memory](maxSessions, nil, idleTTL),
	}
}

// Load returns the session with the given ID, or a fresh session when the ID
// is empty or unknown (expired, evicted, or never issued).
func (m *Manager) Load(id string) *Memory {
	if id != "" {
		if s, ok := m.cache.Get(id); ok {
			return s
		}
	}

	s := NewMemory()
	s.onRegenerate = m.rekey
	m.cache.Add(s.ID(), s)
	return s
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	return m.cache.Len()
}

// rekey moves a session to its new identifier after regeneration. The old
// identifier is dropped immediately; in-flight requests that still hold the
// *Memory pointer keep working, and the destroy-delay window in the zone
// context covers requests that only hold the old cookie.
func (m *Manager) rekey(oldID, newID string, s *Memory) {
	m.cache.Remove(oldID)
	m.cache.Add(newID, s)
}

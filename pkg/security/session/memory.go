package session

import (
	"sync"

	"github.com/google/uuid"
)

// Memory is a mutex-guarded in-process session. It is the building block of
// the Manager and the default store in tests.
type Memory struct {
	mu     sync.Mutex
	id     string
	values map[string]any

	// onRegenerate lets an owning registry re-key its index when the
	// session identity changes. May be nil.
	onRegenerate func(oldID, newID string, s *Memory)
}

// NewMemory returns an empty session with a random identifier.
func NewMemory() *Memory {
	return &Memory{
		id:     uuid.NewString(),
		values: map[string]any{},
	}
}

// ID returns the current session identifier.
func (s *Memory) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Get returns the value stored under key.
func (s *Memory) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key.
func (s *Memory) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Remove deletes the value under key.
func (s *Memory) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}

// All returns a snapshot of the session data.
func (s *Memory) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]any, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}
	return snapshot
}

// Regenerate assigns a fresh identifier, keeping the session data.
func (s *Memory) Regenerate() error {
	s.mu.Lock()
	oldID := s.id
	s.id = uuid.NewString()
	newID := s.id
	callback := s.onRegenerate
	s.mu.Unlock()

	if callback != nil {
		callback(oldID, newID, s)
	}
	return nil
}

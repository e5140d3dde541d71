package session

import (
	"context"

	"github.com/uptrace/bun"
)

// Source resolves the session store for a request by its cookie ID and
// persists it afterwards. The in-memory source keeps sessions live in
// process; the database source round-trips them per request.
type Source interface {
	// Load returns the store for the given session ID; an empty or unknown
	// ID yields a fresh session.
	Load(ctx context.Context, id string) (Store, error)

	// Save persists the store after the request, if the backend needs it.
	Save(ctx context.Context, s Store) error
}

// MemorySource adapts a Manager to the Source interface.
type MemorySource struct {
	manager *Manager
}

// NewMemorySource wraps a manager.
func NewMemorySource(manager *Manager) *MemorySource {
	return &MemorySource{manager: manager}
}

// Load returns the live session for the ID.
func (s *MemorySource) Load(_ context.Context, id string) (Store, error) {
	return s.manager.Load(id), nil
}

// Save is a no-op; memory sessions are always live.
func (s *MemorySource) Save(context.Context, Store) error { return nil }

// BunSource loads and saves sessions in a relational database.
type BunSource struct {
	db *bun.DB
}

// NewBunSource wraps a database handle.
func NewBunSource(db *bun.DB) *BunSource {
	return &BunSource{db: db}
}

// Load reads the session rows into memory.
func (s *BunSource) Load(ctx context.Context, id string) (Store, error) {
	return LoadBun(ctx, s.db, id)
}

// Save flushes the session back to the database.
func (s *BunSource) Save(ctx context.Context, store Store) error {
	if b, ok := store.(*Bun); ok {
		return b.Save(ctx)
	}
	return nil
}

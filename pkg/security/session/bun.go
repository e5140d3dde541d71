package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DataRow is one persisted session key/value pair. Values round-trip through
// JSON, so users read back from a database session come out as generic maps
// and are decoded by security.UserFromValue.
type DataRow struct {
	bun.BaseModel `bun:"table:session_data,alias:sd"`

	SessionID string    `bun:"session_id,pk"`
	Key       string    `bun:"key,pk"`
	Value     []byte    `bun:"value"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// Bun is a database-backed session. The full bag is loaded once per request
// and mutated in memory; Save flushes it back in a single transaction so the
// store's writes stay atomic with respect to concurrent requests.
type Bun struct {
	db *bun.DB

	mu          sync.Mutex
	id          string
	previousIDs []string
	values      map[string]any
	dirty       bool
}

// CreateSessionTable creates the session_data table if it does not exist yet.
func CreateSessionTable(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().
		Model((*DataRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create session_data table: %w", err)
	}
	return nil
}

// LoadBun reads the session with the given ID into memory. An empty or
// unknown ID yields a fresh session.
func LoadBun(ctx context.Context, db *bun.DB, id string) (*Bun, error) {
	s := &Bun{
		db:     db,
		id:     id,
		values: map[string]any{},
	}
	if id == "" {
		s.id = uuid.NewString()
		return s, nil
	}

	var rows []DataRow
	err := db.NewSelect().
		Model(&rows).
		Where("session_id = ?", id).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	for _, row := range rows {
		var value any
		if err := json.Unmarshal(row.Value, &value); err != nil {
			continue
		}
		s.values[row.Key] = value
	}
	return s, nil
}

// ID returns the current session identifier.
func (s *Bun) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Get returns the value stored under key.
func (s *Bun) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key.
func (s *Bun) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	s.dirty = true
}

// Remove deletes the value under key.
func (s *Bun) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	s.dirty = true
}

// All returns a snapshot of the session data.
func (s *Bun) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make(map[string]any, len(s.values))
	for k, v := range s.values {
		snapshot[k] = v
	}
	return snapshot
}

// Regenerate assigns a fresh identifier. The rows are rewritten under the new
// ID on the next Save; the old rows are deleted there as well.
func (s *Bun) Regenerate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previousIDs = append(s.previousIDs, s.id)
	s.id = uuid.NewString()
	s.dirty = true
	return nil
}

// Save persists the session: all rows under any previous identifiers are
// removed and the current bag is written under the current ID.
func (s *Bun) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}

	ids := append([]string{s.id}, s.previousIDs...)
	rows := make([]DataRow, 0, len(s.values))
	now := time.Now()
	for key, value := range s.values {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode session value %q: %w", key, err)
		}
		rows = append(rows, DataRow{
			SessionID: s.id,
			Key:       key,
			Value:     raw,
			UpdatedAt: now,
		})
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*DataRow)(nil)).
			Where("session_id IN (?)", bun.In(ids)).
			Exec(ctx); err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.id, err)
	}

	s.previousIDs = nil
	s.dirty = false
	return nil
}

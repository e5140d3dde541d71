package session

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, CreateSessionTable(context.Background(), db))
	return db
}

func TestBunRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s, err := LoadBun(ctx, db, "")
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID())

	s.Set("zone/login", int64(1700000000))
	s.Set("zone/user", map[string]any{"username": "alice"})
	require.NoError(t, s.Save(ctx))

	loaded, err := LoadBun(ctx, db, s.ID())
	require.NoError(t, err)

	// Numbers come back as float64 after the JSON round trip.
	v, ok := loaded.Get("zone/login")
	require.True(t, ok)
	assert.Equal(t, float64(1700000000), v)

	v, ok = loaded.Get("zone/user")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"username": "alice"}, v)
}

func TestBunUnknownIDIsFresh(t *testing.T) {
	db := newTestDB(t)

	s, err := LoadBun(context.Background(), db, "no-such-session")
	require.NoError(t, err)
	assert.Empty(t, s.All())
}

func TestBunRegenerateDropsOldRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s, err := LoadBun(ctx, db, "")
	require.NoError(t, err)
	s.Set("zone/key", "value")
	require.NoError(t, s.Save(ctx))
	oldID := s.ID()

	require.NoError(t, s.Regenerate())
	assert.NotEqual(t, oldID, s.ID())
	require.NoError(t, s.Save(ctx))

	stale, err := LoadBun(ctx, db, oldID)
	require.NoError(t, err)
	assert.Empty(t, stale.All())

	fresh, err := LoadBun(ctx, db, s.ID())
	require.NoError(t, err)
	v, ok := fresh.Get("zone/key")
	require.True(t, ok)
	assert.Equal(t, "value", v)
}

func TestBunRemoveAndClearPersist(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s, err := LoadBun(ctx, db, "")
	require.NoError(t, err)
	s.Set("zone/a", "1")
	s.Set("zone/b", "2")
	require.NoError(t, s.Save(ctx))

	s.Remove("zone/a")
	require.NoError(t, s.Save(ctx))

	loaded, err := LoadBun(ctx, db, s.ID())
	require.NoError(t, err)
	_, ok := loaded.Get("zone/a")
	assert.False(t, ok)
	_, ok = loaded.Get("zone/b")
	assert.True(t, ok)
}

func TestBunSaveSkipsWhenClean(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s, err := LoadBun(ctx, db, "")
	require.NoError(t, err)

	// Nothing written yet; Save must not leave empty session rows around.
	require.NoError(t, s.Save(ctx))

	var count int
	count, err = db.NewSelect().Model((*DataRow)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSourceInterfaces(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		src := NewMemorySource(NewManager(8, 0))
		s, err := src.Load(ctx, "")
		require.NoError(t, err)
		s.Set("k", "v")
		require.NoError(t, src.Save(ctx, s))

		again, err := src.Load(ctx, s.ID())
		require.NoError(t, err)
		v, ok := again.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})

	t.Run("database", func(t *testing.T) {
		src := NewBunSource(newTestDB(t))
		s, err := src.Load(ctx, "")
		require.NoError(t, err)
		s.Set("k", "v")
		require.NoError(t, src.Save(ctx, s))

		again, err := src.Load(ctx, s.ID())
		require.NoError(t, err)
		v, ok := again.Get("k")
		assert.True(t, ok)
		assert.Equal(t, "v", v)
	})
}

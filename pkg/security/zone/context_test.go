package zone

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bittyphp/bitty-security/pkg/security"
	"github.com/bittyphp/bitty-security/pkg/security/session"
)

// recordingStore wraps a session store and records every mutation so tests
// can assert on operation order.
type recordingStore struct {
	session.Store
	ops []string
}

func (s *recordingStore) Set(key string, value any) {
	s.ops = append(s.ops, "set "+key)
	s.Store.Set(key, value)
}

func (s *recordingStore) Remove(key string) {
	s.ops = append(s.ops, "remove "+key)
	s.Store.Remove(key)
}

func (s *recordingStore) Regenerate() error {
	s.ops = append(s.ops, "regenerate")
	return s.Store.Regenerate()
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSetNamespacesKeys(t *testing.T) {
	store := session.NewMemory()
	c := NewContext(store, "main", nil, DefaultConfig())

	c.Set("token", "abc")

	v, ok := store.Get("main/token")
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
	assert.Equal(t, "abc", c.Get("token", nil))
	assert.Equal(t, "fallback", c.Get("missing", "fallback"))
}

func TestLoginProtocolOrder(t *testing.T) {
	store := &recordingStore{Store: session.NewMemory()}
	c := NewContext(store, "main", nil, DefaultConfig())

	c.Set(UserKey, security.NewUser("alice", "hash", "", nil))

	assert.Equal(t, []string{
		"set main/destroy",
		"regenerate",
		"remove main/destroy",
		"set main/login",
		"set main/active",
		"set main/expires",
		"set main/user",
	}, store.ops)
}

func TestLoginProtocolTimestamps(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := session.NewMemory()
	cfg := DefaultConfig()
	c := NewContext(store, "main", nil, cfg, WithClock(fixedClock(now)))

	user := security.NewUser("alice", "hash", "", nil)
	c.Set(UserKey, user)

	login, _ := store.Get("main/login")
	active, _ := store.Get("main/active")
	expires, _ := store.Get("main/expires")
	assert.Equal(t, now.Unix(), login)
	assert.Equal(t, now.Unix(), active)
	assert.Equal(t, now.Unix()+cfg.TTL, expires)

	_, ok := store.Get("main/destroy")
	assert.False(t, ok, "destroy flag must be dropped after regeneration")
}

func TestLoginRegeneratesSessionID(t *testing.T) {
	store := session.NewMemory()
	oldID := store.ID()
	c := NewContext(store, "main", nil, DefaultConfig())

	c.Set(UserKey, security.NewUser("alice", "hash", "", nil))

	assert.NotEqual(t, oldID, store.ID())
}

func TestGetUserRefreshesActivity(t *testing.T) {
	loginAt := time.Unix(1700000000, 0)
	store := session.NewMemory()
	clock := loginAt
	c := NewContext(store, "main", nil, DefaultConfig(), WithClock(func() time.Time { return clock }))

	user := security.NewUser("alice", "hash", "", nil)
	c.Set(UserKey, user)

	clock = loginAt.Add(10 * time.Minute)
	got := security.UserFromValue(c.Get(UserKey, nil))
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)

	active, _ := store.Get("main/active")
	assert.Equal(t, clock.Unix(), active)
}

func TestGetUserAfterExpiryWipesZone(t *testing.T) {
	loginAt := time.Unix(1700000000, 0)
	store := session.NewMemory()
	clock := loginAt
	cfg := DefaultConfig()
	c := NewContext(store, "main", nil, cfg, WithClock(func() time.Time { return clock }))

	c.Set(UserKey, security.NewUser("alice", "hash", "", nil))
	store.Set("other/key", "survives")

	clock = loginAt.Add(time.Duration(cfg.TTL+1) * time.Second)
	assert.Nil(t, c.Get(UserKey, nil))

	for _, key := range []string{"main/user", "main/login", "main/active", "main/expires"} {
		_, ok := store.Get(key)
		assert.False(t, ok, key)
	}
	_, ok := store.Get("other/key")
	assert.True(t, ok, "other zones must be untouched")
}

func TestGetUserInactivityTimeout(t *testing.T) {
	loginAt := time.Unix(1700000000, 0)
	store := session.NewMemory()
	clock := loginAt
	cfg := DefaultConfig()
	cfg.Timeout = 600
	c := NewContext(store, "main", nil, cfg, WithClock(func() time.Time { return clock }))

	c.Set(UserKey, security.NewUser("alice", "hash", "", nil))

	// Activity inside the window refreshes the deadline.
	clock = loginAt.Add(9 * time.Minute)
	assert.NotNil(t, c.Get(UserKey, nil))

	clock = clock.Add(9 * time.Minute)
	assert.NotNil(t, c.Get(UserKey, nil))

	// Going quiet past the timeout wipes the zone even though the absolute
	// expiry is far away.
	clock = clock.Add(11 * time.Minute)
	assert.Nil(t, c.Get(UserKey, nil))
}

func TestDestroyDeadlineWipesZone(t *testing.T) {
	now := time.Unix(1700000000, 0)
	store := session.NewMemory()
	clock := now
	cfg := DefaultConfig()
	c := NewContext(store, "main", nil, cfg, WithClock(func() time.Time { return clock }))

	c.Set(UserKey, security.NewUser("alice", "hash", "", nil))
	// Simulate the pre-regeneration copy of the session, which still carries
	// the destroy flag.
	store.Set("main/destroy", now.Unix()+cfg.DestroyDelay)

	// Within the destroy window the old data still answers.
	clock = now.Add(time.Duration(cfg.DestroyDelay-1) * time.Second)
	assert.NotNil(t, c.Get(UserKey, nil))

	store.Set("main/destroy", now.Unix()+cfg.DestroyDelay)
	clock = now.Add(time.Duration(cfg.DestroyDelay+1) * time.Second)
	assert.Nil(t, c.Get(UserKey, nil))
}

func TestGetUserCoercesJSONNumbers(t *testing.T) {
	// Database-backed stores round-trip timestamps through JSON as float64.
	now := time.Unix(1700000000, 0)
	store := session.NewMemory()
	c := NewContext(store, "main", nil, DefaultConfig(), WithClock(fixedClock(now)))

	store.Set("main/login", float64(now.Unix()))
	store.Set("main/active", float64(now.Unix()))
	store.Set("main/expires", float64(now.Unix()+3600))
	store.Set("main/user", map[string]any{"username": "alice", "password_hash": "hash"})

	got := security.UserFromValue(c.Get(UserKey, nil))
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.Username)
}

func TestGetUserEmptySessionStaysEmpty(t *testing.T) {
	store := session.NewMemory()
	c := NewContext(store, "main", nil, DefaultConfig())

	assert.Nil(t, c.Get(UserKey, nil))
	_, ok := store.Get("main/active")
	assert.False(t, ok, "a never-logged-in zone must not grow state on reads")
}

func TestClearIsScopedToZone(t *testing.T) {
	store := session.NewMemory()
	a := NewContext(store, "a", nil, DefaultConfig())
	b := NewContext(store, "b", nil, DefaultConfig())

	a.Set("key", "1")
	b.Set("key", "2")

	a.Clear()

	assert.Nil(t, a.Get("key", nil))
	assert.Equal(t, "2", b.Get("key", nil))
}

func TestMatchFirstRuleWins(t *testing.T) {
	rules := []PathRule{
		MustRule("^/admin/public$"),
		MustRule("^/admin", "ROLE_ADMIN"),
		MustRule("^/", "ROLE_USER"),
	}
	c := NewContext(session.NewMemory(), "main", rules, DefaultConfig())

	req := func(path string) *http.Request {
		return httptest.NewRequest(http.MethodGet, path, nil)
	}

	match := c.Match(req("/admin/public"))
	require.NotNil(t, match)
	assert.Empty(t, match.Roles)
	assert.False(t, c.IsShielded(req("/admin/public")))

	match = c.Match(req("/admin/users"))
	require.NotNil(t, match)
	assert.Equal(t, "main", match.Shield)
	assert.Equal(t, []string{"ROLE_ADMIN"}, match.Roles)
	assert.True(t, c.IsShielded(req("/admin/users")))

	match = c.Match(req("/profile"))
	require.NotNil(t, match)
	assert.Equal(t, []string{"ROLE_USER"}, match.Roles)
}

func TestMatchNoRules(t *testing.T) {
	c := NewContext(session.NewMemory(), "main", nil, DefaultConfig())
	assert.Nil(t, c.Match(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestConfigFromMap(t *testing.T) {
	cfg, err := ConfigFromMap(map[string]any{
		"default":       0,
		"ttl":           "3600",
		"timeout":       600,
		"destroy.delay": 30,
	})
	require.NoError(t, err)
	assert.False(t, cfg.Default)
	assert.Equal(t, int64(3600), cfg.TTL)
	assert.Equal(t, int64(600), cfg.Timeout)
	assert.Equal(t, int64(30), cfg.DestroyDelay)

	cfg, err = ConfigFromMap(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

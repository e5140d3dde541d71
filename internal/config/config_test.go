package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("USERS_FILE", "/etc/securityd/users.json")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddr)
	assert.Equal(t, "memory", cfg.SessionBackend)
	assert.Equal(t, 16384, cfg.SessionMaxEntries)
	assert.Equal(t, "main", cfg.ZoneName)
	assert.Equal(t, "^/admin", cfg.ProtectedPattern)
	assert.Equal(t, []string{"ROLE_ADMIN"}, cfg.ProtectedRoles)
	assert.Equal(t, "Secured Area", cfg.Realm)
	assert.Equal(t, int64(86400), cfg.SessionTTL)
	assert.Equal(t, int64(0), cfg.SessionTimeout)
	assert.Equal(t, int64(300), cfg.DestroyDelay)
	assert.Equal(t, "/login", cfg.LoginPath)
	assert.Equal(t, "/", cfg.LoginTarget)
	assert.Equal(t, "/logout", cfg.LogoutPath)
	assert.True(t, cfg.UseReferrer)
	assert.False(t, cfg.Debug)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", "0.0.0.0:9000")
	t.Setenv("DATABASE_URL", "postgres://localhost/security")
	t.Setenv("SESSION_BACKEND", "database")
	t.Setenv("SESSION_TTL", "3600")
	t.Setenv("SESSION_TIMEOUT", "600")
	t.Setenv("PROTECTED_ROLES", "ROLE_ADMIN, ROLE_OPS")
	t.Setenv("LOGIN_USE_REFERRER", "false")
	t.Setenv("BASIC_PATTERN", "^/api")
	t.Setenv("DEBUG", "1")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddr)
	assert.Equal(t, "database", cfg.SessionBackend)
	assert.Equal(t, int64(3600), cfg.SessionTTL)
	assert.Equal(t, int64(600), cfg.SessionTimeout)
	assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_OPS"}, cfg.ProtectedRoles)
	assert.False(t, cfg.UseReferrer)
	assert.Equal(t, "^/api", cfg.BasicPattern)
	assert.True(t, cfg.Debug)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("USERS_FILE", "/etc/securityd/users.json")
	t.Setenv("SESSION_BACKEND", "redis")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDatabaseBackendNeedsDSN(t *testing.T) {
	t.Setenv("USERS_FILE", "/etc/securityd/users.json")
	t.Setenv("SESSION_BACKEND", "database")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadNeedsSomeUserSource(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("USERS_FILE", "")

	_, err := Load()
	assert.Error(t, err)
}

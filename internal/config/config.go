// Package config loads the securityd server configuration from environment
// variables with fallback defaults.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	// Server bind address (host:port)
	ServerAddr string

	// Database connection string (DSN). Empty runs fully in memory.
	DatabaseURL string

	// Maximum database connection pool size
	MaxDBConnections int

	// Session backend: "memory" or "database"
	SessionBackend string

	// Maximum number of in-memory sessions before LRU eviction
	SessionMaxEntries int

	// Path to a JSON file seeding the in-memory user provider
	UsersFile string

	// Path to a Casbin policy CSV; empty selects the permissive authorizer
	PolicyPath string

	// Form zone settings
	ZoneName         string
	ProtectedPattern string
	ProtectedRoles   []string

	// Basic-auth zone settings; empty pattern disables the Basic shield
	BasicPattern string
	Realm        string

	// Zone lifecycle settings (seconds)
	SessionTTL      int64
	SessionTimeout  int64
	DestroyDelay    int64

	// Form shield settings
	LoginPath    string
	LoginTarget  string
	LogoutPath   string
	LogoutTarget string
	UseReferrer  bool

	// Enable debug logging
	Debug bool
}

// Load reads configuration from environment variables with fallback defaults.
func Load() (*Config, error) {
	cfg := &Config{
		ServerAddr:        getEnv("SERVER_ADDR", "localhost:8080"),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MaxDBConnections:  getEnvInt("MAX_DB_CONNECTIONS", 25),
		SessionBackend:    getEnv("SESSION_BACKEND", "memory"),
		SessionMaxEntries: getEnvInt("SESSION_MAX_ENTRIES", 16384),
		UsersFile:         getEnv("USERS_FILE", ""),
		PolicyPath:        getEnv("POLICY_PATH", ""),
		ZoneName:          getEnv("ZONE_NAME", "main"),
		ProtectedPattern:  getEnv("PROTECTED_PATTERN", "^/admin"),
		ProtectedRoles:    getEnvList("PROTECTED_ROLES", []string{"ROLE_ADMIN"}),
		BasicPattern:      getEnv("BASIC_PATTERN", ""),
		Realm:             getEnv("REALM", "Secured Area"),
		SessionTTL:        int64(getEnvInt("SESSION_TTL", 86400)),
		SessionTimeout:    int64(getEnvInt("SESSION_TIMEOUT", 0)),
		DestroyDelay:      int64(getEnvInt("DESTROY_DELAY", 300)),
		LoginPath:         getEnv("LOGIN_PATH", "/login"),
		LoginTarget:       getEnv("LOGIN_TARGET", "/"),
		LogoutPath:        getEnv("LOGOUT_PATH", "/logout"),
		LogoutTarget:      getEnv("LOGOUT_TARGET", "/"),
		UseReferrer:       getEnvBool("LOGIN_USE_REFERRER", true),
		Debug:             getEnvBool("DEBUG", false),
	}

	switch cfg.SessionBackend {
	case "memory":
	case "database":
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for SESSION_BACKEND=database")
		}
	default:
		return nil, fmt.Errorf("unknown SESSION_BACKEND %q (want memory or database)", cfg.SessionBackend)
	}

	if cfg.DatabaseURL == "" && cfg.UsersFile == "" {
		return nil, fmt.Errorf("either DATABASE_URL or USERS_FILE must be set to provide users")
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

// getEnvBool retrieves a boolean environment variable or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

// getEnvList retrieves a comma-separated environment variable or returns a
// default value.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

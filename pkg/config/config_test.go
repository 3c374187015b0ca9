package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	unset(t, "PORT", "DB_DRIVER", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_HOST", "DB_PORT", "CORS_ALLOWED_ORIGINS", "ANALYTICS_SNAPSHOT")

	cfg := Load()

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "host=postgres17 port=5432 user=postgres password=postgres dbname=postgres sslmode=disable", cfg.DSN())
	assert.Equal(t, []string{"https://devapis.cloud", "http://localhost:8000", "http://localhost"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AnalyticsSnapshot)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:test.sqlite")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("ANALYTICS_SNAPSHOT", "true")

	cfg := Load()

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "file:test.sqlite", cfg.DSN())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.AnalyticsSnapshot)
}

func TestGetBoolFallsBackOnGarbage(t *testing.T) {
	t.Setenv("ANALYTICS_SNAPSHOT", "maybe")
	assert.False(t, getBool("ANALYTICS_SNAPSHOT", false))
}

// unset clears keys for the duration of the test; t.Setenv restores them afterwards
func unset(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

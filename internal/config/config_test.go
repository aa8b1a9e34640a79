package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:               "8375",
		Env:                "development",
		StoreDriver:        DriverMemory,
		DBPassword:         "password",
		DBSSLMode:          "disable",
		SQLitePath:         "test.db",
		TracingSampleRatio: 1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Defaults", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Unknown driver", func(c *Config) { c.StoreDriver = "mongo" }, true},
		{"SQLite without path", func(c *Config) { c.StoreDriver = DriverSQLite; c.SQLitePath = "" }, true},
		{"Sample ratio above one", func(c *Config) { c.TracingSampleRatio = 1.5 }, true},
		{"Production postgres default password", func(c *Config) {
			c.Env = "production"
			c.StoreDriver = DriverPostgres
			c.DBSSLMode = "require"
		}, true},
		{"Production postgres SSL disabled", func(c *Config) {
			c.Env = "prod"
			c.StoreDriver = DriverPostgres
			c.DBPassword = "secure-password"
		}, true},
		{"Production postgres hardened", func(c *Config) {
			c.Env = "production"
			c.StoreDriver = DriverPostgres
			c.DBPassword = "secure-password"
			c.DBSSLMode = "verify-full"
		}, false},
		{"Production memory store ignores DB settings", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, "test", c.Env)
	assert.Equal(t, 1.0, c.TracingSampleRatio)
	assert.False(t, c.SeedDemoData)
}

func TestLoadConfig_EnvOverridesAndNormalization(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9000")
	t.Setenv("STORE_DRIVER", "  SQLite ")
	t.Setenv("SQLITE_PATH", "/tmp/collab.db")
	t.Setenv("DB_SSLMODE", "  DISABLE  ")
	t.Setenv("SEED_DEMO_DATA", "true")
	t.Setenv("FEATURE_FLAGS", "expose_matching_interests=on")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, DriverSQLite, c.StoreDriver)
	assert.Equal(t, "/tmp/collab.db", c.SQLitePath)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.True(t, c.SeedDemoData)
	assert.Equal(t, "expose_matching_interests=on", c.FeatureFlags)
}

func TestLoadConfig_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("STORE_DRIVER", "cassandra")

	_, err := LoadConfig()
	assert.Error(t, err)
}

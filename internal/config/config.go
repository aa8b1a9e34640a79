// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port               string  `mapstructure:"PORT"`
	Env                string  `mapstructure:"APP_ENV"`
	StoreDriver        string  `mapstructure:"STORE_DRIVER"`
	DBHost             string  `mapstructure:"DB_HOST"`
	DBPort             string  `mapstructure:"DB_PORT"`
	DBUser             string  `mapstructure:"DB_USER"`
	DBPassword         string  `mapstructure:"DB_PASSWORD"`
	DBName             string  `mapstructure:"DB_NAME"`
	DBSSLMode          string  `mapstructure:"DB_SSLMODE"`
	SQLitePath         string  `mapstructure:"SQLITE_PATH"`
	RedisURL           string  `mapstructure:"REDIS_URL"`
	AllowedOrigins     string  `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags       string  `mapstructure:"FEATURE_FLAGS"`
	SeedDemoData       bool    `mapstructure:"SEED_DEMO_DATA"`
	SeedFile           string  `mapstructure:"SEED_FILE"`
	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

var keys = map[string]any{
	"PORT":                 "8375",
	"APP_ENV":              "development",
	"STORE_DRIVER":         DriverMemory,
	"DB_HOST":              "localhost",
	"DB_PORT":              "5432",
	"DB_USER":              "user",
	"DB_PASSWORD":          "password",
	"DB_NAME":              "collabnexus",
	"DB_SSLMODE":           "disable",
	"SQLITE_PATH":          "collabnexus.db",
	"REDIS_URL":            "",
	"ALLOWED_ORIGINS":      "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173",
	"FEATURE_FLAGS":        "",
	"SEED_DEMO_DATA":       false,
	"SEED_FILE":            "",
	"TRACING_ENABLED":      false,
	"TRACING_EXPORTER":     "stdout",
	"OTLP_ENDPOINT":        "localhost:4318",
	"TRACING_SAMPLE_RATIO": 1.0,
}

// LoadConfig loads configuration from .env, config.yml, config.<env>.yml and
// the process environment. Variables already set in the environment win over .env.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.AddConfigPath("../..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AutomaticEnv()

	for key, value := range keys {
		v.SetDefault(key, value)
	}

	// The base file is optional.
	_ = v.ReadInConfig()

	env := strings.ToLower(strings.TrimSpace(v.GetString("APP_ENV")))
	if env != "" && env != "development" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err == nil {
			slog.Info("loaded profile-specific configuration", "file", "config."+env+".yml")
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.TracingExporter = strings.ToLower(strings.TrimSpace(c.TracingExporter))
}

// IsProduction reports whether APP_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}

	switch c.StoreDriver {
	case DriverMemory, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be one of memory, postgres, sqlite (got %q)", c.StoreDriver)
	}

	if c.StoreDriver == DriverSQLite && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required when STORE_DRIVER is sqlite")
	}

	if c.TracingSampleRatio < 0 || c.TracingSampleRatio > 1 {
		return errors.New("TRACING_SAMPLE_RATIO must be between 0 and 1")
	}

	if c.IsProduction() && c.StoreDriver == DriverPostgres {
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
	}

	if c.IsProduction() && c.AllowedOrigins == "*" {
		slog.Warn("ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
	}

	return nil
}

package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for phc-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, signing keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Authentication configuration
	Auth AuthConfig `yaml:"auth"`

	// Management database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Per-tenant partition pool settings
	TenantPool TenantPoolConfig `yaml:"tenant_pool"`

	// MigrationsPath points at the management-schema migration directory.
	MigrationsPath string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"migrations/management"`

	// TenantMigrationsPath points at the clinical-schema template applied to
	// every tenant partition by the provisioner.
	TenantMigrationsPath string `yaml:"tenant_migrations_path" env:"TENANT_MIGRATIONS_PATH" env-default:"migrations/tenant"`
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	// SigningKey signs and verifies first-party HS256 tokens.
	// Server will fail to start if this is not set.
	SigningKey string `yaml:"-" env:"JWT_SIGNING_KEY"` // Secret - not in YAML

	// TokenTTLHours is the lifetime of issued tokens.
	TokenTTLHours int `yaml:"token_ttl_hours" env:"JWT_TOKEN_TTL_HOURS" env-default:"24"`
}

// TokenTTL returns the token lifetime as a duration.
func (a *AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLHours) * time.Hour
}

// DatabaseConfig holds PostgreSQL database configuration.
// The same physical server hosts the management schema and one schema per tenant.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"phc"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"phc_hms"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// TenantPoolConfig holds sizing and timeout settings for per-tenant pools.
type TenantPoolConfig struct {
	// MaxConns is the maximum number of connections per tenant pool.
	MaxConns int32 `yaml:"max_conns" env:"TENANT_POOL_MAX_CONNS" env-default:"10"`
	// MinConns is the minimum number of connections per tenant pool.
	MinConns int32 `yaml:"min_conns" env:"TENANT_POOL_MIN_CONNS" env-default:"1"`
	// ConnectTimeoutSeconds bounds first-use pool construction so a slow
	// tenant cannot stall the request worker indefinitely.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds" env:"TENANT_POOL_CONNECT_TIMEOUT_SECONDS" env-default:"10"`
}

// ConnectTimeout returns the pool construction timeout as a duration.
func (t *TenantPoolConfig) ConnectTimeout() time.Duration {
	return time.Duration(t.ConnectTimeoutSeconds) * time.Second
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if cfg.Auth.SigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY must be set")
	}

	return cfg, nil
}

// ConnectionString returns a PostgreSQL connection string for the
// management schema. Tenant partitions derive their target from this
// same string plus a search_path selector; nothing else may build one.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
)

// Config holds all configuration for our application
type Config struct {
	Port        string         `mapstructure:"PORT"`
	Origin      string         `mapstructure:"ORIGIN"`
	Environment string         `mapstructure:"ENV"`
	LogLevel    string         `mapstructure:"LOG_LEVEL"`
	Database    DatabaseConfig `mapstructure:"-"`
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Driver                 string `mapstructure:"DB_DRIVER"`
	DSN                    string `mapstructure:"DATABASE_URL"`
	MaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
}

// ConnMaxLifetime returns the pool connection lifetime as a duration.
func (d DatabaseConfig) ConnMaxLifetime() time.Duration {
	return time.Duration(d.ConnMaxLifetimeMinutes) * time.Minute
}

var envKeys = []string{
	"PORT",
	"ORIGIN",
	"ENV",
	"LOG_LEVEL",
	"DB_DRIVER",
	"DATABASE_URL",
	"DB_MAX_OPEN_CONNS",
	"DB_MAX_IDLE_CONNS",
	"DB_CONN_MAX_LIFETIME_MINUTES",
}

// LoadConfig loads configuration from a .env file (if present) and environment variables
func LoadConfig() (*Config, error) {
	// A missing .env file is fine, the process environment still applies.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "3001")
	v.SetDefault("ORIGIN", "http://localhost:3000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("bind %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := v.Unmarshal(&cfg.Database); err != nil {
		return nil, fmt.Errorf("unmarshal database config: %w", err)
	}

	if cfg.Database.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration can be used to start the server.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q, %q or %q, got %q", DriverPostgres, DriverMySQL, DriverSQLite, c.Database.Driver)
	}

	if c.Origin == "" {
		return fmt.Errorf("ORIGIN must not be empty")
	}

	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", c.Database.MaxOpenConns)
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must not be negative, got %d", c.Database.MaxIdleConns)
	}

	return nil
}

// IsDev reports whether the server runs in development mode.
func (c *Config) IsDev() bool {
	return c.Environment == "development"
}

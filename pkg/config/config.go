package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"

	"github.com/ilyakaznacheev/cleanenv"
)

// Reference allocator backends.
const (
	AllocatorPostgres = "postgres"
	AllocatorRedis    = "redis"
)

// Event bus backends.
const (
	EventsMemory = "memory"
	EventsRedis  = "redis"
)

// Config holds all configuration for the supplier performance service.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords) must only come from environment variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Redis is optional; an empty host disables it.
	Redis RedisConfig `yaml:"redis"`

	Events EventsConfig `yaml:"events"`

	Performance PerformanceConfig `yaml:"performance"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"supplier_performance"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"supplier_performance"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// EventsConfig selects where notifications are delivered.
type EventsConfig struct {
	// Backend is "memory" (in-process subscribers only) or "redis" (also published on Channel).
	Backend string `yaml:"backend" env:"EVENTS_BACKEND" env-default:"memory"`
	Channel string `yaml:"channel" env:"EVENTS_CHANNEL" env-default:"supplier-performance"`
}

// PerformanceConfig holds settings of the performance service.
type PerformanceConfig struct {
	ReferencePrefix    string `yaml:"reference_prefix" env:"REFERENCE_PREFIX" env-default:"SPE"`
	ReferenceAllocator string `yaml:"reference_allocator" env:"REFERENCE_ALLOCATOR" env-default:"postgres"`
	DefaultListLimit   int    `yaml:"default_list_limit" env:"DEFAULT_LIST_LIMIT" env-default:"10"`
	MaxListLimit       int    `yaml:"max_list_limit" env:"MAX_LIST_LIMIT" env-default:"100"`
	AlertsEnabled      bool   `yaml:"alerts_enabled" env:"ALERTS_ENABLED" env-default:"true"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// A missing config.yaml is not an error; environment variables and defaults are used instead.
func Load(version string) (*Config, error) {
	return LoadFile("config.yaml", version)
}

// LoadFile is Load with an explicit path.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Performance.ReferenceAllocator {
	case AllocatorPostgres, AllocatorRedis:
	default:
		return fmt.Errorf("unknown reference_allocator %q", c.Performance.ReferenceAllocator)
	}
	switch c.Events.Backend {
	case EventsMemory, EventsRedis:
	default:
		return fmt.Errorf("unknown events backend %q", c.Events.Backend)
	}

	needsRedis := c.Performance.ReferenceAllocator == AllocatorRedis || c.Events.Backend == EventsRedis
	if needsRedis && c.Redis.Host == "" {
		return fmt.Errorf("redis.host is required when redis is used for references or events")
	}

	if c.Performance.ReferencePrefix == "" {
		return fmt.Errorf("reference_prefix must not be empty")
	}
	if c.Performance.DefaultListLimit <= 0 || c.Performance.MaxListLimit < c.Performance.DefaultListLimit {
		return fmt.Errorf("list limits must satisfy 0 < default_list_limit <= max_list_limit")
	}
	return nil
}

// URL returns a postgres:// connection URL.
func (c *DatabaseConfig) URL() string {
	u := &url.URL{
		Scheme: "postgres",
		Host:   c.Host + ":" + strconv.Itoa(c.Port),
		Path:   "/" + c.Database,
	}
	if c.Password != "" {
		u.User = url.UserPassword(c.User, c.Password)
	} else {
		u.User = url.User(c.User)
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

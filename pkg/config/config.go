// Package config loads process configuration for docdb binaries from the
// environment or a file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Sternrassler/docdb-client/pkg/client"
	"github.com/Sternrassler/docdb-client/pkg/cosmos"
	"github.com/Sternrassler/docdb-client/pkg/logging"
	"github.com/Sternrassler/docdb-client/pkg/pagination"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/redis/go-redis/v9"
)

// Config is the configuration of a docdb process.
type Config struct {
	Endpoint  string `yaml:"endpoint" env:"DOCDB_ENDPOINT" env-required:"true"`
	Account   string `yaml:"account" env:"DOCDB_ACCOUNT"`
	UserAgent string `yaml:"user_agent" env:"DOCDB_USER_AGENT" env-default:"docdb-client/0.1.0"`

	// Consistency is the default read consistency override, empty for the
	// account default.
	Consistency string `yaml:"consistency" env:"DOCDB_CONSISTENCY"`

	MaxAttempts    int           `yaml:"max_attempts" env:"DOCDB_MAX_ATTEMPTS" env-default:"3"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"DOCDB_REQUEST_TIMEOUT" env-default:"30s"`

	// RedisURL enables shared session and throttle state. Either a
	// redis:// URL or host:port.
	RedisURL string `yaml:"redis_url" env:"REDIS_URL"`

	Port      string `yaml:"port" env:"PORT" env-default:"8080"`
	LogLevel  string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogPretty bool   `yaml:"log_pretty" env:"LOG_PRETTY" env-default:"false"`

	DrainConcurrency int           `yaml:"drain_concurrency" env:"DOCDB_DRAIN_CONCURRENCY" env-default:"4"`
	DrainTimeout     time.Duration `yaml:"drain_timeout" env:"DOCDB_DRAIN_TIMEOUT" env-default:"2m"`
}

// FromEnv reads the configuration from environment variables.
func FromEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read configuration from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads the configuration from a yaml, json, toml or .env file.
// Environment variables override values from the file.
func FromFile(path string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("cannot read configuration from file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot check by itself.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if _, err := cosmos.ParseConsistencyLevel(c.Consistency); err != nil {
		return fmt.Errorf("consistency: %w", err)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be >= 1 (got %d)", c.MaxAttempts)
	}
	if c.DrainConcurrency < 1 {
		return fmt.Errorf("drain_concurrency must be >= 1 (got %d)", c.DrainConcurrency)
	}
	return nil
}

// ConsistencyLevel returns the parsed consistency override.
func (c *Config) ConsistencyLevel() cosmos.ConsistencyLevel {
	level, _ := cosmos.ParseConsistencyLevel(c.Consistency)
	return level
}

// RedisOptions returns the Redis connection options, or nil when Redis is
// not configured.
func (c *Config) RedisOptions() (*redis.Options, error) {
	if c.RedisURL == "" {
		return nil, nil
	}
	if strings.Contains(c.RedisURL, "://") {
		opts, err := redis.ParseURL(c.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: c.RedisURL}, nil
}

// ClientConfig returns the transport configuration. redisClient may be nil.
func (c *Config) ClientConfig(redisClient *redis.Client) client.Config {
	cfg := client.DefaultConfig(c.Endpoint, c.UserAgent)
	cfg.Account = c.Account
	cfg.Redis = redisClient
	cfg.MaxAttempts = c.MaxAttempts
	cfg.Timeout = c.RequestTimeout
	return cfg
}

// LoggingConfig returns the logger configuration for service.
func (c *Config) LoggingConfig(service string) logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.LogLevel)
	cfg.Pretty = c.LogPretty
	cfg.Service = service
	return cfg
}

// DrainConfig returns the drainer configuration.
func (c *Config) DrainConfig() pagination.Config {
	return pagination.Config{
		MaxConcurrency: c.DrainConcurrency,
		Timeout:        c.DrainTimeout,
	}
}

// Package config loads the geocoding cache configuration.
//
// Configuration is layered with koanf, lowest to highest priority:
//
//  1. Built-in defaults (DefaultConfig)
//  2. Optional YAML file (--config flag, CONFIG_PATH, or a default path)
//  3. Legacy environment variables (ACCESS_KEY)
//  4. GEOCACHE_* environment variables
//
// The result is validated with go-playground/validator struct tags.
package config

import (
	"time"

	"github.com/Sternrassler/geocode-cache/pkg/batch"
	"github.com/Sternrassler/geocode-cache/pkg/cache"
	"github.com/Sternrassler/geocode-cache/pkg/client"
	"github.com/Sternrassler/geocode-cache/pkg/logging"
	"github.com/Sternrassler/geocode-cache/pkg/server"
)

// Config is the complete process configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Upstream UpstreamConfig `koanf:"upstream"`
	Cache    CacheConfig    `koanf:"cache"`
	Batch    BatchConfig    `koanf:"batch"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// UpstreamConfig configures the positionstack client.
type UpstreamConfig struct {
	BaseURL   string        `koanf:"base_url" validate:"required,url"`
	AccessKey string        `koanf:"access_key" validate:"required"`
	Timeout   time.Duration `koanf:"timeout" validate:"gt=0"`
	UserAgent string        `koanf:"user_agent" validate:"required"`
	Breaker   BreakerConfig `koanf:"breaker"`
}

// BreakerConfig configures the optional upstream circuit breaker.
type BreakerConfig struct {
	Enabled     bool          `koanf:"enabled"`
	MaxFailures uint32        `koanf:"max_failures" validate:"gte=1"`
	OpenTimeout time.Duration `koanf:"open_timeout" validate:"gt=0"`
}

// CacheConfig configures the lookup caches.
type CacheConfig struct {
	ClearInterval time.Duration `koanf:"clear_interval" validate:"gt=0"`
}

// BatchConfig configures the batch resolver.
type BatchConfig struct {
	MaxConcurrency int           `koanf:"max_concurrency" validate:"gte=1,lte=100"`
	Timeout        time.Duration `koanf:"timeout" validate:"gt=0"`
}

// LoggingConfig configures zerolog.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Pretty bool   `koanf:"pretty"`
}

// DefaultConfig returns the built-in defaults. AccessKey has no default.
func DefaultConfig() *Config {
	clientDefaults := client.DefaultConfig("")
	serverDefaults := server.DefaultConfig()
	batchDefaults := batch.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Addr:            serverDefaults.Addr,
			ReadTimeout:     serverDefaults.ReadTimeout,
			ShutdownTimeout: serverDefaults.ShutdownTimeout,
		},
		Upstream: UpstreamConfig{
			BaseURL:   clientDefaults.BaseURL,
			Timeout:   clientDefaults.Timeout,
			UserAgent: clientDefaults.UserAgent,
			Breaker: BreakerConfig{
				Enabled:     clientDefaults.Breaker.Enabled,
				MaxFailures: clientDefaults.Breaker.MaxFailures,
				OpenTimeout: clientDefaults.Breaker.OpenTimeout,
			},
		},
		Cache: CacheConfig{
			ClearInterval: cache.DefaultClearInterval,
		},
		Batch: BatchConfig{
			MaxConcurrency: batchDefaults.MaxConcurrency,
			Timeout:        batchDefaults.Timeout,
		},
		Logging: LoggingConfig{
			Level:  string(logging.LevelInfo),
			Pretty: false,
		},
	}
}

// ClientOptions returns the upstream client configuration.
func (c *Config) ClientOptions() client.Config {
	cfg := client.DefaultConfig(c.Upstream.AccessKey)
	cfg.BaseURL = c.Upstream.BaseURL
	cfg.Timeout = c.Upstream.Timeout
	cfg.UserAgent = c.Upstream.UserAgent
	cfg.Breaker = client.BreakerConfig{
		Enabled:     c.Upstream.Breaker.Enabled,
		MaxFailures: c.Upstream.Breaker.MaxFailures,
		OpenTimeout: c.Upstream.Breaker.OpenTimeout,
	}
	return cfg
}

// ServerOptions returns the HTTP server configuration.
func (c *Config) ServerOptions() server.Config {
	return server.Config{
		Addr:            c.Server.Addr,
		ReadTimeout:     c.Server.ReadTimeout,
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

// BatchOptions returns the batch resolver configuration.
func (c *Config) BatchOptions() batch.Config {
	return batch.Config{
		MaxConcurrency: c.Batch.MaxConcurrency,
		Timeout:        c.Batch.Timeout,
	}
}

// LoggingOptions returns the logger configuration, writing to stderr.
func (c *Config) LoggingOptions() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = logging.LogLevel(c.Logging.Level)
	cfg.Pretty = c.Logging.Pretty
	return cfg
}

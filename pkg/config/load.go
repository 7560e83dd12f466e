package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths searched for a config file when none is
// given explicitly. The first file found is used.
var DefaultConfigPaths = []string{
	"geocache.yaml",
	"geocache.yml",
	"/etc/geocache/config.yaml",
}

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "CONFIG_PATH"

// legacyEnv maps environment variable names kept for compatibility.
// They are loaded below GEOCACHE_* so the prefixed form wins.
var legacyEnv = map[string]string{
	"access_key": "upstream.access_key",
}

// prefixedEnv maps GEOCACHE_* variables (lower-cased, prefix stripped) to
// config paths.
var prefixedEnv = map[string]string{
	"addr":                  "server.addr",
	"read_timeout":          "server.read_timeout",
	"shutdown_timeout":      "server.shutdown_timeout",
	"base_url":              "upstream.base_url",
	"access_key":            "upstream.access_key",
	"upstream_timeout":      "upstream.timeout",
	"user_agent":            "upstream.user_agent",
	"breaker_enabled":       "upstream.breaker.enabled",
	"breaker_max_failures":  "upstream.breaker.max_failures",
	"breaker_open_timeout":  "upstream.breaker.open_timeout",
	"cache_clear_interval":  "cache.clear_interval",
	"batch_max_concurrency": "batch.max_concurrency",
	"batch_timeout":         "batch.timeout",
	"log_level":             "logging.level",
	"log_pretty":            "logging.pretty",
}

const envPrefix = "GEOCACHE_"

// Load builds the configuration from defaults, the config file at path (or
// the first one found when path is empty) and the environment, then
// validates it.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional unless given explicitly)
	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: legacy environment variables
	if err := k.Load(env.Provider("", ".", mapEnv("", legacyEnv)), nil); err != nil {
		return nil, fmt.Errorf("failed to load legacy environment variables: %w", err)
	}

	// Layer 4: GEOCACHE_* environment variables
	if err := k.Load(env.Provider(envPrefix, ".", mapEnv(envPrefix, prefixedEnv)), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// mapEnv returns an env transform that maps known variables and drops the
// rest, so unrelated environment does not pollute the config.
func mapEnv(prefix string, mappings map[string]string) func(string) string {
	return func(key string) string {
		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		return mappings[key]
	}
}

// findConfigFile returns CONFIG_PATH if it exists, else the first existing
// default path, else "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

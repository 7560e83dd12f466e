package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/geocode-cache/pkg/logging"
)

// isolateEnv clears every variable the loader reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, "")
	for key := range legacyEnv {
		t.Setenv(strings.ToUpper(key), "")
		os.Unsetenv(strings.ToUpper(key))
	}
	for key := range prefixedEnv {
		t.Setenv(envPrefix+strings.ToUpper(key), "")
		os.Unsetenv(envPrefix + strings.ToUpper(key))
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geocache.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Upstream.BaseURL != "http://api.positionstack.com/v1" {
		t.Errorf("Upstream.BaseURL = %q", cfg.Upstream.BaseURL)
	}
	if cfg.Upstream.Timeout != 10*time.Second {
		t.Errorf("Upstream.Timeout = %v", cfg.Upstream.Timeout)
	}
	if cfg.Upstream.Breaker.Enabled {
		t.Error("breaker should be disabled by default")
	}
	if cfg.Cache.ClearInterval != 60*time.Second {
		t.Errorf("Cache.ClearInterval = %v", cfg.Cache.ClearInterval)
	}
	if cfg.Batch.MaxConcurrency != 10 || cfg.Batch.Timeout != 15*time.Second {
		t.Errorf("Batch = %+v", cfg.Batch)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q", cfg.Logging.Level)
	}
}

func TestLoad_RequiresAccessKey(t *testing.T) {
	isolateEnv(t)

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error without access key")
	}
	if !strings.Contains(err.Error(), "upstream.access_key is required") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad_LegacyAccessKey(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ACCESS_KEY", "legacy-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Upstream.AccessKey != "legacy-key" {
		t.Errorf("AccessKey = %q", cfg.Upstream.AccessKey)
	}
}

func TestLoad_PrefixedEnvWinsOverLegacy(t *testing.T) {
	isolateEnv(t)
	t.Setenv("ACCESS_KEY", "legacy-key")
	t.Setenv("GEOCACHE_ACCESS_KEY", "new-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Upstream.AccessKey != "new-key" {
		t.Errorf("AccessKey = %q, want new-key", cfg.Upstream.AccessKey)
	}
}

func TestLoad_File(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
server:
  addr: ":9090"
upstream:
  access_key: file-key
  timeout: 3s
  breaker:
    enabled: true
    max_failures: 2
cache:
  clear_interval: 2m
logging:
  level: debug
  pretty: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Upstream.AccessKey != "file-key" {
		t.Errorf("AccessKey = %q", cfg.Upstream.AccessKey)
	}
	if cfg.Upstream.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v", cfg.Upstream.Timeout)
	}
	if !cfg.Upstream.Breaker.Enabled || cfg.Upstream.Breaker.MaxFailures != 2 {
		t.Errorf("Breaker = %+v", cfg.Upstream.Breaker)
	}
	if cfg.Upstream.Breaker.OpenTimeout != 30*time.Second {
		t.Errorf("OpenTimeout default lost: %v", cfg.Upstream.Breaker.OpenTimeout)
	}
	if cfg.Cache.ClearInterval != 2*time.Minute {
		t.Errorf("ClearInterval = %v", cfg.Cache.ClearInterval)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Pretty {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// Untouched keys keep their defaults.
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, `
upstream:
  access_key: file-key
cache:
  clear_interval: 2m
`)
	t.Setenv("GEOCACHE_CACHE_CLEAR_INTERVAL", "5s")
	t.Setenv("GEOCACHE_BREAKER_ENABLED", "true")
	t.Setenv("GEOCACHE_BATCH_MAX_CONCURRENCY", "4")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Cache.ClearInterval != 5*time.Second {
		t.Errorf("ClearInterval = %v, want 5s", cfg.Cache.ClearInterval)
	}
	if !cfg.Upstream.Breaker.Enabled {
		t.Error("breaker should be enabled from env")
	}
	if cfg.Batch.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d", cfg.Batch.MaxConcurrency)
	}
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	isolateEnv(t)
	path := writeConfig(t, "upstream:\n  access_key: from-config-path\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Upstream.AccessKey != "from-config-path" {
		t.Errorf("AccessKey = %q", cfg.Upstream.AccessKey)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GEOCACHE_ACCESS_KEY", "k")

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}

func TestLoad_IgnoresUnrelatedEnv(t *testing.T) {
	isolateEnv(t)
	t.Setenv("GEOCACHE_ACCESS_KEY", "k")
	t.Setenv("GEOCACHE_UNKNOWN_SETTING", "x")
	t.Setenv("ADDR", ":1")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, unrelated env leaked in", cfg.Server.Addr)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad url", func(c *Config) { c.Upstream.BaseURL = "not a url" }, "upstream.base_url must be a valid URL"},
		{"zero timeout", func(c *Config) { c.Upstream.Timeout = 0 }, "upstream.timeout must be greater than 0"},
		{"zero clear interval", func(c *Config) { c.Cache.ClearInterval = 0 }, "cache.clear_interval must be greater than 0"},
		{"too many workers", func(c *Config) { c.Batch.MaxConcurrency = 1000 }, "batch.max_concurrency must be at most 100"},
		{"zero breaker failures", func(c *Config) { c.Upstream.Breaker.MaxFailures = 0 }, "upstream.breaker.max_failures must be at least 1"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level must be one of"},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Upstream.AccessKey = "k"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Upstream.AccessKey = "k"
	cfg.Upstream.Breaker.Enabled = true
	cfg.Logging.Level = "debug"

	cc := cfg.ClientOptions()
	if cc.AccessKey != "k" || cc.BaseURL != cfg.Upstream.BaseURL || !cc.Breaker.Enabled {
		t.Errorf("ClientOptions = %+v", cc)
	}

	sc := cfg.ServerOptions()
	if sc.Addr != ":8080" || sc.ReadTimeout != 15*time.Second {
		t.Errorf("ServerOptions = %+v", sc)
	}

	bc := cfg.BatchOptions()
	if bc.MaxConcurrency != 10 {
		t.Errorf("BatchOptions = %+v", bc)
	}

	lc := cfg.LoggingOptions()
	if lc.Level != logging.LevelDebug || lc.Output == nil {
		t.Errorf("LoggingOptions = %+v", lc)
	}
}

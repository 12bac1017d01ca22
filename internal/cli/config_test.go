package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/knotmap/knotmap/pkg/pipeline"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheBackendFile)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8080")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[pipeline]
node_limit = 500
seed = 7

[cache]
backend = "redis"
redis_addr = "cache.internal:6379"
redis_db = 2

[server]
addr = ":9090"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Pipeline.NodeLimit != 500 {
		t.Errorf("Pipeline.NodeLimit = %d, want 500", cfg.Pipeline.NodeLimit)
	}
	if cfg.Pipeline.Seed != 7 {
		t.Errorf("Pipeline.Seed = %d, want 7", cfg.Pipeline.Seed)
	}
	if cfg.Cache.Backend != CacheBackendRedis {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheBackendRedis)
	}
	if cfg.Cache.RedisAddr != "cache.internal:6379" {
		t.Errorf("Cache.RedisAddr = %q", cfg.Cache.RedisAddr)
	}
	if cfg.Cache.RedisDB != 2 {
		t.Errorf("Cache.RedisDB = %d, want 2", cfg.Cache.RedisDB)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %q, want :9090", cfg.Server.Addr)
	}
}

func TestLoadConfigPartial(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[pipeline]\nnode_limit = 100\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	// Unspecified sections keep defaults
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheBackendFile)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %q, want :8080", cfg.Server.Addr)
	}
	if cfg.Pipeline.NodeLimit != 100 {
		t.Errorf("Pipeline.NodeLimit = %d, want 100", cfg.Pipeline.NodeLimit)
	}
}

func TestLoadConfigMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("not valid toml [["), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() should fail on malformed TOML")
	}
}

func TestLoadConfigOrDefaultMissing(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := LoadConfigOrDefault()
	if cfg.Cache.Backend != CacheBackendFile {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheBackendFile)
	}
}

func TestLoadConfigOrDefaultReadsFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", root)

	dir := filepath.Join(root, appName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[cache]\nbackend = \"none\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfigOrDefault()
	if cfg.Cache.Backend != CacheBackendNone {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, CacheBackendNone)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.NodeLimit = 300
	cfg.Pipeline.Seed = 11

	opts := pipeline.Options{}
	cfg.applyDefaults(&opts)

	if opts.NodeLimit != 300 {
		t.Errorf("NodeLimit = %d, want 300", opts.NodeLimit)
	}
	if opts.Seed != 11 {
		t.Errorf("Seed = %d, want 11", opts.Seed)
	}
}

func TestApplyDefaultsDoesNotOverrideFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pipeline.NodeLimit = 300

	opts := pipeline.Options{NodeLimit: 50}
	cfg.applyDefaults(&opts)

	if opts.NodeLimit != 50 {
		t.Errorf("NodeLimit = %d, want 50 (flag value wins)", opts.NodeLimit)
	}
}

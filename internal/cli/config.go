package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/knotmap/knotmap/pkg/pipeline"
)

// Cache backend names accepted in config.
const (
	CacheBackendFile  = "file"
	CacheBackendRedis = "redis"
	CacheBackendNone  = "none"
)

// Config is the on-disk CLI configuration, loaded from
// ~/.config/knotmap/config.toml when present.
//
// Example:
//
//	[pipeline]
//	node_limit = 2000
//	seed = 42
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[server]
//	addr = ":8080"
type Config struct {
	Pipeline PipelineConfig `toml:"pipeline"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
}

// PipelineConfig holds default pipeline options. Zero values defer to the
// pipeline's own defaults; command-line flags override both.
type PipelineConfig struct {
	NodeLimit         int     `toml:"node_limit"`
	MinEdgeConfidence float64 `toml:"min_edge_confidence"`
	Seed              uint64  `toml:"seed"`
	ViewportSize      float64 `toml:"viewport_size"`
}

// CacheConfig selects and configures the cache backend.
type CacheConfig struct {
	Backend       string `toml:"backend"` // file (default), redis, none
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Cache:  CacheConfig{Backend: CacheBackendFile},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// LoadConfig reads and decodes a TOML config file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return DefaultConfig(), err
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = CacheBackendFile
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	return cfg, nil
}

// LoadConfigOrDefault loads the config from the XDG config directory,
// falling back to defaults when the file is missing or unreadable.
func LoadConfigOrDefault() Config {
	dir, err := configDir()
	if err != nil {
		return DefaultConfig()
	}
	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err != nil {
		return DefaultConfig()
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// applyDefaults copies configured pipeline defaults onto opts where the
// caller has not set a value via flags.
func (c Config) applyDefaults(opts *pipeline.Options) {
	if opts.NodeLimit == 0 {
		opts.NodeLimit = c.Pipeline.NodeLimit
	}
	if opts.MinEdgeConfidence == 0 {
		opts.MinEdgeConfidence = c.Pipeline.MinEdgeConfidence
	}
	if opts.Seed == 0 {
		opts.Seed = c.Pipeline.Seed
	}
	if opts.ViewportSize == 0 {
		opts.ViewportSize = c.Pipeline.ViewportSize
	}
}

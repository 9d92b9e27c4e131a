// Package config loads extgraph configuration.
//
// Configuration is layered, later layers winning:
//
//  1. Built-in defaults ([Default])
//  2. A TOML file, by default $XDG_CONFIG_HOME/extgraph/config.toml
//  3. A .env file in the working directory, if present
//  4. EXTGRAPH_* environment variables
//
// Command-line flags are applied on top by the CLI.
//
// # File Format
//
//	snapshot = "plugins.json"   # or https://grafana.example/api/frontend/settings
//	mode = "extensionpoint"
//
//	[layout]
//	node_width = 220
//	column_gap = 60
//
//	[server]
//	addr = ":8080"
//	watch = true
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "1h"
//
//	[tracing]
//	endpoint = "localhost:4317"
//	insecure = true
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/extgraph/pkg/errors"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/layout"
	"github.com/matzehuels/extgraph/pkg/observability"
	"github.com/matzehuels/extgraph/pkg/plugin"
)

// AppName is the application name used for directories and env prefixes.
const AppName = "extgraph"

// Environment variables read by Load.
const (
	EnvSnapshot      = "EXTGRAPH_SNAPSHOT"
	EnvMode          = "EXTGRAPH_MODE"
	EnvAddr          = "EXTGRAPH_ADDR"
	EnvWatch         = "EXTGRAPH_WATCH"
	EnvCache         = "EXTGRAPH_CACHE"
	EnvCacheDir      = "EXTGRAPH_CACHE_DIR"
	EnvRedisAddr     = "EXTGRAPH_REDIS_ADDR"
	EnvRedisPassword = "EXTGRAPH_REDIS_PASSWORD"
	EnvWidth         = "EXTGRAPH_WIDTH"
	EnvHeight        = "EXTGRAPH_HEIGHT"
	EnvToken         = "EXTGRAPH_TOKEN"
	EnvOTLPEndpoint  = "EXTGRAPH_OTLP_ENDPOINT"
)

// Cache backends.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

// Default values.
const (
	DefaultAddr      = ":8080"
	DefaultCacheSize = 1024
	DefaultCacheTTL  = 24 * time.Hour
	DefaultHeight    = 800
)

// Config is the complete extgraph configuration.
type Config struct {
	Snapshot string                     `toml:"snapshot"` // Default snapshot file or URL
	Token    string                     `toml:"token"`    // Bearer token for snapshot URLs
	Mode     graph.Mode                 `toml:"mode"`     // Default visualization mode
	Width    float64                    `toml:"width"`    // Default viewport width
	Height   float64                    `toml:"height"`   // Default viewport height
	Layout   layout.Config              `toml:"layout"`
	Server   ServerConfig               `toml:"server"`
	Cache    CacheConfig                `toml:"cache"`
	Tracing  observability.ExportConfig `toml:"tracing"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	Watch           bool          `toml:"watch"` // Reload the snapshot when its file changes
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// CacheConfig configures the byte cache for graphs and layouts.
type CacheConfig struct {
	Backend       string        `toml:"backend"` // none, memory, file or redis
	Dir           string        `toml:"dir"`     // File backend directory
	Size          int           `toml:"size"`    // Memory backend entries
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	RedisPrefix   string        `toml:"redis_prefix"`
	Scope         string        `toml:"scope"` // Key namespace within a shared cache
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode:   graph.DefaultMode,
		Width:  layout.DefaultFallbackWidth,
		Height: DefaultHeight,
		Layout: layout.DefaultConfig(),
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend: BackendFile,
			Size:    DefaultCacheSize,
			TTL:     DefaultCacheTTL,
		},
	}
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the default config file path using the XDG standard
// (~/.config/extgraph/config.toml).
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir returns the cache directory using the XDG standard
// (~/.cache/extgraph/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// =============================================================================
// Loading
// =============================================================================

// Load builds the configuration from defaults, the config file, .env and
// the environment.
//
// An empty path means the default path, which may be absent. An explicit
// path must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		if p, err := DefaultPath(); err == nil {
			path = p
		}
	}
	if path != "" {
		if err := decodeFile(path, &cfg, explicit); err != nil {
			return Config{}, err
		}
	}

	// .env never overrides variables already set in the environment.
	_ = godotenv.Load()

	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.Layout = cfg.Layout.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse decodes TOML over the defaults without consulting the environment.
func Parse(data string) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(data, &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if err := checkUndecoded(md); err != nil {
		return Config{}, err
	}
	cfg.Layout = cfg.Layout.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func decodeFile(path string, cfg *Config, mustExist bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) && !mustExist {
			return nil
		}
		if os.IsNotExist(err) {
			return errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "stat %s", path)
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	return checkUndecoded(md)
}

// checkUndecoded rejects unknown keys so typos do not pass silently.
func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
}

// applyEnv overrides cfg with EXTGRAPH_* variables found by lookup.
func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	num := func(key string, dst *float64) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", key)
		}
		*dst = f
		return nil
	}

	str(EnvSnapshot, &cfg.Snapshot)
	str(EnvToken, &cfg.Token)
	str(EnvOTLPEndpoint, &cfg.Tracing.Endpoint)
	str(EnvAddr, &cfg.Server.Addr)
	str(EnvCache, &cfg.Cache.Backend)
	str(EnvCacheDir, &cfg.Cache.Dir)
	str(EnvRedisAddr, &cfg.Cache.RedisAddr)
	str(EnvRedisPassword, &cfg.Cache.RedisPassword)

	var mode string
	str(EnvMode, &mode)
	if mode != "" {
		cfg.Mode = graph.Mode(mode)
	}

	if v, ok := lookup(EnvWatch); ok && strings.TrimSpace(v) != "" {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "%s", EnvWatch)
		}
		cfg.Server.Watch = b
	}

	if err := num(EnvWidth, &cfg.Width); err != nil {
		return err
	}
	return num(EnvHeight, &cfg.Height)
}

// Validate checks the configuration and normalizes the mode.
func (c *Config) Validate() error {
	mode, err := graph.ParseMode(string(c.Mode))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "mode")
	}
	c.Mode = mode

	if r := c.Tracing.SamplingRatio; r < 0 || r > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "tracing sampling_ratio must be between 0 and 1")
	}
	if c.Width < 0 || c.Height < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "width and height must not be negative")
	}
	if c.Snapshot != "" && !plugin.IsURL(c.Snapshot) {
		if err := errors.ValidateSnapshotPath(c.Snapshot); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "snapshot")
		}
	}
	return c.Cache.Validate()
}

// Validate checks the cache configuration.
func (c *CacheConfig) Validate() error {
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	switch c.Backend {
	case "":
		c.Backend = BackendNone
	case BackendNone, BackendMemory, BackendFile:
	case BackendRedis:
		if c.RedisAddr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "redis cache backend needs redis_addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache backend %q (must be one of: none, memory, file, redis)", c.Backend)
	}
	if c.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	if c.Size < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache size must not be negative")
	}
	return nil
}

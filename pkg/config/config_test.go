package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/extgraph/pkg/cache"
	"github.com/matzehuels/extgraph/pkg/errors"
	"github.com/matzehuels/extgraph/pkg/filter"
	"github.com/matzehuels/extgraph/pkg/graph"
	"github.com/matzehuels/extgraph/pkg/layout"
)

// isolate points every lookup location at empty temp directories.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, key := range []string{
		EnvSnapshot, EnvMode, EnvAddr, EnvWatch, EnvCache, EnvCacheDir,
		EnvRedisAddr, EnvRedisPassword, EnvWidth, EnvHeight, EnvToken, EnvOTLPEndpoint,
	} {
		t.Setenv(key, "")
	}
	t.Chdir(dir)
	return dir
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, graph.DefaultMode, cfg.Mode)
	assert.Equal(t, DefaultAddr, cfg.Server.Addr)
	assert.Equal(t, BackendFile, cfg.Cache.Backend)
	assert.Equal(t, layout.DefaultConfig(), cfg.Layout)
	require.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	cfg, err := Parse(`
snapshot = "plugins.yaml"
mode = "ExtensionPoint"
width = 1600

[layout]
node_width = 220
column_gap = 60

[server]
addr = ":9090"
watch = true
read_timeout = "5s"

[cache]
backend = "memory"
size = 32
ttl = "1h"
`)
	require.NoError(t, err)

	assert.Equal(t, "plugins.yaml", cfg.Snapshot)
	assert.Equal(t, graph.ModeExtensionPoint, cfg.Mode)
	assert.Equal(t, 1600.0, cfg.Width)
	assert.Equal(t, float64(DefaultHeight), cfg.Height)
	assert.Equal(t, 220.0, cfg.Layout.NodeWidth)
	assert.Equal(t, 60.0, cfg.Layout.ColumnGap)
	assert.Equal(t, float64(layout.DefaultBoxWidth), cfg.Layout.BoxWidth)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.Equal(t, 32, cfg.Cache.Size)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
}

func TestParseSnapshotURL(t *testing.T) {
	cfg, err := Parse(`
snapshot = "https://grafana.example/api/frontend/settings"
token = "glsa_secret"
`)
	require.NoError(t, err)
	assert.Equal(t, "https://grafana.example/api/frontend/settings", cfg.Snapshot)
	assert.Equal(t, "glsa_secret", cfg.Token)
}

func TestParseTracing(t *testing.T) {
	cfg, err := Parse(`
[tracing]
endpoint = "otel-collector:4317"
insecure = true
sampling_ratio = 0.5
headers = { "x-api-key" = "secret" }
`)
	require.NoError(t, err)
	assert.True(t, cfg.Tracing.Enabled())
	assert.Equal(t, "otel-collector:4317", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Insecure)
	assert.Equal(t, 0.5, cfg.Tracing.SamplingRatio)
	assert.Equal(t, map[string]string{"x-api-key": "secret"}, cfg.Tracing.Headers)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"syntax", `mode = `},
		{"unknown key", `colour = "blue"`},
		{"unknown mode", `mode = "sankey"`},
		{"unknown backend", "[cache]\nbackend = \"mongo\""},
		{"redis without addr", "[cache]\nbackend = \"redis\""},
		{"negative width", `width = -1`},
		{"bad snapshot extension", `snapshot = "plugins.txt"`},
		{"sampling ratio", "[tracing]\nsampling_ratio = 2.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig), "code = %s", errors.GetCode(err))
		})
	}
}

func TestLoadWithoutFile(t *testing.T) {
	isolate(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().Server, cfg.Server)
}

func TestLoadExplicitMissing(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound))
}

func TestLoadDefaultPath(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config", AppName, "config.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[server]\naddr = \":7070\"\n"), 0o644))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "extgraph.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = 900\n[server]\naddr = \":7070\"\n"), 0o644))

	t.Setenv(EnvAddr, ":6060")
	t.Setenv(EnvWidth, "1400")
	t.Setenv(EnvMode, "addedfunctions")
	t.Setenv(EnvWatch, "true")
	t.Setenv(EnvCache, "redis")
	t.Setenv(EnvRedisAddr, "localhost:6379")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":6060", cfg.Server.Addr)
	assert.Equal(t, 1400.0, cfg.Width)
	assert.Equal(t, graph.ModeAddedFunctions, cfg.Mode)
	assert.True(t, cfg.Server.Watch)
	assert.Equal(t, BackendRedis, cfg.Cache.Backend)
	assert.Equal(t, "localhost:6379", cfg.Cache.RedisAddr)
}

func TestLoadInvalidEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvHeight, "tall")
	_, err := Load("")
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("EXTGRAPH_SNAPSHOT=from-dotenv.json\n"), 0o644))
	// godotenv does not override variables that are already set, so the
	// isolating empty value has to go.
	require.NoError(t, os.Unsetenv(EnvSnapshot))
	t.Cleanup(func() { os.Unsetenv(EnvSnapshot) })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv.json", cfg.Snapshot)
}

func TestDefaultPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	t.Setenv("XDG_CACHE_HOME", "/xdg/cache")

	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg/config", AppName, "config.toml"), p)

	d, err := DefaultCacheDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg/cache", AppName), d)
}

func TestCacheOpen(t *testing.T) {
	dir := isolate(t)
	ctx := context.Background()

	tests := []struct {
		name string
		cfg  CacheConfig
		want any
	}{
		{"none", CacheConfig{Backend: BackendNone}, &cache.NullCache{}},
		{"memory", CacheConfig{Backend: BackendMemory, Size: 8}, &cache.MemoryCache{}},
		{"file", CacheConfig{Backend: BackendFile, Dir: filepath.Join(dir, "c")}, &cache.FileCache{}},
		{"file default dir", CacheConfig{Backend: BackendFile}, &cache.FileCache{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.cfg.Open(ctx)
			require.NoError(t, err)
			defer c.Close()
			assert.IsType(t, tt.want, c)
		})
	}
}

func TestCacheOpenRedisUnavailable(t *testing.T) {
	cfg := CacheConfig{Backend: BackendRedis, RedisAddr: "127.0.0.1:1"}
	_, err := cfg.Open(context.Background())
	assert.ErrorIs(t, err, cache.ErrUnavailable)
}

func TestCacheKeyer(t *testing.T) {
	assert.Nil(t, CacheConfig{}.Keyer())

	k := CacheConfig{Scope: "staging"}.Keyer()
	require.NotNil(t, k)
	key := k.GraphKey("abc", graph.ModeAddedLinks, filter.Selection{})
	assert.True(t, strings.HasPrefix(key, "staging:"), "key = %s", key)
}

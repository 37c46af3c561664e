package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_DefaultsWhenMissing(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ExplicitMissingFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "lpm.yaml", `
cache_dir: build/cache
backend: redis
log_level: debug
redis:
  addr: redis:6379
  db: 2
  ttl: 90s
http:
  port: 9090
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "build/cache", cfg.CacheDir)
	assert.Equal(t, BackendRedis, cfg.Backend)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 90*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "lpm:artifact:", cfg.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 9090, cfg.HTTP.Port)
}

func TestLoad_JSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.json", `{"cache_dir":"out","backend":"memory"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.CacheDir)
	assert.Equal(t, BackendMemory, cfg.Backend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lpm.yaml", "cache_dir: from-file\n")
	t.Setenv(EnvCacheDir, "from-env")
	t.Setenv(EnvRedisAddr, "cache:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.CacheDir)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
}

func TestLoad_InvalidBackend(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lpm.yaml", "backend: s3\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown backend")
}

func TestLoad_Malformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "lpm.yaml", "cache_dir: [unclosed\n")

	_, err := Load(path)
	assert.Error(t, err)
}

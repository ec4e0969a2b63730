package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentuity/go-ttlcache/cache"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, Duration(cache.DefaultTimeToLive), cfg.DefaultTTL)
	assert.Equal(t, Duration(30*time.Second), cfg.SweepFrequency)
	assert.True(t, cfg.LocallyCacheable)
	assert.True(t, cfg.RemotelyCacheable)
	assert.Equal(t, RemoteNone, cfg.Remote.Kind)
	assert.NoError(t, cfg.Validate())
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ttlcache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
default_ttl: 1h30m
sweep_frequency: 10s
remotely_cacheable: false
remote:
  kind: sqlite
  sqlite_path: /tmp/cache.db
  ttl: 1d
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Duration(90*time.Minute), cfg.DefaultTTL)
	assert.Equal(t, Duration(10*time.Second), cfg.SweepFrequency)
	assert.True(t, cfg.LocallyCacheable, "kept from defaults")
	assert.False(t, cfg.RemotelyCacheable)
	assert.Equal(t, RemoteSQLite, cfg.Remote.Kind)
	assert.Equal(t, Duration(24*time.Hour), cfg.Remote.TTL)
	assert.Equal(t, Duration(5*time.Second), cfg.Remote.QueryTimeout)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_ttl: soon\n"), 0o600))
	_, err := Load(path)
	assert.ErrorContains(t, err, "invalid duration")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(lookupFrom(map[string]string{
		"TTLCACHE_DEFAULT_TTL":       "45s",
		"TTLCACHE_LOCALLY_CACHEABLE": "false",
		"TTLCACHE_REMOTE":            "redis",
		"TTLCACHE_REDIS_URL":         "redis://localhost:6379/0",
		"TTLCACHE_PREFIX":            "app",
	}))
	require.NoError(t, err)
	assert.Equal(t, Duration(45*time.Second), cfg.DefaultTTL)
	assert.False(t, cfg.LocallyCacheable)
	assert.Equal(t, RemoteRedis, cfg.Remote.Kind)
	assert.Equal(t, "app", cfg.Remote.Prefix)
	assert.NoError(t, cfg.Validate())

	assert.Error(t, cfg.ApplyEnv(lookupFrom(map[string]string{"TTLCACHE_SWEEP_FREQUENCY": "often"})))
	assert.Error(t, cfg.ApplyEnv(lookupFrom(map[string]string{"TTLCACHE_REMOTELY_CACHEABLE": "maybe"})))
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Remote.Kind = RemoteRedis
	assert.ErrorContains(t, cfg.Validate(), "redis_url")

	cfg.Remote.Kind = "memcached"
	assert.ErrorContains(t, cfg.Validate(), "unknown remote kind")

	cfg = Default()
	cfg.DefaultTTL = 0
	assert.Error(t, cfg.Validate())
}

func TestDurationString(t *testing.T) {
	assert.Equal(t, "1h30m", Duration(90*time.Minute).String())
	out, err := Duration(time.Second).MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "1s", out)
}

func TestOptionsConversion(t *testing.T) {
	cfg := Default()
	assert.Len(t, cfg.CacheOptions(), 4)
	assert.Len(t, cfg.RemoteOptions(), 3)
}

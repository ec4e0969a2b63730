// Package config loads the settings of the ttlcache command from a YAML file
// and TTLCACHE_* environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"github.com/agentuity/go-ttlcache/cache"
	"github.com/agentuity/go-ttlcache/remote"
)

// Duration is a time.Duration that parses str2duration syntax such as "1d2h"
// or "30s".
type Duration time.Duration

func (d Duration) String() string {
	return str2duration.String(time.Duration(d))
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := ParseDuration(node.Value)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// ParseDuration parses s with str2duration.
func ParseDuration(s string) (time.Duration, error) {
	d, err := str2duration.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q", s)
	}
	return d, nil
}

const (
	RemoteNone   = "none"
	RemoteRedis  = "redis"
	RemoteSQLite = "sqlite"
)

// Remote selects and configures the remote store.
type Remote struct {
	Kind         string   `yaml:"kind"`
	RedisURL     string   `yaml:"redis_url"`
	SQLitePath   string   `yaml:"sqlite_path"`
	Prefix       string   `yaml:"prefix"`
	TTL          Duration `yaml:"ttl"`
	QueryTimeout Duration `yaml:"query_timeout"`
}

// Config is the full command configuration.
type Config struct {
	DefaultTTL        Duration `yaml:"default_ttl"`
	SweepFrequency    Duration `yaml:"sweep_frequency"`
	LocallyCacheable  bool     `yaml:"locally_cacheable"`
	RemotelyCacheable bool     `yaml:"remotely_cacheable"`
	LogLevel          string   `yaml:"log_level"`
	Remote            Remote   `yaml:"remote"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		DefaultTTL:        Duration(cache.DefaultTimeToLive),
		SweepFrequency:    Duration(cache.DefaultSweepFrequency),
		LocallyCacheable:  true,
		RemotelyCacheable: true,
		LogLevel:          "info",
		Remote: Remote{
			Kind:         RemoteNone,
			TTL:          Duration(remote.DefaultTTL),
			QueryTimeout: Duration(remote.DefaultQueryTimeout),
		},
	}
}

// Load reads path (skipped when empty) over the defaults, then applies the
// process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(buf, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv overrides fields from TTLCACHE_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	durations := map[string]*Duration{
		"TTLCACHE_DEFAULT_TTL":          &c.DefaultTTL,
		"TTLCACHE_SWEEP_FREQUENCY":      &c.SweepFrequency,
		"TTLCACHE_REMOTE_TTL":           &c.Remote.TTL,
		"TTLCACHE_REMOTE_QUERY_TIMEOUT": &c.Remote.QueryTimeout,
	}
	for name, dst := range durations {
		if v, ok := lookup(name); ok {
			d, err := ParseDuration(v)
			if err != nil {
				return errors.Wrap(err, name)
			}
			*dst = Duration(d)
		}
	}
	bools := map[string]*bool{
		"TTLCACHE_LOCALLY_CACHEABLE":  &c.LocallyCacheable,
		"TTLCACHE_REMOTELY_CACHEABLE": &c.RemotelyCacheable,
	}
	for name, dst := range bools {
		if v, ok := lookup(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return errors.Wrapf(err, "%s: invalid boolean %q", name, v)
			}
			*dst = b
		}
	}
	strs := map[string]*string{
		"TTLCACHE_LOG_LEVEL":   &c.LogLevel,
		"TTLCACHE_REMOTE":      &c.Remote.Kind,
		"TTLCACHE_REDIS_URL":   &c.Remote.RedisURL,
		"TTLCACHE_SQLITE_PATH": &c.Remote.SQLitePath,
		"TTLCACHE_PREFIX":      &c.Remote.Prefix,
	}
	for name, dst := range strs {
		if v, ok := lookup(name); ok {
			*dst = v
		}
	}
	return nil
}

// Validate checks the remote selection is complete.
func (c Config) Validate() error {
	switch c.Remote.Kind {
	case "", RemoteNone:
	case RemoteRedis:
		if c.Remote.RedisURL == "" {
			return errors.New("remote kind redis requires redis_url")
		}
	case RemoteSQLite:
	default:
		return errors.Newf("unknown remote kind %q", c.Remote.Kind)
	}
	if c.DefaultTTL <= 0 {
		return errors.New("default_ttl must be positive")
	}
	return nil
}

// CacheOptions converts the configuration into cache options.
func (c Config) CacheOptions() []cache.Option {
	return []cache.Option{
		cache.WithDefaultTTL(time.Duration(c.DefaultTTL)),
		cache.WithSweepFrequency(time.Duration(c.SweepFrequency)),
		cache.WithLocallyCacheable(c.LocallyCacheable),
		cache.WithRemotelyCacheable(c.RemotelyCacheable),
	}
}

// RemoteOptions converts the remote section into store options.
func (c Config) RemoteOptions() []remote.Option {
	return []remote.Option{
		remote.WithPrefix(c.Remote.Prefix),
		remote.WithTTL(time.Duration(c.Remote.TTL)),
		remote.WithQueryTimeout(time.Duration(c.Remote.QueryTimeout)),
	}
}

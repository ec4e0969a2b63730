package cache

import (
	"fmt"
	"time"

	"github.com/agentuity/go-ttlcache/logger"
)

// DefaultSweepFrequency is the default period of the background sweep.
const DefaultSweepFrequency = 30 * time.Second

// DefaultShards is the default number of lock stripes of the local map.
const DefaultShards = 32

// config holds the resolved configuration for the caches.
type config struct {
	defaultTTL        time.Duration
	sweepFrequency    time.Duration
	shards            int
	clock             Clock
	logger            logger.Logger
	typeTag           string
	formatKey         func(key any) string
	locallyCacheable  bool
	remotelyCacheable bool
}

// Option configures an Expiring or Tiered cache.
type Option func(*config)

func defaultConfig() config {
	return config{
		defaultTTL:        DefaultTimeToLive,
		sweepFrequency:    DefaultSweepFrequency,
		shards:            DefaultShards,
		clock:             SystemClock,
		formatKey:         func(key any) string { return fmt.Sprint(key) },
		locallyCacheable:  true,
		remotelyCacheable: true,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewConsoleLogger()
	}
	return cfg
}

// WithDefaultTTL sets the TTL applied when no explicit TTL or expiry is
// given. Defaults to DefaultTimeToLive (20 minutes).
func WithDefaultTTL(d time.Duration) Option {
	return func(c *config) { c.defaultTTL = d }
}

// WithSweepFrequency sets the period of the background sweep. A value <= 0
// disables the background sweep; on-access eviction still applies.
// Defaults to DefaultSweepFrequency (30 seconds).
func WithSweepFrequency(d time.Duration) Option {
	return func(c *config) { c.sweepFrequency = d }
}

// WithShards sets the number of lock stripes, rounded up to a power of two.
func WithShards(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.shards = n
		}
	}
}

// WithClock sets the clock used to stamp and expire entries.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger. Defaults to a console logger.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithTypeTag overrides the type tag sent to the remote store. The default
// is the Go type name of the cached value type.
func WithTypeTag(tag string) Option {
	return func(c *config) { c.typeTag = tag }
}

// WithKeyFormatter sets how keys are rendered for the remote store.
// Defaults to fmt.Sprint.
func WithKeyFormatter(f func(key any) string) Option {
	return func(c *config) {
		if f != nil {
			c.formatKey = f
		}
	}
}

// WithLocallyCacheable enables or disables the local tier of a Tiered cache.
func WithLocallyCacheable(v bool) Option {
	return func(c *config) { c.locallyCacheable = v }
}

// WithRemotelyCacheable enables or disables the remote tier of a Tiered cache.
func WithRemotelyCacheable(v bool) Option {
	return func(c *config) { c.remotelyCacheable = v }
}

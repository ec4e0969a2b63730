package remote

import (
	"time"

	"github.com/agentuity/go-ttlcache/logger"
)

// DefaultQueryTimeout is the fixed per-command timeout applied to every
// remote call.
const DefaultQueryTimeout = 5 * time.Second

// DefaultTTL is how long a stored object lives in the remote store.
const DefaultTTL = 20 * time.Minute

// config holds the resolved configuration for a store.
type config struct {
	queryTimeout  time.Duration
	ttl           time.Duration
	prefix        string
	purgeInterval time.Duration
	now           func() time.Time
	logger        logger.Logger
}

// Option configures a remote store.
type Option func(*config)

func applyOptions(opts []Option) config {
	cfg := config{
		queryTimeout:  DefaultQueryTimeout,
		ttl:           DefaultTTL,
		purgeInterval: time.Minute,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ttl <= 0 {
		cfg.ttl = DefaultTTL
	}
	if cfg.queryTimeout <= 0 {
		cfg.queryTimeout = DefaultQueryTimeout
	}
	if cfg.logger == nil {
		cfg.logger = logger.NewConsoleLogger()
	}
	return cfg
}

// WithQueryTimeout sets the per-command timeout. Defaults to DefaultQueryTimeout.
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) { c.queryTimeout = d }
}

// WithTTL sets the remote lifetime of stored objects. Defaults to DefaultTTL.
func WithTTL(d time.Duration) Option {
	return func(c *config) { c.ttl = d }
}

// WithPrefix namespaces Redis keys. Ignored by SQLite.
func WithPrefix(p string) Option {
	return func(c *config) { c.prefix = p }
}

// WithPurgeInterval sets how often SQLite deletes expired rows. A value <= 0
// disables the purge; expired rows are still never returned.
func WithPurgeInterval(d time.Duration) Option {
	return func(c *config) { c.purgeInterval = d }
}

// WithClock sets the time source used for SQLite expiry.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLogger sets the logger used for background work such as the SQLite
// purge loop.
func WithLogger(l logger.Logger) Option {
	return func(c *config) { c.logger = l }
}

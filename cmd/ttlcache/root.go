package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/agentuity/go-ttlcache/cache"
	"github.com/agentuity/go-ttlcache/config"
	"github.com/agentuity/go-ttlcache/logger"
	"github.com/agentuity/go-ttlcache/remote"
)

// ErrNotFound is returned by get when the key is in neither tier.
var ErrNotFound = errors.New("not found")

// flagOrEnv returns the flag value, falling back to the environment and then
// to defaultValue.
func flagOrEnv(cmd *cobra.Command, flagName, envName, defaultValue string) string {
	if v, _ := cmd.Flags().GetString(flagName); v != "" {
		return v
	}
	if v, ok := os.LookupEnv(envName); ok {
		return v
	}
	return defaultValue
}

type session struct {
	cfg    config.Config
	log    logger.Logger
	store  cache.RemoteStore
	closer func() error
}

func (r *session) Close() error {
	if r.closer != nil {
		return r.closer()
	}
	return nil
}

func setup(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(flagOrEnv(cmd, "config", "TTLCACHE_CONFIG", ""))
	if err != nil {
		return nil, err
	}
	level := logger.ParseLevel(flagOrEnv(cmd, "log-level", logger.LevelEnv, cfg.LogLevel), logger.LevelInfo)
	rt := &session{
		cfg: cfg,
		log: logger.NewWriterLogger(cmd.ErrOrStderr(), level).WithPrefix("[ttlcache]"),
	}
	rt.log = logger.WithKV(rt.log, "remote", cfg.Remote.Kind)
	remoteOpts := append(cfg.RemoteOptions(), remote.WithLogger(rt.log))
	switch cfg.Remote.Kind {
	case config.RemoteRedis:
		opts, err := redis.ParseURL(cfg.Remote.RedisURL)
		if err != nil {
			return nil, errors.Wrap(err, "parse redis url")
		}
		client := redis.NewClient(opts)
		if err := client.Ping(cmd.Context()).Err(); err != nil {
			client.Close()
			return nil, errors.Wrap(err, "connect to redis")
		}
		rt.store = remote.NewRedis(client, remoteOpts...)
		rt.closer = client.Close
	case config.RemoteSQLite:
		db, err := remote.NewSQLite(cmd.Context(), cfg.Remote.SQLitePath, remoteOpts...)
		if err != nil {
			return nil, err
		}
		rt.store = db
		rt.closer = db.Close
	}
	rt.log.Debug("remote store ready")
	return rt, nil
}

func (r *session) tiered(ctx context.Context) *cache.Tiered[string, string] {
	opts := append(r.cfg.CacheOptions(), cache.WithLogger(r.log))
	return cache.NewTiered[string, string](ctx, r.store, nil, nil, opts...)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "ttlcache",
		Short:         "Inspect and exercise a two-tier TTL cache",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "", "path to a YAML config file (env TTLCACHE_CONFIG)")
	root.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error, none")
	root.AddCommand(newPutCommand(), newGetCommand(), newWatchCommand())
	return root
}

func newPutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "put <key> <value>",
		Short: "Store a value in the configured tiers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			c := rt.tiered(cmd.Context())
			defer c.Close()
			c.Set(cmd.Context(), args[0], args[1])
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s\n", args[0])
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Read a value from the configured tiers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			c := rt.tiered(cmd.Context())
			defer c.Close()
			val, ok := c.TryGet(cmd.Context(), args[0])
			if !ok {
				return errors.Wrapf(ErrNotFound, "key %q", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), val)
			return nil
		},
	}
}

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <key=value>...",
		Short: "Add entries to a local cache and print them as they expire",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			ttl, err := durationFlag(cmd, "ttl")
			if err != nil {
				return err
			}
			every, err := durationFlag(cmd, "every")
			if err != nil {
				return err
			}
			return watch(cmd.Context(), cmd.OutOrStdout(), rt.log, args, ttl, every)
		},
	}
	cmd.Flags().String("ttl", "2s", "time to live of each entry")
	cmd.Flags().String("every", "500ms", "sweep frequency")
	return cmd
}

func durationFlag(cmd *cobra.Command, name string) (time.Duration, error) {
	v, _ := cmd.Flags().GetString(name)
	d, err := config.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "--%s", name)
	}
	return d, nil
}

func watch(ctx context.Context, out io.Writer, log logger.Logger, pairs []string, ttl, every time.Duration) error {
	events := make(chan string, len(pairs))
	c := cache.NewExpiring[string, string](ctx, func(key, value string) {
		events <- fmt.Sprintf("expired %s=%s", key, value)
	}, cache.WithSweepFrequency(every), cache.WithLogger(log))
	defer c.Close()

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.Newf("invalid entry %q, expected key=value", pair)
		}
		if !c.AddTTL(key, value, ttl) {
			return errors.Newf("duplicate key %q", key)
		}
	}
	fmt.Fprintf(out, "watching %d entries\n", c.Len())
	for remaining := len(pairs); remaining > 0; remaining-- {
		select {
		case <-ctx.Done():
			return nil
		case line := <-events:
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

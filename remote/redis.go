package remote

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// Redis stores objects as Redis hashes with native key expiry.
type Redis struct {
	client redis.UniversalClient
	cfg    config
}

// NewRedis returns a store backed by client.
// The caller owns the client lifecycle.
func NewRedis(client redis.UniversalClient, opts ...Option) *Redis {
	return &Redis{client: client, cfg: applyOptions(opts)}
}

func (r *Redis) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, r.cfg.queryTimeout)
}

func (r *Redis) objectKey(typeTag, key string) string {
	parts := []string{typeTag, key}
	if r.cfg.prefix != "" {
		parts = append([]string{r.cfg.prefix}, parts...)
	}
	return strings.Join(parts, ":")
}

// Put upserts value and resets its remote TTL.
func (r *Redis) Put(ctx context.Context, typeTag, key string, value []byte) error {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()
	k := r.objectKey(typeTag, key)
	pipe := r.client.TxPipeline()
	pipe.HSet(qctx, k, "v", value)
	pipe.Expire(qctx, k, r.cfg.ttl)
	if _, err := pipe.Exec(qctx); err != nil {
		return errors.Wrapf(err, "redis put %s", k)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, typeTag, key string) ([]byte, bool, error) {
	qctx, cancel := r.queryCtx(ctx)
	defer cancel()
	k := r.objectKey(typeTag, key)
	data, err := r.client.HGet(qctx, k, "v").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "redis get %s", k)
	}
	return data, true, nil
}

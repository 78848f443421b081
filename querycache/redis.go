package querycache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisTier is a persistent tier shared across processes. Expiry rides on
// native Redis TTLs; Clear scans for this cache's namespaced keys only.
type redisTier struct {
	client       *redis.Client
	queryTimeout time.Duration
}

var _ Tier = (*redisTier)(nil)

// NewRedisTier returns a persistent Tier backed by Redis.
// The caller owns the redis.Client lifecycle; Close is a no-op on the client.
func NewRedisTier(client *redis.Client, opts ...Option) Tier {
	cfg := applyOptions(opts)
	return &redisTier{
		client:       client,
		queryTimeout: cfg.queryTimeout,
	}
}

func (t *redisTier) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, t.queryTimeout)
}

func (t *redisTier) Get(ctx context.Context, key string) ([]byte, bool, error) {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	data, err := t.client.Get(qctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (t *redisTier) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	return t.client.Set(qctx, key, data, ttl).Err()
}

func (t *redisTier) Delete(ctx context.Context, key string) error {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	return t.client.Del(qctx, key).Err()
}

func (t *redisTier) Clear(ctx context.Context, prefix string) error {
	qctx, cancel := t.queryCtx(ctx)
	defer cancel()
	match := prefix + "*"
	var cursor uint64
	for {
		keys, next, err := t.client.Scan(qctx, cursor, match, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := t.client.Del(qctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Close is a no-op because the caller owns the redis.Client lifecycle.
func (t *redisTier) Close() error {
	return nil
}

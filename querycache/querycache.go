package querycache

import (
	"context"
	"time"

	"github.com/dugoutlabs/go-dugout/logger"
)

// Cache memoizes read-only remote queries across two tiers: a process-local
// memory tier and an optional persistent tier. Construct one with New and
// inject it where queries run; there is deliberately no package-level
// instance.
type Cache struct {
	memory     *memoryTier
	persistent Tier
	ttl        time.Duration
	namespace  string
	version    string
	log        logger.Logger
	now        func() time.Time
	metrics    *cacheMetrics
}

// New returns a Cache. The context bounds the memory tier's background
// sweeper; cancel it or call Close to stop it.
func New(ctx context.Context, opts ...Option) *Cache {
	cfg := applyOptions(opts)
	return &Cache{
		memory:     newMemoryTier(ctx, cfg.expiryCheck),
		persistent: cfg.persistent,
		ttl:        cfg.ttl,
		namespace:  cfg.namespace,
		version:    cfg.version,
		log:        cfg.log.WithPrefix("querycache"),
		now:        cfg.now,
		metrics:    newCacheMetrics(),
	}
}

// TTL returns the fixed process-wide entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// storageKey namespaces a logical key for the persistent tier:
// {namespace}:{version}:{logicalKey}.
func (c *Cache) storageKey(key string) string {
	return c.namespace + ":" + c.version + ":" + key
}

func (c *Cache) storagePrefix() string {
	return c.namespace + ":" + c.version + ":"
}

// Invalidate removes the entry for key from both tiers. No-op when absent.
func (c *Cache) Invalidate(ctx context.Context, key string) {
	_ = c.memory.Delete(ctx, key)
	if c.persistent == nil {
		return
	}
	if err := c.persistent.Delete(ctx, c.storageKey(key)); err != nil {
		c.log.Debug("persistent delete failed: %v", err)
	}
}

// Clear empties the memory tier and removes every persistent entry under
// this cache's namespace+version prefix, leaving unrelated persisted data
// untouched. No-op on the persistent side when no tier is attached.
func (c *Cache) Clear(ctx context.Context) {
	_ = c.memory.Clear(ctx, "")
	if c.persistent == nil {
		return
	}
	if err := c.persistent.Clear(ctx, c.storagePrefix()); err != nil {
		c.log.Debug("persistent clear failed: %v", err)
	}
}

// Close stops the memory tier's sweeper and closes the persistent tier.
func (c *Cache) Close() error {
	err := c.memory.Close()
	if c.persistent != nil {
		if perr := c.persistent.Close(); err == nil {
			err = perr
		}
	}
	return err
}

// QueryConfig configures a single Do call.
type QueryConfig struct {
	// Key identifies the query; build it with Key. Required.
	Key string
	// ForceFresh bypasses both tiers and always executes the fetch. The
	// fresh result still overwrites the cached entry.
	ForceFresh bool
	// SkipPersist keeps the result out of the persistent tier. The memory
	// tier is always written.
	SkipPersist bool
}

// FetchFunc produces a result envelope, typically by wrapping a remote
// query. A non-nil error is the fetch rejecting outright; an envelope with
// Error set is the remote store reporting failure in-band. Neither is cached.
type FetchFunc[T any] func(ctx context.Context) (Envelope[T], error)

// Do serves cfg.Key from the cache or executes fetch and memoizes the
// result.
//
// Lookup order is fixed: memory, then the persistent tier (promoting a hit
// back into memory), then fetch. Every hit is decoded from the stored bytes,
// so callers always receive an isolated copy. Error envelopes and fetch
// errors pass through to the caller without being written to either tier,
// and every persistent-tier failure is swallowed: worst case the call
// degrades to a fresh fetch. Concurrent callers racing on a cold key each
// fetch independently; the last write wins.
func Do[T any](ctx context.Context, cfg QueryConfig, c *Cache, fetch FetchFunc[T]) (Envelope[T], error) {
	if !cfg.ForceFresh {
		if env, _, ok := tierLookup[T](ctx, c, c.memory, cfg.Key, tierMemory); ok {
			return env, nil
		}
		if c.persistent != nil {
			if env, raw, ok := tierLookup[T](ctx, c, c.persistent, c.storageKey(cfg.Key), tierPersistent); ok {
				c.promote(ctx, cfg.Key, raw)
				return env, nil
			}
		}
	}

	env, err := fetch(ctx)
	if err != nil {
		return Envelope[T]{}, err
	}
	if !env.Cacheable() {
		return env, nil
	}

	data, err := encodeEntry(env, c.now())
	if err != nil {
		// Cannot serialize the payload; still a successful query.
		c.log.Debug("entry encode failed: %v", err)
		return env, nil
	}

	if err := c.memory.Set(ctx, cfg.Key, data, c.ttl); err != nil {
		c.log.Debug("memory store failed: %v", err)
	} else {
		c.metrics.store(ctx, tierMemory)
	}
	if !cfg.SkipPersist && c.persistent != nil {
		// Best effort: a full or unavailable store must not fail the query.
		if err := c.persistent.Set(ctx, c.storageKey(cfg.Key), data, c.ttl); err != nil {
			c.log.Debug("persistent store failed: %v", err)
		} else {
			c.metrics.store(ctx, tierPersistent)
		}
	}

	return env, nil
}

// tierLookup reads, validates and decodes one tier's entry. Corrupt and
// expired entries are removed on discovery and reported as misses, as are
// tier read errors. The raw entry bytes are returned alongside the decoded
// envelope so a persistent hit can be promoted without re-reading.
func tierLookup[T any](ctx context.Context, c *Cache, tier Tier, storageKey string, name string) (Envelope[T], []byte, bool) {
	miss := func() (Envelope[T], []byte, bool) {
		c.metrics.miss(ctx, name)
		return Envelope[T]{}, nil, false
	}

	data, found, err := tier.Get(ctx, storageKey)
	if err != nil {
		c.log.Debug("%s tier read failed: %v", name, err)
		return miss()
	}
	if !found {
		return miss()
	}

	e, err := decodeEntry(data)
	if err != nil {
		c.log.Debug("%s tier entry corrupt, dropping: %v", name, err)
		_ = tier.Delete(ctx, storageKey)
		return miss()
	}
	if e.expired(c.ttl, c.now()) {
		_ = tier.Delete(ctx, storageKey)
		c.metrics.evict(ctx, name)
		return miss()
	}

	env, err := decodeResult[T](e)
	if err != nil {
		c.log.Debug("%s tier result corrupt, dropping: %v", name, err)
		_ = tier.Delete(ctx, storageKey)
		return miss()
	}

	c.metrics.hit(ctx, name)
	return env, data, true
}

// promote copies a persistent hit back into the memory tier for the rest of
// its lifetime.
func (c *Cache) promote(ctx context.Context, key string, raw []byte) {
	e, err := decodeEntry(raw)
	if err != nil {
		return
	}
	if remaining := e.remaining(c.ttl, c.now()); remaining > 0 {
		_ = c.memory.Set(ctx, key, raw, remaining)
	}
}

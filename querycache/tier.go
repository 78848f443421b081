package querycache

import (
	"context"
	"time"

	"github.com/dugoutlabs/go-dugout/logger"
)

// DefaultTTL is the process-wide entry lifetime used when WithTTL is not given.
const DefaultTTL = 3 * time.Hour

// DefaultQueryTimeout is the per-operation timeout for tiers that perform I/O
// (SQLite, Redis). Prevents indefinite hangs on slow or unresponsive storage.
const DefaultQueryTimeout = 5 * time.Second

const (
	// DefaultNamespace prefixes every persistent-tier key so bulk clears never
	// touch unrelated persisted data.
	DefaultNamespace = "dugout"
	// DefaultVersion segregates cache generations; bump it when the entry
	// format changes so stale generations are never read back.
	DefaultVersion = "v1"
)

// Tier is one storage layer of the cache. Implementations traffic in
// serialized entries ([]byte) and must be safe for concurrent use.
//
// The ttl passed to Set is a hygiene bound for the tier's own eviction; the
// executor is the authority on freshness and re-checks the entry timestamp on
// every read.
type Tier interface {
	// Get returns the serialized entry for key. Returns (nil, false, nil) on miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a serialized entry with the given TTL.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Idempotent, no error on miss.
	Delete(ctx context.Context, key string) error

	// Clear removes every key under prefix. An empty prefix removes everything.
	Clear(ctx context.Context, prefix string) error

	// Close releases tier resources.
	Close() error
}

type config struct {
	ttl          time.Duration
	namespace    string
	version      string
	queryTimeout time.Duration
	expiryCheck  time.Duration
	persistent   Tier
	log          logger.Logger
	now          func() time.Time
}

// Option configures a Cache or a Tier implementation.
type Option func(*config)

func defaultConfig() config {
	return config{
		ttl:          DefaultTTL,
		namespace:    DefaultNamespace,
		version:      DefaultVersion,
		queryTimeout: DefaultQueryTimeout,
		expiryCheck:  time.Minute,
		log:          logger.NewConsoleLogger(logger.LevelNone),
		now:          time.Now,
	}
}

func applyOptions(opts []Option) config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithTTL sets the entry lifetime. Defaults to DefaultTTL (3 hours).
func WithTTL(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.ttl = d
		}
	}
}

// WithNamespace sets the persistent-tier key namespace.
func WithNamespace(ns string) Option {
	return func(c *config) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithVersion sets the persistent-tier key version segment.
func WithVersion(v string) Option {
	return func(c *config) {
		if v != "" {
			c.version = v
		}
	}
}

// WithQueryTimeout sets the per-operation timeout for I/O-backed tiers.
// Defaults to DefaultQueryTimeout (5 seconds).
func WithQueryTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.queryTimeout = d
		}
	}
}

// WithExpiryCheck sets the interval for background expired entry cleanup in
// the memory and SQLite tiers. Defaults to 1 minute.
func WithExpiryCheck(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.expiryCheck = d
		}
	}
}

// WithPersistent attaches a persistent tier. Without it the cache runs
// memory-only, which is not an error: persistence is best effort throughout.
func WithPersistent(t Tier) Option {
	return func(c *config) { c.persistent = t }
}

// WithLogger sets the logger. Defaults to a silent console logger.
func WithLogger(log logger.Logger) Option {
	return func(c *config) {
		if log != nil {
			c.log = log
		}
	}
}

// WithClock overrides the time source. Used by tests to pin TTL boundaries.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		if now != nil {
			c.now = now
		}
	}
}

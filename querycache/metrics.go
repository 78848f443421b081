package querycache

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	tierMemory     = "memory"
	tierPersistent = "persistent"
)

// cacheMetrics records cache traffic through the global OpenTelemetry meter.
// Without a configured SDK these are no-ops, so the cache stays usable in
// tests and tools that never wire up telemetry.
type cacheMetrics struct {
	hits      metric.Int64Counter
	misses    metric.Int64Counter
	stores    metric.Int64Counter
	evictions metric.Int64Counter
}

func newCacheMetrics() *cacheMetrics {
	meter := otel.Meter("github.com/dugoutlabs/go-dugout/querycache")
	hits, _ := meter.Int64Counter("querycache.hits",
		metric.WithDescription("Cache hits by tier"))
	misses, _ := meter.Int64Counter("querycache.misses",
		metric.WithDescription("Cache misses by tier"))
	stores, _ := meter.Int64Counter("querycache.stores",
		metric.WithDescription("Entries written by tier"))
	evictions, _ := meter.Int64Counter("querycache.evictions",
		metric.WithDescription("Expired entries evicted on read by tier"))
	return &cacheMetrics{hits: hits, misses: misses, stores: stores, evictions: evictions}
}

func tierAttr(tier string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("tier", tier))
}

func (m *cacheMetrics) hit(ctx context.Context, tier string) {
	m.hits.Add(ctx, 1, tierAttr(tier))
}

func (m *cacheMetrics) miss(ctx context.Context, tier string) {
	m.misses.Add(ctx, 1, tierAttr(tier))
}

func (m *cacheMetrics) store(ctx context.Context, tier string) {
	m.stores.Add(ctx, 1, tierAttr(tier))
}

func (m *cacheMetrics) evict(ctx context.Context, tier string) {
	m.evictions.Add(ctx, 1, tierAttr(tier))
}

// Package querycache memoizes read-only remote queries behind a dual-tier
// cache: a process-local memory tier over an optional persistent tier.
//
// # Keys
//
// [Key] derives a deterministic cache key from a table name and a query
// descriptor (selected fields, filters, ordering, ranges). The key is
// canonical JSON with object keys sorted at every depth, so descriptors that
// are deeply equal always map to the same key regardless of how they were
// built. Keys are kept as plain text rather than hashed: the persistent tier
// namespaces them as {namespace}:{version}:{key}, and bulk clears rely on
// that prefix staying enumerable.
//
// # Envelopes
//
// Remote queries resolve with a {data, error} envelope, modeled here as the
// tagged [Envelope] type. An envelope carrying an error is returned to the
// caller like any other result but is never written to either tier; a
// failing backend must not poison the cache.
//
// # Tiers
//
// The memory tier is a mutex-guarded map scoped to the process. The
// persistent tier is pluggable through [Tier]:
//
//   - [NewSQLiteTier]: file-backed SQLite via modernc.org/sqlite (pure Go).
//     Durable across restarts; the library analog of the browser dashboard's
//     local storage.
//   - [NewRedisTier]: Redis via go-redis, for deployments that share one
//     durable cache across processes.
//
// Entries are msgpack-serialized in both tiers. Every hit decodes a fresh
// copy, so mutating a returned payload never alters what the next call
// observes. Persistence is strictly best effort: a full, locked or corrupt
// store degrades the call to a fresh fetch and is never surfaced to the
// caller.
//
// # Executing queries
//
// [Do] is the cache-aside executor:
//
//	key := querycache.Key("batting_stats", map[string]any{
//	    "filters": map[string]any{"team_id": teamID},
//	    "order":   map[string]any{"column": "avg", "ascending": false},
//	})
//	env, err := querycache.Do(ctx, querycache.QueryConfig{Key: key}, cache,
//	    func(ctx context.Context) (querycache.Envelope[[]BattingLine], error) {
//	        return client.Fetch(ctx, q)
//	    })
//
// Lookup order is always memory, then persistent (a hit there is promoted
// back into memory), then the fetch. Entries expire after the fixed
// process-wide TTL (3 hours by default) and are evicted lazily by whichever
// read discovers them. There is no request coalescing: concurrent callers on
// a cold key each execute the fetch and the last write wins.
//
// [Cache.Invalidate] drops a single key from both tiers;
// [Cache.Clear] empties the memory tier and deletes only the persistent keys
// under this cache's namespace+version prefix.
package querycache

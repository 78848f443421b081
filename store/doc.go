// Package store is the read-only client for the stats store's REST
// endpoint. A [Query] captures the logical shape of a request (table,
// selected columns, equality filters, ordering, row range) and doubles as
// the input to cache key derivation via [Query.CacheKey]. [Fetch] adapts a
// query into a querycache.FetchFunc, mapping store responses into the
// {data, error} envelope the cache expects: in-band store errors come back
// as error envelopes (returned but never cached), transport failures reject.
package store

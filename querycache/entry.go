package querycache

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// entry is the stored form of a cached result. Result holds the
// msgpack-encoded envelope so tiers stay free of the payload type; decoding
// it on every hit is also what gives callers an isolated deep copy.
type entry struct {
	CreatedAt int64  `msgpack:"created_at"` // unix milliseconds
	Result    []byte `msgpack:"result"`
}

func (e entry) createdAt() time.Time {
	return time.UnixMilli(e.CreatedAt)
}

// expired reports whether the entry is older than ttl at the given instant.
func (e entry) expired(ttl time.Duration, now time.Time) bool {
	return now.Sub(e.createdAt()) > ttl
}

// remaining returns the entry's remaining lifetime, used when promoting a
// persistent hit into the memory tier.
func (e entry) remaining(ttl time.Duration, now time.Time) time.Duration {
	return ttl - now.Sub(e.createdAt())
}

func encodeEntry[T any](env Envelope[T], now time.Time) ([]byte, error) {
	result, err := msgpack.Marshal(env)
	if err != nil {
		return nil, err
	}
	return msgpack.Marshal(entry{CreatedAt: now.UnixMilli(), Result: result})
}

func decodeEntry(data []byte) (entry, error) {
	var e entry
	err := msgpack.Unmarshal(data, &e)
	return e, err
}

func decodeResult[T any](e entry) (Envelope[T], error) {
	var env Envelope[T]
	err := msgpack.Unmarshal(e.Result, &env)
	return env, err
}

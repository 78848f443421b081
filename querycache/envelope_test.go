package querycache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeCacheable(t *testing.T) {
	assert.True(t, Ok("data").Cacheable())
	assert.False(t, Failf[string]("bad request").Cacheable())
	assert.False(t, Fail[string](&QueryError{Message: "timeout", Code: "57014"}).Cacheable())
}

func TestQueryErrorError(t *testing.T) {
	var nilErr *QueryError
	assert.Equal(t, "", nilErr.Error())
	assert.Equal(t, "row not found", (&QueryError{Message: "row not found"}).Error())
}

func TestEntryRoundTrip(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	env := Ok(map[string]string{"team": "Herons"})

	data, err := encodeEntry(env, now)
	require.NoError(t, err)

	e, err := decodeEntry(data)
	require.NoError(t, err)
	assert.Equal(t, now, e.createdAt())

	decoded, err := decodeResult[map[string]string](e)
	require.NoError(t, err)
	assert.Equal(t, env.Data, decoded.Data)
	assert.Nil(t, decoded.Error)
}

func TestEntryExpiry(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	e := entry{CreatedAt: now.UnixMilli()}
	ttl := 3 * time.Hour

	assert.False(t, e.expired(ttl, now))
	assert.False(t, e.expired(ttl, now.Add(ttl)))
	assert.True(t, e.expired(ttl, now.Add(ttl+time.Millisecond)))
	assert.Equal(t, ttl-time.Minute, e.remaining(ttl, now.Add(time.Minute)))
}

func TestEntryErrorEnvelopeRoundTrip(t *testing.T) {
	env := Fail[string](&QueryError{Message: "relation does not exist", Code: "42P01", Hint: "check the table name"})
	data, err := encodeEntry(env, time.Now())
	require.NoError(t, err)

	e, err := decodeEntry(data)
	require.NoError(t, err)
	decoded, err := decodeResult[string](e)
	require.NoError(t, err)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, "42P01", decoded.Error.Code)
}

func TestDecodeEntryCorrupt(t *testing.T) {
	_, err := decodeEntry([]byte("definitely not msgpack"))
	assert.Error(t, err)
}

package querycache

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteTierSetGetDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier, err := NewSQLiteTier(ctx, ":memory:")
	require.NoError(t, err)
	defer tier.Close()

	data, found, err := tier.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)

	assert.NoError(t, tier.Set(ctx, "key", []byte("payload"), time.Minute))
	data, found, err = tier.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), data)

	// Upsert replaces the value.
	assert.NoError(t, tier.Set(ctx, "key", []byte("fresher"), time.Minute))
	data, _, _ = tier.Get(ctx, "key")
	assert.Equal(t, []byte("fresher"), data)

	assert.NoError(t, tier.Delete(ctx, "key"))
	_, found, err = tier.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteTierDurableAcrossReopen(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	tier, err := NewSQLiteTier(ctx, dbPath)
	require.NoError(t, err)
	assert.NoError(t, tier.Set(ctx, "key", []byte("survives"), time.Hour))
	assert.NoError(t, tier.Close())

	reopened, err := NewSQLiteTier(ctx, dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	data, found, err := reopened.Get(ctx, "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("survives"), data)
}

func TestSQLiteTierLazyExpiry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier, err := NewSQLiteTier(ctx, ":memory:", WithExpiryCheck(time.Hour))
	require.NoError(t, err)
	defer tier.Close()

	assert.NoError(t, tier.Set(ctx, "key", []byte("payload"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, found, err := tier.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSQLiteTierClearPrefixScoped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier, err := NewSQLiteTier(ctx, ":memory:")
	require.NoError(t, err)
	defer tier.Close()

	assert.NoError(t, tier.Set(ctx, "dugout:v1:alpha", []byte("a"), time.Hour))
	assert.NoError(t, tier.Set(ctx, "dugout:v1:beta", []byte("b"), time.Hour))
	assert.NoError(t, tier.Set(ctx, "dugout:v2:alpha", []byte("next-gen"), time.Hour))
	assert.NoError(t, tier.Set(ctx, "other-app:state", []byte("foreign"), time.Hour))

	assert.NoError(t, tier.Clear(ctx, "dugout:v1:"))

	_, found, _ := tier.Get(ctx, "dugout:v1:alpha")
	assert.False(t, found)
	_, found, _ = tier.Get(ctx, "dugout:v1:beta")
	assert.False(t, found)
	_, found, _ = tier.Get(ctx, "dugout:v2:alpha")
	assert.True(t, found)
	_, found, _ = tier.Get(ctx, "other-app:state")
	assert.True(t, found)
}

func TestSQLiteTierClearEscapesWildcards(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier, err := NewSQLiteTier(ctx, ":memory:")
	require.NoError(t, err)
	defer tier.Close()

	// A prefix containing LIKE wildcards must match literally.
	assert.NoError(t, tier.Set(ctx, "ns_1:key", []byte("a"), time.Hour))
	assert.NoError(t, tier.Set(ctx, "nsX1:key", []byte("b"), time.Hour))

	assert.NoError(t, tier.Clear(ctx, "ns_1:"))
	_, found, _ := tier.Get(ctx, "ns_1:key")
	assert.False(t, found)
	_, found, _ = tier.Get(ctx, "nsX1:key")
	assert.True(t, found)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\%b\_c\\d`, escapeLike(`a%b_c\d`))
}

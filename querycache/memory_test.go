package querycache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemoryTierSetGetDelete(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier := newMemoryTier(ctx, time.Minute)
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

	assert.NoError(t, tier.Delete(ctx, "key"))
	_, found, err = tier.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)

	// Delete on a missing key is a no-op.
	assert.NoError(t, tier.Delete(ctx, "missing"))
}

func TestMemoryTierLazyExpiry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier := newMemoryTier(ctx, time.Hour)
	defer tier.Close()

	assert.NoError(t, tier.Set(ctx, "key", []byte("payload"), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, found, err := tier.Get(ctx, "key")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, tier.len())
}

func TestMemoryTierSweeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier := newMemoryTier(ctx, 20*time.Millisecond)
	defer tier.Close()

	assert.NoError(t, tier.Set(ctx, "short", []byte("x"), 5*time.Millisecond))
	assert.NoError(t, tier.Set(ctx, "long", []byte("y"), time.Hour))

	assert.Eventually(t, func() bool {
		return tier.len() == 1
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryTierClear(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier := newMemoryTier(ctx, time.Minute)
	defer tier.Close()

	assert.NoError(t, tier.Set(ctx, "a:1", []byte("x"), time.Minute))
	assert.NoError(t, tier.Set(ctx, "a:2", []byte("y"), time.Minute))
	assert.NoError(t, tier.Set(ctx, "b:1", []byte("z"), time.Minute))

	assert.NoError(t, tier.Clear(ctx, "a:"))
	assert.Equal(t, 1, tier.len())
	_, found, _ := tier.Get(ctx, "b:1")
	assert.True(t, found)

	assert.NoError(t, tier.Clear(ctx, ""))
	assert.Equal(t, 0, tier.len())
}

func TestMemoryTierCloseIdempotent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tier := newMemoryTier(ctx, time.Minute)
	assert.NoError(t, tier.Close())
	assert.NoError(t, tier.Close())
}

package querycache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryValue struct {
	data    []byte
	expires time.Time
}

// memoryTier is the hot tier: a mutex-guarded map scoped to the process
// lifetime. Expired entries are dropped lazily on read and by a background
// sweeper.
type memoryTier struct {
	ctx         context.Context
	cancel      context.CancelFunc
	entries     map[string]*memoryValue
	mutex       sync.Mutex
	waitGroup   sync.WaitGroup
	once        sync.Once
	expiryCheck time.Duration
}

var _ Tier = (*memoryTier)(nil)

func newMemoryTier(parent context.Context, expiryCheck time.Duration) *memoryTier {
	ctx, cancel := context.WithCancel(parent)
	t := &memoryTier{
		ctx:         ctx,
		cancel:      cancel,
		entries:     make(map[string]*memoryValue),
		expiryCheck: expiryCheck,
	}
	t.waitGroup.Add(1)
	go t.run()
	return t
}

func (t *memoryTier) Get(_ context.Context, key string) ([]byte, bool, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	val, ok := t.entries[key]
	if !ok {
		return nil, false, nil
	}
	if val.expires.Before(time.Now()) {
		delete(t.entries, key)
		return nil, false, nil
	}
	return val.data, true, nil
}

func (t *memoryTier) Set(_ context.Context, key string, data []byte, ttl time.Duration) error {
	t.mutex.Lock()
	t.entries[key] = &memoryValue{data: data, expires: time.Now().Add(ttl)}
	t.mutex.Unlock()
	return nil
}

func (t *memoryTier) Delete(_ context.Context, key string) error {
	t.mutex.Lock()
	delete(t.entries, key)
	t.mutex.Unlock()
	return nil
}

func (t *memoryTier) Clear(_ context.Context, prefix string) error {
	t.mutex.Lock()
	if prefix == "" {
		t.entries = make(map[string]*memoryValue)
	} else {
		for key := range t.entries {
			if strings.HasPrefix(key, prefix) {
				delete(t.entries, key)
			}
		}
	}
	t.mutex.Unlock()
	return nil
}

func (t *memoryTier) Close() error {
	t.once.Do(func() {
		t.cancel()
		t.waitGroup.Wait()
	})
	return nil
}

func (t *memoryTier) len() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return len(t.entries)
}

func (t *memoryTier) run() {
	defer t.waitGroup.Done()
	ticker := time.NewTicker(t.expiryCheck)
	defer ticker.Stop()
	for {
		select {
		case <-t.ctx.Done():
			return
		case <-ticker.C:
			now := time.Now()
			t.mutex.Lock()
			for key, val := range t.entries {
				if val.expires.Before(now) {
					delete(t.entries, key)
				}
			}
			t.mutex.Unlock()
		}
	}
}

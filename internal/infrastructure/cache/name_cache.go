package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jass/bff/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const nameCachePrefix = "jass:lookup:"

// RedisNameCache implements shared.NameCache using Redis
type RedisNameCache struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisNameCache creates a name cache on an existing Redis client
func NewRedisNameCache(client redis.UniversalClient) *RedisNameCache {
	return &RedisNameCache{client: client, keyPrefix: nameCachePrefix}
}

// Get loads a cached table
func (c *RedisNameCache) Get(ctx context.Context, key string) (map[string]string, bool, error) {
	data, err := c.client.Get(ctx, c.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read name cache: %w", err)
	}

	var names map[string]string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, false, fmt.Errorf("failed to decode name cache entry: %w", err)
	}
	return names, true, nil
}

// Set stores a table with a TTL
func (c *RedisNameCache) Set(ctx context.Context, key string, names map[string]string, ttl time.Duration) error {
	data, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("failed to encode name cache entry: %w", err)
	}
	if err := c.client.Set(ctx, c.keyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write name cache: %w", err)
	}
	return nil
}

var _ shared.NameCache = (*RedisNameCache)(nil)

type nameEntry struct {
	names     map[string]string
	expiresAt time.Time
}

// InMemoryNameCache implements shared.NameCache in process memory.
// It starts a background goroutine that drops expired tables; call Close to
// stop it.
type InMemoryNameCache struct {
	mu        sync.RWMutex
	entries   map[string]nameEntry
	now       func() time.Time
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryNameCache creates an in-memory name cache
func NewInMemoryNameCache() *InMemoryNameCache {
	c := &InMemoryNameCache{
		entries:  make(map[string]nameEntry),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// Get returns a copy of the cached table
func (c *InMemoryNameCache) Get(_ context.Context, key string) (map[string]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		return nil, false, nil
	}
	return copyNames(e.names), true, nil
}

// Set stores a copy of names
func (c *InMemoryNameCache) Set(_ context.Context, key string, names map[string]string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = nameEntry{names: copyNames(names), expiresAt: c.now().Add(ttl)}
	return nil
}

// Size returns the number of entries (for testing/monitoring)
func (c *InMemoryNameCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryNameCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryNameCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryNameCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func copyNames(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ shared.NameCache = (*InMemoryNameCache)(nil)

package asset

import (
	"container/list"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache stores raw fetched bytes keyed by source. Implementations must be
// safe for concurrent use. A cache failure is never fatal; it behaves as a
// miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, data []byte)
}

// DefaultCacheTTL is how long a fetched asset stays in a shared cache.
const DefaultCacheTTL = 10 * time.Minute

// MemoryCache is a size-bounded in-process LRU cache.
type MemoryCache struct {
	mu       sync.Mutex
	maxBytes int
	size     int
	order    *list.List
	items    map[string]*list.Element
}

type memoryEntry struct {
	key  string
	data []byte
}

// NewMemoryCache creates a cache holding at most maxBytes of asset data.
func NewMemoryCache(maxBytes int) *MemoryCache {
	return &MemoryCache{
		maxBytes: maxBytes,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Get returns the cached bytes for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*memoryEntry).data, true
}

// Set stores data under key, evicting the least recently used entries when
// the cache is full. Entries larger than the whole cache are not stored.
func (c *MemoryCache) Set(_ context.Context, key string, data []byte) {
	if len(data) > c.maxBytes {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[key]; ok {
		e := el.Value.(*memoryEntry)
		c.size += len(data) - len(e.data)
		e.data = data
		c.order.MoveToFront(el)
	} else {
		c.items[key] = c.order.PushFront(&memoryEntry{key: key, data: data})
		c.size += len(data)
	}

	for c.size > c.maxBytes {
		last := c.order.Back()
		e := last.Value.(*memoryEntry)
		c.order.Remove(last)
		delete(c.items, e.key)
		c.size -= len(e.data)
	}
}

// Len returns the number of cached entries.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// redisKeyPrefix is the key prefix for cached assets.
const redisKeyPrefix = "aavanam:asset:"

// RedisCache shares fetched assets between engine instances through Redis
// or Valkey.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisCache creates a cache backed by client. A zero ttl uses
// DefaultCacheTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl == 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Get retrieves cached bytes. Errors other than a miss are logged.
func (rc *RedisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := rc.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		rc.logger.Warn("asset cache get error", "key", key, "error", err)
		return nil, false
	}
	rc.logger.Debug("asset cache hit", "key", key)
	return val, true
}

// Set stores bytes with the configured TTL.
func (rc *RedisCache) Set(ctx context.Context, key string, data []byte) {
	if err := rc.client.Set(ctx, redisKeyPrefix+key, data, rc.ttl).Err(); err != nil {
		rc.logger.Warn("asset cache set error", "key", key, "error", err)
	}
}

// Purge removes every cached asset by scanning for the key prefix.
func (rc *RedisCache) Purge(ctx context.Context) (int, error) {
	var (
		cursor  uint64
		deleted int
	)
	for {
		keys, next, err := rc.client.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			return deleted, err
		}
		if len(keys) > 0 {
			if err := rc.client.Del(ctx, keys...).Err(); err != nil {
				return deleted, err
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	rc.logger.Info("asset cache purged", "deleted", deleted)
	return deleted, nil
}

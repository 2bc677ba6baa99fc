package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/set-night/mesabot/internal/service"
)

// NameStore holds the list of product names used for fuzzy matching.
type NameStore interface {
	// Get reports ok=false on a miss or an expired entry.
	Get(ctx context.Context) (names []string, ok bool, err error)
	Set(ctx context.Context, names []string) error
}

// MemoryNames is a process-local NameStore.
type MemoryNames struct {
	mu       sync.RWMutex
	names    []string
	cachedAt time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryNames(ttl time.Duration) *MemoryNames {
	return &MemoryNames{ttl: ttl, now: time.Now}
}

func (c *MemoryNames) Get(context.Context) ([]string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.names == nil || c.now().Sub(c.cachedAt) > c.ttl {
		return nil, false, nil
	}
	return c.names, true, nil
}

func (c *MemoryNames) Set(_ context.Context, names []string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.names = names
	c.cachedAt = c.now()
	return nil
}

// RedisNames keeps the names as a JSON array under one key.
type RedisNames struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

func NewRedisNames(rdb *redis.Client, key string, ttl time.Duration) *RedisNames {
	return &RedisNames{rdb: rdb, key: key, ttl: ttl}
}

func (c *RedisNames) Get(ctx context.Context) ([]string, bool, error) {
	raw, err := c.rdb.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", c.key, err)
	}

	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", c.key, err)
	}
	return names, true, nil
}

func (c *RedisNames) Set(ctx context.Context, names []string) error {
	raw, err := json.Marshal(names)
	if err != nil {
		return fmt.Errorf("encode %s: %w", c.key, err)
	}
	if err := c.rdb.Set(ctx, c.key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", c.key, err)
	}
	return nil
}

// CachedCatalog serves ProductNames from a NameStore and passes every other
// query to the wrapped store. Cache failures fall back to the store.
type CachedCatalog struct {
	service.CatalogStore
	names NameStore
}

func NewCachedCatalog(store service.CatalogStore, names NameStore) *CachedCatalog {
	return &CachedCatalog{CatalogStore: store, names: names}
}

func (c *CachedCatalog) ProductNames(ctx context.Context) ([]string, error) {
	names, ok, err := c.names.Get(ctx)
	if err != nil {
		slog.Warn("product name cache read failed", "error", err)
	}
	if ok {
		return names, nil
	}

	names, err = c.CatalogStore.ProductNames(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.names.Set(ctx, names); err != nil {
		slog.Warn("product name cache write failed", "error", err)
	}
	return names, nil
}

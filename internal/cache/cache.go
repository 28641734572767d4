package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dashboard-api/internal/metrics"
)

// ErrUnavailable marks a failed round trip to the store. Only Increment
// surfaces it; the other operations are best-effort and report a boolean.
var ErrUnavailable = errors.New("cache unavailable")

// DefaultOperationTimeout bounds a single round trip, retries included.
const DefaultOperationTimeout = 300 * time.Millisecond

// Cache is a disposable accelerator in front of PostgreSQL. Values are JSON.
// No operation spans more than one key and nothing is transactional.
type Cache struct {
	client  *redis.Client
	metrics *metrics.Metrics
	timeout time.Duration
}

func New(client *redis.Client, m *metrics.Metrics) *Cache {
	return &Cache{client: client, metrics: m, timeout: DefaultOperationTimeout}
}

// WithTimeout replaces the per-operation deadline. Non-positive values keep
// the current one.
func (c *Cache) WithTimeout(timeout time.Duration) *Cache {
	if timeout > 0 {
		c.timeout = timeout
	}
	return c
}

func (c *Cache) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.timeout)
}

// Get decodes the value at key into dest. It returns false on a miss, on a
// store failure and on a payload that does not decode; corrupt payloads are
// removed so the next read falls through to the source of truth.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	opCtx, cancel := c.bound(ctx)
	raw, err := c.client.Get(opCtx, key).Bytes()
	cancel()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheOperation("get", "miss")
		return false
	}
	if err != nil {
		c.fail("get", key, err)
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		slog.Warn("cache payload undecodable; dropping", "namespace", namespace(key), "error", err)
		c.metrics.CacheOperation("get", "corrupt")
		c.Del(ctx, key)
		return false
	}

	c.metrics.CacheOperation("get", "hit")
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Error("cache value not encodable", "namespace", namespace(key), "error", err)
		c.metrics.CacheOperation("set", "error")
		return false
	}

	ctx, cancel := c.bound(ctx)
	defer cancel()

	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		c.fail("set", key, err)
		return false
	}

	c.metrics.CacheOperation("set", "ok")
	return true
}

func (c *Cache) Del(ctx context.Context, key string) bool {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.fail("del", key, err)
		return false
	}

	c.metrics.CacheOperation("del", "ok")
	return true
}

// Exists reports false when the store cannot be reached.
func (c *Cache) Exists(ctx context.Context, key string) bool {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		c.fail("exists", key, err)
		return false
	}

	c.metrics.CacheOperation("exists", "ok")
	return n == 1
}

// Increment adds delta to the counter at key and returns the new value. A
// failure is returned as an error wrapping ErrUnavailable, never as a count.
func (c *Cache) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	n, err := c.client.IncrBy(ctx, key, delta).Result()
	if err != nil {
		c.fail("incr", key, err)
		return 0, fmt.Errorf("%w: incrby %s: %w", ErrUnavailable, namespace(key), err)
	}

	c.metrics.CacheOperation("incr", "ok")
	return n, nil
}

func (c *Cache) Expire(ctx context.Context, key string, ttl time.Duration) bool {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	if err := c.client.Expire(ctx, key, ttl).Err(); err != nil {
		c.fail("expire", key, err)
		return false
	}

	c.metrics.CacheOperation("expire", "ok")
	return true
}

func (c *Cache) Ping(ctx context.Context) error {
	ctx, cancel := c.bound(ctx)
	defer cancel()

	return c.client.Ping(ctx).Err()
}

func (c *Cache) Close() error {
	return c.client.Close()
}

func (c *Cache) fail(operation string, key string, err error) {
	slog.Error("cache operation failed", "operation", operation, "namespace", namespace(key), "error", err)
	c.metrics.CacheOperation(operation, "error")
}

// namespace strips the variable part of a key for logging. Blacklist keys
// embed raw bearer tokens and must never reach the logs.
func namespace(key string) string {
	if i := strings.IndexByte(key, ':'); i >= 0 {
		return key[:i]
	}
	return key
}

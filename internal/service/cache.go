package service

import (
	"context"
	"time"
)

// Cache is the slice of cache.Cache the gate services depend on.
type Cache interface {
	Get(ctx context.Context, key string, dest any) bool
	Set(ctx context.Context, key string, value any, ttl time.Duration) bool
	Del(ctx context.Context, key string) bool
	Exists(ctx context.Context, key string) bool
	Increment(ctx context.Context, key string, delta int64) (int64, error)
	Expire(ctx context.Context, key string, ttl time.Duration) bool
}

package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options tunes the Redis connection. Retries back off exponentially from
// MinRetryBackoff up to MaxRetryBackoff and stop after MaxRetries attempts.
type Options struct {
	URL             string
	MaxRetries      int
	MinRetryBackoff time.Duration
	MaxRetryBackoff time.Duration
	DialTimeout     time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	PoolSize        int
}

func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	redisOpts, err := redis.ParseURL(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	if opts.MaxRetries != 0 {
		redisOpts.MaxRetries = opts.MaxRetries
	}
	if opts.MinRetryBackoff > 0 {
		redisOpts.MinRetryBackoff = opts.MinRetryBackoff
	}
	if opts.MaxRetryBackoff > 0 {
		redisOpts.MaxRetryBackoff = opts.MaxRetryBackoff
	}
	if opts.DialTimeout > 0 {
		redisOpts.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		redisOpts.ReadTimeout = opts.ReadTimeout
	}
	if opts.WriteTimeout > 0 {
		redisOpts.WriteTimeout = opts.WriteTimeout
	}
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}

	// Deadlines from the per-operation context also bound socket reads and writes.
	redisOpts.ContextTimeoutEnabled = true

	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	slog.Info("redis connected", "addr", redisOpts.Addr, "db", redisOpts.DB, "max_retries", redisOpts.MaxRetries)
	return client, nil
}

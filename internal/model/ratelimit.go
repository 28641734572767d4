package model

import "time"

const (
	DefaultMaxAttempts     = 5
	DefaultRateLimitWindow = 15 * time.Minute
)

// RateLimitRule configures a fixed-window limit for one action. It is plain
// data, declared next to the route it protects.
type RateLimitRule struct {
	Action      string
	MaxAttempts int
	Window      time.Duration
}

func (r RateLimitRule) WithDefaults() RateLimitRule {
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = DefaultMaxAttempts
	}
	if r.Window <= 0 {
		r.Window = DefaultRateLimitWindow
	}
	return r
}

// TTL is the key lifetime armed on the first hit of a window, in whole seconds.
func (r RateLimitRule) TTL() time.Duration {
	ttl := r.Window.Truncate(time.Second)
	if ttl < time.Second {
		return time.Second
	}
	return ttl
}

package service

import (
	"context"
	"log/slog"

	"dashboard-api/internal/cache"
	"dashboard-api/internal/metrics"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

// RateLimitService counts actions per user in fixed windows. The TTL is armed
// by whichever request sees count 1, in a second round trip after INCRBY;
// racing first requests each set the same TTL. Near a window boundary a user
// can get up to twice MaxAttempts through.
type RateLimitService struct {
	cache   Cache
	metrics *metrics.Metrics
}

func NewRateLimitService(cache Cache, m *metrics.Metrics) *RateLimitService {
	return &RateLimitService{cache: cache, metrics: m}
}

// Check returns RateLimited once the window's count exceeds MaxAttempts. When
// the counter cannot be incremented the request is allowed.
func (s *RateLimitService) Check(ctx context.Context, rule model.RateLimitRule, userID string) error {
	rule = rule.WithDefaults()
	key := cache.RateLimitKey(rule.Action, userID)

	count, err := s.cache.Increment(ctx, key, 1)
	if err != nil {
		slog.Error("action rate limit unavailable; allowing request", "action", rule.Action, "user_id", userID, "error", err)
		s.metrics.GateDecision("rate_limit", "fail_open")
		return nil
	}

	if count == 1 {
		s.cache.Expire(ctx, key, rule.TTL())
	}

	if count > int64(rule.MaxAttempts) {
		return apierror.RateLimited(rule.Action)
	}

	return nil
}

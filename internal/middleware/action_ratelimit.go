package middleware

import (
	"context"
	"net/http"
	"strconv"

	"dashboard-api/internal/metrics"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

type actionChecker interface {
	Check(ctx context.Context, rule model.RateLimitRule, userID string) error
}

// ActionRateLimiter throttles individual actions per authenticated user.
type ActionRateLimiter struct {
	limiter actionChecker
	metrics *metrics.Metrics
}

func NewActionRateLimiter(limiter actionChecker, m *metrics.Metrics) *ActionRateLimiter {
	return &ActionRateLimiter{limiter: limiter, metrics: m}
}

// Limit applies rule to the route. RequireAuth must run first.
func (l *ActionRateLimiter) Limit(rule model.RateLimitRule) func(http.Handler) http.Handler {
	rule = rule.WithDefaults()
	retryAfter := strconv.Itoa(int(rule.TTL().Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				reject(w, l.metrics, "rate_limit", apierror.Unauthenticated())
				return
			}

			if err := l.limiter.Check(r.Context(), rule, user.ID); err != nil {
				w.Header().Set("Retry-After", retryAfter)
				reject(w, l.metrics, "rate_limit", err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

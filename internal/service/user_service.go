package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"dashboard-api/internal/cache"
	"dashboard-api/internal/metrics"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

const DefaultUserCacheTTL = 900 * time.Second

// userLoadTimeout bounds a shared store load, which outlives the caller that
// started it.
const userLoadTimeout = 10 * time.Second

// UserStore returns nil, nil when no user has the given id.
type UserStore interface {
	FindUserByID(ctx context.Context, id string) (*model.User, error)
}

type UserService struct {
	cache   Cache
	store   UserStore
	ttl     time.Duration
	metrics *metrics.Metrics
	loads   singleflight.Group
}

func NewUserService(cache Cache, store UserStore, ttl time.Duration, m *metrics.Metrics) *UserService {
	if ttl <= 0 {
		ttl = DefaultUserCacheTTL
	}
	return &UserService{cache: cache, store: store, ttl: ttl, metrics: m}
}

// Resolve returns the user for a token subject, reading through the cache.
// Concurrent misses for the same id share one store query. The query does
// not inherit the starting caller's cancellation; each caller stops waiting
// when its own context ends.
func (s *UserService) Resolve(ctx context.Context, id string) (model.User, error) {
	key := cache.UserKey(id)

	var user model.User
	if s.cache.Get(ctx, key, &user) {
		s.metrics.Lookup("user", "cache")
		return user, nil
	}

	results := s.loads.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), userLoadTimeout)
		defer cancel()

		found, err := s.store.FindUserByID(loadCtx, id)
		if err != nil {
			return nil, apierror.Internal(fmt.Errorf("find user %s: %w", id, err))
		}
		if found == nil {
			return nil, apierror.UserNotFound()
		}

		s.cache.Set(loadCtx, key, found, s.ttl)
		return *found, nil
	})

	select {
	case <-ctx.Done():
		return model.User{}, apierror.Internal(fmt.Errorf("resolve user %s: %w", id, ctx.Err()))
	case res := <-results:
		if res.Err != nil {
			return model.User{}, res.Err
		}
		s.metrics.Lookup("user", "store")
		return res.Val.(model.User), nil
	}
}

// Invalidate drops the cached copy so the next request re-reads the store.
func (s *UserService) Invalidate(ctx context.Context, id string) bool {
	return s.cache.Del(ctx, cache.UserKey(id))
}

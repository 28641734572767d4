package service

import (
	"context"
	"fmt"
	"time"

	"dashboard-api/internal/cache"
	"dashboard-api/internal/metrics"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

const DefaultPermissionCacheTTL = 300 * time.Second

// PermissionStore returns the elevated relation between a user and a server,
// or nil, nil when the user neither owns nor administers it.
type PermissionStore interface {
	FindServerRelation(ctx context.Context, userID string, serverID string) (*model.ServerRelation, error)
}

type PermissionService struct {
	cache   Cache
	store   PermissionStore
	ttl     time.Duration
	metrics *metrics.Metrics
}

func NewPermissionService(cache Cache, store PermissionStore, ttl time.Duration, m *metrics.Metrics) *PermissionService {
	if ttl <= 0 {
		ttl = DefaultPermissionCacheTTL
	}
	return &PermissionService{cache: cache, store: store, ttl: ttl, metrics: m}
}

// HasServerAccess caches both outcomes. A cached false is a hit and never
// triggers a store query until it expires.
func (s *PermissionService) HasServerAccess(ctx context.Context, userID string, serverID string) (bool, error) {
	key := cache.ServerPermissionKey(userID, serverID)

	var allowed bool
	if s.cache.Get(ctx, key, &allowed) {
		s.metrics.Lookup("server_permission", "cache")
		return allowed, nil
	}

	relation, err := s.store.FindServerRelation(ctx, userID, serverID)
	if err != nil {
		return false, apierror.Internal(fmt.Errorf("find server relation %s/%s: %w", userID, serverID, err))
	}
	s.metrics.Lookup("server_permission", "store")

	allowed = relation != nil && relation.Elevated()
	s.cache.Set(ctx, key, allowed, s.ttl)

	return allowed, nil
}

func (s *PermissionService) Authorize(ctx context.Context, userID string, serverID string) error {
	allowed, err := s.HasServerAccess(ctx, userID, serverID)
	if err != nil {
		return err
	}
	if !allowed {
		return apierror.Forbidden("You do not have permission to access this server")
	}
	return nil
}

func (s *PermissionService) Invalidate(ctx context.Context, userID string, serverID string) bool {
	return s.cache.Del(ctx, cache.ServerPermissionKey(userID, serverID))
}

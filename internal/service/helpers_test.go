package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"dashboard-api/internal/cache"
	"dashboard-api/internal/model"
)

func newTestCache(t *testing.T) (*cache.Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	return cache.New(client, nil), mr
}

type stubUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
	err   error
	calls atomic.Int32
}

func (s *stubUserStore) FindUserByID(_ context.Context, id string) (*model.User, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

type stubPermissionStore struct {
	relations map[string]model.ServerRelation
	err       error
	calls     atomic.Int32
}

func (s *stubPermissionStore) FindServerRelation(_ context.Context, userID string, serverID string) (*model.ServerRelation, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}

	rel, ok := s.relations[userID+"/"+serverID]
	if !ok || !rel.Elevated() {
		return nil, nil
	}
	return &rel, nil
}

// gatedUserStore holds every lookup until release is closed, giving up early
// only when the lookup's own context ends.
type gatedUserStore struct {
	stubUserStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedUserStore(users map[string]model.User) *gatedUserStore {
	return &gatedUserStore{
		stubUserStore: stubUserStore{users: users},
		started:       make(chan struct{}),
		release:       make(chan struct{}),
	}
}

func (s *gatedUserStore) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	s.once.Do(func() { close(s.started) })

	select {
	case <-s.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return s.stubUserStore.FindUserByID(ctx, id)
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

func TestHasServerAccess(t *testing.T) {
	t.Parallel()

	store := &stubPermissionStore{relations: map[string]model.ServerRelation{
		"owner/s1":  {UserID: "owner", ServerID: "s1", IsOwner: true},
		"admin/s1":  {UserID: "admin", ServerID: "s1", HasAdminPermissions: true},
		"member/s1": {UserID: "member", ServerID: "s1"},
	}}

	cases := []struct {
		user string
		want bool
	}{
		{"owner", true},
		{"admin", true},
		{"member", false},
		{"stranger", false},
	}

	for _, tc := range cases {
		t.Run(tc.user, func(t *testing.T) {
			c, _ := newTestCache(t)
			svc := NewPermissionService(c, store, 0, nil)

			got, err := svc.HasServerAccess(context.Background(), tc.user, "s1")
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCachedFalseIsNeverRequeried(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	store := &stubPermissionStore{}
	svc := NewPermissionService(c, store, 0, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, err := svc.HasServerAccess(ctx, "u1", "s1")
		require.NoError(t, err)
		require.False(t, allowed)
	}
	require.Equal(t, int32(1), store.calls.Load())
	require.Equal(t, 300*time.Second, mr.TTL("server_permissions:u1:s1"))

	mr.FastForward(301 * time.Second)
	_, err := svc.HasServerAccess(ctx, "u1", "s1")
	require.NoError(t, err)
	require.Equal(t, int32(2), store.calls.Load())
}

func TestCachedTrueIsNeverRequeried(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	store := &stubPermissionStore{relations: map[string]model.ServerRelation{
		"u1/s1": {UserID: "u1", ServerID: "s1", IsOwner: true},
	}}
	svc := NewPermissionService(c, store, 0, nil)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Authorize(context.Background(), "u1", "s1"))
	}
	require.Equal(t, int32(1), store.calls.Load())
}

func TestAuthorizeDenied(t *testing.T) {
	t.Parallel()

	c, _ := newTestCache(t)
	svc := NewPermissionService(c, &stubPermissionStore{}, 0, nil)

	err := svc.Authorize(context.Background(), "u1", "s1")
	require.ErrorIs(t, err, apierror.ErrForbidden)
	require.Equal(t, "You do not have permission to access this server", apierror.From(err).Message)
}

func TestAuthorizeStoreFailure(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	svc := NewPermissionService(c, &stubPermissionStore{err: errors.New("timeout")}, 0, nil)

	err := svc.Authorize(context.Background(), "u1", "s1")
	require.ErrorIs(t, err, apierror.ErrInternal)
	require.False(t, mr.Exists("server_permissions:u1:s1"))
}

func TestInvalidatePermission(t *testing.T) {
	t.Parallel()

	c, mr := newTestCache(t)
	store := &stubPermissionStore{}
	svc := NewPermissionService(c, store, 0, nil)

	_, err := svc.HasServerAccess(context.Background(), "u1", "s1")
	require.NoError(t, err)
	require.True(t, svc.Invalidate(context.Background(), "u1", "s1"))
	require.False(t, mr.Exists("server_permissions:u1:s1"))

	_, err = svc.HasServerAccess(context.Background(), "u1", "s1")
	require.NoError(t, err)
	require.Equal(t, int32(2), store.calls.Load())
}

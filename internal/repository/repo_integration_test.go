//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"dashboard-api/internal/database"
)

func setupPostgres(t *testing.T) *database.DB {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dashboard_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "failed to start postgres container")
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(cleanupCtx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, database.Migrate(ctx, connStr))
	// Running twice must be a no-op.
	require.NoError(t, database.Migrate(ctx, connStr))

	db, err := database.New(ctx, connStr, 4, 1)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO users (id, discord_id, username, email, access_token, is_active, role)
		VALUES ('u1', '1001', 'alice', NULL, 'oauth-secret', TRUE, 'admin'),
		       ('u2', '1002', 'bob', 'bob@example.com', NULL, FALSE, 'user');
		INSERT INTO server_users (user_id, server_id, is_owner, has_admin_permissions)
		VALUES ('u1', 's1', TRUE, FALSE),
		       ('u2', 's1', FALSE, FALSE),
		       ('u2', 's2', FALSE, TRUE);
	`)
	require.NoError(t, err)

	return db
}

func TestRepositoriesAgainstPostgres(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()

	users := NewUserRepository(db.Pool)

	alice, err := users.FindUserByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, "alice", alice.Username)
	assert.Empty(t, alice.Email)
	assert.Equal(t, "admin", alice.Role)

	bob, err := users.FindUserByID(ctx, "u2")
	require.NoError(t, err)
	require.NotNil(t, bob)
	assert.False(t, bob.IsActive)

	missing, err := users.FindUserByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	servers := NewServerRepository(db.Pool)

	owner, err := servers.FindServerRelation(ctx, "u1", "s1")
	require.NoError(t, err)
	require.NotNil(t, owner)
	assert.True(t, owner.IsOwner)

	member, err := servers.FindServerRelation(ctx, "u2", "s1")
	require.NoError(t, err)
	assert.Nil(t, member)

	admin, err := servers.FindServerRelation(ctx, "u2", "s2")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, admin.HasAdminPermissions)
}

//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"dashboard-api/internal/app"
	"dashboard-api/internal/config"
)

const testSecret = "integration-secret"

type stack struct {
	server *httptest.Server
	redis  *miniredis.Miniredis
	pool   *pgxpool.Pool
}

func newStack(t *testing.T) *stack {
	t.Helper()

	ctx := context.Background()

	container, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("dashboard"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		cleanupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		_ = container.Terminate(cleanupCtx)
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	mr := miniredis.RunT(t)

	cfg := &config.Config{
		ServerPort:                   "0",
		ShutdownTimeout:              5 * time.Second,
		RequestTimeout:               10 * time.Second,
		JWTSecret:                    testSecret,
		Database:                     config.Database{URL: dsn, MaxConns: 4, MinConns: 1, MigrateOnStart: true},
		Redis:                        config.Redis{URL: "redis://" + mr.Addr(), MaxRetries: -1, DialTimeout: time.Second, PoolSize: 4, OperationTimeout: 500 * time.Millisecond},
		UserCacheTTL:                 900 * time.Second,
		PermissionCacheTTL:           300 * time.Second,
		RateLimitRPM:                 1000,
		PermissionRefreshMaxAttempts: 5,
		PermissionRefreshWindow:      15 * time.Minute,
		LogFormat:                    "json",
	}
	require.NoError(t, cfg.Validate())

	application, err := app.New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(application.Close)

	server := httptest.NewServer(application.Handler())
	t.Cleanup(server.Close)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	return &stack{server: server, redis: mr, pool: pool}
}

func (s *stack) exec(t *testing.T, sql string, args ...any) {
	t.Helper()

	_, err := s.pool.Exec(context.Background(), sql, args...)
	require.NoError(t, err)
}

func issueToken(t *testing.T, userID string) string {
	t.Helper()

	now := time.Now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  userID,
		"iat": now.Unix(),
		"exp": now.Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

func (s *stack) do(t *testing.T, method string, path string, token string, body string) (int, envelope) {
	t.Helper()

	req, err := http.NewRequest(method, s.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var parsed envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp.StatusCode, parsed
}

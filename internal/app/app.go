package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dashboard-api/internal/cache"
	"dashboard-api/internal/config"
	"dashboard-api/internal/database"
	"dashboard-api/internal/handler"
	"dashboard-api/internal/metrics"
	"dashboard-api/internal/middleware"
	"dashboard-api/internal/repository"
	"dashboard-api/internal/router"
	"dashboard-api/internal/service"
)

type App struct {
	server          *http.Server
	shutdownTimeout time.Duration
	cleanupFuncs    []func()
}

// New connects Postgres and Redis and assembles the request gate. Either
// store being unreachable at startup is fatal.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg.Database.MigrateOnStart {
		slog.Info("applying database migrations")
		if err := database.Migrate(ctx, cfg.Database.URL); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("connecting to Redis")
	redisClient, err := cache.Connect(ctx, cfg.Redis.CacheOptions())
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	m := metrics.New()
	store := cache.New(redisClient, m).WithTimeout(cfg.Redis.OperationTimeout)

	userRepo := repository.NewUserRepository(db.Pool)
	serverRepo := repository.NewServerRepository(db.Pool)

	tokenService, err := service.NewTokenService(cfg.JWTSecret)
	if err != nil {
		_ = store.Close()
		db.Close()
		return nil, fmt.Errorf("failed to initialize token service: %w", err)
	}
	userService := service.NewUserService(store, userRepo, cfg.UserCacheTTL, m)
	permissionService := service.NewPermissionService(store, serverRepo, cfg.PermissionCacheTTL, m)
	rateLimitService := service.NewRateLimitService(store, m)
	revocationService := service.NewRevocationService(store)

	appRouter := router.New(cfg, m,
		router.Gates{
			Auth:       middleware.NewAuthMiddleware(tokenService, revocationService, userService, m),
			Servers:    middleware.NewServerPermissionMiddleware(permissionService, m),
			RateLimits: middleware.NewActionRateLimiter(rateLimitService, m),
		},
		router.Handlers{
			Auth:   handler.NewAuthHandler(),
			Server: handler.NewServerHandler(permissionService),
			User:   handler.NewUserHandler(userService),
			Health: handler.NewHealthHandler(db, store),
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadTimeout,
		ReadTimeout:       cfg.ServerReadTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		cleanupFuncs: []func(){
			func() {
				if err := store.Close(); err != nil {
					slog.Warn("redis close failed", "error", err)
				}
			},
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	a.cleanup()
	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

// Handler exposes the assembled router, e.g. for httptest servers.
func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Close releases the store connections without serving.
func (a *App) Close() {
	a.cleanup()
}

// cleanup runs after in-flight requests drained, so no handler sees a
// closed pool.
func (a *App) cleanup() {
	for _, fn := range a.cleanupFuncs {
		fn()
	}
}

package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"dashboard-api/internal/config"
	"dashboard-api/internal/handler"
	"dashboard-api/internal/metrics"
	"dashboard-api/internal/middleware"
	"dashboard-api/internal/model"
)

// Gates bundles the request gate middleware shared by the API routes.
type Gates struct {
	Auth       *middleware.AuthMiddleware
	Servers    *middleware.ServerPermissionMiddleware
	RateLimits *middleware.ActionRateLimiter
}

type Handlers struct {
	Auth   *handler.AuthHandler
	Server *handler.ServerHandler
	User   *handler.UserHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, m *metrics.Metrics, gates Gates, handlers Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.TrustedProxies, "/health", "/metrics")
	adminOnly := middleware.RoleGate{Roles: []string{"admin"}, Metrics: m}

	refreshRule := model.RateLimitRule{
		Action:      "permission_refresh",
		MaxAttempts: cfg.PermissionRefreshMaxAttempts,
		Window:      cfg.PermissionRefreshWindow,
	}

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Instrument(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health/live", handlers.Health.Liveness)
	r.Get("/health", handlers.Health.Readiness)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))
		api.Use(gates.Auth.RequireAuth)

		api.Get("/auth/me", handlers.Auth.Me)

		api.Route("/servers", func(servers chi.Router) {
			servers.With(gates.Servers.RequireServerPermission).Post("/access", handlers.Server.Access)
			servers.With(gates.Servers.RequireServerPermission).Get("/{serverId}/access", handlers.Server.Access)
			servers.With(gates.RateLimits.Limit(refreshRule)).Post("/{serverId}/access/refresh", handlers.Server.RefreshAccess)
		})

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(adminOnly.Handler)
			admin.Delete("/users/{userId}/cache", handlers.User.PurgeCache)
		})
	})

	return r
}

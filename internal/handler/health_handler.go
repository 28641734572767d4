package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"dashboard-api/internal/model"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	database pinger
	cache    pinger
	timeout  time.Duration
}

func NewHealthHandler(database pinger, cache pinger) *HealthHandler {
	return &HealthHandler{database: database, cache: cache, timeout: 2 * time.Second}
}

type healthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache"`
}

func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness fails only when the database is down. Without Redis the gate
// still works, minus caching, revocation and action limits.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	response := healthResponse{Status: "ok", Database: "up", Cache: "up"}
	status := http.StatusOK

	if err := h.database.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		response.Database = "down"
		response.Status = "unhealthy"
		status = http.StatusServiceUnavailable
	}

	if err := h.cache.Ping(ctx); err != nil {
		slog.Warn("cache health check failed", "error", err)
		response.Cache = "down"
		if status == http.StatusOK {
			response.Status = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{Success: status == http.StatusOK, Data: response})
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dashboard-api/internal/middleware"
	"dashboard-api/pkg/apierror"
)

type userCache interface {
	Invalidate(ctx context.Context, id string) bool
}

type UserHandler struct {
	users userCache
}

func NewUserHandler(users userCache) *UserHandler {
	return &UserHandler{users: users}
}

type purgeResponse struct {
	UserID string `json:"user_id"`
	Purged bool   `json:"purged"`
}

// PurgeCache removes the cached profile so the next request reloads it, e.g.
// right after an account was deactivated.
func (h *UserHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))
	if userID == "" {
		writeError(w, apierror.BadRequest("User ID is required"))
		return
	}

	purged := h.users.Invalidate(r.Context(), userID)

	actor := ""
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		actor = user.ID
	}
	slog.Info("user cache purged", "user_id", userID, "actor_id", actor, "purged", purged)

	writeSuccess(w, http.StatusOK, purgeResponse{UserID: userID, Purged: purged})
}

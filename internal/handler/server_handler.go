package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dashboard-api/internal/middleware"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

type serverPermissions interface {
	HasServerAccess(ctx context.Context, userID string, serverID string) (bool, error)
	Invalidate(ctx context.Context, userID string, serverID string) bool
}

type ServerHandler struct {
	permissions serverPermissions
}

func NewServerHandler(permissions serverPermissions) *ServerHandler {
	return &ServerHandler{permissions: permissions}
}

// Access answers for routes behind RequireServerPermission, so reaching it
// already means access was granted.
func (h *ServerHandler) Access(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated())
		return
	}

	serverID, ok := middleware.ServerIDFromContext(r.Context())
	if !ok {
		writeError(w, apierror.BadRequest("Server ID is required"))
		return
	}

	writeSuccess(w, http.StatusOK, model.ServerAccess{ServerID: serverID, UserID: user.ID, Access: true})
}

// RefreshAccess drops the cached flag, for example after the bot reports a
// role change, and resolves it again from the database.
func (h *ServerHandler) RefreshAccess(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated())
		return
	}

	serverID := strings.TrimSpace(chi.URLParam(r, "serverId"))
	if serverID == "" {
		writeError(w, apierror.BadRequest("Server ID is required"))
		return
	}

	h.permissions.Invalidate(r.Context(), user.ID, serverID)

	allowed, err := h.permissions.HasServerAccess(r.Context(), user.ID, serverID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ServerAccess{ServerID: serverID, UserID: user.ID, Access: allowed})
}

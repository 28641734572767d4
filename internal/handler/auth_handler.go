package handler

import (
	"net/http"
	"time"

	"dashboard-api/internal/middleware"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

type AuthHandler struct{}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

type sessionResponse struct {
	User           model.User `json:"user"`
	TokenExpiresAt *time.Time `json:"token_expires_at,omitempty"`
}

// Me returns the user resolved by RequireAuth.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthenticated())
		return
	}

	response := sessionResponse{User: *user}
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok && !claims.ExpiresAt.IsZero() {
		expiresAt := claims.ExpiresAt.UTC()
		response.TokenExpiresAt = &expiresAt
	}

	writeSuccess(w, http.StatusOK, response)
}

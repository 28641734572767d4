package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"dashboard-api/internal/metrics"
	"dashboard-api/pkg/apierror"
)

const maxServerIDBodyBytes = 1 << 20

type serverAuthorizer interface {
	Authorize(ctx context.Context, userID string, serverID string) error
}

type ServerPermissionMiddleware struct {
	permissions serverAuthorizer
	metrics     *metrics.Metrics
}

func NewServerPermissionMiddleware(permissions serverAuthorizer, m *metrics.Metrics) *ServerPermissionMiddleware {
	return &ServerPermissionMiddleware{permissions: permissions, metrics: m}
}

// RequireServerPermission admits owners and administrators of the server
// named by the {serverId} path parameter or the serverId body field.
func (m *ServerPermissionMiddleware) RequireServerPermission(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			reject(w, m.metrics, "server_permission", apierror.Unauthenticated())
			return
		}

		serverID := ServerIDFromRequest(r)
		if serverID == "" {
			reject(w, m.metrics, "server_permission", apierror.BadRequest("Server ID is required"))
			return
		}

		if err := m.permissions.Authorize(r.Context(), user.ID, serverID); err != nil {
			reject(w, m.metrics, "server_permission", err)
			return
		}

		m.metrics.GateDecision("server_permission", "allowed")

		ctx := context.WithValue(r.Context(), serverIDContextKey, serverID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// replayBody serves the already consumed prefix, then the rest of the
// original body.
type replayBody struct {
	io.Reader
	io.Closer
}

// ServerIDFromRequest prefers the path parameter. Only the first
// maxServerIDBodyBytes of the body are inspected, and the body is put back
// whole so the handler can still decode it.
func ServerIDFromRequest(r *http.Request) string {
	if serverID := strings.TrimSpace(chi.URLParam(r, "serverId")); serverID != "" {
		return serverID
	}

	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}

	original := r.Body
	data, err := io.ReadAll(io.LimitReader(original, maxServerIDBodyBytes))
	r.Body = replayBody{Reader: io.MultiReader(bytes.NewReader(data), original), Closer: original}
	if err != nil || len(data) == 0 {
		return ""
	}

	var payload struct {
		ServerID json.RawMessage `json:"serverId"`
	}
	if err := json.Unmarshal(data, &payload); err != nil || len(payload.ServerID) == 0 {
		return ""
	}

	// Discord snowflakes arrive as strings or, from some clients, as numbers.
	var asString string
	if err := json.Unmarshal(payload.ServerID, &asString); err == nil {
		return strings.TrimSpace(asString)
	}

	var asNumber json.Number
	if err := json.Unmarshal(payload.ServerID, &asNumber); err == nil {
		return asNumber.String()
	}

	return ""
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"dashboard-api/internal/metrics"
	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

type tokenVerifier interface {
	Verify(tokenString string) (*model.TokenClaims, error)
}

type revocationChecker interface {
	Check(ctx context.Context, token string) error
}

type userResolver interface {
	Resolve(ctx context.Context, id string) (model.User, error)
}

type contextKey string

const (
	userContextKey     contextKey = "user"
	claimsContextKey   contextKey = "token_claims"
	serverIDContextKey contextKey = "server_id"
)

const tokenCookieName = "token"

type AuthMiddleware struct {
	verifier    tokenVerifier
	revocations revocationChecker
	users       userResolver
	metrics     *metrics.Metrics
}

func NewAuthMiddleware(verifier tokenVerifier, revocations revocationChecker, users userResolver, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier, revocations: revocations, users: users, metrics: m}
}

// RequireAuth verifies the bearer token, rejects blacklisted tokens, resolves
// the user and refuses deactivated accounts. The user is stored in the
// request context for the gates and handlers behind it.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := ExtractToken(r)
		if token == "" {
			reject(w, m.metrics, "auth", apierror.Unauthenticated())
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			reject(w, m.metrics, "auth", err)
			return
		}

		if err := m.revocations.Check(r.Context(), token); err != nil {
			reject(w, m.metrics, "auth", err)
			return
		}

		user, err := m.users.Resolve(r.Context(), claims.Subject)
		if err != nil {
			reject(w, m.metrics, "auth", err)
			return
		}

		if !user.IsActive {
			reject(w, m.metrics, "auth", apierror.AccountDeactivated())
			return
		}

		m.metrics.GateDecision("auth", "allowed")

		ctx := ContextWithUser(r.Context(), user)
		ctx = context.WithValue(ctx, claimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ExtractToken reads the bearer token from the Authorization header, falling
// back to the token cookie set by the dashboard login.
func ExtractToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) > len("bearer ") && strings.EqualFold(header[:len("bearer ")], "bearer ") {
		if token := strings.TrimSpace(header[len("bearer "):]); token != "" {
			return token
		}
	}

	if cookie, err := r.Cookie(tokenCookieName); err == nil {
		return strings.TrimSpace(cookie.Value)
	}

	return ""
}

func ContextWithUser(ctx context.Context, user model.User) context.Context {
	return context.WithValue(ctx, userContextKey, &user)
}

func UserFromContext(ctx context.Context) (*model.User, bool) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	return user, ok && user != nil
}

func ClaimsFromContext(ctx context.Context) (*model.TokenClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(*model.TokenClaims)
	return claims, ok && claims != nil
}

func ServerIDFromContext(ctx context.Context) (string, bool) {
	serverID, ok := ctx.Value(serverIDContextKey).(string)
	return serverID, ok && serverID != ""
}

package service

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"dashboard-api/internal/model"
	"dashboard-api/pkg/apierror"
)

// accessClaims accepts the dashboard's "id" claim and falls back to "sub".
type accessClaims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// TokenService verifies bearer tokens signed by the login flow with the
// shared HMAC secret. It never issues tokens.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) (*TokenService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

func (s *TokenService) Verify(tokenString string) (*model.TokenClaims, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)
	if err != nil || !parsed.Valid {
		slog.Warn("token verification failed", "error", err)
		return nil, apierror.Unauthenticated()
	}

	subject := claims.UserID
	if subject == "" {
		subject = claims.Subject
	}
	if subject == "" {
		slog.Warn("token verification failed", "error", "token has no subject")
		return nil, apierror.Unauthenticated()
	}

	out := &model.TokenClaims{
		Subject: subject,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}

	return out, nil
}

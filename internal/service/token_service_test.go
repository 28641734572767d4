package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"dashboard-api/pkg/apierror"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNewTokenServiceRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService("  ")
	require.Error(t, err)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	svc, err := NewTokenService(testSecret)
	require.NoError(t, err)
	now := time.Now()

	t.Run("accepts id claim", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"id":  "u1",
			"iat": now.Unix(),
			"exp": now.Add(time.Hour).Unix(),
		})

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "u1", claims.Subject)
		require.WithinDuration(t, now.Add(time.Hour), claims.ExpiresAt, time.Second)
	})

	t.Run("falls back to sub", func(t *testing.T) {
		token := signToken(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{
			"sub": "u2",
			"jti": "tok-1",
			"exp": now.Add(time.Hour).Unix(),
		})

		claims, err := svc.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "u2", claims.Subject)
		require.Equal(t, "tok-1", claims.TokenID)
	})

	rejected := map[string]string{
		"expired": signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"id": "u1", "exp": now.Add(-time.Minute).Unix(),
		}),
		"wrong secret": signToken(t, jwt.SigningMethodHS256, "other", jwt.MapClaims{
			"id": "u1", "exp": now.Add(time.Hour).Unix(),
		}),
		"no expiry": signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"id": "u1",
		}),
		"no subject": signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"exp": now.Add(time.Hour).Unix(),
		}),
		"issued in the future": signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{
			"id": "u1", "iat": now.Add(time.Hour).Unix(), "exp": now.Add(2 * time.Hour).Unix(),
		}),
		"malformed": "not.a.jwt",
	}

	for name, token := range rejected {
		t.Run("rejects "+name, func(t *testing.T) {
			_, err := svc.Verify(token)
			require.ErrorIs(t, err, apierror.ErrUnauthenticated)
		})
	}

	t.Run("rejects unsigned tokens", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"id": "u1", "exp": now.Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.Verify(token)
		require.ErrorIs(t, err, apierror.ErrUnauthenticated)
	})
}

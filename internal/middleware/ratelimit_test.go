package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimitMiddleware_LimitsPerClient(t *testing.T) {
	handler := NewRateLimitMiddleware(1, nil).Handler(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	first.RemoteAddr = "10.0.0.1:1234"
	rec1 := httptest.NewRecorder()
	handler.ServeHTTP(rec1, first)
	assert.Equal(t, http.StatusOK, rec1.Code)

	second := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	second.RemoteAddr = "10.0.0.1:1234"
	rec2 := httptest.NewRecorder()
	handler.ServeHTTP(rec2, second)
	require.Equal(t, http.StatusTooManyRequests, rec2.Code)
	assert.Equal(t, "60", rec2.Header().Get("Retry-After"))
	assert.Contains(t, rec2.Body.String(), `"code":"RATE_LIMITED"`)

	other := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec3 := httptest.NewRecorder()
	handler.ServeHTTP(rec3, other)
	assert.Equal(t, http.StatusOK, rec3.Code)
}

func TestRateLimitMiddleware_ExemptPaths(t *testing.T) {
	handler := NewRateLimitMiddleware(1, nil, "/health", "/metrics").Handler(okHandler())

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d", i)
	}
}

func TestRateLimitMiddleware_Configuration(t *testing.T) {
	assert.Equal(t, defaultRequestsPerMinute, NewRateLimitMiddleware(0, nil).rpm)
	assert.Equal(t, defaultRequestsPerMinute, NewRateLimitMiddleware(-1, nil).rpm)
	assert.Equal(t, 30, NewRateLimitMiddleware(30, nil).rpm)
}

func TestExtractClientIP(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("192.168.1.0/24")}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:5555"
	assert.Equal(t, "192.168.1.5", extractClientIP(req, trusted))

	req.Header.Set("X-Real-IP", "172.16.0.9")
	assert.Equal(t, "172.16.0.9", extractClientIP(req, trusted))

	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", extractClientIP(req, trusted))

	t.Run("untrusted peer", func(t *testing.T) {
		assert.Equal(t, "192.168.1.5", extractClientIP(req, nil))

		outside := req.Clone(req.Context())
		outside.RemoteAddr = "198.51.100.20:4000"
		assert.Equal(t, "198.51.100.20", extractClientIP(outside, trusted))
	})
}

func TestRateLimitMiddleware_IgnoresSpoofedForwardedFor(t *testing.T) {
	handler := NewRateLimitMiddleware(1, nil).Handler(okHandler())

	for i, forwarded := range []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.RemoteAddr = "198.51.100.20:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if i == 0 {
			assert.Equal(t, http.StatusOK, rec.Code)
			continue
		}
		assert.Equal(t, http.StatusTooManyRequests, rec.Code, "forwarded for %s", forwarded)
	}
}

func TestRateLimitMiddleware_TrustedProxyForwardsClients(t *testing.T) {
	trusted := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
	handler := NewRateLimitMiddleware(1, trusted).Handler(okHandler())

	for _, forwarded := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req.RemoteAddr = "10.1.2.3:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, "forwarded for %s", forwarded)
	}
}

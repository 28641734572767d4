package middleware

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"dashboard-api/pkg/apierror"
)

const defaultRequestsPerMinute = 100

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware is the coarse per-IP limiter in front of the whole API.
// It runs in process memory and does not depend on Redis.
// Forwarding headers count only when the peer is one of trustedProxies.
type RateLimitMiddleware struct {
	rpm            int
	exempt         []string
	trustedProxies []netip.Prefix
	mu             sync.Mutex
	clients        map[string]*clientLimiter
}

func NewRateLimitMiddleware(rpm int, trustedProxies []netip.Prefix, exemptPrefixes ...string) *RateLimitMiddleware {
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}

	return &RateLimitMiddleware{
		rpm:            rpm,
		exempt:         exemptPrefixes,
		trustedProxies: trustedProxies,
		clients:        map[string]*clientLimiter{},
	}
}

func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := strings.ToLower(r.URL.Path)
		for _, prefix := range m.exempt {
			if strings.HasPrefix(path, prefix) {
				next.ServeHTTP(w, r)
				return
			}
		}

		if !m.getLimiter(extractClientIP(r, m.trustedProxies)).Allow() {
			w.Header().Set("Retry-After", "60")
			writeError(w, apierror.Wrap(apierror.ErrRateLimited, "RATE_LIMITED", "Too many requests", http.StatusTooManyRequests))
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *RateLimitMiddleware) getLimiter(clientIP string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, exists := m.clients[clientIP]; exists {
		client.lastSeen = time.Now()
		m.gcLocked()
		return client.limiter
	}

	created := &clientLimiter{
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.rpm)), m.rpm),
		lastSeen: time.Now(),
	}
	m.clients[clientIP] = created
	m.gcLocked()

	return created.limiter
}

func (m *RateLimitMiddleware) gcLocked() {
	if len(m.clients) < 1000 {
		return
	}

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range m.clients {
		if client.lastSeen.Before(cutoff) {
			delete(m.clients, ip)
		}
	}
}

// extractClientIP returns the peer address unless the peer is a trusted
// proxy, in which case the forwarding headers name the client.
func extractClientIP(r *http.Request, trustedProxies []netip.Prefix) string {
	peer := remoteHost(r)
	if !isTrusted(peer, trustedProxies) {
		return peer
	}

	forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if first := strings.TrimSpace(parts[0]); first != "" {
			return first
		}
	}

	realIP := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if realIP != "" {
		return realIP
	}

	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}

	if strings.TrimSpace(r.RemoteAddr) == "" {
		return "unknown"
	}

	return r.RemoteAddr
}

func isTrusted(host string, trustedProxies []netip.Prefix) bool {
	if len(trustedProxies) == 0 {
		return false
	}

	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	addr = addr.Unmap()

	for _, prefix := range trustedProxies {
		if prefix.Contains(addr) {
			return true
		}
	}
	return false
}

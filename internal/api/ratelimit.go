package api

import (
	"net/http"
	"strings"

	"github.com/Fachastorm/high-coherence/internal/http/response"
)

// rateLimitTokenRoutes limits requests to the public token endpoints by
// client IP. Only the token paths are limited: they are reachable without
// authentication, so the limiter is what makes token guessing impractical.
// Admin listing and issuance paths are left alone.
func (s *Server) rateLimitTokenRoutes(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimiter != nil && isTokenPath(r.URL.Path) {
			key := getClientIP(r)
			if !s.rateLimiter.Allow(key) {
				s.logger.Warn("Rate limit exceeded",
					"ip", key,
					"path", r.URL.Path,
				)
				response.TooManyRequests(w, "Too many requests. Please try again later.", s.logger)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// isTokenPath reports whether the request path is a public token endpoint,
// i.e. /api/v1/reviews/{token} with no further segments. The static
// "invites" and "responses" subtrees are not token paths.
func isTokenPath(path string) bool {
	rest, ok := strings.CutPrefix(path, "/api/v1/reviews/")
	if !ok || rest == "" {
		return false
	}
	if strings.Contains(rest, "/") {
		return false
	}
	return rest != "invites" && rest != "responses"
}

// getClientIP extracts the client IP from the request.
// Checks X-Forwarded-For and X-Real-IP headers before falling back to RemoteAddr.
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For (may contain multiple IPs, first is client).
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// Take first IP in the chain.
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	// Check X-Real-IP.
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr (strip port).
	ip := r.RemoteAddr
	for i := len(ip) - 1; i >= 0; i-- {
		if ip[i] == ':' {
			return ip[:i]
		}
	}
	return ip
}

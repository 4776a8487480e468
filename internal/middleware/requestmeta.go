package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/serroba/linktrack-go/internal/handlers"
)

// RequestMeta captures the client IP, user-agent, and referrer into the
// request context so handlers can attach them to click records.
func RequestMeta(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		meta := handlers.RequestMeta{
			ClientIP:  clientIP(r),
			UserAgent: r.UserAgent(),
			Referrer:  r.Referer(),
		}

		next.ServeHTTP(w, r.WithContext(handlers.ContextWithRequestMeta(r.Context(), meta)))
	})
}

// clientIP extracts the client IP, considering proxies.
func clientIP(r *http.Request) string {
	// X-Forwarded-For may contain multiple IPs; the first is the client.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return ip
}

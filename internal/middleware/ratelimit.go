package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"

	"github.com/serroba/linktrack-go/internal/handlers"
	"github.com/serroba/linktrack-go/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter limits requests per client, keyed by IP and User-Agent. When
// the limiter itself fails (for example Redis is down) the request is
// allowed through: link creation must not depend on the limiter store.
func RateLimiter(limiter ratelimit.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				logger.Error("rate limit check failed", zap.Error(err))
				next.ServeHTTP(w, r)

				return
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Too many requests"}`))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey hashes IP and User-Agent into a stable rate limit key.
func clientKey(r *http.Request) string {
	meta := handlers.RequestMetaFromContext(r.Context())

	ip := meta.ClientIP
	if ip == "" {
		ip = clientIP(r)
	}

	ua := meta.UserAgent
	if ua == "" {
		ua = r.UserAgent()
	}

	hash := sha256.Sum256([]byte(ip + "|" + ua))

	return hex.EncodeToString(hash[:])
}

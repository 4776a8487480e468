package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/serroba/linktrack-go/internal/handlers"
	"github.com/serroba/linktrack-go/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func captureMeta(r *http.Request) handlers.RequestMeta {
	var meta handlers.RequestMeta

	handler := middleware.RequestMeta(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		meta = handlers.RequestMetaFromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), r)

	return meta
}

func TestRequestMeta(t *testing.T) {
	t.Run("extracts user-agent and referrer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		req.Header.Set("Referer", "https://example.com")

		meta := captureMeta(req)

		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
		assert.Equal(t, "https://example.com", meta.Referrer)
	})

	t.Run("extracts IP from X-Forwarded-For with single IP", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1")

		meta := captureMeta(req)

		assert.Equal(t, "192.168.1.1", meta.ClientIP)
	})

	t.Run("extracts first IP from X-Forwarded-For with multiple IPs", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "192.168.1.1, 10.0.0.1, 172.16.0.1")

		meta := captureMeta(req)

		assert.Equal(t, "192.168.1.1", meta.ClientIP)
	})

	t.Run("extracts IP from X-Real-IP when X-Forwarded-For is absent", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", "10.0.0.1")

		meta := captureMeta(req)

		assert.Equal(t, "10.0.0.1", meta.ClientIP)
	})

	t.Run("falls back to remote address when no proxy headers present", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.4:51234"

		meta := captureMeta(req)

		assert.Equal(t, "198.51.100.4", meta.ClientIP)
	})
}

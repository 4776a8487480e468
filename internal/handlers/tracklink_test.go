package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/serroba/linktrack-go/internal/handlers"
	"github.com/serroba/linktrack-go/internal/middleware"
	"github.com/serroba/linktrack-go/internal/store"
	"github.com/serroba/linktrack-go/internal/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testBaseURL = "http://localhost:8888"

var testNow = time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

type testApp struct {
	router *chi.Mux
	ledger tracking.Repository
	svc    *tracking.Service
}

func newTestApp(t *testing.T, ledger tracking.Repository) *testApp {
	t.Helper()

	svc := tracking.NewService(ledger, func() time.Time { return testNow }, nil, zap.NewNop())

	router := chi.NewMux()
	router.Use(middleware.RequestMeta)

	api := humachi.New(router, huma.DefaultConfig("Link Tracker Test", "1.0.0"))

	link := handlers.NewLinkHandler(svc, testBaseURL, nil, zap.NewNop())
	analytics := handlers.NewAnalyticsHandler(svc, zap.NewNop())
	handlers.RegisterRoutes(router, api, link, analytics, nil)

	return &testApp{router: router, ledger: ledger, svc: svc}
}

func (a *testApp) createLink(t *testing.T, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/create-link", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error string `json:"error"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body.Error
}

func TestCreateLink(t *testing.T) {
	t.Run("issues a tracking link", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		w := app.createLink(t, `{"name":"Bob","email":"bob@x.com","targetUrl":"https://dest.example"}`)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success      bool   `json:"success"`
			TrackingLink string `json:"trackingLink"`
			Name         string `json:"name"`
			Email        string `json:"email"`
			TargetURL    string `json:"targetUrl"`
		}

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Contains(t, body.TrackingLink, "/track?data=")
		assert.True(t, strings.HasPrefix(body.TrackingLink, testBaseURL))
		assert.Equal(t, "Bob", body.Name)
		assert.Equal(t, "bob@x.com", body.Email)
		assert.Equal(t, "https://dest.example", body.TargetURL)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		for name, body := range map[string]string{
			"no name":   `{"email":"bob@x.com","targetUrl":"https://dest.example"}`,
			"no email":  `{"name":"Bob","targetUrl":"https://dest.example"}`,
			"no target": `{"name":"Bob","email":"bob@x.com"}`,
			"empty":     `{}`,
		} {
			t.Run(name, func(t *testing.T) {
				w := app.createLink(t, body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, "Missing required fields: name, email, targetUrl", decodeError(t, w))
			})
		}
	})

	t.Run("rejects malformed email with the exact message", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		w := app.createLink(t, `{"name":"x","email":"not-an-email","targetUrl":"https://a.com"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid email format", decodeError(t, w))
	})

	t.Run("checks missing fields before email format", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		w := app.createLink(t, `{"name":"","email":"not-an-email","targetUrl":"https://a.com"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields: name, email, targetUrl", decodeError(t, w))
	})

	t.Run("rejects an unparseable target URL", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		for name, target := range map[string]string{
			"no scheme":     "not-a-url",
			"relative path": "/some/path",
			"bad syntax":    "://missing-scheme.example",
		} {
			t.Run(name, func(t *testing.T) {
				w := app.createLink(t, `{"name":"Bob","email":"bob@x.com","targetUrl":"`+target+`"}`)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, "Invalid target URL format", decodeError(t, w))
			})
		}
	})

	t.Run("treats an unreadable body as an unexpected failure", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		w := app.createLink(t, `{"name": not json`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to create tracking link", decodeError(t, w))
	})

	t.Run("answers the CORS preflight", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		req := httptest.NewRequest(http.MethodOptions, "/api/create-link", nil)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.String())
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
	})
}

func TestTrack(t *testing.T) {
	t.Run("redirects and records exactly one click", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		w := app.createLink(t, `{"name":"Bob","email":"bob@x.com","targetUrl":"https://dest.example"}`)
		require.Equal(t, http.StatusOK, w.Code)

		var created struct {
			TrackingLink string `json:"trackingLink"`
		}

		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

		parsed, err := url.Parse(created.TrackingLink)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, parsed.Path+"?"+parsed.RawQuery, nil)
		req.Header.Set("User-Agent", "TestAgent/1.0")
		req.Header.Set("X-Forwarded-For", "203.0.113.7")

		trackResp := httptest.NewRecorder()
		app.router.ServeHTTP(trackResp, req)

		assert.Equal(t, http.StatusFound, trackResp.Code)
		assert.Equal(t, "https://dest.example", trackResp.Header().Get("Location"))

		clicks, err := app.svc.ClicksByEmail(context.Background(), "bob@x.com")
		require.NoError(t, err)
		require.Len(t, clicks, 1)
		assert.Equal(t, "https://dest.example", clicks[0].TargetURL)
		assert.Equal(t, testNow, clicks[0].ClickedAt)
		assert.Equal(t, "TestAgent/1.0", clicks[0].UserAgent)
		assert.Equal(t, "203.0.113.7", clicks[0].IPAddress)
	})

	t.Run("rejects a request without a token", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		req := httptest.NewRequest(http.MethodGet, "/track", nil)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid tracking link", w.Body.String())
	})

	t.Run("rejects a tampered token and records nothing", func(t *testing.T) {
		app := newTestApp(t, store.NewMemoryClickStore())

		token, err := tracking.Encode(tracking.Payload{Name: "Bob", Email: "bob@x.com", URL: "https://dest.example"})
		require.NoError(t, err)

		tampered := "!" + token[1:]

		req := httptest.NewRequest(http.MethodGet, "/track?data="+url.QueryEscape(tampered), nil)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid or corrupted tracking link", w.Body.String())

		clicks, err := app.svc.ClicksByEmail(context.Background(), "bob@x.com")
		require.NoError(t, err)
		assert.Empty(t, clicks)
	})

	t.Run("reports a ledger failure as a processing error", func(t *testing.T) {
		app := newTestApp(t, &failingLedger{})

		token, err := tracking.Encode(tracking.Payload{Name: "Bob", Email: "bob@x.com", URL: "https://dest.example"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/track?data="+url.QueryEscape(token), nil)
		w := httptest.NewRecorder()
		app.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Failed to process tracking link", w.Body.String())
	})
}

// failingLedger is a tracking.Repository whose writes always fail.
type failingLedger struct {
	tracking.Repository
}

func (f *failingLedger) Insert(_ context.Context, _ *tracking.ClickRecord) error {
	return errors.New("ledger unavailable")
}

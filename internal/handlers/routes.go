package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
)

// Middleware is a standard net/http middleware.
type Middleware func(http.Handler) http.Handler

// RegisterRoutes wires the tracking endpoints onto the chi mux and the
// analytics API onto huma. createLinkLimit, when non-nil, rate limits link
// creation only; the /track redirect path is never rate limited so clicks
// are not lost.
func RegisterRoutes(
	router *chi.Mux,
	api huma.API,
	link *LinkHandler,
	analytics *AnalyticsHandler,
	createLinkLimit Middleware,
) {
	router.Get("/track", link.Track)

	if createLinkLimit != nil {
		router.With(createLinkLimit).Post("/api/create-link", link.CreateLink)
	} else {
		router.Post("/api/create-link", link.CreateLink)
	}

	router.Options("/api/create-link", link.CreateLinkOptions)

	huma.Register(api, huma.Operation{
		OperationID: "get-recent-clicks",
		Method:      http.MethodGet,
		Path:        "/api/analytics/clicks",
		Summary:     "Recent clicks",
		Description: "Returns the newest click records across all tracking links.",
		Tags:        []string{"Analytics"},
	}, analytics.RecentClicks)

	huma.Register(api, huma.Operation{
		OperationID: "get-clicks-by-email",
		Method:      http.MethodGet,
		Path:        "/api/analytics/clicks/{email}",
		Summary:     "Clicks by email",
		Description: "Returns every click recorded for one visitor email, newest first.",
		Tags:        []string{"Analytics"},
	}, analytics.ClicksByEmail)

	huma.Register(api, huma.Operation{
		OperationID: "get-click-stats",
		Method:      http.MethodGet,
		Path:        "/api/analytics/stats",
		Summary:     "Click statistics",
		Description: "Returns total, distinct, and last-24h click counts.",
		Tags:        []string{"Analytics"},
	}, analytics.Stats)
}

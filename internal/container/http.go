package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/linktrack-go/internal/events"
	"github.com/serroba/linktrack-go/internal/handlers"
	"github.com/serroba/linktrack-go/internal/health"
	"github.com/serroba/linktrack-go/internal/messaging"
	"github.com/serroba/linktrack-go/internal/middleware"
	"github.com/serroba/linktrack-go/internal/ratelimit"
	"github.com/serroba/linktrack-go/internal/tracking"
	"go.uber.org/zap"
)

// HTTPPackage provides the chi router and the huma API with every route
// registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(middleware.RequestMeta)

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		service := do.MustInvoke[*tracking.Service](i)
		publishLinkIssued := do.MustInvoke[messaging.Publish[events.LinkIssuedEvent]](i)

		api := humachi.New(router, huma.DefaultConfig("Link Tracker", "1.0.0"))

		linkHandler := handlers.NewLinkHandler(
			service,
			options.TrackingBaseURL(),
			publishLinkIssued,
			logger,
		)
		analyticsHandler := handlers.NewAnalyticsHandler(service, logger)

		var createLinkLimit handlers.Middleware
		if options.CreateLimit > 0 {
			limiter := do.MustInvoke[ratelimit.Limiter](i)
			createLinkLimit = middleware.RateLimiter(limiter, logger)
		}

		handlers.RegisterRoutes(router, api, linkHandler, analyticsHandler, createLinkLimit)

		healthHandler := health.NewHandler(
			health.NewRedisChecker(do.MustInvoke[*redis.Client](i)),
			health.NewPostgresChecker(do.MustInvoke[*pgxpool.Pool](i)),
		)
		health.RegisterRoutes(api, healthHandler)

		return api, nil
	})
}

package container

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/linktrack-go/internal/events"
	"github.com/serroba/linktrack-go/internal/messaging"
	"github.com/serroba/linktrack-go/internal/ratelimit"
	"github.com/serroba/linktrack-go/internal/store"
	"github.com/serroba/linktrack-go/internal/tracking"
	"go.uber.org/zap"
)

// RepositoryPackage provides the click ledger: Postgres as the source of
// truth, wrapped with Redis caching for the scan-heavy analytics reads.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (tracking.Repository, error) {
		options := do.MustInvoke[*Options](i)
		pool := do.MustInvoke[*pgxpool.Pool](i)

		var repo tracking.Repository = store.NewPostgresClickStore(pool)

		if options.CacheTTL > 0 {
			client := do.MustInvoke[*redis.Client](i)
			ttl := time.Duration(options.CacheTTL) * time.Second
			repo = store.NewCachedClickStore(repo, client, ttl)
		}

		return repo, nil
	})
}

// TrackingPackage provides the tracking service.
func TrackingPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*tracking.Service, error) {
		repo := do.MustInvoke[tracking.Repository](i)
		logger := do.MustInvoke[*zap.Logger](i)
		publishClick := do.MustInvoke[messaging.Publish[events.ClickRecordedEvent]](i)

		publish := func(click *tracking.ClickRecord) error {
			return publishClick(&events.ClickRecordedEvent{
				ClickID:   click.ID.String(),
				Name:      click.Name,
				Email:     click.Email,
				TargetURL: click.TargetURL,
				ClickedAt: click.ClickedAt,
				UserAgent: click.UserAgent,
				IPAddress: click.IPAddress,
			})
		}

		return tracking.NewService(repo, nil, publish, logger), nil
	})
}

// RateLimitPackage provides the limiter applied to link creation, backed
// by Redis so the window holds across instances.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Limiter, error) {
		options := do.MustInvoke[*Options](i)
		client := do.MustInvoke[*redis.Client](i)

		limitStore := store.NewRateLimitRedisStore(client)

		return ratelimit.NewSlidingWindowLimiter(limitStore, options.CreateLimit, time.Minute), nil
	})
}

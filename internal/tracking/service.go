package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrIngestMessage is the user-visible message for rejected tracking links.
const ErrIngestMessage = "Invalid or corrupted tracking link"

// recentWindow bounds the Stats recent-clicks count.
const recentWindow = 24 * time.Hour

// Clock supplies the current time. Injected so tests can pin timestamps.
type Clock func() time.Time

// PublishClick publishes a click-recorded notification. Kept as a bare
// func type so the service does not depend on the messaging package.
type PublishClick func(click *ClickRecord) error

// Service implements click ingestion and analytics aggregation over a
// click ledger.
type Service struct {
	store        Repository
	now          Clock
	publishClick PublishClick
	logger       *zap.Logger
}

// NewService creates a tracking service. A nil clock defaults to time.Now;
// a nil publish function disables click notifications.
func NewService(store Repository, now Clock, publishClick PublishClick, logger *zap.Logger) *Service {
	if now == nil {
		now = time.Now
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		store:        store,
		now:          now,
		publishClick: publishClick,
		logger:       logger,
	}
}

// Ingest decodes a tracking token and appends exactly one click record on
// success. Decode failures resolve to a Success=false result and persist
// nothing; the returned error is non-nil only when the ledger write fails.
func (s *Service) Ingest(ctx context.Context, token, userAgent, ipAddress string) (IngestResult, error) {
	payload, err := Decode(token)
	if err != nil {
		return IngestResult{Success: false, Error: ErrIngestMessage}, nil
	}

	click := &ClickRecord{
		ID:                 uuid.New(),
		Name:               payload.Name,
		Email:              payload.Email,
		TargetURL:          payload.URL,
		ClickedAt:          s.now(),
		UserAgent:          userAgent,
		IPAddress:          ipAddress,
		SuppressChatDomain: payload.SuppressChatDomain,
	}

	if err := s.store.Insert(ctx, click); err != nil {
		return IngestResult{}, fmt.Errorf("insert click: %w", err)
	}

	if s.publishClick != nil {
		if err := s.publishClick(click); err != nil {
			s.logger.Error("failed to publish click notification",
				zap.String("email", click.Email),
				zap.Error(err),
			)
		}
	}

	return IngestResult{
		Success:            true,
		RedirectURL:        payload.URL,
		Name:               payload.Name,
		Email:              payload.Email,
		SuppressChatDomain: payload.SuppressChatDomain,
	}, nil
}

// RecentClicks returns the newest clicks, capped at limit.
func (s *Service) RecentClicks(ctx context.Context, limit int) ([]ClickRecord, error) {
	return s.store.Recent(ctx, limit)
}

// ClicksByEmail returns every click for a visitor email, newest first.
func (s *Service) ClicksByEmail(ctx context.Context, email string) ([]ClickRecord, error) {
	return s.store.ByEmail(ctx, email)
}

// Stats computes summary counts with a full scan of the ledger. Fine while
// the ledger is small; this does not scale to large click volumes.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	clicks, err := s.store.All(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("scan clicks: %w", err)
	}

	cutoff := s.now().Add(-recentWindow)

	return Stats{
		TotalClicks: len(clicks),
		UniqueEmails: len(lo.UniqBy(clicks, func(c ClickRecord) string {
			return c.Email
		})),
		UniqueURLs: len(lo.UniqBy(clicks, func(c ClickRecord) string {
			return c.TargetURL
		})),
		RecentClicks: lo.CountBy(clicks, func(c ClickRecord) bool {
			return c.ClickedAt.After(cutoff)
		}),
	}, nil
}

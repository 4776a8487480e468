package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Payload is the record a tracking token encodes: who the link was issued
// to and where it redirects. It is transient and never persisted as-is.
type Payload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	URL   string `json:"url"`
	// SuppressChatDomain is carried through ingestion to the caller so the
	// client can temporarily hide a chat widget. This service never
	// interprets it.
	SuppressChatDomain string `json:"suppressChatDomain,omitempty"`
}

// ClickRecord is one resolved visit to a tracking URL. Records are
// append-only: they are inserted exactly once per successful ingestion and
// never updated or deleted.
type ClickRecord struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	TargetURL          string    `json:"targetUrl"`
	ClickedAt          time.Time `json:"clickedAt"`
	UserAgent          string    `json:"userAgent,omitempty"`
	IPAddress          string    `json:"ipAddress,omitempty"`
	SuppressChatDomain string    `json:"suppressChatDomain,omitempty"`
}

// IngestResult is the outcome of processing a tracking click. Decode
// failures resolve to Success=false with a user-safe Error message; they
// are never surfaced as Go errors.
type IngestResult struct {
	Success            bool   `json:"success"`
	Error              string `json:"error,omitempty"`
	RedirectURL        string `json:"redirectUrl,omitempty"`
	Name               string `json:"name,omitempty"`
	Email              string `json:"email,omitempty"`
	SuppressChatDomain string `json:"suppressChatDomain,omitempty"`
}

// Stats summarizes the click ledger.
type Stats struct {
	TotalClicks  int `json:"totalClicks"`
	UniqueEmails int `json:"uniqueEmails"`
	UniqueURLs   int `json:"uniqueUrls"`
	// RecentClicks counts records from the last 24 hours.
	RecentClicks int `json:"recentClicks"`
}

// Repository is the click ledger. Insert is the only write; queries return
// records newest first. All exists to support full-scan aggregation and is
// only acceptable while the ledger stays small.
type Repository interface {
	Insert(ctx context.Context, click *ClickRecord) error
	Recent(ctx context.Context, limit int) ([]ClickRecord, error)
	ByEmail(ctx context.Context, email string) ([]ClickRecord, error)
	All(ctx context.Context) ([]ClickRecord, error)
}

package events

import "time"

// Topics for tracking events on the message bus.
const (
	TopicLinkIssued    = "link.issued"
	TopicClickRecorded = "click.recorded"
)

// LinkIssuedEvent is emitted when a tracking link is created.
type LinkIssuedEvent struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TargetURL string    `json:"targetUrl"`
	IssuedAt  time.Time `json:"issuedAt"`
	ClientIP  string    `json:"clientIp,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
}

// ClickRecordedEvent is emitted after a click has been persisted to the
// ledger. Consumers get a copy of the record; the ledger write itself is
// synchronous and never depends on the bus.
type ClickRecordedEvent struct {
	ClickID   string    `json:"clickId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	TargetURL string    `json:"targetUrl"`
	ClickedAt time.Time `json:"clickedAt"`
	UserAgent string    `json:"userAgent,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
}

package events

import (
	"context"

	"go.uber.org/zap"
)

// Sink receives tracking events consumed from the bus.
type Sink interface {
	HandleLinkIssued(ctx context.Context, event *LinkIssuedEvent) error
	HandleClickRecorded(ctx context.Context, event *ClickRecordedEvent) error
}

// LogSink is a Sink that logs each event. It is the default downstream for
// the consumer binary until a real integration hangs off the topics.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a logging event sink.
func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) HandleLinkIssued(_ context.Context, event *LinkIssuedEvent) error {
	s.logger.Info("link issued",
		zap.String("email", event.Email),
		zap.String("targetUrl", event.TargetURL),
		zap.Time("issuedAt", event.IssuedAt),
	)

	return nil
}

func (s *LogSink) HandleClickRecorded(_ context.Context, event *ClickRecordedEvent) error {
	s.logger.Info("click recorded",
		zap.String("clickId", event.ClickID),
		zap.String("email", event.Email),
		zap.String("targetUrl", event.TargetURL),
		zap.Time("clickedAt", event.ClickedAt),
	)

	return nil
}

var _ Sink = (*LogSink)(nil)

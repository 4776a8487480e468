package container

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/linktrack-go/internal/events"
	"github.com/serroba/linktrack-go/internal/messaging"
	"go.uber.org/zap"
)

const consumerGroupName = "linktrack"

// PublisherGroupPackage provides the Redis Streams publisher and the typed
// publish functions for tracking events.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
			Client: client,
		}, watermill.NewStdLogger(false, false))
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[events.LinkIssuedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[events.LinkIssuedEvent](group.Publisher(), events.TopicLinkIssued), nil
	})

	do.Provide(injector, func(i *do.Injector) (messaging.Publish[events.ClickRecordedEvent], error) {
		group := do.MustInvoke[*messaging.PublisherGroup](i)

		return messaging.NewPublishFunc[events.ClickRecordedEvent](group.Publisher(), events.TopicClickRecorded), nil
	})
}

// ConsumerGroupPackage provides the consumer group that feeds tracking
// events into the configured sink.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (message.Subscriber, error) {
		client := do.MustInvoke[*redis.Client](i)

		return redisstream.NewSubscriber(redisstream.SubscriberConfig{
			Client:        client,
			ConsumerGroup: consumerGroupName,
		}, watermill.NewStdLogger(false, false))
	})

	do.Provide(injector, func(i *do.Injector) (events.Sink, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return events.NewLogSink(logger), nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		subscriber := do.MustInvoke[message.Subscriber](i)
		sink := do.MustInvoke[events.Sink](i)
		logger := do.MustInvoke[*zap.Logger](i)

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, events.TopicLinkIssued, sink.HandleLinkIssued, logger))
		group.Add(messaging.NewConsumer(subscriber, events.TopicClickRecorded, sink.HandleClickRecorded, logger))

		return group, nil
	})
}

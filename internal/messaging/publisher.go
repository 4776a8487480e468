package messaging

import (
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// Publish sends a typed event to the bus. Publishing is best-effort for
// callers on the request path: failures are logged, never returned to the
// HTTP client.
type Publish[T any] func(event *T) error

// NewPublishFunc binds a topic to an event type, producing a typed publish
// function backed by the given watermill publisher.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		msg := message.NewMessage(uuid.NewString(), payload)
		msg.Metadata.Set("topic", topic)

		return publisher.Publish(topic, msg)
	}
}

// PublisherGroup owns the lifecycle of the underlying publisher so the DI
// container can shut it down once, regardless of how many typed publish
// functions were created from it.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup wraps a watermill publisher.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher exposes the underlying publisher for creating typed publish
// functions.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}

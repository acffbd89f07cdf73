package analytics

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gammahazard/edge-protocol-demo/internal/messaging"
	"go.uber.org/zap"
)

// Store defines the interface for persisting analytics events.
type Store interface {
	SaveURLCreated(ctx context.Context, event *URLCreatedEvent) error
	SaveURLAccessed(ctx context.Context, event *URLAccessedEvent) error
}

// RegisterConsumers adds one consumer per analytics topic to group, both
// persisting into store.
func RegisterConsumers(group *messaging.ConsumerGroup, subscriber message.Subscriber, store Store, logger *zap.Logger) {
	group.Add(messaging.NewConsumer(subscriber, TopicURLCreated, store.SaveURLCreated, logger))
	group.Add(messaging.NewConsumer(subscriber, TopicURLAccessed, store.SaveURLAccessed, logger))
}

package messaging

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// ConsumerGroupName is the Redis Streams consumer group shared by all consumer processes.
const ConsumerGroupName = "analytics"

// NewRedisStreamPublisher publishes to Redis Streams.
func NewRedisStreamPublisher(client redis.UniversalClient, logger watermill.LoggerAdapter) (message.Publisher, error) {
	publisher, err := redisstream.NewPublisher(redisstream.PublisherConfig{
		Client:     client,
		Marshaller: redisstream.DefaultMarshallerUnmarshaller{},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("redis stream publisher: %w", err)
	}

	return publisher, nil
}

// NewRedisStreamSubscriber reads from Redis Streams as a member of ConsumerGroupName.
func NewRedisStreamSubscriber(client redis.UniversalClient, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	subscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
		Client:        client,
		Unmarshaller:  redisstream.DefaultMarshallerUnmarshaller{},
		ConsumerGroup: ConsumerGroupName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("redis stream subscriber: %w", err)
	}

	return subscriber, nil
}

// NewInProcess returns a Go channel pub/sub for running publisher and
// consumers in the same process.
func NewInProcess(logger watermill.LoggerAdapter) *gochannel.GoChannel {
	return gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
}

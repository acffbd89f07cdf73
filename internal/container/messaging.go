package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gammahazard/edge-protocol-demo/internal/analytics"
	analyticsstore "github.com/gammahazard/edge-protocol-demo/internal/analytics/store"
	"github.com/gammahazard/edge-protocol-demo/internal/messaging"
	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// MessagingPackage provides the watermill logger and, for the memory
// backend, the in-process pub/sub shared by publishers and consumers.
func MessagingPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (watermill.LoggerAdapter, error) {
		return messaging.NewLoggerAdapter(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(injector, func(i *do.Injector) (*gochannel.GoChannel, error) {
		return messaging.NewInProcess(do.MustInvoke[watermill.LoggerAdapter](i)), nil
	})
}

// PublisherGroupPackage provides the *messaging.PublisherGroup for MessagingBackend.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)

		var publisher message.Publisher

		switch opts.MessagingBackend {
		case BackendMemory:
			publisher = do.MustInvoke[*gochannel.GoChannel](i)
		case BackendRedis:
			client, err := redisClient(i)
			if err != nil {
				return nil, err
			}

			p, err := messaging.NewRedisStreamPublisher(client, do.MustInvoke[watermill.LoggerAdapter](i))
			if err != nil {
				return nil, err
			}

			publisher = p
		default:
			return nil, fmt.Errorf("%w: messaging %q", ErrUnknownBackend, opts.MessagingBackend)
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ConsumerGroupPackage provides a *messaging.ConsumerGroup with the analytics
// consumers registered. It is not started.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var subscriber message.Subscriber

		switch opts.MessagingBackend {
		case BackendMemory:
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		case BackendRedis:
			client, err := redisClient(i)
			if err != nil {
				return nil, err
			}

			s, err := messaging.NewRedisStreamSubscriber(client, do.MustInvoke[watermill.LoggerAdapter](i))
			if err != nil {
				return nil, err
			}

			subscriber = s
		default:
			return nil, fmt.Errorf("%w: messaging %q", ErrUnknownBackend, opts.MessagingBackend)
		}

		events, err := analyticsStore(i, opts, logger)
		if err != nil {
			return nil, err
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		analytics.RegisterConsumers(group, subscriber, events, logger)

		return group, nil
	})
}

// analyticsStore counts clicks on the URL repository unless the repository
// lives in another process's memory, in which case events are only logged.
func analyticsStore(i *do.Injector, opts *Options, logger *zap.Logger) (analytics.Store, error) {
	if opts.StorageBackend == BackendMemory && opts.MessagingBackend == BackendRedis {
		return analyticsstore.NewNoop(logger), nil
	}

	repo, err := do.Invoke[shortener.Repository](i)
	if err != nil {
		return nil, err
	}

	return analyticsstore.NewClicks(repo, logger), nil
}

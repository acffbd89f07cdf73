package messaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"
)

// Runnable is a background worker with an explicit lifecycle.
type Runnable interface {
	Start(ctx context.Context) error
	Shutdown() error
}

// ConsumerGroup starts and stops a set of consumers sharing one subscriber.
type ConsumerGroup struct {
	subscriber message.Subscriber
	logger     *zap.Logger
	consumers  []Runnable
	running    []Runnable
}

func NewConsumerGroup(subscriber message.Subscriber, logger *zap.Logger) *ConsumerGroup {
	return &ConsumerGroup{subscriber: subscriber, logger: logger}
}

func (g *ConsumerGroup) Add(consumer Runnable) {
	g.consumers = append(g.consumers, consumer)
}

// Start starts every consumer in order. If one fails, those already running
// are stopped and the group is left idle.
func (g *ConsumerGroup) Start(ctx context.Context) error {
	for i, consumer := range g.consumers {
		if err := consumer.Start(ctx); err != nil {
			_ = g.stop()

			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}

		g.running = append(g.running, consumer)
	}

	g.logger.Info("consumer group started", zap.Int("count", len(g.running)))

	return nil
}

// Shutdown stops the running consumers, newest first, then closes the subscriber.
func (g *ConsumerGroup) Shutdown() error {
	g.logger.Info("shutting down consumer group", zap.Int("running", len(g.running)))

	return errors.Join(g.stop(), g.subscriber.Close())
}

func (g *ConsumerGroup) stop() error {
	var errs []error

	for i := len(g.running) - 1; i >= 0; i-- {
		errs = append(errs, g.running[i].Shutdown())
	}

	g.running = nil

	return errors.Join(errs...)
}

package store

import (
	"context"
	"errors"

	"github.com/gammahazard/edge-protocol-demo/internal/analytics"
	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"go.uber.org/zap"
)

// Clicks counts redirects on the URL repository.
type Clicks struct {
	repo   shortener.Repository
	logger *zap.Logger
}

func NewClicks(repo shortener.Repository, logger *zap.Logger) *Clicks {
	return &Clicks{repo: repo, logger: logger}
}

func (c *Clicks) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	c.logger.Debug("url created", zap.String("code", event.Code), zap.String("strategy", event.Strategy))

	return nil
}

// SaveURLAccessed increments the click counter. Events for codes that no
// longer exist are dropped rather than retried.
func (c *Clicks) SaveURLAccessed(ctx context.Context, event *analytics.URLAccessedEvent) error {
	err := c.repo.IncrementClicks(ctx, shortener.Code(event.Code))
	if errors.Is(err, shortener.ErrNotFound) {
		c.logger.Warn("click for unknown code dropped", zap.String("code", event.Code))

		return nil
	}

	return err
}

var _ analytics.Store = (*Clicks)(nil)

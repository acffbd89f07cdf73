package store

import (
	"context"

	"github.com/gammahazard/edge-protocol-demo/internal/analytics"
	"go.uber.org/zap"
)

// Noop only logs events. Consumer processes use it when the URL repository
// lives in the server's memory and clicks cannot be counted from outside.
type Noop struct {
	logger *zap.Logger
}

func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger.Named("analytics")}
}

func (n *Noop) SaveURLCreated(_ context.Context, event *analytics.URLCreatedEvent) error {
	n.logger.Info("url created",
		zap.String("code", event.Code),
		zap.String("original_url", event.OriginalURL),
		zap.String("strategy", event.Strategy),
		zap.String("client_id", event.ClientID),
		zap.Time("created_at", event.CreatedAt),
	)

	return nil
}

func (n *Noop) SaveURLAccessed(_ context.Context, event *analytics.URLAccessedEvent) error {
	n.logger.Info("url accessed",
		zap.String("code", event.Code),
		zap.String("client_id", event.ClientID),
		zap.String("referrer", event.Referrer),
		zap.Time("accessed_at", event.AccessedAt),
	)

	return nil
}

var _ analytics.Store = (*Noop)(nil)

package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/gammahazard/edge-protocol-demo/internal/messaging"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPublishFunc(t *testing.T) {
	t.Run("publishes json payload", func(t *testing.T) {
		pub := &recordingPublisher{}
		publish := messaging.NewPublishFunc[clickEvent](pub, "url.clicked")

		err := publish(context.Background(), &clickEvent{Code: "abc123", ClientID: "ip:1.2.3.4"})

		require.NoError(t, err)
		assert.Equal(t, "url.clicked", pub.lastTopic)
		require.Len(t, pub.sent, 1)
		assert.JSONEq(t, `{"code":"abc123","client_id":"ip:1.2.3.4"}`, string(pub.sent[0].Payload))
		assert.Empty(t, middleware.MessageCorrelationID(pub.sent[0]))
	})

	t.Run("carries the request id as correlation id", func(t *testing.T) {
		pub := &recordingPublisher{}
		publish := messaging.NewPublishFunc[clickEvent](pub, "url.clicked")
		ctx := context.WithValue(context.Background(), chimiddleware.RequestIDKey, "req-42")

		require.NoError(t, publish(ctx, &clickEvent{Code: "1"}))

		assert.Equal(t, "req-42", middleware.MessageCorrelationID(pub.sent[0]))
	})

	t.Run("returns error when publish fails", func(t *testing.T) {
		pub := &recordingPublisher{publishErr: errors.New("publish error")}
		publish := messaging.NewPublishFunc[clickEvent](pub, "url.clicked")

		err := publish(context.Background(), &clickEvent{Code: "abc123"})

		assert.ErrorIs(t, err, pub.publishErr)
	})
}

func TestPublisherGroup(t *testing.T) {
	pub := &recordingPublisher{closeErr: errors.New("close error")}
	group := messaging.NewPublisherGroup(pub)

	assert.Same(t, pub, group.Publisher())
	assert.ErrorIs(t, group.Shutdown(), pub.closeErr)
}

package middleware_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/handlers"
	"github.com/gammahazard/edge-protocol-demo/internal/middleware"
	"github.com/stretchr/testify/assert"
)

func captureMeta(t *testing.T, headers map[string]string) handlers.RequestMeta {
	t.Helper()

	router, api := newTestAPI(t)
	api.UseMiddleware(middleware.RequestMeta(api))

	captured := make(chan handlers.RequestMeta, 1)

	huma.Get(api, "/test", func(ctx context.Context, in *struct{}) (*testOutput, error) {
		captured <- handlers.RequestMetaFromContext(ctx)

		return okHandler(ctx, in)
	})

	w := serve(router, http.MethodGet, "/test", headers)
	assert.Equal(t, http.StatusOK, w.Code)

	return <-captured
}

func TestRequestMeta(t *testing.T) {
	t.Run("api key wins over address", func(t *testing.T) {
		meta := captureMeta(t, map[string]string{
			"X-API-Key":        "secret",
			"CF-Connecting-IP": "203.0.113.7",
		})

		assert.Equal(t, "key:secret", meta.ClientID)
		assert.Equal(t, "203.0.113.7", meta.ClientIP)
	})

	t.Run("cf-connecting-ip", func(t *testing.T) {
		meta := captureMeta(t, map[string]string{
			"CF-Connecting-IP": "203.0.113.7",
			"X-Forwarded-For":  "10.0.0.1",
		})

		assert.Equal(t, "ip:203.0.113.7", meta.ClientID)
	})

	t.Run("first x-forwarded-for hop", func(t *testing.T) {
		meta := captureMeta(t, map[string]string{"X-Forwarded-For": "192.168.1.1, 10.0.0.1, 172.16.0.1"})

		assert.Equal(t, "ip:192.168.1.1", meta.ClientID)
	})

	t.Run("x-real-ip", func(t *testing.T) {
		meta := captureMeta(t, map[string]string{"X-Real-IP": "10.1.1.1"})

		assert.Equal(t, "ip:10.1.1.1", meta.ClientID)
	})

	t.Run("remote address without port", func(t *testing.T) {
		meta := captureMeta(t, nil)

		// httptest requests come from 192.0.2.1:1234.
		assert.Equal(t, "ip:192.0.2.1", meta.ClientID)
	})

	t.Run("user agent and referrer", func(t *testing.T) {
		meta := captureMeta(t, map[string]string{
			"User-Agent": "TestAgent/1.0",
			"Referer":    "https://example.com",
		})

		assert.Equal(t, "TestAgent/1.0", meta.UserAgent)
		assert.Equal(t, "https://example.com", meta.Referrer)
	})
}

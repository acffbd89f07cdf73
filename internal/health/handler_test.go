package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gammahazard/edge-protocol-demo/internal/health"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok() health.Checker {
	return health.CheckerFunc(func(context.Context) error { return nil })
}

func failing() health.Checker {
	return health.CheckerFunc(func(context.Context) error { return errors.New("connection refused") })
}

func TestHandler_Check(t *testing.T) {
	t.Run("ok without dependencies", func(t *testing.T) {
		resp, err := health.NewHandler().Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, health.StatusOK, resp.Body.Status)
		assert.Empty(t, resp.Body.Dependencies)
	})

	t.Run("ok when every dependency is healthy", func(t *testing.T) {
		handler := health.NewHandler().Add("redis", ok()).Add("postgres", ok())

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, health.StatusOK, resp.Body.Status)
		assert.Equal(t, map[string]string{"redis": "healthy", "postgres": "healthy"}, resp.Body.Dependencies)
	})

	t.Run("degraded when one dependency fails", func(t *testing.T) {
		handler := health.NewHandler().Add("redis", ok()).Add("postgres", failing())

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, health.StatusDegraded, resp.Body.Status)
		assert.Equal(t, health.StatusUnhealthy, resp.Body.Dependencies["postgres"])
		assert.Equal(t, health.StatusHealthy, resp.Body.Dependencies["redis"])
	})

	t.Run("checks carry a deadline", func(t *testing.T) {
		var hasDeadline bool

		handler := health.NewHandler().Add("slow", health.CheckerFunc(func(ctx context.Context) error {
			_, hasDeadline = ctx.Deadline()

			return nil
		}))

		_, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.True(t, hasDeadline)
	})
}

func TestRedisChecker(t *testing.T) {
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	checker := health.NewRedisChecker(client)

	require.NoError(t, checker.Ping(context.Background()))

	server.Close()

	assert.Error(t, checker.Ping(context.Background()))
}

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewMux()
	api := humachi.New(router, huma.DefaultConfig("Test", "1.0.0"))
	health.RegisterRoutes(api, health.NewHandler().Add("redis", failing()))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status       string            `json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "unhealthy", body.Dependencies["redis"])
}

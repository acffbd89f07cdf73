package capability_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/capability"
	"github.com/gammahazard/edge-protocol-demo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := map[string]capability.Type{
		"fetch":       capability.Fetch,
		"kv":          capability.KVStorage,
		"kv_storage":  capability.KVStorage,
		"filesystem":  capability.Filesystem,
		"fs":          capability.Filesystem,
		"sockets":     capability.RawSockets,
		"raw_sockets": capability.RawSockets,
		"subprocess":  capability.Subprocess,
		"exec":        capability.Subprocess,
		"FETCH":       capability.Fetch,
	}

	for name, want := range tests {
		got, err := capability.ParseType(name)

		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, name := range []string{"", "gpio", "network"} {
		_, err := capability.ParseType(name)

		assert.ErrorIs(t, err, capability.ErrUnknown, name)
	}
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("connection refused")
}

func (brokenStore) Put(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}

func newHTTPClient(t *testing.T, timeout time.Duration) *http.Client {
	t.Helper()

	client, err := capability.NewHTTPClient(timeout)
	require.NoError(t, err)
	assert.Equal(t, timeout, client.Timeout)

	return client
}

func TestProber(t *testing.T) {
	ctx := context.Background()

	t.Run("fetch performs a request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		defer server.Close()

		prober := capability.NewProber(store.NewKVMemory(), capability.WithFetchURL(server.URL))

		result := prober.Probe(ctx, capability.Fetch)

		assert.True(t, result.Allowed)
		assert.Contains(t, result.Message, "status 418")
	})

	t.Run("fetch failure is still allowed", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		prober := capability.NewProber(store.NewKVMemory(),
			capability.WithFetchURL(server.URL),
			capability.WithHTTPClient(newHTTPClient(t, time.Second)))

		result := prober.Probe(ctx, capability.Fetch)

		assert.True(t, result.Allowed)
		assert.Contains(t, result.Message, "request failed")
	})

	t.Run("fetch makes a single attempt on server errors", func(t *testing.T) {
		var hits atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		prober := capability.NewProber(store.NewKVMemory(),
			capability.WithFetchURL(server.URL),
			capability.WithHTTPClient(newHTTPClient(t, time.Second)))

		result := prober.Probe(ctx, capability.Fetch)

		assert.True(t, result.Allowed)
		assert.Contains(t, result.Message, "status 503")
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("fetch times out a slow target", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		prober := capability.NewProber(store.NewKVMemory(),
			capability.WithFetchURL(server.URL),
			capability.WithHTTPClient(newHTTPClient(t, 50*time.Millisecond)))

		result := prober.Probe(ctx, capability.Fetch)

		assert.True(t, result.Allowed)
		assert.Contains(t, result.Message, "request failed")
	})

	t.Run("kv round trip", func(t *testing.T) {
		prober := capability.NewProber(store.NewKVMemory())

		result := prober.Probe(ctx, capability.KVStorage)

		assert.True(t, result.Allowed)
		assert.Equal(t, "kv storage round trip succeeded", result.Message)
	})

	t.Run("kv store down", func(t *testing.T) {
		prober := capability.NewProber(brokenStore{})

		result := prober.Probe(ctx, capability.KVStorage)

		assert.True(t, result.Allowed)
		assert.Contains(t, result.Message, "write failed")
	})

	t.Run("refused capabilities", func(t *testing.T) {
		prober := capability.NewProber(store.NewKVMemory())

		for _, c := range []capability.Type{capability.Filesystem, capability.RawSockets, capability.Subprocess} {
			result := prober.Probe(ctx, c)

			assert.Equal(t, c, result.Capability)
			assert.False(t, result.Allowed, c)
			assert.Contains(t, result.Message, "BLOCKED", c)
		}
	})
}

func TestCatalog(t *testing.T) {
	catalog := capability.Catalog()

	require.Len(t, catalog, 5)

	allowed := 0

	for _, entry := range catalog {
		_, err := capability.ParseType(entry.Name)
		require.NoError(t, err, entry.Name)

		if entry.Allowed {
			allowed++
		}
	}

	assert.Equal(t, 2, allowed)
}

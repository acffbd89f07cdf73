package store

import (
	"context"
	"errors"
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
	"github.com/redis/go-redis/v9"
)

// KVRedis is a Redis implementation of ratelimit.Store.
// Values are plain string keys and expire through Redis TTLs.
type KVRedis struct {
	client *redis.Client
	prefix string
}

// NewKVRedis creates a new Redis-backed key-value store.
func NewKVRedis(client *redis.Client) *KVRedis {
	return &KVRedis{
		client: client,
		prefix: "rate:",
	}
}

func (r *KVRedis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return value, true, nil
}

func (r *KVRedis) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

// Shutdown is a no-op for KVRedis (client managed externally).
func (r *KVRedis) Shutdown() error {
	return nil
}

// Compile-time check.
var _ ratelimit.Store = (*KVRedis)(nil)

package ratelimit

import (
	"context"
	"time"
)

// Store is the key-value capability the limiter persists RateRecords through.
//
// Each call must be individually atomic. Nothing spans a Get and the Put that
// follows it, so implementations backed by eventually-consistent stores are
// acceptable: a stale read only loosens enforcement.
type Store interface {
	// Get returns the value stored under key. found is false when the key is
	// absent or its TTL has elapsed.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put stores value under key; the entry expires after ttl.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// DefaultStoreTimeout bounds every store call made by a Window.
const DefaultStoreTimeout = 500 * time.Millisecond

// Window enforces a fixed window counter per client key on top of a Store.
//
// Each Check performs one read and at most one write. The read-modify-write is
// not atomic: concurrent checks for the same key can each observe the same
// count and all be admitted, so a burst may exceed the limit by up to the
// number of checks in flight. The persisted count itself never exceeds the
// limit. This is the intended approximation for abuse deterrence; use a store
// with an atomic increment if exact enforcement is needed.
type Window struct {
	store   Store
	timeout time.Duration
	prefix  string
}

// WindowOption customizes a Window.
type WindowOption func(*Window)

// WithStoreTimeout overrides DefaultStoreTimeout.
func WithStoreTimeout(d time.Duration) WindowOption {
	return func(w *Window) {
		if d > 0 {
			w.timeout = d
		}
	}
}

// WithKeyPrefix namespaces every key written by the Window.
func WithKeyPrefix(prefix string) WindowOption {
	return func(w *Window) {
		w.prefix = prefix
	}
}

// NewWindow creates a Window backed by store.
func NewWindow(store Store, opts ...WindowOption) *Window {
	w := &Window{
		store:   store,
		timeout: DefaultStoreTimeout,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Check decides whether one more request from clientID fits in the window
// described by cfg at time now, and records it if so.
func (w *Window) Check(ctx context.Context, clientID string, cfg LimitConfig, now time.Time) (Decision, error) {
	if err := cfg.validate(clientID); err != nil {
		return Decision{}, err
	}

	key := w.key(clientID)

	record, err := w.load(ctx, key, clientID, cfg.Window, now)
	if err != nil {
		return Decision{}, err
	}

	reset := ceilSeconds(cfg.Window - record.elapsed(now))

	if record.Count >= cfg.Max {
		return Decision{
			Allowed:           false,
			Limit:             cfg.Max,
			Remaining:         0,
			RetryAfterSeconds: reset,
			ResetSeconds:      reset,
		}, nil
	}

	record.Count++

	if err := w.save(ctx, key, record, cfg.Window); err != nil {
		return Decision{}, err
	}

	return Decision{
		Allowed:      true,
		Limit:        cfg.Max,
		Remaining:    cfg.Max - record.Count,
		ResetSeconds: reset,
	}, nil
}

// Status reports the window for clientID without consuming a request.
func (w *Window) Status(ctx context.Context, clientID string, cfg LimitConfig, now time.Time) (Status, error) {
	if err := cfg.validate(clientID); err != nil {
		return Status{}, err
	}

	record, err := w.load(ctx, w.key(clientID), clientID, cfg.Window, now)
	if err != nil {
		return Status{}, err
	}

	return Status{
		ClientID:     clientID,
		RequestsMade: record.Count,
		Remaining:    max(cfg.Max-record.Count, 0),
		Limit:        cfg.Max,
		ResetSeconds: ceilSeconds(cfg.Window - record.elapsed(now)),
	}, nil
}

// load fetches the record for key, starting a fresh window when it is absent,
// unreadable, or rolled over.
func (w *Window) load(
	ctx context.Context, key, clientID string, window time.Duration, now time.Time,
) (RateRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	fresh := RateRecord{ClientID: clientID, WindowStart: now}

	data, found, err := w.store.Get(ctx, key)
	if err != nil {
		return RateRecord{}, fmt.Errorf("%w: get %q: %w", ErrStoreUnavailable, key, err)
	}

	if !found {
		return fresh, nil
	}

	record, ok := decodeRecord(data)
	if !ok || record.expired(now, window) {
		return fresh, nil
	}

	record.ClientID = clientID

	return record, nil
}

func (w *Window) save(ctx context.Context, key string, record RateRecord, window time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	data, err := encodeRecord(record)
	if err != nil {
		return fmt.Errorf("encode rate record: %w", err)
	}

	if err := w.store.Put(ctx, key, data, window); err != nil {
		return fmt.Errorf("%w: put %q: %w", ErrStoreUnavailable, key, err)
	}

	return nil
}

func (w *Window) key(clientID string) string {
	if w.prefix == "" {
		return clientID
	}

	return w.prefix + clientID
}

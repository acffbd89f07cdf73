package ratelimit

import (
	"fmt"
	"time"
)

// LimitConfig is a single limit: at most Max requests per Window.
type LimitConfig struct {
	Window time.Duration
	Max    int64
}

// Validate rejects non-positive limits and windows, and windows that are not a
// whole number of seconds, with ErrInvalidConfiguration. Retry and reset hints
// are whole seconds and must never exceed the window.
func (c LimitConfig) Validate() error {
	switch {
	case c.Max <= 0:
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidConfiguration, c.Max)
	case c.Window <= 0:
		return fmt.Errorf("%w: window must be positive, got %s", ErrInvalidConfiguration, c.Window)
	case c.Window%time.Second != 0:
		return fmt.Errorf("%w: window must be whole seconds, got %s", ErrInvalidConfiguration, c.Window)
	}

	return nil
}

func (c LimitConfig) validate(clientID string) error {
	if clientID == "" {
		return fmt.Errorf("%w: empty client id", ErrInvalidConfiguration)
	}

	return c.Validate()
}

// Policy maps scopes to the limits applied to them.
type Policy struct {
	Limits map[Scope][]LimitConfig
}

// DefaultPolicy returns the limits applied to endpoints without their own configuration.
func DefaultPolicy() *Policy {
	return &Policy{
		Limits: map[Scope][]LimitConfig{
			ScopeGlobal: {
				{Window: time.Minute, Max: 300},
			},
			ScopeRead: {
				{Window: time.Minute, Max: 200},
			},
			ScopeWrite: {
				{Window: time.Minute, Max: 30},
				{Window: time.Hour, Max: 300},
			},
		},
	}
}

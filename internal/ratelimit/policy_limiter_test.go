package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
	"github.com/gammahazard/edge-protocol-demo/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicyLimiter(policy *ratelimit.Policy) *ratelimit.PolicyLimiter {
	return ratelimit.NewPolicyLimiter(ratelimit.NewWindow(store.NewKVMemory()), policy)
}

func TestPolicyLimiter_Allow(t *testing.T) {
	policy := &ratelimit.Policy{
		Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
			ratelimit.ScopeGlobal: {{Window: time.Minute, Max: 5}},
			ratelimit.ScopeWrite:  {{Window: time.Minute, Max: 2}},
		},
	}

	t.Run("reports the tightest limit", func(t *testing.T) {
		limiter := newPolicyLimiter(policy)

		decision, exceeded, err := limiter.Allow(context.Background(), "c",
			[]ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}, at(0))

		require.NoError(t, err)
		assert.Nil(t, exceeded)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(2), decision.Limit)
		assert.Equal(t, int64(1), decision.Remaining)
	})

	t.Run("denies when any scope is exhausted", func(t *testing.T) {
		limiter := newPolicyLimiter(policy)
		scopes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

		for range 2 {
			_, _, err := limiter.Allow(context.Background(), "c", scopes, at(0))
			require.NoError(t, err)
		}

		decision, exceeded, err := limiter.Allow(context.Background(), "c", scopes, at(10))

		require.NoError(t, err)
		require.NotNil(t, exceeded)
		assert.False(t, decision.Allowed)
		assert.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		assert.Equal(t, int64(2), exceeded.Config.Max)
		assert.Equal(t, int64(50), exceeded.Decision.RetryAfterSeconds)
	})

	t.Run("read scope is unaffected by write exhaustion", func(t *testing.T) {
		limiter := newPolicyLimiter(policy)

		for range 3 {
			_, _, _ = limiter.Allow(context.Background(), "c",
				[]ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}, at(0))
		}

		decision, exceeded, err := limiter.Allow(context.Background(), "c",
			[]ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead}, at(0))

		require.NoError(t, err)
		assert.Nil(t, exceeded)
		assert.True(t, decision.Allowed)
	})

	t.Run("denied requests do not consume other scopes", func(t *testing.T) {
		limiter := newPolicyLimiter(&ratelimit.Policy{
			Limits: map[ratelimit.Scope][]ratelimit.LimitConfig{
				ratelimit.ScopeGlobal: {{Window: time.Minute, Max: 3}},
				ratelimit.ScopeWrite:  {{Window: time.Minute, Max: 1}},
			},
		})
		writes := []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeWrite}

		decision, _, err := limiter.Allow(context.Background(), "c", writes, at(0))
		require.NoError(t, err)
		require.True(t, decision.Allowed)

		for range 5 {
			decision, exceeded, err := limiter.Allow(context.Background(), "c", writes, at(1))
			require.NoError(t, err)
			require.False(t, decision.Allowed)
			require.Equal(t, ratelimit.ScopeWrite, exceeded.Scope)
		}

		decision, exceeded, err := limiter.Allow(context.Background(), "c", []ratelimit.Scope{ratelimit.ScopeGlobal}, at(2))

		require.NoError(t, err)
		assert.Nil(t, exceeded)
		assert.Equal(t, int64(1), decision.Remaining)
	})

	t.Run("unknown scopes are allowed", func(t *testing.T) {
		limiter := newPolicyLimiter(policy)

		decision, exceeded, err := limiter.Allow(context.Background(), "c", []ratelimit.Scope{"other"}, at(0))

		require.NoError(t, err)
		assert.Nil(t, exceeded)
		assert.True(t, decision.Allowed)
	})

	t.Run("propagates store failures", func(t *testing.T) {
		limiter := ratelimit.NewPolicyLimiter(ratelimit.NewWindow(&failingStore{getErr: errStoreIO}), policy)

		_, _, err := limiter.Allow(context.Background(), "c", []ratelimit.Scope{ratelimit.ScopeGlobal}, at(0))

		assert.ErrorIs(t, err, ratelimit.ErrStoreUnavailable)
	})
}

func TestPolicyLimiter_CheckLimits(t *testing.T) {
	limits := []ratelimit.LimitConfig{
		{Window: time.Minute, Max: 3},
		{Window: time.Hour, Max: 5},
	}

	t.Run("minute limit denies first", func(t *testing.T) {
		limiter := newPolicyLimiter(ratelimit.DefaultPolicy())

		for range 3 {
			decision, _, err := limiter.CheckLimits(context.Background(), "c:/shorten", limits, at(0))
			require.NoError(t, err)
			require.True(t, decision.Allowed)
		}

		decision, exceeded, err := limiter.CheckLimits(context.Background(), "c:/shorten", limits, at(1))

		require.NoError(t, err)
		require.NotNil(t, exceeded)
		assert.False(t, decision.Allowed)
		assert.Equal(t, time.Minute, exceeded.Config.Window)
	})

	t.Run("hour limit survives minute rollover", func(t *testing.T) {
		limiter := newPolicyLimiter(ratelimit.DefaultPolicy())

		for minute := range 2 {
			for range 3 {
				_, _, _ = limiter.CheckLimits(context.Background(), "c", limits, at(minute*61))
			}
		}

		decision, exceeded, err := limiter.CheckLimits(context.Background(), "c", limits, at(200))

		require.NoError(t, err)
		require.NotNil(t, exceeded)
		assert.False(t, decision.Allowed)
		assert.Equal(t, time.Hour, exceeded.Config.Window)
	})

	t.Run("hour denial leaves the minute counter untouched", func(t *testing.T) {
		limiter := newPolicyLimiter(ratelimit.DefaultPolicy())
		limits := []ratelimit.LimitConfig{
			{Window: time.Minute, Max: 10},
			{Window: time.Hour, Max: 2},
		}

		for range 2 {
			_, _, err := limiter.CheckLimits(context.Background(), "c", limits, at(0))
			require.NoError(t, err)
		}

		for range 4 {
			decision, exceeded, err := limiter.CheckLimits(context.Background(), "c", limits, at(5))
			require.NoError(t, err)
			require.False(t, decision.Allowed)
			assert.Equal(t, time.Hour, exceeded.Config.Window)
			assert.Equal(t, int64(3595), decision.RetryAfterSeconds)
		}

		status, err := limiter.Status(context.Background(), "c", limits[0], at(5))

		require.NoError(t, err)
		assert.Equal(t, int64(2), status.RequestsMade)
	})

	t.Run("status reads the same counters", func(t *testing.T) {
		limiter := newPolicyLimiter(ratelimit.DefaultPolicy())
		limit := ratelimit.LimitConfig{Window: time.Minute, Max: 10}

		for range 4 {
			_, _, _ = limiter.CheckLimits(context.Background(), "rate-limiter:ip:1.2.3.4",
				[]ratelimit.LimitConfig{limit}, at(0))
		}

		status, err := limiter.Status(context.Background(), "rate-limiter:ip:1.2.3.4", limit, at(15))

		require.NoError(t, err)
		assert.Equal(t, int64(4), status.RequestsMade)
		assert.Equal(t, int64(6), status.Remaining)
		assert.Equal(t, int64(45), status.ResetSeconds)
	})
}

func TestDefaultPolicy(t *testing.T) {
	policy := ratelimit.DefaultPolicy()

	for _, scope := range []ratelimit.Scope{ratelimit.ScopeGlobal, ratelimit.ScopeRead, ratelimit.ScopeWrite} {
		limits, ok := policy.Limits[scope]

		require.True(t, ok, "scope %s", scope)
		require.NotEmpty(t, limits)

		for _, limit := range limits {
			assert.Positive(t, limit.Max)
			assert.Positive(t, limit.Window)
		}
	}
}

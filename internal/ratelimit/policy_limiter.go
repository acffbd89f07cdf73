package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// LimitExceeded contains information about which limit was exceeded.
type LimitExceeded struct {
	Scope    Scope
	Config   LimitConfig
	Decision Decision
}

// PolicyLimiter enforces rate limits based on a policy and resolved scopes.
type PolicyLimiter struct {
	window *Window
	policy *Policy
}

// NewPolicyLimiter creates a new policy-based rate limiter.
func NewPolicyLimiter(window *Window, policy *Policy) *PolicyLimiter {
	return &PolicyLimiter{
		window: window,
		policy: policy,
	}
}

// Allow checks every limit configured for the given scopes.
// The first exceeded limit denies the request and is described by LimitExceeded.
// Otherwise the returned decision is the most restrictive one, so response
// metadata reflects the limit closest to running out.
func (l *PolicyLimiter) Allow(
	ctx context.Context, clientKey string, scopes []Scope, now time.Time,
) (Decision, *LimitExceeded, error) {
	var targets []target

	for _, scope := range scopes {
		for _, limit := range l.policy.Limits[scope] {
			// Key combines client + scope + window for independent tracking
			targets = append(targets, target{
				scope: scope,
				key:   buildKey(clientKey, string(scope), limit),
				limit: limit,
			})
		}
	}

	return l.enforce(ctx, targets, now)
}

// CheckLimits applies an explicit list of limits under a single key.
// It is used for per-endpoint configuration that bypasses the policy.
func (l *PolicyLimiter) CheckLimits(
	ctx context.Context, key string, limits []LimitConfig, now time.Time,
) (Decision, *LimitExceeded, error) {
	targets := make([]target, 0, len(limits))

	for _, limit := range limits {
		targets = append(targets, target{key: buildKey(key, "custom", limit), limit: limit})
	}

	return l.enforce(ctx, targets, now)
}

type target struct {
	scope Scope
	key   string
	limit LimitConfig
}

// enforce reads every window before consuming any, so a request denied by one
// limit is not counted against the others. Two concurrent requests can still
// both pass the read phase, as described on Window.
func (l *PolicyLimiter) enforce(ctx context.Context, targets []target, now time.Time) (Decision, *LimitExceeded, error) {
	if len(targets) == 0 {
		return Decision{Allowed: true}, nil, nil
	}

	for _, t := range targets {
		status, err := l.window.Status(ctx, t.key, t.limit, now)
		if err != nil {
			return Decision{}, nil, err
		}

		if status.Remaining == 0 {
			decision := Decision{
				Allowed:           false,
				Limit:             status.Limit,
				RetryAfterSeconds: status.ResetSeconds,
				ResetSeconds:      status.ResetSeconds,
			}

			return decision, &LimitExceeded{Scope: t.scope, Config: t.limit, Decision: decision}, nil
		}
	}

	var tightest Decision

	for i, t := range targets {
		decision, err := l.window.Check(ctx, t.key, t.limit, now)
		if err != nil {
			return Decision{}, nil, err
		}

		if !decision.Allowed {
			return decision, &LimitExceeded{Scope: t.scope, Config: t.limit, Decision: decision}, nil
		}

		if i == 0 || tighter(decision, tightest) {
			tightest = decision
		}
	}

	return tightest, nil, nil
}

// Status reports the window behind one custom limit without consuming it.
func (l *PolicyLimiter) Status(ctx context.Context, key string, limit LimitConfig, now time.Time) (Status, error) {
	return l.window.Status(ctx, buildKey(key, "custom", limit), limit, now)
}

// Window returns the underlying window.
func (l *PolicyLimiter) Window() *Window {
	return l.window
}

// buildKey creates a unique rate limit key for the client, scope, and window combination.
func buildKey(clientKey, scope string, limit LimitConfig) string {
	return fmt.Sprintf("%s:%s:%d", clientKey, scope, limit.Window.Milliseconds())
}

func tighter(candidate, current Decision) bool {
	if candidate.Remaining != current.Remaining {
		return candidate.Remaining < current.Remaining
	}

	return candidate.ResetSeconds < current.ResetSeconds
}

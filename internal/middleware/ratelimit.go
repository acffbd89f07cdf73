package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimitedBody is the body of a 429 response.
type RateLimitedBody struct {
	Error             string `json:"error"`
	RetryAfterSeconds int64  `json:"retry_after_seconds"`
	Limit             int64  `json:"limit"`
}

// RateLimitOptions tunes PolicyRateLimiter.
type RateLimitOptions struct {
	// FailClosed rejects requests with 503 when the store cannot be reached.
	// By default such requests are served and a warning is logged.
	FailClosed bool
	// Now replaces time.Now, for tests.
	Now func() time.Time
}

// PolicyRateLimiter returns a Huma middleware that applies policy-based rate limiting.
// It uses a ScopeResolver to determine which scopes apply to each request,
// then checks all applicable limits from the policy.
//
// Per-endpoint configuration can be provided via operation metadata using
// ratelimit.MetadataKey. This allows endpoints to:
//   - Disable rate limiting entirely (Disabled: true)
//   - Override the scope detection (Scope: ratelimit.ScopeRead)
//   - Define custom limits (Limits: []ratelimit.LimitConfig{...})
//   - Share counters with other endpoints (Namespace: "...")
//
// Allowed responses carry X-RateLimit-Limit, X-RateLimit-Remaining and
// X-RateLimit-Reset; denied ones add Retry-After and answer 429.
func PolicyRateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	resolver ratelimit.ScopeResolver,
	metrics *RateLimitMetrics,
	logger *zap.Logger,
	opts RateLimitOptions,
) func(ctx huma.Context, next func(huma.Context)) {
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return func(ctx huma.Context, next func(huma.Context)) {
		path := operationPath(ctx)
		cfg := ratelimit.GetEndpointConfig(ctx)

		if cfg != nil && cfg.Disabled {
			next(ctx)

			return
		}

		clientID := ClientID(ctx)

		var (
			decision ratelimit.Decision
			exceeded *ratelimit.LimitExceeded
			err      error
		)

		if cfg != nil && len(cfg.Limits) > 0 {
			key := ratelimit.EndpointKey(cfg, clientID, path)
			decision, exceeded, err = limiter.CheckLimits(ctx.Context(), key, cfg.Limits, now())
		} else {
			decision, exceeded, err = limiter.Allow(ctx.Context(), clientID, resolver.Resolve(ctx), now())
		}

		if err != nil {
			handleLimiterError(api, ctx, err, path, metrics, logger, opts.FailClosed, next)

			return
		}

		setRateLimitHeaders(ctx, decision)

		if exceeded != nil || !decision.Allowed {
			metrics.observe(OutcomeDenied)
			logger.Warn("rate limit exceeded",
				zap.String("path", path),
				zap.String("method", ctx.Method()),
				zap.String("client_id", clientID),
				zap.Int64("limit", decision.Limit),
				zap.Int64("retry_after", decision.RetryAfterSeconds),
			)

			writeRateLimited(api, ctx, decision)

			return
		}

		metrics.observe(OutcomeAllowed)
		next(ctx)
	}
}

// writeRateLimited answers 429 with a RateLimitedBody in the negotiated format.
func writeRateLimited(api huma.API, ctx huma.Context, d ratelimit.Decision) {
	ct, err := api.Negotiate(ctx.Header("Accept"))
	if err != nil {
		ct = "application/json"
	}

	ctx.SetHeader("Content-Type", ct)
	ctx.SetStatus(http.StatusTooManyRequests)

	_ = api.Marshal(ctx.BodyWriter(), ct, RateLimitedBody{
		Error:             fmt.Sprintf("rate limit exceeded - try again in %d seconds", d.RetryAfterSeconds),
		RetryAfterSeconds: d.RetryAfterSeconds,
		Limit:             d.Limit,
	})
}

func handleLimiterError(
	api huma.API,
	ctx huma.Context,
	err error,
	path string,
	metrics *RateLimitMetrics,
	logger *zap.Logger,
	failClosed bool,
	next func(huma.Context),
) {
	if errors.Is(err, ratelimit.ErrInvalidConfiguration) {
		metrics.observe(OutcomeInvalid)
		logger.Error("rate limit misconfigured", zap.String("path", path), zap.Error(err))
		_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error", err)

		return
	}

	metrics.observe(OutcomeStoreError)

	if failClosed {
		logger.Error("rate limit store unavailable, rejecting request", zap.String("path", path), zap.Error(err))
		_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable, "rate limiter unavailable")

		return
	}

	logger.Warn("rate limit store unavailable, serving request", zap.String("path", path), zap.Error(err))
	next(ctx)
}

func setRateLimitHeaders(ctx huma.Context, d ratelimit.Decision) {
	if d.Limit == 0 {
		return
	}

	ctx.SetHeader("X-RateLimit-Limit", strconv.FormatInt(d.Limit, 10))
	ctx.SetHeader("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
	ctx.SetHeader("X-RateLimit-Reset", strconv.FormatInt(d.ResetSeconds, 10))

	if !d.Allowed {
		ctx.SetHeader("Retry-After", strconv.FormatInt(d.RetryAfterSeconds, 10))
	}
}

// operationPath returns the route template, e.g. "/{code}".
func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ctx.URL().Path
}

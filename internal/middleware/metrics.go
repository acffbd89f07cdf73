package middleware

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Rate limit decision outcomes.
const (
	OutcomeAllowed    = "allowed"
	OutcomeDenied     = "denied"
	OutcomeStoreError = "store_error"
	OutcomeInvalid    = "invalid"
)

// RateLimitMetrics counts rate limiting decisions. Store failures are counted
// apart from throttling so they can be alerted on separately.
type RateLimitMetrics struct {
	Decisions   *prometheus.CounterVec
	StoreErrors prometheus.Counter
}

// NewRateLimitMetrics registers the rate limit collectors with reg.
func NewRateLimitMetrics(reg prometheus.Registerer) (*RateLimitMetrics, error) {
	decisions, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge",
		Subsystem: "ratelimit",
		Name:      "decisions_total",
		Help:      "Rate limit decisions partitioned by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	storeErrors, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "edge",
		Subsystem: "ratelimit",
		Name:      "store_errors_total",
		Help:      "Rate limit checks that failed because the store was unavailable.",
	}))
	if err != nil {
		return nil, err
	}

	return &RateLimitMetrics{Decisions: decisions, StoreErrors: storeErrors}, nil
}

func (m *RateLimitMetrics) observe(outcome string) {
	if m == nil {
		return
	}

	m.Decisions.WithLabelValues(outcome).Inc()

	if outcome == OutcomeStoreError {
		m.StoreErrors.Inc()
	}
}

// HTTPMetrics instruments requests by method, route template and status.
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// NewHTTPMetrics registers the HTTP collectors with reg.
func NewHTTPMetrics(reg prometheus.Registerer) (*HTTPMetrics, error) {
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "edge",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests partitioned by method, route and status code.",
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "edge",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latencies in seconds partitioned by method, route and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"}))
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{Requests: requests, Duration: duration}, nil
}

// Middleware records every request that reaches a huma operation.
func (m *HTTPMetrics) Middleware() func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		route := ctx.URL().Path
		if op := ctx.Operation(); op != nil {
			route = op.Path
		}

		labels := prometheus.Labels{
			"method": ctx.Method(),
			"route":  route,
			"status": strconv.Itoa(ctx.Status()),
		}

		m.Requests.With(labels).Inc()
		m.Duration.With(labels).Observe(time.Since(start).Seconds())
	}
}

// register registers c, reusing an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return c, fmt.Errorf("register collector: %w", err)
		}

		existing, ok := already.ExistingCollector.(T)
		if !ok {
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}

		return existing, nil
	}

	return c, nil
}

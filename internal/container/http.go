package container

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/gammahazard/edge-protocol-demo/internal/analytics"
	"github.com/gammahazard/edge-protocol-demo/internal/capability"
	"github.com/gammahazard/edge-protocol-demo/internal/handlers"
	"github.com/gammahazard/edge-protocol-demo/internal/health"
	"github.com/gammahazard/edge-protocol-demo/internal/messaging"
	"github.com/gammahazard/edge-protocol-demo/internal/middleware"
	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// MetricsPackage provides the prometheus registry and the collectors
// recorded by the HTTP middlewares.
func MetricsPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*prometheus.Registry, error) {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		return reg, nil
	})

	do.Provide(injector, func(i *do.Injector) (*middleware.RateLimitMetrics, error) {
		return middleware.NewRateLimitMetrics(do.MustInvoke[*prometheus.Registry](i))
	})

	do.Provide(injector, func(i *do.Injector) (*middleware.HTTPMetrics, error) {
		return middleware.NewHTTPMetrics(do.MustInvoke[*prometheus.Registry](i))
	})
}

// HTTPPackage provides the chi router and the huma API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(chimiddleware.RequestID)
		router.Use(chimiddleware.Recoverer)
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type", "X-API-Key"},
			ExposedHeaders: []string{
				"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After",
			},
			MaxAge: 86400,
		}))

		reg := do.MustInvoke[*prometheus.Registry](i)
		router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

		return router, nil
	})

	do.Provide(injector, newAPI)
}

func newAPI(i *do.Injector) (huma.API, error) {
	opts := do.MustInvoke[*Options](i)
	logger := do.MustInvoke[*zap.Logger](i)
	router := do.MustInvoke[*chi.Mux](i)

	repo, err := do.Invoke[shortener.Repository](i)
	if err != nil {
		return nil, err
	}

	protected, err := do.Invoke[ratelimit.EndpointConfig](i)
	if err != nil {
		return nil, err
	}

	generator, err := shortener.NewCodeGenerator(opts.CodeLength)
	if err != nil {
		return nil, err
	}

	publishers, err := do.Invoke[*messaging.PublisherGroup](i)
	if err != nil {
		return nil, err
	}

	limiter, err := do.Invoke[*ratelimit.PolicyLimiter](i)
	if err != nil {
		return nil, err
	}

	kv := do.MustInvoke[ratelimit.Store](i)

	fetchClient, err := capability.NewHTTPClient(capability.DefaultFetchTimeout)
	if err != nil {
		return nil, err
	}

	api := humachi.New(router, huma.DefaultConfig("Edge Protocol Demo", "1.0.0"))

	// Order matters: metrics see the rate limiter's 429s.
	api.UseMiddleware(middleware.RequestMeta(api))
	api.UseMiddleware(do.MustInvoke[*middleware.HTTPMetrics](i).Middleware())
	api.UseMiddleware(middleware.PolicyRateLimiter(
		api,
		limiter,
		ratelimit.NewOperationScopeResolver(),
		do.MustInvoke[*middleware.RateLimitMetrics](i),
		logger,
		middleware.RateLimitOptions{FailClosed: opts.FailClosed},
	))

	strategies := map[shortener.StrategyName]shortener.Strategy{
		shortener.StrategyToken: shortener.NewTokenStrategy(repo, generator),
		shortener.StrategyHash:  shortener.NewHashStrategy(repo, generator),
	}

	publisher := publishers.Publisher()

	handlers.RegisterRoutes(api, handlers.Handlers{
		URL: handlers.NewURLHandler(
			repo,
			opts.publicBaseURL(),
			strategies,
			messaging.NewPublishFunc[analytics.URLCreatedEvent](publisher, analytics.TopicURLCreated),
			messaging.NewPublishFunc[analytics.URLAccessedEvent](publisher, analytics.TopicURLAccessed),
			logger,
		),
		RateLimit:  handlers.NewRateLimitHandler(limiter, protected, time.Now, logger),
		Capability: handlers.NewCapabilityHandler(
			capability.NewProber(kv, capability.WithHTTPClient(fetchClient)),
			int64(opts.CapabilityRateLimit),
		),
	})

	checks, err := healthHandler(i, opts)
	if err != nil {
		return nil, err
	}

	health.RegisterRoutes(api, checks)

	return api, nil
}

func healthHandler(i *do.Injector, opts *Options) (*health.Handler, error) {
	h := health.NewHandler()

	if opts.usesRedis() {
		client, err := redisClient(i)
		if err != nil {
			return nil, err
		}

		h.Add("redis", health.NewRedisChecker(client))
	}

	if opts.StorageBackend == BackendPostgres {
		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		h.Add("postgres", health.NewPostgresChecker(pg.Pool))
	}

	return h, nil
}

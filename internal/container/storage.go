package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/ratelimit"
	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"github.com/gammahazard/edge-protocol-demo/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"go.uber.org/zap"
)

const (
	startupTimeout = 30 * time.Second

	// janitorInterval is how often the memory store drops expired windows.
	janitorInterval = time.Minute
)

// Redis owns the shared client so the injector closes it on shutdown.
type Redis struct {
	Client *redis.Client
}

func (r *Redis) Shutdown() error {
	return r.Client.Close()
}

// Postgres owns the shared pool so the injector closes it on shutdown.
type Postgres struct {
	Pool *pgxpool.Pool
}

func (p *Postgres) Shutdown() error {
	p.Pool.Close()

	return nil
}

func redisClient(i *do.Injector) (*redis.Client, error) {
	r, err := do.Invoke[*Redis](i)
	if err != nil {
		return nil, err
	}

	return r.Client, nil
}

// RedisPackage provides a connected *Redis.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Redis, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		if err := waitFor(ctx, "redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}, logger); err != nil {
			_ = client.Close()

			return nil, err
		}

		logger.Info("connected to redis", zap.String("addr", opts.RedisAddr))

		return &Redis{Client: client}, nil
	})
}

// PostgresPackage provides a connected *Postgres.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Postgres, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			return nil, errors.New("postgres storage requires a database url")
		}

		ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
		defer cancel()

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres pool: %w", err)
		}

		if err := waitFor(ctx, "postgres", pool.Ping, logger); err != nil {
			pool.Close()

			return nil, err
		}

		logger.Info("connected to postgres")

		return &Postgres{Pool: pool}, nil
	})
}

// RepositoryPackage provides the shortener.Repository selected by StorageBackend.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.StorageBackend {
		case BackendMemory:
			return store.NewURLMemory(), nil
		case BackendRedis:
			client, err := redisClient(i)
			if err != nil {
				return nil, err
			}

			return store.NewURLRedis(client), nil
		case BackendPostgres:
			return newPostgresRepository(i, opts)
		default:
			return nil, fmt.Errorf("%w: storage %q", ErrUnknownBackend, opts.StorageBackend)
		}
	})
}

func newPostgresRepository(i *do.Injector, opts *Options) (shortener.Repository, error) {
	pg, err := do.Invoke[*Postgres](i)
	if err != nil {
		return nil, err
	}

	repo := store.NewURLPostgres(pg.Pool)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if opts.CacheTTLSeconds <= 0 {
		return repo, nil
	}

	client, err := redisClient(i)
	if err != nil {
		return nil, err
	}

	return store.NewURLCache(
		repo,
		client,
		time.Duration(opts.CacheTTLSeconds)*time.Second,
		do.MustInvoke[*zap.Logger](i),
	), nil
}

// RateLimitPackage provides the rate limit store, the sliding window limiter
// and the configuration of the protected endpoint.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		if do.MustInvoke[*Options](i).StorageBackend == BackendMemory {
			return store.NewKVMemory().StartJanitor(janitorInterval), nil
		}

		client, err := redisClient(i)
		if err != nil {
			return nil, err
		}

		return store.NewKVRedis(client), nil
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		kv, err := do.Invoke[ratelimit.Store](i)
		if err != nil {
			return nil, err
		}

		window := ratelimit.NewWindow(kv,
			ratelimit.WithStoreTimeout(time.Duration(opts.StoreTimeoutMs)*time.Millisecond),
			ratelimit.WithKeyPrefix(opts.RateKeyPrefix))

		return ratelimit.NewPolicyLimiter(window, ratelimit.DefaultPolicy()), nil
	})

	do.Provide(injector, func(i *do.Injector) (ratelimit.EndpointConfig, error) {
		opts := do.MustInvoke[*Options](i)

		limit := ratelimit.LimitConfig{
			Window: time.Duration(opts.RateWindowSeconds) * time.Second,
			Max:    int64(opts.RateLimit),
		}
		if err := limit.Validate(); err != nil {
			return ratelimit.EndpointConfig{}, err
		}

		return ratelimit.EndpointConfig{
			Namespace: "rate-limiter",
			Limits:    []ratelimit.LimitConfig{limit},
		}, nil
	})
}

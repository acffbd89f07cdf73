package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

var ErrUnknownBackend = errors.New("unknown backend")

type Options struct {
	Port                int    `default:"8888"           help:"Port to listen on"                                       short:"p"`
	BaseURL             string `default:""               help:"Public base URL of short links (default http://localhost:<port>)"`
	CodeLength          int    `default:"6"              help:"Length of generated short codes"                         short:"c"`
	RedisAddr           string `default:"localhost:6379" help:"Redis server address"                                    short:"r"`
	DatabaseURL         string `default:""               help:"PostgreSQL connection string"`
	StorageBackend      string `default:"memory"         help:"URL and rate limit storage: memory, redis or postgres"`
	MessagingBackend    string `default:"memory"         help:"Analytics transport: memory or redis"`
	CacheTTLSeconds     int    `default:"3600"           help:"Redis cache TTL for postgres lookups, 0 disables"`
	RateLimit           int    `default:"10"             help:"Requests allowed per window on /api/protected"`
	RateWindowSeconds   int    `default:"60"             help:"Sliding window length in seconds"`
	CapabilityRateLimit int    `default:"30"             help:"Capability probes allowed per minute"`
	StoreTimeoutMs      int    `default:"500"            help:"Timeout of each rate limit store call"`
	RateKeyPrefix       string `default:"edge:"          help:"Prefix of rate limit counter keys, to share one store between deployments"`
	FailClosed          bool   `default:"false"          help:"Reject requests with 503 when the rate limit store is down"`
	LogFormat           string `default:"console"        help:"Log format: console or json"`
	LogLevel            string `default:"info"           help:"Log level"`
	LogFile             string `default:""               help:"Write logs to this file, rotated, instead of stdout"`
}

func (o *Options) publicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// usesRedis reports whether any configured component needs Redis.
func (o *Options) usesRedis() bool {
	return o.StorageBackend != BackendMemory || o.MessagingBackend == BackendRedis
}

// waitFor pings a dependency until it answers, backing off exponentially.
func waitFor(ctx context.Context, name string, ping func(context.Context) error, logger *zap.Logger) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxElapsedTime = 30 * time.Second

	err := backoff.RetryNotify(func() error {
		return ping(ctx)
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		logger.Warn("dependency not ready",
			zap.String("dependency", name),
			zap.Duration("retry_in", wait),
			zap.Error(err),
		)
	})
	if err != nil {
		return fmt.Errorf("%s unreachable: %w", name, err)
	}

	return nil
}

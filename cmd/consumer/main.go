package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gammahazard/edge-protocol-demo/internal/container"
	"github.com/gammahazard/edge-protocol-demo/internal/messaging"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// The cache TTL matches the server default so clicks on postgres evict its cached entries.
func main() {
	opts := &container.Options{
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		StorageBackend:   getEnv("STORAGE_BACKEND", container.BackendMemory),
		MessagingBackend: container.BackendRedis,
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFile:          getEnv("LOG_FILE", ""),
		CacheTTLSeconds:  3600,
	}

	injector := do.New()
	do.ProvideValue(injector, opts)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.RepositoryPackage(injector)
	container.MessagingPackage(injector)
	container.ConsumerGroupPackage(injector)

	logger := do.MustInvoke[*zap.Logger](injector)

	group, err := do.Invoke[*messaging.ConsumerGroup](injector)
	if err != nil {
		logger.Fatal("failed to build consumer group", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("consumer started", zap.String("storage", opts.StorageBackend))

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return defaultValue
}

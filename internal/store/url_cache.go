package store

import (
	"context"
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// URLCache is a read-through Redis cache in front of another repository.
// Cache errors are logged and fall back to the underlying repository.
type URLCache struct {
	repo    shortener.Repository
	client  *redis.Client
	logger  *zap.Logger
	prefix  string
	hashKey string
	ttl     time.Duration
}

// NewURLCache wraps repo with a Redis cache whose entries expire after ttl.
func NewURLCache(repo shortener.Repository, client *redis.Client, ttl time.Duration, logger *zap.Logger) *URLCache {
	return &URLCache{
		repo:    repo,
		client:  client,
		logger:  logger,
		prefix:  "cache:url:",
		hashKey: "cache:url_hashes",
		ttl:     ttl,
	}
}

func (c *URLCache) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	if err := c.repo.Save(ctx, shortURL); err != nil {
		return err
	}

	c.store(ctx, shortURL)

	return nil
}

func (c *URLCache) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	if url, err := readURLHash(ctx, c.client, c.prefix+string(code)); err == nil {
		return url, nil
	}

	url, err := c.repo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c.store(ctx, url)

	return url, nil
}

func (c *URLCache) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	if code, err := c.client.HGet(ctx, c.hashKey, string(hash)).Result(); err == nil {
		if url, err := readURLHash(ctx, c.client, c.prefix+code); err == nil {
			return url, nil
		}
	}

	url, err := c.repo.GetByHash(ctx, hash)
	if err != nil {
		return nil, err
	}

	c.store(ctx, url)

	return url, nil
}

// IncrementClicks updates the underlying repository and drops the cached
// entry so the next read sees the new count.
func (c *URLCache) IncrementClicks(ctx context.Context, code shortener.Code) error {
	if err := c.repo.IncrementClicks(ctx, code); err != nil {
		return err
	}

	if err := c.client.Del(ctx, c.prefix+string(code)).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", zap.String("code", string(code)), zap.Error(err))
	}

	return nil
}

func (c *URLCache) store(ctx context.Context, url *shortener.ShortURL) {
	key := c.prefix + string(url.Code)

	pipe := c.client.Pipeline()
	writeURLHash(ctx, pipe, key, url)

	if c.ttl > 0 {
		pipe.Expire(ctx, key, c.ttl)
	}

	if url.URLHash != "" {
		pipe.HSet(ctx, c.hashKey, string(url.URLHash), string(url.Code))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("cache write failed", zap.String("code", string(url.Code)), zap.Error(err))
	}
}

// Shutdown is a no-op for URLCache (client managed externally).
func (c *URLCache) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*URLCache)(nil)

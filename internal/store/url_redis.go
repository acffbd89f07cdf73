package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"github.com/redis/go-redis/v9"
)

// URLRedis is a Redis implementation of shortener.Repository.
// Each code is a hash under "url:<code>"; normalized URL hashes map to codes
// in the "url_hashes" hash.
type URLRedis struct {
	client  *redis.Client
	prefix  string
	hashKey string
}

// NewURLRedis creates a new Redis-backed URL store.
func NewURLRedis(client *redis.Client) *URLRedis {
	return &URLRedis{
		client:  client,
		prefix:  "url:",
		hashKey: "url_hashes",
	}
}

func (r *URLRedis) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	pipe := r.client.TxPipeline()
	writeURLHash(ctx, pipe, r.prefix+string(shortURL.Code), shortURL)

	if shortURL.URLHash != "" {
		pipe.HSet(ctx, r.hashKey, string(shortURL.URLHash), string(shortURL.Code))
	}

	_, err := pipe.Exec(ctx)

	return err
}

func (r *URLRedis) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return readURLHash(ctx, r.client, r.prefix+string(code))
}

func (r *URLRedis) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	code, err := r.client.HGet(ctx, r.hashKey, string(hash)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return r.GetByCode(ctx, shortener.Code(code))
}

func (r *URLRedis) IncrementClicks(ctx context.Context, code shortener.Code) error {
	key := r.prefix + string(code)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return err
	}

	if exists == 0 {
		return shortener.ErrNotFound
	}

	return r.client.HIncrBy(ctx, key, "clicks", 1).Err()
}

// Shutdown is a no-op for URLRedis (client managed externally).
func (r *URLRedis) Shutdown() error {
	return nil
}

func writeURLHash(ctx context.Context, pipe redis.Pipeliner, key string, url *shortener.ShortURL) {
	pipe.HSet(ctx, key, map[string]any{
		"code":         string(url.Code),
		"original_url": url.OriginalURL,
		"url_hash":     string(url.URLHash),
		"created_at":   url.CreatedAt.UnixNano(),
		"clicks":       url.Clicks,
	})
}

func readURLHash(ctx context.Context, client *redis.Client, key string) (*shortener.ShortURL, error) {
	result, err := client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	url := &shortener.ShortURL{
		Code:        shortener.Code(result["code"]),
		OriginalURL: result["original_url"],
		URLHash:     shortener.URLHash(result["url_hash"]),
	}

	if nanos, err := strconv.ParseInt(result["created_at"], 10, 64); err == nil {
		url.CreatedAt = time.Unix(0, nanos).UTC()
	}

	if clicks, err := strconv.ParseInt(result["clicks"], 10, 64); err == nil {
		url.Clicks = clicks
	}

	return url, nil
}

// Compile-time check.
var _ shortener.Repository = (*URLRedis)(nil)

package store

import (
	"context"
	"errors"

	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		code         TEXT PRIMARY KEY,
		original_url TEXT NOT NULL,
		url_hash     TEXT UNIQUE,
		created_at   TIMESTAMPTZ NOT NULL,
		clicks       BIGINT NOT NULL DEFAULT 0
	)
`

const selectURL = `SELECT code, original_url, url_hash, created_at, clicks FROM short_urls`

// URLPostgres is a PostgreSQL implementation of shortener.Repository.
type URLPostgres struct {
	pool *pgxpool.Pool
}

// NewURLPostgres creates a new PostgreSQL-backed URL store.
func NewURLPostgres(pool *pgxpool.Pool) *URLPostgres {
	return &URLPostgres{pool: pool}
}

// Migrate creates the short_urls table if it does not exist.
func (p *URLPostgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schema)

	return err
}

func (p *URLPostgres) Save(ctx context.Context, shortURL *shortener.ShortURL) error {
	query := `
		INSERT INTO short_urls (code, original_url, url_hash, created_at, clicks)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (code) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		string(shortURL.Code),
		shortURL.OriginalURL,
		nullableHash(shortURL.URLHash),
		shortURL.CreatedAt,
		shortURL.Clicks,
	)

	return err
}

func (p *URLPostgres) GetByCode(ctx context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	return scanURL(p.pool.QueryRow(ctx, selectURL+` WHERE code = $1`, string(code)))
}

func (p *URLPostgres) GetByHash(ctx context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	return scanURL(p.pool.QueryRow(ctx, selectURL+` WHERE url_hash = $1`, string(hash)))
}

func (p *URLPostgres) IncrementClicks(ctx context.Context, code shortener.Code) error {
	tag, err := p.pool.Exec(ctx, `UPDATE short_urls SET clicks = clicks + 1 WHERE code = $1`, string(code))
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Shutdown is a no-op for URLPostgres (pool managed externally).
func (p *URLPostgres) Shutdown() error {
	return nil
}

func scanURL(row pgx.Row) (*shortener.ShortURL, error) {
	var (
		url     shortener.ShortURL
		urlHash *string
	)

	err := row.Scan(&url.Code, &url.OriginalURL, &urlHash, &url.CreatedAt, &url.Clicks)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	if urlHash != nil {
		url.URLHash = shortener.URLHash(*urlHash)
	}

	return &url, nil
}

func nullableHash(h shortener.URLHash) *string {
	if h == "" {
		return nil
	}

	s := string(h)

	return &s
}

// Compile-time check.
var _ shortener.Repository = (*URLPostgres)(nil)

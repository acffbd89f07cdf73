package shortener

import (
	"context"
	"errors"
	"time"
)

// Strategy turns a long URL into a stored short URL.
type Strategy interface {
	Shorten(ctx context.Context, url string) (*ShortURL, error)
}

// StrategyName selects a Strategy at request time.
type StrategyName string

const (
	StrategyToken StrategyName = "token"
	StrategyHash  StrategyName = "hash"
)

// CodeGenerator generates unique short codes.
type CodeGenerator func() string

// TokenStrategy issues a fresh code for every request, even for a URL seen before.
type TokenStrategy struct {
	repo         Repository
	generateCode CodeGenerator
	now          func() time.Time
}

func NewTokenStrategy(repo Repository, generator CodeGenerator) *TokenStrategy {
	return &TokenStrategy{repo: repo, generateCode: generator, now: time.Now}
}

func (s *TokenStrategy) Shorten(ctx context.Context, rawURL string) (*ShortURL, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	shortURL := &ShortURL{
		Code:        Code(s.generateCode()),
		OriginalURL: rawURL,
		CreatedAt:   s.now().UTC(),
	}

	if err := s.repo.Save(ctx, shortURL); err != nil {
		return nil, err
	}

	return shortURL, nil
}

// HashStrategy returns the existing code when an equivalent URL was already shortened.
type HashStrategy struct {
	repo         Repository
	generateCode CodeGenerator
	now          func() time.Time
}

func NewHashStrategy(repo Repository, generator CodeGenerator) *HashStrategy {
	return &HashStrategy{repo: repo, generateCode: generator, now: time.Now}
}

func (s *HashStrategy) Shorten(ctx context.Context, rawURL string) (*ShortURL, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	normalized, err := NormalizeURL(rawURL)
	if err != nil {
		return nil, err
	}

	urlHash := HashURL(normalized)

	existing, err := s.repo.GetByHash(ctx, urlHash)

	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	shortURL := &ShortURL{
		Code:        Code(s.generateCode()),
		OriginalURL: rawURL,
		URLHash:     urlHash,
		CreatedAt:   s.now().UTC(),
	}

	if err = s.repo.Save(ctx, shortURL); err != nil {
		return nil, err
	}

	return shortURL, nil
}

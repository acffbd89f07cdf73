package store

import (
	"context"
	"sync"

	"github.com/gammahazard/edge-protocol-demo/internal/shortener"
)

// URLMemory is an in-memory implementation of shortener.Repository.
type URLMemory struct {
	mu     sync.RWMutex
	urls   map[shortener.Code]shortener.ShortURL
	hashes map[shortener.URLHash]shortener.Code
}

// NewURLMemory creates a new in-memory URL store.
func NewURLMemory() *URLMemory {
	return &URLMemory{
		urls:   make(map[shortener.Code]shortener.ShortURL),
		hashes: make(map[shortener.URLHash]shortener.Code),
	}
}

func (m *URLMemory) Save(_ context.Context, shortURL *shortener.ShortURL) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.urls[shortURL.Code] = *shortURL

	if shortURL.URLHash != "" {
		m.hashes[shortURL.URLHash] = shortURL.Code
	}

	return nil
}

func (m *URLMemory) GetByCode(_ context.Context, code shortener.Code) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &url, nil
}

func (m *URLMemory) GetByHash(_ context.Context, hash shortener.URLHash) (*shortener.ShortURL, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	code, ok := m.hashes[hash]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	url, ok := m.urls[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	return &url, nil
}

func (m *URLMemory) IncrementClicks(_ context.Context, code shortener.Code) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	url, ok := m.urls[code]
	if !ok {
		return shortener.ErrNotFound
	}

	url.Clicks++
	m.urls[code] = url

	return nil
}

// Shutdown is a no-op for URLMemory.
func (m *URLMemory) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*URLMemory)(nil)

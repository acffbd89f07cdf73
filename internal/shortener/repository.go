package shortener

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a short URL does not exist.
var ErrNotFound = errors.New("short url not found")

// Repository defines the interface for short URL storage.
type Repository interface {
	Save(ctx context.Context, shortURL *ShortURL) error
	GetByCode(ctx context.Context, code Code) (*ShortURL, error)

	// GetByHash returns the short URL previously saved for a normalized URL hash.
	// Returns ErrNotFound if no mapping exists.
	GetByHash(ctx context.Context, hash URLHash) (*ShortURL, error)

	// IncrementClicks adds one to the click counter of code.
	// Returns ErrNotFound if the code does not exist.
	IncrementClicks(ctx context.Context, code Code) error
}

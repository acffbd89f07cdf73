package shortener

import "time"

// Code is the path segment that identifies a short URL.
type Code string

// URLHash is the SHA-256 of a normalized URL, used to deduplicate.
type URLHash string

type ShortURL struct {
	Code        Code
	OriginalURL string
	// URLHash is only set by the hash strategy.
	URLHash   URLHash
	CreatedAt time.Time
	// Clicks counts redirects recorded by the analytics consumer.
	Clicks int64
}

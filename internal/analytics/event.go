package analytics

import "time"

const (
	TopicURLCreated  = "url.created"
	TopicURLAccessed = "url.accessed"
)

// URLCreatedEvent represents an event emitted when a URL is shortened.
type URLCreatedEvent struct {
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	URLHash     string    `json:"urlHash,omitempty"`
	Strategy    string    `json:"strategy"`
	CreatedAt   time.Time `json:"createdAt"`
	ClientID    string    `json:"clientId"`
	UserAgent   string    `json:"userAgent"`
}

// URLAccessedEvent is emitted on every redirect.
type URLAccessedEvent struct {
	Code       string    `json:"code"`
	AccessedAt time.Time `json:"accessedAt"`
	ClientID   string    `json:"clientId"`
	UserAgent  string    `json:"userAgent"`
	Referrer   string    `json:"referrer,omitempty"`
}

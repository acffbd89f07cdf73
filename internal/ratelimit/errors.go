package ratelimit

import "errors"

var (
	// ErrInvalidConfiguration is returned when a limit, window, or client id is unusable.
	// It is raised before the store is touched.
	ErrInvalidConfiguration = errors.New("ratelimit: invalid configuration")

	// ErrStoreUnavailable is returned when the backing store fails or times out.
	// Callers decide whether to fail open or closed.
	ErrStoreUnavailable = errors.New("ratelimit: store unavailable")
)

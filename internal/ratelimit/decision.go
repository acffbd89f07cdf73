package ratelimit

import "time"

// Decision is the outcome of one limiting check.
type Decision struct {
	Allowed bool
	Limit   int64
	// Remaining is the number of requests still admitted in the current window.
	// It is always zero when Allowed is false.
	Remaining int64
	// RetryAfterSeconds is how long a denied client has to wait for the window
	// to roll over. Zero when Allowed is true.
	RetryAfterSeconds int64
	// ResetSeconds is the time left in the current window.
	ResetSeconds int64
}

// Status is a read-only view of a client's window, used for reporting.
type Status struct {
	ClientID     string
	RequestsMade int64
	Remaining    int64
	Limit        int64
	ResetSeconds int64
}

// ceilSeconds rounds d up to whole seconds.
func ceilSeconds(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}

	secs := int64(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}

	return secs
}

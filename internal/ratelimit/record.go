package ratelimit

import (
	"encoding/json"
	"time"
)

// RateRecord is the persisted counting state for one client key.
type RateRecord struct {
	ClientID    string    `json:"client_id"`
	WindowStart time.Time `json:"window_start"`
	Count       int64     `json:"count"`
}

// elapsed returns how long the record's window has been open at now.
// A now before WindowStart (skew between instances) counts as zero.
func (r RateRecord) elapsed(now time.Time) time.Duration {
	d := now.Sub(r.WindowStart)
	if d < 0 {
		return 0
	}

	return d
}

// expired reports whether the window has rolled over at now.
func (r RateRecord) expired(now time.Time, window time.Duration) bool {
	return r.elapsed(now) >= window
}

func encodeRecord(r RateRecord) ([]byte, error) {
	return json.Marshal(r)
}

// decodeRecord parses a stored record. Undecodable payloads are reported as
// absent so a corrupted entry starts a fresh window instead of failing requests.
func decodeRecord(data []byte) (RateRecord, bool) {
	var r RateRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return RateRecord{}, false
	}

	if r.Count < 0 {
		return RateRecord{}, false
	}

	return r, true
}

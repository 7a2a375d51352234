package cache

import (
	"encoding/json"
	"time"
)

// Entry is one cached response with its expiry.
type Entry struct {
	// Key is the SHA256 cache key the entry was stored under.
	Key string `json:"key"`

	// Data is the cached response body.
	Data json.RawMessage `json:"data"`

	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewEntry creates an entry expiring ttl from now.
func NewEntry(key string, data json.RawMessage, ttl time.Duration) *Entry {
	now := time.Now()
	return &Entry{
		Key:       key,
		Data:      data,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the entry is past its expiry.
func (e *Entry) IsExpired() bool {
	return !time.Now().Before(e.ExpiresAt)
}

// Age returns the time since the entry was created.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CreatedAt)
}

// TimeUntilExpiration returns the remaining lifetime, or 0 once expired.
func (e *Entry) TimeUntilExpiration() time.Duration {
	remaining := time.Until(e.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}

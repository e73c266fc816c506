package cache

import (
	"time"
)

// Entry represents a retained backend response.
type Entry struct {
	// Data is the decoded payload (resource store)
	Data any

	// Body is the raw response body (validator store)
	Body []byte

	// ETag for conditional requests (If-None-Match)
	ETag string

	// FetchedAt is when the response was received
	FetchedAt time.Time

	// Stale marks the entry as explicitly invalidated
	Stale bool
}

// Age returns how long ago the entry was fetched.
// Returns 0 for entries fetched in the future (clock skew in tests).
func (e *Entry) Age(now time.Time) time.Duration {
	age := now.Sub(e.FetchedAt)
	if age < 0 {
		return 0
	}
	return age
}

// IsStale reports whether the entry must be revalidated before it can be
// considered fresh. A maxAge of 0 disables age-based staleness.
func (e *Entry) IsStale(now time.Time, maxAge time.Duration) bool {
	if e.Stale {
		return true
	}
	return maxAge > 0 && e.Age(now) > maxAge
}

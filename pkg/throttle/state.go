// Package throttle gates revalidation requests per resource key.
// Each key gets its own token bucket so that refreshing one view never
// delays another.
package throttle

import (
	"time"
)

// DefaultWindow is the minimum spacing between two gated revalidations of the
// same key.
const DefaultWindow = time.Second

// KeyState is a point-in-time view of one key's throttle.
type KeyState struct {
	// Key is the resource key the state belongs to.
	Key string `json:"key"`

	// LastAllowed is when a revalidation of the key was last let through.
	LastAllowed time.Time `json:"last_allowed"`

	// Throttled counts the revalidations rejected since the key was first seen.
	Throttled int64 `json:"throttled"`

	// Window is the spacing enforced for the key.
	Window time.Duration `json:"window"`
}

// NextAllowed returns the earliest time another revalidation is let through.
func (s KeyState) NextAllowed() time.Time {
	if s.LastAllowed.IsZero() {
		return time.Time{}
	}
	return s.LastAllowed.Add(s.Window)
}

// IsThrottled reports whether a revalidation at now would be rejected.
func (s KeyState) IsThrottled(now time.Time) bool {
	return now.Before(s.NextAllowed())
}

// TimeUntilAllowed returns how long a caller has to wait at now.
// Returns 0 if a revalidation would be let through.
func (s KeyState) TimeUntilAllowed(now time.Time) time.Duration {
	d := s.NextAllowed().Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

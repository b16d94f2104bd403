// Package ratelimit tracks server throttling and gates requests while the
// account is throttled. It reads the x-ms-retry-after-ms header of 429
// responses so that every request sent during the throttle window waits
// instead of burning request units on guaranteed rejections.
package ratelimit

import (
	"time"
)

// RedisKeyPrefix prefixes the per-account throttle state key.
const RedisKeyPrefix = "docdb:throttle:"

// DefaultRetryAfter is used when a 429 response carries no retry hint.
const DefaultRetryAfter = 1 * time.Second

// MaxRetryAfter caps server supplied retry hints.
const MaxRetryAfter = 30 * time.Second

// ThrottleState represents the current throttling state of an account.
// When Redis is configured the state is shared across all client instances.
type ThrottleState struct {
	// RetryAfter is the last delay requested by the server.
	RetryAfter time.Duration `json:"retry_after"`

	// ThrottledUntil is the earliest time the next request should be sent.
	ThrottledUntil time.Time `json:"throttled_until"`

	// LastUpdate is when this state was last recorded.
	LastUpdate time.Time `json:"last_update"`
}

// IsThrottled returns true while the throttle window is open.
func (s *ThrottleState) IsThrottled() bool {
	return time.Now().Before(s.ThrottledUntil)
}

// TimeUntilReady returns the remaining throttle window, or 0.
func (s *ThrottleState) TimeUntilReady() time.Duration {
	d := time.Until(s.ThrottledUntil)
	if d < 0 {
		return 0
	}
	return d
}

// IsStale returns true if the state is older than maxAge.
func (s *ThrottleState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

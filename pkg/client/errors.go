package client

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrRetryExhausted is returned when all attempts failed with retryable
	// errors. The last attempt's error stays in the chain.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the request context ended before
	// or between attempts. ctx.Err() stays in the chain.
	ErrContextCancelled = errors.New("context cancelled")
)

// Error is a retryable status answered by the server, or the last one when
// attempts ran out.
type Error struct {
	StatusCode int
	ErrorClass ErrorClass
	Message    string

	// ActivityID correlates the failed attempt with server diagnostics.
	ActivityID string

	// RetryAfter is the server's x-ms-retry-after-ms hint, zero without one.
	RetryAfter time.Duration

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "docdb %s error (status %d)", e.ErrorClass, e.StatusCode)
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.RetryAfter > 0 {
		fmt.Fprintf(&b, " (retry after %s)", e.RetryAfter)
	}
	if e.ActivityID != "" {
		fmt.Fprintf(&b, " [activity %s]", e.ActivityID)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// Throttled reports whether the server rejected the request with 429.
func (e *Error) Throttled() bool {
	return e.ErrorClass == ErrorClassThrottled
}

// shouldRetry reports whether a failure of errorClass may succeed on replay.
// 4xx other than 408 and 429 fail the same way again.
func shouldRetry(errorClass ErrorClass) bool {
	switch errorClass {
	case ErrorClassServer, ErrorClassThrottled, ErrorClassNetwork:
		return true
	default:
		return false
	}
}

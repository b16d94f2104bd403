package headers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// RequestChargeFromHeaders parses the mandatory request charge header.
func RequestChargeFromHeaders(h http.Header) (float64, error) {
	raw := h.Get(RequestCharge)
	if raw == "" {
		return 0, missing(RequestCharge)
	}

	charge, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, invalid(RequestCharge, raw, err)
	}
	if charge < 0 || math.IsNaN(charge) || math.IsInf(charge, 0) {
		return 0, invalid(RequestCharge, raw, errors.New("charge must be a finite non-negative number"))
	}

	return charge, nil
}

// ActivityIDFromHeaders parses the mandatory activity id header as a UUID.
func ActivityIDFromHeaders(h http.Header) (uuid.UUID, error) {
	raw := h.Get(ActivityID)
	if raw == "" {
		return uuid.Nil, missing(ActivityID)
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, invalid(ActivityID, raw, err)
	}

	return id, nil
}

// SessionTokenFromHeaders returns the mandatory session token unchanged.
func SessionTokenFromHeaders(h http.Header) (string, error) {
	token := h.Get(SessionToken)
	if token == "" {
		return "", missing(SessionToken)
	}
	return token, nil
}

// ContinuationFromHeaders returns the continuation token, or nil when the
// server sent none. A missing token means there are no further pages.
func ContinuationFromHeaders(h http.Header) *string {
	token := h.Get(Continuation)
	if token == "" {
		return nil
	}
	return &token
}

// RetryAfterFromHeaders returns the throttling delay requested by the server.
func RetryAfterFromHeaders(h http.Header) (time.Duration, bool) {
	raw := h.Get(RetryAfterMs)
	if raw == "" {
		return 0, false
	}

	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil || ms < 0 {
		return 0, false
	}

	return time.Duration(ms * float64(time.Millisecond)), true
}

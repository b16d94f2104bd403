package cosmos

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Sternrassler/docdb-client/pkg/headers"
)

var (
	// ErrInvalidContinuationToken is returned when a continuation token cannot
	// be sent as an HTTP header value.
	ErrInvalidContinuationToken = errors.New("invalid continuation token")

	// ErrMissingField is returned when the page body lacks a required field.
	ErrMissingField = errors.New("missing field")

	// ErrCountMismatch is returned when _count disagrees with the item array.
	ErrCountMismatch = errors.New("item count mismatch")
)

// RequestConstructionError is returned when a request could not be built.
// No network call was made.
type RequestConstructionError struct {
	Header string
	Err    error
}

// Error implements the error interface.
func (e *RequestConstructionError) Error() string {
	if e.Header != "" {
		return fmt.Sprintf("build request: %s: %v", e.Header, e.Err)
	}
	return fmt.Sprintf("build request: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *RequestConstructionError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when the page body does not match the listing
// schema.
type DecodeError struct {
	// Field is the body field that failed, empty for malformed JSON.
	Field string
	Err   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("decode page: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("decode page: %v", e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
	ActivityID string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("docdb request failed (status %d %s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("docdb request failed (status %d): %s", e.StatusCode, e.Message)
}

// maxErrorBody bounds how much of an error body is read.
const maxErrorBody = 64 << 10

// newStatusError drains and closes the body of a failed response.
func newStatusError(resp *http.Response) *StatusError {
	defer resp.Body.Close()

	statusErr := &StatusError{
		StatusCode: resp.StatusCode,
		Message:    http.StatusText(resp.StatusCode),
		ActivityID: resp.Header.Get(headers.ActivityID),
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return statusErr
	}

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil && (payload.Code != "" || payload.Message != "") {
		statusErr.Code = payload.Code
		if payload.Message != "" {
			statusErr.Message = payload.Message
		}
	}

	return statusErr
}

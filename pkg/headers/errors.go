package headers

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingHeader is returned when a mandatory response header is absent.
	ErrMissingHeader = errors.New("missing header")

	// ErrInvalidHeader is returned when a response header cannot be parsed.
	ErrInvalidHeader = errors.New("invalid header")
)

// MetadataError reports which response header could not be extracted.
type MetadataError struct {
	Header string
	Value  string
	Err    error
}

// Error implements the error interface.
func (e *MetadataError) Error() string {
	if errors.Is(e.Err, ErrMissingHeader) {
		return fmt.Sprintf("%s: %v", e.Header, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Header, e.Value, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *MetadataError) Unwrap() error {
	return e.Err
}

func missing(header string) error {
	return &MetadataError{Header: header, Err: ErrMissingHeader}
}

func invalid(header, value string, cause error) error {
	return &MetadataError{
		Header: header,
		Value:  value,
		Err:    fmt.Errorf("%w: %v", ErrInvalidHeader, cause),
	}
}

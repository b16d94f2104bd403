package cosmos

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"

	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/google/uuid"
)

// Body fields shared by every listing.
const (
	fieldResourceID = "_rid"
	fieldCount      = "_count"
)

// ListResponse is one decoded page of a listing.
type ListResponse[T any] struct {
	// Items in server order.
	Items []T

	// ResourceID is the server id of the listed scope.
	ResourceID string

	// Count is the item count declared by the server. It always equals
	// len(Items).
	Count int

	// Charge is the request cost in request units.
	Charge float64

	// ActivityID correlates the request with server-side diagnostics.
	ActivityID uuid.UUID

	// SessionToken is the session position after this request.
	SessionToken string

	// ContinuationToken addresses the next page. Nil on the last page.
	ContinuationToken *string
}

// Continuation implements pagination.Continuable.
func (r *ListResponse[T]) Continuation() *string {
	return r.ContinuationToken
}

// Len returns the number of items on the page.
func (r *ListResponse[T]) Len() int {
	return len(r.Items)
}

// All iterates the items of the page in server order.
func (r *ListResponse[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, item := range r.Items {
			if !yield(item) {
				return
			}
		}
	}
}

// decodeListResponse drains the body and decodes one page. itemsKey is the
// name of the item array in the body, e.g. "Users".
func decodeListResponse[T any](resp *http.Response, itemsKey string) (*ListResponse[T], error) {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{Err: err}
	}

	page := &ListResponse[T]{}

	if err := decodeField(envelope, fieldResourceID, &page.ResourceID); err != nil {
		return nil, err
	}
	if err := decodeField(envelope, itemsKey, &page.Items); err != nil {
		return nil, err
	}
	var count uint32
	if err := decodeField(envelope, fieldCount, &count); err != nil {
		return nil, err
	}
	page.Count = int(count)

	if page.Count != len(page.Items) {
		return nil, &DecodeError{
			Field: fieldCount,
			Err:   fmt.Errorf("%w: _count is %d, %s has %d items", ErrCountMismatch, page.Count, itemsKey, len(page.Items)),
		}
	}

	if page.Charge, err = headers.RequestChargeFromHeaders(resp.Header); err != nil {
		return nil, err
	}
	if page.ActivityID, err = headers.ActivityIDFromHeaders(resp.Header); err != nil {
		return nil, err
	}
	if page.SessionToken, err = headers.SessionTokenFromHeaders(resp.Header); err != nil {
		return nil, err
	}
	page.ContinuationToken = headers.ContinuationFromHeaders(resp.Header)

	return page, nil
}

func decodeField(envelope map[string]json.RawMessage, name string, dst any) error {
	raw, ok := envelope[name]
	if !ok {
		return &DecodeError{Field: name, Err: ErrMissingField}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &DecodeError{Field: name, Err: err}
	}
	return nil
}

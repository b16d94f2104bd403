package cosmos

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/Sternrassler/docdb-client/pkg/headers"
	"github.com/Sternrassler/docdb-client/pkg/session"
	"golang.org/x/net/http/httpguts"
)

// listRequest is the immutable configuration of one listing. build turns it
// into one HTTP request per page.
type listRequest struct {
	endpoint     *url.URL
	resourceType ResourceType
	segments     []string // path below the endpoint, e.g. dbs, app, users
	scope        session.Key

	consistency  ConsistencyLevel
	maxItemCount int

	// Set for queries only.
	query  []byte
	header http.Header
}

func (r listRequest) method() string {
	if r.query != nil {
		return http.MethodPost
	}
	return http.MethodGet
}

func (r listRequest) path() string {
	return r.endpoint.JoinPath(r.segments...).Path
}

// build creates the request for the page addressed by continuation. It has no
// side effects; sessionToken is attached only for session-consistent reads.
func (r listRequest) build(ctx context.Context, continuation *string, sessionToken string) (*http.Request, error) {
	if err := r.consistency.Validate(); err != nil {
		return nil, &RequestConstructionError{Header: headers.ConsistencyLevel, Err: err}
	}
	if continuation != nil && !validContinuation(*continuation) {
		return nil, &RequestConstructionError{Header: headers.Continuation, Err: ErrInvalidContinuationToken}
	}

	var body io.Reader
	if r.query != nil {
		body = bytes.NewReader(r.query)
	}

	u := r.endpoint.JoinPath(r.segments...)
	req, err := http.NewRequestWithContext(WithResourceType(ctx, r.resourceType), r.method(), u.String(), body)
	if err != nil {
		return nil, &RequestConstructionError{Err: err}
	}

	if r.consistency != "" {
		req.Header.Set(headers.ConsistencyLevel, string(r.consistency))
	}
	req.Header.Set(headers.MaxItemCount, strconv.Itoa(r.maxItemCount))

	if continuation != nil && *continuation != "" {
		req.Header.Set(headers.Continuation, *continuation)
	}

	if sessionToken != "" && r.consistency.usesSession() && httpguts.ValidHeaderFieldValue(sessionToken) {
		req.Header.Set(headers.SessionToken, sessionToken)
	}

	for name, values := range r.header {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}

	return req, nil
}

// validContinuation reports whether token survives the trip through a header
// unchanged. HTTP trims outer whitespace, so a token carrying it would be
// sent back altered.
func validContinuation(token string) bool {
	if !httpguts.ValidHeaderFieldValue(token) {
		return false
	}
	if token == "" {
		return true
	}
	first, last := token[0], token[len(token)-1]
	return first != ' ' && first != '\t' && last != ' ' && last != '\t'
}

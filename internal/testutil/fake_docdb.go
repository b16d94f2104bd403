// Package testutil provides a fake document database server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/docdb-client/pkg/headers"
)

// FakeResponse defines one canned response of the fake server.
type FakeResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// RecordedRequest is a request as seen by the fake server.
type RecordedRequest struct {
	Method string
	Path   string
	Header http.Header
	Body   string
}

// FakeDocDB is a configurable fake document database server.
type FakeDocDB struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	requests []RecordedRequest
}

// NewFakeDocDB starts a fake server. Unknown paths answer 404.
func NewFakeDocDB() *FakeDocDB {
	fake := &FakeDocDB{
		handlers: make(map[string]http.HandlerFunc),
	}

	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		fake.mu.Lock()
		fake.requests = append(fake.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   string(body),
		})
		handler, exists := fake.handlers[r.URL.Path]
		fake.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		writeResponse(w, r, NewNotFoundResponse())
	}))

	return fake
}

// URL returns the server URL.
func (f *FakeDocDB) URL() string {
	return f.server.URL
}

// Close shuts down the server.
func (f *FakeDocDB) Close() {
	f.server.Close()
}

// Reset clears the recorded requests.
func (f *FakeDocDB) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = nil
}

// SetHandler sets a custom handler for a path.
func (f *FakeDocDB) SetHandler(path string, handler http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[path] = handler
}

// SetResponse answers every request for path with resp.
func (f *FakeDocDB) SetResponse(path string, resp FakeResponse) {
	f.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		writeResponse(w, r, resp)
	})
}

// SetSequence answers requests for path with responses in order. Requests
// beyond the last response get the last one again.
func (f *FakeDocDB) SetSequence(path string, responses ...FakeResponse) {
	var (
		mu   sync.Mutex
		next int
	)
	f.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[min(next, len(responses)-1)]
		next++
		mu.Unlock()
		writeResponse(w, r, resp)
	})
}

// SetPages serves pages as a paged listing of path. Each page is a raw JSON
// array of items. Page i+1 is addressed by the continuation token "page-<i+1>"
// returned with page i. The session token advances with every page.
func (f *FakeDocDB) SetPages(path, itemsKey string, pages ...string) {
	var (
		mu      sync.Mutex
		session int
	)
	f.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		index := 0
		if token := r.Header.Get(headers.Continuation); token != "" {
			n, err := strconv.Atoi(strings.TrimPrefix(token, "page-"))
			if err != nil || !strings.HasPrefix(token, "page-") || n < 0 || n >= len(pages) {
				writeResponse(w, r, FakeResponse{
					StatusCode: http.StatusBadRequest,
					Body:       `{"code":"BadRequest","message":"invalid continuation token"}`,
				})
				return
			}
			index = n
		}

		continuation := ""
		if index+1 < len(pages) {
			continuation = fmt.Sprintf("page-%d", index+1)
		}

		mu.Lock()
		session++
		token := fmt.Sprintf("0:%d", session)
		mu.Unlock()

		resp := NewPageResponse("rid-"+itemsKey, itemsKey, pages[index], continuation)
		resp.Headers[headers.SessionToken] = token
		writeResponse(w, r, resp)
	})
}

// Requests returns the recorded requests in arrival order.
func (f *FakeDocDB) Requests() []RecordedRequest {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestCount returns the number of requests received.
func (f *FakeDocDB) RequestCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.requests)
}

func writeResponse(w http.ResponseWriter, r *http.Request, resp FakeResponse) {
	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-r.Context().Done():
			return
		}
	}

	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "application/json")
	}

	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// ActivityID is the activity id sent by canned responses.
const ActivityID = "8f0b6a1e-4c2d-4e8b-9a3f-2b7c5d1e0f9a"

// NewPageResponse creates a 200 listing page. items is a raw JSON array and
// an empty continuation marks the last page. It panics on
// malformed items.
func NewPageResponse(rid, itemsKey, items, continuation string) FakeResponse {
	var decoded []json.RawMessage
	if err := json.Unmarshal([]byte(items), &decoded); err != nil {
		panic(fmt.Sprintf("testutil: items must be a JSON array: %v", err))
	}
	count := len(decoded)

	resp := FakeResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"_rid":%q,%q:%s,"_count":%d}`, rid, itemsKey, items, count),
		Headers: map[string]string{
			headers.RequestCharge: "1.0",
			headers.ActivityID:    ActivityID,
			headers.SessionToken:  "0:1",
		},
	}
	if continuation != "" {
		resp.Headers[headers.Continuation] = continuation
	}
	return resp
}

// NewThrottledResponse creates a 429 response with a retry hint.
func NewThrottledResponse(retryAfter time.Duration) FakeResponse {
	return FakeResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"code":"TooManyRequests","message":"Request rate is large"}`,
		Headers: map[string]string{
			headers.RetryAfterMs: strconv.FormatInt(retryAfter.Milliseconds(), 10),
			headers.ActivityID:   ActivityID,
		},
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() FakeResponse {
	return FakeResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"code":"InternalServerError","message":"Unknown server error occurred"}`,
		Headers: map[string]string{
			headers.ActivityID: ActivityID,
		},
	}
}

// NewNotFoundResponse creates a 404 response.
func NewNotFoundResponse() FakeResponse {
	return FakeResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"code":"NotFound","message":"Resource Not Found"}`,
		Headers: map[string]string{
			headers.ActivityID: ActivityID,
		},
	}
}
